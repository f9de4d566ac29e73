package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentRecordStatus defines the state of a provider payment
type PaymentRecordStatus string

const (
	PaymentRecordPending   PaymentRecordStatus = "pending"
	PaymentRecordSucceeded PaymentRecordStatus = "succeeded"
	PaymentRecordFailed    PaymentRecordStatus = "failed"
	PaymentRecordRefunded  PaymentRecordStatus = "refunded"
)

// Payment tracks a single charge against a reservation
type Payment struct {
	gorm.Model
	ReservationID uint                `gorm:"not null;index" json:"reservationId"`
	PayerID       uint                `gorm:"not null;index" json:"payerId"`
	AmountCents   int64               `gorm:"not null" json:"amountCents"`
	Currency      string              `gorm:"type:varchar(10);not null" json:"currency"`
	Status        PaymentRecordStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	// Payment provider details
	Provider          string         `gorm:"type:varchar(50)" json:"provider"`
	ProviderPaymentID string         `gorm:"type:varchar(100);uniqueIndex" json:"providerPaymentId"`
	ClientSecret      string         `gorm:"type:varchar(255)" json:"-"`
	IdempotencyKey    string         `gorm:"type:varchar(64)" json:"-"`
	ProviderRefundID  string         `gorm:"type:varchar(100)" json:"providerRefundId"`
	LastEventRaw      datatypes.JSON `json:"-"`

	IsDeleted bool `gorm:"default:false" json:"-"`

	Reservation Reservation `gorm:"foreignKey:ReservationID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
