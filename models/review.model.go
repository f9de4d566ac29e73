package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is the renter's rating of a completed rental.
type Review struct {
	gorm.Model
	ReservationID uint       `gorm:"not null;uniqueIndex" json:"reservationId"`
	VehicleID     uint       `gorm:"not null;index" json:"vehicleId"`
	ReviewerID    uint       `gorm:"not null;index" json:"reviewerId"`
	OwnerID       uint       `gorm:"not null;index" json:"ownerId"`
	Rating        int        `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment       string     `gorm:"type:text;default:''" json:"comment"`
	Reply         string     `gorm:"type:text" json:"reply"`
	RepliedAt     *time.Time `json:"repliedAt"`
	IsDeleted     bool       `gorm:"default:false" json:"-"`

	Reviewer User `gorm:"foreignKey:ReviewerID" json:"-"`
}
