package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DisputeOpen     = "open"
	DisputeResolved = "resolved"
)

var DisputeCategories = []string{"damage", "payment", "no_show", "condition", "other"}

// Dispute is a flagged disagreement over a completed rental.
type Dispute struct {
	gorm.Model
	ReservationID uint       `gorm:"not null;uniqueIndex" json:"reservationId"`
	OpenedBy      uint       `gorm:"not null;index" json:"openedBy"`
	AgainstID     uint       `gorm:"not null;index" json:"againstId"`
	Category      string     `gorm:"type:varchar(20);default:'other'" json:"category"`
	Description   string     `gorm:"type:text" json:"description"`
	Status        string     `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Resolution    string     `gorm:"type:text" json:"resolution"`
	ResolvedBy    uint       `gorm:"default:0" json:"resolvedBy"`
	ResolvedAt    *time.Time `json:"resolvedAt"`
	IsDeleted     bool       `gorm:"default:false" json:"-"`
}

func (d Dispute) Involves(userID uint) bool {
	return d.OpenedBy == userID || d.AgainstID == userID
}
