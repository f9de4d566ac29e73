package models

import (
	"fmt"
	"time"

	"paddock/apperrors"

	"gorm.io/gorm"
)

// Reservation status values
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationDeclined  = "declined"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// Payment status values carried on a reservation
const (
	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

// ActiveReservationStatuses are open requests and bookings. They keep a
// listing from being deleted.
var ActiveReservationStatuses = []string{ReservationPending, ReservationConfirmed}

// BookedReservationStatuses hold the vehicle's dates. Pending requests
// compete for dates until the owner approves one of them.
var BookedReservationStatuses = []string{ReservationConfirmed}

var reservationTransitions = map[string][]string{
	ReservationPending:   {ReservationConfirmed, ReservationDeclined, ReservationCancelled},
	ReservationConfirmed: {ReservationCompleted, ReservationCancelled},
}

type Reservation struct {
	gorm.Model
	VehicleID uint `gorm:"not null;index" json:"vehicleId"`
	RenterID  uint `gorm:"not null;index" json:"renterId"`
	OwnerID   uint `gorm:"not null;index" json:"ownerId"`

	StartDate time.Time `gorm:"not null;index" json:"startDate"`
	EndDate   time.Time `gorm:"not null;index" json:"endDate"`
	Days      int       `gorm:"not null" json:"days"`

	DailyRateCents   int64 `gorm:"not null" json:"dailyRateCents"`
	SubtotalCents    int64 `gorm:"not null" json:"subtotalCents"`
	PlatformFeeCents int64 `gorm:"not null" json:"platformFeeCents"`
	TotalCents       int64 `gorm:"not null" json:"totalCents"`

	Status        string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'unpaid'" json:"paymentStatus"`

	Message     string     `gorm:"type:text" json:"message"`
	Reason      string     `gorm:"type:text" json:"reason"`
	CancelledBy uint       `gorm:"default:0" json:"cancelledBy"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	CancelledAt *time.Time `json:"cancelledAt"`
	DeclinedAt  *time.Time `json:"declinedAt"`
	IsDeleted   bool       `gorm:"default:false" json:"-"`

	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Renter  User    `gorm:"foreignKey:RenterID" json:"-"`
	Owner   User    `gorm:"foreignKey:OwnerID" json:"-"`
}

// CanTransition reports whether the reservation may move to the given status.
func (r Reservation) CanTransition(to string) bool {
	for _, next := range reservationTransitions[r.Status] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the reservation to a new status and stamps the matching
// timestamp. The caller persists the change.
func (r *Reservation) Transition(to string, at time.Time) error {
	if !r.CanTransition(to) {
		return fmt.Errorf("reservation %d %s -> %s: %w", r.ID, r.Status, to, apperrors.ErrInvalidTransition)
	}

	r.Status = to
	switch to {
	case ReservationConfirmed:
		r.ConfirmedAt = &at
	case ReservationCompleted:
		r.CompletedAt = &at
	case ReservationCancelled:
		r.CancelledAt = &at
	case ReservationDeclined:
		r.DeclinedAt = &at
	}
	return nil
}

// IsParticipant reports whether the user is the renter or the owner.
func (r Reservation) IsParticipant(userID uint) bool {
	return userID != 0 && (r.RenterID == userID || r.OwnerID == userID)
}

// Counterparty returns the other participant of the reservation.
func (r Reservation) Counterparty(userID uint) uint {
	if r.RenterID == userID {
		return r.OwnerID
	}
	return r.RenterID
}

// Overlaps reports whether the inclusive day range intersects the reservation.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return !start.After(r.EndDate) && !end.Before(r.StartDate)
}

func (r Reservation) IsTerminal() bool {
	_, ok := reservationTransitions[r.Status]
	return !ok
}
