package reservationController

import (
	"errors"
	"fmt"
	"time"

	"paddock/apperrors"
	"paddock/config"
	"paddock/database"
	"paddock/logger"
	"paddock/metrics"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"

	paymentController "paddock/controllers/payment"
	reservationValidator "paddock/validators/reservation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	maxRentalDays           = 60
	reasonDatesNotAvailable = "dates no longer available"
)

// overlapping selects reservations of a vehicle holding any day of [start, end].
func overlapping(tx *gorm.DB, vehicleID uint, start, end time.Time, statuses []string) *gorm.DB {
	return tx.Model(&models.Reservation{}).
		Where("vehicle_id = ? AND status IN ? AND is_deleted = ?", vehicleID, statuses, false).
		Where("start_date <= ? AND end_date >= ?", end, start)
}

// loadReservation fetches a reservation with the records used for
// notifications.
func loadReservation(db *gorm.DB, id uint) (models.Reservation, error) {
	var reservation models.Reservation
	err := db.Where("id = ? AND is_deleted = ?", id, false).
		Preload("Vehicle").Preload("Renter").Preload("Owner").
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reservation, fmt.Errorf("reservation %d: %w", id, apperrors.ErrNotFound)
	}
	return reservation, err
}

// applyTransition persists a status change made by models.Reservation.Transition.
// The update only matches while the row is still in its previous status, so a
// concurrent change surfaces as an invalid transition.
func applyTransition(tx *gorm.DB, r models.Reservation, from string) error {
	result := tx.Model(&models.Reservation{}).Where("id = ? AND status = ?", r.ID, from).Updates(map[string]interface{}{
		"status":       r.Status,
		"reason":       r.Reason,
		"cancelled_by": r.CancelledBy,
		"confirmed_at": r.ConfirmedAt,
		"completed_at": r.CompletedAt,
		"cancelled_at": r.CancelledAt,
		"declined_at":  r.DeclinedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("reservation %d changed concurrently: %w", r.ID, apperrors.ErrInvalidTransition)
	}
	return nil
}

func CreateReservation(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedReservation").(*reservationValidator.CreateReservationRequest)
	db := database.Database.Db

	var vehicle models.Vehicle
	if err := db.Where("id = ? AND is_deleted = ? AND is_active = ?", reqData.VehicleID, false, true).
		Preload("Owner").First(&vehicle).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Vehicle not found!", nil)
	}
	if vehicle.OwnerID == userId {
		return middleware.ErrorResponse(c, apperrors.ErrSelfAction, "You cannot book your own vehicle!")
	}

	start, _ := utils.ParseDay(reqData.StartDate)
	end, _ := utils.ParseDay(reqData.EndDate)
	days := utils.DaysInclusive(start, end)

	errs := map[string]string{}
	if start.Before(utils.Today(time.Now())) {
		errs["startDate"] = "startDate cannot be in the past!"
	}
	if days < vehicle.MinRentalDays {
		errs["endDate"] = fmt.Sprintf("This vehicle requires at least %d day(s)!", vehicle.MinRentalDays)
	}
	if days > maxRentalDays {
		errs["endDate"] = fmt.Sprintf("Reservations cannot exceed %d days!", maxRentalDays)
	}
	if len(errs) > 0 {
		return middleware.ValidationErrorResponse(c, errs)
	}

	subtotal := int64(days) * vehicle.DailyRateCents
	fee := utils.PlatformFee(subtotal, config.AppConfig.PlatformFeePercent)
	reservation := models.Reservation{
		VehicleID:        vehicle.ID,
		RenterID:         userId,
		OwnerID:          vehicle.OwnerID,
		StartDate:        start,
		EndDate:          end,
		Days:             days,
		DailyRateCents:   vehicle.DailyRateCents,
		SubtotalCents:    subtotal,
		PlatformFeeCents: fee,
		TotalCents:       subtotal + fee,
		Status:           models.ReservationPending,
		PaymentStatus:    models.PaymentUnpaid,
		Message:          reqData.Message,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var clashes int64
		if err := overlapping(tx, vehicle.ID, start, end, models.BookedReservationStatuses).Count(&clashes).Error; err != nil {
			return err
		}
		if clashes > 0 {
			return fmt.Errorf("vehicle %d already booked: %w", vehicle.ID, apperrors.ErrConflict)
		}
		var repeats int64
		if err := overlapping(tx, vehicle.ID, start, end, []string{models.ReservationPending}).
			Where("renter_id = ?", userId).Count(&repeats).Error; err != nil {
			return err
		}
		if repeats > 0 {
			return fmt.Errorf("renter %d already requested vehicle %d: %w", userId, vehicle.ID, apperrors.ErrDuplicate)
		}
		return tx.Omit("Vehicle", "Renter", "Owner").Create(&reservation).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return middleware.ErrorResponse(c, err, "These dates are not available!")
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			return middleware.ErrorResponse(c, err, "You already have a pending request for these dates!")
		}
		logger.Log.Error("error creating reservation", logger.Uint("vehicleId", vehicle.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create reservation!", nil)
	}

	metrics.RecordReservationTransition(models.ReservationPending, "renter")

	var renter models.User
	db.First(&renter, userId)
	reservation.Vehicle = vehicle
	utils.SendReservationRequestedEmail(vehicle.Owner.Email, vehicle.Owner.Name, renter.Name, utils.ReservationEmailFor(reservation))

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Reservation requested.", reservation)
}

func ApproveReservation(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid reservation id!")
	}
	db := database.Database.Db

	reservation, err := loadReservation(db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Reservation not found!")
	}
	if reservation.OwnerID != middleware.CurrentUserID(c) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the owner can approve this request!", nil)
	}
	if reservation.Status == models.ReservationPending && reservation.StartDate.Before(utils.Today(time.Now())) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This request has expired!", nil)
	}

	now := time.Now().UTC()
	from := reservation.Status
	if err := reservation.Transition(models.ReservationConfirmed, now); err != nil {
		return middleware.ErrorResponse(c, err, "Only pending requests can be approved!")
	}

	declined := []models.Reservation{}
	err = db.Transaction(func(tx *gorm.DB) error {
		var clashes int64
		if err := overlapping(tx, reservation.VehicleID, reservation.StartDate, reservation.EndDate,
			[]string{models.ReservationConfirmed}).Where("id <> ?", reservation.ID).Count(&clashes).Error; err != nil {
			return err
		}
		if clashes > 0 {
			return fmt.Errorf("vehicle %d already confirmed for these dates: %w", reservation.VehicleID, apperrors.ErrConflict)
		}

		if err := applyTransition(tx, reservation, from); err != nil {
			return err
		}

		var competing []models.Reservation
		if err := overlapping(tx, reservation.VehicleID, reservation.StartDate, reservation.EndDate,
			[]string{models.ReservationPending}).Where("id <> ?", reservation.ID).
			Preload("Renter").Find(&competing).Error; err != nil {
			return err
		}
		for _, other := range competing {
			if err := other.Transition(models.ReservationDeclined, now); err != nil {
				continue
			}
			other.Reason = reasonDatesNotAvailable
			if err := applyTransition(tx, other, models.ReservationPending); err != nil {
				return err
			}
			declined = append(declined, other)
		}

		return tx.Model(&models.Vehicle{}).Where("id = ?", reservation.VehicleID).
			Update("booking_count", gorm.Expr("booking_count + ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return middleware.ErrorResponse(c, err, "Another reservation is already confirmed for these dates!")
		}
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			return middleware.ErrorResponse(c, err, "Reservation was changed, reload and try again!")
		}
		logger.Log.Error("error approving reservation", logger.Uint("reservationId", id), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve reservation!", nil)
	}

	metrics.RecordReservationTransition(models.ReservationConfirmed, "owner")
	utils.SendReservationStatusEmail(reservation.Renter.Email, reservation.Renter.Name, models.ReservationConfirmed, utils.ReservationEmailFor(reservation))
	for _, other := range declined {
		metrics.RecordReservationTransition(models.ReservationDeclined, "system")
		other.Vehicle = reservation.Vehicle
		utils.SendReservationStatusEmail(other.Renter.Email, other.Renter.Name, models.ReservationDeclined, utils.ReservationEmailFor(other))
	}

	return respondReservation(c, db, id, "Reservation confirmed.")
}

func DeclineReservation(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid reservation id!")
	}
	reqData := c.Locals("validatedReason").(*reservationValidator.ReasonRequest)
	db := database.Database.Db

	reservation, err := loadReservation(db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Reservation not found!")
	}
	if reservation.OwnerID != middleware.CurrentUserID(c) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the owner can decline this request!", nil)
	}

	from := reservation.Status
	if err := reservation.Transition(models.ReservationDeclined, time.Now().UTC()); err != nil {
		return middleware.ErrorResponse(c, err, "Only pending requests can be declined!")
	}
	reservation.Reason = reqData.Reason

	if err := applyTransition(db, reservation, from); err != nil {
		return transitionFailed(c, id, err)
	}

	metrics.RecordReservationTransition(models.ReservationDeclined, "owner")
	utils.SendReservationStatusEmail(reservation.Renter.Email, reservation.Renter.Name, models.ReservationDeclined, utils.ReservationEmailFor(reservation))

	return respondReservation(c, db, id, "Reservation declined.")
}

func CancelReservation(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid reservation id!")
	}
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedReason").(*reservationValidator.ReasonRequest)
	db := database.Database.Db

	reservation, err := loadReservation(db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Reservation not found!")
	}
	if !reservation.IsParticipant(userId) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not part of this reservation!", nil)
	}

	from := reservation.Status
	if err := reservation.Transition(models.ReservationCancelled, time.Now().UTC()); err != nil {
		return middleware.ErrorResponse(c, err, "This reservation can no longer be cancelled!")
	}
	reservation.Reason = reqData.Reason
	reservation.CancelledBy = userId

	if err := applyTransition(db, reservation, from); err != nil {
		return transitionFailed(c, id, err)
	}

	actor := "renter"
	if userId == reservation.OwnerID {
		actor = "owner"
	}
	metrics.RecordReservationTransition(models.ReservationCancelled, actor)

	if reservation.PaymentStatus == models.PaymentPaid {
		if err := paymentController.RefundReservation(c.UserContext(), db, reservation); err != nil {
			logger.Log.Error("refund after cancellation failed", logger.Uint("reservationId", id), logger.Error(err))
		}
	}

	other := reservation.Renter
	if userId == reservation.RenterID {
		other = reservation.Owner
	}
	utils.SendReservationStatusEmail(other.Email, other.Name, models.ReservationCancelled, utils.ReservationEmailFor(reservation))

	return respondReservation(c, db, id, "Reservation cancelled.")
}

func CompleteReservation(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid reservation id!")
	}
	db := database.Database.Db

	reservation, err := loadReservation(db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Reservation not found!")
	}
	if reservation.OwnerID != middleware.CurrentUserID(c) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the owner can complete this rental!", nil)
	}

	now := time.Now().UTC()
	if reservation.Status == models.ReservationConfirmed && utils.Today(now).Before(reservation.StartDate) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "The rental has not started yet!", nil)
	}

	from := reservation.Status
	if err := reservation.Transition(models.ReservationCompleted, now); err != nil {
		return middleware.ErrorResponse(c, err, "Only confirmed rentals can be completed!")
	}
	if err := applyTransition(db, reservation, from); err != nil {
		return transitionFailed(c, id, err)
	}

	metrics.RecordReservationTransition(models.ReservationCompleted, "owner")
	utils.SendReservationStatusEmail(reservation.Renter.Email, reservation.Renter.Name, models.ReservationCompleted, utils.ReservationEmailFor(reservation))

	return respondReservation(c, db, id, "Rental completed.")
}

func GetReservation(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid reservation id!")
	}
	userId := middleware.CurrentUserID(c)
	db := database.Database.Db

	reservation, err := loadReservation(db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Reservation not found!")
	}
	if !reservation.IsParticipant(userId) {
		var caller models.User
		if err := db.Select("id", "role").First(&caller, userId).Error; err != nil || !caller.IsAdmin() {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not part of this reservation!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reservation details.", reservationDetail(reservation))
}

// ReservationDetail adds the participants' public profiles.
type ReservationDetail struct {
	models.Reservation
	Renter models.PublicUser `json:"renter"`
	Owner  models.PublicUser `json:"owner"`
}

func reservationDetail(r models.Reservation) ReservationDetail {
	return ReservationDetail{Reservation: r, Renter: r.Renter.Public(), Owner: r.Owner.Public()}
}

func respondReservation(c *fiber.Ctx, db *gorm.DB, id uint, message string) error {
	reservation, err := loadReservation(db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, reservationDetail(reservation))
}

func transitionFailed(c *fiber.Ctx, id uint, err error) error {
	if errors.Is(err, apperrors.ErrInvalidTransition) {
		return middleware.ErrorResponse(c, err, "Reservation was changed, reload and try again!")
	}
	logger.Log.Error("error updating reservation", logger.Uint("reservationId", id), logger.Error(err))
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update reservation!", nil)
}
