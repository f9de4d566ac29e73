package paymentController

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"paddock/apperrors"
	"paddock/config"
	"paddock/database"
	"paddock/logger"
	"paddock/metrics"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"
	"paddock/validators"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SignatureHeader = "X-Paddock-Signature"
	providerTimeout = 15 * time.Second
)

// Webhook event types
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"
)

// WebhookEvent is the provider notification body.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		PaymentIntentID string `json:"paymentIntentId"`
		RefundID        string `json:"refundId"`
	} `json:"data"`
}

func CreateCheckout(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid reservation id!")
	}
	userId := middleware.CurrentUserID(c)
	db := database.Database.Db

	var reservation models.Reservation
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&reservation).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Reservation not found!", nil)
	}
	if reservation.RenterID != userId {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the renter can pay for this reservation!", nil)
	}
	if reservation.Status != models.ReservationConfirmed {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Reservation must be confirmed before payment!", nil)
	}
	if reservation.PaymentStatus == models.PaymentPaid || reservation.PaymentStatus == models.PaymentRefunded {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Reservation is already paid!", nil)
	}
	if !utils.DefaultPayments.Configured() {
		return middleware.ErrorResponse(c, apperrors.ErrNotConfigured, "Payments are not available right now!")
	}

	// an open attempt keeps its idempotency key so the provider returns the same intent
	var payment models.Payment
	existing := db.Where("reservation_id = ? AND status = ? AND is_deleted = ?",
		reservation.ID, models.PaymentRecordPending, false).
		Order("created_at DESC").First(&payment).Error == nil

	ctx, cancel := context.WithTimeout(c.UserContext(), providerTimeout)
	defer cancel()

	currency := strings.ToLower(config.AppConfig.Currency)
	intent, key, err := utils.DefaultPayments.CreateIntent(ctx, reservation.TotalCents, currency, reservation.ID, payment.IdempotencyKey)
	if err != nil {
		logger.Log.Error("payment intent failed", logger.Uint("reservationId", reservation.ID), logger.Error(err))
		return middleware.ErrorResponse(c, err, "Payment provider is unavailable, try again!")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if existing {
			if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
				"provider_payment_id": intent.ID,
				"client_secret":       intent.ClientSecret,
				"amount_cents":        reservation.TotalCents,
			}).Error; err != nil {
				return err
			}
		} else {
			payment = models.Payment{
				ReservationID:     reservation.ID,
				PayerID:           userId,
				AmountCents:       reservation.TotalCents,
				Currency:          currency,
				Status:            models.PaymentRecordPending,
				Provider:          utils.PaymentProviderName,
				ProviderPaymentID: intent.ID,
				ClientSecret:      intent.ClientSecret,
				IdempotencyKey:    key,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
			Update("payment_status", models.PaymentPending).Error
	})
	if err != nil {
		logger.Log.Error("error saving payment", logger.Uint("reservationId", reservation.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start checkout!", nil)
	}

	metrics.RecordPaymentEvent(string(models.PaymentRecordPending))

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Checkout created.", fiber.Map{
		"paymentId":    payment.ID,
		"clientSecret": intent.ClientSecret,
		"amountCents":  reservation.TotalCents,
		"currency":     currency,
	})
}

// Webhook applies provider payment events. Replays and unknown events are
// acknowledged without changes so the provider stops retrying.
func Webhook(c *fiber.Ctx) error {
	secret := config.AppConfig.PaymentWebhookSecret
	if secret == "" {
		return middleware.ErrorResponse(c, apperrors.ErrNotConfigured, "Webhooks are not configured!")
	}

	body := c.Body()
	if !utils.VerifySignature(secret, body, c.Get(SignatureHeader)) {
		logger.Log.Warning("webhook signature mismatch", logger.String("ip", c.IP()))
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid signature!", nil)
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid event payload!", nil)
	}

	var target models.PaymentRecordStatus
	switch event.Type {
	case EventPaymentSucceeded:
		target = models.PaymentRecordSucceeded
	case EventPaymentFailed:
		target = models.PaymentRecordFailed
	case EventPaymentRefunded:
		target = models.PaymentRecordRefunded
	default:
		logger.Log.Info("ignoring webhook event", logger.String("type", event.Type), logger.String("eventId", event.ID))
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event ignored.", nil)
	}

	db := database.Database.Db
	var payment models.Payment
	if err := db.Where("provider_payment_id = ? AND is_deleted = ?", event.Data.PaymentIntentID, false).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Warning("webhook for unknown payment", logger.String("paymentIntentId", event.Data.PaymentIntentID))
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Event ignored.", nil)
		}
		return middleware.ErrorResponse(c, err, "")
	}

	applied, err := applyPaymentEvent(db, payment, target, event, body)
	if err != nil {
		logger.Log.Error("error applying webhook", logger.Uint("paymentId", payment.ID), logger.Error(err))
		return middleware.ErrorResponse(c, err, "")
	}
	if !applied {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event already processed.", nil)
	}

	metrics.RecordPaymentEvent(string(target))

	if target == models.PaymentRecordSucceeded {
		refundIfCancelled(c.UserContext(), db, payment.ReservationID)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Event processed.", nil)
}

var paymentTransitions = map[models.PaymentRecordStatus][]models.PaymentRecordStatus{
	models.PaymentRecordPending:   {models.PaymentRecordSucceeded, models.PaymentRecordFailed},
	models.PaymentRecordFailed:    {models.PaymentRecordSucceeded},
	models.PaymentRecordSucceeded: {models.PaymentRecordRefunded},
}

func canMovePayment(from, to models.PaymentRecordStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// applyPaymentEvent returns false when the event does not change anything.
func applyPaymentEvent(db *gorm.DB, payment models.Payment, target models.PaymentRecordStatus, event WebhookEvent, raw []byte) (bool, error) {
	if !canMovePayment(payment.Status, target) {
		return false, nil
	}

	reservationStatus := map[models.PaymentRecordStatus]string{
		models.PaymentRecordSucceeded: models.PaymentPaid,
		models.PaymentRecordFailed:    models.PaymentFailed,
		models.PaymentRecordRefunded:  models.PaymentRefunded,
	}[target]

	applied := false
	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         target,
			"last_event_raw": datatypes.JSON(raw),
		}
		if event.Data.RefundID != "" {
			updates["provider_refund_id"] = event.Data.RefundID
		}
		result := tx.Model(&models.Payment{}).Where("id = ? AND status = ?", payment.ID, payment.Status).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true
		return tx.Model(&models.Reservation{}).Where("id = ?", payment.ReservationID).
			Update("payment_status", reservationStatus).Error
	})
	return applied, err
}

// refundIfCancelled returns money captured for a reservation that was
// cancelled while the payment was in flight.
func refundIfCancelled(ctx context.Context, db *gorm.DB, reservationID uint) {
	var reservation models.Reservation
	if err := db.First(&reservation, reservationID).Error; err != nil {
		return
	}
	if reservation.Status == models.ReservationCancelled {
		if err := RefundReservation(ctx, db, reservation); err != nil {
			logger.Log.Error("refund after late payment failed", logger.Uint("reservationId", reservationID), logger.Error(err))
		}
	}
}

// RefundReservation refunds the captured payment of a reservation and marks
// both records refunded.
func RefundReservation(ctx context.Context, db *gorm.DB, reservation models.Reservation) error {
	var payment models.Payment
	if err := db.Where("reservation_id = ? AND status = ? AND is_deleted = ?",
		reservation.ID, models.PaymentRecordSucceeded, false).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no captured payment for reservation %d: %w", reservation.ID, apperrors.ErrNotFound)
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	refund, err := utils.DefaultPayments.Refund(ctx, payment.ProviderPaymentID)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
			"status":             models.PaymentRecordRefunded,
			"provider_refund_id": refund.ID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
			Update("payment_status", models.PaymentRefunded).Error
	})
	if err == nil {
		metrics.RecordPaymentEvent(string(models.PaymentRecordRefunded))
	}
	return err
}

func MyPayments(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPage").(*validators.PageQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 10, 50)
	db := database.Database.Db

	query := db.Model(&models.Payment{}).Where("payer_id = ? AND is_deleted = ?", middleware.CurrentUserID(c), false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	payments := []models.Payment{}
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&payments).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "My payments.", fiber.Map{
		"payments":   payments,
		"pagination": page.Meta(total),
	})
}
