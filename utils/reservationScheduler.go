package utils

import (
	"time"

	"paddock/config"
	"paddock/database"
	"paddock/logger"
	"paddock/metrics"
	"paddock/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	reasonRequestExpired = "request expired"
	otpRetention         = 24 * time.Hour
)

// InitializeSchedulers registers the reservation housekeeping jobs and starts
// the cron runner. The caller stops it on shutdown.
func InitializeSchedulers() *cron.Cron {
	logger.Log.Info("[SCHEDULER] initializing reservation schedulers")

	loc, err := time.LoadLocation(config.AppConfig.CronTimezone)
	if err != nil {
		logger.Log.Warning("[SCHEDULER] unknown CRON_TIMEZONE, using UTC",
			logger.String("timezone", config.AppConfig.CronTimezone), logger.Error(err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	jobs := []struct {
		spec string
		name string
		run  func(time.Time) int
	}{
		{"*/15 * * * *", "expire_pending", ExpireStalePendingReservations},
		{"0 * * * *", "auto_complete", AutoCompleteReservations},
		{"0 8 * * *", "owner_digest", SendOwnerDigests},
		{"0 3 * * *", "otp_cleanup", CleanupExpiredOTPs},
	}
	for _, job := range jobs {
		job := job
		if _, err := c.AddFunc(job.spec, func() {
			affected := job.run(time.Now())
			metrics.RecordSchedulerRun(job.name, affected)
		}); err != nil {
			logger.Log.Error("[SCHEDULER] failed to register job", logger.String("job", job.name), logger.Error(err))
		}
	}

	c.Start()
	logger.Log.Info("[SCHEDULER] started", logger.String("timezone", loc.String()))
	return c
}

// ExpireStalePendingReservations cancels requests the owner never answered
// before the rental was due to start.
func ExpireStalePendingReservations(now time.Time) int {
	db := database.Database.Db
	today := Today(now)

	var stale []models.Reservation
	if err := db.
		Where("status = ? AND start_date < ? AND is_deleted = ?", models.ReservationPending, today, false).
		Preload("Vehicle").Preload("Renter").
		Find(&stale).Error; err != nil {
		logger.Log.Error("[SCHEDULER] error fetching stale reservations", logger.Error(err))
		return 0
	}

	expired := 0
	for _, r := range stale {
		if err := r.Transition(models.ReservationCancelled, now.UTC()); err != nil {
			continue
		}
		r.Reason = reasonRequestExpired
		changed, err := expireReservation(db, r)
		if err != nil {
			logger.Log.Error("[SCHEDULER] error expiring reservation", logger.Uint("reservationId", r.ID), logger.Error(err))
			continue
		}
		if !changed {
			// answered by the owner or renter since the scan
			continue
		}

		expired++
		metrics.RecordReservationTransition(models.ReservationCancelled, "system")
		SendReservationStatusEmail(r.Renter.Email, r.Renter.Name, models.ReservationCancelled, ReservationEmailFor(r))
	}

	if expired > 0 {
		logger.Log.Info("[SCHEDULER] expired stale requests", logger.Int("count", expired))
	}
	return expired
}

// expireReservation writes the cancellation only while the request is still
// pending. It reports false when another writer moved the row first.
func expireReservation(db *gorm.DB, r models.Reservation) (bool, error) {
	result := db.Model(&models.Reservation{}).Where("id = ? AND status = ?", r.ID, models.ReservationPending).
		Updates(map[string]interface{}{
			"status":       r.Status,
			"reason":       r.Reason,
			"cancelled_at": r.CancelledAt,
			"cancelled_by": 0,
		})
	return result.RowsAffected > 0, result.Error
}

func completeReservation(db *gorm.DB, r models.Reservation) (bool, error) {
	result := db.Model(&models.Reservation{}).Where("id = ? AND status = ?", r.ID, models.ReservationConfirmed).
		Updates(map[string]interface{}{
			"status":       r.Status,
			"completed_at": r.CompletedAt,
		})
	return result.RowsAffected > 0, result.Error
}

// AutoCompleteReservations completes confirmed rentals whose last day has passed.
func AutoCompleteReservations(now time.Time) int {
	db := database.Database.Db
	today := Today(now)

	var finished []models.Reservation
	if err := db.
		Where("status = ? AND end_date < ? AND is_deleted = ?", models.ReservationConfirmed, today, false).
		Find(&finished).Error; err != nil {
		logger.Log.Error("[SCHEDULER] error fetching finished reservations", logger.Error(err))
		return 0
	}

	completed := 0
	for _, r := range finished {
		if err := r.Transition(models.ReservationCompleted, now.UTC()); err != nil {
			continue
		}
		changed, err := completeReservation(db, r)
		if err != nil {
			logger.Log.Error("[SCHEDULER] error completing reservation", logger.Uint("reservationId", r.ID), logger.Error(err))
			continue
		}
		if !changed {
			continue
		}
		completed++
		metrics.RecordReservationTransition(models.ReservationCompleted, "system")
	}

	if completed > 0 {
		logger.Log.Info("[SCHEDULER] auto completed rentals", logger.Int("count", completed))
	}
	return completed
}

// SendOwnerDigests emails each owner the requests still waiting on them.
// It returns the number of digests delivered.
func SendOwnerDigests(now time.Time) int {
	db := database.Database.Db
	today := Today(now)

	var pending []models.Reservation
	if err := db.
		Where("status = ? AND start_date >= ? AND is_deleted = ?", models.ReservationPending, today, false).
		Preload("Vehicle").
		Order("owner_id ASC, start_date ASC").
		Find(&pending).Error; err != nil {
		logger.Log.Error("[SCHEDULER] error fetching pending requests", logger.Error(err))
		return 0
	}

	byOwner := make(map[uint][]DigestLine)
	owners := make([]uint, 0)
	for _, r := range pending {
		if _, ok := byOwner[r.OwnerID]; !ok {
			owners = append(owners, r.OwnerID)
		}
		byOwner[r.OwnerID] = append(byOwner[r.OwnerID], DigestLine{
			VehicleTitle: r.Vehicle.Title,
			StartDate:    r.StartDate,
			EndDate:      r.EndDate,
		})
	}

	sent := 0
	for _, ownerID := range owners {
		var owner models.User
		if err := db.Where("id = ? AND is_deleted = ?", ownerID, false).First(&owner).Error; err != nil {
			logger.Log.Warning("[SCHEDULER] digest owner not found", logger.Uint("ownerId", ownerID))
			continue
		}
		if err := SendOwnerDigestEmail(owner.Email, owner.Name, byOwner[ownerID]); err != nil {
			continue
		}
		sent++
	}

	logger.Log.Info("[SCHEDULER] owner digests sent", logger.Int("count", sent))
	return sent
}

// CleanupExpiredOTPs soft deletes codes that were used or expired more than
// a day ago.
func CleanupExpiredOTPs(now time.Time) int {
	db := database.Database.Db
	cutoff := now.UTC().Add(-otpRetention)

	result := db.Model(&models.OTP{}).
		Where("is_deleted = ? AND created_at < ? AND (is_used = ? OR expires_at < ?)", false, cutoff, true, now.UTC()).
		Update("is_deleted", true)
	if result.Error != nil {
		logger.Log.Error("[SCHEDULER] error cleaning up OTPs", logger.Error(result.Error))
		return 0
	}

	if result.RowsAffected > 0 {
		logger.Log.Info("[SCHEDULER] cleaned up OTPs", logger.Int64("count", result.RowsAffected))
	}
	return int(result.RowsAffected)
}
