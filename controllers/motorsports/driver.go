package motorsportsController

import (
	"errors"
	"fmt"
	"strings"

	"paddock/apperrors"
	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models/motorsports"
	"paddock/utils"
	motorsportsValidator "paddock/validators/motorsports"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func hasDiscipline(list []string, discipline string) bool {
	for _, d := range list {
		if strings.EqualFold(strings.TrimSpace(d), discipline) {
			return true
		}
	}
	return false
}

func disciplines(in []string) datatypes.JSONSlice[string] {
	if in == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](in)
}

// UpsertDriverProfile creates or replaces the caller's driver profile.
func UpsertDriverProfile(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedDriver").(*motorsportsValidator.DriverProfileRequest)
	db := database.Database.Db

	var profile motorsports.DriverProfile
	err := db.Where("user_id = ?", userId).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.ErrorResponse(c, err, "")
	}
	created := errors.Is(err, gorm.ErrRecordNotFound)

	if created {
		profile = motorsports.DriverProfile{
			UserID:          userId,
			DisplayName:     reqData.DisplayName,
			Bio:             reqData.Bio,
			ExperienceYears: reqData.ExperienceYears,
			LicenseClass:    reqData.LicenseClass,
			Disciplines:     disciplines(reqData.Disciplines),
			City:            reqData.City,
			State:           reqData.State,
			LookingForTeam:  reqData.LookingForTeam,
			Achievements:    reqData.Achievements,
		}
		err = db.Create(&profile).Error
	} else {
		err = db.Model(&motorsports.DriverProfile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
			"display_name":     reqData.DisplayName,
			"bio":              reqData.Bio,
			"experience_years": reqData.ExperienceYears,
			"license_class":    reqData.LicenseClass,
			"disciplines":      disciplines(reqData.Disciplines),
			"city":             reqData.City,
			"state":            reqData.State,
			"looking_for_team": reqData.LookingForTeam,
			"achievements":     reqData.Achievements,
			"is_deleted":       false,
		}).Error
	}
	if err != nil {
		logger.Log.Error("error saving driver profile", logger.Uint("userId", userId), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save driver profile!", nil)
	}

	db.First(&profile, profile.ID)
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return middleware.JsonResponse(c, status, true, "Driver profile saved.", profile)
}

func findDriver(db *gorm.DB, id uint) (motorsports.DriverProfile, error) {
	var profile motorsports.DriverProfile
	err := db.Where("id = ? AND is_deleted = ?", id, false).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile, fmt.Errorf("driver %d: %w", id, apperrors.ErrNotFound)
	}
	return profile, err
}

func GetMyDriverProfile(c *fiber.Ctx) error {
	var profile motorsports.DriverProfile
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", middleware.CurrentUserID(c), false).
		First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You have no driver profile yet!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Driver profile.", profile)
}

func GetDriver(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid driver id!")
	}
	profile, err := findDriver(database.Database.Db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Driver not found!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Driver profile.", profile)
}

func ListDrivers(c *fiber.Ctx) error {
	reqData := c.Locals("validatedDirectory").(*motorsportsValidator.DirectoryQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 12, 50)

	query := database.Database.Db.Where("is_deleted = ?", false)
	if state := strings.TrimSpace(reqData.State); state != "" {
		query = query.Where("LOWER(state) = ?", strings.ToLower(state))
	}
	if reqData.Flag != "" {
		query = query.Where("looking_for_team = ?", reqData.Flag == "true")
	}

	var all []motorsports.DriverProfile
	if err := query.Order("endorsement_count DESC, id ASC").Find(&all).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	drivers := make([]motorsports.DriverProfile, 0, len(all))
	discipline := strings.TrimSpace(reqData.Discipline)
	for _, d := range all {
		if discipline == "" || hasDiscipline(d.Disciplines, discipline) {
			drivers = append(drivers, d)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Drivers.", fiber.Map{
		"drivers":    pageOf(drivers, page),
		"pagination": page.Meta(int64(len(drivers))),
	})
}

func pageOf[T any](items []T, p utils.Pagination) []T {
	start := p.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func EndorseDriver(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid driver id!")
	}
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedEndorsement").(*motorsportsValidator.EndorseRequest)
	db := database.Database.Db

	profile, err := findDriver(db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Driver not found!")
	}
	if profile.UserID == userId {
		return middleware.ErrorResponse(c, apperrors.ErrSelfAction, "You cannot endorse yourself!")
	}

	endorsement := motorsports.Endorsement{EndorserID: userId, DriverProfileID: profile.ID, Comment: reqData.Comment}
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&motorsports.Endorsement{}).
			Where("endorser_id = ? AND driver_profile_id = ?", userId, profile.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("endorsement of driver %d: %w", profile.ID, apperrors.ErrDuplicate)
		}
		if err := tx.Create(&endorsement).Error; err != nil {
			return err
		}
		return tx.Model(&motorsports.DriverProfile{}).Where("id = ?", profile.ID).
			Update("endorsement_count", gorm.Expr("endorsement_count + ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return middleware.ErrorResponse(c, err, "You already endorsed this driver!")
		}
		logger.Log.Error("error endorsing driver", logger.Uint("driverId", profile.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to endorse driver!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Driver endorsed.", endorsement)
}

func ListEndorsements(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid driver id!")
	}
	db := database.Database.Db

	profile, err := findDriver(db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Driver not found!")
	}

	endorsements := []motorsports.Endorsement{}
	if err := db.Where("driver_profile_id = ?", profile.ID).Order("created_at DESC").Find(&endorsements).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Endorsements.", fiber.Map{
		"endorsements":     endorsements,
		"endorsementCount": profile.EndorsementCount,
	})
}

// MyTeamMatches ranks teams for the caller's driver profile.
func MyTeamMatches(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedMatch").(*motorsportsValidator.MatchQuery)
	db := database.Database.Db

	var profile motorsports.DriverProfile
	if err := db.Where("user_id = ? AND is_deleted = ?", userId, false).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Create a driver profile first!", nil)
	}

	var teams []motorsports.TeamProfile
	if err := db.Where("is_deleted = ?", false).Find(&teams).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Team matches.",
		utils.RankTeamsForDriver(profile, teams, userId, reqData.Limit))
}
