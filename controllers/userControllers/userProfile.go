package userController

import (
	"strings"

	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"
	userValidator "paddock/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func GetProfile(c *fiber.Ctx) error {
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", middleware.CurrentUserID(c), false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User profile.", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Name != nil {
		updates["name"] = strings.TrimSpace(*reqData.Name)
	}
	if reqData.Mobile != nil {
		updates["mobile"] = *reqData.Mobile
	}
	if reqData.Bio != nil {
		updates["bio"] = *reqData.Bio
	}
	if reqData.City != nil {
		updates["city"] = strings.TrimSpace(*reqData.City)
	}
	if reqData.State != nil {
		updates["state"] = strings.TrimSpace(*reqData.State)
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			logger.Log.Error("error updating profile", logger.Uint("userId", userId), logger.Error(err))
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
		}
		db.First(&user, user.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

func UploadAvatar(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Image file is required!", nil)
	}

	url, err := utils.SaveImage(file, "avatars")
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	previous := user.ProfileImage
	if err := db.Model(&user).Update("profile_image", url).Error; err != nil {
		_ = utils.DeleteImage(url)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile image!", nil)
	}
	if previous != "" {
		if err := utils.DeleteImage(previous); err != nil {
			logger.Log.Warning("failed to remove old avatar", logger.String("url", previous), logger.Error(err))
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile image updated.", fiber.Map{"profileImage": url})
}

// PublicProfile is what other members see about a user.
type PublicProfile struct {
	models.PublicUser
	Bio           string  `json:"bio"`
	ListingCount  int64   `json:"listingCount"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int64   `json:"reviewCount"`
	MemberSince   string  `json:"memberSince"`
}

func GetPublicProfile(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid user id!")
	}
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	profile := PublicProfile{
		PublicUser:  user.Public(),
		Bio:         user.Bio,
		MemberSince: user.CreatedAt.UTC().Format(utils.DayLayout),
	}

	if err := db.Model(&models.Vehicle{}).
		Where("owner_id = ? AND is_active = ? AND is_deleted = ?", id, true, false).
		Count(&profile.ListingCount).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	var agg struct {
		Avg   float64
		Total int64
	}
	if err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Where("owner_id = ? AND is_deleted = ?", id, false).
		Scan(&agg).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	profile.AverageRating = utils.RoundRating(agg.Avg)
	profile.ReviewCount = agg.Total

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User profile.", profile)
}
