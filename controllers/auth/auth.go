package authController

import (
	"errors"
	"time"

	"paddock/config"
	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"
	"paddock/validators"
	authValidator "paddock/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins  = 3
	lockoutDuration  = 1 * time.Minute
	failedLoginReset = 15 * time.Minute
	otpTTL           = 5 * time.Minute
)

func Signup(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.SignupRequest)
	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		logger.Log.Error("error hashing password", logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Mobile:   reqData.Mobile,
		Role:     models.RoleUser,
		Password: string(hashedPassword),
	}

	if err := db.Create(&newUser).Error; err != nil {
		logger.Log.Error("error saving user", logger.String("email", reqData.Email), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	utils.SendWelcomeEmail(newUser.Email, newUser.Name)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.LoginRequest)
	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := time.Now()

	// Check if the user is blocked
	if user.IsSuspended(now) {
		if user.BlockedUntil == nil {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account has been blocked. Contact support.", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failedLoginReset {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	// Validate password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		updates := map[string]interface{}{
			"failed_login_attempts": user.FailedLoginAttempts + 1,
			"last_failed_login":     now,
		}

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			unblockTime := now.Add(lockoutDuration)
			updates["is_blocked"] = true
			updates["blocked_until"] = unblockTime
			updates["failed_login_attempts"] = 0
		}

		if err := db.Model(&user).Updates(updates).Error; err != nil {
			logger.Log.Error("error recording failed login", logger.Uint("userId", user.ID), logger.Error(err))
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	// Reset failed login attempts after successful login
	if err := db.Model(&user).Updates(map[string]interface{}{
		"last_login":            now,
		"failed_login_attempts": 0,
		"last_failed_login":     nil,
		"is_blocked":            false,
		"blocked_until":         nil,
	}).Error; err != nil {
		logger.Log.Error("error saving last login time", logger.Uint("userId", user.ID), logger.Error(err))
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}

	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Timestamp: now,
	}
	if err := db.Create(&loginTracking).Error; err != nil {
		logger.Log.Error("error saving login tracking details", logger.Uint("userId", user.ID), logger.Error(err))
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	logger.Log.Info("user logged in", logger.Uint("userId", user.ID), logger.String("ip", ip))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func LoginHistoryList(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedPage").(*validators.PageQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 10, 100)

	db := database.Database.Db
	var loginTracking []models.LoginTracking
	var total int64

	query := db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", userId, false)
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	if err := query.Order("timestamp DESC").Offset(page.Offset()).Limit(page.Limit).Find(&loginTracking).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": loginTracking,
		"pagination":    page.Meta(total),
	})
}

// issueOTP stores a fresh code for the user and emails it. Earlier unused
// codes for the same purpose are retired.
func issueOTP(user models.User, purpose string) error {
	db := database.Database.Db

	if err := db.Model(&models.OTP{}).
		Where("user_id = ? AND purpose = ? AND is_used = ? AND is_deleted = ?", user.ID, purpose, false, false).
		Update("is_deleted", true).Error; err != nil {
		return err
	}

	otp := utils.GenerateOTP()
	otpRecord := models.OTP{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      otp,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := db.Create(&otpRecord).Error; err != nil {
		return err
	}

	label := "email verification"
	if purpose == models.OTPPurposeForgotPassword {
		label = "password reset"
	}
	return utils.SendOTPEmail(user.Email, user.Name, otp, label)
}

var errInvalidOTP = errors.New("invalid or expired otp")

// consumeOTP marks a matching live code as used.
func consumeOTP(email, code, purpose string) (models.User, error) {
	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", email, false).First(&user).Error; err != nil {
		return user, err
	}

	var otpRecord models.OTP
	if err := db.Where("user_id = ? AND code = ? AND purpose = ? AND is_used = ? AND is_deleted = ?",
		user.ID, code, purpose, false, false).
		Order("created_at DESC").First(&otpRecord).Error; err != nil {
		return user, errInvalidOTP
	}
	if otpRecord.ExpiresAt.Before(time.Now()) {
		return user, errInvalidOTP
	}

	// only one request can flip the code from unused to used
	result := db.Model(&models.OTP{}).Where("id = ? AND is_used = ?", otpRecord.ID, false).Update("is_used", true)
	if result.Error != nil {
		return user, result.Error
	}
	if result.RowsAffected == 0 {
		return user, errInvalidOTP
	}
	return user, nil
}

func SendOTP(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.EmailRequest)

	var user models.User
	if err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Invalid email!", nil)
	}
	if user.IsEmailVerified {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email already verified!", nil)
	}

	if err := issueOTP(user, models.OTPPurposeVerifyEmail); err != nil {
		logger.Log.Error("failed to send verification otp", logger.Uint("userId", user.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send OTP to email!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP sent successfully.", nil)
}

func VerifyOTP(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.VerifyOTPRequest)

	user, err := consumeOTP(reqData.Email, reqData.Code, models.OTPPurposeVerifyEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		if errors.Is(err, errInvalidOTP) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid OTP or OTP expired!", nil)
		}
		return middleware.ErrorResponse(c, err, "")
	}

	if err := database.Database.Db.Model(&user).Update("is_email_verified", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user verification status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP verified successfully!", nil)
}

func ForgotPasswordSendOTP(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.EmailRequest)

	var user models.User
	if err := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Invalid email credentials!", nil)
	}

	if err := issueOTP(user, models.OTPPurposeForgotPassword); err != nil {
		logger.Log.Error("failed to send password reset otp", logger.Uint("userId", user.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send OTP to email!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP sent successfully.", nil)
}

func ForgotPasswordVerifyOTP(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.VerifyOTPRequest)

	user, err := consumeOTP(reqData.Email, reqData.Code, models.OTPPurposeForgotPassword)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		if errors.Is(err, errInvalidOTP) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid OTP or OTP expired!", nil)
		}
		return middleware.ErrorResponse(c, err, "")
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Now You can reset your password.", fiber.Map{
		"token": token,
	})
}

func ResetPassword(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedUser").(*authValidator.ResetPasswordRequest)
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found or invalid credentials!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to hash password!", nil)
	}

	if err := db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		logger.Log.Error("error updating user password", logger.Uint("userId", user.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully.", nil)
}

func ChangeLoginPassword(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedUser").(*authValidator.ChangePasswordRequest)
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Validate current password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Current password is incorrect!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to hash password!", nil)
	}

	if err := db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		logger.Log.Error("error updating user password", logger.Uint("userId", user.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}
