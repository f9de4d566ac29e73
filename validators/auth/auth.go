package authValidator

import (
	"strings"

	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"omitempty,numeric,min=7,max=15"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
	CnfPassword     string `json:"cnfPassword" validate:"required"`
}

func normaliseEmail(email *string) {
	*email = strings.ToLower(strings.TrimSpace(*email))
}

// Signup validator middleware
func Signup() fiber.Handler {
	return validators.Body("validatedUser", func(r *SignupRequest, errors map[string]string) {
		normaliseEmail(&r.Email)
		r.Name = strings.TrimSpace(r.Name)
		if strings.TrimSpace(r.Password) != r.Password {
			errors["password"] = "Password must not start or end with spaces!"
		}
	})
}

// Login validator middleware
func Login() fiber.Handler {
	return validators.Body("validatedUser", func(r *LoginRequest, _ map[string]string) {
		normaliseEmail(&r.Email)
	})
}

// SendOTP validator middleware
func SendOTP() fiber.Handler {
	return validators.Body("validatedUser", func(r *EmailRequest, _ map[string]string) {
		normaliseEmail(&r.Email)
	})
}

// VerifyOTP validates OTP request data
func VerifyOTP() fiber.Handler {
	return validators.Body("validatedUser", func(r *VerifyOTPRequest, _ map[string]string) {
		normaliseEmail(&r.Email)
	})
}

func ResetPassword() fiber.Handler {
	return validators.Body[ResetPasswordRequest]("validatedUser")
}

func ChangeLoginPassword() fiber.Handler {
	return validators.Body("validatedUser", func(r *ChangePasswordRequest, errors map[string]string) {
		if r.NewPassword != r.CnfPassword {
			errors["cnfPassword"] = "Confirm Password Not Match!"
		}
		if r.CurrentPassword != "" && r.NewPassword == r.CurrentPassword {
			errors["newPassword"] = "New password must differ from the current one!"
		}
	})
}

func LoginHistoryList() fiber.Handler {
	return validators.Page()
}
