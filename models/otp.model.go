package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OTPPurposeVerifyEmail    = "VERIFY_EMAIL"
	OTPPurposeForgotPassword = "FORGOT_PASSWORD"
)

type OTP struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Email     string    `gorm:"size:100;index" json:"email"`
	Code      string    `gorm:"size:6;not null" json:"-"`
	Purpose   string    `gorm:"size:30;not null" json:"purpose"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsUsed    bool      `gorm:"default:false" json:"is_used"`
	IsDeleted bool      `gorm:"default:false" json:"-"`
}
