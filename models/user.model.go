package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	gorm.Model
	ProfileImage        string     `gorm:"default:''" json:"profileImage"`
	Name                string     `gorm:"default:''" json:"name"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Mobile              string     `gorm:"default:''" json:"mobile"`
	Role                string     `gorm:"default:'USER'" json:"role"` // USER or ADMIN
	Password            string     `gorm:"not null" json:"-"`
	Bio                 string     `gorm:"type:text" json:"bio"`
	City                string     `json:"city"`
	State               string     `json:"state"`
	IsEmailVerified     bool       `gorm:"default:false" json:"isEmailVerified"`
	LastLogin           *time.Time `json:"lastLogin"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	IsBlocked           bool       `gorm:"default:false" json:"isBlocked"`
	BlockedUntil        *time.Time `json:"blockedUntil,omitempty"`
	IsDeleted           bool       `gorm:"default:false" json:"-"`
}

// PublicUser is the subset of a user that other members can see.
type PublicUser struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
	City         string `json:"city"`
	State        string `json:"state"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		City:         u.City,
		State:        u.State,
	}
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsSuspended reports whether the account is blocked at the given time. An
// admin block has no end; a login lockout expires at BlockedUntil.
func (u User) IsSuspended(at time.Time) bool {
	if !u.IsBlocked {
		return false
	}
	return u.BlockedUntil == nil || u.BlockedUntil.After(at)
}
