package models

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vehicle categories
const (
	CategoryTrackCar   = "track_car"
	CategoryRaceCar    = "race_car"
	CategoryKart       = "kart"
	CategoryMotorcycle = "motorcycle"
	CategoryDriftCar   = "drift_car"
	CategoryRallyCar   = "rally_car"
	CategoryFormula    = "formula"
	CategoryOther      = "other"
)

var VehicleCategories = []string{
	CategoryTrackCar, CategoryRaceCar, CategoryKart, CategoryMotorcycle,
	CategoryDriftCar, CategoryRallyCar, CategoryFormula, CategoryOther,
}

// Transmission types
const (
	TransmissionManual     = "manual"
	TransmissionSequential = "sequential"
	TransmissionAutomatic  = "automatic"
	TransmissionPaddle     = "paddle"
)

var Transmissions = []string{
	TransmissionManual, TransmissionSequential, TransmissionAutomatic, TransmissionPaddle,
}

const MaxVehicleImages = 10

type Vehicle struct {
	gorm.Model
	OwnerID        uint    `gorm:"not null;index" json:"ownerId"`
	Title          string  `gorm:"size:120;not null" json:"title"`
	Description    string  `gorm:"type:text" json:"description"`
	Make           string  `gorm:"size:60;index" json:"make"`
	VehicleModel   string  `gorm:"column:model;size:60" json:"model"`
	Year           int     `json:"year"`
	Category       string  `gorm:"size:30;index" json:"category"`
	Transmission   string  `gorm:"size:30" json:"transmission"`
	Horsepower     int     `json:"horsepower"`
	DailyRateCents int64   `gorm:"not null" json:"dailyRateCents"`
	MinRentalDays  int     `gorm:"default:1" json:"minRentalDays"`
	TrackReady     bool    `gorm:"default:false" json:"trackReady"`
	City           string  `gorm:"size:80" json:"city"`
	State          string  `gorm:"size:80" json:"state"`
	Address        string  `json:"address"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`

	Features datatypes.JSONSlice[string] `json:"features"`
	Images   datatypes.JSONSlice[string] `json:"images"`

	IsActive      bool    `gorm:"default:true" json:"isActive"`
	AverageRating float64 `gorm:"default:0" json:"averageRating"`
	ReviewCount   int     `gorm:"default:0" json:"reviewCount"`
	BookingCount  int     `gorm:"default:0" json:"bookingCount"`
	IsDeleted     bool    `gorm:"default:false" json:"-"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// HasLocation reports whether the listing has been geocoded.
func (v Vehicle) HasLocation() bool {
	return v.Latitude != 0 || v.Longitude != 0
}

// LocationQuery is the free text sent to the geocoder.
func (v Vehicle) LocationQuery() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{v.Address, v.City, v.State} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

type Favorite struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorite_user_vehicle" json:"userId"`
	VehicleID uint `gorm:"not null;uniqueIndex:idx_favorite_user_vehicle" json:"vehicleId"`

	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}
