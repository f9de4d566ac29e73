package vehicleValidator

import (
	"strings"
	"time"

	"paddock/models"
	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	minVehicleYear    = 1900
	maxModelYearAhead = 1
)

type CreateVehicleRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=120"`
	Description    string   `json:"description" validate:"max=5000"`
	Make           string   `json:"make" validate:"required,max=60"`
	Model          string   `json:"model" validate:"max=60"`
	Year           int      `json:"year" validate:"required"`
	Category       string   `json:"category" validate:"required,oneof=track_car race_car kart motorcycle drift_car rally_car formula other"`
	Transmission   string   `json:"transmission" validate:"omitempty,oneof=manual sequential automatic paddle"`
	Horsepower     int      `json:"horsepower" validate:"gte=0,lte=5000"`
	DailyRateCents int64    `json:"dailyRateCents" validate:"required,gt=0"`
	MinRentalDays  int      `json:"minRentalDays" validate:"omitempty,gte=1,lte=60"`
	TrackReady     bool     `json:"trackReady"`
	City           string   `json:"city" validate:"required,max=80"`
	State          string   `json:"state" validate:"required,max=80"`
	Address        string   `json:"address" validate:"max=255"`
	Latitude       *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Features       []string `json:"features" validate:"max=30,dive,min=1,max=60"`
}

type UpdateVehicleRequest struct {
	Title          *string   `json:"title" validate:"omitempty,min=3,max=120"`
	Description    *string   `json:"description" validate:"omitempty,max=5000"`
	Make           *string   `json:"make" validate:"omitempty,min=1,max=60"`
	Model          *string   `json:"model" validate:"omitempty,max=60"`
	Year           *int      `json:"year"`
	Category       *string   `json:"category" validate:"omitempty,oneof=track_car race_car kart motorcycle drift_car rally_car formula other"`
	Transmission   *string   `json:"transmission" validate:"omitempty,oneof=manual sequential automatic paddle"`
	Horsepower     *int      `json:"horsepower" validate:"omitempty,gte=0,lte=5000"`
	DailyRateCents *int64    `json:"dailyRateCents" validate:"omitempty,gt=0"`
	MinRentalDays  *int      `json:"minRentalDays" validate:"omitempty,gte=1,lte=60"`
	TrackReady     *bool     `json:"trackReady"`
	City           *string   `json:"city" validate:"omitempty,min=1,max=80"`
	State          *string   `json:"state" validate:"omitempty,min=1,max=80"`
	Address        *string   `json:"address" validate:"omitempty,max=255"`
	Latitude       *float64  `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64  `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Features       *[]string `json:"features" validate:"omitempty,max=30,dive,min=1,max=60"`
}

type StatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type ImageRequest struct {
	URL string `json:"url" validate:"required"`
}

type AvailabilityQuery struct {
	From string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

func checkYear(year int, errors map[string]string) {
	if year < minVehicleYear || year > time.Now().Year()+maxModelYearAhead {
		errors["year"] = "year is out of range!"
	}
}

func CreateVehicle() fiber.Handler {
	return validators.Body("validatedVehicle", func(r *CreateVehicleRequest, errors map[string]string) {
		r.Category = strings.ToLower(strings.TrimSpace(r.Category))
		r.Title = strings.TrimSpace(r.Title)
		checkYear(r.Year, errors)
		if (r.Latitude == nil) != (r.Longitude == nil) {
			errors["longitude"] = "latitude and longitude must be given together!"
		}
		if r.MinRentalDays == 0 {
			r.MinRentalDays = 1
		}
		if r.Transmission == "" {
			r.Transmission = models.TransmissionManual
		}
	})
}

func UpdateVehicle() fiber.Handler {
	return validators.Body("validatedVehicle", func(r *UpdateVehicleRequest, errors map[string]string) {
		if r.Year != nil {
			checkYear(*r.Year, errors)
		}
		if (r.Latitude == nil) != (r.Longitude == nil) {
			errors["longitude"] = "latitude and longitude must be given together!"
		}
	})
}

func SetStatus() fiber.Handler {
	return validators.Body[StatusRequest]("validatedStatus")
}

func RemoveImage() fiber.Handler {
	return validators.Body[ImageRequest]("validatedImage")
}

func Availability() fiber.Handler {
	return validators.Query("validatedAvailability", func(r *AvailabilityQuery, errors map[string]string) {
		if r.From != "" && r.To != "" && r.To < r.From {
			errors["to"] = "to must not be before from!"
		}
	})
}
