package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"paddock/models"

	"github.com/spf13/cast"
	"gorm.io/datatypes"
)

var ErrEmptyImport = errors.New("nothing to import")

// ImportRow is one parsed CSV line. Err is set when the row is skipped.
type ImportRow struct {
	Line    int
	Vehicle models.Vehicle
	Err     error
}

// ParseVehicleCSV reads listings from a CSV with a header row. Columns are
// matched by name, case-insensitively; features are separated by "|".
func ParseVehicleCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows: %w", ErrEmptyImport)
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, field string) string {
		if idx, ok := headerIndex[field]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	rows := make([]ImportRow, 0, len(records)-1)
	for i, row := range records[1:] {
		v := models.Vehicle{
			Title:          get(row, "title"),
			Description:    get(row, "description"),
			Make:           get(row, "make"),
			VehicleModel:   get(row, "model"),
			Year:           cast.ToInt(get(row, "year")),
			Category:       strings.ToLower(get(row, "category")),
			Transmission:   strings.ToLower(get(row, "transmission")),
			Horsepower:     cast.ToInt(get(row, "horsepower")),
			DailyRateCents: cast.ToInt64(get(row, "daily_rate_cents")),
			MinRentalDays:  cast.ToInt(get(row, "min_rental_days")),
			TrackReady:     cast.ToBool(get(row, "track_ready")),
			City:           get(row, "city"),
			State:          get(row, "state"),
			Address:        get(row, "address"),
			Latitude:       cast.ToFloat64(get(row, "latitude")),
			Longitude:      cast.ToFloat64(get(row, "longitude")),
			Features:       splitFeatures(get(row, "features")),
			Images:         datatypes.JSONSlice[string]{},
			IsActive:       true,
		}
		err := checkImportedVehicle(&v)
		rows = append(rows, ImportRow{Line: i + 2, Vehicle: v, Err: err})
	}
	return rows, nil
}

func splitFeatures(s string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, f := range strings.Split(s, "|") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// checkImportedVehicle fills defaults and rejects rows the API would refuse.
func checkImportedVehicle(v *models.Vehicle) error {
	if v.Title == "" {
		return fmt.Errorf("title is required")
	}
	if v.DailyRateCents <= 0 {
		return fmt.Errorf("daily_rate_cents must be positive")
	}
	if v.MinRentalDays < 1 {
		v.MinRentalDays = 1
	}
	if v.Category == "" {
		v.Category = models.CategoryOther
	}
	if !contains(models.VehicleCategories, v.Category) {
		return fmt.Errorf("unknown category %q", v.Category)
	}
	if v.Transmission == "" {
		v.Transmission = models.TransmissionManual
	}
	if !contains(models.Transmissions, v.Transmission) {
		return fmt.Errorf("unknown transmission %q", v.Transmission)
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, s := range list {
		if s == value {
			return true
		}
	}
	return false
}
