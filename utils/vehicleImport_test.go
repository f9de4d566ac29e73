package utils

import (
	"errors"
	"strings"
	"testing"

	"paddock/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVehicleCSV(t *testing.T) {
	input := strings.Join([]string{
		"Title,Make,Category,Daily_Rate_Cents,Track_Ready,Latitude,Longitude,Features",
		"Ariel Atom,Ariel,TRACK_CAR,45000,true,34.5,-117.2,harness| data logger ||",
		",Ariel,track_car,45000,false,,,",
		"Mystery,Acme,hovercraft,1000,false,,,",
		"Freebie,Acme,kart,0,false,,,",
	}, "\n")

	rows, err := ParseVehicleCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	first := rows[0]
	require.NoError(t, first.Err)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "Ariel Atom", first.Vehicle.Title)
	assert.Equal(t, models.CategoryTrackCar, first.Vehicle.Category)
	assert.Equal(t, models.TransmissionManual, first.Vehicle.Transmission)
	assert.Equal(t, int64(45000), first.Vehicle.DailyRateCents)
	assert.Equal(t, 1, first.Vehicle.MinRentalDays)
	assert.True(t, first.Vehicle.TrackReady)
	assert.InDelta(t, 34.5, first.Vehicle.Latitude, 1e-9)
	assert.Equal(t, []string{"harness", "data logger"}, []string(first.Vehicle.Features))

	assert.EqualError(t, rows[1].Err, "title is required")
	assert.Equal(t, 3, rows[1].Line)
	assert.ErrorContains(t, rows[2].Err, "unknown category")
	assert.EqualError(t, rows[3].Err, "daily_rate_cents must be positive")
}

func TestParseVehicleCSVEmpty(t *testing.T) {
	_, err := ParseVehicleCSV(strings.NewReader("title,make\n"))
	assert.True(t, errors.Is(err, ErrEmptyImport))
}
