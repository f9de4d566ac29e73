package utils

import (
	"net/url"
	"testing"
	"time"

	"paddock/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func query(values url.Values) func(string) string {
	return values.Get
}

func fleet() []models.Vehicle {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id uint, title, brand, category string, rate int64, year, hp int, lat, lng float64) models.Vehicle {
		return models.Vehicle{
			Model:          gorm.Model{ID: id, CreatedAt: base.Add(time.Duration(id) * time.Hour)},
			Title:          title,
			Make:           brand,
			Category:       category,
			Transmission:   models.TransmissionManual,
			DailyRateCents: rate,
			Year:           year,
			Horsepower:     hp,
			Latitude:       lat,
			Longitude:      lng,
			IsActive:       true,
			City:           "Sebring",
			State:          "FL",
		}
	}

	vs := []models.Vehicle{
		mk(1, "Spec Miata track day car", "Mazda", models.CategoryTrackCar, 25000, 1999, 140, 27.45, -81.35),
		mk(2, "GT3 Cup", "Porsche", models.CategoryRaceCar, 150000, 2021, 510, 28.54, -81.38),
		mk(3, "Rotax kart", "Tony Kart", models.CategoryKart, 9000, 2023, 30, 0, 0),
		mk(4, "S2000 drift build", "Honda", models.CategoryDriftCar, 30000, 2004, 300, 33.75, -84.39),
	}
	vs[1].TrackReady = true
	vs[1].AverageRating = 4.8
	vs[1].BookingCount = 2
	vs[0].AverageRating = 4.2
	vs[0].BookingCount = 9
	vs[0].VehicleModel = "MX-5"
	vs[3].City = "Atlanta"
	vs[3].State = "GA"
	return vs
}

func ids(hits []VehicleHit) []uint {
	out := make([]uint, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Vehicle.ID)
	}
	return out
}

func TestParseVehicleFilterDefaults(t *testing.T) {
	f, errs := ParseVehicleFilter(query(url.Values{}))
	assert.Empty(t, errs)
	assert.Equal(t, SortNewest, f.Sort)
	assert.False(t, f.HasDates())
}

func TestParseVehicleFilterRejectsBadInput(t *testing.T) {
	cases := map[string]url.Values{
		"minPrice":  {"minPrice": {"cheap"}},
		"maxPrice":  {"minPrice": {"500"}, "maxPrice": {"100"}},
		"maxYear":   {"minYear": {"2020"}, "maxYear": {"2010"}},
		"lat":       {"lat": {"95"}, "lng": {"0"}},
		"radiusKm":  {"radiusKm": {"50"}},
		"endDate":   {"startDate": {"2026-05-10"}, "endDate": {"2026-05-01"}},
		"sort":      {"sort": {"distance"}},
		"minRating": {"minRating": {"6"}},
	}
	for field, values := range cases {
		_, errs := ParseVehicleFilter(query(values))
		assert.Contains(t, errs, field, "%v", values)
	}
}

func TestFilterVehiclesSearchTerms(t *testing.T) {
	f, errs := ParseVehicleFilter(query(url.Values{"q": {"MIATA mx-5"}}))
	require.Empty(t, errs)
	assert.Equal(t, []uint{1}, ids(FilterVehicles(fleet(), f, nil)))

	f, _ = ParseVehicleFilter(query(url.Values{"q": {"miata porsche"}}))
	assert.Empty(t, FilterVehicles(fleet(), f, nil), "every term has to match")
}

func TestFilterVehiclesAttributes(t *testing.T) {
	f, _ := ParseVehicleFilter(query(url.Values{"minPrice": {"10000"}, "maxPrice": {"100000"}}))
	assert.Equal(t, []uint{4, 1}, ids(FilterVehicles(fleet(), f, nil)))

	f, _ = ParseVehicleFilter(query(url.Values{"trackReady": {"true"}}))
	assert.Equal(t, []uint{2}, ids(FilterVehicles(fleet(), f, nil)))

	f, _ = ParseVehicleFilter(query(url.Values{"category": {"KART"}}))
	assert.Equal(t, []uint{3}, ids(FilterVehicles(fleet(), f, nil)))

	f, _ = ParseVehicleFilter(query(url.Values{"make": {"honda"}, "state": {"ga"}}))
	assert.Equal(t, []uint{4}, ids(FilterVehicles(fleet(), f, nil)))

	f, _ = ParseVehicleFilter(query(url.Values{"minYear": {"2004"}, "minHorsepower": {"200"}}))
	assert.Equal(t, []uint{4, 2}, ids(FilterVehicles(fleet(), f, nil)))

	f, _ = ParseVehicleFilter(query(url.Values{"minRating": {"4.5"}}))
	assert.Equal(t, []uint{2}, ids(FilterVehicles(fleet(), f, nil)))
}

func TestFilterVehiclesSkipsInactiveAndUnavailable(t *testing.T) {
	vs := fleet()
	vs[0].IsActive = false
	vs[1].IsDeleted = true

	f, _ := ParseVehicleFilter(query(url.Values{}))
	assert.Equal(t, []uint{4, 3}, ids(FilterVehicles(vs, f, map[uint]bool{3: false})))
	assert.Equal(t, []uint{4}, ids(FilterVehicles(vs, f, map[uint]bool{3: true})))
}

func TestFilterVehiclesRadius(t *testing.T) {
	// 150 km around Sebring reaches Orlando but not Atlanta; the kart has no coordinates
	f, errs := ParseVehicleFilter(query(url.Values{
		"lat": {"27.45"}, "lng": {"-81.35"}, "radiusKm": {"150"}, "sort": {"distance"},
	}))
	require.Empty(t, errs)

	hits := FilterVehicles(fleet(), f, nil)
	assert.Equal(t, []uint{1, 2}, ids(hits))
	require.NotNil(t, hits[0].DistanceKm)
	assert.InDelta(t, 0, *hits[0].DistanceKm, 0.01)
	assert.InDelta(t, 121, *hits[1].DistanceKm, 2)
}

func TestSortVehicleHits(t *testing.T) {
	cases := map[string][]uint{
		SortNewest:    {4, 3, 2, 1},
		SortPriceAsc:  {3, 1, 4, 2},
		SortPriceDesc: {2, 4, 1, 3},
		SortRating:    {2, 1, 4, 3},
		SortPopular:   {1, 2, 4, 3},
	}
	for order, want := range cases {
		f, errs := ParseVehicleFilter(query(url.Values{"sort": {order}}))
		require.Empty(t, errs)
		assert.Equal(t, want, ids(FilterVehicles(fleet(), f, nil)), order)
	}
}

func TestDistanceSortPutsUnlocatedLast(t *testing.T) {
	f, errs := ParseVehicleFilter(query(url.Values{"lat": {"33.75"}, "lng": {"-84.39"}, "sort": {"distance"}}))
	require.Empty(t, errs)
	assert.Equal(t, []uint{4, 2, 1, 3}, ids(FilterVehicles(fleet(), f, nil)))
}

func TestFacetsAndPaging(t *testing.T) {
	f, _ := ParseVehicleFilter(query(url.Values{}))
	hits := FilterVehicles(fleet(), f, nil)

	facets := BuildVehicleFacets(hits)
	assert.Equal(t, 1, facets.Categories[models.CategoryKart])
	assert.Equal(t, 1, facets.Makes["Porsche"])
	assert.Len(t, facets.Categories, 4)

	page := PageVehicleHits(hits, NewPagination(2, 3, 12, 50))
	assert.Equal(t, []uint{1}, ids(page))
	assert.Empty(t, PageVehicleHits(hits, NewPagination(3, 3, 12, 50)))
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(10, 10, 10, 10), 1e-9)
	// London to Paris
	assert.InDelta(t, 344, HaversineKm(51.5074, -0.1278, 48.8566, 2.3522), 2)
}
