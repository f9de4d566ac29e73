package utils

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"paddock/models"
)

// Vehicle list sort orders
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortPopular   = "popular"
	SortDistance  = "distance"
)

var vehicleSorts = map[string]bool{
	SortNewest: true, SortPriceAsc: true, SortPriceDesc: true,
	SortRating: true, SortPopular: true, SortDistance: true,
}

const earthRadiusKm = 6371.0

// VehicleFilter is the parsed form of the GET /vehicles query string.
type VehicleFilter struct {
	Terms         []string
	Category      string
	Transmission  string
	Make          string
	MinPrice      *int64
	MaxPrice      *int64
	MinYear       *int
	MaxYear       *int
	MinHorsepower *int
	TrackReady    bool
	City          string
	State         string
	Lat           *float64
	Lng           *float64
	RadiusKm      *float64
	StartDate     *time.Time
	EndDate       *time.Time
	MinRating     *float64
	Sort          string
}

// HasDates reports whether an availability window was requested.
func (f VehicleFilter) HasDates() bool {
	return f.StartDate != nil && f.EndDate != nil
}

func (f VehicleFilter) hasOrigin() bool {
	return f.Lat != nil && f.Lng != nil
}

// ParseVehicleFilter reads the listing filters through get, which returns
// the raw query value for a key. Problems are returned per parameter.
func ParseVehicleFilter(get func(key string) string) (VehicleFilter, map[string]string) {
	errs := make(map[string]string)
	f := VehicleFilter{
		Terms:        strings.Fields(strings.ToLower(get("q"))),
		Category:     strings.ToLower(strings.TrimSpace(get("category"))),
		Transmission: strings.ToLower(strings.TrimSpace(get("transmission"))),
		Make:         strings.TrimSpace(get("make")),
		City:         strings.TrimSpace(get("city")),
		State:        strings.TrimSpace(get("state")),
		Sort:         strings.ToLower(strings.TrimSpace(get("sort"))),
	}

	parseInt64 := func(key string) *int64 {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			errs[key] = key + " must be a non-negative integer"
			return nil
		}
		return &v
	}
	parseInt := func(key string) *int {
		v := parseInt64(key)
		if v == nil {
			return nil
		}
		n := int(*v)
		return &n
	}
	parseFloat := func(key string) *float64 {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			errs[key] = key + " must be a number"
			return nil
		}
		return &v
	}
	parseDate := func(key string) *time.Time {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			return nil
		}
		d, err := ParseDay(raw)
		if err != nil {
			errs[key] = key + " must be a date in YYYY-MM-DD format"
			return nil
		}
		return &d
	}

	f.MinPrice = parseInt64("minPrice")
	f.MaxPrice = parseInt64("maxPrice")
	f.MinYear = parseInt("minYear")
	f.MaxYear = parseInt("maxYear")
	f.MinHorsepower = parseInt("minHorsepower")
	f.Lat = parseFloat("lat")
	f.Lng = parseFloat("lng")
	f.RadiusKm = parseFloat("radiusKm")
	f.MinRating = parseFloat("minRating")
	f.StartDate = parseDate("startDate")
	f.EndDate = parseDate("endDate")

	if raw := strings.TrimSpace(get("trackReady")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs["trackReady"] = "trackReady must be true or false"
		}
		f.TrackReady = v
	}

	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		errs["maxPrice"] = "maxPrice must be greater than or equal to minPrice"
	}
	if f.MinYear != nil && f.MaxYear != nil && *f.MinYear > *f.MaxYear {
		errs["maxYear"] = "maxYear must be greater than or equal to minYear"
	}
	if f.Lat != nil && (*f.Lat < -90 || *f.Lat > 90) {
		errs["lat"] = "lat must be between -90 and 90"
	}
	if f.Lng != nil && (*f.Lng < -180 || *f.Lng > 180) {
		errs["lng"] = "lng must be between -180 and 180"
	}
	if (f.Lat == nil) != (f.Lng == nil) {
		errs["lng"] = "lat and lng must be given together"
	}
	if f.RadiusKm != nil {
		if *f.RadiusKm <= 0 {
			errs["radiusKm"] = "radiusKm must be greater than 0"
		} else if !f.hasOrigin() {
			errs["radiusKm"] = "radiusKm requires lat and lng"
		}
	}
	if f.MinRating != nil && (*f.MinRating < 0 || *f.MinRating > 5) {
		errs["minRating"] = "minRating must be between 0 and 5"
	}
	if (f.StartDate == nil) != (f.EndDate == nil) {
		errs["endDate"] = "startDate and endDate must be given together"
	} else if f.HasDates() && f.EndDate.Before(*f.StartDate) {
		errs["endDate"] = "endDate must not be before startDate"
	}

	if f.Sort == "" {
		f.Sort = SortNewest
	}
	if !vehicleSorts[f.Sort] {
		errs["sort"] = "sort must be one of newest, price_asc, price_desc, rating, popular, distance"
	} else if f.Sort == SortDistance && !f.hasOrigin() {
		errs["sort"] = "distance sort requires lat and lng"
	}

	return f, errs
}

// VehicleHit is a listing that passed the filter, with its distance from
// the requested origin when one was given.
type VehicleHit struct {
	Vehicle    models.Vehicle
	DistanceKm *float64
}

// VehicleFacets are counts over the filtered set.
type VehicleFacets struct {
	Categories map[string]int `json:"categories"`
	Makes      map[string]int `json:"makes"`
}

// FilterVehicles applies every filter in f to vehicles and returns the
// matches sorted. unavailable holds ids booked inside the requested window.
func FilterVehicles(vehicles []models.Vehicle, f VehicleFilter, unavailable map[uint]bool) []VehicleHit {
	hits := make([]VehicleHit, 0, len(vehicles))
	for _, v := range vehicles {
		if !v.IsActive || v.IsDeleted {
			continue
		}
		if !matchesTerms(v, f.Terms) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(v.Category, f.Category) {
			continue
		}
		if f.Transmission != "" && !strings.EqualFold(v.Transmission, f.Transmission) {
			continue
		}
		if f.Make != "" && !strings.EqualFold(v.Make, f.Make) {
			continue
		}
		if f.MinPrice != nil && v.DailyRateCents < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && v.DailyRateCents > *f.MaxPrice {
			continue
		}
		if f.MinYear != nil && v.Year < *f.MinYear {
			continue
		}
		if f.MaxYear != nil && v.Year > *f.MaxYear {
			continue
		}
		if f.MinHorsepower != nil && v.Horsepower < *f.MinHorsepower {
			continue
		}
		if f.TrackReady && !v.TrackReady {
			continue
		}
		if f.City != "" && !strings.EqualFold(strings.TrimSpace(v.City), f.City) {
			continue
		}
		if f.State != "" && !strings.EqualFold(strings.TrimSpace(v.State), f.State) {
			continue
		}
		if f.MinRating != nil && v.AverageRating < *f.MinRating {
			continue
		}
		if unavailable[v.ID] {
			continue
		}

		hit := VehicleHit{Vehicle: v}
		if f.hasOrigin() && v.HasLocation() {
			d := HaversineKm(*f.Lat, *f.Lng, v.Latitude, v.Longitude)
			hit.DistanceKm = &d
		}
		if f.RadiusKm != nil && (hit.DistanceKm == nil || *hit.DistanceKm > *f.RadiusKm) {
			continue
		}
		hits = append(hits, hit)
	}

	SortVehicleHits(hits, f.Sort)
	return hits
}

func matchesTerms(v models.Vehicle, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		v.Title, v.Make, v.VehicleModel, v.Description, v.City, v.State,
	}, " "))
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

// SortVehicleHits orders hits in place. Ties fall back to newest first.
func SortVehicleHits(hits []VehicleHit, order string) {
	newer := func(a, b models.Vehicle) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i].Vehicle, hits[j].Vehicle
		switch order {
		case SortPriceAsc:
			if a.DailyRateCents != b.DailyRateCents {
				return a.DailyRateCents < b.DailyRateCents
			}
		case SortPriceDesc:
			if a.DailyRateCents != b.DailyRateCents {
				return a.DailyRateCents > b.DailyRateCents
			}
		case SortRating:
			if a.AverageRating != b.AverageRating {
				return a.AverageRating > b.AverageRating
			}
			if a.ReviewCount != b.ReviewCount {
				return a.ReviewCount > b.ReviewCount
			}
		case SortPopular:
			if a.BookingCount != b.BookingCount {
				return a.BookingCount > b.BookingCount
			}
		case SortDistance:
			da, db := hits[i].DistanceKm, hits[j].DistanceKm
			switch {
			case da != nil && db == nil:
				return true
			case da == nil && db != nil:
				return false
			case da != nil && db != nil && *da != *db:
				return *da < *db
			}
		}
		return newer(a, b)
	})
}

// BuildVehicleFacets counts hits per category and make.
func BuildVehicleFacets(hits []VehicleHit) VehicleFacets {
	facets := VehicleFacets{
		Categories: make(map[string]int),
		Makes:      make(map[string]int),
	}
	for _, h := range hits {
		if h.Vehicle.Category != "" {
			facets.Categories[h.Vehicle.Category]++
		}
		if h.Vehicle.Make != "" {
			facets.Makes[h.Vehicle.Make]++
		}
	}
	return facets
}

// PageVehicleHits returns the slice of hits for the page.
func PageVehicleHits(hits []VehicleHit, p Pagination) []VehicleHit {
	start := p.Offset()
	if start < 0 || start >= len(hits) {
		return []VehicleHit{}
	}
	end := start + p.Limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[start:end]
}

// HaversineKm is the great-circle distance between two points.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
