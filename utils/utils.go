package utils

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"paddock/apperrors"

	"github.com/jinzhu/now"
)

const DayLayout = "2006-01-02"

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the OS source is unavailable
			panic(err)
		}
		sb.WriteString(n.String())
	}
	return sb.String()
}

// Today returns midnight UTC of the given instant.
func Today(at time.Time) time.Time {
	return now.With(at.UTC()).BeginningOfDay()
}

// ParseDay parses a YYYY-MM-DD value as midnight UTC.
func ParseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, apperrors.ErrBadRequest)
	}
	return t, nil
}

// DaysInclusive counts calendar days between two UTC midnights, both included.
func DaysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// PlatformFee returns percent of amount in cents, rounded half up.
func PlatformFee(amountCents int64, percent int) int64 {
	if percent <= 0 || amountCents <= 0 {
		return 0
	}
	return (amountCents*int64(percent) + 50) / 100
}

// MaxPage bounds page numbers so offsets cannot overflow.
const MaxPage = 100000

// Pagination normalises page and limit query values.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func NewPagination(page, limit, defaultLimit, maxLimit int) Pagination {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta builds the pagination block returned with list responses.
func (p Pagination) Meta(total int64) map[string]interface{} {
	totalPages := int64(0)
	if p.Limit > 0 {
		totalPages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return map[string]interface{}{
		"total":      total,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": totalPages,
	}
}

// FormatCents renders an amount for emails, e.g. 12345 -> "123.45".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// RoundRating keeps two decimals of an average rating.
func RoundRating(v float64) float64 {
	return math.Round(v*100) / 100
}
