package utils

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"paddock/apperrors"
	"paddock/config"

	"github.com/go-resty/resty/v2"
)

// Geocoder resolves free text addresses to coordinates.
type Geocoder struct {
	client *resty.Client
	url    string
	apiKey string
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func NewGeocoder(url, apiKey string) *Geocoder {
	return &Geocoder{
		client: resty.New().
			SetTimeout(5 * time.Second).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "paddock-geocoder"),
		url:    strings.TrimSpace(url),
		apiKey: apiKey,
	}
}

// DefaultGeocoder is built from configuration by InitIntegrations.
var DefaultGeocoder = NewGeocoder("", "")

func (g *Geocoder) Configured() bool {
	return g != nil && g.url != ""
}

// Geocode returns the first match for query.
func (g *Geocoder) Geocode(ctx context.Context, query string) (float64, float64, error) {
	if !g.Configured() {
		return 0, 0, apperrors.ErrNotConfigured
	}
	if strings.TrimSpace(query) == "" {
		return 0, 0, fmt.Errorf("empty geocode query: %w", apperrors.ErrBadRequest)
	}

	var results []geocodeResult
	req := g.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("format", "json").
		SetResult(&results)
	if g.apiKey != "" {
		req.SetQueryParam("key", g.apiKey)
	}

	resp, err := req.Get(g.url)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request: %v: %w", err, apperrors.ErrUpstream)
	}
	if resp.IsError() {
		return 0, 0, fmt.Errorf("geocode returned %d: %w", resp.StatusCode(), apperrors.ErrUpstream)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no geocode match for %q: %w", query, apperrors.ErrNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q: %w", results[0].Lat, apperrors.ErrUpstream)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q: %w", results[0].Lon, apperrors.ErrUpstream)
	}
	return lat, lng, nil
}

// InitIntegrations builds the outbound clients from configuration.
func InitIntegrations() {
	cfg := config.AppConfig
	DefaultGeocoder = NewGeocoder(cfg.GeocodeApiURL, cfg.GeocodeApiKey)
	DefaultPayments = NewPaymentClient(cfg.PaymentApiURL, cfg.PaymentApiKey)
}
