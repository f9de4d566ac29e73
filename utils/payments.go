package utils

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"paddock/apperrors"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const PaymentProviderName = "paddockpay"

// PaymentIntent is what the provider returns for a new charge.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// Refund is the provider response to a refund request.
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// PaymentClient talks to the card payment provider.
type PaymentClient struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

func NewPaymentClient(baseURL, apiKey string) *PaymentClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &PaymentClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

var DefaultPayments = NewPaymentClient("", "")

func (p *PaymentClient) Configured() bool {
	return p != nil && p.baseURL != "" && p.apiKey != ""
}

// CreateIntent opens a payment intent. idempotencyKey may be empty, in
// which case a fresh one is generated and returned.
func (p *PaymentClient) CreateIntent(ctx context.Context, amountCents int64, currency string, reservationID uint, idempotencyKey string) (*PaymentIntent, string, error) {
	if !p.Configured() {
		return nil, "", apperrors.ErrNotConfigured
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	var intent PaymentIntent
	var perr providerError
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Idempotency-Key", idempotencyKey).
		SetBody(map[string]interface{}{
			"amount":   amountCents,
			"currency": currency,
			"metadata": map[string]interface{}{
				"reservation_id": reservationID,
			},
		}).
		SetResult(&intent).
		SetError(&perr).
		Post("/payment_intents")
	if err != nil {
		return nil, idempotencyKey, fmt.Errorf("create payment intent: %v: %w", err, apperrors.ErrUpstream)
	}
	if resp.IsError() {
		return nil, idempotencyKey, fmt.Errorf("create payment intent returned %d %s: %w", resp.StatusCode(), perr.Error.Message, apperrors.ErrUpstream)
	}
	if intent.ID == "" {
		return nil, idempotencyKey, fmt.Errorf("payment intent without id: %w", apperrors.ErrUpstream)
	}
	return &intent, idempotencyKey, nil
}

// Refund asks the provider to refund a payment intent in full.
func (p *PaymentClient) Refund(ctx context.Context, providerPaymentID string) (*Refund, error) {
	if !p.Configured() {
		return nil, apperrors.ErrNotConfigured
	}

	var refund Refund
	var perr providerError
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Idempotency-Key", "refund-"+providerPaymentID).
		SetBody(map[string]interface{}{"payment_intent": providerPaymentID}).
		SetResult(&refund).
		SetError(&perr).
		Post("/refunds")
	if err != nil {
		return nil, fmt.Errorf("refund: %v: %w", err, apperrors.ErrUpstream)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("refund returned %d %s: %w", resp.StatusCode(), perr.Error.Message, apperrors.ErrUpstream)
	}
	return &refund, nil
}

// SignPayload returns the hex HMAC-SHA256 of body under secret.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected, err := hex.DecodeString(SignPayload(secret, body))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}
