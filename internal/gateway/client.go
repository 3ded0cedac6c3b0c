package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable means the gateway could not be reached or answered
// 5xx. The charge outcome is unknown; the attempt may be retried with
// the same idempotency key.
var ErrUnavailable = errors.New("payment gateway unavailable")

// APIError is a 4xx answer from the gateway: it was reached and it
// refused the request. This is a terminal outcome for the attempt, not
// a transport fault.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway rejected request (%d): %s", e.StatusCode, e.Message)
}

type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type Payer struct {
	Email          string         `json:"email"`
	Identification Identification `json:"identification"`
}

// ChargeRequest mirrors the gateway's POST /v1/payments body. Token,
// installments and issuer are card-only; Pix needs nothing beyond the
// payer identification.
type ChargeRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Token             string  `json:"token,omitempty"`
	Description       string  `json:"description,omitempty"`
	Installments      int     `json:"installments,omitempty"`
	PaymentMethodID   string  `json:"payment_method_id"`
	IssuerID          string  `json:"issuer_id,omitempty"`
	Payer             Payer   `json:"payer"`
}

type TransactionData struct {
	QRCodeBase64 string `json:"qr_code_base64"`
	QRCode       string `json:"qr_code"`
	TicketURL    string `json:"ticket_url"`
}

type PointOfInteraction struct {
	TransactionData *TransactionData `json:"transaction_data"`
}

// PaymentResult is the gateway's view of a payment, shared by charge
// responses, detail fetches and therefore webhook convergence.
type PaymentResult struct {
	ID                 json.Number         `json:"id"`
	Status             string              `json:"status"`
	StatusDetail       string              `json:"status_detail"`
	TransactionAmount  float64             `json:"transaction_amount"`
	PaymentMethodID    string              `json:"payment_method_id"`
	Installments       int                 `json:"installments"`
	DateApproved       string              `json:"date_approved"`
	DateOfExpiration   string              `json:"date_of_expiration"`
	PointOfInteraction *PointOfInteraction `json:"point_of_interaction"`
	Payer              *Payer              `json:"payer"`
}

// TransactionID renders the gateway's numeric id as the string the
// ledger keys on. Empty when the gateway omitted it.
func (r *PaymentResult) TransactionID() string {
	return r.ID.String()
}

// ApprovedAt parses date_approved; nil when absent or unparseable.
func (r *PaymentResult) ApprovedAt() *time.Time {
	return parseGatewayTime(r.DateApproved)
}

// ExpiresAt parses date_of_expiration; nil when absent.
func (r *PaymentResult) ExpiresAt() *time.Time {
	return parseGatewayTime(r.DateOfExpiration)
}

func parseGatewayTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000-07:00", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

type Client interface {
	// Charge submits a payment. The idempotency key is attached to the
	// request and to the one transport-level retry, so the gateway
	// collapses duplicates of the same logical attempt.
	Charge(ctx context.Context, req *ChargeRequest, key IdempotencyKey) (*PaymentResult, error)

	// FetchStatus refreshes the full payment detail; webhook payloads
	// only carry the transaction id.
	FetchStatus(ctx context.Context, transactionID string) (*PaymentResult, error)
}

type httpClient struct {
	baseURL     string
	accessToken string
	http        *http.Client
	log         *zap.Logger
}

func NewClient(baseURL, accessToken string, timeout time.Duration, log *zap.Logger) Client {
	return &httpClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		http:        &http.Client{Timeout: timeout},
		log:         log.With(zap.String("client", "gateway")),
	}
}

func (c *httpClient) Charge(ctx context.Context, req *ChargeRequest, key IdempotencyKey) (*PaymentResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}

	var lastErr error
	// One transport retry, same idempotency key: the gateway must see
	// both sends as the same logical charge.
	for attempt := 0; attempt < 2; attempt++ {
		result, retryable, err := c.doCharge(ctx, body, key)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.log.Warn("Gateway charge attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("idempotency_key", key.String()),
		)
	}

	return nil, lastErr
}

func (c *httpClient) doCharge(ctx context.Context, body []byte, key IdempotencyKey) (*PaymentResult, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Idempotency-Key", key.String())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		return nil, false, &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(respBody),
		}
	}

	var result PaymentResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, false, fmt.Errorf("decode charge response: %w", err)
	}

	return &result, false, nil
}

func (c *httpClient) FetchStatus(ctx context.Context, transactionID string) (*PaymentResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+transactionID, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: extractMessage(respBody)}
	}

	var result PaymentResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode payment detail %s: %w", transactionID, err)
	}

	return &result, nil
}

func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return strconv.Quote(string(body))
}
