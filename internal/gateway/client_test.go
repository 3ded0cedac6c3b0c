package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewIdempotencyKey(t *testing.T) {
	a := NewIdempotencyKey()
	b := NewIdempotencyKey()

	assert.Len(t, a.String(), 32)
	assert.NotEqual(t, a.String(), b.String())
}

func TestChargeSendsIdempotencyKey(t *testing.T) {
	var gotKey, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     123456789,
			"status": "approved",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 5*time.Second, zap.NewNop())

	key := NewIdempotencyKey()
	result, err := client.Charge(context.Background(), &ChargeRequest{
		TransactionAmount: 100,
		PaymentMethodID:   "visa",
	}, key)

	require.NoError(t, err)
	assert.Equal(t, key.String(), gotKey)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "123456789", result.TransactionID())
	assert.Equal(t, "approved", result.Status)
}

func TestChargeRetriesWithSameKey(t *testing.T) {
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("X-Idempotency-Key"))
		if len(keys) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 42, "status": "pending"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", 5*time.Second, zap.NewNop())

	result, err := client.Charge(context.Background(), &ChargeRequest{}, NewIdempotencyKey())

	require.NoError(t, err)
	require.Len(t, keys, 2)
	// The retry must look like the same logical charge to the gateway.
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, "pending", result.Status)
}

func TestChargeUnavailableAfterRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", 5*time.Second, zap.NewNop())

	_, err := client.Charge(context.Background(), &ChargeRequest{}, NewIdempotencyKey())

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, calls)
}

func TestChargeAPIErrorIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid user identification number"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", 5*time.Second, zap.NewNop())

	_, err := client.Charge(context.Background(), &ChargeRequest{}, NewIdempotencyKey())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid user identification number", apiErr.Message)
	// A refusal is terminal for the attempt; no retry.
	assert.Equal(t, 1, calls)
}

func TestChargeParsesPixPresentment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":                 987,
			"status":             "pending",
			"status_detail":      "pending_waiting_transfer",
			"date_of_expiration": "2026-08-28T12:30:00.000-03:00",
			"point_of_interaction": map[string]any{
				"transaction_data": map[string]any{
					"qr_code_base64": "aGVsbG8=",
					"qr_code":        "00020126pix",
					"ticket_url":     "https://gateway.example/ticket/987",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", 5*time.Second, zap.NewNop())

	result, err := client.Charge(context.Background(), &ChargeRequest{PaymentMethodID: "pix"}, NewIdempotencyKey())

	require.NoError(t, err)
	require.NotNil(t, result.PointOfInteraction)
	require.NotNil(t, result.PointOfInteraction.TransactionData)
	assert.Equal(t, "aGVsbG8=", result.PointOfInteraction.TransactionData.QRCodeBase64)
	assert.Equal(t, "https://gateway.example/ticket/987", result.PointOfInteraction.TransactionData.TicketURL)
	require.NotNil(t, result.ExpiresAt())
	assert.Equal(t, 2026, result.ExpiresAt().Year())
}

func TestFetchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/555", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":            555,
			"status":        "approved",
			"date_approved": "2026-08-28T10:00:00.000-03:00",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", 5*time.Second, zap.NewNop())

	result, err := client.FetchStatus(context.Background(), "555")

	require.NoError(t, err)
	assert.Equal(t, "approved", result.Status)
	require.NotNil(t, result.ApprovedAt())
}

func TestFetchStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Payment not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", 5*time.Second, zap.NewNop())

	_, err := client.FetchStatus(context.Background(), "nope")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
