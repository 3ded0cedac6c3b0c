package adaptor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agenda-booking/internal/dto/response"
	"agenda-booking/internal/usecase"
	"agenda-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPix struct {
	started int
}

func (s *stubPix) StartAttempt(context.Context, *response.CheckoutResponse) (string, error) {
	s.started++
	return "attempt-1", nil
}

func (s *stubPix) GetAttempt(context.Context, string) (*response.PixAttemptResponse, error) {
	return nil, nil
}

func (s *stubPix) Regenerate(context.Context, string) (*response.PixAttemptResponse, error) {
	return nil, nil
}

func postCheckout(t *testing.T, handler *CheckoutHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SubmitCheckout(rec, req)
	return rec
}

func TestSubmitCheckoutAnswersOK(t *testing.T) {
	reconciler := &stubReconciler{submitResp: &response.CheckoutResponse{
		PaymentID:     "pay-1",
		TransactionID: "111",
		Status:        "approved",
	}}
	handler := NewCheckoutHandler(reconciler, &stubPix{}, zap.NewNop())

	rec := postCheckout(t, handler, `{"payment_method_id":"visa"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.True(t, envelope.Success)
}

func TestSubmitCheckoutPixStartsAttempt(t *testing.T) {
	reconciler := &stubReconciler{submitResp: &response.CheckoutResponse{
		PaymentID:     "pay-2",
		TransactionID: "222",
		Status:        "pending",
		Pix:           &response.PixPresentment{QRCodeBase64: "cXI="},
	}}
	pix := &stubPix{}
	handler := NewCheckoutHandler(reconciler, pix, zap.NewNop())

	rec := postCheckout(t, handler, `{"payment_method_id":"pix"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, pix.started)
	assert.Contains(t, rec.Body.String(), `"attemptId":"attempt-1"`)
}

func TestSubmitCheckoutMalformedBody(t *testing.T) {
	handler := NewCheckoutHandler(&stubReconciler{}, &stubPix{}, zap.NewNop())

	rec := postCheckout(t, handler, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitCheckoutRejectedAnswersUnprocessable(t *testing.T) {
	reconciler := &stubReconciler{submitErr: &usecase.UpstreamRejectedError{
		Code:    "cc_rejected_high_risk",
		Message: "Pagamento recusado por alto risco.",
	}}
	handler := NewCheckoutHandler(reconciler, &stubPix{}, zap.NewNop())

	rec := postCheckout(t, handler, `{"payment_method_id":"visa"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pagamento recusado por alto risco.")
}
