package adaptor

import (
	"encoding/json"
	"net/http"

	"agenda-booking/internal/dto/request"
	"agenda-booking/internal/usecase"
	"agenda-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	reconciler usecase.ReconciliationService
	pix        usecase.PixService
	log        *zap.Logger
}

func NewCheckoutHandler(reconciler usecase.ReconciliationService, pix usecase.PixService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		reconciler: reconciler,
		pix:        pix,
		log:        log.With(zap.String("handler", "checkout")),
	}
}

// SubmitCheckout handles POST /api/checkout
func (h *CheckoutHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var req request.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.reconciler.SubmitCheckout(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.log, err, "submit checkout")
		return
	}

	if req.IsPix() && resp.Pix != nil {
		attemptID, err := h.pix.StartAttempt(r.Context(), resp)
		if err != nil {
			// The charge went through; the frontend still gets the QR,
			// it just cannot poll the lifecycle endpoint.
			h.log.Error("Failed to start pix attempt",
				zap.Error(err),
				zap.String("transaction_id", resp.TransactionID))
		} else {
			resp.PixAttemptID = attemptID
		}
	}

	utils.ResponseSuccess(w, "success", resp)
}

// GetPixAttempt handles GET /api/checkout/pix/{attemptId}
func (h *CheckoutHandler) GetPixAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptId")
	if attemptID == "" {
		utils.ResponseBadRequest(w, "Attempt ID is required", nil)
		return
	}

	attempt, err := h.pix.GetAttempt(r.Context(), attemptID)
	if err != nil {
		respondServiceError(w, h.log, err, "get pix attempt")
		return
	}

	utils.ResponseSuccess(w, "success", attempt)
}

// RegeneratePix handles POST /api/checkout/pix/{attemptId}/regenerate
func (h *CheckoutHandler) RegeneratePix(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptId")
	if attemptID == "" {
		utils.ResponseBadRequest(w, "Attempt ID is required", nil)
		return
	}

	attempt, err := h.pix.Regenerate(r.Context(), attemptID)
	if err != nil {
		respondServiceError(w, h.log, err, "regenerate pix code")
		return
	}

	utils.ResponseSuccess(w, "success", attempt)
}
