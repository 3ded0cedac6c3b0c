package adaptor

import (
	"net/http"

	"agenda-booking/internal/usecase"
	"agenda-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	ledger usecase.LedgerService
	log    *zap.Logger
}

func NewPaymentHandler(ledger usecase.LedgerService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		ledger: ledger,
		log:    log.With(zap.String("handler", "payment")),
	}
}

// GetStatusByTransaction handles GET /api/payments/{transactionId}/status
func (h *PaymentHandler) GetStatusByTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")
	if transactionID == "" {
		utils.ResponseBadRequest(w, "Transaction ID is required", nil)
		return
	}

	status, err := h.ledger.GetPaymentStatus(r.Context(), transactionID)
	if err != nil {
		respondServiceError(w, h.log, err, "get payment status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// GetPayment handles GET /api/payments/{id}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid payment ID", nil)
		return
	}

	payment, err := h.ledger.GetPayment(r.Context(), paymentID)
	if err != nil {
		respondServiceError(w, h.log, err, "get payment")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

// GetReceipt handles GET /api/payments/{id}/receipt
func (h *PaymentHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid payment ID", nil)
		return
	}

	receipt, err := h.ledger.GetReceipt(r.Context(), paymentID)
	if err != nil {
		respondServiceError(w, h.log, err, "get receipt")
		return
	}

	utils.ResponseSuccess(w, "success", receipt)
}
