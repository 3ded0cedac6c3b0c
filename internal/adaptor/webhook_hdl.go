package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"agenda-booking/internal/dto/request"
	"agenda-booking/internal/usecase"
	"agenda-booking/pkg/utils"

	"go.uber.org/zap"
)

type WebhookHandler struct {
	reconciler usecase.ReconciliationService
	log        *zap.Logger
}

func NewWebhookHandler(reconciler usecase.ReconciliationService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		log:        log.With(zap.String("handler", "webhook")),
	}
}

// PaymentStatus handles POST /api/webhooks/payment-status.
//
// The gateway retries any non-2xx answer, so the only rejection is an
// unparseable body. Everything after a successful parse answers 200,
// whatever reconciliation did; a failed reconciliation converges on a
// later delivery or a status poll.
func (h *WebhookHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	var notification request.WebhookNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		h.log.Warn("Webhook body unparseable", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid notification body", nil)
		return
	}

	transactionID := notification.TransactionID()
	if transactionID == "" {
		h.log.Debug("Webhook without transaction id ignored",
			zap.String("type", notification.Type),
			zap.String("action", notification.Action))
		utils.ResponseSuccess(w, "ignored", nil)
		return
	}

	if err := h.reconciler.ReconcileFromNotification(r.Context(), transactionID); err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			h.log.Warn("Webhook for unknown transaction",
				zap.String("transaction_id", transactionID))
		} else {
			h.log.Error("Webhook reconciliation failed",
				zap.Error(err),
				zap.String("transaction_id", transactionID))
		}
		utils.ResponseSuccess(w, "received", nil)
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
