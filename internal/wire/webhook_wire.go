package wire

import (
	"agenda-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// POST /api/webhooks/payment-status - Gateway notification intake
	r.Post("/api/webhooks/payment-status", webhookHandler.PaymentStatus)
}
