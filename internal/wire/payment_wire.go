package wire

import (
	"agenda-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	r.Route("/api/payments", func(r chi.Router) {
		// GET /api/payments/{transactionId}/status - Status poll by gateway transaction
		r.Get("/{transactionId}/status", paymentHandler.GetStatusByTransaction)

		// GET /api/payments/{id} - Payment record
		r.Get("/{id}", paymentHandler.GetPayment)

		// GET /api/payments/{id}/receipt - Payment plus the bookings it covered
		r.Get("/{id}/receipt", paymentHandler.GetReceipt)
	})
}
