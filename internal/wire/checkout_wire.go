package wire

import (
	"agenda-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCheckout(r chi.Router, checkoutHandler *adaptor.CheckoutHandler) {
	// POST /api/checkout - Start a charge attempt for a cart
	r.Post("/api/checkout", checkoutHandler.SubmitCheckout)

	// Pix QR lifecycle for asynchronous payments
	r.Route("/api/checkout/pix/{attemptId}", func(r chi.Router) {
		// GET /api/checkout/pix/{attemptId} - Poll the QR lifecycle state
		r.Get("/", checkoutHandler.GetPixAttempt)

		// POST /api/checkout/pix/{attemptId}/regenerate - Replace an expired code
		r.Post("/regenerate", checkoutHandler.RegeneratePix)
	})
}
