package wire

import (
	"agenda-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	r.Route("/api/bookings/{id}", func(r chi.Router) {
		// GET /api/bookings/{id} - Booking with catalog context
		r.Get("/", bookingHandler.GetBooking)

		// PUT /api/bookings/{id}/cancel - Cancel an unpaid booking
		r.Put("/cancel", bookingHandler.CancelBooking)
	})

	// GET /api/clients/{clientId}/bookings - Booking history for a client
	r.Get("/api/clients/{clientId}/bookings", bookingHandler.ListClientBookings)
}
