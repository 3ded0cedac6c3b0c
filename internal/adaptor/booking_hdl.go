package adaptor

import (
	"net/http"

	"agenda-booking/internal/usecase"
	"agenda-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	ledger usecase.LedgerService
	log    *zap.Logger
}

func NewBookingHandler(ledger usecase.LedgerService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		ledger: ledger,
		log:    log.With(zap.String("handler", "booking")),
	}
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	booking, err := h.ledger.GetBookingDetail(r.Context(), bookingID)
	if err != nil {
		respondServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// ListClientBookings handles GET /api/clients/{clientId}/bookings
func (h *BookingHandler) ListClientBookings(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "clientId"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid client ID", nil)
		return
	}

	query := r.URL.Query()
	limit := utils.ParseInt(query.Get("limit"), 20)
	offset := utils.ParseInt(query.Get("offset"), 0)

	bookings, err := h.ledger.ListClientBookings(r.Context(), clientID, limit, offset)
	if err != nil {
		respondServiceError(w, h.log, err, "list client bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	if err := h.ledger.CancelBooking(r.Context(), bookingID); err != nil {
		respondServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
