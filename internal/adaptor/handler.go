package adaptor

import (
	"errors"
	"net/http"

	"agenda-booking/internal/usecase"
	"agenda-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Checkout *CheckoutHandler
	Webhook  *WebhookHandler
	Payment  *PaymentHandler
	Booking  *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Checkout: NewCheckoutHandler(service.Reconciliation, service.Pix, log),
		Webhook:  NewWebhookHandler(service.Reconciliation, log),
		Payment:  NewPaymentHandler(service.Ledger, log),
		Booking:  NewBookingHandler(service.Ledger, log),
	}
}

// respondServiceError maps the use case error taxonomy onto the HTTP
// surface. Shared by every handler so the mapping stays in one place.
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validation *usecase.ValidationError
	var rejected *usecase.UpstreamRejectedError

	switch {
	case errors.As(err, &validation):
		log.Warn(operation+" failed - validation",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, validation.Message, validation.Fields)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, "Registro não encontrado.")

	case errors.As(err, &rejected):
		log.Warn(operation+" failed - rejected upstream",
			zap.Error(err),
			zap.String("operation", operation),
			zap.String("code", rejected.Code))
		utils.ResponseUnprocessable(w, rejected.Message, map[string]string{"code": rejected.Code})

	case errors.Is(err, usecase.ErrUpstreamUnavailable):
		log.Error(operation+" failed - gateway unavailable",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseServiceUnavailable(w, "Serviço de pagamento indisponível. Tente novamente.")

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
