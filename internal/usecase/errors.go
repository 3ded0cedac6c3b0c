package usecase

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups for records that do not exist, including
// webhook notifications for transactions never created here.
var ErrNotFound = errors.New("not found")

// ErrUpstreamUnavailable marks a charge attempt whose outcome is
// unknown because the gateway could not be reached. Bookings stay
// Pendente and the user may try again.
var ErrUpstreamUnavailable = errors.New("payment gateway unavailable")

// ValidationError rejects a checkout before any booking is created.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamRejectedError is a declined charge: the gateway answered,
// the answer was no. Message is already translated for the user.
type UpstreamRejectedError struct {
	Code    string
	Message string
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("payment rejected (%s): %s", e.Code, e.Message)
}

// paymentErrorMessages maps gateway rejection codes to the messages the
// frontend shows. Unknown codes fall back to a generic message.
var paymentErrorMessages = map[string]string{
	"Invalid user identification number":  "CPF do usuário inválido.",
	"Invalid payment_method_id":           "Método de pagamento inválido.",
	"cc_rejected_insufficient_amount":     "Saldo insuficiente no cartão.",
	"cc_rejected_high_risk":               "Pagamento recusado por alto risco.",
	"cc_rejected_bad_filled_card_number":  "Número do cartão preenchido incorretamente.",
	"cc_rejected_bad_filled_security_code": "Código de segurança preenchido incorretamente.",
	"cc_rejected_bad_filled_date":         "Data de validade preenchida incorretamente.",
	"cc_rejected_call_for_authorize":      "Pagamento precisa ser autorizado junto ao emissor do cartão.",
}

// TranslatePaymentError turns a gateway error code into a user-facing
// message.
func TranslatePaymentError(code string) string {
	if msg, ok := paymentErrorMessages[code]; ok {
		return msg
	}
	return "Ocorreu um erro no pagamento."
}
