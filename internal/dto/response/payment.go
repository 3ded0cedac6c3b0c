package response

import (
	"time"

	"agenda-booking/internal/data/entity"
)

type PaymentStatusResponse struct {
	TransactionID     string     `json:"transactionId"`
	Status            string     `json:"status"`
	StatusDetail      string     `json:"statusDetail,omitempty"`
	TransactionAmount float64    `json:"transactionAmount"`
	DateApproved      *time.Time `json:"dateApproved,omitempty"`
	ErrorDetails      string     `json:"errorDetails,omitempty"`
}

type PaymentResponse struct {
	ID                string     `json:"id"`
	TransactionID     string     `json:"transactionId"`
	Status            string     `json:"status"`
	StatusDetail      string     `json:"statusDetail,omitempty"`
	TransactionAmount float64    `json:"transactionAmount"`
	PayerEmail        string     `json:"payerEmail"`
	Installments      int        `json:"installments"`
	PaymentMethod     string     `json:"paymentMethod"`
	DateApproved      *time.Time `json:"dateApproved,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ReceiptResponse assembles the success page: the payment plus every
// booking it covered.
type ReceiptResponse struct {
	Payment  PaymentResponse   `json:"payment"`
	Bookings []BookingResponse `json:"bookings"`
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:                p.ID.String(),
		TransactionID:     p.TransactionID,
		Status:            string(p.Status),
		TransactionAmount: p.TransactionAmount,
		PayerEmail:        p.PayerEmail,
		Installments:      p.Installments,
		PaymentMethod:     p.PaymentMethod,
		DateApproved:      p.DateApproved,
		CreatedAt:         p.CreatedAt,
	}
	if p.StatusDetail != nil {
		resp.StatusDetail = *p.StatusDetail
	}
	return resp
}

func PaymentToStatusResponse(p *entity.Payment) PaymentStatusResponse {
	resp := PaymentStatusResponse{
		TransactionID:     p.TransactionID,
		Status:            string(p.Status),
		TransactionAmount: p.TransactionAmount,
		DateApproved:      p.DateApproved,
	}
	if p.StatusDetail != nil {
		resp.StatusDetail = *p.StatusDetail
	}
	if p.ErrorDetails != nil {
		resp.ErrorDetails = *p.ErrorDetails
	}
	return resp
}
