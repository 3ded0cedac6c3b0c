package response

import (
	"time"

	"agenda-booking/internal/data/entity"
)

type BookingResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	CompanyID     string    `json:"companyId"`
	ClientID      string    `json:"clientId,omitempty"`
	PaymentID     string    `json:"paymentId,omitempty"`
	Date          string    `json:"date"`
	Time          string    `json:"time,omitempty"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"price"`
	Subtotal      float64   `json:"subtotal"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BookingDetailResponse adds the catalog context the receipt and
// voucher views show alongside the booking.
type BookingDetailResponse struct {
	BookingResponse
	ProductTitle string `json:"productTitle,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	ClientName   string `json:"clientName,omitempty"`
	ClientEmail  string `json:"clientEmail,omitempty"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID.String(),
		ProductID:     b.ProductID.String(),
		CompanyID:     b.CompanyID.String(),
		Date:          b.Date.Format("2006-01-02"),
		Time:          b.TimeSlot,
		Quantity:      b.Quantity,
		UnitPrice:     b.UnitPrice,
		Subtotal:      b.Subtotal(),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		CreatedAt:     b.CreatedAt,
	}
	if b.ClientID != nil {
		resp.ClientID = b.ClientID.String()
	}
	if b.PaymentID != nil {
		resp.PaymentID = b.PaymentID.String()
	}
	return resp
}
