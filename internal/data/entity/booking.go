package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pendente"
	BookingStatusConfirmed BookingStatus = "Confirmado"
	BookingStatusCancelled BookingStatus = "Cancelado"
)

// BookingPaymentStatus tracks how far the charge for a booking got.
// It only ever advances; Aprovado is terminal.
type BookingPaymentStatus string

const (
	BookingPaymentPending  BookingPaymentStatus = "Pendente"
	BookingPaymentAwaiting BookingPaymentStatus = "Aguardando Pagamento"
	BookingPaymentApproved BookingPaymentStatus = "Aprovado"
	BookingPaymentRejected BookingPaymentStatus = "Recusado"
)

func bookingPaymentRank(s BookingPaymentStatus) int {
	switch s {
	case BookingPaymentPending:
		return 0
	case BookingPaymentAwaiting:
		return 1
	case BookingPaymentRejected:
		return 2
	case BookingPaymentApproved:
		return 3
	default:
		return 0
	}
}

// CanAdvanceBookingPayment reports whether moving from current to next
// is a forward transition. Recusado back to Pendente is the one allowed
// reset: a rejected attempt leaves the booking eligible for a new charge.
func CanAdvanceBookingPayment(current, next BookingPaymentStatus) bool {
	if current == BookingPaymentApproved {
		return false
	}
	if current == BookingPaymentRejected && next == BookingPaymentPending {
		return true
	}
	return bookingPaymentRank(next) > bookingPaymentRank(current)
}

type Booking struct {
	Base
	ProductID     uuid.UUID            `db:"product_id"`
	CompanyID     uuid.UUID            `db:"company_id"`
	ClientID      *uuid.UUID           `db:"client_id"`
	PaymentID     *uuid.UUID           `db:"payment_id"`
	Date          time.Time            `db:"date"`
	TimeSlot      string               `db:"time_slot"`
	Quantity      int                  `db:"quantity"`
	UnitPrice     float64              `db:"unit_price"`
	Status        BookingStatus        `db:"status"`
	PaymentStatus BookingPaymentStatus `db:"payment_status"`
}

func (b *Booking) Subtotal() float64 {
	return b.UnitPrice * float64(b.Quantity)
}
