package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceBookingPayment(t *testing.T) {
	// Forward transitions.
	assert.True(t, CanAdvanceBookingPayment(BookingPaymentPending, BookingPaymentAwaiting))
	assert.True(t, CanAdvanceBookingPayment(BookingPaymentPending, BookingPaymentApproved))
	assert.True(t, CanAdvanceBookingPayment(BookingPaymentAwaiting, BookingPaymentApproved))
	assert.True(t, CanAdvanceBookingPayment(BookingPaymentAwaiting, BookingPaymentRejected))

	// Aprovado is terminal.
	assert.False(t, CanAdvanceBookingPayment(BookingPaymentApproved, BookingPaymentPending))
	assert.False(t, CanAdvanceBookingPayment(BookingPaymentApproved, BookingPaymentAwaiting))
	assert.False(t, CanAdvanceBookingPayment(BookingPaymentApproved, BookingPaymentRejected))

	// No sideways or backwards moves.
	assert.False(t, CanAdvanceBookingPayment(BookingPaymentAwaiting, BookingPaymentPending))
	assert.False(t, CanAdvanceBookingPayment(BookingPaymentRejected, BookingPaymentAwaiting))

	// The one allowed reset: a rejected attempt frees the booking for a
	// new charge.
	assert.True(t, CanAdvanceBookingPayment(BookingPaymentRejected, BookingPaymentPending))
}

func TestBookingSubtotal(t *testing.T) {
	b := &Booking{Quantity: 3, UnitPrice: 25.5}
	assert.Equal(t, 76.5, b.Subtotal())
}
