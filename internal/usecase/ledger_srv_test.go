package usecase

import (
	"context"
	"testing"
	"time"

	"agenda-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetPaymentStatus(t *testing.T) {
	payments := &memPaymentRepo{}
	detail := "accredited"
	approvedAt := time.Now()
	payments.Create(context.Background(), &entity.Payment{
		Base:              entity.Base{ID: uuid.New()},
		TransactionID:     "600",
		Status:            entity.PaymentStatusApproved,
		StatusDetail:      &detail,
		TransactionAmount: 99.9,
		DateApproved:      &approvedAt,
	})

	svc := NewLedgerService(newTestRepo(&memBookingRepo{}, payments, nil), zap.NewNop())

	status, err := svc.GetPaymentStatus(context.Background(), "600")

	require.NoError(t, err)
	assert.Equal(t, "approved", status.Status)
	assert.Equal(t, "accredited", status.StatusDetail)
	assert.NotNil(t, status.DateApproved)

	_, err = svc.GetPaymentStatus(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReceipt(t *testing.T) {
	bookings := &memBookingRepo{}
	payments := &memPaymentRepo{}

	paymentID := uuid.New()
	payments.Create(context.Background(), &entity.Payment{
		Base:              entity.Base{ID: paymentID},
		TransactionID:     "601",
		Status:            entity.PaymentStatusApproved,
		TransactionAmount: 100,
	})

	pid := paymentID
	require.NoError(t, bookings.CreateBatch(context.Background(), []*entity.Booking{
		{Base: entity.Base{ID: uuid.New()}, PaymentID: &pid, Quantity: 1, UnitPrice: 50, Status: entity.BookingStatusConfirmed, PaymentStatus: entity.BookingPaymentApproved},
		{Base: entity.Base{ID: uuid.New()}, PaymentID: &pid, Quantity: 1, UnitPrice: 50, Status: entity.BookingStatusConfirmed, PaymentStatus: entity.BookingPaymentApproved},
	}))

	svc := NewLedgerService(newTestRepo(bookings, payments, nil), zap.NewNop())

	receipt, err := svc.GetReceipt(context.Background(), paymentID)

	require.NoError(t, err)
	assert.Equal(t, "601", receipt.Payment.TransactionID)
	assert.Len(t, receipt.Bookings, 2)
}

func TestCancelBooking(t *testing.T) {
	bookings := &memBookingRepo{}

	cancellable := uuid.New()
	paid := uuid.New()
	require.NoError(t, bookings.CreateBatch(context.Background(), []*entity.Booking{
		{Base: entity.Base{ID: cancellable}, Status: entity.BookingStatusPending, PaymentStatus: entity.BookingPaymentPending},
		{Base: entity.Base{ID: paid}, Status: entity.BookingStatusConfirmed, PaymentStatus: entity.BookingPaymentApproved},
	}))

	svc := NewLedgerService(newTestRepo(bookings, &memPaymentRepo{}, nil), zap.NewNop())

	require.NoError(t, svc.CancelBooking(context.Background(), cancellable))
	b, _ := bookings.FindByID(context.Background(), cancellable)
	assert.Equal(t, entity.BookingStatusCancelled, b.Status)

	// A paid booking never cancels through this path.
	err := svc.CancelBooking(context.Background(), paid)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	b, _ = bookings.FindByID(context.Background(), paid)
	assert.Equal(t, entity.BookingStatusConfirmed, b.Status)

	assert.ErrorIs(t, svc.CancelBooking(context.Background(), uuid.New()), ErrNotFound)
}
