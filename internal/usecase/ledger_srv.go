package usecase

import (
	"context"
	"fmt"

	"agenda-booking/internal/data/repository"
	"agenda-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService is the read side: payment status polls, receipts and
// booking views. It never writes anything except cancellation, which
// is a status change routed through the booking ledger's guards.
type LedgerService interface {
	GetPaymentStatus(ctx context.Context, transactionID string) (*response.PaymentStatusResponse, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*response.PaymentResponse, error)
	GetReceipt(ctx context.Context, paymentID uuid.UUID) (*response.ReceiptResponse, error)
	GetBookingDetail(ctx context.Context, bookingID uuid.UUID) (*response.BookingDetailResponse, error)
	ListClientBookings(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID) error
}

type ledgerService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewLedgerService(repo *repository.Repository, log *zap.Logger) LedgerService {
	return &ledgerService{
		repo: repo,
		log:  log.With(zap.String("service", "ledger")),
	}
}

func (s *ledgerService) GetPaymentStatus(ctx context.Context, transactionID string) (*response.PaymentStatusResponse, error) {
	payment, err := s.repo.Payment.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", transactionID, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
	}

	resp := response.PaymentToStatusResponse(payment)
	return &resp, nil
}

func (s *ledgerService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*response.PaymentResponse, error) {
	payment, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", paymentID.String(), err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID.String(), ErrNotFound)
	}

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *ledgerService) GetReceipt(ctx context.Context, paymentID uuid.UUID) (*response.ReceiptResponse, error) {
	payment, err := s.repo.Payment.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", paymentID.String(), err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID.String(), ErrNotFound)
	}

	bookings, err := s.repo.Booking.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("load bookings for payment %s: %w", paymentID.String(), err)
	}

	receipt := &response.ReceiptResponse{
		Payment:  response.PaymentToResponse(payment),
		Bookings: make([]response.BookingResponse, len(bookings)),
	}
	for i, b := range bookings {
		receipt.Bookings[i] = response.BookingToResponse(b)
	}

	return receipt, nil
}

func (s *ledgerService) GetBookingDetail(ctx context.Context, bookingID uuid.UUID) (*response.BookingDetailResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", bookingID.String(), err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID.String(), ErrNotFound)
	}

	detail := &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking),
	}

	// Catalog context is best-effort; a missing product or company must
	// not hide the booking itself.
	if product, err := s.repo.Product.FindByID(ctx, booking.ProductID); err == nil && product != nil {
		detail.ProductTitle = product.Title
	}
	if company, err := s.repo.Company.FindByID(ctx, booking.CompanyID); err == nil && company != nil {
		detail.CompanyName = company.Name
	}
	if booking.ClientID != nil {
		if client, err := s.repo.Client.FindByID(ctx, *booking.ClientID); err == nil && client != nil {
			detail.ClientName = client.Name
			detail.ClientEmail = client.Email
		}
	}

	return detail, nil
}

func (s *ledgerService) ListClientBookings(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]response.BookingResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	bookings, err := s.repo.Booking.FindByClientID(ctx, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings for client %s: %w", clientID.String(), err)
	}

	out := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = response.BookingToResponse(b)
	}
	return out, nil
}

func (s *ledgerService) CancelBooking(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("find booking %s: %w", bookingID.String(), err)
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID.String(), ErrNotFound)
	}

	if err := s.repo.Booking.Cancel(ctx, bookingID); err != nil {
		return &ValidationError{Message: "Esta reserva não pode ser cancelada."}
	}

	return nil
}
