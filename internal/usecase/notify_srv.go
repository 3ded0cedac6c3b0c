package usecase

import (
	"context"
	"fmt"

	"agenda-booking/internal/data/entity"
	"agenda-booking/internal/data/repository"
	"agenda-booking/internal/notify"

	"go.uber.org/zap"
)

// VoucherRenderer produces the proof-of-purchase document.
type VoucherRenderer interface {
	Render(data notify.VoucherData) ([]byte, error)
}

// VoucherMailer delivers a rendered voucher to the payer.
type VoucherMailer interface {
	SendVoucher(to string, pdf []byte) error
}

// Pusher is the fire-and-forget real-time channel.
type Pusher interface {
	PaymentConfirmed(ctx context.Context, transactionID, status string) error
	PaymentStatusChanged(ctx context.Context, transactionID, status string) error
}

type NotificationService interface {
	// PaymentApproved fans out the terminal success: one voucher email
	// per booking plus a paymentConfirmed push event. Partial delivery
	// failures are logged and reported, never rolled back; the money
	// already moved.
	PaymentApproved(ctx context.Context, payment *entity.Payment) error

	// PaymentStatusChanged pushes a non-terminal status event.
	PaymentStatusChanged(ctx context.Context, transactionID string, status entity.PaymentStatus)
}

type notificationService struct {
	repo     *repository.Repository
	renderer VoucherRenderer
	mailer   VoucherMailer
	pusher   Pusher
	log      *zap.Logger
}

func NewNotificationService(repo *repository.Repository, renderer VoucherRenderer, mailer VoucherMailer, pusher Pusher, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:     repo,
		renderer: renderer,
		mailer:   mailer,
		pusher:   pusher,
		log:      log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) PaymentApproved(ctx context.Context, payment *entity.Payment) error {
	bookings, err := s.repo.Booking.FindByPaymentID(ctx, payment.ID)
	if err != nil {
		return fmt.Errorf("load bookings for payment %s: %w", payment.ID.String(), err)
	}

	var failed int
	for _, booking := range bookings {
		if err := s.deliverVoucher(ctx, payment, booking); err != nil {
			// One failed delivery must not starve the rest of the cart.
			failed++
			s.log.Error("Voucher delivery failed",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.String("transaction_id", payment.TransactionID),
			)
		}
	}

	// Push event is best-effort; the push type logs its own failures.
	_ = s.pusher.PaymentConfirmed(ctx, payment.TransactionID, string(payment.Status))

	s.log.Info("Payment approval fan-out done",
		zap.String("transaction_id", payment.TransactionID),
		zap.Int("bookings", len(bookings)),
		zap.Int("failed_deliveries", failed),
	)

	if failed > 0 {
		return fmt.Errorf("voucher delivery failed for %d of %d bookings", failed, len(bookings))
	}
	return nil
}

func (s *notificationService) PaymentStatusChanged(ctx context.Context, transactionID string, status entity.PaymentStatus) {
	_ = s.pusher.PaymentStatusChanged(ctx, transactionID, string(status))
}

func (s *notificationService) deliverVoucher(ctx context.Context, payment *entity.Payment, booking *entity.Booking) error {
	product, err := s.repo.Product.FindByID(ctx, booking.ProductID)
	if err != nil || product == nil {
		return fmt.Errorf("product %s not found", booking.ProductID.String())
	}

	company, err := s.repo.Company.FindByID(ctx, booking.CompanyID)
	if err != nil || company == nil {
		return fmt.Errorf("company %s not found", booking.CompanyID.String())
	}

	email := payment.PayerEmail
	if booking.ClientID != nil {
		client, err := s.repo.Client.FindByID(ctx, *booking.ClientID)
		if err == nil && client != nil && client.Email != "" {
			email = client.Email
		}
	}
	if email == "" {
		return fmt.Errorf("no delivery address for booking %s", booking.ID.String())
	}

	pdf, err := s.renderer.Render(notify.VoucherData{
		ProductTitle: product.Title,
		CompanyName:  company.Name,
		Date:         booking.Date,
		TimeSlot:     booking.TimeSlot,
		Quantity:     booking.Quantity,
		Total:        booking.Subtotal(),
	})
	if err != nil {
		return fmt.Errorf("render voucher for booking %s: %w", booking.ID.String(), err)
	}

	if err := s.mailer.SendVoucher(email, pdf); err != nil {
		return fmt.Errorf("deliver voucher for booking %s: %w", booking.ID.String(), err)
	}

	s.log.Info("Voucher delivered",
		zap.String("booking_id", booking.ID.String()),
		zap.String("email", email),
	)
	return nil
}
