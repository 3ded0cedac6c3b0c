package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda-booking/internal/data/entity"
	"agenda-booking/internal/data/repository"
	"agenda-booking/internal/dto/request"
	"agenda-booking/internal/dto/response"
	"agenda-booking/internal/gateway"
	"agenda-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconciliationService is the only writer of booking and payment
// status fields. Checkout submission and gateway notifications both
// funnel through here so every transition obeys the same precedence
// rules.
type ReconciliationService interface {
	SubmitCheckout(ctx context.Context, req *request.CheckoutRequest) (*response.CheckoutResponse, error)

	// ResubmitPix opens a fresh pix charge for the bookings of an
	// earlier, still unpaid attempt. The new charge gets its own
	// idempotency key and transaction id; the old payment row stays on
	// the ledger as the record of the expired code.
	ResubmitPix(ctx context.Context, previousPaymentID uuid.UUID) (*response.CheckoutResponse, error)

	// ReconcileFromNotification converges local state with the gateway
	// for one transaction. Safe to call from webhooks and polls, any
	// number of times, in any order.
	ReconcileFromNotification(ctx context.Context, transactionID string) error
}

type reconciliationService struct {
	repo     *repository.Repository
	gateway  gateway.Client
	notifier NotificationService
	log      *zap.Logger
}

func NewReconciliationService(repo *repository.Repository, gw gateway.Client, notifier NotificationService, log *zap.Logger) ReconciliationService {
	return &reconciliationService{
		repo:     repo,
		gateway:  gw,
		notifier: notifier,
		log:      log.With(zap.String("service", "reconciliation")),
	}
}

func (s *reconciliationService) SubmitCheckout(ctx context.Context, req *request.CheckoutRequest) (*response.CheckoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Checkout validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Message: utils.FormatValidationErrors(errs), Fields: errs}
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid client ID format %s", req.ClientID)}
	}

	client, err := s.repo.Client.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("resolve client %s: %w", req.ClientID, err)
	}
	if client == nil {
		return nil, &ValidationError{Message: "ClientId inválido."}
	}

	payerEmail := req.PayerEmail
	if payerEmail == "" {
		payerEmail = client.Email
	}

	payerDocument := utils.StripNonDigits(req.PayerDocument)
	if payerDocument == "" {
		payerDocument = utils.StripNonDigits(client.CPF)
	}
	if req.IsPix() && !utils.ValidateCPF(payerDocument) {
		return nil, &ValidationError{Message: "Por favor, insira um CPF válido."}
	}

	bookings, err := s.buildBookings(req, clientID)
	if err != nil {
		return nil, err
	}

	// Bookings exist from here on, Pendente/Pendente, whatever the
	// gateway says next. A failed charge leaves them eligible for a
	// new attempt or an explicit cancellation, never deleted.
	if err := s.repo.Booking.CreateBatch(ctx, bookings); err != nil {
		return nil, fmt.Errorf("create bookings: %w", err)
	}

	bookingIDs := make([]uuid.UUID, len(bookings))
	var total float64
	for i, b := range bookings {
		bookingIDs[i] = b.ID
		total += b.Subtotal()
	}

	description := req.Description
	if description == "" {
		description = "Pagamento de produtos"
	}

	chargeReq := &gateway.ChargeRequest{
		TransactionAmount: total,
		Token:             req.Token,
		Description:       description,
		Installments:      req.Installments,
		PaymentMethodID:   req.PaymentMethodID,
		IssuerID:          req.IssuerID,
		Payer: gateway.Payer{
			Email: payerEmail,
			Identification: gateway.Identification{
				Type:   "CPF",
				Number: payerDocument,
			},
		},
	}

	// One key per logical attempt. The gateway client reuses it on its
	// transport retry; a new user-initiated attempt goes through
	// SubmitCheckout again and gets a new one.
	idempotencyKey := gateway.NewIdempotencyKey()

	result, err := s.gateway.Charge(ctx, chargeReq, idempotencyKey)
	if err != nil {
		return nil, s.recordFailedCharge(ctx, req, bookingIDs, payerEmail, total, err)
	}

	payment := s.buildPayment(req, result, payerEmail, total)

	inserted, err := s.repo.Payment.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	if !inserted {
		// The gateway answered with a transaction id we already have.
		// The idempotency key did its job; reuse the stored row.
		existing, err := s.repo.Payment.FindByTransactionID(ctx, payment.TransactionID)
		if err != nil || existing == nil {
			return nil, fmt.Errorf("load existing payment %s: %w", payment.TransactionID, err)
		}
		payment = existing
	}

	if err := s.repo.Booking.AttachPayment(ctx, bookingIDs, payment.ID); err != nil {
		return nil, fmt.Errorf("attach payment: %w", err)
	}

	resp := &response.CheckoutResponse{
		PaymentID:     payment.ID.String(),
		TransactionID: payment.TransactionID,
		Status:        result.Status,
		StatusDetail:  result.StatusDetail,
		BookingIDs:    idsToStrings(bookingIDs),
	}

	switch entity.PaymentStatus(result.Status) {
	case entity.PaymentStatusApproved:
		if _, err := s.repo.Booking.SetStatusByPaymentID(ctx, payment.ID, entity.BookingStatusConfirmed, entity.BookingPaymentApproved); err != nil {
			return nil, fmt.Errorf("confirm bookings: %w", err)
		}
		if !req.IsPix() {
			// Synchronous fan-out for card approvals; a delivery fault
			// never fails the checkout, the payment already happened.
			if err := s.notifier.PaymentApproved(ctx, payment); err != nil {
				s.log.Error("Fan-out after card approval failed",
					zap.Error(err),
					zap.String("transaction_id", payment.TransactionID),
				)
			}
		}
		s.log.Info("Checkout approved",
			zap.String("transaction_id", payment.TransactionID),
			zap.Int("bookings", len(bookingIDs)),
			zap.Float64("amount", total),
		)
		return resp, nil

	case entity.PaymentStatusPending, entity.PaymentStatusInProcess:
		if err := s.repo.Booking.SetPaymentStatus(ctx, bookingIDs, entity.BookingPaymentAwaiting); err != nil {
			return nil, fmt.Errorf("mark bookings awaiting payment: %w", err)
		}
		if req.IsPix() {
			pix := pixPresentment(result)
			if pix == nil {
				s.log.Error("Pix charge accepted without presentment data",
					zap.String("transaction_id", payment.TransactionID),
				)
				return nil, &UpstreamRejectedError{
					Code:    "pix_presentment_missing",
					Message: "Informações de pagamento via Pix indisponíveis.",
				}
			}
			resp.Pix = pix
		}
		s.log.Info("Checkout awaiting payment",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("method", req.PaymentMethodID),
		)
		return resp, nil

	default:
		// Declined. Bookings stay Pendente so the user can retry with
		// a fresh charge; this payment row keeps the rejection on file.
		s.log.Warn("Checkout rejected by gateway",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("status", result.Status),
			zap.String("status_detail", result.StatusDetail),
		)
		return nil, &UpstreamRejectedError{
			Code:    result.StatusDetail,
			Message: TranslatePaymentError(result.StatusDetail),
		}
	}
}

func (s *reconciliationService) ResubmitPix(ctx context.Context, previousPaymentID uuid.UUID) (*response.CheckoutResponse, error) {
	previous, err := s.repo.Payment.FindByID(ctx, previousPaymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", previousPaymentID.String(), err)
	}
	if previous == nil {
		return nil, fmt.Errorf("payment %s: %w", previousPaymentID.String(), ErrNotFound)
	}
	if previous.Status == entity.PaymentStatusApproved {
		return nil, &ValidationError{Message: "Pagamento já aprovado."}
	}

	bookings, err := s.repo.Booking.FindByPaymentID(ctx, previousPaymentID)
	if err != nil {
		return nil, fmt.Errorf("load bookings for payment %s: %w", previousPaymentID.String(), err)
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("payment %s has no bookings: %w", previousPaymentID.String(), ErrNotFound)
	}

	payerEmail := previous.PayerEmail
	var payerDocument string
	if bookings[0].ClientID != nil {
		client, err := s.repo.Client.FindByID(ctx, *bookings[0].ClientID)
		if err != nil {
			return nil, fmt.Errorf("resolve client: %w", err)
		}
		if client != nil {
			payerDocument = utils.StripNonDigits(client.CPF)
			if payerEmail == "" {
				payerEmail = client.Email
			}
		}
	}

	bookingIDs := make([]uuid.UUID, len(bookings))
	var total float64
	for i, b := range bookings {
		bookingIDs[i] = b.ID
		total += b.Subtotal()
	}

	chargeReq := &gateway.ChargeRequest{
		TransactionAmount: total,
		Description:       "Pagamento de produtos",
		Installments:      1,
		PaymentMethodID:   "pix",
		Payer: gateway.Payer{
			Email: payerEmail,
			Identification: gateway.Identification{
				Type:   "CPF",
				Number: payerDocument,
			},
		},
	}

	// New logical attempt, new key, new gateway transaction.
	result, err := s.gateway.Charge(ctx, chargeReq, gateway.NewIdempotencyKey())
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			return nil, &UpstreamRejectedError{
				Code:    apiErr.Message,
				Message: TranslatePaymentError(apiErr.Message),
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	req := &request.CheckoutRequest{PaymentMethodID: "pix", Installments: 1}
	payment := s.buildPayment(req, result, payerEmail, total)

	if _, err := s.repo.Payment.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	moved, err := s.repo.Booking.ReassignPayment(ctx, previousPaymentID, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("reassign bookings: %w", err)
	}

	resp := &response.CheckoutResponse{
		PaymentID:     payment.ID.String(),
		TransactionID: payment.TransactionID,
		Status:        result.Status,
		StatusDetail:  result.StatusDetail,
		BookingIDs:    idsToStrings(bookingIDs),
	}

	switch entity.PaymentStatus(result.Status) {
	case entity.PaymentStatusPending, entity.PaymentStatusInProcess:
		pix := pixPresentment(result)
		if pix == nil {
			return nil, &UpstreamRejectedError{
				Code:    "pix_presentment_missing",
				Message: "Informações de pagamento via Pix indisponíveis.",
			}
		}
		resp.Pix = pix
	case entity.PaymentStatusApproved:
		if _, err := s.repo.Booking.SetStatusByPaymentID(ctx, payment.ID, entity.BookingStatusConfirmed, entity.BookingPaymentApproved); err != nil {
			return nil, fmt.Errorf("confirm bookings: %w", err)
		}
	default:
		return nil, &UpstreamRejectedError{
			Code:    result.StatusDetail,
			Message: TranslatePaymentError(result.StatusDetail),
		}
	}

	s.log.Info("Pix charge regenerated",
		zap.String("previous_payment_id", previousPaymentID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.Int64("bookings_moved", moved),
	)
	return resp, nil
}

func (s *reconciliationService) ReconcileFromNotification(ctx context.Context, transactionID string) error {
	existing, err := s.repo.Payment.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("find payment %s: %w", transactionID, err)
	}
	if existing == nil {
		// The charge was never created through SubmitCheckout; there is
		// nothing to converge and retrying will not change that.
		return fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
	}

	// The webhook payload is lean; the gateway holds the full detail.
	details, err := s.gateway.FetchStatus(ctx, transactionID)
	if err != nil {
		if markErr := s.repo.Payment.MarkError(ctx, transactionID, err.Error()); markErr != nil {
			s.log.Error("Failed to record reconciliation error",
				zap.Error(markErr),
				zap.String("transaction_id", transactionID),
			)
		}
		return fmt.Errorf("fetch payment detail %s: %w", transactionID, err)
	}

	update := repository.PaymentUpdate{
		Status:       entity.PaymentStatus(details.Status),
		DateApproved: details.ApprovedAt(),
	}
	if details.StatusDetail != "" {
		update.StatusDetail = &details.StatusDetail
	}
	if details.TransactionAmount > 0 {
		update.TransactionAmount = &details.TransactionAmount
	}
	if details.Payer != nil && details.Payer.Email != "" {
		update.PayerEmail = &details.Payer.Email
	}
	if details.PaymentMethodID != "" {
		update.PaymentMethod = &details.PaymentMethodID
	}

	result, err := s.repo.Payment.AdvanceStatus(ctx, transactionID, update)
	if err != nil {
		return fmt.Errorf("advance payment %s: %w", transactionID, err)
	}
	if result == nil {
		return fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
	}

	if !result.Applied {
		// Duplicate or out-of-order delivery; the stored status already
		// is at least as final. Nothing to do, and in particular no
		// second fan-out.
		s.log.Debug("Notification ignored by status precedence",
			zap.String("transaction_id", transactionID),
			zap.String("stored", string(result.PreviousStatus)),
			zap.String("incoming", details.Status),
		)
		return nil
	}

	payment := result.Payment

	switch payment.Status {
	case entity.PaymentStatusApproved:
		if result.FirstApproval {
			if _, err := s.repo.Booking.SetStatusByPaymentID(ctx, payment.ID, entity.BookingStatusConfirmed, entity.BookingPaymentApproved); err != nil {
				return fmt.Errorf("confirm bookings for %s: %w", transactionID, err)
			}
			if err := s.notifier.PaymentApproved(ctx, payment); err != nil {
				s.log.Error("Fan-out after approval failed",
					zap.Error(err),
					zap.String("transaction_id", transactionID),
				)
			}
			s.log.Info("Payment approved via notification",
				zap.String("transaction_id", transactionID),
			)
		}

	case entity.PaymentStatusRejected, entity.PaymentStatusFailed, entity.PaymentStatusCancelled:
		if _, err := s.repo.Booking.SetStatusByPaymentID(ctx, payment.ID, entity.BookingStatusPending, entity.BookingPaymentRejected); err != nil {
			return fmt.Errorf("mark bookings rejected for %s: %w", transactionID, err)
		}
		s.notifier.PaymentStatusChanged(ctx, transactionID, payment.Status)
		s.log.Info("Payment rejected via notification",
			zap.String("transaction_id", transactionID),
			zap.String("status", string(payment.Status)),
		)

	default:
		if _, err := s.repo.Booking.SetStatusByPaymentID(ctx, payment.ID, entity.BookingStatusPending, entity.BookingPaymentAwaiting); err != nil {
			return fmt.Errorf("mark bookings awaiting for %s: %w", transactionID, err)
		}
		s.notifier.PaymentStatusChanged(ctx, transactionID, payment.Status)
	}

	return nil
}

// ==================== HELPER METHODS ====================

func (s *reconciliationService) buildBookings(req *request.CheckoutRequest, clientID uuid.UUID) ([]*entity.Booking, error) {
	now := time.Now()
	bookings := make([]*entity.Booking, len(req.Items))

	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid product ID format %s", item.ProductID)}
		}
		companyID, err := uuid.Parse(item.CompanyID)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid company ID format %s", item.CompanyID)}
		}
		date, err := time.Parse("2006-01-02", item.Date)
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid date %s", item.Date)}
		}

		cid := clientID
		bookings[i] = &entity.Booking{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ProductID:     productID,
			CompanyID:     companyID,
			ClientID:      &cid,
			Date:          date,
			TimeSlot:      item.Time,
			Quantity:      item.Quantity,
			UnitPrice:     item.Price,
			Status:        entity.BookingStatusPending,
			PaymentStatus: entity.BookingPaymentPending,
		}
	}

	return bookings, nil
}

func (s *reconciliationService) buildPayment(req *request.CheckoutRequest, result *gateway.PaymentResult, payerEmail string, total float64) *entity.Payment {
	now := time.Now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Status:            entity.PaymentStatus(result.Status),
		TransactionAmount: result.TransactionAmount,
		PayerEmail:        payerEmail,
		Installments:      req.Installments,
		PaymentMethod:     req.PaymentMethodID,
		DateApproved:      result.ApprovedAt(),
	}

	if payment.Installments == 0 {
		payment.Installments = 1
	}
	if payment.TransactionAmount == 0 {
		payment.TransactionAmount = total
	}
	if result.StatusDetail != "" {
		detail := result.StatusDetail
		payment.StatusDetail = &detail
	}

	payment.TransactionID = result.TransactionID()
	if payment.TransactionID == "" {
		payment.TransactionID = entity.FallbackTransactionID(payment.ID)
	}

	return payment
}

// recordFailedCharge keeps the attempt on the ledger when the gateway
// call itself failed, then maps the fault to the checkout error the
// caller sees.
func (s *reconciliationService) recordFailedCharge(ctx context.Context, req *request.CheckoutRequest, bookingIDs []uuid.UUID, payerEmail string, total float64, chargeErr error) error {
	now := time.Now()
	details := chargeErr.Error()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Status:            entity.PaymentStatusFailed,
		TransactionAmount: total,
		PayerEmail:        payerEmail,
		Installments:      max(req.Installments, 1),
		PaymentMethod:     req.PaymentMethodID,
		ErrorDetails:      &details,
	}
	payment.TransactionID = entity.FallbackTransactionID(payment.ID)

	if _, err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.log.Error("Failed to record failed charge attempt",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
		)
	} else if err := s.repo.Booking.AttachPayment(ctx, bookingIDs, payment.ID); err != nil {
		s.log.Error("Failed to attach failed charge attempt",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
		)
	}

	var apiErr *gateway.APIError
	if errors.As(chargeErr, &apiErr) {
		s.log.Warn("Gateway refused charge request",
			zap.Int("status_code", apiErr.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return &UpstreamRejectedError{
			Code:    apiErr.Message,
			Message: TranslatePaymentError(apiErr.Message),
		}
	}

	s.log.Error("Gateway unreachable during charge", zap.Error(chargeErr))
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, chargeErr)
}

func pixPresentment(result *gateway.PaymentResult) *response.PixPresentment {
	poi := result.PointOfInteraction
	if poi == nil || poi.TransactionData == nil || poi.TransactionData.QRCodeBase64 == "" {
		return nil
	}
	return &response.PixPresentment{
		QRCodeBase64:   poi.TransactionData.QRCodeBase64,
		PixLink:        poi.TransactionData.TicketURL,
		ExpirationDate: result.ExpiresAt(),
	}
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
