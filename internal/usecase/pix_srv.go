package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agenda-booking/internal/data/entity"
	"agenda-booking/internal/data/repository"
	"agenda-booking/internal/dto/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pix attempt states as the frontend polls them.
const (
	PixStateAwaiting = "awaiting"
	PixStateApproved = "approved"
	PixStateRejected = "rejected"
	PixStateExpired  = "expired"
)

const (
	pixAttemptKeyPrefix = "pix:attempt:"
	pixLockKeyPrefix    = "pix:lock:"

	// Attempts outlive their QR window so the frontend can still read
	// the terminal state after the code expired.
	pixAttemptTTL = time.Hour
	pixLockTTL    = 15 * time.Second
)

// pixAttempt is the QR lifecycle record kept in Redis. One attempt
// tracks one purchase through any number of regenerated codes; only
// TransactionID and the presentment fields change across codes.
type pixAttempt struct {
	AttemptID      string    `json:"attemptId"`
	State          string    `json:"state"`
	TransactionID  string    `json:"transactionId"`
	PaymentID      string    `json:"paymentId"`
	QRCodeBase64   string    `json:"qrCodeBase64"`
	PixLink        string    `json:"pixLink"`
	ExpiresAt      time.Time `json:"expiresAt"`
	FailureMessage string    `json:"failureMessage,omitempty"`
}

type PixService interface {
	// StartAttempt registers the QR lifecycle for a pix checkout that
	// just came back pending. Returns the attempt id the frontend polls.
	StartAttempt(ctx context.Context, checkout *response.CheckoutResponse) (string, error)

	// GetAttempt reports the current lifecycle state, converging it with
	// the payment ledger on every read.
	GetAttempt(ctx context.Context, attemptID string) (*response.PixAttemptResponse, error)

	// Regenerate replaces an expired code with a fresh charge. Only one
	// regeneration runs per attempt at a time; concurrent callers get
	// whatever code the winner produced.
	Regenerate(ctx context.Context, attemptID string) (*response.PixAttemptResponse, error)
}

type pixService struct {
	rdb           *redis.Client
	repo          *repository.Repository
	reconciler    ReconciliationService
	windowSeconds int
	log           *zap.Logger
}

func NewPixService(rdb *redis.Client, repo *repository.Repository, reconciler ReconciliationService, windowSeconds int, log *zap.Logger) PixService {
	return &pixService{
		rdb:           rdb,
		repo:          repo,
		reconciler:    reconciler,
		windowSeconds: windowSeconds,
		log:           log.With(zap.String("service", "pix")),
	}
}

func (s *pixService) StartAttempt(ctx context.Context, checkout *response.CheckoutResponse) (string, error) {
	if checkout.Pix == nil {
		return "", fmt.Errorf("checkout %s carries no pix presentment", checkout.PaymentID)
	}

	attempt := &pixAttempt{
		AttemptID:     uuid.New().String(),
		State:         PixStateAwaiting,
		TransactionID: checkout.TransactionID,
		PaymentID:     checkout.PaymentID,
		QRCodeBase64:  checkout.Pix.QRCodeBase64,
		PixLink:       checkout.Pix.PixLink,
		ExpiresAt:     s.windowEnd(checkout.Pix.ExpirationDate),
	}

	if err := s.save(ctx, attempt); err != nil {
		return "", err
	}

	s.log.Info("Pix attempt started",
		zap.String("attempt_id", attempt.AttemptID),
		zap.String("transaction_id", attempt.TransactionID),
		zap.Time("expires_at", attempt.ExpiresAt),
	)
	return attempt.AttemptID, nil
}

func (s *pixService) GetAttempt(ctx context.Context, attemptID string) (*response.PixAttemptResponse, error) {
	attempt, err := s.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if err := s.converge(ctx, attempt); err != nil {
		return nil, err
	}

	return attemptToResponse(attempt), nil
}

func (s *pixService) Regenerate(ctx context.Context, attemptID string) (*response.PixAttemptResponse, error) {
	attempt, err := s.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	// The payment may have landed between the frontend noticing the
	// expiry and calling here. Never replace a code that already paid.
	if err := s.converge(ctx, attempt); err != nil {
		return nil, err
	}
	if attempt.State == PixStateApproved || attempt.State == PixStateRejected {
		return attemptToResponse(attempt), nil
	}

	locked, err := s.rdb.SetNX(ctx, pixLockKeyPrefix+attemptID, 1, pixLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire regeneration lock for %s: %w", attemptID, err)
	}
	if !locked {
		// Another regeneration is in flight; report the state as-is and
		// let the frontend poll for the winner's code.
		return attemptToResponse(attempt), nil
	}
	defer s.rdb.Del(context.WithoutCancel(ctx), pixLockKeyPrefix+attemptID)

	// Re-read under the lock: a regeneration that just finished already
	// produced a fresh, unexpired code.
	attempt, err = s.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.State == PixStateAwaiting && time.Now().Before(attempt.ExpiresAt) {
		return attemptToResponse(attempt), nil
	}

	previousPaymentID, err := uuid.Parse(attempt.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s holds invalid payment id %s", attemptID, attempt.PaymentID)
	}

	checkout, err := s.reconciler.ResubmitPix(ctx, previousPaymentID)
	if err != nil {
		var rejected *UpstreamRejectedError
		if errors.As(err, &rejected) {
			attempt.State = PixStateRejected
			attempt.FailureMessage = rejected.Message
			if saveErr := s.save(ctx, attempt); saveErr != nil {
				return nil, saveErr
			}
			return attemptToResponse(attempt), nil
		}
		return nil, err
	}

	attempt.State = PixStateAwaiting
	attempt.TransactionID = checkout.TransactionID
	attempt.PaymentID = checkout.PaymentID
	attempt.QRCodeBase64 = checkout.Pix.QRCodeBase64
	attempt.PixLink = checkout.Pix.PixLink
	attempt.ExpiresAt = s.windowEnd(checkout.Pix.ExpirationDate)
	attempt.FailureMessage = ""

	if err := s.save(ctx, attempt); err != nil {
		return nil, err
	}

	s.log.Info("Pix code regenerated",
		zap.String("attempt_id", attemptID),
		zap.String("transaction_id", attempt.TransactionID),
	)
	return attemptToResponse(attempt), nil
}

// converge folds the payment ledger into the attempt state. Awaiting
// flips to approved or rejected as soon as the ledger says so, and to
// expired when the window closed without an answer.
func (s *pixService) converge(ctx context.Context, attempt *pixAttempt) error {
	if attempt.State != PixStateAwaiting && attempt.State != PixStateExpired {
		return nil
	}

	payment, err := s.repo.Payment.FindByTransactionID(ctx, attempt.TransactionID)
	if err != nil {
		return fmt.Errorf("consult payment for attempt %s: %w", attempt.AttemptID, err)
	}

	if payment != nil {
		switch payment.Status {
		case entity.PaymentStatusApproved:
			attempt.State = PixStateApproved
			attempt.FailureMessage = ""
			return s.save(ctx, attempt)
		case entity.PaymentStatusRejected, entity.PaymentStatusFailed, entity.PaymentStatusCancelled:
			attempt.State = PixStateRejected
			detail := ""
			if payment.StatusDetail != nil {
				detail = *payment.StatusDetail
			}
			attempt.FailureMessage = TranslatePaymentError(detail)
			return s.save(ctx, attempt)
		}
	}

	if attempt.State == PixStateAwaiting && time.Now().After(attempt.ExpiresAt) {
		attempt.State = PixStateExpired
		return s.save(ctx, attempt)
	}

	return nil
}

func (s *pixService) windowEnd(gatewayExpiry *time.Time) time.Time {
	end := time.Now().Add(time.Duration(s.windowSeconds) * time.Second)
	if gatewayExpiry != nil && gatewayExpiry.Before(end) {
		end = *gatewayExpiry
	}
	return end
}

func (s *pixService) load(ctx context.Context, attemptID string) (*pixAttempt, error) {
	raw, err := s.rdb.Get(ctx, pixAttemptKeyPrefix+attemptID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("pix attempt %s: %w", attemptID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load pix attempt %s: %w", attemptID, err)
	}

	var attempt pixAttempt
	if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
		return nil, fmt.Errorf("decode pix attempt %s: %w", attemptID, err)
	}
	return &attempt, nil
}

func (s *pixService) save(ctx context.Context, attempt *pixAttempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("encode pix attempt %s: %w", attempt.AttemptID, err)
	}

	if err := s.rdb.Set(ctx, pixAttemptKeyPrefix+attempt.AttemptID, string(raw), pixAttemptTTL).Err(); err != nil {
		return fmt.Errorf("store pix attempt %s: %w", attempt.AttemptID, err)
	}
	return nil
}

func attemptToResponse(attempt *pixAttempt) *response.PixAttemptResponse {
	resp := &response.PixAttemptResponse{
		AttemptID:      attempt.AttemptID,
		State:          attempt.State,
		TransactionID:  attempt.TransactionID,
		PaymentID:      attempt.PaymentID,
		FailureMessage: attempt.FailureMessage,
	}

	if attempt.State == PixStateAwaiting {
		resp.QRCodeBase64 = attempt.QRCodeBase64
		resp.PixLink = attempt.PixLink
		expires := attempt.ExpiresAt
		resp.ExpiresAt = &expires
		if left := int(time.Until(attempt.ExpiresAt).Seconds()); left > 0 {
			resp.SecondsLeft = left
		}
	}

	return resp
}
