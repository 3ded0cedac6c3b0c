package repository

import (
	"context"
	"fmt"

	"agenda-booking/internal/data/entity"
	"agenda-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	CreateBatch(ctx context.Context, bookings []*entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*entity.Booking, error)
	FindByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.Booking, error)

	// Reconciliation writes. All of them refuse to touch a booking
	// whose payment status already reached Aprovado.
	AttachPayment(ctx context.Context, bookingIDs []uuid.UUID, paymentID uuid.UUID) error
	ReassignPayment(ctx context.Context, fromPaymentID, toPaymentID uuid.UUID) (int64, error)
	SetStatusByPaymentID(ctx context.Context, paymentID uuid.UUID, status entity.BookingStatus, paymentStatus entity.BookingPaymentStatus) (int64, error)
	SetPaymentStatus(ctx context.Context, bookingIDs []uuid.UUID, paymentStatus entity.BookingPaymentStatus) error
	Cancel(ctx context.Context, id uuid.UUID) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, product_id, company_id, client_id, payment_id, date, time_slot, quantity, unit_price, status, payment_status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.ProductID,
		&b.CompanyID,
		&b.ClientID,
		&b.PaymentID,
		&b.Date,
		&b.TimeSlot,
		&b.Quantity,
		&b.UnitPrice,
		&b.Status,
		&b.PaymentStatus,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBatch inserts every booking of a checkout in one transaction
// so a cart never materializes partially.
func (r *bookingRepository) CreateBatch(ctx context.Context, bookings []*entity.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create bookings: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bookings (id, product_id, company_id, client_id, payment_id, date, time_slot, quantity, unit_price, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, b := range bookings {
		_, err := tx.Exec(ctx, query,
			b.ID,
			b.ProductID,
			b.CompanyID,
			b.ClientID,
			b.PaymentID,
			b.Date,
			b.TimeSlot,
			b.Quantity,
			b.UnitPrice,
			b.Status,
			b.PaymentStatus,
			b.CreatedAt,
			b.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create booking",
				zap.Error(err),
				zap.String("booking_id", b.ID.String()),
				zap.String("product_id", b.ProductID.String()),
			)
			return fmt.Errorf("create booking %s: %w", b.ID.String(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create bookings: %w", err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, paymentID)
	if err != nil {
		r.log.Error("Failed to find bookings by payment ID",
			zap.Error(err),
			zap.String("payment_id", paymentID.String()),
		)
		return nil, fmt.Errorf("find bookings by payment ID %s: %w", paymentID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by client ID",
			zap.Error(err),
			zap.String("client_id", clientID.String()),
		)
		return nil, fmt.Errorf("find bookings by client ID %s: %w", clientID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// AttachPayment links bookings to the payment row created for their
// charge attempt. A booking already owned by another payment is left
// alone: a retry must never steal bookings from a previous attempt.
func (r *bookingRepository) AttachPayment(ctx context.Context, bookingIDs []uuid.UUID, paymentID uuid.UUID) error {
	query := `
		UPDATE bookings
		SET payment_id = $2, updated_at = NOW()
		WHERE id = ANY($1) AND (payment_id IS NULL OR payment_id = $2)
	`

	_, err := r.db.Exec(ctx, query, bookingIDs, paymentID)
	if err != nil {
		r.log.Error("Failed to attach payment to bookings",
			zap.Error(err),
			zap.String("payment_id", paymentID.String()),
			zap.Int("booking_count", len(bookingIDs)),
		)
		return fmt.Errorf("attach payment %s to bookings: %w", paymentID.String(), err)
	}

	return nil
}

// ReassignPayment moves bookings from a superseded charge attempt to
// its replacement. Bookings already paid stay with the payment that
// paid them.
func (r *bookingRepository) ReassignPayment(ctx context.Context, fromPaymentID, toPaymentID uuid.UUID) (int64, error) {
	query := `
		UPDATE bookings
		SET payment_id = $2, updated_at = NOW()
		WHERE payment_id = $1 AND payment_status <> $3
	`

	result, err := r.db.Exec(ctx, query, fromPaymentID, toPaymentID, entity.BookingPaymentApproved)
	if err != nil {
		r.log.Error("Failed to reassign bookings to new payment",
			zap.Error(err),
			zap.String("from_payment_id", fromPaymentID.String()),
			zap.String("to_payment_id", toPaymentID.String()),
		)
		return 0, fmt.Errorf("reassign bookings from payment %s: %w", fromPaymentID.String(), err)
	}

	return result.RowsAffected(), nil
}

// SetStatusByPaymentID moves every booking of a payment in one
// statement. Bookings already Aprovado are excluded so an approved
// sale can never regress.
func (r *bookingRepository) SetStatusByPaymentID(ctx context.Context, paymentID uuid.UUID, status entity.BookingStatus, paymentStatus entity.BookingPaymentStatus) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE payment_id = $1 AND payment_status <> $4
	`

	result, err := r.db.Exec(ctx, query, paymentID, status, paymentStatus, entity.BookingPaymentApproved)
	if err != nil {
		r.log.Error("Failed to update bookings by payment ID",
			zap.Error(err),
			zap.String("payment_id", paymentID.String()),
			zap.String("status", string(status)),
			zap.String("payment_status", string(paymentStatus)),
		)
		return 0, fmt.Errorf("update bookings for payment %s: %w", paymentID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *bookingRepository) SetPaymentStatus(ctx context.Context, bookingIDs []uuid.UUID, paymentStatus entity.BookingPaymentStatus) error {
	query := `
		UPDATE bookings
		SET payment_status = $2, updated_at = NOW()
		WHERE id = ANY($1) AND payment_status <> $3
	`

	_, err := r.db.Exec(ctx, query, bookingIDs, paymentStatus, entity.BookingPaymentApproved)
	if err != nil {
		r.log.Error("Failed to update booking payment status",
			zap.Error(err),
			zap.String("payment_status", string(paymentStatus)),
			zap.Int("booking_count", len(bookingIDs)),
		)
		return fmt.Errorf("update booking payment status to %s: %w", string(paymentStatus), err)
	}

	return nil
}

// Cancel is a status change, never a delete: a booking with a charge
// attempt behind it stays on the ledger.
func (r *bookingRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND payment_status <> $3
	`

	result, err := r.db.Exec(ctx, query, id, entity.BookingStatusCancelled, entity.BookingPaymentApproved)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("cancel booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s cannot be cancelled", id.String())
	}

	r.log.Info("Booking cancelled", zap.String("booking_id", id.String()))
	return nil
}
