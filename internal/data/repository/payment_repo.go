package repository

import (
	"context"
	"fmt"
	"time"

	"agenda-booking/internal/data/entity"
	"agenda-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PaymentUpdate carries the fields a gateway notification may refresh.
// Nil pointers leave the stored value untouched.
type PaymentUpdate struct {
	Status            entity.PaymentStatus
	StatusDetail      *string
	TransactionAmount *float64
	PayerEmail        *string
	PaymentMethod     *string
	DateApproved      *time.Time
}

// AdvanceResult reports what a conditional status update did.
type AdvanceResult struct {
	Applied        bool
	PreviousStatus entity.PaymentStatus
	Payment        *entity.Payment
	// FirstApproval is true exactly once per transaction: the update
	// moved the payment into approved for the first time.
	FirstApproval bool
}

type PaymentRepository interface {
	// Create inserts the payment unless a row for the same transaction
	// id already exists. Returns whether a row was actually inserted.
	Create(ctx context.Context, payment *entity.Payment) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)

	// AdvanceStatus applies the update only when the incoming status
	// outranks the stored one, under a row lock so concurrent webhook
	// deliveries and polls serialize. Returns nil when the transaction
	// is unknown.
	AdvanceStatus(ctx context.Context, transactionID string, update PaymentUpdate) (*AdvanceResult, error)

	// MarkError records a notification we failed to process. It never
	// overwrites a terminal status.
	MarkError(ctx context.Context, transactionID string, details string) error
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, transaction_id, status, status_detail, transaction_amount, payer_email, installments, payment_method, error_details, date_approved, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID,
		&p.TransactionID,
		&p.Status,
		&p.StatusDetail,
		&p.TransactionAmount,
		&p.PayerEmail,
		&p.Installments,
		&p.PaymentMethod,
		&p.ErrorDetails,
		&p.DateApproved,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) (bool, error) {
	// transaction_id carries a unique index; the conflict clause makes
	// repeated creation attempts for the same gateway transaction a no-op.
	query := `
		INSERT INTO payments (id, transaction_id, status, status_detail, transaction_amount, payer_email, installments, payment_method, error_details, date_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (transaction_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.TransactionID,
		payment.Status,
		payment.StatusDetail,
		payment.TransactionAmount,
		payment.PayerEmail,
		payment.Installments,
		payment.PaymentMethod,
		payment.ErrorDetails,
		payment.DateApproved,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("transaction_id", payment.TransactionID),
		)
		return false, fmt.Errorf("create payment for transaction %s: %w", payment.TransactionID, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, transactionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by transaction ID",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
		)
		return nil, fmt.Errorf("find payment by transaction ID %s: %w", transactionID, err)
	}

	return payment, nil
}

func (r *paymentRepository) AdvanceStatus(ctx context.Context, transactionID string, update PaymentUpdate) (*AdvanceResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin advance status: %w", err)
	}
	defer tx.Rollback(ctx)

	lockQuery := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1 FOR UPDATE`

	current, err := scanPayment(tx.QueryRow(ctx, lockQuery, transactionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock payment row",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
		)
		return nil, fmt.Errorf("lock payment %s: %w", transactionID, err)
	}

	result := &AdvanceResult{PreviousStatus: current.Status, Payment: current}

	// Stale or duplicate notification: the stored status already is at
	// least as final. Drop the write, keep the row as-is.
	if entity.PaymentStatusRank(update.Status) <= entity.PaymentStatusRank(current.Status) {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit advance status: %w", err)
		}
		r.log.Debug("Payment status update dropped by precedence",
			zap.String("transaction_id", transactionID),
			zap.String("stored", string(current.Status)),
			zap.String("incoming", string(update.Status)),
		)
		return result, nil
	}

	updateQuery := `
		UPDATE payments
		SET status = $2,
		    status_detail = COALESCE($3, status_detail),
		    transaction_amount = COALESCE($4, transaction_amount),
		    payer_email = COALESCE($5, payer_email),
		    payment_method = COALESCE($6, payment_method),
		    date_approved = COALESCE($7, date_approved),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err = tx.Exec(ctx, updateQuery,
		current.ID,
		update.Status,
		update.StatusDetail,
		update.TransactionAmount,
		update.PayerEmail,
		update.PaymentMethod,
		update.DateApproved,
	)
	if err != nil {
		r.log.Error("Failed to advance payment status",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
			zap.String("status", string(update.Status)),
		)
		return nil, fmt.Errorf("advance payment %s to %s: %w", transactionID, string(update.Status), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit advance status: %w", err)
	}

	result.Applied = true
	result.FirstApproval = update.Status == entity.PaymentStatusApproved &&
		current.Status != entity.PaymentStatusApproved

	refreshed := *current
	refreshed.Status = update.Status
	if update.StatusDetail != nil {
		refreshed.StatusDetail = update.StatusDetail
	}
	if update.TransactionAmount != nil {
		refreshed.TransactionAmount = *update.TransactionAmount
	}
	if update.PayerEmail != nil {
		refreshed.PayerEmail = *update.PayerEmail
	}
	if update.PaymentMethod != nil {
		refreshed.PaymentMethod = *update.PaymentMethod
	}
	if update.DateApproved != nil {
		refreshed.DateApproved = update.DateApproved
	}
	result.Payment = &refreshed

	return result, nil
}

func (r *paymentRepository) MarkError(ctx context.Context, transactionID string, details string) error {
	query := `
		UPDATE payments
		SET status = $2, error_details = $3, updated_at = NOW()
		WHERE transaction_id = $1 AND status IN ($4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		transactionID,
		entity.PaymentStatusError,
		details,
		entity.PaymentStatusPending,
		entity.PaymentStatusInProcess,
		entity.PaymentStatusError,
	)
	if err != nil {
		r.log.Error("Failed to mark payment error",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
		)
		return fmt.Errorf("mark payment %s error: %w", transactionID, err)
	}

	return nil
}
