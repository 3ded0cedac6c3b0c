package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus follows the gateway's own vocabulary so webhook and
// polling updates can be stored without translation. PaymentStatusError
// is ours: it records a notification we could not process.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusInProcess PaymentStatus = "in_process"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusError     PaymentStatus = "erro"
)

// unknownTransactionPrefix marks attempts the gateway answered without
// a transaction id. The payment's own id keeps the key unique so the
// attempt record is never thrown away.
const unknownTransactionPrefix = "unknown_transaction_"

func FallbackTransactionID(paymentID uuid.UUID) string {
	return unknownTransactionPrefix + paymentID.String()
}

// PaymentStatusRank orders statuses by finality. Updates for the same
// transaction are only applied when the incoming status outranks the
// stored one, so an out-of-order "pending" can never bury an "approved".
func PaymentStatusRank(s PaymentStatus) int {
	switch s {
	case PaymentStatusError:
		return 0
	case PaymentStatusPending:
		return 1
	case PaymentStatusInProcess:
		return 2
	case PaymentStatusRejected, PaymentStatusFailed, PaymentStatusCancelled:
		return 3
	case PaymentStatusApproved:
		return 4
	default:
		return 1
	}
}

// IsTerminal reports whether the gateway will not change this status again.
func (s PaymentStatus) IsTerminal() bool {
	return PaymentStatusRank(s) >= 3
}

type Payment struct {
	Base
	TransactionID     string        `db:"transaction_id"`
	Status            PaymentStatus `db:"status"`
	StatusDetail      *string       `db:"status_detail"`
	TransactionAmount float64       `db:"transaction_amount"`
	PayerEmail        string        `db:"payer_email"`
	Installments      int           `db:"installments"`
	PaymentMethod     string        `db:"payment_method"`
	ErrorDetails      *string       `db:"error_details"`
	DateApproved      *time.Time    `db:"date_approved"`
}
