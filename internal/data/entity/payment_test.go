package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusRank(t *testing.T) {
	// approved outranks everything; rejected/failed/cancelled tie.
	assert.Greater(t, PaymentStatusRank(PaymentStatusApproved), PaymentStatusRank(PaymentStatusRejected))
	assert.Greater(t, PaymentStatusRank(PaymentStatusRejected), PaymentStatusRank(PaymentStatusInProcess))
	assert.Greater(t, PaymentStatusRank(PaymentStatusInProcess), PaymentStatusRank(PaymentStatusPending))
	assert.Greater(t, PaymentStatusRank(PaymentStatusPending), PaymentStatusRank(PaymentStatusError))

	assert.Equal(t, PaymentStatusRank(PaymentStatusRejected), PaymentStatusRank(PaymentStatusFailed))
	assert.Equal(t, PaymentStatusRank(PaymentStatusRejected), PaymentStatusRank(PaymentStatusCancelled))

	// Unknown statuses rank like pending so they never bury anything.
	assert.Equal(t, PaymentStatusRank(PaymentStatusPending), PaymentStatusRank(PaymentStatus("whatever")))
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	assert.True(t, PaymentStatusApproved.IsTerminal())
	assert.True(t, PaymentStatusRejected.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.True(t, PaymentStatusCancelled.IsTerminal())

	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.False(t, PaymentStatusInProcess.IsTerminal())
	assert.False(t, PaymentStatusError.IsTerminal())
}

func TestFallbackTransactionID(t *testing.T) {
	a := FallbackTransactionID(uuid.New())
	b := FallbackTransactionID(uuid.New())

	assert.Contains(t, a, "unknown_transaction_")
	// Two failed attempts must never collide on the transaction id index.
	assert.NotEqual(t, a, b)
}
