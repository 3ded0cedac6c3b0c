package notify

import (
	"context"
	"time"

	"agenda-booking/pkg/queue"

	"go.uber.org/zap"
)

const (
	routingConfirmed = "payment.confirmed"
	routingStatus    = "payment.status"
)

type paymentEvent struct {
	Event         string `json:"event"`
	OccurredAt    string `json:"occurred_at"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// Push fans payment events out to the real-time channel. Listening
// frontend sessions get them relayed over websocket by the gateway
// that consumes this exchange. Fire and forget: a lost event only
// delays the UI until its next poll.
type Push struct {
	pub *queue.Publisher
	log *zap.Logger
}

func NewPush(pub *queue.Publisher, log *zap.Logger) *Push {
	return &Push{
		pub: pub,
		log: log.With(zap.String("component", "push")),
	}
}

func (p *Push) PaymentConfirmed(ctx context.Context, transactionID, status string) error {
	return p.publish(ctx, routingConfirmed, "paymentConfirmed", transactionID, status)
}

func (p *Push) PaymentStatusChanged(ctx context.Context, transactionID, status string) error {
	return p.publish(ctx, routingStatus, "paymentStatusChanged", transactionID, status)
}

func (p *Push) publish(ctx context.Context, key, event, transactionID, status string) error {
	if p.pub == nil {
		return nil
	}
	err := p.pub.PublishJSON(ctx, key, paymentEvent{
		Event:         event,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
		TransactionID: transactionID,
		Status:        status,
	})
	if err != nil {
		p.log.Warn("Failed to publish payment event",
			zap.Error(err),
			zap.String("event", event),
			zap.String("transaction_id", transactionID),
		)
	}
	return err
}
