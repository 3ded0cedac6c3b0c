package usecase

import (
	"agenda-booking/internal/data/repository"
	"agenda-booking/internal/gateway"
	"agenda-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Service groups every use case behind one handle for wiring.
type Service struct {
	Reconciliation ReconciliationService
	Pix            PixService
	Ledger         LedgerService
	Notification   NotificationService
}

func NewService(
	repo *repository.Repository,
	gw gateway.Client,
	rdb *redis.Client,
	renderer VoucherRenderer,
	mailer VoucherMailer,
	pusher Pusher,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, renderer, mailer, pusher, log)
	reconciliation := NewReconciliationService(repo, gw, notification, log)

	return &Service{
		Reconciliation: reconciliation,
		Pix:            NewPixService(rdb, repo, reconciliation, config.Pix.WindowSeconds, log),
		Ledger:         NewLedgerService(repo, log),
		Notification:   notification,
	}
}
