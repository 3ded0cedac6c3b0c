package wire

import (
	"net/http"

	"agenda-booking/internal/adaptor"
	"agenda-booking/internal/data/repository"
	"agenda-booking/internal/gateway"
	"agenda-booking/internal/usecase"
	"agenda-booking/pkg/middleware"
	"agenda-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the infrastructure handles main owns the lifecycle
// of: the wiring borrows them, it never opens or closes them.
type Dependencies struct {
	Repo     *repository.Repository
	Gateway  gateway.Client
	Redis    *redis.Client
	Renderer usecase.VoucherRenderer
	Mailer   usecase.VoucherMailer
	Pusher   usecase.Pusher
}

type App struct {
	Router *chi.Mux
}

func Wiring(deps *Dependencies, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(
		deps.Repo,
		deps.Gateway,
		deps.Redis,
		deps.Renderer,
		deps.Mailer,
		deps.Pusher,
		config,
		logger,
	)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireCheckout(r, handler.Checkout)
	wireWebhook(r, handler.Webhook)
	wirePayment(r, handler.Payment)
	wireBooking(r, handler.Booking)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
