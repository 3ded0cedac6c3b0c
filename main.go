// main.go
package main

import (
	"log"
	"time"

	"agenda-booking/cmd"
	"agenda-booking/internal/data/repository"
	"agenda-booking/internal/gateway"
	"agenda-booking/internal/notify"
	"agenda-booking/internal/wire"
	"agenda-booking/pkg/database"
	"agenda-booking/pkg/queue"
	"agenda-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Redis backs the pix QR lifecycle state
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	defer rdb.Close()

	// Push events go out through the message broker. The app still
	// serves payments without it; only real-time updates are lost.
	var publisher *queue.Publisher
	if config.Queue.URL != "" {
		publisher, err = queue.NewPublisher(config.Queue.URL, config.Queue.Exchange)
		if err != nil {
			logger.Error("Failed to connect to message broker", zap.Error(err))
		} else {
			defer publisher.Close()
		}
	}

	gatewayClient := gateway.NewClient(
		config.Gateway.BaseURL,
		config.Gateway.AccessToken,
		time.Duration(config.Gateway.TimeoutSeconds)*time.Second,
		logger,
	)

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(&wire.Dependencies{
		Repo:     repos,
		Gateway:  gatewayClient,
		Redis:    rdb,
		Renderer: notify.NewPDFRenderer(),
		Mailer:   notify.NewMailer(config.Email, logger),
		Pusher:   notify.NewPush(publisher, logger),
	}, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port, logger)
}
