package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/swiftpay/swiftpay/internal/auth"
	"github.com/swiftpay/swiftpay/internal/config"
	"github.com/swiftpay/swiftpay/internal/events"
	"github.com/swiftpay/swiftpay/internal/events/kafka"
	"github.com/swiftpay/swiftpay/internal/router"
	"github.com/swiftpay/swiftpay/internal/service"
	"github.com/swiftpay/swiftpay/internal/storage/sqlite"
	"github.com/swiftpay/swiftpay/internal/transfer"
	"github.com/swiftpay/swiftpay/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	// Transfer events: Kafka when brokers are configured, discarded otherwise
	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaBrokers != "" {
		kp := kafka.NewPublisher(strings.Split(cfg.KafkaBrokers, ","))
		defer kp.Close()
		publisher = kp
		slog.Info("Kafka publisher enabled", "brokers", cfg.KafkaBrokers)
	}

	engine := transfer.NewEngine(store, publisher, cfg.TransferCeiling)
	slog.Info("Transfer engine ready", "ceiling", engine.Ceiling())

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	handler := router.New(router.Services{
		Auth:          service.NewAuthService(authenticator, tokens),
		Users:         service.NewUserService(store),
		Transfers:     service.NewTransferService(engine),
		Notifications: service.NewNotificationService(store),
	}, tokens)

	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
