package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/izsecurity/shop/internal/config"
	"github.com/izsecurity/shop/internal/events"
	"github.com/izsecurity/shop/internal/handlers"
	"github.com/izsecurity/shop/internal/logging"
	loggingmw "github.com/izsecurity/shop/internal/middleware/logging"
	"github.com/izsecurity/shop/internal/notify"
	"github.com/izsecurity/shop/internal/order"
	"github.com/izsecurity/shop/internal/payment"
	httpserver "github.com/izsecurity/shop/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := config.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
	}

	verifier := payment.NewVerifier(cfg.Razorpay.KeySecret)
	gateway := payment.NewGatewayClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL)

	dispatcher := &notify.Dispatcher{
		Email:  notify.NewEmailChannel(cfg.Brevo.APIKey, cfg.Brevo.SenderName, cfg.Brevo.SenderEmail, cfg.Brevo.BaseURL),
		Admin:  notify.NewWhatsAppChannel(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppNumber, cfg.AdminWhatsApp, cfg.Twilio.BaseURL),
		Logger: logger,
	}

	orderSvc := order.NewService(db, verifier, dispatcher)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	var publisher handlers.EventPublisher
	if producer != nil {
		publisher = producer
	}

	deps := httpserver.Deps{
		DB:             db,
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: publisher},
		CartHandler:    &handlers.CartHandler{DB: db, Producer: publisher},
		UserHandler:    &handlers.UserHandler{DB: db, Producer: publisher, Dispatcher: dispatcher},
		OrderHandler:   &handlers.OrderHandler{Svc: orderSvc, Gateway: gateway, Producer: publisher},
		JWTSecret:      []byte(cfg.JWTSecret),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	dispatcher.Wait()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
