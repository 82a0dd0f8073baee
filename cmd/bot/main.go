package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saigon-transit/service-route/internal/application"
	"github.com/saigon-transit/service-route/internal/config"
	"github.com/saigon-transit/service-route/internal/gateway/nominatim"
	"github.com/saigon-transit/service-route/internal/gateway/osrm"
	"github.com/saigon-transit/service-route/internal/handler"
	"github.com/saigon-transit/service-route/internal/kafka"
	"github.com/saigon-transit/service-route/internal/logger"
	"github.com/saigon-transit/service-route/internal/middleware"
	"github.com/saigon-transit/service-route/internal/repository"
	"github.com/saigon-transit/service-route/internal/telegram"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-route")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-route",
		zap.String("port", cfg.Port),
		zap.String("transport_mode", cfg.Telegram.Mode),
	)

	// Initialize the observability event publisher
	var publisher application.EventPublisher = application.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
		log.Info("event publishing enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	// Initialize gateways
	geocoder := nominatim.NewClient(cfg.Geocoder, log.Named("nominatim"))
	router := osrm.NewClient(cfg.Router, log.Named("osrm"))
	links := osrm.NewLinkBuilder(cfg.MapLink)

	// Initialize session store and flow service
	sessions := repository.NewInMemorySessionRepository()
	flows := application.NewFlowService(sessions, geocoder, router, links, publisher, log)

	// Initialize the Telegram transport and dispatcher
	tgClient := telegram.NewClient(cfg.Telegram)
	dispatcher := handler.NewDispatcher(tgClient, flows, log.Named("dispatcher"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcherDone := make(chan error, 1)
	go func() {
		if cfg.Telegram.Mode == "webhook" {
			dispatcherDone <- dispatcher.RunWebhook(ctx)
		} else {
			dispatcherDone <- dispatcher.Run(ctx)
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Apply global middleware
	engine.Use(middleware.RecoveryMiddleware(log))
	engine.Use(middleware.LoggerMiddleware(log))
	engine.Use(middleware.RequestIDMiddleware())

	// Register routes
	opsHandler := handler.NewOpsHandler(flows)
	opsHandler.RegisterRoutes(&engine.RouterGroup)
	if cfg.Telegram.Mode == "webhook" {
		webhookHandler := handler.NewWebhookHandler(dispatcher, log.Named("webhook"))
		webhookHandler.RegisterRoutes(&engine.RouterGroup)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-route...")

	// Stop the dispatcher and wait for chat workers to drain
	cancel()
	select {
	case <-dispatcherDone:
	case <-time.After(10 * time.Second):
		log.Warn("dispatcher did not drain in time")
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-route stopped")
}
