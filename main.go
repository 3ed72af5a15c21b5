package main

import (
	"os"
	"os/signal"
	"syscall"

	"ingreedio/internal/app"
	"ingreedio/internal/config"
	"ingreedio/internal/database"
	"ingreedio/internal/logger"
	"ingreedio/internal/services"
	"ingreedio/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logrus.Fatalf("Failed to read config file: %v", err)
		}
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// --- Database ---
	db, err := database.Setup(cfg.Database())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		handler := rabbitmq.ModerationHandler(cfg.ModerationThreshold, log.WithField("component", "moderation"))
		if err := mqClient.ConsumeReviewEvents(handler); err != nil {
			log.Errorf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Info("RABBITMQ_URL not set, review events disabled")
	}

	// --- HTTP Server ---
	server, err := app.New(cfg, db, log, publisher)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("Starting server on port %s", cfg.AppPort)
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		log.Errorf("Error during Fiber shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
