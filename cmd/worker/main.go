package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/civicbook/config"
	"github.com/Domenick1991/civicbook/internal/bootstrap"
	"github.com/Domenick1991/civicbook/internal/kafka"
	"github.com/Domenick1991/civicbook/internal/notify"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := bootstrap.NewLogger(cfg)

	if !cfg.Kafka.Enabled {
		log.Fatal("Worker requires kafka.enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EventsTopic, log)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Warn("Failed to close consumer", "error", err)
		}
	}()

	sender := notify.NewSender(log)

	log.Info("Worker started",
		"topic", cfg.Kafka.EventsTopic,
		"group", cfg.Kafka.GroupID,
	)

	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.RecordEvent) error {
		if err := sender.Send(ctx, event); err != nil {
			// One bad delivery must not stall the partition.
			log.Error("Notification failed",
				"reference", event.Reference,
				"type", event.Type,
				"error", err,
			)
		}
		return nil
	})
	if err != nil {
		log.Error("Consumer stopped", "error", err)
		stop()
		_ = consumer.Close()
		os.Exit(1)
	}

	log.Info("Worker stopped")
}
