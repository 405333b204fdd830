package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"oloustream/internal/config"
	"oloustream/internal/mailer"
)

// The mail worker drains the outbound queue. Delivery is logged until an SMTP
// sender is configured.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := mailer.NewConsumer(cfg.RabbitMQURL, cfg.MailQueue, mailer.LogSender{})
	log.Printf("mail worker started queue=%s", cfg.MailQueue)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("mail worker: %v", err)
	}
	log.Printf("mail worker stopped")
}
