package main

import (
	"context"
	"flag"
	"log"
	"time"

	"oloustream/internal/config"
	"oloustream/internal/database"
	"oloustream/internal/domain/notification"
)

func main() {
	keep := flag.Duration("keep", 30*24*time.Hour, "how long read notifications are kept")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	svc := notification.NewService(notification.NewRepository(db))
	deleted, err := svc.PurgeRead(ctx, *keep)
	if err != nil {
		log.Fatalf("cleanup notifications failed: %v", err)
	}
	log.Printf("cleanup completed: notifications=%d keep=%s", deleted, *keep)
}
