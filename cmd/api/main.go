package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"oloustream/internal/config"
	"oloustream/internal/database"
	"oloustream/internal/domain/account"
	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/messaging"
	"oloustream/internal/domain/notification"
	"oloustream/internal/domain/offer"
	"oloustream/internal/domain/partner"
	"oloustream/internal/domain/payment"
	"oloustream/internal/domain/reservation"
	"oloustream/internal/domain/training"
	"oloustream/internal/mailer"
	jwtsvc "oloustream/internal/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db, allModels()...); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := messaging.NewHub()
	relay := messaging.NewRelay(cfg.RedisURL, cfg.ChatChannel)
	defer relay.Close()
	if err := relay.Subscribe(ctx, hub.Deliver); err != nil {
		log.Fatalf("chat relay subscribe failed: %v", err)
	}

	mail := mailer.NewEnqueuer(cfg.RabbitMQURL, cfg.MailQueue)
	if c, ok := mail.(io.Closer); ok {
		defer c.Close()
	}

	r := newRouter(cfg, j, wire(db, cfg, j, hub, relay, mail))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("api listening addr=%s env=%s", srv.Addr, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down timeout=%s", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Printf("api stopped")
}

// wire builds every service and handler on top of db.
func wire(db *gorm.DB, cfg *config.Config, j *jwtsvc.Service, hub *messaging.Hub, relay messaging.Relay, mail mailer.Enqueuer) handlers {
	accountService := account.NewService(account.NewRepository(db), j)

	notificationService := notification.NewService(notification.NewRepository(db))
	notificationService.SetPusher(hub)

	catalogService := catalog.NewService(catalog.NewRepository(db))
	reservationService := reservation.NewService(db, notificationService, accountService)
	partnerService := partner.NewService(db, notificationService, accountService, mail, cfg.PartnerDefaultRate)
	messagingService := messaging.NewService(db, relay, notificationService, accountService)
	paymentService := payment.NewService(db, reservation.NewRepository(db), notificationService, accountService)
	trainingService := training.NewService(db, notificationService, accountService)
	offerService := offer.NewService(db, catalogService, notificationService, accountService, mail)

	return handlers{
		account:      account.NewHandler(accountService, cfg.PageSize),
		catalog:      catalog.NewHandler(catalogService),
		reservation:  reservation.NewHandler(reservationService, cfg.PageSize),
		notification: notification.NewHandler(notificationService),
		partner:      partner.NewHandler(partnerService, cfg.PageSize),
		messaging:    messaging.NewHandler(messagingService, cfg.PageSize),
		ws:           messaging.NewWSHandler(hub, j, messagingService, cfg.CORSOrigins),
		payment:      payment.NewHandler(paymentService, cfg.PageSize),
		training:     training.NewHandler(trainingService, cfg.PageSize),
		offer:        offer.NewHandler(offerService, cfg.PageSize),
	}
}

func allModels() []any {
	var models []any
	models = append(models, account.Models()...)
	models = append(models, catalog.Models()...)
	models = append(models, reservation.Models()...)
	models = append(models, notification.Models()...)
	models = append(models, messaging.Models()...)
	models = append(models, partner.Models()...)
	models = append(models, payment.Models()...)
	models = append(models, training.Models()...)
	models = append(models, offer.Models()...)
	return models
}
