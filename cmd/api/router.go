package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oloustream/internal/config"
	"oloustream/internal/domain/account"
	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/messaging"
	"oloustream/internal/domain/notification"
	"oloustream/internal/domain/offer"
	"oloustream/internal/domain/partner"
	"oloustream/internal/domain/payment"
	"oloustream/internal/domain/reservation"
	"oloustream/internal/domain/training"
	"oloustream/internal/middleware"
	jwtsvc "oloustream/internal/pkg/jwt"
)

type handlers struct {
	account      *account.Handler
	catalog      *catalog.Handler
	reservation  *reservation.Handler
	notification *notification.Handler
	partner      *partner.Handler
	messaging    *messaging.Handler
	ws           *messaging.WSHandler
	payment      *payment.Handler
	training     *training.Handler
	offer        *offer.Handler
}

func newRouter(cfg *config.Config, j *jwtsvc.Service, h handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	if cfg.MetricsEnabled {
		m := middleware.NewMetrics()
		r.Use(m.Middleware())
		r.GET(cfg.MetricsPath, m.Handler())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	messaging.RegisterWSRoutes(r, h.ws)

	v1 := r.Group("/api/v1")

	// public
	account.RegisterPublicRoutes(v1, h.account)
	catalog.RegisterPublicRoutes(v1, h.catalog)
	partner.RegisterPublicRoutes(v1, h.partner)
	training.RegisterPublicRoutes(v1, h.training)
	offer.RegisterPublicRoutes(v1, h.offer)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(j))
	account.RegisterProtectedRoutes(protected, h.account)
	reservation.RegisterRoutes(protected, h.reservation)
	notification.RegisterRoutes(protected, h.notification)
	messaging.RegisterRoutes(protected, h.messaging)
	payment.RegisterRoutes(protected, h.payment)
	partner.RegisterPartnerRoutes(protected, h.partner)
	training.RegisterRoutes(protected, h.training)
	offer.RegisterRoutes(protected, h.offer)

	admin := v1.Group("/admin")
	admin.Use(middleware.JWTAuth(j), middleware.RequireRole(account.StaffRoles...))
	account.RegisterAdminRoutes(admin, h.account)
	catalog.RegisterAdminRoutes(admin, h.catalog)
	reservation.RegisterAdminRoutes(admin, h.reservation)
	messaging.RegisterAdminRoutes(admin, h.messaging)
	payment.RegisterAdminRoutes(admin, h.payment)
	partner.RegisterAdminRoutes(admin, h.partner)
	training.RegisterAdminRoutes(admin, h.training)
	offer.RegisterAdminRoutes(admin, h.offer)

	return r
}
