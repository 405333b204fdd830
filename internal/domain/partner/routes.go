package partner

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/partners/regions", handler.ListRegions)
	r.POST("/partners/applications", handler.Apply)
}

// RegisterPartnerRoutes exposes the self-service area of an authenticated
// partner.
func RegisterPartnerRoutes(protected *gin.RouterGroup, handler *Handler) {
	me := protected.Group("/partner")
	{
		me.GET("/dashboard", handler.Dashboard)
		me.GET("/contracts", handler.MyContracts)
		me.POST("/contracts", handler.SubmitContract)
		me.GET("/payments", handler.MyPayments)
	}
}

func RegisterAdminRoutes(admin *gin.RouterGroup, handler *Handler) {
	partners := admin.Group("/partners")
	{
		partners.POST("/regions", handler.CreateRegion)

		partners.GET("/applications", handler.ListApplications)
		partners.POST("/applications/:id/approve", handler.Approve)
		partners.POST("/applications/:id/reject", handler.Reject)
		partners.PATCH("/applications/:id/status", handler.SetApplicationStatus)

		partners.GET("/contracts", handler.PendingContracts)
		partners.POST("/contracts/:id/validate", handler.ValidateContract)
		partners.POST("/contracts/:id/reject", handler.RejectContract)
		partners.PATCH("/contracts/:id/status", handler.AdvanceContract)

		partners.GET("/top", handler.TopPartners)
		partners.GET("/:id/performance", handler.Performance)
		partners.GET("/:id/payments", handler.ListPayments)
		partners.POST("/:id/payments", handler.PayCommission)
	}
}
