package payment

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	payments := protected.Group("/payments")
	{
		payments.POST("", handler.Create)
		payments.GET("/mine", handler.ListMine)
	}
}

func RegisterAdminRoutes(admin *gin.RouterGroup, handler *Handler) {
	payments := admin.Group("/payments")
	{
		payments.GET("", handler.AdminList)
		payments.PATCH("/:id/status", handler.UpdateStatus)
	}
}
