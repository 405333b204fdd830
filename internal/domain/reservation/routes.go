package reservation

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.POST("/reservations", handler.Create)
	protected.GET("/reservations/mine", handler.ListMine)
	protected.GET("/reservations/mine/:id", handler.GetMine)
	protected.POST("/studios/:id/reservations", handler.CreateForStudio)
	protected.POST("/equipment/:id/reservations", handler.CreateForEquipment)
}

func RegisterAdminRoutes(admin *gin.RouterGroup, handler *Handler) {
	reservations := admin.Group("/reservations")
	{
		reservations.GET("", handler.AdminList)
		reservations.GET("/:id", handler.AdminDetail)
		reservations.PATCH("/:id", handler.AdminUpdate)
		reservations.POST("/:id/cancel", handler.QuickCancel)
	}
}
