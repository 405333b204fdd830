package catalog

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	studios := r.Group("/studios")
	{
		studios.GET("", handler.GetStudios)
		studios.GET("/:id", handler.GetStudio)
	}

	equipment := r.Group("/equipment")
	{
		equipment.GET("", handler.GetEquipment)
		equipment.GET("/:id", handler.GetEquipmentByID)
	}

	r.GET("/equipment-categories", handler.GetCategories)

	services := r.Group("/services")
	{
		services.GET("", handler.GetServices)
		services.GET("/:id", handler.GetServiceByID)
	}
}

// RegisterAdminRoutes expects r to be guarded by staff middleware.
func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	r.POST("/studios", handler.CreateStudio)
	r.PUT("/studios/:id", handler.UpdateStudio)
	r.POST("/equipment", handler.CreateEquipment)
	r.PUT("/equipment/:id", handler.UpdateEquipment)
	r.POST("/equipment-categories", handler.CreateCategory)
	r.POST("/services", handler.CreateService)
}
