package training

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/trainings", handler.List)
	r.GET("/trainings/:id", handler.Get)
	r.GET("/training-categories", handler.Categories)
}

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.POST("/trainings/:id/enroll", handler.Enroll)
	protected.GET("/training-enrollments/mine", handler.MyEnrollments)
}

func RegisterAdminRoutes(admin *gin.RouterGroup, handler *Handler) {
	admin.GET("/trainings", handler.AdminList)
	admin.POST("/trainings", handler.Create)
	admin.PUT("/trainings/:id", handler.Update)
	admin.GET("/trainings/:id/enrollments", handler.Enrollments)
	admin.POST("/training-categories", handler.CreateCategory)
	admin.PATCH("/training-enrollments/:id", handler.Decide)
}
