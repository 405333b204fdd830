package account

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
	}
}

func RegisterProtectedRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/auth/me", handler.GetMe)
}

func RegisterAdminRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	{
		employees.GET("", handler.ListEmployees)
		employees.PUT("/:id", handler.UpsertEmployee)
	}
}
