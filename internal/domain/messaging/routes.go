package messaging

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	mine := protected.Group("/conversations/mine")
	{
		mine.GET("/messages", handler.GetMine)
		mine.POST("/messages", handler.SendMine)
	}
}

func RegisterAdminRoutes(admin *gin.RouterGroup, handler *Handler) {
	conv := admin.Group("/conversations")
	{
		conv.GET("", handler.AdminList)
		conv.GET("/:id/messages", handler.AdminThread)
		conv.POST("/:id/messages", handler.AdminReply)
	}
}

// RegisterWSRoutes mounts the websocket endpoint outside the JWT header
// middleware; it authenticates with ?token=.
func RegisterWSRoutes(r gin.IRoutes, handler *WSHandler) {
	r.GET("/ws/chat", handler.HandleWebSocket)
}
