package messaging

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"oloustream/internal/domain/account"
	"oloustream/internal/pkg/jwt"
	"oloustream/internal/pkg/response"
)

const wsOpTimeout = 5 * time.Second

type WSHandler struct {
	hub      *Hub
	jwt      *jwt.Service
	service  *Service
	upgrader websocket.Upgrader
}

// NewWSHandler accepts browser origins listed in origins; an empty list or
// "*" allows any origin.
func NewWSHandler(hub *Hub, jwtService *jwt.Service, service *Service, origins []string) *WSHandler {
	allowed := make(map[string]bool, len(origins))
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return &WSHandler{
		hub:     hub,
		jwt:     jwtService,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket serves GET /ws/chat?token=JWT. Browsers cannot set headers
// on the upgrade request, so the token travels in the query.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	claims, err := h.jwt.ValidateToken(c.Query("token"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed user_id=%d err=%v", claims.UserID, err)
		return
	}

	userID := claims.UserID
	staff := account.Role(claims.Role).IsStaff()
	log.Printf("ws connected user_id=%d staff=%t", userID, staff)
	h.hub.ServeWS(conn, userID, func(msg ClientMessage) *ServerMessage {
		return h.handle(userID, staff, msg)
	})
	log.Printf("ws disconnected user_id=%d", userID)
}

func (h *WSHandler) handle(userID int64, staff bool, msg ClientMessage) *ServerMessage {
	ctx, cancel := context.WithTimeout(context.Background(), wsOpTimeout)
	defer cancel()

	switch msg.Type {
	case "message":
		var err error
		if staff && msg.ConversationID > 0 {
			_, err = h.service.Reply(ctx, msg.ConversationID, userID, msg.Content)
		} else {
			_, err = h.service.SendAsUser(ctx, userID, msg.Content)
		}
		if err != nil {
			return errorMessage("SEND_FAILED", err.Error())
		}
		return nil
	case "read":
		if err := h.service.MarkRead(ctx, msg.ConversationID, userID, staff); err != nil {
			return errorMessage("READ_FAILED", err.Error())
		}
		return nil
	case "ping":
		return pongMessage()
	default:
		return errorMessage("UNKNOWN_TYPE", "unknown message type: "+msg.Type)
	}
}
