package messaging

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"oloustream/internal/middleware"
	"oloustream/internal/pkg/pagination"
	"oloustream/internal/pkg/response"
)

type Handler struct {
	service  *Service
	pageSize int
}

func NewHandler(service *Service, pageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize}
}

type sendRequest struct {
	Content string `json:"content" binding:"required"`
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLong):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c, err)
	}
}

// GetMine handles GET /conversations/mine/messages
func (h *Handler) GetMine(c *gin.Context) {
	thread, err := h.service.Mine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, thread)
}

// SendMine handles POST /conversations/mine/messages
func (h *Handler) SendMine(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	msg, err := h.service.SendAsUser(c.Request.Context(), middleware.UserID(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

func (h *Handler) AdminList(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)
	list, total, err := h.service.ListConversations(c.Request.Context(), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

func (h *Handler) AdminThread(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return
	}
	thread, err := h.service.Thread(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, thread)
}

func (h *Handler) AdminReply(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	msg, err := h.service.Reply(c.Request.Context(), id, middleware.UserID(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}
