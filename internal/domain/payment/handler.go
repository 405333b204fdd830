package payment

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

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrReservationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrDuplicateReference), errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c, err)
	}
}

// Create handles POST /payments
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// ListMine handles GET /payments/mine
func (h *Handler) ListMine(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)
	list, total, err := h.service.ListMine(c.Request.Context(), middleware.UserID(c), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

// AdminList handles GET /admin/payments?status=&user_id=&reservation_id=
func (h *Handler) AdminList(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)
	f := Filters{Status: Status(c.Query("status"))}
	f.UserID, _ = strconv.ParseInt(c.Query("user_id"), 10, 64)
	f.ReservationID, _ = strconv.ParseInt(c.Query("reservation_id"), 10, 64)

	list, total, err := h.service.List(c.Request.Context(), f, p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

// UpdateStatus handles PATCH /admin/payments/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	p, err := h.service.UpdateStatus(c.Request.Context(), id, middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}
