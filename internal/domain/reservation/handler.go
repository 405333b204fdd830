package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"oloustream/internal/domain/catalog"
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

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		response.Error(c, http.StatusConflict, "SLOT_TAKEN", ErrSlotTaken.Error())
	case errors.Is(err, ErrInvalidTimeRange), errors.Is(err, ErrStartInPast),
		errors.Is(err, ErrNothingReserved), errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrStudioUnavailable), errors.Is(err, ErrEquipmentUnavailable), errors.Is(err, ErrServiceUnavailable):
		response.Error(c, http.StatusConflict, "UNAVAILABLE", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrStudioNotFound),
		errors.Is(err, catalog.ErrEquipmentNotFound), errors.Is(err, catalog.ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		response.Internal(c, err)
	}
}

// Create handles POST /reservations
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	res, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req, OriginGeneric)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// CreateForStudio handles POST /studios/:id/reservations
func (h *Handler) CreateForStudio(c *gin.Context) {
	studioID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	res, err := h.service.CreateForStudio(c.Request.Context(), middleware.UserID(c), studioID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// CreateForEquipment handles POST /equipment/:id/reservations
func (h *Handler) CreateForEquipment(c *gin.Context) {
	equipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	res, err := h.service.CreateForEquipment(c.Request.Context(), middleware.UserID(c), equipmentID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) ListMine(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)
	items, total, err := h.service.ListMine(c.Request.Context(), middleware.UserID(c), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, items, total, p.Page, p.PageSize)
}

func (h *Handler) GetMine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.service.DetailForUser(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// AdminList handles GET /admin/reservations?q=&status=&studio=&service=&date_from=&date_to=
func (h *Handler) AdminList(c *gin.Context) {
	f := AdminFilters{
		Query:  c.Query("q"),
		Status: Status(c.Query("status")),
	}
	var bad bool
	f.StudioID, bad = queryID(c, "studio")
	if bad {
		return
	}
	f.ServiceID, bad = queryID(c, "service")
	if bad {
		return
	}
	if f.DateFrom, bad = queryDate(c, "date_from", 0); bad {
		return
	}
	if f.DateTo, bad = queryDate(c, "date_to", 24*time.Hour); bad {
		return
	}

	p := pagination.FromQuery(c, h.pageSize)
	list, err := h.service.ListForAdmin(c.Request.Context(), f, p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"items":     list.Items,
		"total":     list.Total,
		"page":      p.Page,
		"page_size": p.PageSize,
		"stats":     list.Stats,
	})
}

func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_FILTER", name+" must be a positive integer")
		return 0, true
	}
	return id, false
}

// queryDate accepts YYYY-MM-DD or RFC 3339. shift is added to plain dates so
// date_to includes the whole day.
func queryDate(c *gin.Context, name string, shift time.Duration) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, false
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		t = t.Add(shift)
		return &t, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FILTER", name+" must be YYYY-MM-DD")
		return nil, true
	}
	t = t.UTC()
	return &t, false
}

func (h *Handler) AdminDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

func (h *Handler) AdminUpdate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	res, err := h.service.UpdateByAdmin(c.Request.Context(), id, middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

type cancelRequest struct {
	Note string `json:"note" binding:"max=500"`
}

func (h *Handler) QuickCancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.InvalidJSON(c, err)
			return
		}
	}
	res, err := h.service.QuickCancel(c.Request.Context(), id, middleware.UserID(c), req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
