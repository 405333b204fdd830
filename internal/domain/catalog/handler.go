package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"oloustream/internal/pkg/response"
)

type Handler struct {
	service *CatalogService
}

func NewHandler(service *CatalogService) *Handler {
	return &Handler{service: service}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrStudioNotFound):
		response.Error(c, http.StatusNotFound, "STUDIO_NOT_FOUND", err.Error())
	case errors.Is(err, ErrEquipmentNotFound):
		response.Error(c, http.StatusNotFound, "EQUIPMENT_NOT_FOUND", err.Error())
	case errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "SERVICE_NOT_FOUND", err.Error())
	case errors.Is(err, ErrCategoryNotFound):
		response.Error(c, http.StatusBadRequest, "CATEGORY_NOT_FOUND", err.Error())
	case errors.Is(err, ErrDuplicateCode):
		response.Error(c, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c, err)
	}
}

// GetStudios handles GET /studios?city=&type=&search=
func (h *Handler) GetStudios(c *gin.Context) {
	active := true
	f := StudioFilters{
		City:   c.Query("city"),
		Type:   StudioType(c.Query("type")),
		Search: c.Query("search"),
		Active: &active,
	}
	if c.Query("all") == "true" && c.GetString("role") != "" {
		f.Active = nil
	}

	list, err := h.service.ListStudios(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"studios": list})
}

func (h *Handler) GetStudio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	studio, err := h.service.GetStudio(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) CreateStudio(c *gin.Context) {
	var req StudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	studio, err := h.service.CreateStudio(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, studio)
}

func (h *Handler) UpdateStudio(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req StudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	studio, err := h.service.UpdateStudio(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) GetCategories(c *gin.Context) {
	list, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": list})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cat)
}

// GetEquipment handles GET /equipment?category_id=&status=&rentable=true&search=
func (h *Handler) GetEquipment(c *gin.Context) {
	f := EquipmentFilters{
		Status:   EquipmentStatus(c.Query("status")),
		RentOnly: c.Query("rentable") == "true",
		Search:   c.Query("search"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_FILTER", "category_id must be numeric")
			return
		}
		f.CategoryID = &id
	}
	if f.Status != "" && !f.Status.Valid() {
		response.Error(c, http.StatusBadRequest, "INVALID_FILTER", "unknown equipment status")
		return
	}

	list, err := h.service.ListEquipment(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": list})
}

func (h *Handler) GetEquipmentByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	e, err := h.service.GetEquipment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) CreateEquipment(c *gin.Context) {
	var req EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	e, err := h.service.CreateEquipment(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, e)
}

func (h *Handler) UpdateEquipment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	e, err := h.service.UpdateEquipment(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) GetServices(c *gin.Context) {
	list, err := h.service.ListServices(c.Request.Context(), true)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func (h *Handler) GetServiceByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, svc)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, svc)
}
