package training

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

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTrainingNotFound), errors.Is(err, ErrEnrollmentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrAlreadyEnrolled), errors.Is(err, ErrDuplicateSlug):
		response.Error(c, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, ErrTrainingFull):
		response.Error(c, http.StatusConflict, "TRAINING_FULL", err.Error())
	case errors.Is(err, ErrCategoryNotFound), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c, err)
	}
}

// List handles GET /trainings?category_id=
func (h *Handler) List(c *gin.Context) {
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)
	list, err := h.service.ListTrainings(c.Request.Context(), true, categoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.service.GetTraining(c.Request.Context(), id, false)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Categories(c *gin.Context) {
	list, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Enroll handles POST /trainings/:id/enroll
func (h *Handler) Enroll(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.service.Enroll(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, e)
}

func (h *Handler) MyEnrollments(c *gin.Context) {
	list, err := h.service.MyEnrollments(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

/* ---------- staff ---------- */

func (h *Handler) AdminList(c *gin.Context) {
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)
	list, err := h.service.ListTrainings(c.Request.Context(), false, categoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cat)
}

func (h *Handler) Create(c *gin.Context) {
	var req TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	t, err := h.service.CreateTraining(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	t, err := h.service.UpdateTraining(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

// Enrollments handles GET /admin/trainings/:id/enrollments?status=
func (h *Handler) Enrollments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p := pagination.FromQuery(c, h.pageSize)
	list, total, err := h.service.Enrollments(c.Request.Context(), id, EnrollmentStatus(c.Query("status")), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

// Decide handles PATCH /admin/training-enrollments/:id
func (h *Handler) Decide(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	e, err := h.service.Decide(c.Request.Context(), id, middleware.UserID(c), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}
