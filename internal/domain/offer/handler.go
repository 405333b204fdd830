package offer

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
	case errors.Is(err, ErrOfferNotFound), errors.Is(err, ErrJobNotFound), errors.Is(err, ErrApplicationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrAlreadyApplied), errors.Is(err, ErrDuplicateSlug):
		response.Error(c, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, ErrOfferClosed):
		response.Error(c, http.StatusConflict, "OFFER_CLOSED", err.Error())
	case errors.Is(err, ErrServiceNotFound), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c, err)
	}
}

func (h *Handler) ListOffers(c *gin.Context) {
	list, err := h.service.ListOffers(c.Request.Context(), true)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// ApplyOffer handles POST /offers/:id/apply
func (h *Handler) ApplyOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ApplyOfferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.InvalidJSON(c, err)
			return
		}
	}
	a, err := h.service.ApplyOffer(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

func (h *Handler) MyOfferApplications(c *gin.Context) {
	list, err := h.service.MyOfferApplications(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// ListJobs handles GET /jobs?type=
func (h *Handler) ListJobs(c *gin.Context) {
	list, err := h.service.ListJobs(c.Request.Context(), true, "", JobType(c.Query("type")))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) GetJob(c *gin.Context) {
	j, err := h.service.GetJobBySlug(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, j)
}

// ApplyJob handles POST /jobs/:slug/apply
func (h *Handler) ApplyJob(c *gin.Context) {
	var req ApplyJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	a, err := h.service.ApplyJob(c.Request.Context(), middleware.UserID(c), c.Param("slug"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

func (h *Handler) MyJobApplications(c *gin.Context) {
	list, err := h.service.MyJobApplications(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

/* ---------- staff ---------- */

func (h *Handler) AdminListOffers(c *gin.Context) {
	list, err := h.service.ListOffers(c.Request.Context(), false)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) CreateOffer(c *gin.Context) {
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	o, err := h.service.CreateOffer(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, o)
}

// OfferApplications handles GET /admin/offers/:id/applications?status=
func (h *Handler) OfferApplications(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p := pagination.FromQuery(c, h.pageSize)
	list, total, err := h.service.OfferApplications(c.Request.Context(), id, ApplicationStatus(c.Query("status")), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

func (h *Handler) DecideOfferApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	a, err := h.service.DecideOfferApplication(c.Request.Context(), id, middleware.UserID(c), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// AdminListJobs handles GET /admin/jobs?status=&type=
func (h *Handler) AdminListJobs(c *gin.Context) {
	list, err := h.service.ListJobs(c.Request.Context(), false, JobStatus(c.Query("status")), JobType(c.Query("type")))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) CreateJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	j, err := h.service.CreateJob(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, j)
}

type jobStatusRequest struct {
	Status JobStatus `json:"status" binding:"required"`
}

func (h *Handler) SetJobStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req jobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	j, err := h.service.SetJobStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, j)
}

func (h *Handler) JobApplications(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p := pagination.FromQuery(c, h.pageSize)
	list, total, err := h.service.JobApplications(c.Request.Context(), id, ApplicationStatus(c.Query("status")), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

// DecideJobApplication handles PATCH /admin/job-applications/:id
func (h *Handler) DecideJobApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	a, err := h.service.DecideJobApplication(c.Request.Context(), id, middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}
