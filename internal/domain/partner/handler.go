package partner

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"oloustream/internal/domain/account"
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
	case errors.Is(err, ErrApplicationNotFound), errors.Is(err, ErrPartnerNotFound),
		errors.Is(err, ErrContractNotFound), errors.Is(err, ErrRegionNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotPartner), errors.Is(err, ErrPartnerInactive):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusConflict, "INVALID_STATUS", err.Error())
	case errors.Is(err, ErrDuplicate), errors.Is(err, account.ErrEmailAlreadyExists):
		response.Error(c, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrAmountTooLarge), errors.Is(err, ErrExceedsPending),
		errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrContractMismatch), errors.Is(err, ErrMissingEmail):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c, err)
	}
}

/* ---------- public ---------- */

func (h *Handler) ListRegions(c *gin.Context) {
	list, err := h.service.ListRegions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"regions": list})
}

// Apply handles POST /partners/applications
func (h *Handler) Apply(c *gin.Context) {
	var req ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	app, err := h.service.Apply(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": app.ID, "status": app.Status})
}

/* ---------- partner self-service ---------- */

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

func (h *Handler) MyContracts(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)
	list, total, err := h.service.ListMyContracts(c.Request.Context(), middleware.UserID(c), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

func (h *Handler) SubmitContract(c *gin.Context) {
	var req ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	contract, err := h.service.SubmitContract(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, contract)
}

func (h *Handler) MyPayments(c *gin.Context) {
	list, err := h.service.ListMyPayments(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": list})
}

/* ---------- staff ---------- */

func (h *Handler) CreateRegion(c *gin.Context) {
	var req RegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	reg, err := h.service.CreateRegion(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, reg)
}

func (h *Handler) ListApplications(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)
	list, total, err := h.service.ListApplications(c.Request.Context(), ApplicationStatus(c.Query("status")), p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	act, err := h.service.Approve(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, act)
}

type reviewRequest struct {
	Status ApplicationStatus `json:"status"`
	Notes  string            `json:"notes"`
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.InvalidJSON(c, err)
			return
		}
	}
	app, err := h.service.Reject(c.Request.Context(), id, middleware.UserID(c), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

func (h *Handler) SetApplicationStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	app, err := h.service.SetApplicationStatus(c.Request.Context(), id, middleware.UserID(c), req.Status, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

func (h *Handler) PendingContracts(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)
	status := ContractStatus(c.DefaultQuery("status", string(ContractPending)))
	var partnerID int64
	if raw := c.Query("partner_id"); raw != "" {
		partnerID, _ = strconv.ParseInt(raw, 10, 64)
	}
	list, total, err := h.service.ListContracts(c.Request.Context(), partnerID, status, p.Page, p.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Paged(c, list, total, p.Page, p.PageSize)
}

func (h *Handler) ValidateContract(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	contract, err := h.service.ValidateContract(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, contract)
}

func (h *Handler) RejectContract(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	contract, err := h.service.RejectContract(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, contract)
}

func (h *Handler) AdvanceContract(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status ContractStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	contract, err := h.service.AdvanceContract(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, contract)
}

func (h *Handler) PayCommission(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidJSON(c, err)
		return
	}
	pay, err := h.service.PayCommission(c.Request.Context(), id, middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, pay)
}

func (h *Handler) ListPayments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.service.ListPayments(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": list})
}

func (h *Handler) Performance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	perf, err := h.service.Performance(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, perf)
}

func (h *Handler) TopPartners(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	list, err := h.service.TopPartners(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"partners": list})
}
