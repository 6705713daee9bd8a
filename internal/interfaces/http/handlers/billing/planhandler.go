// Package billing serves installment plans, recurring payments and payment reminders.
package billing

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appbilling "github.com/kesher-io/kesher/internal/application/billing"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

const (
	defaultDueSoonDays = 7
	maxDueSoonDays     = 90
)

type PlanHandler struct {
	service planService
	logger  logger.Interface
}

func NewPlanHandler(service planService, logger logger.Interface) *PlanHandler {
	return &PlanHandler{service: service, logger: logger}
}

type CreatePlanRequest struct {
	ContactID        uint   `json:"contact_id" binding:"required"`
	DealID           *uint  `json:"deal_id"`
	Description      string `json:"description" binding:"max=500"`
	Total            string `json:"total" binding:"required"`
	Currency         string `json:"currency" binding:"omitempty,len=3"`
	InstallmentCount int    `json:"installment_count" binding:"required,min=2,max=36"`
	Frequency        string `json:"frequency" binding:"required,oneof=weekly monthly"`
	StartDate        string `json:"start_date" binding:"required"`
}

// List godoc
// @Summary List payment plans
// @Security Bearer
// @Tags payment-plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/payment-plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), appbilling.ListPlansQuery{
		Status:    c.Query("status"),
		ContactID: common.QueryUint(c, "contact_id"),
		Page:      p.Page,
		PageSize:  p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Create godoc
// @Summary Create payment plan
// @Security Bearer
// @Tags payment-plans
// @Accept json
// @Produce json
// @Param request body billing.CreatePlanRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/payment-plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	var req CreatePlanRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create payment plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), appbilling.CreatePlanCommand{
		ContactID:        req.ContactID,
		DealID:           req.DealID,
		Description:      req.Description,
		Total:            req.Total,
		Currency:         req.Currency,
		InstallmentCount: req.InstallmentCount,
		Frequency:        req.Frequency,
		StartDate:        req.StartDate,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Payment plan created successfully")
}

// Get godoc
// @Summary Get payment plan
// @Security Bearer
// @Tags payment-plans
// @Produce json
// @Param id path int true "payment plan ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/payment-plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Cancel godoc
// @Summary Cancel payment plan
// @Security Bearer
// @Tags payment-plans
// @Produce json
// @Param id path int true "payment plan ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/payment-plans/{id}/cancel [post]
func (h *PlanHandler) Cancel(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Payment plan cancelled", result)
}

// DueSoon godoc
// @Summary List installments due soon
// @Security Bearer
// @Tags payment-plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/payment-plans/due [get]
func (h *PlanHandler) DueSoon(c *gin.Context) {
	days := common.QueryInt(c, "days")
	if days <= 0 {
		days = defaultDueSoonDays
	}
	if days > maxDueSoonDays {
		days = maxDueSoonDays
	}

	result, err := h.service.DueSoon(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
