package billing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appbilling "github.com/kesher-io/kesher/internal/application/billing"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type RecurringHandler struct {
	service   recurringService
	processUC processRecurringUseCase
	logger    logger.Interface
}

func NewRecurringHandler(service recurringService, processUC processRecurringUseCase, logger logger.Interface) *RecurringHandler {
	return &RecurringHandler{service: service, processUC: processUC, logger: logger}
}

type CreateRecurringRequest struct {
	ContactID   uint   `json:"contact_id" binding:"required"`
	ProductID   *uint  `json:"product_id"`
	Description string `json:"description" binding:"max=500"`
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
	Frequency   string `json:"frequency" binding:"required,oneof=weekly monthly quarterly yearly"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date"`
	MaxCharges  *int   `json:"max_charges" binding:"omitempty,min=1"`
	Gateway     string `json:"gateway"`
	CardToken   string `json:"card_token" binding:"required"`
	CardExpiry  string `json:"card_expiry"`
}

type UpdateCardRequest struct {
	CardToken  string `json:"card_token" binding:"required"`
	CardExpiry string `json:"card_expiry"`
}

type UpdateAmountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// List godoc
// @Summary List recurring payments
// @Security Bearer
// @Tags recurring-payments
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/recurring-payments [get]
func (h *RecurringHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), appbilling.ListRecurringQuery{
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
// @Summary Create recurring payment
// @Security Bearer
// @Tags recurring-payments
// @Accept json
// @Produce json
// @Param request body billing.CreateRecurringRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/recurring-payments [post]
func (h *RecurringHandler) Create(c *gin.Context) {
	var req CreateRecurringRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create recurring payment", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), appbilling.CreateRecurringCommand{
		ContactID:   req.ContactID,
		ProductID:   req.ProductID,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Frequency:   req.Frequency,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MaxCharges:  req.MaxCharges,
		Gateway:     req.Gateway,
		CardToken:   req.CardToken,
		CardExpiry:  req.CardExpiry,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Recurring payment created successfully")
}

// Get godoc
// @Summary Get recurring payment
// @Security Bearer
// @Tags recurring-payments
// @Produce json
// @Param id path int true "recurring payment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/recurring-payments/{id} [get]
func (h *RecurringHandler) Get(c *gin.Context) {
	h.byID(c, "", h.service.Get)
}

// Pause godoc
// @Summary Pause recurring payment
// @Security Bearer
// @Tags recurring-payments
// @Produce json
// @Param id path int true "recurring payment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/recurring-payments/{id}/pause [post]
func (h *RecurringHandler) Pause(c *gin.Context) {
	h.byID(c, "Recurring payment paused", h.service.Pause)
}

// Resume godoc
// @Summary Resume recurring payment
// @Security Bearer
// @Tags recurring-payments
// @Produce json
// @Param id path int true "recurring payment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/recurring-payments/{id}/resume [post]
func (h *RecurringHandler) Resume(c *gin.Context) {
	h.byID(c, "Recurring payment resumed", h.service.Resume)
}

// Cancel godoc
// @Summary Cancel recurring payment
// @Security Bearer
// @Tags recurring-payments
// @Produce json
// @Param id path int true "recurring payment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/recurring-payments/{id}/cancel [post]
func (h *RecurringHandler) Cancel(c *gin.Context) {
	h.byID(c, "Recurring payment cancelled", h.service.Cancel)
}

func (h *RecurringHandler) byID(c *gin.Context, message string, fn func(ctx context.Context, id uint) (*appbilling.RecurringPaymentDTO, error)) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := fn(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, result)
}

// UpdateCard godoc
// @Summary Replace stored card
// @Security Bearer
// @Tags recurring-payments
// @Accept json
// @Produce json
// @Param id path int true "recurring payment ID"
// @Param request body billing.UpdateCardRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/recurring-payments/{id}/card [put]
func (h *RecurringHandler) UpdateCard(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req UpdateCardRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.UpdateCard(c.Request.Context(), id, req.CardToken, req.CardExpiry)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Card updated", result)
}

// UpdateAmount godoc
// @Summary Change recurring amount
// @Security Bearer
// @Tags recurring-payments
// @Accept json
// @Produce json
// @Param id path int true "recurring payment ID"
// @Param request body billing.UpdateAmountRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/recurring-payments/{id}/amount [put]
func (h *RecurringHandler) UpdateAmount(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req UpdateAmountRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.UpdateAmount(c.Request.Context(), id, req.Amount)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Amount updated", result)
}

// RunDue godoc
// @Summary Charge due recurring payments
// @Security Bearer
// @Tags recurring-payments
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/recurring-payments/run [post]
func (h *RecurringHandler) RunDue(c *gin.Context) {
	result, err := h.processUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.logger.Infow("recurring billing run triggered by admin",
		"charged", result.Charged,
		"failed", result.Failed,
		"exhausted", result.Exhausted,
		"skipped", result.Skipped,
		"busy", result.Busy,
	)
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"charged":   result.Charged,
		"failed":    result.Failed,
		"exhausted": result.Exhausted,
		"skipped":   result.Skipped,
		"busy":      result.Busy,
	})
}
