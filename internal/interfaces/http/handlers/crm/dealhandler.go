package crm

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appcrm "github.com/kesher-io/kesher/internal/application/crm"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type DealHandler struct {
	service dealService
	logger  logger.Interface
}

func NewDealHandler(service dealService, logger logger.Interface) *DealHandler {
	return &DealHandler{service: service, logger: logger}
}

type DealRequest struct {
	ContactID         uint   `json:"contact_id" binding:"required"`
	LeadID            *uint  `json:"lead_id"`
	ProductID         *uint  `json:"product_id"`
	Title             string `json:"title" binding:"required,max=200"`
	Amount            string `json:"amount" binding:"required"`
	Discount          string `json:"discount"`
	Currency          string `json:"currency" binding:"omitempty,len=3"`
	ExpectedCloseDate string `json:"expected_close_date"`
	Notes             string `json:"notes" binding:"max=5000"`
}

func (r DealRequest) toCommand() (appcrm.DealCommand, error) {
	var expected *time.Time
	if r.ExpectedCloseDate != "" {
		t, err := biztime.ParseDate(r.ExpectedCloseDate)
		if err != nil {
			return appcrm.DealCommand{}, apperrors.NewValidationError("expected_close_date must be YYYY-MM-DD", r.ExpectedCloseDate)
		}
		expected = &t
	}
	return appcrm.DealCommand{
		ContactID:         r.ContactID,
		LeadID:            r.LeadID,
		ProductID:         r.ProductID,
		Title:             r.Title,
		Amount:            r.Amount,
		Discount:          r.Discount,
		Currency:          r.Currency,
		ExpectedCloseDate: expected,
		Notes:             r.Notes,
	}, nil
}

// List godoc
// @Summary List deals
// @Security Bearer
// @Tags deals
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/deals [get]
func (h *DealHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), appcrm.ListDealsQuery{
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
// @Summary Create deal
// @Security Bearer
// @Tags deals
// @Accept json
// @Produce json
// @Param request body crm.DealRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/deals [post]
func (h *DealHandler) Create(c *gin.Context) {
	var req DealRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create deal", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	cmd, err := req.toCommand()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Deal created successfully")
}

// Get godoc
// @Summary Get deal
// @Security Bearer
// @Tags deals
// @Produce json
// @Param id path int true "deal ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/deals/{id} [get]
func (h *DealHandler) Get(c *gin.Context) {
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

// Update godoc
// @Summary Update deal
// @Security Bearer
// @Tags deals
// @Accept json
// @Produce json
// @Param id path int true "deal ID"
// @Param request body crm.DealRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/deals/{id} [put]
func (h *DealHandler) Update(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req DealRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	cmd, err := req.toCommand()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Deal updated successfully", result)
}

// ChangeStatus godoc
// @Summary Change deal status
// @Security Bearer
// @Tags deals
// @Accept json
// @Produce json
// @Param id path int true "deal ID"
// @Param request body crm.StatusRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/deals/{id}/status [patch]
func (h *DealHandler) ChangeStatus(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req StatusRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Deal status updated", result)
}

// Delete godoc
// @Summary Delete deal
// @Security Bearer
// @Tags deals
// @Produce json
// @Param id path int true "deal ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/deals/{id} [delete]
func (h *DealHandler) Delete(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
