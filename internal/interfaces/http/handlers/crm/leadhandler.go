package crm

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appcrm "github.com/kesher-io/kesher/internal/application/crm"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type LeadHandler struct {
	service leadService
	logger  logger.Interface
}

func NewLeadHandler(service leadService, logger logger.Interface) *LeadHandler {
	return &LeadHandler{service: service, logger: logger}
}

type LeadRequest struct {
	ContactID      uint   `json:"contact_id" binding:"required"`
	Source         string `json:"source" binding:"max=50"`
	ProductID      *uint  `json:"product_id"`
	EstimatedValue string `json:"estimated_value"`
	Notes          string `json:"notes" binding:"max=5000"`
}

func (r LeadRequest) toCommand() appcrm.LeadCommand {
	return appcrm.LeadCommand{
		ContactID:      r.ContactID,
		Source:         r.Source,
		ProductID:      r.ProductID,
		EstimatedValue: r.EstimatedValue,
		Notes:          r.Notes,
	}
}

type MoveStageRequest struct {
	Stage  string `json:"stage" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

// List godoc
// @Summary List leads
// @Security Bearer
// @Tags leads
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), appcrm.ListLeadsQuery{
		Stage:     c.Query("stage"),
		ContactID: common.QueryUint(c, "contact_id"),
		Source:    c.Query("source"),
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
// @Summary Create lead
// @Security Bearer
// @Tags leads
// @Accept json
// @Produce json
// @Param request body crm.LeadRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req LeadRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create lead", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Lead created successfully")
}

// Get godoc
// @Summary Get lead
// @Security Bearer
// @Tags leads
// @Produce json
// @Param id path int true "lead ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/leads/{id} [get]
func (h *LeadHandler) Get(c *gin.Context) {
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
// @Summary Update lead
// @Security Bearer
// @Tags leads
// @Accept json
// @Produce json
// @Param id path int true "lead ID"
// @Param request body crm.LeadRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req LeadRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Lead updated successfully", result)
}

// MoveStage godoc
// @Summary Move lead to another stage
// @Security Bearer
// @Tags leads
// @Accept json
// @Produce json
// @Param id path int true "lead ID"
// @Param request body crm.MoveStageRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/leads/{id}/stage [patch]
func (h *LeadHandler) MoveStage(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req MoveStageRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.MoveStage(c.Request.Context(), id, req.Stage, req.Reason)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Lead stage updated", result)
}

// Delete godoc
// @Summary Delete lead
// @Security Bearer
// @Tags leads
// @Produce json
// @Param id path int true "lead ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
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
