package messaging

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appmessaging "github.com/kesher-io/kesher/internal/application/messaging"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type SequenceHandler struct {
	service   sequenceService
	processUC processSequencesUseCase
	logger    logger.Interface
}

func NewSequenceHandler(service sequenceService, processUC processSequencesUseCase, logger logger.Interface) *SequenceHandler {
	return &SequenceHandler{service: service, processUC: processUC, logger: logger}
}

type SequenceStepRequest struct {
	DelayHours   int    `json:"delay_hours" binding:"min=0"`
	TemplateName string `json:"template_name" binding:"required"`
}

type SequenceRequest struct {
	Name        string                `json:"name" binding:"required,max=100"`
	Description string                `json:"description" binding:"max=500"`
	Trigger     string                `json:"trigger" binding:"required,oneof=manual lead_created payment_completed"`
	Steps       []SequenceStepRequest `json:"steps" binding:"required,min=1,dive"`
}

func (r SequenceRequest) toCommand() appmessaging.SequenceCommand {
	steps := make([]messaging.SequenceStep, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, messaging.SequenceStep{DelayHours: s.DelayHours, TemplateName: s.TemplateName})
	}
	return appmessaging.SequenceCommand{
		Name:        r.Name,
		Description: r.Description,
		Trigger:     r.Trigger,
		Steps:       steps,
	}
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type EnrollRequest struct {
	ContactID uint `json:"contact_id" binding:"required"`
}

// List godoc
// @Summary List sequences
// @Security Bearer
// @Tags sequences
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/sequences [get]
func (h *SequenceHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Create godoc
// @Summary Create sequence
// @Security Bearer
// @Tags sequences
// @Accept json
// @Produce json
// @Param request body messaging.SequenceRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/sequences [post]
func (h *SequenceHandler) Create(c *gin.Context) {
	var req SequenceRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create sequence", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Create(c.Request.Context(), req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Sequence created successfully")
}

// Get godoc
// @Summary Get sequence
// @Security Bearer
// @Tags sequences
// @Produce json
// @Param id path int true "sequence ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/sequences/{id} [get]
func (h *SequenceHandler) Get(c *gin.Context) {
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
// @Summary Update sequence
// @Security Bearer
// @Tags sequences
// @Accept json
// @Produce json
// @Param id path int true "sequence ID"
// @Param request body messaging.SequenceRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/sequences/{id} [put]
func (h *SequenceHandler) Update(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req SequenceRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Sequence updated successfully", result)
}

// SetActive godoc
// @Summary Activate or deactivate sequence
// @Security Bearer
// @Tags sequences
// @Accept json
// @Produce json
// @Param id path int true "sequence ID"
// @Param request body messaging.SetActiveRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/sequences/{id}/active [patch]
func (h *SequenceHandler) SetActive(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req SetActiveRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Delete godoc
// @Summary Delete sequence
// @Security Bearer
// @Tags sequences
// @Produce json
// @Param id path int true "sequence ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/sequences/{id} [delete]
func (h *SequenceHandler) Delete(c *gin.Context) {
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

// Enroll godoc
// @Summary Enroll contact in sequence
// @Security Bearer
// @Tags sequences
// @Accept json
// @Produce json
// @Param id path int true "sequence ID"
// @Param request body messaging.EnrollRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/sequences/{id}/enrollments [post]
func (h *SequenceHandler) Enroll(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req EnrollRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Enroll(c.Request.Context(), id, req.ContactID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Contact enrolled")
}

// ListEnrollments godoc
// @Summary List enrollments
// @Security Bearer
// @Tags sequences
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/enrollments [get]
func (h *SequenceHandler) ListEnrollments(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.ListEnrollments(c.Request.Context(), appmessaging.ListEnrollmentsQuery{
		SequenceID: common.QueryUint(c, "sequence_id"),
		ContactID:  common.QueryUint(c, "contact_id"),
		Status:     c.Query("status"),
		Page:       p.Page,
		PageSize:   p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Unenroll godoc
// @Summary Cancel enrollment
// @Security Bearer
// @Tags sequences
// @Produce json
// @Param id path int true "enrollment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/enrollments/{id}/cancel [post]
func (h *SequenceHandler) Unenroll(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Unenroll(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Enrollment cancelled", result)
}

// RunDue godoc
// @Summary Send due sequence steps
// @Security Bearer
// @Tags sequences
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/sequences/run [post]
func (h *SequenceHandler) RunDue(c *gin.Context) {
	result, err := h.processUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"sent":      result.Sent,
		"failed":    result.Failed,
		"cancelled": result.Cancelled,
	})
}
