// Package messaging serves message templates, email sequences and the social inbox.
package messaging

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appmessaging "github.com/kesher-io/kesher/internal/application/messaging"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type TemplateHandler struct {
	service templateService
	logger  logger.Interface
}

func NewTemplateHandler(service templateService, logger logger.Interface) *TemplateHandler {
	return &TemplateHandler{service: service, logger: logger}
}

type TemplateRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Channel string `json:"channel" binding:"required,oneof=email sms whatsapp"`
	Subject string `json:"subject" binding:"max=255"`
	Body    string `json:"body" binding:"required"`
}

func (r TemplateRequest) toCommand() appmessaging.TemplateCommand {
	return appmessaging.TemplateCommand{
		Name:    r.Name,
		Channel: r.Channel,
		Subject: r.Subject,
		Body:    r.Body,
	}
}

type PreviewRequest struct {
	Vars map[string]string `json:"vars"`
}

// List godoc
// @Summary List message templates
// @Security Bearer
// @Tags templates
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), c.Query("channel"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Create godoc
// @Summary Create message template
// @Security Bearer
// @Tags templates
// @Accept json
// @Produce json
// @Param request body messaging.TemplateRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req TemplateRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create template", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Create(c.Request.Context(), req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Template created successfully")
}

// Get godoc
// @Summary Get message template
// @Security Bearer
// @Tags templates
// @Produce json
// @Param id path int true "template ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
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
// @Summary Update message template
// @Security Bearer
// @Tags templates
// @Accept json
// @Produce json
// @Param id path int true "template ID"
// @Param request body messaging.TemplateRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/templates/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req TemplateRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Template updated successfully", result)
}

// Delete godoc
// @Summary Delete message template
// @Security Bearer
// @Tags templates
// @Produce json
// @Param id path int true "template ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
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

// Preview godoc
// @Summary Render template preview
// @Security Bearer
// @Tags templates
// @Accept json
// @Produce json
// @Param id path int true "template ID"
// @Param request body messaging.PreviewRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/templates/{id}/preview [post]
func (h *TemplateHandler) Preview(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req PreviewRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindJSON(c, &req); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
	}
	result, err := h.service.Preview(c.Request.Context(), id, req.Vars)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
