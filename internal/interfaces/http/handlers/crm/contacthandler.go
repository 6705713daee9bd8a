// Package crm serves the admin contact, lead and deal endpoints.
package crm

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appcrm "github.com/kesher-io/kesher/internal/application/crm"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type ContactHandler struct {
	service contactService
	logger  logger.Interface
}

func NewContactHandler(service contactService, logger logger.Interface) *ContactHandler {
	return &ContactHandler{service: service, logger: logger}
}

type ContactRequest struct {
	FirstName string   `json:"first_name" binding:"required,max=100"`
	LastName  string   `json:"last_name" binding:"max=100"`
	Email     string   `json:"email" binding:"omitempty,email,max=255"`
	Phone     string   `json:"phone" binding:"max=32"`
	Source    string   `json:"source" binding:"max=50"`
	Notes     string   `json:"notes" binding:"max=5000"`
	Tags      []string `json:"tags" binding:"max=20"`
}

func (r ContactRequest) toCommand() appcrm.ContactCommand {
	return appcrm.ContactCommand{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Source:    r.Source,
		Notes:     r.Notes,
		Tags:      r.Tags,
	}
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List godoc
// @Summary List contacts
// @Security Bearer
// @Tags contacts
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), appcrm.ListContactsQuery{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Source:   c.Query("source"),
		Tag:      c.Query("tag"),
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Create godoc
// @Summary Create contact
// @Security Bearer
// @Tags contacts
// @Accept json
// @Produce json
// @Param request body crm.ContactRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var req ContactRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create contact", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Contact created successfully")
}

// Get godoc
// @Summary Get contact
// @Security Bearer
// @Tags contacts
// @Produce json
// @Param id path int true "contact ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/contacts/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
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
// @Summary Update contact
// @Security Bearer
// @Tags contacts
// @Accept json
// @Produce json
// @Param id path int true "contact ID"
// @Param request body crm.ContactRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req ContactRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.Update(c.Request.Context(), id, req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Contact updated successfully", result)
}

// ChangeStatus godoc
// @Summary Change contact status
// @Security Bearer
// @Tags contacts
// @Accept json
// @Produce json
// @Param id path int true "contact ID"
// @Param request body crm.StatusRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/contacts/{id}/status [patch]
func (h *ContactHandler) ChangeStatus(c *gin.Context) {
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
	utils.SuccessResponse(c, http.StatusOK, "Contact status updated", result)
}

// Delete godoc
// @Summary Delete contact
// @Security Bearer
// @Tags contacts
// @Produce json
// @Param id path int true "contact ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
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
