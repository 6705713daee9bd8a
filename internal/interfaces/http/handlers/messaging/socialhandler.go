package messaging

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appmessaging "github.com/kesher-io/kesher/internal/application/messaging"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type SocialHandler struct {
	service socialService
	logger  logger.Interface
}

func NewSocialHandler(service socialService, logger logger.Interface) *SocialHandler {
	return &SocialHandler{service: service, logger: logger}
}

type InboundRequest struct {
	Platform     string     `json:"platform" binding:"required,oneof=facebook instagram whatsapp"`
	ExternalID   string     `json:"external_id" binding:"max=255"`
	SenderHandle string     `json:"sender_handle" binding:"required,max=255"`
	Content      string     `json:"content" binding:"required"`
	ReceivedAt   *time.Time `json:"received_at"`
}

type ReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

type LinkContactRequest struct {
	ContactID uint `json:"contact_id" binding:"required"`
}

type SocialStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=unread read replied archived"`
}

// List godoc
// @Summary List social messages
// @Security Bearer
// @Tags social-messages
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/social-messages [get]
func (h *SocialHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), appmessaging.ListSocialQuery{
		Platform:  c.Query("platform"),
		Status:    c.Query("status"),
		Direction: c.Query("direction"),
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

// CreateInbound godoc
// @Summary Record inbound social message
// @Security Bearer
// @Tags social-messages
// @Accept json
// @Produce json
// @Param request body messaging.InboundRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/social-messages [post]
func (h *SocialHandler) CreateInbound(c *gin.Context) {
	var req InboundRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	cmd := appmessaging.InboundCommand{
		Platform:     req.Platform,
		ExternalID:   req.ExternalID,
		SenderHandle: req.SenderHandle,
		Content:      req.Content,
	}
	if req.ReceivedAt != nil {
		cmd.ReceivedAt = req.ReceivedAt.UTC()
	}
	result, err := h.service.CreateInbound(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Message recorded")
}

// Get godoc
// @Summary Get social message
// @Security Bearer
// @Tags social-messages
// @Produce json
// @Param id path int true "social message ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/social-messages/{id} [get]
func (h *SocialHandler) Get(c *gin.Context) {
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

// ChangeStatus godoc
// @Summary Change social message status
// @Security Bearer
// @Tags social-messages
// @Accept json
// @Produce json
// @Param id path int true "social message ID"
// @Param request body messaging.SocialStatusRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/social-messages/{id}/status [patch]
func (h *SocialHandler) ChangeStatus(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req SocialStatusRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Reply godoc
// @Summary Reply to social message
// @Security Bearer
// @Tags social-messages
// @Accept json
// @Produce json
// @Param id path int true "social message ID"
// @Param request body messaging.ReplyRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/social-messages/{id}/reply [post]
func (h *SocialHandler) Reply(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req ReplyRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Reply(c.Request.Context(), id, req.Content)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Reply recorded")
}

// LinkContact godoc
// @Summary Link social message to contact
// @Security Bearer
// @Tags social-messages
// @Accept json
// @Produce json
// @Param id path int true "social message ID"
// @Param request body messaging.LinkContactRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/social-messages/{id}/contact [put]
func (h *SocialHandler) LinkContact(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req LinkContactRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.LinkContact(c.Request.Context(), id, req.ContactID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Contact linked", result)
}
