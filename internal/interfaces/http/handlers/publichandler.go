package handlers

import (
	"github.com/gin-gonic/gin"

	appcrm "github.com/kesher-io/kesher/internal/application/crm"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

const websiteLeadSource = "website"

// PublicHandler serves the marketing site's contact form.
type PublicHandler struct {
	leads  leadCapturer
	logger logger.Interface
}

func NewPublicHandler(leads leadCapturer, logger logger.Interface) *PublicHandler {
	return &PublicHandler{leads: leads, logger: logger}
}

type LeadFormRequest struct {
	FirstName string `json:"first_name" form:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" form:"last_name" binding:"max=100"`
	Email     string `json:"email" form:"email" binding:"required_without=Phone,omitempty,email,max=255"`
	Phone     string `json:"phone" form:"phone" binding:"required_without=Email,max=32"`
	Message   string `json:"message" form:"message" binding:"max=2000"`
	ProductID *uint  `json:"product_id" form:"product_id"`
}

// CaptureLead handles POST /api/public/leads
func (h *PublicHandler) CaptureLead(c *gin.Context) {
	var req LeadFormRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	lead, err := h.leads.Capture(c.Request.Context(), appcrm.CaptureCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		ProductID: req.ProductID,
		Source:    websiteLeadSource,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("lead captured from website", "lead_id", lead.ID, "contact_id", lead.ContactID)
	utils.CreatedResponse(c, gin.H{"id": lead.ID}, "Thanks, we'll be in touch soon")
}
