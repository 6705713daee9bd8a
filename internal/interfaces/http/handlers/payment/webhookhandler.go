package payment

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/application/payment/usecases"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

const maxWebhookBodyBytes = 1 << 20

type WebhookHandler struct {
	handleUC handleWebhookUseCase
	logger   logger.Interface
}

func NewWebhookHandler(handleUC handleWebhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{handleUC: handleUC, logger: logger}
}

// Handle handles POST /api/webhooks/payments/:gateway
func (h *WebhookHandler) Handle(c *gin.Context) {
	gateway := c.Param("gateway")
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "gateway", gateway, "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid webhook body")
		return
	}

	result, err := h.handleUC.Execute(c.Request.Context(), usecases.WebhookCommand{
		Gateway: gateway,
		Header:  c.Request.Header.Clone(),
		Body:    body,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("webhook processed",
		"gateway", gateway,
		"reference", result.Reference,
		"status", result.Status,
		"duplicate", result.Duplicate,
	)
	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"duplicate": result.Duplicate,
	})
}
