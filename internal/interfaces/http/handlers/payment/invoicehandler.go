package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/application/invoice"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type InvoiceHandler struct {
	service invoiceService
	logger  logger.Interface
}

func NewInvoiceHandler(service invoiceService, logger logger.Interface) *InvoiceHandler {
	return &InvoiceHandler{service: service, logger: logger}
}

// List godoc
// @Summary List invoices
// @Security Bearer
// @Tags invoices
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), invoice.ListQuery{
		Status:    c.Query("status"),
		ContactID: common.QueryUint(c, "contact_id"),
		Year:      common.QueryInt(c, "year"),
		Page:      p.Page,
		PageSize:  p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @Summary Get invoice
// @Security Bearer
// @Tags invoices
// @Produce json
// @Param id path int true "invoice ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
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

// Generate godoc
// @Summary Issue invoice for payment
// @Security Bearer
// @Tags invoices
// @Produce json
// @Param id path int true "payment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/payments/{id}/invoice [post]
func (h *InvoiceHandler) Generate(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.GenerateForPayment(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Invoice issued", result)
}

// Cancel godoc
// @Summary Cancel invoice
// @Security Bearer
// @Tags invoices
// @Produce json
// @Param id path int true "invoice ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
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
	utils.SuccessResponse(c, http.StatusOK, "Invoice cancelled", result)
}

// Send godoc
// @Summary Email invoice to contact
// @Security Bearer
// @Tags invoices
// @Produce json
// @Param id path int true "invoice ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.service.Send(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Invoice sent", nil)
}
