// Package payment serves the admin payment and invoice endpoints and the gateway webhooks.
package payment

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/application/payment/usecases"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type PaymentHandler struct {
	createUC createPaymentUseCase
	getUC    getPaymentUseCase
	listUC   listPaymentsUseCase
	refundUC refundPaymentUseCase
	cancelUC cancelPaymentUseCase
	logger   logger.Interface
}

func NewPaymentHandler(
	createUC createPaymentUseCase,
	getUC getPaymentUseCase,
	listUC listPaymentsUseCase,
	refundUC refundPaymentUseCase,
	cancelUC cancelPaymentUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		createUC: createUC,
		getUC:    getUC,
		listUC:   listUC,
		refundUC: refundUC,
		cancelUC: cancelUC,
		logger:   logger,
	}
}

type CreatePaymentRequest struct {
	ContactID          uint   `json:"contact_id" binding:"required"`
	DealID             *uint  `json:"deal_id"`
	InstallmentID      *uint  `json:"installment_id"`
	RecurringPaymentID *uint  `json:"recurring_payment_id"`
	Amount             string `json:"amount"`
	Currency           string `json:"currency" binding:"omitempty,len=3"`
	Method             string `json:"method" binding:"required,oneof=credit_card bit bank_transfer cash paypal"`
	Gateway            string `json:"gateway"`
	Description        string `json:"description" binding:"max=500"`
	Installments       int    `json:"installments" binding:"omitempty,min=1,max=36"`
	CardToken          string `json:"card_token"`
	CardExpiry         string `json:"card_expiry"`
	SuccessURL         string `json:"success_url" binding:"omitempty,url"`
	FailureURL         string `json:"failure_url" binding:"omitempty,url"`
}

type RefundRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason" binding:"max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// List godoc
// @Summary List payments
// @Security Bearer
// @Tags payments
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	from, err := common.QueryDate(c, "from")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	to, err := common.QueryDate(c, "to")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if !to.IsZero() {
		to = to.In(biztime.Location()).AddDate(0, 0, 1).UTC()
	}

	p := utils.ParsePagination(c)
	result, err := h.listUC.Execute(c.Request.Context(), usecases.ListPaymentsQuery{
		Status:    c.Query("status"),
		ContactID: common.QueryUint(c, "contact_id"),
		DealID:    common.QueryUint(c, "deal_id"),
		Gateway:   c.Query("gateway"),
		From:      from,
		To:        to,
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
// @Summary Create payment
// @Security Bearer
// @Tags payments
// @Accept json
// @Produce json
// @Param request body payment.CreatePaymentRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create payment", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreatePaymentCommand{
		ContactID:          req.ContactID,
		DealID:             req.DealID,
		InstallmentID:      req.InstallmentID,
		RecurringPaymentID: req.RecurringPaymentID,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Method:             req.Method,
		Gateway:            req.Gateway,
		Description:        req.Description,
		Installments:       req.Installments,
		CardToken:          req.CardToken,
		CardExpiry:         req.CardExpiry,
		SuccessURL:         req.SuccessURL,
		FailureURL:         req.FailureURL,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Payment created successfully")
}

// Get godoc
// @Summary Get payment
// @Security Bearer
// @Tags payments
// @Produce json
// @Param id path int true "payment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetByReference godoc
// @Summary Get payment by reference
// @Security Bearer
// @Tags payments
// @Produce json
// @Param reference path string true "Reference"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/payments/reference/{reference} [get]
func (h *PaymentHandler) GetByReference(c *gin.Context) {
	ref := strings.TrimSpace(c.Param("reference"))
	if ref == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("reference is required"))
		return
	}
	result, err := h.getUC.ByReference(c.Request.Context(), ref)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Refund godoc
// @Summary Refund payment
// @Security Bearer
// @Tags payments
// @Accept json
// @Produce json
// @Param id path int true "payment ID"
// @Param request body payment.RefundRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req RefundRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.refundUC.Execute(c.Request.Context(), usecases.RefundPaymentCommand{
		PaymentID: id,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Payment refunded", result)
}

// Cancel godoc
// @Summary Cancel pending payment
// @Security Bearer
// @Tags payments
// @Accept json
// @Produce json
// @Param id path int true "payment ID"
// @Param request body payment.CancelRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/payments/{id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindJSON(c, &req); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), id, req.Reason)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Payment cancelled", result)
}
