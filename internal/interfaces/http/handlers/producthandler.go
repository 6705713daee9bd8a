package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/application/catalog"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type ProductHandler struct {
	service productService
	logger  logger.Interface
}

func NewProductHandler(service productService, logger logger.Interface) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

type ProductRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"max=200"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required,oneof=course workshop membership consultation"`
	Price       string `json:"price" binding:"required"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
	SortOrder   int    `json:"sort_order"`
	Active      *bool  `json:"active"`
}

func (r ProductRequest) toCommand() catalog.ProductCommand {
	return catalog.ProductCommand{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Type:        r.Type,
		Price:       r.Price,
		Currency:    r.Currency,
		SortOrder:   r.SortOrder,
		Active:      r.Active,
	}
}

// List godoc
// @Summary List products
// @Security Bearer
// @Tags products
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), catalog.ListProductsQuery{
		Type:       c.Query("type"),
		ActiveOnly: c.Query("active") == "true",
		Page:       p.Page,
		PageSize:   p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Create godoc
// @Summary Create product
// @Security Bearer
// @Tags products
// @Accept json
// @Produce json
// @Param request body handlers.ProductRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := common.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create product", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Create(c.Request.Context(), req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Product created successfully")
}

// Get godoc
// @Summary Get product
// @Security Bearer
// @Tags products
// @Produce json
// @Param id path int true "product ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
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
// @Summary Update product
// @Security Bearer
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "product ID"
// @Param request body handlers.ProductRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := common.ParseID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req ProductRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Product updated successfully", result)
}

// Delete godoc
// @Summary Delete product
// @Security Bearer
// @Tags products
// @Produce json
// @Param id path int true "product ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
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
