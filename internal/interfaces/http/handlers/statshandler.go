package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

// StatsHandler serves the dashboard aggregates.
type StatsHandler struct {
	service statsService
	logger  logger.Interface
}

func NewStatsHandler(service statsService, logger logger.Interface) *StatsHandler {
	return &StatsHandler{service: service, logger: logger}
}

func respondStats[T any](c *gin.Context, fetch func(ctx context.Context) (T, error)) {
	result, err := fetch(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Overview godoc
// @Summary Dashboard overview
// @Security Bearer
// @Tags stats
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) { respondStats(c, h.service.Overview) }

// CRM godoc
// @Summary CRM statistics
// @Security Bearer
// @Tags stats
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/stats/crm [get]
func (h *StatsHandler) CRM(c *gin.Context) { respondStats(c, h.service.CRM) }

// Funnel godoc
// @Summary Lead funnel
// @Security Bearer
// @Tags stats
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/stats/funnel [get]
func (h *StatsHandler) Funnel(c *gin.Context) { respondStats(c, h.service.Funnel) }

// Payments godoc
// @Summary Payment statistics
// @Security Bearer
// @Tags stats
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/stats/payments [get]
func (h *StatsHandler) Payments(c *gin.Context) { respondStats(c, h.service.Payments) }

// Messaging godoc
// @Summary Messaging statistics
// @Security Bearer
// @Tags stats
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/stats/messaging [get]
func (h *StatsHandler) Messaging(c *gin.Context) { respondStats(c, h.service.Messaging) }
