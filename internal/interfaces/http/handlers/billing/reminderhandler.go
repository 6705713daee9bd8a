package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appbilling "github.com/kesher-io/kesher/internal/application/billing"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type ReminderHandler struct {
	service reminderService
	sendUC  sendRemindersUseCase
	logger  logger.Interface
}

func NewReminderHandler(service reminderService, sendUC sendRemindersUseCase, logger logger.Interface) *ReminderHandler {
	return &ReminderHandler{service: service, sendUC: sendUC, logger: logger}
}

// List godoc
// @Summary List reminders
// @Security Bearer
// @Tags reminders
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/reminders [get]
func (h *ReminderHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), appbilling.ListRemindersQuery{
		Status:    c.Query("status"),
		Kind:      c.Query("kind"),
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

// Cancel godoc
// @Summary Cancel reminder
// @Security Bearer
// @Tags reminders
// @Produce json
// @Param id path int true "reminder ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Failure 404 {object} utils.APIResponse "Not found"
// @Router /admin/reminders/{id}/cancel [post]
func (h *ReminderHandler) Cancel(c *gin.Context) {
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
	utils.SuccessResponse(c, http.StatusOK, "Reminder cancelled", result)
}

// SendDue godoc
// @Summary Send due reminders
// @Security Bearer
// @Tags reminders
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/reminders/send [post]
func (h *ReminderHandler) SendDue(c *gin.Context) {
	result, err := h.sendUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"sent": result.Sent, "failed": result.Failed})
}
