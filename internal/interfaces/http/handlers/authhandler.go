package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/application/auth"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/common"
	"github.com/kesher-io/kesher/internal/shared/constants"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type AuthHandler struct {
	loginUC loginUseCase
	logger  logger.Interface
}

func NewAuthHandler(loginUC loginUseCase, logger logger.Interface) *AuthHandler {
	return &AuthHandler{loginUC: loginUC, logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body handlers.LoginRequest true "Request body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse "Bad request"
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := common.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.loginUC.Execute(c.Request.Context(), auth.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Login successful", result)
}

// Me godoc
// @Summary Current admin user
// @Security Bearer
// @Tags auth
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse "Unauthorized"
// @Router /admin/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"email": c.GetString(constants.ContextKeyAdminEmail)})
}
