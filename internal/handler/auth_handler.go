package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/middleware"
	"github.com/quillboard/quill-backend/internal/service"
)

// AuthHandler handles social login and email confirmation
type AuthHandler struct {
	social service.SocialService
	users  service.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(social service.SocialService, users service.UserService) *AuthHandler {
	return &AuthHandler{social: social, users: users}
}

// SocialLogin handles POST /api/v1/auth/social/:provider. Exchanges the
// provider authorization code and returns the opaque API token.
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	provider := domain.SocialProvider(c.Param("provider"))

	var req domain.SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	resp, err := h.social.Login(c.Request.Context(), provider, req.Code)
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, resp, nil)
}

// ConfirmEmail handles POST /api/v1/auth/confirm-email with a
// single-use, time-boxed token from the verification mail
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	if err := h.social.ConfirmEmail(req.Token); err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"confirmed": true}, nil)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetUser(middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, user, nil)
}
