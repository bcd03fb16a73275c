package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/middleware"
	"github.com/quillboard/quill-backend/internal/service"
)

// UserHandler handles user and profile requests
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))    //nolint:errcheck // validated downstream
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20")) //nolint:errcheck // validated downstream

	users, meta, err := h.service.ListUsers(page, limit)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, users, meta)
}

// GetUser handles GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid user id", err)
		return
	}

	user, err := h.service.GetUser(id)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, user, nil)
}

// GetProfile handles GET /api/v1/user_profile (own profile)
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, profile, nil)
}

// UpdateProfile handles PUT /api/v1/user_profile (own profile)
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	profile, err := h.service.UpdateProfile(middleware.GetUserID(c), &req)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, profile, nil)
}
