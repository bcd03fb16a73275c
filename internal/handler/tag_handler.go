package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/service"
)

// TagHandler handles tag requests
type TagHandler struct {
	service service.TagService
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(service service.TagService) *TagHandler {
	return &TagHandler{service: service}
}

// ListTags handles GET /api/v1/tags, ordered by weight then title
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags()
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, tags, nil)
}

// GetTag handles GET /api/v1/tags/:id
func (h *TagHandler) GetTag(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid tag id", err)
		return
	}

	tag, err := h.service.GetTag(id)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.SuccessResponse(c, tag, nil)
}

// CreateTag handles POST /api/v1/tags (auth required)
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req domain.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	tag, err := h.service.CreateTag(&req)
	if err != nil {
		common.FailResponse(c, err)
		return
	}
	common.CreatedResponse(c, tag)
}
