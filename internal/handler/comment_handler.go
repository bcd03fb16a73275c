package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/middleware"
	"github.com/quillboard/quill-backend/internal/service"
)

// CommentHandler handles comment requests
type CommentHandler struct {
	service service.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// ListComments handles GET /api/v1/posts/:id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid post id", err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))    //nolint:errcheck // validated downstream
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20")) //nolint:errcheck // validated downstream

	comments, meta, err := h.service.ListComments(postID, page, limit)
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, comments, meta)
}

// CreateComment handles POST /api/v1/posts/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid post id", err)
		return
	}

	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), postID, &req, middleware.GetUserIDPtr(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.CreatedResponse(c, comment)
}

// UpdateComment handles PUT /api/v1/comments/:comment_id (owner only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid comment id", err)
		return
	}

	var req domain.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	comment, err := h.service.UpdateComment(c.Request.Context(), id, &req, middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, comment, nil)
}

// DeleteComment handles DELETE /api/v1/comments/:comment_id (owner only)
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid comment id", err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": id}, nil)
}

// ListVersions handles GET /api/v1/comments/:comment_id/versions
func (h *CommentHandler) ListVersions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid comment id", err)
		return
	}

	versions, err := h.service.ListVersions(id, middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, versions, nil)
}
