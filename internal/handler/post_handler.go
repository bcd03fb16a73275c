package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/middleware"
	"github.com/quillboard/quill-backend/internal/service"
)

// PostHandler handles post requests
type PostHandler struct {
	service service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// ListPosts handles GET /api/v1/posts
// Feed order: last activity descending, post id descending on ties.
// Optional filters: tag, body, user, id_gte.
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))       //nolint:errcheck // validated downstream
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))    //nolint:errcheck // validated downstream
	idGte, _ := strconv.ParseInt(c.Query("id_gte"), 10, 64)    //nolint:errcheck // 0 means unset
	userID, _ := strconv.ParseInt(c.Query("user"), 10, 64)     //nolint:errcheck // 0 means unset

	filter := &domain.PostFilter{
		IDGte:    idGte,
		Body:     c.Query("body"),
		UserID:   userID,
		TagAlias: c.Query("tag"),
	}

	posts, meta, err := h.service.ListPosts(c.Request.Context(), middleware.GetUserID(c), filter, page, limit)
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, posts, meta)
}

// GetPost handles GET /api/v1/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid post id", err)
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, post, nil)
}

// CreatePost handles POST /api/v1/posts. Anonymous posting is allowed:
// without a token the username comes from the payload.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), &req, middleware.GetUserIDPtr(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.CreatedResponse(c, post)
}

// UpdatePost handles PUT /api/v1/posts/:id (owner only)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid post id", err)
		return
	}

	var req domain.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	post, err := h.service.UpdatePost(c.Request.Context(), id, &req, middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, post, nil)
}

// DeletePost handles DELETE /api/v1/posts/:id (owner only)
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid post id", err)
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": id}, nil)
}

// ListVersions handles GET /api/v1/posts/:id/versions (owner only)
func (h *PostHandler) ListVersions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid post id", err)
		return
	}

	versions, err := h.service.ListVersions(id, middleware.GetUserID(c))
	if err != nil {
		common.FailResponse(c, err)
		return
	}

	common.SuccessResponse(c, versions, nil)
}
