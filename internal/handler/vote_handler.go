package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/middleware"
	"github.com/quillboard/quill-backend/internal/service"
)

// VoteHandler handles vote ledger requests
type VoteHandler struct {
	service service.VoteService
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(service service.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Rate handles POST /api/v1/posts/:id/rate. Requires auth; repeating
// the same mark toggles it off under the default policy.
func (h *VoteHandler) Rate(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, 400, "invalid post id", err)
		return
	}

	var req domain.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "invalid request body", err)
		return
	}

	result, err := h.service.Rate(c.Request.Context(), postID, middleware.GetUserID(c), req.MarkType)
	if err != nil {
		middleware.CountVote("rejected")
		common.FailResponse(c, err)
		return
	}

	switch {
	case result.Rated == domain.MarkNone:
		middleware.CountVote("removed")
	case result.Switched:
		middleware.CountVote("switched")
	default:
		middleware.CountVote("cast")
	}

	common.SuccessResponse(c, result, nil)
}
