package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta pagination and additional metadata
type Meta struct {
	Page  int   `json:"page,omitempty"`
	Limit int   `json:"limit,omitempty"`
	Total int64 `json:"total,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse returns a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// CreatedResponse returns a 201 JSON response
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Data: data,
	})
}

// ErrorResponse returns an error JSON response with an explicit status
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	errInfo := &ErrorInfo{
		Code:    codeForStatus(status),
		Message: message,
	}
	if err != nil {
		errInfo.Details = err.Error()
	}

	c.JSON(status, gin.H{
		"error": errInfo,
	})
}

// FailResponse maps a business error onto the HTTP boundary using the
// error taxonomy
func FailResponse(c *gin.Context, err error) {
	kind := Kindof(err)
	errInfo := &ErrorInfo{
		Code:    kind,
		Message: err.Error(),
	}
	c.JSON(statusForKind(kind), gin.H{
		"error": errInfo,
	})
}

func statusForKind(kind string) int {
	switch kind {
	case "VALIDATION":
		return http.StatusBadRequest
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "PERMISSION_DENIED":
		return http.StatusForbidden
	case "NOT_FOUND":
		return http.StatusNotFound
	case "CONFLICT":
		return http.StatusConflict
	case "UPSTREAM":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case 400:
		return "VALIDATION"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "PERMISSION_DENIED"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 502:
		return "UPSTREAM"
	case 500:
		return "INTERNAL"
	default:
		return "ERROR"
	}
}
