package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/aschalew-star/tenderalert/pkg/errors"
)

// Body is the envelope every API endpoint returns.
type Body struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo holds error details sent to clients.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta describes pagination metadata.
type Meta struct {
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Total   int64 `json:"total,omitempty"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Body{Success: true, Data: data})
}

// SuccessWithMeta writes a JSON success response including pagination metadata.
func SuccessWithMeta(c *gin.Context, statusCode int, data any, meta *Meta) {
	c.JSON(statusCode, Body{Success: true, Data: data, Meta: meta})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	if appErr == nil {
		appErr = apperrors.ErrInternalServer
	}

	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Body{
		Success: false,
		Error:   &ErrorInfo{Code: appErr.Code, Message: appErr.Message},
	})
}
