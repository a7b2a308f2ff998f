package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/aschalew-star/tenderalert/pkg/errors"
	"github.com/aschalew-star/tenderalert/pkg/logger"
	"github.com/aschalew-star/tenderalert/pkg/response"
)

// Recovery converts panics into a 500 error envelope and logs the failing
// request with its stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic recovered",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
					zap.Any("error", r),
					zap.ByteString("stack", debug.Stack()),
				)
				response.Error(c, apperrors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFoundHandler returns the standard error envelope for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, apperrors.New(
		apperrors.ErrNotFound.Code,
		fmt.Sprintf("route %s not found", c.Request.URL.Path),
		http.StatusNotFound,
	))
}
