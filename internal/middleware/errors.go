package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string  `json:"message"`
	Stack   *string `json:"stack"`
}

// ErrorHandler renders the last error pushed with c.Error as
// {"message", "stack"}. The stack is null in production.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		apiErr := svcErr.From(c.Errors.Last().Err)
		reqLog := logger.FromContext(c.Request.Context())
		if apiErr.Status >= http.StatusInternalServerError {
			reqLog.Error("request failed", "status", apiErr.Status, "err", apiErr.Error())
		} else {
			reqLog.Debug("request rejected", "status", apiErr.Status, "err", apiErr.Error())
		}

		if c.Writer.Written() {
			return
		}

		body := ErrorResponse{Message: apiErr.Message}
		if !production {
			stack := apiErr.Stack()
			body.Stack = &stack
		}
		c.JSON(apiErr.Status, body)
	}
}

// PanicRecovery turns a panic into a 500 handled by ErrorHandler.
func PanicRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.Error(svcErr.Internal(fmt.Errorf("panic: %v", r)))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFound answers unknown routes through ErrorHandler.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Error(svcErr.NotFound("Not Found - " + c.Request.URL.Path))
	}
}
