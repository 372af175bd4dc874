package errors

import (
	"net/http"

	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error  string            `json:"error"` // human readable message
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: message,
		Code:  errorCode,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "access denied"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:  "invalid input",
		Code:   ValidationInvalidInput,
		Fields: fields,
	})
}

// Respond writes any error as JSON. Unknown errors become a generic 500;
// the underlying cause is logged and never echoed.
func Respond(c *gin.Context, err error) {
	appErr, ok := As(err)
	if !ok {
		appErr = ParseError(err, "resource")
	}

	status := appErr.Status()
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, map[string]interface{}{
			"path": c.FullPath(),
			"code": appErr.Code,
		})
		c.JSON(status, ErrorResponse{Error: "internal server error", Code: appErr.Code})
		return
	}

	c.JSON(status, ErrorResponse{
		Error:  appErr.Message,
		Code:   appErr.Code,
		Fields: appErr.Fields,
	})
}
