package controller

import (
	"net/http"
	"strconv"

	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/gin-gonic/gin"
)

// pageResponse is the envelope for paginated listings
type pageResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Warn("Unauthorized access", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

// parseID reads a positive numeric path parameter or writes a 400.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID format", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body. Field rules are enforced by the services.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "request body is not valid JSON")
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid query parameters")
		return false
	}
	return true
}

// fail logs the error with request context and writes the mapped response.
func fail(c *gin.Context, msg string, err error, fields map[string]interface{}) {
	log := middleware.GetLoggerFromContext(c)
	if appErr, ok := apperrors.As(err); ok && appErr.Status() < http.StatusInternalServerError {
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["code"] = appErr.Code
		log.Warn(msg, fields)
	} else {
		log.Error(msg, err, fields)
	}
	apperrors.Respond(c, err)
}
