// Package handlers implements the HTTP endpoints of the profiling API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/internal/interfaces/http/middleware"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(c *gin.Context, statusCode int, data interface{}) {
	if data == nil {
		c.Status(statusCode)
		return
	}
	c.JSON(statusCode, data)
}

// writeAppError maps err onto the HTTP status of its error code.  Server
// errors are logged and their message masked.
func writeAppError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}

	resp := ErrorResponse{
		Code:      code.String(),
		RequestID: middleware.GetRequestID(c),
	}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Message, resp.Detail = ae.Message, ae.Detail
	} else {
		resp.Message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("path", c.FullPath()),
			logging.String("request_id", resp.RequestID),
			logging.Err(err))
		resp.Message = errors.DefaultMessageForCode(code)
		resp.Detail = ""
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body into dst.  It writes the error response
// and returns false on failure.
func bindJSON(c *gin.Context, logger logging.Logger, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Code:      errors.CodeInvalidParam.String(),
			Message:   "request body exceeds the configured limit",
			RequestID: middleware.GetRequestID(c),
		})
		return false
	}
	writeAppError(c, logger, errors.InvalidParam("invalid request body").WithDetail(err.Error()).WithCause(err))
	return false
}

//Personal.AI order the ending
