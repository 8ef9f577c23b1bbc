// Package response renders the JSON envelope shared by every endpoint.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spareshop-api/utils/apperror"
)

// HideInternalKey is set on the gin context when 500 messages must not leak causes.
const HideInternalKey = "hide_internal_errors"

const (
	statusSuccess = "Success"
	statusError   = "Error"
)

type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Status: statusSuccess, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Status: statusSuccess, Message: message, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Status: statusError, Message: message})
}

// Error translates err into a status code and message. Anything that is not an
// *apperror.Error is treated as an internal failure and logged.
func Error(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(err, "internal server error")
	}

	status := appErr.HTTPStatus()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		if !c.GetBool(HideInternalKey) {
			message = appErr.Error()
		}
	} else if appErr.Err != nil {
		// client sees the message, the cause stays in the log
		zap.L().Debug("request rejected",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(appErr.Err),
		)
	}

	c.AbortWithStatusJSON(status, Envelope{Status: statusError, Message: message})
}
