package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"xmr_faucet_back/pkg/service"
)

type Error struct {
	Message string `json:"error"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Error{Message: message})
}

// sendErrorResponse maps a coordinator error to a status and a caller safe message.
// The full error is only logged.
func sendErrorResponse(c *gin.Context, err error, fallback string) {
	status, message := http.StatusInternalServerError, fallback
	switch {
	case errors.Is(err, service.ErrInvalidAddress):
		status, message = http.StatusBadRequest, "Invalid Monero address provided."
	case errors.Is(err, service.ErrInvalidAmount):
		status, message = http.StatusBadRequest, "Invalid amount."
	case errors.Is(err, service.ErrSessionNotReady):
		status, message = http.StatusServiceUnavailable, "Faucet wallet is not ready yet. Please try again shortly."
	case errors.Is(err, service.ErrInsufficientUnlockedFunds):
		status, message = http.StatusServiceUnavailable, "Faucet is waiting for funds to confirm. Please try again in a few minutes."
	}

	entry := logrus.WithError(err).WithField("path", c.FullPath())
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
	newErrorResponse(c, status, message)
}
