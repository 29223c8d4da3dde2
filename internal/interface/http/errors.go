package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"replier/internal/application"
	"replier/pkg/response"
)

// respondError maps application sentinels to HTTP statuses and writes
// the error envelope. Unclassified errors become a generic 500 so
// storage detail never reaches the client.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrBotNotFound),
		errors.Is(err, application.ErrReplyNotFound),
		errors.Is(err, application.ErrInvalidToken):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrUserAlreadyExists),
		errors.Is(err, application.ErrBotAlreadyExists),
		errors.Is(err, application.ErrReplyAlreadyExists),
		errors.Is(err, application.ErrSelfInvite):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotVerified):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrEmailNotSent):
		response.Error[any](c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		if logger != nil {
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("internal error")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
