package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/elysian/registration-service/internal/application"
	repo "github.com/elysian/registration-service/internal/domain/repository"
	"github.com/elysian/registration-service/pkg/response"
)

// writeError maps service errors onto the response envelope. Internal
// details are logged, never returned.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", ve.Fields)
	case errors.Is(err, application.ErrConflict):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error[any](c, http.StatusUnauthorized, "invalid email or password", nil)
	case errors.Is(err, repo.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrStoreUnavailable):
		if logger != nil {
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("store unavailable")
		}
		c.Header("Retry-After", "1")
		response.Error[any](c, http.StatusServiceUnavailable, "service temporarily unavailable", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("internal error")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
