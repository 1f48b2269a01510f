package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/elysian/registration-service/internal/application"
	esinfra "github.com/elysian/registration-service/internal/infrastructure/elasticsearch"
	"github.com/elysian/registration-service/internal/interface/middleware"
	"github.com/elysian/registration-service/pkg/response"
)

type UserSearcher interface {
	Search(ctx context.Context, q string, size int) ([]esinfra.UserDoc, error)
}

type UserHandler struct {
	Svc    *application.AuthService
	Search UserSearcher
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.AuthService, search UserSearcher, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Search: search, Logger: logger}
}

// Me returns what the token proves, without reading the store.
func (h *UserHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, application.Identity{
		UserID: c.GetString(middleware.CtxUserIDKey),
		Email:  c.GetString(middleware.CtxUserEmailKey),
	}, "authorized", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.Profile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"created_at": u.CreatedAt,
	}, "profile", nil)
}

// SearchUsers GET /api/users/search?q=&size=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	docs := []esinfra.UserDoc{}
	if h.Search != nil {
		var err error
		docs, err = h.Search.Search(c.Request.Context(), q, size)
		if err != nil {
			if h.Logger != nil {
				h.Logger.WithError(err).Warn("user search failed")
			}
			response.Error[any](c, http.StatusServiceUnavailable, "search unavailable", nil)
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{"users": docs}, "users", map[string]any{"count": len(docs)})
}
