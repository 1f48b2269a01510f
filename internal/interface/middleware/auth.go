package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elysian/registration-service/internal/application"
	"github.com/elysian/registration-service/pkg/helpers"
	"github.com/elysian/registration-service/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

type Authorizer interface {
	Authorize(ctx context.Context, token string) (*application.Identity, error)
}

// Auth accepts a bearer token from the Authorization header or the
// access_token cookie. Every rejection gets the same 401 body.
func Auth(authz Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		id, err := authz.Authorize(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		c.Set(CtxUserIDKey, id.UserID)
		c.Set(CtxUserEmailKey, id.Email)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	tok, err := c.Cookie(helpers.AccessTokenCookie)
	if err != nil {
		return ""
	}
	return tok
}
