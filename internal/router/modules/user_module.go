package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/elysian/registration-service/internal/interface/http"
	"github.com/elysian/registration-service/internal/interface/middleware"
)

// UserModule wires the token-protected routes:
// GET /api/me, GET /api/profile, GET /api/users/search
type UserModule struct {
	Handler *handlers.UserHandler
	Authz   middleware.Authorizer
}

func NewUserModule(h *handlers.UserHandler, authz middleware.Authorizer) *UserModule {
	return &UserModule{Handler: h, Authz: authz}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Authz))
	{
		auth.GET("/me", m.Handler.Me)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.GET("/users/search", m.Handler.SearchUsers)
	}
}
