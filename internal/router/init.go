package router

import (
	"fmt"

	"github.com/elysian/registration-service/config"
	"github.com/elysian/registration-service/internal/application"
	"github.com/elysian/registration-service/internal/container"
	repouser "github.com/elysian/registration-service/internal/domain/repository"
	esinfra "github.com/elysian/registration-service/internal/infrastructure/elasticsearch"
	meminfra "github.com/elysian/registration-service/internal/infrastructure/memory"
	pginfra "github.com/elysian/registration-service/internal/infrastructure/postgres"
	redisinfra "github.com/elysian/registration-service/internal/infrastructure/redis"
	"github.com/elysian/registration-service/internal/infrastructure/welcome"
	handlers "github.com/elysian/registration-service/internal/interface/http"
	"github.com/elysian/registration-service/internal/router/modules"
	"github.com/elysian/registration-service/pkg/mailer/templates"
)

type AuthModuleDeps struct {
	Repo        repouser.UserRepository
	Service     *application.AuthService
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
}

// NewUserRepository picks the credential store backend for STORE_DRIVER.
func NewUserRepository(cfg *config.Config) (repouser.UserRepository, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		if container.GetPGPool() == nil {
			return nil, fmt.Errorf("store %q: postgres pool not initialized", cfg.StoreDriver)
		}
		return pginfra.NewUserRepository(container.GetPGPool()), nil
	case config.StoreRedis:
		if container.GetRedis() == nil {
			return nil, fmt.Errorf("store %q: redis client not initialized", cfg.StoreDriver)
		}
		return redisinfra.NewUserRepository(container.GetRedis()), nil
	case config.StoreMemory:
		return meminfra.NewUserRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func buildAuthDeps() (AuthModuleDeps, error) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo, err := NewUserRepository(cfg)
	if err != nil {
		return AuthModuleDeps{}, err
	}
	store := application.NewCredentialStore(repo, container.GetHasher(), cfg.StoreTimeout)

	svc := application.NewAuthService(store, container.GetJWT(), logger)
	svc.DefaultWelcome = cfg.DefaultWelcomeMessage
	svc.WelcomeTimeout = cfg.WelcomeTimeout
	if cfg.MessageServiceURL != "" {
		svc.Welcome = welcome.NewClient(cfg.MessageServiceURL, cfg.WelcomeTimeout)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		svc.Mail = pub
		svc.MailEnabled = cfg.MailSendEnabled
		svc.MailData = templates.NewWelcomeData(cfg)
	}

	indexer := esinfra.NewUserIndexer(container.GetES(), cfg.ESUsersIndex)
	var search handlers.UserSearcher
	if indexer.Enabled() {
		svc.Indexer = indexer
		search = indexer
	}

	return AuthModuleDeps{
		Repo:        repo,
		Service:     svc,
		AuthHandler: handlers.NewAuthHandler(svc, logger, cfg.CookieDomain, cfg.CookieSecure),
		UserHandler: handlers.NewUserHandler(svc, search, logger),
	}, nil
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) error {
	deps, err := buildAuthDeps()
	if err != nil {
		return err
	}
	r.Add(modules.NewAuthModule(deps.AuthHandler))
	r.Add(modules.NewUserModule(deps.UserHandler, deps.Service))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	return nil
}
