package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/elysian/registration-service/config"
	"github.com/elysian/registration-service/internal/application"
	"github.com/elysian/registration-service/internal/container"
	repouser "github.com/elysian/registration-service/internal/domain/repository"
	pginfra "github.com/elysian/registration-service/internal/infrastructure/postgres"
	"github.com/elysian/registration-service/internal/router"
	"github.com/elysian/registration-service/pkg/helpers"
)

func main() {
	email := flag.String("email", "demo@example.com", "demo user email")
	name := flag.String("name", "Demo User", "demo user name")
	password := flag.String("password", "password123", "demo user password")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()
	container.SetConfig(cfg)

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		container.SetPGPool(pool)
	case config.StoreRedis:
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	default:
		logger.Fatalf("seeding needs a persistent store, got %q", cfg.StoreDriver)
	}

	repo, err := router.NewUserRepository(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to init store")
	}
	store := application.NewCredentialStore(repo, container.GetHasher(), cfg.StoreTimeout)

	u, err := store.Create(ctx, *email, *name, *password)
	if errors.Is(err, repouser.ErrAlreadyExists) {
		logger.WithField("email", *email).Info("demo user already exists")
		return
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email}).Info("seeded user")
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", u.ID, u.Email, u.Name, *password)
}
