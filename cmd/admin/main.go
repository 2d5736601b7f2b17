// Command admin seeds the administrator account. It is idempotent: an
// existing account with the configured email is left untouched.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-gorm-accounts/internal/core/auth"
	"go-gin-gorm-accounts/internal/core/config"
	"go-gin-gorm-accounts/internal/core/database"
	"go-gin-gorm-accounts/internal/core/logger"
	"go-gin-gorm-accounts/internal/repo"
	"go-gin-gorm-accounts/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()

	if err := run(cfg, log); err != nil {
		log.Error("seed failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	s := cfg.Seed
	if len(s.AdminPassword) < 8 {
		return fmt.Errorf("seed.admin_password must be at least 8 characters")
	}
	if cfg.DB.Driver == "memory" {
		return fmt.Errorf("seeding needs a persistent store, db.driver is %q", cfg.DB.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewGorm(cfg.DB, log)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := repo.Migrate(db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	svc := service.NewUserService(repo.NewUserRepo(db), auth.NewBcrypt(cfg.Auth.BcryptCost), log)
	in := service.AdminCreateInput{Email: s.AdminEmail, Password: s.AdminPassword}
	if s.AdminName != "" {
		in.Name = &s.AdminName
	}
	if s.AdminBio != "" {
		in.Bio = &s.AdminBio
	}

	u, created, err := svc.EnsureAdmin(ctx, in)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin created", zap.Uint("id", u.ID), zap.String("email", u.Email))
	} else {
		log.Info("admin already exists", zap.Uint("id", u.ID), zap.String("email", u.Email), zap.String("role", string(u.Role)))
	}
	return nil
}
