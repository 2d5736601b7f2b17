package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-gorm-accounts/internal/core/auth"
	"go-gin-gorm-accounts/internal/core/cache"
	"go-gin-gorm-accounts/internal/core/config"
	"go-gin-gorm-accounts/internal/core/database"
	"go-gin-gorm-accounts/internal/core/logger"
	"go-gin-gorm-accounts/internal/core/server"
	"go-gin-gorm-accounts/internal/core/tracing"
	"go-gin-gorm-accounts/internal/domain"
	"go-gin-gorm-accounts/internal/repo"
	"go-gin-gorm-accounts/internal/repo/memory"
	"go-gin-gorm-accounts/internal/service"
	"go-gin-gorm-accounts/internal/transport/http/handler"
	"go-gin-gorm-accounts/internal/transport/http/router"
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
	defer logger.RedirectStdLog(log)()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	userRepo, closeStore := mustOpenStore(ctx, cfg, log)
	defer closeStore()

	traceService := ""
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.App.Name, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatal("tracing init", zap.Error(err))
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
		traceService = cfg.App.Name
	}

	tokens := mustTokens(cfg, log)
	hasher := auth.NewBcrypt(cfg.Auth.BcryptCost)
	authSvc := service.NewAuthService(userRepo, hasher, tokens, log.Named("auth"))
	userSvc := service.NewUserService(userRepo, hasher, log.Named("users"))

	r := router.NewAPIEngine(router.Deps{
		Log:          log,
		HTTP:         cfg.App.HTTP,
		Tokens:       tokens,
		Auth:         handler.NewAuthHandler(authSvc),
		Users:        handler.NewUserHandler(userSvc),
		Ready:        userRepo.Ping,
		TraceService: traceService,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("accounts api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("store", cfg.DB.Driver),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("accounts api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Shutdown(srv, 10*time.Second, log)
	log.Info("accounts api stopped gracefully")
}

func mustTokens(cfg *config.Config, l *zap.Logger) *auth.TokenService {
	access, err := cfg.Auth.AccessTTL()
	if err != nil {
		l.Fatal("access expiry", zap.Error(err))
	}
	refresh, err := cfg.Auth.RefreshTTL()
	if err != nil {
		l.Fatal("refresh expiry", zap.Error(err))
	}
	return &auth.TokenService{
		Secret:     []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  access,
		RefreshTTL: refresh,
		Leeway:     cfg.Auth.Leeway(),
	}
}

// mustOpenStore builds the repository chain for the configured driver. The
// returned func releases every client it opened.
func mustOpenStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (domain.UserRepository, func()) {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory store; data is lost on exit")
		return memory.NewUserRepo(), func() {}
	}

	db, err := database.NewGorm(cfg.DB, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	if err := database.Ping(ctx, db); err != nil {
		l.Fatal("db ping", zap.Error(err), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}

	closers := []func(){func() {
		if err := database.Close(db); err != nil {
			l.Warn("db close", zap.Error(err))
		}
	}}
	var users domain.UserRepository = repo.NewUserRepo(db)

	if cfg.Redis.Enabled() {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(ctx); err != nil {
			l.Warn("redis unreachable, continuing without cache", zap.Error(err))
			_ = c.Close()
		} else {
			ttl := time.Duration(cfg.Redis.UserTTLSec) * time.Second
			users = repo.NewCachedUserRepo(users, c, ttl, l.Named("cache"))
			closers = append(closers, func() { _ = c.Close() })
			l.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", ttl))
		}
	}

	return users, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
