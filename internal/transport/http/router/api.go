package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-gorm-accounts/internal/core/config"
	"go-gin-gorm-accounts/internal/core/server"
	"go-gin-gorm-accounts/internal/transport/http/handler"
	mdw "go-gin-gorm-accounts/internal/transport/http/middleware"
)

type Deps struct {
	Log    *zap.Logger
	HTTP   config.HTTP
	Tokens mdw.Verifier
	Auth   *handler.AuthHandler
	Users  *handler.UserHandler
	// Ready backs /readyz; usually the repository's Ping.
	Ready func(context.Context) error
	// TraceService enables otelgin spans under this service name when set.
	TraceService string
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter(server.Options{CORSOrigins: d.HTTP.CORSOrigins},
		mdw.RequestID(),
		mdw.Recovery(l),
	)

	if d.TraceService != "" {
		r.Use(otelgin.Middleware(d.TraceService))
	}
	r.Use(
		mdw.RateLimit(rate.Limit(d.HTTP.RateLimitRPS), d.HTTP.RateLimitBurst),
		mdw.ConcurrencyLimit(d.HTTP.MaxConcurrent),
		mdw.MaxBodyBytes(d.HTTP.MaxBodyBytes),
		mdw.Timeout(time.Duration(d.HTTP.RequestTimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	var reg Registry
	reg.Register(
		opsModule{ready: d.Ready, log: l},
		authModule{
			h:       d.Auth,
			tokens:  d.Tokens,
			limiter: mdw.RateLimitPerIP(rate.Limit(d.HTTP.AuthRateLimitRPS), d.HTTP.AuthRateLimitBurst),
		},
		userModule{h: d.Users, tokens: d.Tokens},
	)
	reg.MountAll(&r.RouterGroup)
	return r
}
