package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-accounts/internal/domain"
	"go-gin-gorm-accounts/internal/service"
	httpez "go-gin-gorm-accounts/internal/transport/http/ez"
	"go-gin-gorm-accounts/internal/transport/http/handler"
	mdw "go-gin-gorm-accounts/internal/transport/http/middleware"
)

type authModule struct {
	h       *handler.AuthHandler
	tokens  mdw.Verifier
	limiter gin.HandlerFunc
}

func (authModule) Priority() int { return 10 }

func (m authModule) Mount(g *gin.RouterGroup) {
	grp := g.Group("/auth", m.limiter)
	ez := httpez.New(grp)

	httpez.RegisterAction(ez, httpez.Action[handler.RegisterReq, *service.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  httpez.BindJSON,
		Status:  http.StatusCreated,
		Handler: m.h.Register,
	})
	httpez.RegisterAction(ez, httpez.Action[handler.LoginReq, *service.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  httpez.BindJSON,
		Handler: m.h.Login,
	})
	httpez.RegisterAction(ez, httpez.Action[handler.RefreshReq, *service.TokenPair]{
		Method:  http.MethodPost,
		Path:    "/refresh",
		Binder:  httpez.BindJSON,
		Handler: m.h.Refresh,
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method:     http.MethodGet,
		Path:       "/me",
		Middleware: []gin.HandlerFunc{mdw.IsAuth(m.tokens)},
		Handler:    m.h.Me,
	})
}
