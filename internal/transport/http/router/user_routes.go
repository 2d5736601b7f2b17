package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-accounts/internal/domain"
	httpez "go-gin-gorm-accounts/internal/transport/http/ez"
	"go-gin-gorm-accounts/internal/transport/http/handler"
	mdw "go-gin-gorm-accounts/internal/transport/http/middleware"
)

type userModule struct {
	h      *handler.UserHandler
	tokens mdw.Verifier
}

func (userModule) Priority() int { return 20 }

func (m userModule) Mount(g *gin.RouterGroup) {
	users := g.Group("/users", mdw.IsAuth(m.tokens))
	ez := httpez.New(users)

	adminOnly := mdw.HasRole(domain.RoleAdmin)
	selfOrAdmin := []gin.HandlerFunc{mdw.ParamID("id"), mdw.IsSelfOrAdmin()}

	httpez.RegisterAction(ez, httpez.Action[handler.ListUsersReq, domain.Paginated[domain.User]]{
		Method:     http.MethodGet,
		Path:       "",
		Binder:     httpez.BindQuery,
		Middleware: []gin.HandlerFunc{adminOnly},
		Handler:    m.h.List,
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method:  http.MethodGet,
		Path:    "/me",
		Handler: m.h.GetMe,
	})
	httpez.RegisterAction(ez, httpez.Action[handler.UpdateMeReq, *domain.User]{
		Method:  http.MethodPut,
		Path:    "/me",
		Binder:  httpez.BindJSON,
		Handler: m.h.UpdateMe,
	})
	httpez.RegisterAction(ez, httpez.Action[handler.CreateUserReq, *domain.User]{
		Method:     http.MethodPost,
		Path:       "",
		Binder:     httpez.BindJSON,
		Status:     http.StatusCreated,
		Middleware: []gin.HandlerFunc{adminOnly},
		Handler:    m.h.Create,
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method:     http.MethodGet,
		Path:       "/:id",
		Middleware: selfOrAdmin,
		Handler:    m.h.Get,
	})
	httpez.RegisterAction(ez, httpez.Action[handler.UpdateUserReq, *domain.User]{
		Method:     http.MethodPut,
		Path:       "/:id",
		Binder:     httpez.BindJSON,
		Middleware: selfOrAdmin,
		Handler:    m.h.Update,
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, struct{}]{
		Method:     http.MethodDelete,
		Path:       "/:id",
		Status:     http.StatusNoContent,
		Middleware: []gin.HandlerFunc{adminOnly, mdw.ParamID("id")},
		Handler:    m.h.Delete,
	})
}
