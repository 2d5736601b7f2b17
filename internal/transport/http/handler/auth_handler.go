package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-accounts/internal/domain"
	"go-gin-gorm-accounts/internal/service"
	mdw "go-gin-gorm-accounts/internal/transport/http/middleware"
)

// AuthService is satisfied by *service.AuthService.
type AuthService interface {
	Register(ctx context.Context, email, password string, name *string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	Me(ctx context.Context, id uint) (*domain.User, error)
}

type AuthHandler struct{ svc AuthService }

func NewAuthHandler(svc AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Register(c *gin.Context, in *RegisterReq) (*service.AuthResult, error) {
	res, err := h.svc.Register(c.Request.Context(), in.Email, in.Password, in.Name)
	observe("register", err)
	return res, err
}

func (h *AuthHandler) Login(c *gin.Context, in *LoginReq) (*service.AuthResult, error) {
	res, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	observe("login", err)
	return res, err
}

func (h *AuthHandler) Refresh(c *gin.Context, in *RefreshReq) (*service.TokenPair, error) {
	res, err := h.svc.Refresh(c.Request.Context(), in.RefreshToken)
	observe("refresh", err)
	return res, err
}

func (h *AuthHandler) Me(c *gin.Context, _ *struct{}) (*domain.User, error) {
	p, ok := mdw.PrincipalFrom(c)
	if !ok {
		return nil, domain.E(domain.KindInvalidToken, "handler.Me", nil)
	}
	return h.svc.Me(c.Request.Context(), p.ID)
}
