package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-accounts/internal/domain"
	"go-gin-gorm-accounts/internal/service"
	mdw "go-gin-gorm-accounts/internal/transport/http/middleware"
)

// UserService is satisfied by *service.UserService.
type UserService interface {
	ListUsers(ctx context.Context, q service.ListUsersQuery) (domain.Paginated[domain.User], error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	UpdateMe(ctx context.Context, id uint, p domain.MePatch) (*domain.User, error)
	AdminCreateUser(ctx context.Context, in service.AdminCreateInput) (*domain.User, error)
	AdminUpdateUser(ctx context.Context, id uint, p domain.UserPatch) (*domain.User, error)
	AdminDeleteUser(ctx context.Context, id uint) error
}

type UserHandler struct{ svc UserService }

func NewUserHandler(svc UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) List(c *gin.Context, in *ListUsersReq) (domain.Paginated[domain.User], error) {
	q := service.ListUsersQuery{
		Page:     in.Page,
		PageSize: in.PageSize,
		Search:   strings.TrimSpace(in.Search),
		Sort:     in.Sort,
	}
	if in.Role != "" {
		role := domain.Role(in.Role)
		q.Role = &role
	}
	return h.svc.ListUsers(c.Request.Context(), q)
}

func (h *UserHandler) GetMe(c *gin.Context, _ *struct{}) (*domain.User, error) {
	p, ok := mdw.PrincipalFrom(c)
	if !ok {
		return nil, domain.E(domain.KindInvalidToken, "handler.GetMe", nil)
	}
	return h.find(c, "handler.GetMe", p.ID)
}

func (h *UserHandler) UpdateMe(c *gin.Context, in *UpdateMeReq) (*domain.User, error) {
	p, ok := mdw.PrincipalFrom(c)
	if !ok {
		return nil, domain.E(domain.KindInvalidToken, "handler.UpdateMe", nil)
	}
	return h.svc.UpdateMe(c.Request.Context(), p.ID, in.patch())
}

func (h *UserHandler) Create(c *gin.Context, in *CreateUserReq) (*domain.User, error) {
	return h.svc.AdminCreateUser(c.Request.Context(), service.AdminCreateInput{
		Email:     in.Email,
		Password:  in.Password,
		Name:      in.Name,
		Role:      in.Role,
		Bio:       in.Bio,
		AvatarURL: in.AvatarURL,
	})
}

func (h *UserHandler) Get(c *gin.Context, _ *struct{}) (*domain.User, error) {
	return h.find(c, "handler.Get", mdw.ParamIDFrom(c))
}

// Update lets owners edit their own profile fields; only admins may send role,
// even as null.
func (h *UserHandler) Update(c *gin.Context, in *UpdateUserReq) (*domain.User, error) {
	p, ok := mdw.PrincipalFrom(c)
	if !ok {
		return nil, domain.E(domain.KindInvalidToken, "handler.Update", nil)
	}
	if in.Role.Set && !p.IsAdmin() {
		return nil, domain.E(domain.KindForbidden, "handler.Update", nil)
	}
	return h.svc.AdminUpdateUser(c.Request.Context(), mdw.ParamIDFrom(c), in.patch())
}

func (h *UserHandler) Delete(c *gin.Context, _ *struct{}) (struct{}, error) {
	return struct{}{}, h.svc.AdminDeleteUser(c.Request.Context(), mdw.ParamIDFrom(c))
}

func (h *UserHandler) find(c *gin.Context, op string, id uint) (*domain.User, error) {
	u, err := h.svc.GetUserByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.E(domain.KindNotFound, op, nil)
	}
	return u, nil
}
