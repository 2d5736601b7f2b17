package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-gin-gorm-accounts/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ListUsersQuery struct {
	Page     int
	PageSize int
	Role     *domain.Role
	Search   string
	Sort     string
}

type AdminCreateInput struct {
	Email     string
	Password  string
	Name      *string
	Role      domain.Role
	Bio       *string
	AvatarURL *string
}

type UserService struct {
	repo   domain.UserRepository
	hasher Hasher
	log    *zap.Logger
}

func NewUserService(repo domain.UserRepository, hasher Hasher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: repo, hasher: hasher, log: log}
}

// ListUsers runs the count and the page query concurrently over the same filter.
func (s *UserService) ListUsers(ctx context.Context, q ListUsersQuery) (domain.Paginated[domain.User], error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	field, dir := ParseSort(q.Sort)
	filter := domain.UserFilter{Role: q.Role, Search: strings.TrimSpace(q.Search)}

	var (
		total int64
		items []domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx, filter)
		total = n
		return err
	})
	g.Go(func() error {
		us, err := s.repo.FindMany(gctx, domain.UserQuery{
			UserFilter: filter,
			Page:       q.Page,
			PageSize:   q.PageSize,
			SortField:  field,
			SortDir:    dir,
		})
		items = us
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Paginated[domain.User]{}, err
	}
	return domain.NewPaginated(q.Page, q.PageSize, total, items), nil
}

// GetUserByID returns nil, nil when the id is absent.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) UpdateMe(ctx context.Context, id uint, p domain.MePatch) (*domain.User, error) {
	return s.repo.UpdateMe(ctx, id, p)
}

// AdminCreateUser checks the email first for a fast EmailTaken; the store's
// unique index still decides races.
func (s *UserService) AdminCreateUser(ctx context.Context, in AdminCreateInput) (*domain.User, error) {
	exists, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, domain.E(domain.KindEmailTaken, "service.AdminCreateUser", nil)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, hashErr("service.AdminCreateUser", err)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	u, err := s.repo.Create(ctx, domain.NewUser{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         role,
		Bio:          in.Bio,
		AvatarURL:    in.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("admin created user", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// AdminUpdateUser does not authorize the role change; callers gate it.
func (s *UserService) AdminUpdateUser(ctx context.Context, id uint, p domain.UserPatch) (*domain.User, error) {
	u, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if p.Role.HasValue() {
		s.log.Info("user role updated", zap.Uint("user_id", id), zap.String("role", string(p.Role.Value)))
	}
	return u, nil
}

func (s *UserService) AdminDeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("admin deleted user", zap.Uint("user_id", id))
	return nil
}

// EnsureAdmin creates an ADMIN account unless the email is already present,
// in which case the existing account is returned untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, in AdminCreateInput) (u *domain.User, created bool, err error) {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return &existing.User, false, nil
	}
	in.Role = domain.RoleAdmin
	u, err = s.AdminCreateUser(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
