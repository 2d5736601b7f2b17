package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go-gin-gorm-accounts/internal/domain"
)

type record struct {
	user domain.User
	hash string
}

// UserRepo keeps users in process memory. It mirrors the gorm adapter:
// unique email, profile created with the user, cascade delete, and
// ErrNotFound on update or delete of an absent id.
type UserRepo struct {
	mu      sync.RWMutex
	nextID  uint
	items   map[uint]*record
	byEmail map[string]uint
	now     func() time.Time
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo() *UserRepo {
	return &UserRepo{
		nextID:  1,
		items:   make(map[uint]*record),
		byEmail: make(map[string]uint),
		now:     time.Now,
	}
}

func (r *UserRepo) matching(f domain.UserFilter) []domain.User {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.User, 0, len(r.items))
	for _, rec := range r.items {
		u := rec.user
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if search != "" {
			hit := strings.Contains(strings.ToLower(u.Email), search)
			if !hit && u.Name != nil {
				hit = strings.Contains(strings.ToLower(*u.Name), search)
			}
			if !hit {
				continue
			}
		}
		out = append(out, clone(u))
	}
	return out
}

func (r *UserRepo) Count(_ context.Context, f domain.UserFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(f))), nil
}

func (r *UserRepo) FindMany(_ context.Context, q domain.UserQuery) ([]domain.User, error) {
	r.mu.RLock()
	all := r.matching(q.UserFilter)
	r.mu.RUnlock()

	desc := q.SortDir != domain.SortAsc
	slices.SortFunc(all, func(a, b domain.User) int {
		c := compareBy(q.SortField, a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})

	off := q.Offset()
	if off < 0 {
		off = 0
	}
	if off >= len(all) {
		return []domain.User{}, nil
	}
	end := len(all)
	if q.PageSize > 0 && off+q.PageSize < end {
		end = off + q.PageSize
	}
	return all[off:end], nil
}

// compareBy orders NULL names after every value, as postgres does for ASC.
func compareBy(f domain.SortField, a, b domain.User) int {
	switch f {
	case domain.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case domain.SortEmail:
		return cmp.Compare(a.Email, b.Email)
	case domain.SortName:
		switch {
		case a.Name == nil && b.Name == nil:
			return 0
		case a.Name == nil:
			return 1
		case b.Name == nil:
			return -1
		}
		return cmp.Compare(*a.Name, *b.Name)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (r *UserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	u := clone(rec.user)
	return &u, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*domain.UserWithHash, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	rec := r.items[id]
	return &domain.UserWithHash{User: clone(rec.user), PasswordHash: rec.hash}, nil
}

func (r *UserRepo) Create(_ context.Context, in domain.NewUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[in.Email]; taken {
		return nil, domain.E(domain.KindEmailTaken, "memory.Create", nil)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := r.now()
	u := domain.User{
		ID:        r.nextID,
		Email:     in.Email,
		Name:      copyPtr(in.Name),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
		Profile:   &domain.Profile{Bio: copyPtr(in.Bio), AvatarURL: copyPtr(in.AvatarURL)},
	}
	r.nextID++
	r.items[u.ID] = &record{user: u, hash: in.PasswordHash}
	r.byEmail[u.Email] = u.ID
	out := clone(u)
	return &out, nil
}

func (r *UserRepo) Update(_ context.Context, id uint, p domain.UserPatch) (*domain.User, error) {
	return r.apply("memory.Update", id, p)
}

func (r *UserRepo) UpdateMe(_ context.Context, id uint, p domain.MePatch) (*domain.User, error) {
	return r.apply("memory.UpdateMe", id, p.AsUserPatch())
}

func (r *UserRepo) apply(op string, id uint, p domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, op, nil)
	}
	u := &rec.user
	if p.Name.Set {
		u.Name = p.Name.Ptr()
	}
	if p.Role.HasValue() {
		u.Role = p.Role.Value
	}
	if u.Profile == nil {
		u.Profile = &domain.Profile{}
	}
	if p.Bio.Set {
		u.Profile.Bio = p.Bio.Ptr()
	}
	if p.AvatarURL.Set {
		u.Profile.AvatarURL = p.AvatarURL.Ptr()
	}
	if p.Name.Set || p.Role.HasValue() || p.TouchesProfile() {
		u.UpdatedAt = r.now()
	}
	out := clone(*u)
	return &out, nil
}

func (r *UserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return domain.E(domain.KindNotFound, "memory.Delete", nil)
	}
	delete(r.byEmail, rec.user.Email)
	delete(r.items, id)
	return nil
}

func (r *UserRepo) Ping(context.Context) error { return nil }

func clone(u domain.User) domain.User {
	u.Name = copyPtr(u.Name)
	if u.Profile != nil {
		u.Profile = &domain.Profile{Bio: copyPtr(u.Profile.Bio), AvatarURL: copyPtr(u.Profile.AvatarURL)}
	}
	return u
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
