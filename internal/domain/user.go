package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type Profile struct {
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
}

// User is the public shape of an account. It never carries the password hash.
type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Profile   *Profile  `json:"profile"`
}

// UserWithHash is only produced by FindByEmail, for credential checks.
type UserWithHash struct {
	User
	PasswordHash string `json:"-"`
}

type NewUser struct {
	Email        string
	PasswordHash string
	Name         *string
	Role         Role
	Bio          *string
	AvatarURL    *string
}

// UserPatch is the admin partial update. Absent fields are left unchanged,
// null fields are cleared.
type UserPatch struct {
	Name      Patch[string] `json:"name"`
	Role      Patch[Role]   `json:"role"`
	Bio       Patch[string] `json:"bio"`
	AvatarURL Patch[string] `json:"avatarUrl"`
}

// MePatch is the self-service partial update; role and email are not reachable from it.
type MePatch struct {
	Name      Patch[string] `json:"name"`
	Bio       Patch[string] `json:"bio"`
	AvatarURL Patch[string] `json:"avatarUrl"`
}

// AsUserPatch widens a MePatch so adapters can share one update path.
func (p MePatch) AsUserPatch() UserPatch {
	return UserPatch{Name: p.Name, Bio: p.Bio, AvatarURL: p.AvatarURL}
}

func (p UserPatch) TouchesProfile() bool { return p.Bio.Set || p.AvatarURL.Set }

type UserRepository interface {
	Count(ctx context.Context, f UserFilter) (int64, error)
	FindMany(ctx context.Context, q UserQuery) ([]User, error)
	// FindByID returns nil, nil when the id is absent.
	FindByID(ctx context.Context, id uint) (*User, error)
	// FindByEmail returns nil, nil when the email is absent.
	FindByEmail(ctx context.Context, email string) (*UserWithHash, error)
	Create(ctx context.Context, in NewUser) (*User, error)
	Update(ctx context.Context, id uint, p UserPatch) (*User, error)
	UpdateMe(ctx context.Context, id uint, p MePatch) (*User, error)
	// Delete removes the user and its profile; an absent id is ErrNotFound.
	Delete(ctx context.Context, id uint) error
	Ping(ctx context.Context) error
}
