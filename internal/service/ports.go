package service

import (
	"go-gin-gorm-accounts/internal/core/auth"
	"go-gin-gorm-accounts/internal/domain"
)

// Hasher is satisfied by *auth.Bcrypt.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
	Burn(plain string)
}

// Tokens is satisfied by *auth.TokenService.
type Tokens interface {
	IssuePair(s auth.Subject) (access, refresh string, err error)
	Verify(token string) (*auth.Claims, error)
}

var (
	_ Hasher = (*auth.Bcrypt)(nil)
	_ Tokens = (*auth.TokenService)(nil)
)

// hashErr keeps a hasher's validation error (password too long) and reports
// anything else as internal.
func hashErr(op string, err error) error {
	if domain.KindOf(err) == domain.KindValidation {
		return err
	}
	return domain.E(domain.KindInternal, op, err)
}
