package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"go-gin-gorm-accounts/internal/domain"
)

const DefaultCost = 10

// Bcrypt hashes with a fixed cost. The zero value uses DefaultCost.
type Bcrypt struct {
	Cost int

	dummyOnce sync.Once
	dummy     []byte
}

func NewBcrypt(cost int) *Bcrypt { return &Bcrypt{Cost: cost} }

func (b *Bcrypt) cost() int {
	if b.Cost == 0 {
		return DefaultCost
	}
	return b.Cost
}

// Hash fails with a validation error for passwords over 72 bytes.
func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost())
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.E(domain.KindValidation, "auth.Hash", err)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify never errors; a malformed hash is a mismatch.
func (b *Bcrypt) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// Burn runs one comparison against a fixed hash of the configured cost, so an
// unknown-email login costs the same as a wrong-password login.
func (b *Bcrypt) Burn(plain string) {
	b.dummyOnce.Do(func() {
		b.dummy, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), b.cost())
	})
	_ = bcrypt.CompareHashAndPassword(b.dummy, []byte(plain))
}
