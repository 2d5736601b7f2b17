package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-gin-gorm-accounts/internal/domain"
)

const TypeRefresh = "refresh"

type Claims struct {
	Role domain.Role `json:"role"`
	// Typ is "refresh" on refresh tokens and empty on access tokens.
	Typ string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// UserID decodes the numeric subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

func (c *Claims) IsRefresh() bool { return c.Typ == TypeRefresh }

type Subject struct {
	ID   uint
	Role domain.Role
}

type TokenService struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration

	now func() time.Time
}

func (j *TokenService) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}

func (j *TokenService) IssueAccess(s Subject) (string, error) {
	return j.issue(s, "", j.AccessTTL)
}

func (j *TokenService) IssueRefresh(s Subject) (string, error) {
	return j.issue(s, TypeRefresh, j.RefreshTTL)
}

// IssuePair returns an access and a refresh token for the same subject.
func (j *TokenService) IssuePair(s Subject) (access, refresh string, err error) {
	if access, err = j.IssueAccess(s); err != nil {
		return "", "", err
	}
	if refresh, err = j.IssueRefresh(s); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (j *TokenService) issue(s Subject, typ string, ttl time.Duration) (string, error) {
	if len(j.Secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := j.clock()
	claims := Claims{
		Role: s.Role,
		Typ:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(s.ID), 10),
			Issuer:    j.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Verify checks signature and expiry only. Callers distinguish access from
// refresh tokens through Claims.Typ.
func (j *TokenService) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.Leeway),
		jwt.WithTimeFunc(j.clock),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return nil, domain.E(domain.KindInvalidToken, "auth.Verify", err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, domain.E(domain.KindInvalidToken, "auth.Verify", errors.New("invalid token"))
	}
	if _, err := c.UserID(); err != nil {
		return nil, domain.E(domain.KindInvalidToken, "auth.Verify", err)
	}
	return c, nil
}
