package service

import (
	"context"

	"go.uber.org/zap"

	"go-gin-gorm-accounts/internal/core/auth"
	"go-gin-gorm-accounts/internal/domain"
)

type AuthResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService struct {
	repo   domain.UserRepository
	hasher Hasher
	tokens Tokens
	log    *zap.Logger
}

func NewAuthService(repo domain.UserRepository, hasher Hasher, tokens Tokens, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// Register always creates a USER account.
func (s *AuthService) Register(ctx context.Context, email, password string, name *string) (*AuthResult, error) {
	const op = "service.Register"
	exists, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, domain.E(domain.KindEmailTaken, op, nil)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, hashErr(op, err)
	}
	u, err := s.repo.Create(ctx, domain.NewUser{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	res, err := s.issue(op, u)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Uint("user_id", u.ID))
	return res, nil
}

// Login fails with the same InvalidCredentials error, after the same amount of
// hashing work, whether the email is unknown or the password is wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "service.Login"
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.hasher.Burn(password)
		return nil, domain.E(domain.KindInvalidCredentials, op, nil)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, domain.E(domain.KindInvalidCredentials, op, nil)
	}
	user := u.User
	return s.issue(op, &user)
}

// Refresh mints a new pair from a refresh token. Access tokens are refused, and
// the role is re-read from the store so demotions take effect.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "service.Refresh"
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		s.log.Warn("refresh rejected", zap.String("reason", "not a refresh token"), zap.String("sub", claims.Subject))
		return nil, domain.E(domain.KindInvalidToken, op, nil)
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, domain.E(domain.KindInvalidToken, op, err)
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.log.Warn("refresh rejected", zap.String("reason", "user not found"), zap.Uint("user_id", id))
		return nil, domain.E(domain.KindInvalidToken, op, nil)
	}
	access, refresh, err := s.tokens.IssuePair(auth.Subject{ID: u.ID, Role: u.Role})
	if err != nil {
		return nil, domain.E(domain.KindInternal, op, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Me(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.E(domain.KindNotFound, "service.Me", nil)
	}
	return u, nil
}

func (s *AuthService) issue(op string, u *domain.User) (*AuthResult, error) {
	access, refresh, err := s.tokens.IssuePair(auth.Subject{ID: u.ID, Role: u.Role})
	if err != nil {
		return nil, domain.E(domain.KindInternal, op, err)
	}
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}
