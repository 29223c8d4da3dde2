package application

import (
	"context"
	"errors"
	"time"

	"replier/internal/domain/entity"
	"replier/internal/domain/repository"
	"replier/pkg/helpers"
)

// TokenService issues and validates the single-use opaque tokens backing
// account verification, password recovery and email-change flows. The
// token and its absolute expiry live on the User record; consuming a
// token means clearing both fields inside the same update that applies
// the protected mutation.
type TokenService struct {
	Users repository.UserRepository
}

func NewTokenService(users repository.UserRepository) *TokenService {
	return &TokenService{Users: users}
}

// Issue generates a fresh token, stamps it on the user with the given
// lifetime and persists it. A previously issued token is overwritten.
func (s *TokenService) Issue(ctx context.Context, u *entity.User, ttl time.Duration) (string, error) {
	token, err := helpers.GenerateResetToken()
	if err != nil {
		return "", err
	}
	exp := time.Now().Add(ttl)
	u.ResetToken = token
	u.ResetExpires = &exp
	if err := s.Users.Update(ctx, u); err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves the single user holding the token with an expiry
// strictly in the future. Wrong, unknown and expired tokens return the
// same ErrInvalidToken.
func (s *TokenService) Validate(ctx context.Context, token string) (*entity.User, error) {
	u, err := s.Users.GetByResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// ValidateForEmail additionally requires the token to belong to the
// given email, for flows where the caller is already authenticated.
func (s *TokenService) ValidateForEmail(ctx context.Context, email, token string) (*entity.User, error) {
	u, err := s.Users.GetByEmailAndToken(ctx, email, token, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}
