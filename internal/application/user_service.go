package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"replier/internal/domain/entity"
	"replier/internal/domain/repository"
	"replier/pkg/helpers"
)

// UserService implements the account lifecycle: signup, login, profile
// edits, verification, password reset and email change. Authorization
// state (isVerified) is always read from the stored record, never from
// the bearer token.
type UserService struct {
	Users        repository.UserRepository
	Tokens       *TokenService
	JWT          *helpers.JWTManager
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(users repository.UserRepository, tokens *TokenService, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{
		Users:        users,
		Tokens:       tokens,
		JWT:          jwt,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

// UserDTO is the public projection of a user. Password and token
// fields are structurally absent, not just omitted.
type UserDTO struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

// ProfileDTO extends UserDTO with bot relationship counts.
type ProfileDTO struct {
	UserDTO
	OwnedBotsQuantity   int `json:"owned_bots_quantity"`
	InvitedBotsQuantity int `json:"invited_bots_quantity"`
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func toUserDTO(u *entity.User) *UserDTO {
	return &UserDTO{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		IsVerified: u.IsVerified,
	}
}

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Signup registers a new unverified account. The uniqueness pre-check
// is advisory; the unique index on users.email is what actually
// guarantees it under concurrent signups.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*UserDTO, error) {
	if existing, err := s.Users.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.indexUser(ctx, u)
	return toUserDTO(u), nil
}

// Login validates credentials. Unknown email and wrong password return
// the identical error.
func (s *UserService) Login(ctx context.Context, email, password string) (*UserDTO, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return toUserDTO(u), nil
}

// IssueTokens generates the access/refresh pair and records a session
// hash in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *UserDTO) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Email, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Email, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := helpers.SessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"sid":        sid,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and both tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, helpers.SessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.IssueTokens(ctx, toUserDTO(u))
}

// Logout drops the Redis session.
func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis != nil {
		s.Redis.Del(ctx, helpers.SessionKey(userID))
	}
}

// GetMe returns the profile projection with bot relationship counts.
func (s *UserService) GetMe(ctx context.Context, email string) (*ProfileDTO, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	owned, invited, err := s.Users.BotCounts(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileDTO{
		UserDTO:             *toUserDTO(u),
		OwnedBotsQuantity:   owned,
		InvitedBotsQuantity: invited,
	}, nil
}

// Edit updates first/last name. ErrUserNotFound covers the race where
// the record vanished between auth and write.
func (s *UserService) Edit(ctx context.Context, email, firstName, lastName string) (*UserDTO, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.FirstName = firstName
	u.LastName = lastName
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.indexUser(ctx, u)
	return toUserDTO(u), nil
}

// ActivateAccount flips isVerified using a token scoped to the
// caller's email, consuming the token in the same update. A second
// call with the same token fails ErrInvalidToken.
func (s *UserService) ActivateAccount(ctx context.Context, email, token string) (*UserDTO, error) {
	u, err := s.Tokens.ValidateForEmail(ctx, email, token)
	if err != nil {
		return nil, err
	}
	u.ClearResetToken()
	u.IsVerified = true
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return toUserDTO(u), nil
}

// ResetPasswordByPassword changes the password of an authenticated user
// after confirming the old one. Wrong old password and unknown account
// are the same error.
func (s *UserService) ResetPasswordByPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	return s.Users.Update(ctx, u)
}

// RecoverPasswordByToken is the unauthenticated recovery path: the
// token alone identifies the account. The token is consumed by the same
// update that stores the new password.
func (s *UserService) RecoverPasswordByToken(ctx context.Context, token, newPassword string) error {
	u, err := s.Tokens.Validate(ctx, token)
	if err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	u.ClearResetToken()
	return s.Users.Update(ctx, u)
}

// ChangeEmail commits the new address immediately after confirming the
// password and returns the old one so the caller can send the notice.
// Reusing the current email and a wrong password fail identically.
func (s *UserService) ChangeEmail(ctx context.Context, email, newEmail, password string) (*UserDTO, string, error) {
	if email == newEmail {
		return nil, "", ErrInvalidCredentials
	}
	if existing, err := s.Users.GetByEmail(ctx, newEmail); err == nil && existing != nil {
		return nil, "", ErrUserAlreadyExists
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	oldEmail := u.Email
	u.Email = newEmail
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", err
	}
	s.indexUser(ctx, u)
	return toUserDTO(u), oldEmail, nil
}

// indexUser mirrors the public projection into Elasticsearch for the
// moderator-invite search. Best effort: failures are logged and never
// fail the request.
func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"is_verified": u.IsVerified,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// SearchUsers runs a multi_match over email and names, used to find
// accounts to invite as moderators.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
