package application

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replier/internal/domain/entity"
	"replier/pkg/helpers"
)

func newUserService(users *memUserRepo) *UserService {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return NewUserService(users, NewTokenService(users), jwt, nil, logrus.New(), nil, "")
}

func signup(t *testing.T, svc *UserService, email, password string) *UserDTO {
	t.Helper()
	u, err := svc.Signup(context.Background(), SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  password,
	})
	require.NoError(t, err)
	return u
}

func verify(t *testing.T, users *memUserRepo, email string) {
	t.Helper()
	u, err := users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	u.IsVerified = true
	require.NoError(t, users.Update(context.Background(), u))
}

func TestUserService_Signup(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)

	u := signup(t, svc, "ada@b.co", "secret5")
	assert.Equal(t, "ada@b.co", u.Email)
	assert.False(t, u.IsVerified)
	assert.NotEmpty(t, u.ID)

	stored, err := users.GetByEmail(ctx, "ada@b.co")
	require.NoError(t, err)
	assert.NotEqual(t, "secret5", stored.Password) // stored hashed

	_, err = svc.Signup(ctx, SignupInput{FirstName: "Ada", LastName: "L", Email: "ada@b.co", Password: "other"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)
	signup(t, svc, "ada@b.co", "secret5")

	u, err := svc.Login(ctx, "ada@b.co", "secret5")
	require.NoError(t, err)
	assert.Equal(t, "ada@b.co", u.Email)

	// unknown email and wrong password are the same error
	_, wrongPwd := svc.Login(ctx, "ada@b.co", "nope!")
	_, unknown := svc.Login(ctx, "ghost@b.co", "secret5")
	assert.ErrorIs(t, wrongPwd, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPwd.Error(), unknown.Error())
}

func TestUserService_IssueAndRefreshTokens(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)
	u := signup(t, svc, "ada@b.co", "secret5")

	pair, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = svc.Refresh(ctx, pair.AccessToken) // wrong key
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GetMe_Counts(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	bots := newMemBotRepo(users)
	svc := newUserService(users)

	owner := signup(t, svc, "owner@b.co", "secret5")
	mod := signup(t, svc, "mod@b.co", "secret5")

	b := &entity.Bot{UserCreated: owner.ID, InstagramURL: "https://instagram.com/x"}
	require.NoError(t, bots.Create(ctx, b))
	_, err := bots.AddModerator(ctx, b.ID, owner.ID, mod.ID)
	require.NoError(t, err)

	p, err := svc.GetMe(ctx, "owner@b.co")
	require.NoError(t, err)
	assert.Equal(t, 1, p.OwnedBotsQuantity)
	assert.Equal(t, 0, p.InvitedBotsQuantity)

	p, err = svc.GetMe(ctx, "mod@b.co")
	require.NoError(t, err)
	assert.Equal(t, 0, p.OwnedBotsQuantity)
	assert.Equal(t, 1, p.InvitedBotsQuantity)

	_, err = svc.GetMe(ctx, "ghost@b.co")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Edit(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)
	signup(t, svc, "ada@b.co", "secret5")

	u, err := svc.Edit(ctx, "ada@b.co", "Grace", "Hopper")
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.FirstName)
	assert.Equal(t, "Hopper", u.LastName)

	_, err = svc.Edit(ctx, "ghost@b.co", "A", "B")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ActivateAccount(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)
	signup(t, svc, "ada@b.co", "secret5")

	stored, err := users.GetByEmail(ctx, "ada@b.co")
	require.NoError(t, err)
	token, err := svc.Tokens.Issue(ctx, stored, time.Hour)
	require.NoError(t, err)

	u, err := svc.ActivateAccount(ctx, "ada@b.co", token)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)

	// token consumed with the activation, replay fails
	_, err = svc.ActivateAccount(ctx, "ada@b.co", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_ActivateAccount_WrongEmail(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)
	signup(t, svc, "ada@b.co", "secret5")
	signup(t, svc, "eve@b.co", "secret5")

	stored, err := users.GetByEmail(ctx, "ada@b.co")
	require.NoError(t, err)
	token, err := svc.Tokens.Issue(ctx, stored, time.Hour)
	require.NoError(t, err)

	_, err = svc.ActivateAccount(ctx, "eve@b.co", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	eve, err := users.GetByEmail(ctx, "eve@b.co")
	require.NoError(t, err)
	assert.False(t, eve.IsVerified)
}

func TestUserService_ResetPasswordByPassword(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)
	signup(t, svc, "ada@b.co", "secret5")

	err := svc.ResetPasswordByPassword(ctx, "ada@b.co", "wrong", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ResetPasswordByPassword(ctx, "ada@b.co", "secret5", "newsecret"))

	_, err = svc.Login(ctx, "ada@b.co", "secret5")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ada@b.co", "newsecret")
	assert.NoError(t, err)
}

func TestUserService_RecoverPasswordByToken(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)
	signup(t, svc, "ada@b.co", "secret5")

	stored, err := users.GetByEmail(ctx, "ada@b.co")
	require.NoError(t, err)
	token, err := svc.Tokens.Issue(ctx, stored, time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.RecoverPasswordByToken(ctx, token, "newsecret"))

	_, err = svc.Login(ctx, "ada@b.co", "newsecret")
	assert.NoError(t, err)

	// single use
	err = svc.RecoverPasswordByToken(ctx, token, "again")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_ChangeEmail(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newUserService(users)
	signup(t, svc, "ada@b.co", "secret5")
	signup(t, svc, "taken@b.co", "secret5")

	tests := []struct {
		name     string
		newEmail string
		password string
		wantErr  error
	}{
		{"same email rejected", "ada@b.co", "secret5", ErrInvalidCredentials},
		{"wrong password rejected", "fresh@b.co", "nope", ErrInvalidCredentials},
		{"taken email rejected", "taken@b.co", "secret5", ErrUserAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.ChangeEmail(ctx, "ada@b.co", tt.newEmail, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	u, oldEmail, err := svc.ChangeEmail(ctx, "ada@b.co", "fresh@b.co", "secret5")
	require.NoError(t, err)
	assert.Equal(t, "ada@b.co", oldEmail)
	assert.Equal(t, "fresh@b.co", u.Email)

	// old address released, new one resolvable
	_, err = users.GetByEmail(ctx, "ada@b.co")
	assert.Error(t, err)
	_, err = users.GetByEmail(ctx, "fresh@b.co")
	assert.NoError(t, err)
}
