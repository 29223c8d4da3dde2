package application

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replier/config"
)

func newEmailService(users *memUserRepo, sendEnabled bool) *EmailService {
	cfg := &config.Config{
		MailSendEnabled:    sendEnabled,
		VerifyTokenTTL:     time.Hour,
		ResetTokenTTL:      time.Hour,
		ActivateAccountURL: "https://app.local/activate",
		ResetPasswordURL:   "https://app.local/reset",
	}
	return NewEmailService(users, NewTokenService(users), nil, logrus.New(), cfg)
}

func TestEmailService_RequestVerification_IssuesToken(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := newEmailService(users, false)
	seedUser(t, users, "ada@b.co", false)

	require.NoError(t, svc.RequestVerification(ctx, "ada@b.co"))

	stored, err := users.GetByEmail(ctx, "ada@b.co")
	require.NoError(t, err)
	assert.True(t, stored.HasResetToken())
	assert.True(t, stored.ResetExpires.After(time.Now()))
}

func TestEmailService_RequestPasswordRecovery_UnknownUser(t *testing.T) {
	users := newMemUserRepo()
	svc := newEmailService(users, false)

	err := svc.RequestPasswordRecovery(context.Background(), "ghost@b.co")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEmailService_PublishFailureKeepsToken(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	// sending enabled but no publisher wired: enqueue fails
	svc := newEmailService(users, true)
	seedUser(t, users, "ada@b.co", false)

	err := svc.RequestVerification(ctx, "ada@b.co")
	assert.ErrorIs(t, err, ErrEmailNotSent)

	// the token survives the failed enqueue so a resend can reuse the flow
	stored, gerr := users.GetByEmail(ctx, "ada@b.co")
	require.NoError(t, gerr)
	assert.True(t, stored.HasResetToken())
}

func TestEmailService_SendChangeNotice_Disabled(t *testing.T) {
	users := newMemUserRepo()
	svc := newEmailService(users, false)

	err := svc.SendChangeNotice(context.Background(), "Ada", "old@b.co", "new@b.co")
	assert.NoError(t, err)
}
