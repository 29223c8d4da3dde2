package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"replier/config"
	"replier/internal/domain/repository"
	"replier/pkg/helpers"
	"replier/pkg/mailer"
)

// EmailService issues account tokens and enqueues the corresponding
// delivery jobs. Publishing happens after the token is persisted: a
// failed enqueue surfaces as ErrEmailNotSent but never rolls the token
// back, so delivery can be retried through the resend endpoints.
type EmailService struct {
	Users  repository.UserRepository
	Tokens *TokenService
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewEmailService(users repository.UserRepository, tokens *TokenService, pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *EmailService {
	return &EmailService{Users: users, Tokens: tokens, Pub: pub, Logger: logger, Cfg: cfg}
}

// RequestVerification issues a verification token for the account and
// enqueues the activation email.
func (s *EmailService) RequestVerification(ctx context.Context, email string) error {
	return s.requestTokenEmail(ctx, email, mailer.TemplateVerifyEmail,
		s.Cfg.ActivateAccountURL, s.Cfg.VerifyTokenTTL)
}

// RequestPasswordRecovery issues a recovery token and enqueues the
// reset email. This is the pre-login path: the token alone identifies
// the account.
func (s *EmailService) RequestPasswordRecovery(ctx context.Context, email string) error {
	return s.requestTokenEmail(ctx, email, mailer.TemplateResetPassword,
		s.Cfg.ResetPasswordURL, s.Cfg.ResetTokenTTL)
}

func (s *EmailService) requestTokenEmail(ctx context.Context, email, template, baseURL string, ttl time.Duration) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := s.Tokens.Issue(ctx, u, ttl)
	if err != nil {
		return err
	}

	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Data: map[string]any{
			"Name":      u.FirstName,
			"Link":      baseURL + "/" + token,
			"ExpiresAt": u.ResetExpires.UTC().Format(time.RFC1123),
		},
	}
	return s.publish(ctx, job)
}

// SendChangeNotice notifies the old address that the account email
// moved. The email change is already committed when this runs.
func (s *EmailService) SendChangeNotice(ctx context.Context, name, oldEmail, newEmail string) error {
	job := mailer.EmailJob{
		To:       oldEmail,
		Template: mailer.TemplateEmailChanged,
		Data: map[string]any{
			"Name":     name,
			"NewEmail": newEmail,
		},
	}
	return s.publish(ctx, job)
}

func (s *EmailService) publish(ctx context.Context, job mailer.EmailJob) error {
	if s.Cfg != nil && !s.Cfg.MailSendEnabled {
		if s.Logger != nil {
			s.Logger.WithField("template", job.Template).Debug("mail sending disabled, job dropped")
		}
		return nil
	}
	if s.Pub == nil {
		return ErrEmailNotSent
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("template", job.Template).Error("failed to enqueue email job")
		}
		return ErrEmailNotSent
	}
	return nil
}
