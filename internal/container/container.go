package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"replier/config"
	"replier/internal/application"
	"replier/internal/domain/repository"
	"replier/internal/infrastructure/postgres"
	"replier/pkg/helpers"
	"replier/pkg/mailer"
)

// Container holds the constructed components shared across the app.
// It is built once in main and passed down explicitly; nothing in here
// is reachable through package globals.
type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger

	PGPool *pgxpool.Pool
	Redis  *redis.Client
	ES     *elasticsearch.Client

	JWT       *helpers.JWTManager
	Mailgun   *mailer.Mailgun
	RabbitPub *helpers.RabbitPublisher

	UserRepo  repository.UserRepository
	BotRepo   repository.BotRepository
	ReplyRepo repository.ReplyRepository

	Tokens *application.TokenService
	Users  *application.UserService
	Bots   *application.BotService
	Emails *application.EmailService
}

// New wires repositories and services on top of the already connected
// clients.
func New(cfg *config.Config, logger *logrus.Logger, pool *pgxpool.Pool, rdb *redis.Client, es *elasticsearch.Client, jwt *helpers.JWTManager, mg *mailer.Mailgun, pub *helpers.RabbitPublisher) *Container {
	c := &Container{
		Cfg:       cfg,
		Logger:    logger,
		PGPool:    pool,
		Redis:     rdb,
		ES:        es,
		JWT:       jwt,
		Mailgun:   mg,
		RabbitPub: pub,
	}

	c.UserRepo = postgres.NewUserRepository(pool)
	c.BotRepo = postgres.NewBotRepository(pool)
	c.ReplyRepo = postgres.NewReplyRepository(pool)

	c.Tokens = application.NewTokenService(c.UserRepo)
	c.Users = application.NewUserService(c.UserRepo, c.Tokens, jwt, rdb, logger, es, cfg.ESUsersIndex)
	c.Bots = application.NewBotService(c.UserRepo, c.BotRepo, c.ReplyRepo, logger)
	c.Emails = application.NewEmailService(c.UserRepo, c.Tokens, pub, logger, cfg)

	return c
}
