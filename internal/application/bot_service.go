package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"replier/internal/domain/entity"
	"replier/internal/domain/repository"
)

// BotService implements bot lifecycle, reply collections and moderator
// management. Every operation resolves the acting user by email and
// requires a verified account; ownership and moderator checks happen in
// the storage filters so an inaccessible bot is indistinguishable from
// a missing one.
type BotService struct {
	Users   repository.UserRepository
	Bots    repository.BotRepository
	Replies repository.ReplyRepository
	Logger  *logrus.Logger
}

func NewBotService(users repository.UserRepository, bots repository.BotRepository, replies repository.ReplyRepository, logger *logrus.Logger) *BotService {
	return &BotService{Users: users, Bots: bots, Replies: replies, Logger: logger}
}

// BotDTO is the public projection of a bot. Instagram credentials and
// session cookies never leave the service.
type BotDTO struct {
	ID           string    `json:"id"`
	InstagramURL string    `json:"instagram_url"`
	IsActive     bool      `json:"is_active"`
	DefaultReply string    `json:"default_reply"`
	UserCreated  string    `json:"user_created"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BotSummaryDTO struct {
	ID           string    `json:"id"`
	InstagramURL string    `json:"instagram_url"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type BotListDTO struct {
	Created []BotSummaryDTO `json:"created"`
	Invited []BotSummaryDTO `json:"invited"`
}

type ModeratorDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ReplyDTO struct {
	ID        string    `json:"id"`
	Keywords  []string  `json:"keywords"`
	Answer    string    `json:"answer"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BotRepliesDTO struct {
	Bot        BotDTO         `json:"bot"`
	Moderators []ModeratorDTO `json:"moderators"`
	Replies    []ReplyDTO     `json:"replies"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

func toBotDTO(b *entity.Bot) BotDTO {
	return BotDTO{
		ID:           b.ID,
		InstagramURL: b.InstagramURL,
		IsActive:     b.IsActive,
		DefaultReply: b.DefaultReply,
		UserCreated:  b.UserCreated,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toBotSummaries(in []entity.BotSummary) []BotSummaryDTO {
	out := make([]BotSummaryDTO, 0, len(in))
	for _, b := range in {
		out = append(out, BotSummaryDTO{ID: b.ID, InstagramURL: b.InstagramURL, IsActive: b.IsActive, CreatedAt: b.CreatedAt})
	}
	return out
}

func toReplyDTO(r *entity.Reply) ReplyDTO {
	return ReplyDTO{
		ID:        r.ID,
		Keywords:  r.Keywords,
		Answer:    r.Answer,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// loadVerified resolves the acting user and rejects unverified
// accounts. Every bot operation starts here.
func (s *BotService) loadVerified(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsVerified {
		return nil, ErrUserNotVerified
	}
	return u, nil
}

// GetBots lists the caller's owned and invited bots.
func (s *BotService) GetBots(ctx context.Context, email string) (*BotListDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	owned, err := s.Bots.ListOwned(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	invited, err := s.Bots.ListInvited(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &BotListDTO{Created: toBotSummaries(owned), Invited: toBotSummaries(invited)}, nil
}

type CreateBotInput struct {
	InstagramURL string
	Username     string
	Password     string
	DefaultReply string
}

// CreateBot registers a new bot owned by the caller. The instagram URL
// is unique across all accounts.
func (s *BotService) CreateBot(ctx context.Context, email string, in CreateBotInput) (*BotDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	b := &entity.Bot{
		UserCreated:  u.ID,
		InstagramURL: in.InstagramURL,
		Credentials:  entity.Credentials{Username: in.Username, Password: in.Password},
		DefaultReply: in.DefaultReply,
	}
	if err := s.Bots.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrBotAlreadyExists
		}
		return nil, err
	}
	dto := toBotDTO(b)
	return &dto, nil
}

// ChangeBotActive toggles the bot on or off. Owner or moderator.
func (s *BotService) ChangeBotActive(ctx context.Context, email, botID string, active bool) (*BotDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	b, err := s.Bots.SetActive(ctx, botID, u.ID, active)
	if err != nil {
		return nil, mapBotErr(err)
	}
	dto := toBotDTO(b)
	return &dto, nil
}

// ChangeCredentials replaces the Instagram login and drops any stored
// session cookies, forcing a fresh login with the new pair.
func (s *BotService) ChangeCredentials(ctx context.Context, email, botID, username, password string) (*BotDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	b, err := s.Bots.SetCredentials(ctx, botID, u.ID, entity.Credentials{Username: username, Password: password}, "")
	if err != nil {
		return nil, mapBotErr(err)
	}
	dto := toBotDTO(b)
	return &dto, nil
}

// EditDefaultReply changes the fallback answer sent when no keyword
// matches. Owner or moderator.
func (s *BotService) EditDefaultReply(ctx context.Context, email, botID, text string) (*BotDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	b, err := s.Bots.SetDefaultReply(ctx, botID, u.ID, text)
	if err != nil {
		return nil, mapBotErr(err)
	}
	dto := toBotDTO(b)
	return &dto, nil
}

// DeleteBot removes the bot with its replies and moderator relations.
// Owner only.
func (s *BotService) DeleteBot(ctx context.Context, email, botID string) (*BotDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	b, err := s.Bots.DeleteCascade(ctx, botID, u.ID)
	if err != nil {
		return nil, mapBotErr(err)
	}
	if s.Logger != nil {
		s.Logger.WithField("bot_id", botID).WithField("user_id", u.ID).Info("bot deleted")
	}
	dto := toBotDTO(b)
	return &dto, nil
}

// GetRepliesByBot pages a bot's replies. Any verified user may read;
// write authority is not required here.
func (s *BotService) GetRepliesByBot(ctx context.Context, email, botID string, page, pageSize int) (*BotRepliesDTO, error) {
	if _, err := s.loadVerified(ctx, email); err != nil {
		return nil, err
	}
	b, err := s.Bots.GetByID(ctx, botID)
	if err != nil {
		return nil, mapBotErr(err)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	replies, err := s.Replies.ListByBot(ctx, botID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	mods, err := s.Bots.Moderators(ctx, botID)
	if err != nil {
		return nil, err
	}

	out := &BotRepliesDTO{
		Bot:        toBotDTO(b),
		Moderators: make([]ModeratorDTO, 0, len(mods)),
		Replies:    make([]ReplyDTO, 0, len(replies)),
		Page:       page,
		PageSize:   pageSize,
	}
	for _, m := range mods {
		out.Moderators = append(out.Moderators, ModeratorDTO{ID: m.ID, Email: m.Email, FirstName: m.FirstName, LastName: m.LastName})
	}
	for i := range replies {
		out.Replies = append(out.Replies, toReplyDTO(&replies[i]))
	}
	return out, nil
}

type ReplyInput struct {
	Keywords []string
	Answer   string
}

// AddReply creates a reply after confirming the caller can write to the
// bot and that no active reply of the same bot already covers any of
// the keywords or repeats the answer.
func (s *BotService) AddReply(ctx context.Context, email, botID string, in ReplyInput) (*ReplyDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.Bots.GetForActor(ctx, botID, u.ID); err != nil {
		return nil, mapBotErr(err)
	}
	conflict, err := s.Replies.HasConflict(ctx, botID, in.Keywords, in.Answer, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrReplyAlreadyExists
	}
	r := &entity.Reply{BotBelongs: botID, Keywords: in.Keywords, Answer: in.Answer, IsActive: true}
	if err := s.Replies.Create(ctx, r); err != nil {
		return nil, err
	}
	dto := toReplyDTO(r)
	return &dto, nil
}

// EditReply replaces a reply's keywords and answer. The conflict check
// skips the reply being edited so saving it unchanged succeeds.
func (s *BotService) EditReply(ctx context.Context, email, botID, replyID string, in ReplyInput) (*ReplyDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.Bots.GetForActor(ctx, botID, u.ID); err != nil {
		return nil, mapBotErr(err)
	}
	conflict, err := s.Replies.HasConflict(ctx, botID, in.Keywords, in.Answer, replyID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrReplyAlreadyExists
	}
	r := &entity.Reply{ID: replyID, BotBelongs: botID, Keywords: in.Keywords, Answer: in.Answer}
	if err := s.Replies.Update(ctx, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	dto := toReplyDTO(r)
	return &dto, nil
}

// ChangeReplyActive toggles a single reply without touching the bot's
// own active flag.
func (s *BotService) ChangeReplyActive(ctx context.Context, email, botID, replyID string, active bool) (*ReplyDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.Bots.GetForActor(ctx, botID, u.ID); err != nil {
		return nil, mapBotErr(err)
	}
	r, err := s.Replies.SetActive(ctx, replyID, botID, active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	dto := toReplyDTO(r)
	return &dto, nil
}

// DeleteReply removes a reply from the bot's collection.
func (s *BotService) DeleteReply(ctx context.Context, email, botID, replyID string) (*ReplyDTO, error) {
	u, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.Bots.GetForActor(ctx, botID, u.ID); err != nil {
		return nil, mapBotErr(err)
	}
	r, err := s.Replies.Delete(ctx, replyID, botID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	dto := toReplyDTO(r)
	return &dto, nil
}

// InviteModerator grants write authority over the bot to another
// verified account. Owner only; owners cannot invite themselves.
func (s *BotService) InviteModerator(ctx context.Context, email, botID, inviteeEmail string) (*BotDTO, []ModeratorDTO, error) {
	owner, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	invitee, err := s.Users.GetByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	if !invitee.IsVerified {
		return nil, nil, ErrUserNotVerified
	}
	if invitee.ID == owner.ID {
		return nil, nil, ErrSelfInvite
	}
	b, err := s.Bots.AddModerator(ctx, botID, owner.ID, invitee.ID)
	if err != nil {
		return nil, nil, mapBotErr(err)
	}
	return s.botWithModerators(ctx, b)
}

// RemoveModerator revokes an existing moderator. Owner only.
func (s *BotService) RemoveModerator(ctx context.Context, email, botID, moderatorID string) (*BotDTO, []ModeratorDTO, error) {
	owner, err := s.loadVerified(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.Bots.RemoveModerator(ctx, botID, owner.ID, moderatorID)
	if err != nil {
		return nil, nil, mapBotErr(err)
	}
	return s.botWithModerators(ctx, b)
}

func (s *BotService) botWithModerators(ctx context.Context, b *entity.Bot) (*BotDTO, []ModeratorDTO, error) {
	mods, err := s.Bots.Moderators(ctx, b.ID)
	if err != nil {
		return nil, nil, err
	}
	out := make([]ModeratorDTO, 0, len(mods))
	for _, m := range mods {
		out = append(out, ModeratorDTO{ID: m.ID, Email: m.Email, FirstName: m.FirstName, LastName: m.LastName})
	}
	dto := toBotDTO(b)
	return &dto, out, nil
}

func mapBotErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBotNotFound
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrBotAlreadyExists
	}
	return err
}
