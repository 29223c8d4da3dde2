package application

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"replier/internal/domain/entity"
	"replier/internal/domain/repository"
)

// In-memory repositories implementing the same contracts as the
// postgres implementations, including the access-filter conflation.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
	bots  *memBotRepo
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entity.User)}
}

func (r *memUserRepo) nextID() string {
	r.seq++
	return "user-" + strconv.Itoa(r.seq)
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	if u.ResetExpires != nil {
		e := *u.ResetExpires
		c.ResetExpires = &e
	}
	return &c
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = r.nextID()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Email != stored.Email {
		for _, other := range r.users {
			if other.ID != u.ID && other.Email == u.Email {
				return repository.ErrDuplicate
			}
		}
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *memUserRepo) GetByResetToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token == "" {
		return nil, repository.ErrNotFound
	}
	for _, u := range r.users {
		if u.ResetToken == token && u.ResetExpires != nil && u.ResetExpires.After(now) {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmailAndToken(_ context.Context, email, token string, now time.Time) (*entity.User, error) {
	u, err := r.GetByResetToken(context.Background(), token, now)
	if err != nil {
		return nil, err
	}
	if u.Email != email {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) BotCounts(_ context.Context, id string) (int, int, error) {
	if r.bots == nil {
		return 0, 0, nil
	}
	r.bots.mu.Lock()
	defer r.bots.mu.Unlock()
	owned, invited := 0, 0
	for _, b := range r.bots.bots {
		if b.UserCreated == id {
			owned++
		}
	}
	for _, mods := range r.bots.moderators {
		if _, ok := mods[id]; ok {
			invited++
		}
	}
	return owned, invited, nil
}

type memBotRepo struct {
	mu         sync.Mutex
	seq        int
	bots       map[string]*entity.Bot
	moderators map[string]map[string]struct{} // bot id -> user ids
	users      *memUserRepo
	replies    *memReplyRepo
}

func newMemBotRepo(users *memUserRepo) *memBotRepo {
	r := &memBotRepo{
		bots:       make(map[string]*entity.Bot),
		moderators: make(map[string]map[string]struct{}),
		users:      users,
	}
	users.bots = r
	return r
}

func (r *memBotRepo) nextID() string {
	r.seq++
	return "bot-" + strconv.Itoa(r.seq)
}

func copyBot(b *entity.Bot) *entity.Bot {
	c := *b
	return &c
}

func (r *memBotRepo) isModerator(botID, userID string) bool {
	mods, ok := r.moderators[botID]
	if !ok {
		return false
	}
	_, ok = mods[userID]
	return ok
}

func (r *memBotRepo) canAct(b *entity.Bot, actorID string) bool {
	return b.UserCreated == actorID || r.isModerator(b.ID, actorID)
}

func (r *memBotRepo) Create(_ context.Context, b *entity.Bot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bots {
		if existing.InstagramURL == b.InstagramURL {
			return repository.ErrDuplicate
		}
	}
	if b.ID == "" {
		b.ID = r.nextID()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.bots[b.ID] = copyBot(b)
	return nil
}

func (r *memBotRepo) GetByID(_ context.Context, id string) (*entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bots[id]; ok {
		return copyBot(b), nil
	}
	return nil, repository.ErrNotFound
}

func (r *memBotRepo) GetForActor(_ context.Context, botID, actorID string) (*entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bots[botID]
	if !ok || !r.canAct(b, actorID) {
		return nil, repository.ErrNotFound
	}
	return copyBot(b), nil
}

func (r *memBotRepo) ListOwned(_ context.Context, userID string) ([]entity.BotSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.BotSummary
	for _, b := range r.bots {
		if b.UserCreated == userID {
			out = append(out, entity.BotSummary{ID: b.ID, InstagramURL: b.InstagramURL, IsActive: b.IsActive, CreatedAt: b.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memBotRepo) ListInvited(_ context.Context, userID string) ([]entity.BotSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.BotSummary
	for botID, mods := range r.moderators {
		if _, ok := mods[userID]; !ok {
			continue
		}
		if b, ok := r.bots[botID]; ok {
			out = append(out, entity.BotSummary{ID: b.ID, InstagramURL: b.InstagramURL, IsActive: b.IsActive, CreatedAt: b.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memBotRepo) Moderators(_ context.Context, botID string) ([]repository.UserRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.UserRef
	for uid := range r.moderators[botID] {
		if u, ok := r.users.users[uid]; ok {
			out = append(out, repository.UserRef{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memBotRepo) SetActive(_ context.Context, botID, actorID string, active bool) (*entity.Bot, error) {
	return r.mutate(botID, actorID, false, func(b *entity.Bot) { b.IsActive = active })
}

func (r *memBotRepo) SetCredentials(_ context.Context, botID, actorID string, creds entity.Credentials, sessionCookies string) (*entity.Bot, error) {
	return r.mutate(botID, actorID, false, func(b *entity.Bot) {
		b.Credentials = creds
		b.SessionCookies = sessionCookies
	})
}

func (r *memBotRepo) SetDefaultReply(_ context.Context, botID, actorID, text string) (*entity.Bot, error) {
	return r.mutate(botID, actorID, false, func(b *entity.Bot) { b.DefaultReply = text })
}

func (r *memBotRepo) mutate(botID, actorID string, ownerOnly bool, fn func(*entity.Bot)) (*entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bots[botID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ownerOnly {
		if b.UserCreated != actorID {
			return nil, repository.ErrNotFound
		}
	} else if !r.canAct(b, actorID) {
		return nil, repository.ErrNotFound
	}
	fn(b)
	b.UpdatedAt = time.Now()
	return copyBot(b), nil
}

func (r *memBotRepo) DeleteCascade(_ context.Context, botID, ownerID string) (*entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bots[botID]
	if !ok || b.UserCreated != ownerID {
		return nil, repository.ErrNotFound
	}
	delete(r.bots, botID)
	delete(r.moderators, botID)
	if r.replies != nil {
		r.replies.deleteByBot(botID)
	}
	return copyBot(b), nil
}

func (r *memBotRepo) AddModerator(_ context.Context, botID, ownerID, userID string) (*entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bots[botID]
	if !ok || b.UserCreated != ownerID || r.isModerator(botID, userID) {
		return nil, repository.ErrNotFound
	}
	if r.moderators[botID] == nil {
		r.moderators[botID] = make(map[string]struct{})
	}
	r.moderators[botID][userID] = struct{}{}
	return copyBot(b), nil
}

func (r *memBotRepo) RemoveModerator(_ context.Context, botID, ownerID, userID string) (*entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bots[botID]
	if !ok || b.UserCreated != ownerID || !r.isModerator(botID, userID) {
		return nil, repository.ErrNotFound
	}
	delete(r.moderators[botID], userID)
	return copyBot(b), nil
}

type memReplyRepo struct {
	mu      sync.Mutex
	seq     int
	replies map[string]*entity.Reply
}

func newMemReplyRepo(bots *memBotRepo) *memReplyRepo {
	r := &memReplyRepo{replies: make(map[string]*entity.Reply)}
	bots.replies = r
	return r
}

func (r *memReplyRepo) nextID() string {
	r.seq++
	return "reply-" + strconv.Itoa(r.seq)
}

func copyReply(x *entity.Reply) *entity.Reply {
	c := *x
	c.Keywords = append([]string(nil), x.Keywords...)
	return &c
}

func (r *memReplyRepo) deleteByBot(botID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, x := range r.replies {
		if x.BotBelongs == botID {
			delete(r.replies, id)
		}
	}
}

func (r *memReplyRepo) Create(_ context.Context, x *entity.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x.ID == "" {
		x.ID = r.nextID()
	}
	x.CreatedAt = time.Now()
	x.UpdatedAt = x.CreatedAt
	r.replies[x.ID] = copyReply(x)
	return nil
}

func (r *memReplyRepo) Update(_ context.Context, x *entity.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.replies[x.ID]
	if !ok || stored.BotBelongs != x.BotBelongs {
		return repository.ErrNotFound
	}
	x.IsActive = stored.IsActive
	x.CreatedAt = stored.CreatedAt
	x.UpdatedAt = time.Now()
	r.replies[x.ID] = copyReply(x)
	return nil
}

func (r *memReplyRepo) SetActive(_ context.Context, replyID, botID string, active bool) (*entity.Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.replies[replyID]
	if !ok || x.BotBelongs != botID {
		return nil, repository.ErrNotFound
	}
	x.IsActive = active
	x.UpdatedAt = time.Now()
	return copyReply(x), nil
}

func (r *memReplyRepo) Delete(_ context.Context, replyID, botID string) (*entity.Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.replies[replyID]
	if !ok || x.BotBelongs != botID {
		return nil, repository.ErrNotFound
	}
	delete(r.replies, replyID)
	return copyReply(x), nil
}

func (r *memReplyRepo) ListByBot(_ context.Context, botID string, offset, limit int) ([]entity.Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []entity.Reply
	for _, x := range r.replies {
		if x.BotBelongs == botID {
			all = append(all, *copyReply(x))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if offset >= len(all) {
		return []entity.Reply{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memReplyRepo) HasConflict(_ context.Context, botID string, keywords []string, answer, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kw := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		kw[k] = struct{}{}
	}
	for _, x := range r.replies {
		if x.BotBelongs != botID || !x.IsActive || x.ID == excludeID {
			continue
		}
		if x.Answer == answer {
			return true, nil
		}
		for _, k := range x.Keywords {
			if _, ok := kw[k]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}

var (
	_ repository.UserRepository  = (*memUserRepo)(nil)
	_ repository.BotRepository   = (*memBotRepo)(nil)
	_ repository.ReplyRepository = (*memReplyRepo)(nil)
)
