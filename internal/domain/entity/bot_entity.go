package entity

import "time"

// Credentials are the bot's login for the external account it drives.
type Credentials struct {
	Username string
	Password string
}

// Bot is an auto-reply agent bound to one external profile.
// UserCreated is immutable after creation; moderators get mutation
// rights over replies and settings but never ownership.
type Bot struct {
	ID             string
	UserCreated    string
	InstagramURL   string
	Credentials    Credentials
	SessionCookies string
	IsActive       bool
	DefaultReply   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BotSummary is the projection returned by bot listings (no replies,
// no credentials).
type BotSummary struct {
	ID           string
	InstagramURL string
	IsActive     bool
	CreatedAt    time.Time
}
