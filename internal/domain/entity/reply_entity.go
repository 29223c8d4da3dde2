package entity

import "time"

// Reply is a keyword-triggered canned answer belonging to exactly one bot.
type Reply struct {
	ID         string
	BotBelongs string
	Keywords   []string
	Answer     string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
