package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"replier/config"
	"replier/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@replier.local"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, is_verified)
		VALUES ($1, $2, 'Demo', 'User', true)
		ON CONFLICT (email) DO UPDATE SET is_verified = true
		RETURNING id
	`, email, hash).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	var botID string
	err = db.QueryRow(`
		INSERT INTO bots (user_created, instagram_url, username, password, default_reply)
		VALUES ($1, 'https://instagram.com/demo_shop', 'demo_shop', 'demo-ig-password', 'Thanks for reaching out, we will reply soon!')
		ON CONFLICT (instagram_url) DO UPDATE SET updated_at = now()
		RETURNING id
	`, userID).Scan(&botID)
	if err != nil {
		log.Fatalf("failed to seed bot: %v", err)
	}
	fmt.Printf("seeded bot: id=%s\n", botID)

	replies := []struct {
		keywords []string
		answer   string
	}{
		{[]string{"price", "cost"}, "Our full price list is at demo.shop/prices"},
		{[]string{"shipping", "delivery"}, "We ship worldwide within 3-5 business days."},
		{[]string{"hours", "open"}, "We are open Mon-Fri 9:00-18:00."},
	}
	for _, r := range replies {
		if _, err := db.Exec(`
			INSERT INTO replies (bot_id, keywords, answer)
			SELECT $1, $2::text[], $3
			WHERE NOT EXISTS (SELECT 1 FROM replies WHERE bot_id = $1 AND answer = $3)
		`, botID, r.keywords, r.answer); err != nil {
			log.Fatalf("failed to seed reply: %v", err)
		}
	}
	fmt.Printf("seeded %d replies\n", len(replies))
}
