package main

import (
	"context"
	"flag"
	"log"

	"telegram-loyalty-bot/internal/config"
	"telegram-loyalty-bot/internal/infra/db/postgres"
)

// Creates the schema and seeds the default promotion. Safe to re-run: tables
// are created IF NOT EXISTS and the promotion is only inserted when no active
// row exists.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	const schema = `
CREATE TABLE IF NOT EXISTS users (
    telegram_id     BIGINT PRIMARY KEY,
    username        TEXT NOT NULL DEFAULT '',
    first_name      TEXT NOT NULL DEFAULT '',
    last_name       TEXT NOT NULL DEFAULT '',
    purchases_count INT  NOT NULL DEFAULT 0 CHECK (purchases_count >= 0),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS users_username_idx ON users (username);

CREATE TABLE IF NOT EXISTS baristas (
    username   TEXT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name  TEXT NOT NULL DEFAULT '',
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS promotions (
    id                 BIGSERIAL PRIMARY KEY,
    name               TEXT NOT NULL,
    required_purchases INT  NOT NULL CHECK (required_purchases BETWEEN 1 AND 20),
    description        TEXT NOT NULL DEFAULT '',
    is_active          BOOLEAN NOT NULL DEFAULT TRUE
);
`
	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}
	log.Println("schema ready")

	const seedPromotion = `
INSERT INTO promotions (name, required_purchases, description, is_active)
SELECT 'Каждый 7-й напиток бесплатно', 7, 'Покажите QR-код при каждой покупке', TRUE
WHERE NOT EXISTS (SELECT 1 FROM promotions WHERE is_active);
`
	tag, err := pool.Exec(ctx, seedPromotion)
	if err != nil {
		log.Fatalf("seed promotion: %v", err)
	}
	if tag.RowsAffected() > 0 {
		log.Println("default promotion seeded")
	} else {
		log.Println("active promotion already present")
	}
}
