package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/sirupsen/logrus"
)

// Open connects the ticket store. driver is "postgres" (lib/pq) or
// "sqlite" (modernc); both are registered by the importing binary.
func Open(driver, dsn string) (*dbx.DB, error) {
	db, err := dbx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.DB().PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logrus.WithField("driver", driver).Info("connected to database")
	return db, nil
}

// schema is written in the portable subset both drivers accept. All
// cross-request invariants hang off the two UNIQUE constraints and the
// conditional updates in the repositories, not off triggers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date TIMESTAMP NOT NULL,
		price TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		sold_count INTEGER NOT NULL DEFAULT 0,
		location_name TEXT NOT NULL,
		location_address TEXT NOT NULL,
		location_maps_url TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		published BOOLEAN NOT NULL DEFAULT FALSE,
		payment_mode TEXT NOT NULL DEFAULT 'standard',
		payment_link TEXT NOT NULL DEFAULT '',
		external_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		event_id TEXT NOT NULL REFERENCES events (id),
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		provider_session_id TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		scanned BOOLEAN NOT NULL DEFAULT FALSE,
		scanned_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_event_id ON tickets (event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_session_id ON tickets (provider_session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (payment_status)`,
}

// Migrate applies the schema. Statements are idempotent so startup can
// always run the full list.
func Migrate(db *dbx.DB) error {
	for _, stmt := range schema {
		if _, err := db.NewQuery(stmt).Execute(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
