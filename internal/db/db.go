// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bvrtu/quakeconnect-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API, alert, and
// news layers use. Prepared statements eliminate parse overhead on every
// scheduled run.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Users and preferences
		"list_subscribed_users": "SELECT id, home_lat, home_lon, location_sharing FROM users WHERE fcm_token IS NOT NULL",
		"get_user_settings":     "SELECT push_enabled, min_magnitude, nearby_alerts, community_updates FROM user_settings WHERE user_id = $1",
		"get_fcm_token":         "SELECT fcm_token FROM users WHERE id = $1",
		"get_display_name":      "SELECT COALESCE(display_name, '') FROM users WHERE id = $1",

		// Sent earthquake notifications (dedup keyed on user + earthquake)
		"sent_notification_exists": "SELECT 1 FROM sent_notifications WHERE user_id = $1 AND earthquake_id = $2",
		"insert_sent_notification": `
			INSERT INTO sent_notifications (user_id, earthquake_id, magnitude, location, sent_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (user_id, earthquake_id) DO NOTHING`,

		// Earthquake news matches (idempotent on earthquake + url)
		"list_match_urls": "SELECT url FROM earthquake_news WHERE earthquake_id = $1",
		"insert_news_match": `
			INSERT INTO earthquake_news (id, earthquake_id, url, title, source, published_at, image_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			ON CONFLICT (earthquake_id, url) DO NOTHING`,
		"list_news_matches": `
			SELECT id, url, title, source, published_at, image_url, created_at
			FROM earthquake_news WHERE earthquake_id = $1
			ORDER BY published_at DESC NULLS LAST`,

		// Safety broadcast
		"list_users_with_contacts": `
			SELECT id, COALESCE(display_name, ''), emergency_contacts
			FROM users
			WHERE emergency_contacts IS NOT NULL AND cardinality(emergency_contacts) > 0`,

		// Social fan-out
		"get_post":       "SELECT author_id, COALESCE(author_name, ''), COALESCE(type, ''), COALESCE(message, '') FROM posts WHERE id = $1",
		"post_followers": "SELECT follower_id FROM user_follows WHERE followed_id = $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
