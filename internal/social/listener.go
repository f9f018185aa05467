package social

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Start opens a dedicated connection (not from the pool) and listens on the
// social trigger channels. It reconnects with capped exponential backoff on
// connection loss and blocks until ctx is cancelled. Intended to be called
// with `go`.
func Start(ctx context.Context, dbURL string, fanout *Fanout, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, fanout, logger)
		if ctx.Err() != nil {
			logger.Info("social listener stopped")
			return
		}

		logger.Error("social listener disconnected, reconnecting",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection
// drops or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, fanout *Fanout, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	for _, channel := range []string{ChannelPostCreated, ChannelPostLiked, ChannelCommentCreated} {
		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			return fmt.Errorf("LISTEN %s: %w", channel, err)
		}
	}
	logger.Info("social listener connected")

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		// Handle asynchronously so a slow fan-out never stalls the listener.
		go dispatch(ctx, fanout, notification.Channel, notification.Payload, logger)
	}
}

func dispatch(ctx context.Context, fanout *Fanout, channel, payload string, logger *slog.Logger) {
	switch channel {
	case ChannelPostCreated:
		var ev PostCreated
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			logger.Warn("bad post_created payload", "payload", payload, "error", err)
			return
		}
		fanout.HandlePostCreated(ctx, ev)
	case ChannelPostLiked:
		var ev PostLiked
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			logger.Warn("bad post_liked payload", "payload", payload, "error", err)
			return
		}
		fanout.HandlePostLiked(ctx, ev)
	case ChannelCommentCreated:
		var ev CommentCreated
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			logger.Warn("bad comment_created payload", "payload", payload, "error", err)
			return
		}
		fanout.HandleCommentCreated(ctx, ev)
	default:
		logger.Warn("unknown notification channel", "channel", channel)
	}
}
