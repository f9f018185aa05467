package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// TokenStore resolves a user's device token; empty string means no device.
type TokenStore interface {
	GetFCMToken(ctx context.Context, userID string) (string, error)
}

// Pusher is the delivery channel behind the gateway. *FCMSender implements
// it; tests substitute a recorder.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// Gateway resolves a user's delivery address and sends a titled message.
// Users without a stored token are silently skipped.
type Gateway struct {
	tokens TokenStore
	pusher Pusher
	logger *slog.Logger
}

// NewGateway wires a Gateway from its collaborators.
func NewGateway(tokens TokenStore, pusher Pusher, logger *slog.Logger) *Gateway {
	return &Gateway{tokens: tokens, pusher: pusher, logger: logger}
}

// Send delivers a notification to the user's device. The data map always
// carries the client routing key and a channel id on the way out.
func (g *Gateway) Send(ctx context.Context, userID, title, body string, data map[string]string) error {
	token, err := g.tokens.GetFCMToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve token for %s: %w", userID, err)
	}
	if token == "" {
		g.logger.Debug("no fcm token for user", "user_id", userID)
		return nil
	}

	payload := make(map[string]string, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["click_action"] = clickAction
	if payload["channel"] == "" {
		payload["channel"] = ChannelEarthquake
	}

	return g.pusher.Send(ctx, token, title, body, payload)
}
