// Package notify delivers push notifications through Firebase Cloud
// Messaging. The gateway resolves a user's device token and silently no-ops
// when none is stored; every payload carries the client routing key and a
// notification channel id.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Notification channel ids registered by the mobile client.
const (
	ChannelEarthquake = "earthquake_channel"
	ChannelCommunity  = "community_channel"
	ChannelGeneral    = "remote_channel"
)

// clickAction routes taps back into the Flutter client.
const clickAction = "FLUTTER_NOTIFICATION_CLICK"

// FCMSender sends push notifications via Firebase Cloud Messaging.
// Nil-safe: when not configured, all methods are no-ops.
type FCMSender struct {
	client *messaging.Client
	logger *slog.Logger
}

// NewFCMSender creates an FCM sender from a service account credentials
// file. Returns nil if credentialsFile is empty (push delivery disabled).
func NewFCMSender(ctx context.Context, credentialsFile string, logger *slog.Logger) (*FCMSender, error) {
	if credentialsFile == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &FCMSender{client: client, logger: logger}, nil
}

// Send delivers one notification to a device token.
func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s == nil {
		return nil // no-op when not configured
	}

	channel := data["channel"]
	if channel == "" {
		channel = ChannelEarthquake
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: channel,
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	s.logger.Debug("fcm message sent", "message_id", id)
	return nil
}
