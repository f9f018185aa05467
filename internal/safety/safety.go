// Package safety implements the "I'm safe" broadcast: a user announces
// their status and everyone who registered one of the sender's phone
// numbers as an emergency contact gets notified.
package safety

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bvrtu/quakeconnect-data/internal/notify"
	"github.com/bvrtu/quakeconnect-data/internal/store"
)

// minDigits guards against matching on short fragments like a dialing code.
const minDigits = 7

// Broadcast is one safety announcement.
type Broadcast struct {
	SenderID     string   `json:"sender_id"`
	SenderName   string   `json:"sender_name"`
	PhoneNumbers []string `json:"phone_numbers"`
	Location     string   `json:"location,omitempty"`
}

// ContactStore lists users with registered emergency contacts.
// *store.Store implements it.
type ContactStore interface {
	ListUsersWithContacts(ctx context.Context) ([]store.ContactUser, error)
}

// Gateway delivers one notification to one user's device.
type Gateway interface {
	Send(ctx context.Context, userID, title, body string, data map[string]string) error
}

// Broadcaster resolves contact matches and dispatches notifications.
type Broadcaster struct {
	contacts ContactStore
	gateway  Gateway
	logger   *slog.Logger
}

// NewBroadcaster wires a Broadcaster from its collaborators.
func NewBroadcaster(contacts ContactStore, gateway Gateway, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{contacts: contacts, gateway: gateway, logger: logger}
}

// Send fans the broadcast out to every user whose emergency contacts
// include one of the sender's numbers. Numbers are compared on digits only,
// so formatting and country-code punctuation do not matter. Returns the
// number of users notified.
func (b *Broadcaster) Send(ctx context.Context, bc Broadcast) (int, error) {
	senderNumbers := make(map[string]bool)
	for _, raw := range bc.PhoneNumbers {
		if digits := NormalizeDigits(raw); len(digits) >= minDigits {
			senderNumbers[digits] = true
		}
	}
	if len(senderNumbers) == 0 {
		return 0, fmt.Errorf("no usable phone numbers in broadcast")
	}

	users, err := b.contacts.ListUsersWithContacts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users with contacts: %w", err)
	}

	name := strings.TrimSpace(bc.SenderName)
	if name == "" {
		name = "A contact"
	}
	body := fmt.Sprintf("%s marked themselves as safe", name)
	if bc.Location != "" {
		body += fmt.Sprintf(" near %s", bc.Location)
	}
	data := map[string]string{
		"channel":     notify.ChannelGeneral,
		"channelName": "Safety Updates",
		"payload":     "safety:" + bc.SenderID,
	}

	notified := 0
	for _, user := range users {
		if user.ID == bc.SenderID || !matchesAny(user.Contacts, senderNumbers) {
			continue
		}
		if err := b.gateway.Send(ctx, user.ID, "Safety Update", body, data); err != nil {
			b.logger.Warn("safety notification failed", "user_id", user.ID, "error", err)
			continue
		}
		notified++
	}

	b.logger.Info("safety broadcast dispatched",
		"sender_id", bc.SenderID, "candidates", len(users), "notified", notified)
	return notified, nil
}

// matchesAny reports whether any registered contact matches a sender number
// on its digits. A contact stored with a country code matches the same
// number stored without one when either is a suffix of the other.
func matchesAny(contacts []string, senderNumbers map[string]bool) bool {
	for _, raw := range contacts {
		digits := NormalizeDigits(raw)
		if len(digits) < minDigits {
			continue
		}
		if senderNumbers[digits] {
			return true
		}
		for sender := range senderNumbers {
			if strings.HasSuffix(sender, digits) || strings.HasSuffix(digits, sender) {
				return true
			}
		}
	}
	return false
}

// NormalizeDigits strips everything but decimal digits from a phone number.
func NormalizeDigits(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
