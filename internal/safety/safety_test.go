package safety

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bvrtu/quakeconnect-data/internal/store"
)

type fakeContacts struct {
	users []store.ContactUser
	err   error
}

func (f *fakeContacts) ListUsersWithContacts(ctx context.Context) ([]store.ContactUser, error) {
	return f.users, f.err
}

type sentPush struct {
	userID string
	title  string
	body   string
}

type fakeGateway struct {
	sent []sentPush
	errs map[string]error
}

func (g *fakeGateway) Send(ctx context.Context, userID, title, body string, data map[string]string) error {
	if err := g.errs[userID]; err != nil {
		return err
	}
	g.sent = append(g.sent, sentPush{userID: userID, title: title, body: body})
	return nil
}

func testBroadcaster(contacts *fakeContacts, gw *fakeGateway) *Broadcaster {
	return NewBroadcaster(contacts, gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBroadcastSend(t *testing.T) {
	contacts := &fakeContacts{users: []store.ContactUser{
		{ID: "u-match", Contacts: []string{"+90 (532) 123-45-67"}},
		{ID: "u-other", Contacts: []string{"+90 555 999 88 77"}},
	}}
	gw := &fakeGateway{}

	notified, err := testBroadcaster(contacts, gw).Send(context.Background(), Broadcast{
		SenderID:     "sender",
		SenderName:   "Ayşe",
		PhoneNumbers: []string{"0532 123 45 67"},
		Location:     "Izmir",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)

	require.Len(t, gw.sent, 1)
	assert.Equal(t, "u-match", gw.sent[0].userID)
	assert.Equal(t, "Safety Update", gw.sent[0].title)
	assert.Equal(t, "Ayşe marked themselves as safe near Izmir", gw.sent[0].body)
}

func TestBroadcastCountryCodeSuffixMatch(t *testing.T) {
	// Contact stored with country code, sender number without.
	contacts := &fakeContacts{users: []store.ContactUser{
		{ID: "u-1", Contacts: []string{"+905321234567"}},
	}}
	gw := &fakeGateway{}

	notified, err := testBroadcaster(contacts, gw).Send(context.Background(), Broadcast{
		SenderID:     "sender",
		PhoneNumbers: []string{"5321234567"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
}

func TestBroadcastNeverNotifiesSender(t *testing.T) {
	contacts := &fakeContacts{users: []store.ContactUser{
		{ID: "sender", Contacts: []string{"5321234567"}},
	}}
	gw := &fakeGateway{}

	notified, err := testBroadcaster(contacts, gw).Send(context.Background(), Broadcast{
		SenderID:     "sender",
		PhoneNumbers: []string{"5321234567"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, notified)
	assert.Empty(t, gw.sent)
}

func TestBroadcastRejectsUnusableNumbers(t *testing.T) {
	_, err := testBroadcaster(&fakeContacts{}, &fakeGateway{}).Send(context.Background(), Broadcast{
		SenderID:     "sender",
		PhoneNumbers: []string{"112", "no digits"},
	})
	require.Error(t, err)
}

func TestBroadcastDeliveryFailureSkipsUser(t *testing.T) {
	contacts := &fakeContacts{users: []store.ContactUser{
		{ID: "u-broken", Contacts: []string{"5321234567"}},
		{ID: "u-ok", Contacts: []string{"5321234567"}},
	}}
	gw := &fakeGateway{errs: map[string]error{"u-broken": errors.New("fcm unavailable")}}

	notified, err := testBroadcaster(contacts, gw).Send(context.Background(), Broadcast{
		SenderID:     "sender",
		PhoneNumbers: []string{"0532 123 45 67"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
}

func TestNormalizeDigits(t *testing.T) {
	assert.Equal(t, "905321234567", NormalizeDigits("+90 (532) 123-45-67"))
	assert.Equal(t, "", NormalizeDigits("no digits here"))
	assert.Equal(t, "112", NormalizeDigits("112"))
}
