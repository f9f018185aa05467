package social

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
	"github.com/bvrtu/quakeconnect-data/internal/store"
)

type fakeDirectory struct {
	posts     map[string]store.Post
	followers map[string][]string
	names     map[string]string
	prefs     map[string]alert.UserPreferences
}

func (f *fakeDirectory) GetPost(ctx context.Context, postID string) (store.Post, error) {
	p, ok := f.posts[postID]
	if !ok {
		return store.Post{}, errors.New("post not found")
	}
	return p, nil
}

func (f *fakeDirectory) PostFollowers(ctx context.Context, authorID string) ([]string, error) {
	return f.followers[authorID], nil
}

func (f *fakeDirectory) GetDisplayName(ctx context.Context, userID string) (string, error) {
	return f.names[userID], nil
}

func (f *fakeDirectory) GetPreferences(ctx context.Context, userID string) (alert.UserPreferences, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return alert.DefaultPreferences(), nil
}

type sentPush struct {
	userID string
	title  string
	body   string
	data   map[string]string
}

type recordingGateway struct {
	sent []sentPush
}

func (g *recordingGateway) Send(ctx context.Context, userID, title, body string, data map[string]string) error {
	g.sent = append(g.sent, sentPush{userID: userID, title: title, body: body, data: data})
	return nil
}

func testFanout(dir *fakeDirectory, gw *recordingGateway) *Fanout {
	return NewFanout(dir, gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandlePostCreated(t *testing.T) {
	communityOff := alert.DefaultPreferences()
	communityOff.CommunityUpdates = false
	pushOff := alert.DefaultPreferences()
	pushOff.PushEnabled = false

	dir := &fakeDirectory{
		followers: map[string][]string{
			"author": {"f-1", "f-community-off", "f-push-off", "author"},
		},
		prefs: map[string]alert.UserPreferences{
			"f-community-off": communityOff,
			"f-push-off":      pushOff,
		},
	}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandlePostCreated(context.Background(), PostCreated{
		PostID:     "p-1",
		AuthorID:   "author",
		AuthorName: "Ayşe",
		Type:       "update",
		Message:    "Kandilli'ye göre durum sakin",
	})

	require.Len(t, gw.sent, 1)
	push := gw.sent[0]
	assert.Equal(t, "f-1", push.userID)
	assert.Equal(t, "New Community Post", push.title)
	assert.Equal(t, "Ayşe: Kandilli'ye göre durum sakin", push.body)
	assert.Equal(t, "community_channel", push.data["channel"])
	assert.Equal(t, "post:p-1", push.data["payload"])
}

func TestHandlePostCreatedHelpRequestTitle(t *testing.T) {
	dir := &fakeDirectory{followers: map[string][]string{"author": {"f-1"}}}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandlePostCreated(context.Background(), PostCreated{
		PostID:   "p-1",
		AuthorID: "author",
		Type:     "help_request",
		Message:  "Su lazım",
	})

	require.Len(t, gw.sent, 1)
	assert.Equal(t, "Help Request", gw.sent[0].title)
}

func TestHandlePostCreatedTruncatesLongMessages(t *testing.T) {
	dir := &fakeDirectory{followers: map[string][]string{"author": {"f-1"}}}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandlePostCreated(context.Background(), PostCreated{
		PostID:     "p-1",
		AuthorID:   "author",
		AuthorName: "Ali",
		Message:    strings.Repeat("a", 200),
	})

	require.Len(t, gw.sent, 1)
	assert.Equal(t, "Ali: "+strings.Repeat("a", 80)+"...", gw.sent[0].body)
}

func TestHandlePostLiked(t *testing.T) {
	dir := &fakeDirectory{
		posts: map[string]store.Post{"p-1": {AuthorID: "author"}},
		names: map[string]string{"liker": "Mehmet"},
	}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandlePostLiked(context.Background(), PostLiked{PostID: "p-1", LikerID: "liker"})

	require.Len(t, gw.sent, 1)
	push := gw.sent[0]
	assert.Equal(t, "author", push.userID)
	assert.Equal(t, "New Like", push.title)
	assert.Equal(t, "Mehmet liked your post", push.body)
	assert.Equal(t, "remote_channel", push.data["channel"])
}

func TestHandlePostLikedSelfLikeIgnored(t *testing.T) {
	dir := &fakeDirectory{posts: map[string]store.Post{"p-1": {AuthorID: "author"}}}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandlePostLiked(context.Background(), PostLiked{PostID: "p-1", LikerID: "author"})
	assert.Empty(t, gw.sent)
}

func TestHandlePostLikedAnonymousLiker(t *testing.T) {
	dir := &fakeDirectory{posts: map[string]store.Post{"p-1": {AuthorID: "author"}}}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandlePostLiked(context.Background(), PostLiked{PostID: "p-1", LikerID: "unknown"})

	require.Len(t, gw.sent, 1)
	assert.Equal(t, "Someone liked your post", gw.sent[0].body)
}

func TestHandleCommentCreated(t *testing.T) {
	dir := &fakeDirectory{
		posts: map[string]store.Post{"p-1": {AuthorID: "author"}},
		names: map[string]string{"commenter": "Zeynep"},
	}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandleCommentCreated(context.Background(), CommentCreated{
		PostID:      "p-1",
		CommenterID: "commenter",
		Text:        "Geçmiş olsun, iyi misiniz?",
	})

	require.Len(t, gw.sent, 1)
	assert.Equal(t, "New Comment", gw.sent[0].title)
	assert.Equal(t, "Zeynep commented: Geçmiş olsun, iyi misiniz?", gw.sent[0].body)
}

func TestHandleCommentCreatedSelfCommentIgnored(t *testing.T) {
	dir := &fakeDirectory{posts: map[string]store.Post{"p-1": {AuthorID: "author"}}}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandleCommentCreated(context.Background(), CommentCreated{
		PostID:      "p-1",
		CommenterID: "author",
		Text:        "kendime not",
	})
	assert.Empty(t, gw.sent)
}

func TestAuthorPushToggleBlocksInteractionNotifications(t *testing.T) {
	off := alert.DefaultPreferences()
	off.PushEnabled = false
	dir := &fakeDirectory{
		posts: map[string]store.Post{"p-1": {AuthorID: "author"}},
		prefs: map[string]alert.UserPreferences{"author": off},
	}
	gw := &recordingGateway{}

	testFanout(dir, gw).HandlePostLiked(context.Background(), PostLiked{PostID: "p-1", LikerID: "liker"})
	assert.Empty(t, gw.sent)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "kısa", truncate("kısa", 80))
	assert.Equal(t, "çğış...", truncate("çğışöü", 4)) // rune-safe
	assert.Equal(t, "trimmed", truncate("  trimmed  ", 80))
}
