package social

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
	"github.com/bvrtu/quakeconnect-data/internal/notify"
	"github.com/bvrtu/quakeconnect-data/internal/store"
)

// Directory reads the social graph and user state needed for fan-out.
// *store.Store implements it.
type Directory interface {
	GetPost(ctx context.Context, postID string) (store.Post, error)
	PostFollowers(ctx context.Context, authorID string) ([]string, error)
	GetDisplayName(ctx context.Context, userID string) (string, error)
	GetPreferences(ctx context.Context, userID string) (alert.UserPreferences, error)
}

// Gateway delivers one notification to one user's device.
type Gateway interface {
	Send(ctx context.Context, userID, title, body string, data map[string]string) error
}

// Fanout turns one social event into zero or more push notifications.
// Authors never receive notifications about their own activity.
type Fanout struct {
	dir     Directory
	gateway Gateway
	logger  *slog.Logger
}

// NewFanout wires a Fanout from its collaborators.
func NewFanout(dir Directory, gateway Gateway, logger *slog.Logger) *Fanout {
	return &Fanout{dir: dir, gateway: gateway, logger: logger}
}

// HandlePostCreated notifies the author's followers. Only followers with
// push and community updates enabled receive it.
func (f *Fanout) HandlePostCreated(ctx context.Context, ev PostCreated) {
	followers, err := f.dir.PostFollowers(ctx, ev.AuthorID)
	if err != nil {
		f.logger.Warn("resolve followers failed", "post_id", ev.PostID, "error", err)
		return
	}
	if len(followers) == 0 {
		return
	}

	title := "New Community Post"
	if ev.Type == "help_request" {
		title = "Help Request"
	}
	body := fmt.Sprintf("%s: %s", ev.AuthorName, truncate(ev.Message, postPreviewLen))
	data := map[string]string{
		"channel":     notify.ChannelCommunity,
		"channelName": "Community Updates",
		"payload":     "post:" + ev.PostID,
		"postId":      ev.PostID,
	}

	sent := 0
	for _, followerID := range followers {
		if followerID == ev.AuthorID {
			continue
		}
		prefs, err := f.dir.GetPreferences(ctx, followerID)
		if err != nil {
			f.logger.Warn("load preferences failed", "user_id", followerID, "error", err)
			continue
		}
		if !prefs.PushEnabled || !prefs.CommunityUpdates {
			continue
		}
		if err := f.gateway.Send(ctx, followerID, title, body, data); err != nil {
			f.logger.Warn("post notification failed", "user_id", followerID, "error", err)
			continue
		}
		sent++
	}
	f.logger.Info("post notifications dispatched",
		"post_id", ev.PostID, "followers", len(followers), "sent", sent)
}

// HandlePostLiked notifies the post's author, unless they liked their own
// post.
func (f *Fanout) HandlePostLiked(ctx context.Context, ev PostLiked) {
	post, err := f.dir.GetPost(ctx, ev.PostID)
	if err != nil {
		f.logger.Warn("load post failed", "post_id", ev.PostID, "error", err)
		return
	}
	if post.AuthorID == ev.LikerID {
		return
	}

	likerName, err := f.dir.GetDisplayName(ctx, ev.LikerID)
	if err != nil || likerName == "" {
		likerName = "Someone"
	}

	f.sendToAuthor(ctx, post.AuthorID, ev.PostID,
		"New Like", fmt.Sprintf("%s liked your post", likerName))
}

// HandleCommentCreated notifies the post's author, unless they commented on
// their own post.
func (f *Fanout) HandleCommentCreated(ctx context.Context, ev CommentCreated) {
	post, err := f.dir.GetPost(ctx, ev.PostID)
	if err != nil {
		f.logger.Warn("load post failed", "post_id", ev.PostID, "error", err)
		return
	}
	if post.AuthorID == ev.CommenterID {
		return
	}

	commenterName, err := f.dir.GetDisplayName(ctx, ev.CommenterID)
	if err != nil || commenterName == "" {
		commenterName = "Someone"
	}

	f.sendToAuthor(ctx, post.AuthorID, ev.PostID,
		"New Comment",
		fmt.Sprintf("%s commented: %s", commenterName, truncate(ev.Text, commentPreviewLen)))
}

// sendToAuthor delivers an interaction notification, honoring the author's
// push toggle.
func (f *Fanout) sendToAuthor(ctx context.Context, authorID, postID, title, body string) {
	prefs, err := f.dir.GetPreferences(ctx, authorID)
	if err != nil {
		f.logger.Warn("load preferences failed", "user_id", authorID, "error", err)
		return
	}
	if !prefs.PushEnabled {
		return
	}

	data := map[string]string{
		"channel":     notify.ChannelGeneral,
		"channelName": "Social Activity",
		"payload":     "post:" + postID,
		"postId":      postID,
	}
	if err := f.gateway.Send(ctx, authorID, title, body, data); err != nil {
		f.logger.Warn("interaction notification failed",
			"user_id", authorID, "post_id", postID, "error", err)
	}
}
