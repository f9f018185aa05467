// Package social fans community interaction events out as push
// notifications. Events arrive over Postgres LISTEN/NOTIFY from triggers on
// the posts, post_likes, and post_comments tables.
package social

import (
	"strings"
	"unicode/utf8"
)

// Notify channels fired by the database triggers.
const (
	ChannelPostCreated    = "post_created"
	ChannelPostLiked      = "post_liked"
	ChannelCommentCreated = "comment_created"
)

// Body previews are truncated so a long post never overflows the
// notification shade.
const (
	postPreviewLen    = 80
	commentPreviewLen = 200
)

// PostCreated is the payload of pg_notify('post_created', ...).
type PostCreated struct {
	PostID     string `json:"post_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

// PostLiked is the payload of pg_notify('post_liked', ...).
type PostLiked struct {
	PostID  string `json:"post_id"`
	LikerID string `json:"liker_id"`
}

// CommentCreated is the payload of pg_notify('comment_created', ...).
type CommentCreated struct {
	PostID      string `json:"post_id"`
	CommenterID string `json:"commenter_id"`
	Text        string `json:"text"`
}

// truncate shortens s to at most max runes, marking the cut with an
// ellipsis.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
