package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Post is the subset of a community post needed for notification fan-out.
type Post struct {
	AuthorID   string
	AuthorName string
	Type       string
	Message    string
}

// GetPost loads one post by id.
func (s *Store) GetPost(ctx context.Context, postID string) (Post, error) {
	var p Post
	err := s.pool.QueryRow(ctx, "get_post", postID).Scan(
		&p.AuthorID, &p.AuthorName, &p.Type, &p.Message)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, fmt.Errorf("post %s not found", postID)
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// PostFollowers returns the ids of users following the post's author.
func (s *Store) PostFollowers(ctx context.Context, authorID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, "post_followers", authorID)
	if err != nil {
		return nil, fmt.Errorf("post followers: %w", err)
	}
	defer rows.Close()

	var followers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan follower: %w", err)
		}
		followers = append(followers, id)
	}
	return followers, rows.Err()
}
