package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
	"github.com/bvrtu/quakeconnect-data/internal/geo"
)

// ListSubscribedUsers returns every user with a registered device token. A
// home location is attached only when the user shares it.
func (s *Store) ListSubscribedUsers(ctx context.Context) ([]alert.Subscriber, error) {
	rows, err := s.pool.Query(ctx, "list_subscribed_users")
	if err != nil {
		return nil, fmt.Errorf("list subscribed users: %w", err)
	}
	defer rows.Close()

	var subscribers []alert.Subscriber
	for rows.Next() {
		var (
			sub     alert.Subscriber
			lat     *float64
			lon     *float64
			sharing bool
		)
		if err := rows.Scan(&sub.ID, &lat, &lon, &sharing); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		if sharing && lat != nil && lon != nil {
			sub.Home = &geo.Coordinates{Lat: *lat, Lon: *lon}
		}
		subscribers = append(subscribers, sub)
	}
	return subscribers, rows.Err()
}

// GetPreferences returns the stored notification settings for a user.
// Users without a settings record get the defaults.
func (s *Store) GetPreferences(ctx context.Context, userID string) (alert.UserPreferences, error) {
	prefs := alert.DefaultPreferences()
	err := s.pool.QueryRow(ctx, "get_user_settings", userID).Scan(
		&prefs.PushEnabled, &prefs.MinMagnitude, &prefs.NearbyAlerts, &prefs.CommunityUpdates,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return alert.DefaultPreferences(), nil
	}
	if err != nil {
		return alert.UserPreferences{}, fmt.Errorf("get user settings: %w", err)
	}
	return prefs, nil
}

// GetFCMToken returns the user's device token, empty when none registered.
func (s *Store) GetFCMToken(ctx context.Context, userID string) (string, error) {
	var token *string
	err := s.pool.QueryRow(ctx, "get_fcm_token", userID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get fcm token: %w", err)
	}
	if token == nil {
		return "", nil
	}
	return *token, nil
}

// GetDisplayName returns the user's display name, empty when unset.
func (s *Store) GetDisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, "get_display_name", userID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get display name: %w", err)
	}
	return name, nil
}

// ContactUser is a user with registered emergency contact numbers.
type ContactUser struct {
	ID          string
	DisplayName string
	Contacts    []string
}

// ListUsersWithContacts returns every user with at least one emergency
// contact registered.
func (s *Store) ListUsersWithContacts(ctx context.Context) ([]ContactUser, error) {
	rows, err := s.pool.Query(ctx, "list_users_with_contacts")
	if err != nil {
		return nil, fmt.Errorf("list users with contacts: %w", err)
	}
	defer rows.Close()

	var users []ContactUser
	for rows.Next() {
		var u ContactUser
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Contacts); err != nil {
			return nil, fmt.Errorf("scan contact user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
