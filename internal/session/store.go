// Package session stores server-side session records in Redis so that
// access tokens can be revoked before they expire.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found or expired")

// Record holds the data stored for each session.
type Record struct {
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		prefix: "session:",
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Save stores a session record with an expiration matching the token TTL.
func (s *Store) Save(ctx context.Context, sessionID string, userID int, ttl time.Duration) error {
	data := Record{
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	if err := s.client.Set(ctx, s.key(sessionID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// Lookup retrieves a session record and returns the owning user id.
func (s *Store) Lookup(ctx context.Context, sessionID string) (int, error) {
	jsonData, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup session: %w", err)
	}

	var data Record
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return 0, fmt.Errorf("unmarshal session record: %w", err)
	}

	return data.UserID, nil
}

// Revoke deletes a session record.
func (s *Store) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
