package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KurtDeGreeff/habitat/internal/account"
	"github.com/KurtDeGreeff/habitat/pkg/cache"
)

var ErrNotFound = errors.New("session not found")

// Session binds an authenticated account to its GitHub access token for
// the lifetime of a login. Expiry is enforced by the cache TTL.
type Session struct {
	ID        string          `json:"id"`
	Account   account.Account `json:"account"`
	Token     string          `json:"token"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store keeps sessions in a shared cache so any instance can resolve them.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Create mints a session with a random ID and writes it with the store TTL.
func (s *Store) Create(ctx context.Context, acct account.Account, token string) (*Session, error) {
	id, err := randomID(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	sess := &Session{
		ID:        id,
		Account:   acct,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.cache.Set(ctx, key(id), string(payload), s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

// Get resolves a session ID; expired and unknown IDs both come back as
// ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.cache.Get(ctx, key(id))
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

// Delete logs a session out. Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.cache.Del(ctx, key(id))
}

func key(id string) string {
	return "session:" + id
}

func randomID(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
