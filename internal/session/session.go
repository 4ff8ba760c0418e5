// Package session persists the logged-in viewer between invocations: who they
// are, whether they are an administrator, and their last search query.
//
// Two stores are provided: FileStore writes a YAML file (the default), and
// RedisStore keeps the session in a Redis hash so several machines can share it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Session is the persisted state of the logged-in viewer.
type Session struct {
	UserID      string    `yaml:"user_id"`
	Username    string    `yaml:"username,omitempty"`
	IsAdmin     bool      `yaml:"is_admin"`
	IDToken     string    `yaml:"id_token,omitempty"`
	SearchQuery string    `yaml:"search_query,omitempty"`
	LoggedInAt  time.Time `yaml:"logged_in_at"`
}

// Validate checks that the session identifies a user.
func (s *Session) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("session user ID cannot be empty")
	}
	return nil
}

// Store loads and saves the session.
type Store interface {
	// Load returns the current session, or ErrNoSession.
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	// Clear removes the session. Clearing an absent session is not an error.
	Clear(ctx context.Context) error
}

// Viewer returns the logged-in user ID, or "" when nobody is logged in.
// Errors other than ErrNoSession are returned.
func Viewer(ctx context.Context, store Store) (string, error) {
	s, err := store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}

// SaveQuery remembers query as the last search of the logged-in viewer.
// Without a session this is a no-op.
func SaveQuery(ctx context.Context, store Store, query string) error {
	s, err := store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	s.SearchQuery = query
	return store.Save(ctx, s)
}

// toHash converts a session to Redis hash fields.
func toHash(s *Session) map[string]interface{} {
	return map[string]interface{}{
		"user_id":      s.UserID,
		"username":     s.Username,
		"is_admin":     strconv.FormatBool(s.IsAdmin),
		"id_token":     s.IDToken,
		"search_query": s.SearchQuery,
		"logged_in_at": s.LoggedInAt.UTC().Format(time.RFC3339),
	}
}

// fromHash converts Redis hash fields back to a session.
func fromHash(hash map[string]string) (*Session, error) {
	s := &Session{
		UserID:      hash["user_id"],
		Username:    hash["username"],
		IDToken:     hash["id_token"],
		SearchQuery: hash["search_query"],
	}

	if v := hash["is_admin"]; v != "" {
		admin, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid is_admin value %q: %w", v, err)
		}
		s.IsAdmin = admin
	}

	if v := hash["logged_in_at"]; v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid logged_in_at value %q: %w", v, err)
		}
		s.LoggedInAt = t
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
