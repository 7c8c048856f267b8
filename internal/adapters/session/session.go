// Package session persists per-viewer display preferences.
//
// A session only carries presentation state (the number display toggle and
// the dataset last viewed); it never holds analytical data.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session stores.
var (
	ErrNotFound  = errors.New("session not found")
	ErrInvalidID = errors.New("session id must not be empty")
)

// DefaultTTL expires idle sessions.
const DefaultTTL = 12 * time.Hour

// Session is the per-viewer display state.
type Session struct {
	ID          string    `json:"id"`
	FullNumbers bool      `json:"full_numbers"`
	DatasetID   string    `json:"dataset_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New returns a session with a fresh random id and abbreviated numbers.
func New() *Session {
	return &Session{ID: uuid.NewString(), UpdatedAt: time.Now().UTC()}
}

// Toggle flips the number display mode.
func (s *Session) Toggle() {
	s.FullNumbers = !s.FullNumbers
	s.UpdatedAt = time.Now().UTC()
}

// Store persists sessions. Save refreshes the session's TTL.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
