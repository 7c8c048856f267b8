package service

import (
	"context"
	"errors"

	"github.com/okian/mailboard/internal/adapters/session"
	"github.com/okian/mailboard/pkg/logger"
)

// NewSession creates a display session with abbreviated numbers.
func (s *Service) NewSession(ctx context.Context) (*session.Session, error) {
	if _, err := s.store(); err != nil {
		return nil, err
	}
	sess := session.New()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "session created", logger.String("session", sess.ID))
	return sess, nil
}

// Session returns the display session id.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	if _, err := s.store(); err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, id)
}

// ToggleDisplay flips the number display mode of session id.
func (s *Service) ToggleDisplay(ctx context.Context, id string) (*session.Session, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Toggle()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "display toggled",
		logger.String("session", id),
		logger.Bool("fullNumbers", sess.FullNumbers),
	)
	return sess, nil
}

// AttachDataset records the dataset a session is viewing.
func (s *Service) AttachDataset(ctx context.Context, sessionID, datasetID string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.DatasetID = datasetID
	return s.sessions.Save(ctx, sess)
}

// FullNumbers reports the display mode of session id. Unknown or empty
// sessions use abbreviated numbers.
func (s *Service) FullNumbers(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}
	sess, err := s.Session(ctx, id)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.Warn(ctx, "session lookup failed", logger.String("session", id), logger.Error(err))
		}
		return false
	}
	return sess.FullNumbers
}
