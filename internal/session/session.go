package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/firewatch/internal/models"
)

// Session is one playback attempt against a camera's stream endpoint. It is
// created in starting state and settles into exactly one of playing or
// stopped. A stopped session is terminal and must be discarded, never
// restarted.
type Session struct {
	ID             uuid.UUID
	TargetEndpoint string
	StartedAt      time.Time

	mu    sync.Mutex
	state models.SessionState
	err   error

	// ready is closed on the first transition out of starting.
	ready chan struct{}
	done  bool
}

func newSession(endpoint string) *Session {
	return &Session{
		ID:             uuid.New(),
		TargetEndpoint: endpoint,
		StartedAt:      time.Now().UTC(),
		state:          models.SessionStarting,
		ready:          make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the failure that ended the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until the session leaves starting or ctx expires. It returns
// nil once the session is playing, or the error that stopped it.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == models.SessionPlaying {
		return nil
	}
	return s.err
}

// settle moves the session out of starting exactly once. Later transitions
// (playing -> stopped) update state without re-closing ready.
func (s *Session) settle(state models.SessionState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.SessionStopped {
		return
	}
	s.state = state
	if err != nil && s.err == nil {
		s.err = err
	}
	if !s.done {
		s.done = true
		close(s.ready)
	}
}
