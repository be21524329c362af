package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/observability"
)

var (
	// ErrInvalidEndpoint is returned when the endpoint does not parse as a URI.
	ErrInvalidEndpoint = errors.New("invalid stream endpoint")
	// ErrPlaybackFailed is returned when the player cannot open the endpoint
	// or the stream ends on its own.
	ErrPlaybackFailed = errors.New("playback failed")
	// ErrStopped is reported by Wait when the session was stopped before it
	// reached playing.
	ErrStopped = errors.New("session stopped")
)

// Player is the media playback collaborator. Open blocks until the endpoint
// is ready or fails; it must honor ctx cancellation. Done reports when an
// opened player ends on its own (stream drop, process exit); it may return
// nil to mean "never". Close releases the underlying playback resource and
// is safe to call at any point after Open was attempted.
type Player interface {
	Open(ctx context.Context, endpoint string) error
	Done() <-chan error
	Close()
}

// PlayerFactory builds a fresh player per session. Players are single-use,
// like the sessions that own them.
type PlayerFactory func() Player

type activeSession struct {
	session *Session
	player  Player
	cancel  context.CancelFunc
}

// Manager owns at most one playback session at a time. Starting a new
// session stops the previous one first; there is never more than one player
// holding a stream.
type Manager struct {
	newPlayer PlayerFactory

	mu      sync.Mutex
	current *activeSession
}

func NewManager(factory PlayerFactory) *Manager {
	return &Manager{newPlayer: factory}
}

// Start begins playback of the given endpoint. The returned session is in
// starting state; it transitions to playing when the player reports ready,
// or to stopped when opening fails. Callers observe the outcome via Wait.
// There is no automatic retry: a failed session is terminal and re-invoking
// Start is the caller's decision.
//
// The session's lifetime is owned by the manager, not the caller: ctx is
// detached from cancellation so a short-lived request context cannot tear
// the stream down after Start returns. Only Stop (or a replacing Start, or
// the player ending on its own) ends a session.
func (m *Manager) Start(ctx context.Context, endpoint string) (*Session, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	sess := newSession(endpoint)
	openCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	active := &activeSession{
		session: sess,
		player:  m.newPlayer(),
		cancel:  cancel,
	}

	// Single-session discipline: the teardown of the previous session and
	// the installation of the new one happen under one lock acquisition, so
	// concurrent Starts cannot displace a session without stopping it.
	m.mu.Lock()
	m.stopLocked()
	m.current = active
	m.mu.Unlock()

	observability.ActiveSessions.Set(1)
	slog.Info("session starting", "session_id", sess.ID, "endpoint", endpoint)

	go m.open(openCtx, active)

	return sess, nil
}

// open drives the session from starting to its terminal outcome, then keeps
// watching the player so a stream that drops on its own settles the session
// instead of leaving it reported as playing.
func (m *Manager) open(ctx context.Context, active *activeSession) {
	err := active.player.Open(ctx, active.session.TargetEndpoint)

	m.mu.Lock()
	if m.current != active {
		// Stopped or replaced while opening; stopLocked already settled the
		// session and released the player.
		m.mu.Unlock()
		return
	}
	if err != nil {
		m.current = nil
	}
	m.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			active.session.settle(models.SessionStopped, ErrStopped)
		} else {
			active.session.settle(models.SessionStopped, fmt.Errorf("%w: %v", ErrPlaybackFailed, err))
		}
		active.player.Close()
		observability.ActiveSessions.Set(0)
		slog.Warn("session failed to open", "session_id", active.session.ID, "error", err)
		return
	}

	active.session.settle(models.SessionPlaying, nil)
	slog.Info("session playing", "session_id", active.session.ID)

	select {
	case <-ctx.Done():
		// Stop or a replacing Start tore the session down.
		return
	case perr := <-active.player.Done():
		m.mu.Lock()
		if m.current != active {
			m.mu.Unlock()
			return
		}
		m.current = nil
		m.mu.Unlock()

		active.cancel()
		if perr == nil {
			perr = errors.New("stream ended")
		}
		active.session.settle(models.SessionStopped, fmt.Errorf("%w: %v", ErrPlaybackFailed, perr))
		active.player.Close()
		observability.ActiveSessions.Set(0)
		slog.Warn("session ended", "session_id", active.session.ID, "error", perr)
	}
}

// Stop tears down the current session, if any. It aborts a pending open,
// releases the player and leaves the session in terminal stopped state.
// Calling Stop with no active session is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopLocked()
	m.mu.Unlock()
}

// stopLocked tears down the current session. Callers hold m.mu.
func (m *Manager) stopLocked() {
	active := m.current
	m.current = nil
	if active == nil {
		return
	}

	active.cancel()
	active.session.settle(models.SessionStopped, ErrStopped)
	active.player.Close()
	observability.ActiveSessions.Set(0)
	slog.Info("session stopped", "session_id", active.session.ID)
}

// Current returns the active session, or nil when idle.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return m.current.session
}
