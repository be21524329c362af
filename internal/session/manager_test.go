package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/your-org/firewatch/internal/models"
)

// fakePlayer stands in for the media collaborator.
type fakePlayer struct {
	openErr error
	block   bool            // hold Open until ctx is cancelled
	done    chan error      // fired to simulate the stream ending on its own
	gotCtx  context.Context // the context Open was called with

	closed atomic.Int32
}

func (p *fakePlayer) Open(ctx context.Context, _ string) error {
	p.gotCtx = ctx
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.openErr
}

func (p *fakePlayer) Done() <-chan error {
	return p.done
}

func (p *fakePlayer) Close() {
	p.closed.Add(1)
}

// playerQueue hands out one player per Start call.
type playerQueue struct {
	players []*fakePlayer
	next    atomic.Int32
}

func (q *playerQueue) factory() Player {
	i := int(q.next.Add(1)) - 1
	if i >= len(q.players) {
		return &fakePlayer{}
	}
	return q.players[i]
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStartInvalidEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"No Scheme", "10.0.0.5/stream1"},
		{"Empty", ""},
		{"No Host", "rtsp://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(func() Player { return &fakePlayer{} })
			_, err := m.Start(context.Background(), tt.endpoint)
			if !errors.Is(err, ErrInvalidEndpoint) {
				t.Fatalf("Start(%q) error = %v, want ErrInvalidEndpoint", tt.endpoint, err)
			}
			if m.Current() != nil {
				t.Error("session held after invalid start")
			}
		})
	}
}

func TestStartReachesPlaying(t *testing.T) {
	m := NewManager(func() Player { return &fakePlayer{} })

	sess, err := m.Start(context.Background(), "rtsp://10.0.0.5/s1")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := sess.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if got := sess.State(); got != models.SessionPlaying {
		t.Errorf("State() = %s, want playing", got)
	}
	if m.Current() != sess {
		t.Error("Current() does not return the started session")
	}
}

func TestPlaybackFailureIsTerminal(t *testing.T) {
	player := &fakePlayer{openErr: errors.New("connection refused")}
	m := NewManager(func() Player { return player })

	sess, err := m.Start(context.Background(), "rtsp://10.0.0.5/s1")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	werr := sess.Wait(waitCtx(t))
	if !errors.Is(werr, ErrPlaybackFailed) {
		t.Fatalf("Wait() error = %v, want ErrPlaybackFailed", werr)
	}
	if got := sess.State(); got != models.SessionStopped {
		t.Errorf("State() = %s, want stopped", got)
	}
	if m.Current() != nil {
		t.Error("failed session still held as current")
	}
	if player.closed.Load() == 0 {
		t.Error("player not released after failure")
	}
}

func TestSingleSessionDiscipline(t *testing.T) {
	q := &playerQueue{players: []*fakePlayer{{}, {}}}
	m := NewManager(q.factory)
	ctx := context.Background()

	sessA, err := m.Start(ctx, "rtsp://10.0.0.5/a")
	if err != nil {
		t.Fatalf("Start(A) error: %v", err)
	}
	if err := sessA.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait(A) error: %v", err)
	}

	sessB, err := m.Start(ctx, "rtsp://10.0.0.6/b")
	if err != nil {
		t.Fatalf("Start(B) error: %v", err)
	}
	if err := sessB.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait(B) error: %v", err)
	}

	if got := sessA.State(); got != models.SessionStopped {
		t.Errorf("session A State() = %s, want stopped", got)
	}
	if q.players[0].closed.Load() == 0 {
		t.Error("player A not released when replaced")
	}

	cur := m.Current()
	if cur != sessB {
		t.Fatal("Current() is not session B")
	}
	if cur.TargetEndpoint != "rtsp://10.0.0.6/b" {
		t.Errorf("current endpoint = %q, want rtsp://10.0.0.6/b", cur.TargetEndpoint)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewManager(func() Player { return &fakePlayer{} })

	// Stop with no active session is a no-op.
	m.Stop()

	sess, err := m.Start(context.Background(), "rtsp://10.0.0.5/s1")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	_ = sess.Wait(waitCtx(t))

	m.Stop()
	m.Stop()

	if got := sess.State(); got != models.SessionStopped {
		t.Errorf("State() = %s, want stopped", got)
	}
	if m.Current() != nil {
		t.Error("Current() not nil after Stop")
	}
}

func TestSessionOutlivesStartContext(t *testing.T) {
	player := &fakePlayer{}
	m := NewManager(func() Player { return player })

	reqCtx, cancelReq := context.WithCancel(context.Background())
	sess, err := m.Start(reqCtx, "rtsp://10.0.0.5/s1")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := sess.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	// The caller's context ends with its request; the stream must not.
	cancelReq()

	select {
	case <-player.gotCtx.Done():
		t.Fatal("player context cancelled with the caller's context")
	case <-time.After(50 * time.Millisecond):
	}
	if got := sess.State(); got != models.SessionPlaying {
		t.Errorf("State() = %s, want playing", got)
	}
	if m.Current() != sess {
		t.Error("session released with the caller's context")
	}
}

func TestConcurrentStartsKeepOneSession(t *testing.T) {
	const n = 8
	q := &playerQueue{players: make([]*fakePlayer, n)}
	for i := range q.players {
		q.players[i] = &fakePlayer{}
	}
	m := NewManager(q.factory)

	sessions := make([]*Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Start(context.Background(), fmt.Sprintf("rtsp://10.0.0.%d/s", i))
			if err != nil {
				t.Errorf("Start(%d) error: %v", i, err)
				return
			}
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	cur := m.Current()
	if cur == nil {
		t.Fatal("no current session after concurrent starts")
	}
	if err := cur.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() on surviving session error: %v", err)
	}

	for i, s := range sessions {
		if s == cur {
			continue
		}
		if got := s.State(); got != models.SessionStopped {
			t.Errorf("displaced session %d State() = %s, want stopped", i, got)
		}
	}

	var closed int32
	for _, p := range q.players {
		closed += p.closed.Load()
	}
	if closed < n-1 {
		t.Errorf("%d players released, want at least %d", closed, n-1)
	}
}

func TestPlayerExitStopsSession(t *testing.T) {
	player := &fakePlayer{done: make(chan error, 1)}
	m := NewManager(func() Player { return player })

	sess, err := m.Start(context.Background(), "rtsp://10.0.0.5/s1")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := sess.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	// The stream drops on its own.
	player.done <- errors.New("connection reset")

	deadline := time.Now().Add(2 * time.Second)
	for m.Current() != nil {
		if time.Now().After(deadline) {
			t.Fatal("session still current after player exit")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := sess.State(); got != models.SessionStopped {
		t.Errorf("State() = %s, want stopped", got)
	}
	if !errors.Is(sess.Err(), ErrPlaybackFailed) {
		t.Errorf("Err() = %v, want ErrPlaybackFailed", sess.Err())
	}
	if player.closed.Load() == 0 {
		t.Error("player not released after exit")
	}
}

func TestStopAbortsPendingOpen(t *testing.T) {
	player := &fakePlayer{block: true}
	m := NewManager(func() Player { return player })

	sess, err := m.Start(context.Background(), "rtsp://10.0.0.5/s1")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := sess.State(); got != models.SessionStarting {
		t.Fatalf("State() = %s, want starting", got)
	}

	m.Stop()

	werr := sess.Wait(waitCtx(t))
	if !errors.Is(werr, ErrStopped) {
		t.Fatalf("Wait() error = %v, want ErrStopped", werr)
	}
	if got := sess.State(); got != models.SessionStopped {
		t.Errorf("State() = %s, want stopped", got)
	}
	if player.closed.Load() == 0 {
		t.Error("player not released when open was aborted")
	}
}
