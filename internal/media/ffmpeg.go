package media

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/your-org/firewatch/internal/config"
)

// FFmpegPlayer holds a camera stream open with an ffmpeg process. Open
// succeeds once ffmpeg maps the input; the process then keeps consuming the
// stream until Close kills it or the stream drops. One player serves one
// session.
type FFmpegPlayer struct {
	path    string
	timeout time.Duration
	done    chan error

	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

func NewFFmpegPlayer(cfg config.MediaConfig) *FFmpegPlayer {
	return &FFmpegPlayer{
		path:    cfg.FFmpegPath,
		timeout: cfg.OpenTimeout,
		done:    make(chan error, 1),
	}
}

// Open launches ffmpeg against the endpoint and blocks until the input is
// probed, the context is cancelled, or the open timeout elapses.
func (p *FFmpegPlayer) Open(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	args := []string{
		"-hide_banner",
		"-loglevel", "info",
		"-nostats",
	}
	if strings.HasPrefix(endpoint, "rtsp://") || strings.HasPrefix(endpoint, "rtsps://") {
		args = append(args,
			"-rtsp_transport", "tcp",
			"-stimeout", "5000000", // 5s RTSP socket timeout (microseconds)
		)
	}
	args = append(args,
		"-i", endpoint,
		"-f", "null",
		"-",
	)

	cmd := exec.CommandContext(ctx, p.path, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("ffmpeg stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()

	// ffmpeg prints the input map on stderr once the stream is probed. The
	// same goroutine reaps the process: Wait runs exactly once, whether
	// ffmpeg dies before the input opens, drops the stream later, or is
	// killed by Close.
	opened := make(chan struct{})
	failed := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(stderr)
		sawInput := false
		for scanner.Scan() {
			line := scanner.Text()
			if !sawInput && strings.Contains(line, "Input #0") {
				sawInput = true
				close(opened)
				continue
			}
			if sawInput {
				slog.Debug("ffmpeg", "output", line)
			}
		}

		werr := cmd.Wait()
		if !sawInput {
			failed <- fmt.Errorf("ffmpeg exited before opening input: %v", werr)
			return
		}
		if werr != nil {
			p.done <- werr
		} else {
			p.done <- fmt.Errorf("ffmpeg exited")
		}
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-opened:
		return nil
	case err := <-failed:
		return err
	case <-timer.C:
		p.Close()
		return fmt.Errorf("open %s: timeout after %s", endpoint, p.timeout)
	case <-ctx.Done():
		p.Close()
		return ctx.Err()
	}
}

// Done reports the process exiting after a successful open.
func (p *FFmpegPlayer) Done() <-chan error {
	return p.done
}

// Close terminates the ffmpeg process. Safe to call more than once; the
// monitor goroutine started by Open reaps the killed process.
func (p *FFmpegPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
