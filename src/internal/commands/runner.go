package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/log"
)

// Restart reasons reported to a RestartRecorder.
const (
	RestartReasonError = "error"
	RestartReasonPanic = "panic"
)

// RestartRecorder counts supervised restarts. The metrics collector
// implements it.
type RestartRecorder interface {
	RunnerRestarted(runner, reason string)
}

// RestartableRunner supervises a long-lived daemon component, such as the
// API server. Every attempt is announced on the event bus as ServerStarted
// and ServerStopped in the Network domain, keyed by the runner name. Failed
// or panicking attempts are restarted with exponential backoff.
type RestartableRunner struct {
	cfg     RunnerConfig
	runFunc func(ctx context.Context) error

	mu        sync.RWMutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	lastError error
	restarts  int
}

// RunnerConfig contains configuration for RestartableRunner.
type RunnerConfig struct {
	Name           string
	MaxRestarts    int           // 0 = unlimited restarts
	RestartBackoff time.Duration // default: 1s
	MaxBackoff     time.Duration // default: 30s
	StopTimeout    time.Duration // default: 30s

	// Events and Recorder are optional.
	Events   events.Publisher
	Recorder RestartRecorder
}

func NewRestartableRunner(cfg RunnerConfig, runFunc func(ctx context.Context) error) *RestartableRunner {
	if cfg.RestartBackoff == 0 {
		cfg.RestartBackoff = time.Second
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.StopTimeout == 0 {
		cfg.StopTimeout = 30 * time.Second
	}
	return &RestartableRunner{cfg: cfg, runFunc: runFunc}
}

// Start launches the supervision loop in a goroutine.
func (r *RestartableRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.NewInvalidStateError(r.cfg.Name + " is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	r.restarts = 0
	r.lastError = nil

	go r.supervise(runCtx, r.done)
	return nil
}

// Stop cancels the running attempt and waits for the loop to exit.
func (r *RestartableRunner) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(r.cfg.StopTimeout):
		return errors.Newf(errors.ErrCodeTimeout, "%s: timeout waiting for stop", r.cfg.Name)
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	return nil
}

func (r *RestartableRunner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func (r *RestartableRunner) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastError
}

func (r *RestartableRunner) RestartCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.restarts
}

func (r *RestartableRunner) supervise(ctx context.Context, done chan struct{}) {
	defer close(done)

	backoff := r.cfg.RestartBackoff
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			log.Infof("%s: context cancelled, stopping", r.cfg.Name)
			return
		}

		r.publish(events.ServerStarted, map[string]any{"attempt": attempt})
		panicked, err := r.attempt(ctx)
		r.publish(events.ServerStopped, stoppedArgs(attempt, err, panicked))

		r.mu.Lock()
		r.lastError = err
		r.mu.Unlock()

		if err == nil {
			log.Infof("%s: exited cleanly", r.cfg.Name)
			return
		}
		if ctx.Err() != nil {
			log.Infof("%s: stopped: %v", r.cfg.Name, err)
			return
		}

		r.mu.Lock()
		r.restarts++
		restarts := r.restarts
		r.mu.Unlock()

		if r.cfg.MaxRestarts > 0 && restarts >= r.cfg.MaxRestarts {
			log.Errorf("%s: max restarts (%d) reached, giving up. Last error: %v", r.cfg.Name, r.cfg.MaxRestarts, err)
			return
		}

		reason := RestartReasonError
		if panicked {
			reason = RestartReasonPanic
		}
		if r.cfg.Recorder != nil {
			r.cfg.Recorder.RunnerRestarted(r.cfg.Name, reason)
		}
		log.Errorf("%s: failed (%s): %v. Restarting in %v (restart #%d)", r.cfg.Name, reason, err, backoff, restarts)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, r.cfg.MaxBackoff)
	}
}

// attempt runs the function once, turning a panic into a service error.
func (r *RestartableRunner) attempt(ctx context.Context) (panicked bool, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.Newf(errors.ErrCodeService, "panic: %v", recovered)
			panicked = true
		}
	}()
	return false, r.runFunc(ctx)
}

func (r *RestartableRunner) publish(kind events.Kind, args map[string]any) {
	if r.cfg.Events == nil {
		return
	}
	if _, err := r.cfg.Events.Publish(events.New(events.DomainNetwork, kind, r.cfg.Name, args)); err != nil {
		log.Debugf("%s: dropping %s event: %v", r.cfg.Name, kind, err)
	}
}

func stoppedArgs(attempt int, err error, panicked bool) map[string]any {
	args := map[string]any{"attempt": attempt}
	if err != nil {
		args["error"] = fmt.Sprint(err)
		args["panic"] = panicked
	}
	return args
}
