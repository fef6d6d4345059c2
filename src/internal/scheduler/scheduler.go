package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/robfig/cron/v3"
)

// Job is a periodic task. Its context is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

// Entry describes a registered job.
type Entry struct {
	Name string    `json:"name"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
	Prev time.Time `json:"prev,omitempty"`
}

// Scheduler runs named jobs on cron specs. A job that is still running when
// its next tick arrives is skipped for that tick.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	jobs   map[string]registered
}

type registered struct {
	id   cron.EntryID
	spec string
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := cronLogger{}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]registered),
	}
}

// ValidateSpec checks a standard five-field spec or a descriptor such as "@every 30s".
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return errors.NewConfigError("invalid schedule '"+spec+"'", err)
	}
	return nil
}

// Add registers job under name.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if err := ValidateSpec(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return errors.NewAlreadyExistsError("job", name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		started := time.Now()
		if err := job(s.ctx); err != nil {
			log.Warnf("Scheduled job %s failed: %v", name, err)
			return
		}
		log.Debugf("Scheduled job %s finished in %s", name, time.Since(started).Round(time.Millisecond))
	})
	if err != nil {
		return errors.NewConfigError("invalid schedule '"+spec+"'", err)
	}
	s.jobs[name] = registered{id: id, spec: spec}
	log.Debugf("Scheduled job %s (%s)", name, spec)
	return nil
}

// Remove unregisters a job. Removing an unknown job is NotFound.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.jobs[name]
	if !ok {
		return errors.NewNotFoundError("job", name)
	}
	s.cron.Remove(r.id)
	delete(s.jobs, name)
	return nil
}

// Entries lists the registered jobs ordered by name.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.jobs))
	for name, r := range s.jobs {
		e := s.cron.Entry(r.id)
		entries = append(entries, Entry{Name: name, Spec: r.spec, Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return errors.Ensure(ctx.Err(), "scheduled jobs did not finish")
	}
}

// cronLogger routes cron's own messages to the netctl logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if log.IsVerbose() {
		log.Debugf("cron: %s %v", msg, keysAndValues)
	}
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
