// Package schedule runs named tasks on 5-field cron expressions.
//
// Usage:
//
//	s := schedule.New(workerpool.New(4))
//	_ = s.Add("heartbeat", "*/5 * * * *", heartbeat.Run)
//	s.Start(ctx)
//	defer s.Stop()
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
	"github.com/shashiranjanraj/kashvi-crm/pkg/workerpool"
)

// Task is the function signature for a scheduled task.
type Task func(ctx context.Context)

// ErrUnknownTask is returned by RunNow for a name that was never added.
var ErrUnknownTask = errors.New("schedule: unknown task")

type entry struct {
	name    string
	expr    string
	spec    *CronSpec
	task    Task
	running bool
	lastRun time.Time
}

// Entry describes a registered task.
type Entry struct {
	Name    string
	Cron    string
	LastRun time.Time
}

// Scheduler dispatches due tasks onto a worker pool. A task never overlaps
// with itself: a tick that finds it still running skips it.
type Scheduler struct {
	pool *workerpool.Pool
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a Scheduler that runs tasks on pool.
func New(pool *workerpool.Pool) *Scheduler {
	return &Scheduler{pool: pool, now: time.Now, entries: make(map[string]*entry)}
}

// Add registers task under name. The cron expression is validated here so a
// typo fails at boot instead of never firing.
func (s *Scheduler) Add(name, expr string, task Task) error {
	spec, err := ParseCron(expr)
	if err != nil {
		return fmt.Errorf("schedule: %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.entries[name]; dup {
		return fmt.Errorf("schedule: %s already registered", name)
	}
	s.entries[name] = &entry{name: name, expr: expr, spec: spec, task: task}
	return nil
}

// Entries lists the registered tasks sorted by name.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, Entry{Name: e.name, Cron: e.expr, LastRun: e.lastRun})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Start begins the dispatch loop in the background. The loop checks once per
// second and fires each task at most once per matching minute.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx)
	logger.Info("schedule: scheduler started", "tasks", len(s.Entries()))
}

// Stop ends the loop and waits for running tasks to return.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.wg.Wait()
	logger.Info("schedule: scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			minute := s.now().Truncate(time.Minute)
			if minute.Equal(last) {
				continue
			}
			last = minute
			s.Tick(ctx, minute)
		}
	}
}

// Tick dispatches every task whose expression matches t.
func (s *Scheduler) Tick(ctx context.Context, t time.Time) {
	s.mu.Lock()
	var due []*entry
	for _, e := range s.entries {
		if e.spec.Matches(t) {
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		s.dispatch(ctx, e, false)
	}
}

// RunNow dispatches name immediately, outside its schedule. It waits for a
// free pool slot instead of skipping when the pool is busy.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	s.dispatch(ctx, e, true)
	return nil
}

// Wait blocks until every dispatched task has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) dispatch(ctx context.Context, e *entry, wait bool) {
	s.mu.Lock()
	if e.running {
		s.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "task", e.name)
		return
	}
	e.running = true
	e.lastRun = s.now()
	s.mu.Unlock()

	submit := s.pool.Submit
	if wait {
		submit = s.pool.SubmitWait
	}

	s.wg.Add(1)
	err := submit(func() {
		defer s.finish(e)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "task", e.name, "panic", r)
			}
		}()
		logger.Debug("schedule: running task", "task", e.name)
		e.task(ctx)
	})
	if err != nil {
		s.finish(e)
		logger.Error("schedule: dispatch failed", "task", e.name, "error", err)
	}
}

func (s *Scheduler) finish(e *entry) {
	s.mu.Lock()
	e.running = false
	s.mu.Unlock()
	s.wg.Done()
}
