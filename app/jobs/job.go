// Package jobs holds the CRM's scheduled maintenance routines. Each job talks
// to the API through an injected graphql.Executor and appends human-readable
// lines to its log file. A job never fails past Run: errors and panics are
// logged, counted and swallowed.
package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
	"github.com/shashiranjanraj/kashvi-crm/pkg/metrics"
)

// Job is a scheduled routine.
type Job interface {
	Name() string
	Run(ctx context.Context)
}

// Option configures the shared parts of a job.
type Option func(*base)

// WithClock overrides time.Now for log timestamps and query windows.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithOutput redirects console messages (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(b *base) { b.out = w }
}

type base struct {
	name    string
	exec    graphql.Executor
	logPath string
	now     func() time.Time
	out     io.Writer
}

func newBase(name string, exec graphql.Executor, logPath string, opts []Option) base {
	b := base{name: name, exec: exec, logPath: logPath, now: time.Now, out: os.Stdout}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string { return b.name }

// run executes fn with the job's failure boundary.
func (b *base) run(ctx context.Context, fn func(ctx context.Context) error) {
	start := time.Now()
	log := logger.WithCtx(ctx).With("job", b.name)

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		metrics.RecordScheduledRun(b.name, err != nil, start)
		if err != nil {
			log.Error("job failed", "error", err, "duration", time.Since(start).String())
			return
		}
		log.Debug("job finished", "duration", time.Since(start).String())
	}()

	err = fn(logger.InjectLogger(ctx, log))
}

// query runs a GraphQL operation and decodes its data into dest.
func (b *base) query(ctx context.Context, query string, vars map[string]interface{}, dest interface{}) error {
	res, err := b.exec.Execute(ctx, graphql.Request{Query: query, Variables: vars})
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}
	return res.Decode(dest)
}

// appendLines writes lines to the job log in one append.
func (b *base) appendLines(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	f, err := os.OpenFile(b.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", b.logPath, err)
	}
	_, werr := f.WriteString(strings.Join(lines, "\n") + "\n")
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("write %s: %w", b.logPath, werr)
	}
	return cerr
}

// stamp formats the job clock with the layout used by the log lines.
func (b *base) stamp() string { return b.now().Format(lineLayout) }

const lineLayout = "2006-01-02 15:04:05"
