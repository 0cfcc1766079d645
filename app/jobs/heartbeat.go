package jobs

import (
	"context"
	"time"

	"github.com/shashiranjanraj/kashvi-crm/pkg/cache"
	"github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
)

// LastSeenKey holds the time of the latest heartbeat when Redis is connected.
const LastSeenKey = "crm:heartbeat:last_seen"

// Heartbeat appends "DD/MM/YYYY-HH:MM:SS CRM is alive" and probes the API
// with the hello query.
type Heartbeat struct{ base }

func NewHeartbeat(exec graphql.Executor, logPath string, opts ...Option) *Heartbeat {
	return &Heartbeat{newBase("heartbeat", exec, logPath, opts)}
}

func (j *Heartbeat) Run(ctx context.Context) { j.run(ctx, j.beat) }

func (j *Heartbeat) beat(ctx context.Context) error {
	now := j.now()
	if err := j.appendLines(now.Format("02/01/2006-15:04:05") + " CRM is alive"); err != nil {
		return err
	}

	var out struct{ Hello string }
	if err := j.query(ctx, `{ hello }`, nil, &out); err != nil {
		logger.WithCtx(ctx).Warn("heartbeat: api probe failed", "error", err)
		return nil
	}
	if err := cache.Set(ctx, LastSeenKey, now.UTC().Format(time.RFC3339), 0); err != nil {
		logger.WithCtx(ctx).Warn("heartbeat: cache last-seen", "error", err)
	}
	return nil
}
