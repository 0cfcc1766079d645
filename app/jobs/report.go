package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
	"github.com/shashiranjanraj/kashvi-crm/pkg/storage"
)

const reportQuery = `{
  allCustomers(first: 1) { totalCount }
  allOrders(first: 1) { totalCount totalRevenue }
}`

// Report logs customer and order counts plus total revenue. With a disk it
// also archives a JSON snapshot under reports/.
type Report struct {
	base
	disk storage.Disk
}

func NewReport(exec graphql.Executor, logPath string, opts ...Option) *Report {
	return &Report{base: newBase("report", exec, logPath, opts)}
}

// WithDisk archives each report on d.
func (j *Report) WithDisk(d storage.Disk) *Report {
	j.disk = d
	return j
}

func (j *Report) Run(ctx context.Context) { j.run(ctx, j.report) }

// Snapshot is the archived form of one report.
type Snapshot struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Customers   int64     `json:"customers"`
	Orders      int64     `json:"orders"`
	Revenue     string    `json:"revenue"`
}

func (j *Report) report(ctx context.Context) error {
	var out struct {
		AllCustomers struct{ TotalCount int64 }
		AllOrders    struct {
			TotalCount   int64
			TotalRevenue string
		}
	}
	if err := j.query(ctx, reportQuery, nil, &out); err != nil {
		return err
	}

	now := j.now()
	line := fmt.Sprintf("%s - Report: %d customers, %d orders, %s revenue",
		now.Format(lineLayout), out.AllCustomers.TotalCount, out.AllOrders.TotalCount, out.AllOrders.TotalRevenue)
	if err := j.appendLines(line); err != nil {
		return err
	}

	if j.disk == nil {
		return nil
	}
	snap := Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: now.UTC(),
		Customers:   out.AllCustomers.TotalCount,
		Orders:      out.AllOrders.TotalCount,
		Revenue:     out.AllOrders.TotalRevenue,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	path := fmt.Sprintf("reports/%s-%s.json", now.UTC().Format("20060102T150405"), snap.ID)
	if err := j.disk.Put(ctx, path, data); err != nil {
		// The log line is the report; a failed archive is only a warning.
		logger.WithCtx(ctx).Warn("report: archive snapshot", "path", path, "error", err)
		return nil
	}
	logger.WithCtx(ctx).Info("report: snapshot archived", "url", j.disk.URL(path))
	return nil
}
