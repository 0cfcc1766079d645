package jobs

import (
	"fmt"
	"strings"

	"github.com/shashiranjanraj/kashvi-crm/config"
	"github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-crm/pkg/schedule"
	"github.com/shashiranjanraj/kashvi-crm/pkg/storage"
)

// Deps are the collaborators the jobs are built from.
type Deps struct {
	// Local runs against the in-process schema.
	Local graphql.Executor
	// Remote, when set, is used by the order-reminder job.
	Remote graphql.Executor
	Disk   storage.Disk
	Queue  Dispatcher
}

// FromConfig builds every job with the log paths and knobs from config.
func FromConfig(d Deps) []Job {
	remote := d.Remote
	if remote == nil {
		remote = d.Local
	}

	reminders := NewReminders(remote, config.OrderReminderLog(), config.ReminderWindowDays())
	if d.Queue != nil && config.ReminderMail() {
		reminders.WithMail(d.Queue)
	}
	report := NewReport(d.Local, config.ReportLog())
	if d.Disk != nil {
		report.WithDisk(d.Disk)
	}

	return []Job{
		NewHeartbeat(d.Local, config.HeartbeatLog()),
		NewLowStock(d.Local, config.LowStockLog(), config.LowStockThreshold(), config.LowStockIncrement()),
		reminders,
		report,
	}
}

// ScheduleKey maps a job name to its SCHEDULE_* config suffix,
// e.g. "order-reminders" → "ORDER_REMINDERS".
func ScheduleKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Register adds each job to s under its configured cron expression.
func Register(s *schedule.Scheduler, js ...Job) error {
	for _, j := range js {
		expr := config.Schedule(ScheduleKey(j.Name()))
		if expr == "" {
			return fmt.Errorf("jobs: no schedule configured for %s (SCHEDULE_%s)", j.Name(), ScheduleKey(j.Name()))
		}
		if err := s.Add(j.Name(), expr, j.Run); err != nil {
			return err
		}
	}
	return nil
}
