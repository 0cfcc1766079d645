package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
	"github.com/shashiranjanraj/kashvi-crm/pkg/queue"
)

const recentOrdersQuery = `query($filter: OrderFilterInput, $first: Int, $after: String) {
  allOrders(filter: $filter, first: $first, after: $after) {
    edges { node { id orderDate customer { email } } }
    pageInfo { hasNextPage endCursor }
  }
}`

const reminderPageSize = 100

// Dispatcher queues background work; *queue.Manager satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

// Reminders logs every order placed within the window and, with a
// Dispatcher, queues a reminder mail per order that has an email.
type Reminders struct {
	base
	window time.Duration
	queue  Dispatcher
}

func NewReminders(exec graphql.Executor, logPath string, windowDays int, opts ...Option) *Reminders {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Reminders{
		base:   newBase("order-reminders", exec, logPath, opts),
		window: time.Duration(windowDays) * 24 * time.Hour,
	}
}

// WithMail queues a ReminderMail for each reminded order.
func (j *Reminders) WithMail(d Dispatcher) *Reminders {
	j.queue = d
	return j
}

func (j *Reminders) Run(ctx context.Context) { j.run(ctx, j.remind) }

type reminderOrder struct {
	ID       string
	Customer *struct{ Email string }
}

func (j *Reminders) remind(ctx context.Context) error {
	orders, err := j.recentOrders(ctx)
	if err != nil {
		return err
	}

	ts := j.stamp()
	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		email := "Unknown Email"
		if o.Customer != nil && o.Customer.Email != "" {
			email = o.Customer.Email
		}
		lines = append(lines, fmt.Sprintf("%s - Order ID: %s, Email: %s", ts, o.ID, email))

		if j.queue != nil && email != "Unknown Email" {
			if err := j.queue.Dispatch(ctx, &ReminderMail{OrderID: o.ID, Email: email}); err != nil {
				logger.WithCtx(ctx).Warn("reminders: queue mail", "order_id", o.ID, "error", err)
			}
		}
	}
	if err := j.appendLines(lines...); err != nil {
		return err
	}

	fmt.Fprintln(j.out, "Order reminders processed!")
	return nil
}

// recentOrders walks every page of orders dated on or after now-window.
func (j *Reminders) recentOrders(ctx context.Context) ([]reminderOrder, error) {
	since := j.now().Add(-j.window).UTC().Format("2006-01-02T15:04:05")
	vars := map[string]interface{}{
		"filter": map[string]interface{}{"orderDateGte": since},
		"first":  reminderPageSize,
	}

	var orders []reminderOrder
	for {
		var out struct {
			AllOrders struct {
				Edges    []struct{ Node reminderOrder }
				PageInfo struct {
					HasNextPage bool
					EndCursor   *string
				}
			}
		}
		if err := j.query(ctx, recentOrdersQuery, vars, &out); err != nil {
			return nil, err
		}
		for _, e := range out.AllOrders.Edges {
			orders = append(orders, e.Node)
		}

		pi := out.AllOrders.PageInfo
		if !pi.HasNextPage || pi.EndCursor == nil {
			return orders, nil
		}
		vars["after"] = *pi.EndCursor
	}
}
