package jobs

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/kashvi-crm/pkg/mail"
	"github.com/shashiranjanraj/kashvi-crm/pkg/queue"
)

// ReminderMailJob is the queue name of ReminderMail.
const ReminderMailJob = "order-reminder-mail"

// ReminderMail is the queued email for one recent order.
type ReminderMail struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`

	sender mail.Sender
}

func (m *ReminderMail) JobName() string { return ReminderMailJob }

func (m *ReminderMail) Handle(ctx context.Context) error {
	msg := mail.To(m.Email).
		Subject(fmt.Sprintf("Your order #%s", m.OrderID)).
		Text(fmt.Sprintf("Hello,\n\nThis is a reminder about your recent order #%s.\n\nThank you for shopping with us.", m.OrderID))
	return m.sender.Send(ctx, msg)
}

// RegisterMail makes q able to run ReminderMail jobs through sender.
func RegisterMail(q *queue.Manager, sender mail.Sender) {
	q.Register(ReminderMailJob, func() queue.Job { return &ReminderMail{sender: sender} })
}
