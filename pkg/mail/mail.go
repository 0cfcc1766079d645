// Package mail is a small fluent SMTP mailer.
//
//	err := mail.To("alice@example.com").
//	    Subject("Your order #7").
//	    Text("Thanks for your order.").
//	    Send(ctx)
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/shashiranjanraj/kashvi-crm/config"
)

// ErrNotConfigured is returned when MAIL_HOST is empty.
var ErrNotConfigured = errors.New("mail: MAIL_HOST not configured")

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, m *Message) error
}

// SMTP holds connection settings. It implements Sender.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// DefaultSMTP reads the MAIL_* keys.
func DefaultSMTP() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", ""),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "crm@localhost"),
		FromName: config.Get("MAIL_FROM_NAME", "CRM"),
	}
}

// Message is a fluent builder for one email.
type Message struct {
	to      []string
	cc      []string
	subject string
	body    string
	isHTML  bool
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses}
}

// CC adds CC recipients.
func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// HTML sets an HTML body.
func (m *Message) HTML(html string) *Message {
	m.body, m.isHTML = html, true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body, m.isHTML = text, false
	return m
}

// Recipients returns To followed by CC.
func (m *Message) Recipients() []string {
	return append(append([]string(nil), m.to...), m.cc...)
}

// Send delivers m with DefaultSMTP.
func (m *Message) Send(ctx context.Context) error {
	return DefaultSMTP().Send(ctx, m)
}

// Send delivers m. Port 465 uses implicit TLS; other ports upgrade with
// STARTTLS when the server offers it.
func (c SMTP) Send(ctx context.Context, m *Message) error {
	if c.Host == "" {
		return ErrNotConfigured
	}
	rcpts := m.Recipients()
	if len(rcpts) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	addr := net.JoinHostPort(c.Host, c.Port)
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	var (
		conn net.Conn
		err  error
	)
	if c.Port == "465" {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: c.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok && c.Port != "465" {
		if err := client.StartTLS(&tls.Config{ServerName: c.Host}); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	if c.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", c.Username, c.Password, c.Host)); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}

	if err := client.Mail(c.From); err != nil {
		return fmt.Errorf("mail: MAIL FROM: %w", err)
	}
	for _, r := range rcpts {
		if err := client.Rcpt(r); err != nil {
			return fmt.Errorf("mail: RCPT TO %s: %w", r, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: DATA: %w", err)
	}
	if _, err := w.Write(m.raw(fmt.Sprintf("%s <%s>", c.FromName, c.From))); err != nil {
		return fmt.Errorf("mail: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: close data: %w", err)
	}
	return client.Quit()
}

func (m *Message) raw(from string) []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	if len(m.cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.body, "\n", "\r\n"))
	return []byte(b.String())
}
