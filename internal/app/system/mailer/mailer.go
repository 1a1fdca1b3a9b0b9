// internal/app/system/mailer/mailer.go

// Package mailer sends transactional email over SMTP. Delivery is
// best-effort: the notification side-channel logs failures and moves on.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is one outbound message. TextBody is required; HTMLBody, when set,
// is sent as a multipart alternative.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer holds SMTP connection settings. A nil *Mailer is a valid no-op
// sender, which keeps email optional in dev and in tests.
type Mailer struct {
	host     string
	port     int
	user     string
	pass     string
	from     string
	fromName string
	log      *zap.Logger
}

// New builds a Mailer. user/pass may be empty for unauthenticated relays
// (e.g. a local Mailpit).
func New(host string, port int, user, pass, from, fromName string, logger *zap.Logger) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		user:     user,
		pass:     pass,
		from:     from,
		fromName: fromName,
		log:      logger,
	}
}

// Send delivers the email. The context deadline bounds the SMTP dial.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if m == nil {
		return nil
	}
	if e.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}

	addr := net.JoinHostPort(m.host, fmt.Sprintf("%d", m.port))

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	msg := m.build(e)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.from, []string{e.To}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mailer: send to %s: %w", e.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mailer: send to %s: %w", e.To, ctx.Err())
	}
}

func (m *Mailer) build(e Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if e.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(e.TextBody)
		return []byte(b.String())
	}

	const boundary = "contribhub-alt"
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, e.TextBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, e.HTMLBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
