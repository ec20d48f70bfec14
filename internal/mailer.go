package internal

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"
)

// MailSender is the mail-transport collaborator.
type MailSender interface {
	Send(ctx context.Context, from, to, subject, body string, html bool) error
}

// SMTPSender implements MailSender over SMTP submission with STARTTLS and
// username/password authentication.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTPSender creates a sender for the given SMTP submission endpoint.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, username: username, password: password}
}

// Send delivers one message. HTML bodies carry a plain-text alternative for
// clients without HTML support.
func (s *SMTPSender) Send(ctx context.Context, from, to, subject, body string, html bool) error {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return fmt.Errorf("setting sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient address: %w", err)
	}
	msg.Subject(subject)

	if html {
		msg.SetBodyString(mail.TypeTextPlain, "HTML support required to see this email")
		msg.AddAlternativeString(mail.TypeTextHTML, body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, body)
	}

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
	)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// Fragment is one per-video summary held in memory for the duration of a run.
type Fragment struct {
	Title string
	Body  string
}

// Batcher accumulates summary fragments in processing order and hands the
// concatenated body to the mail transport exactly once at the end of a run.
type Batcher struct {
	mu        sync.Mutex
	fragments []Fragment

	sender MailSender
	from   string
	to     string
	logger *slog.Logger
}

// NewBatcher creates a batcher. sender may be nil and to may be empty when no
// delivery target was supplied; Flush then becomes a logged no-op.
func NewBatcher(sender MailSender, from, to string, logger *slog.Logger) *Batcher {
	return &Batcher{sender: sender, from: from, to: to, logger: logger}
}

// Add appends a fragment in processing order.
func (b *Batcher) Add(title, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fragments = append(b.fragments, Fragment{Title: title, Body: body})
}

// Fragments returns a copy of the accumulated fragments in order.
func (b *Batcher) Fragments() []Fragment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Fragment, len(b.fragments))
	copy(out, b.fragments)
	return out
}

// markdownBody concatenates all fragments, each under a per-video heading,
// separated by blank lines.
func (b *Batcher) markdownBody() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	parts := make([]string, 0, len(b.fragments))
	for _, f := range b.fragments {
		parts = append(parts, fmt.Sprintf("## Summary for video '%s':\n\n%s", f.Title, f.Body))
	}
	return strings.Join(parts, "\n\n")
}

// Flush sends all accumulated fragments as one HTML mail. It is a no-op when
// no fragment was accumulated or no delivery target was supplied; the reason
// is logged. The returned bool reports whether a message was sent.
func (b *Batcher) Flush(ctx context.Context, subject string) (bool, error) {
	b.mu.Lock()
	count := len(b.fragments)
	b.mu.Unlock()

	if count == 0 {
		b.logger.Info("no new videos to summarize, not sending email")
		return false, nil
	}
	if b.sender == nil || b.to == "" {
		b.logger.Info("no delivery target configured, not sending email", "summaries", count)
		return false, nil
	}

	var htmlBody bytes.Buffer
	if err := goldmark.Convert([]byte(b.markdownBody()), &htmlBody); err != nil {
		return false, fmt.Errorf("rendering email body: %w", err)
	}

	if err := b.sender.Send(ctx, b.from, b.to, subject, htmlBody.String(), true); err != nil {
		return false, err
	}

	b.logger.Info("email sent", "to", b.to, "summaries", count)
	return true, nil
}
