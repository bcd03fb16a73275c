package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/rs/zerolog"
)

// Mailer delivers transactional email. Implementations must not block
// longer than the context allows; callers fire it outside transactions.
type Mailer interface {
	Send(ctx context.Context, tmpl string, to string, data map[string]interface{}) error
}

// Template names
const (
	TemplateVerifyEmail = "verify_email"
	TemplateNewComment  = "new_comment"
)

var templates = map[string]*template.Template{
	TemplateVerifyEmail: template.Must(template.New(TemplateVerifyEmail).Parse(
		"Subject: Confirm your email\r\n\r\n" +
			"Hi {{.Username}},\r\n\r\n" +
			"Confirm your email address by opening:\r\n{{.ConfirmURL}}\r\n")),
	TemplateNewComment: template.Must(template.New(TemplateNewComment).Parse(
		"Subject: New comment on your post\r\n\r\n" +
			"Hi {{.Username}},\r\n\r\n" +
			"{{.CommentAuthor}} commented on \"{{.PostTitle}}\":\r\n\r\n{{.Body}}\r\n")),
}

func render(tmpl string, data map[string]interface{}) ([]byte, error) {
	t, ok := templates[tmpl]
	if !ok {
		return nil, fmt.Errorf("unknown mail template: %s", tmpl)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render mail template %s: %w", tmpl, err)
	}
	return buf.Bytes(), nil
}

// SMTPMailer sends mail through a plain SMTP relay
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTP creates an SMTP mailer. auth may be nil for open relays
// (local dev).
func NewSMTP(addr, from string, auth smtp.Auth) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from, auth: auth}
}

func (m *SMTPMailer) Send(ctx context.Context, tmpl string, to string, data map[string]interface{}) error {
	body, err := render(tmpl, data)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.addr, m.auth, m.from, []string{to}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer renders templates and logs instead of sending. Used in
// development and tests.
type LogMailer struct {
	log *zerolog.Logger
}

// NewLog creates a logging mailer
func NewLog(log *zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, tmpl string, to string, data map[string]interface{}) error {
	body, err := render(tmpl, data)
	if err != nil {
		return err
	}
	m.log.Info().
		Str("template", tmpl).
		Str("to", to).
		Int("bytes", len(body)).
		Msg("mail (not sent, log mailer)")
	return nil
}
