// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"mime/quotedprintable"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is one outbound message with both text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email. Invite delivery is best-effort: callers log
// and swallow send failures rather than failing the primary write.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SMTPSender sends mail through a plain SMTP relay (Mailpit locally,
// SES or similar in production).
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
	Log      *zap.Logger
}

// NewSMTPSender creates an SMTP mailer.
func NewSMTPSender(host string, port int, user, pass, from, fromName string, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		User:     user,
		Pass:     pass,
		From:     from,
		FromName: fromName,
		Log:      logger,
	}
}

// Send delivers one email. The context is honored only between
// connection attempts; smtp.SendMail itself has no context support.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return errors.New("email has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	msg, err := s.buildMessage(email)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	if err := smtp.SendMail(addr, auth, s.From, []string{email.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.Log.Debug("email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}

// buildMessage assembles a multipart/alternative MIME message.
func (s *SMTPSender) buildMessage(email Email) ([]byte, error) {
	const boundary = "circles-alt-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.FromName, s.From)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	writePart := func(contentType, body string) error {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=UTF-8\r\n", contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(body)); err != nil {
			return err
		}
		if err := qp.Close(); err != nil {
			return err
		}
		b.WriteString("\r\n")
		return nil
	}

	if err := writePart("text/plain", email.TextBody); err != nil {
		return nil, err
	}
	if email.HTMLBody != "" {
		if err := writePart("text/html", email.HTMLBody); err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String()), nil
}
