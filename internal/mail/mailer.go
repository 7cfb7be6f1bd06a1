package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/koruflicks/support-service/internal/config"
)

// Message is one outbound email. The plain-text part is derived from
// HTMLBody by stripping markup; ReplyTo and CC are optional.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	ReplyTo  string
	CC       []string
}

// Mailer delivers transactional email. Failures propagate to the caller;
// the lifecycle engine decides what a failed send means for the request.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type smtpMailer struct {
	cfg    config.SMTPConfig
	from   string
	name   string
	logger *zap.Logger
}

// NewSMTPMailer builds the SMTP transport. When no SMTP user is
// configured the mailer logs the message instead of sending, which keeps
// local development working without a mail account.
func NewSMTPMailer(cfg config.SMTPConfig, notify config.NotificationConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, from: notify.EmailFrom, name: notify.FromName, logger: logger}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.User == "" || m.cfg.Password == "" {
		m.logger.Info("smtp not configured; logging mail instead",
			zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	}

	recipients := append([]string{msg.To}, msg.CC...)
	payload := m.compose(msg)

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	if err := smtp.SendMail(addr, auth, m.from, recipients, payload); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

const mimeBoundary = "koruflicks-alt-boundary"

// compose renders a multipart/alternative body: a plain part stripped of
// markup and the HTML part itself.
func (m *smtpMailer) compose(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.name, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if len(msg.CC) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(msg.CC, ", "))
	}
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(StripTags(msg.HTMLBody))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
