package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/FlakM/czujka-librus/internal/config"
	"github.com/FlakM/czujka-librus/internal/domain"
	"github.com/FlakM/czujka-librus/internal/ports"
)

// Notifier renders the aggregated notification as an HTML document and
// delivers it over SMTP. With delivery disabled it still renders the full
// document and logs a stripped preview, so the rendering path is exercised
// identically.
type Notifier struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires SMTP settings and recipients.
func NewNotifier(cfg config.EmailConfig, logger *slog.Logger) *Notifier {
	return &Notifier{cfg: cfg, logger: logger}
}

// Send composes and delivers the digest email.
func (n *Notifier) Send(ctx context.Context, notification domain.Notification) error {
	urgency := notification.Urgency()
	subject := subjectFor(urgency)
	rendered := renderHTML(notification)

	if !n.cfg.Enabled {
		n.logger.Info("email sending disabled, rendered notification",
			"subject", subject,
			"preview", preview(rendered, 500))
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(n.cfg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, rendered)

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.User),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}

	n.logger.Info("sending email notification",
		"urgency", urgency.String(),
		"recipient_count", len(n.cfg.To))

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("email notification sent", "urgency", urgency.String())
	return nil
}
