// Package email provides SMTP delivery for OTP codes and notifications.
package email

import (
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/nutriwise/nutriwise-api/internal/config"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

// Sender is the delivery contract services depend on. Notification paths
// call it fire-and-forget; OTP paths treat a send failure as the operation's
// failure.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Client sends mail over SMTP.
type Client struct {
	cfg *config.EmailConfig
	log *logger.Logger
}

// NewClient creates an email client. When delivery is disabled in config,
// sends become logged no-ops (useful in development).
func NewClient(cfg *config.EmailConfig, log *logger.Logger) *Client {
	return &Client{cfg: cfg, log: log}
}

// Send delivers one HTML message.
func (c *Client) Send(to, subject, htmlBody string) error {
	if !c.cfg.Enabled {
		c.log.Debug().Str("to", to).Str("subject", subject).Msg("Email disabled, skipping send")
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(c.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(c.cfg.Host,
		mail.WithPort(c.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.cfg.Username),
		mail.WithPassword(c.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	c.log.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}
