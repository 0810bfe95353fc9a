package films

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

// Notifier tells an operator that the refresh needs attention.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// EmailConfig configures the smtp relay, Password can be left empty for
// relays that don't support AUTH.
type EmailConfig struct {
	Server   string   `json:"server" yaml:"server"`
	Port     int      `json:"port" yaml:"port"`
	Address  string   `json:"address" yaml:"address"`
	Password string   `json:"password" yaml:"password"`
	To       []string `json:"to" yaml:"to"`
}

func (c EmailConfig) Configured() bool {
	return c.Server != "" && c.Address != "" && len(c.To) > 0
}

type EmailNotifier struct {
	config EmailConfig
}

func NewEmailNotifier(config EmailConfig) EmailNotifier {
	return EmailNotifier{config: config}
}

func (n EmailNotifier) Notify(ctx context.Context, subject, body string) error {
	_, span := tracer.Start(ctx, "EmailNotifier:Notify")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Animated Films Snapshot <%s>", n.config.Address)
	mail.To = n.config.To
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)

	var auth smtp.Auth
	if n.config.Password != "" {
		auth = smtp.PlainAuth("", n.config.Address, n.config.Password, n.config.Server)
	}
	err := mail.Send(addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
