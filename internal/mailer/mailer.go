package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wneessen/go-mail"

	"github.com/TemirB/order-finalizer/internal/config"
	"github.com/TemirB/order-finalizer/internal/domain"
)

var ErrNoRecipient = errors.New("message has no recipient")

// SMTP sends plain-text notifications through a single authenticated
// account. A mail.Client holds one connection, so sends are serialized.
type SMTP struct {
	mu     sync.Mutex
	client *mail.Client
}

func New(cfg config.Mail) (*SMTP, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Address),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &SMTP{client: c}, nil
}

func (s *SMTP) Send(ctx context.Context, m domain.Message) error {
	msg, err := buildMsg(m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %q to %s: %w", m.Subject, m.To, err)
	}
	return nil
}

func buildMsg(m domain.Message) (*mail.Msg, error) {
	if m.To == "" {
		return nil, ErrNoRecipient
	}

	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("from %q: %w", m.From, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("to %q: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}
