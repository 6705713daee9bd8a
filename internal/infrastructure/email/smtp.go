package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/kesher-io/kesher/internal/application/common"
	"github.com/kesher-io/kesher/internal/shared/config"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

type SMTPMailer struct {
	fromAddress string
	fromName    string
	send        func(m *gomail.Message) error
	logger      logger.Interface
}

func NewSMTPMailer(cfg config.EmailConfig, logger logger.Interface) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &SMTPMailer{
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		send:        func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		logger:      logger,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, msg common.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return common.ErrNoRecipient
	}

	m := s.buildMessage(msg)
	if err := s.send(m); err != nil {
		s.logger.Errorw("smtp delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debugw("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (s *SMTPMailer) buildMessage(msg common.Email) *gomail.Message {
	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.fromAddress, s.fromName)
	} else {
		m.SetHeader("From", s.fromAddress)
	}
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}
	return m
}

// LogMailer stands in when SMTP is not configured. Messages are logged and dropped.
type LogMailer struct {
	logger logger.Interface
}

func NewLogMailer(logger logger.Interface) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(_ context.Context, msg common.Email) error {
	if msg.To == "" {
		return common.ErrNoRecipient
	}
	l.logger.Infow("email not sent, smtp is not configured", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NewMailer picks SMTP delivery when a host is configured.
func NewMailer(cfg config.EmailConfig, logger logger.Interface) common.Mailer {
	if cfg.SMTPHost == "" {
		logger.Warnw("email service not configured, smtp_host is empty")
		return NewLogMailer(logger)
	}
	logger.Infow("email service initialized",
		"host", cfg.SMTPHost,
		"port", cfg.SMTPPort,
		"from", cfg.FromAddress,
	)
	return NewSMTPMailer(cfg, logger)
}
