package report

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// MailConfig carries SMTP settings. An empty Host disables delivery.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Mailer delivers rendered reports over SMTP.
type Mailer struct {
	cfg  MailConfig
	send func(*gomail.Message) error
	log  *logrus.Entry
}

// NewMailer creates a mailer. Delivery is a no-op when no host is
// configured, so local runs without SMTP credentials still work.
func NewMailer(cfg MailConfig) *Mailer {
	m := &Mailer{cfg: cfg, log: logger.WithComponent("mailer")}
	if cfg.Host != "" {
		dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		m.send = func(msg *gomail.Message) error { return dialer.DialAndSend(msg) }
	}
	return m
}

// Send renders the report and emails it to the configured recipients.
func (m *Mailer) Send(r *types.Report) error {
	if m.send == nil {
		m.log.Warn("SMTP not configured, skipping report delivery")
		return nil
	}
	if len(m.cfg.To) == 0 {
		return fmt.Errorf("no report recipients configured")
	}

	body, err := RenderHTML(r)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To...)
	msg.SetHeader("Subject", Subject(r))
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		m.log.WithError(err).Error("Failed to send report email")
		return fmt.Errorf("failed to send report email: %w", err)
	}

	m.log.WithFields(logrus.Fields{
		"run_id":     r.RunID,
		"recipients": len(m.cfg.To),
	}).Info("Report email sent")
	return nil
}
