package infra

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"

	"stockmaster/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerDisabled is returned when no SMTP host is configured.
var ErrMailerDisabled = errors.New("mailer: SMTP_HOST no configurado")

// Mailer sends invoice emails over SMTP.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendFactura sends body as plain text with the invoice PDF attached.
func (m *Mailer) SendFactura(to, subject, body, filename string, pdf []byte) error {
	if m.host == "" {
		return ErrMailerDisabled
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if len(pdf) > 0 {
		if _, err := e.Attach(bytes.NewReader(pdf), filename, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
