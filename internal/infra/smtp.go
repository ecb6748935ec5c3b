package infra

import (
	"fmt"
	"net/smtp"

	"farmacuadra/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for workflow notification emails.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendNotificacion sends a plain-text workflow notification, optionally
// attaching the acta PDF of the solicitud.
func (m *Mailer) SendNotificacion(to []string, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
