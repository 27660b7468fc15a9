package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/evoteadm/evote/internal/core/ports"
)

type smtpMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPMailer(host string, port int, username, password, from string) ports.Mailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &smtpMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

func (m *smtpMailer) Send(_ context.Context, msg ports.MailMessage) error {
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, msg.To, msg.Subject, msg.Body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}
