package notify

import (
	"fmt"
	"net/smtp"

	"github.com/tunedhq/tuned-core/internal/config"
)

// EmailSender delivers outbound mail. Implementations are best effort;
// the fan-out logs failures and keeps going.
type EmailSender interface {
	Send(to, subject, body string) error
}

type smtpSender struct {
	host string
	port string
	from string
}

func NewSMTPSender(cfg config.SMTP) EmailSender {
	return &smtpSender{
		host: cfg.Host,
		port: cfg.Port,
		from: cfg.From,
	}
}

func (s *smtpSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body,
	)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
