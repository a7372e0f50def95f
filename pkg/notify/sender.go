package notify

import (
	"github.com/alphaseam/donorbox/pkg/config"
	"gopkg.in/gomail.v2"
)

// Sender 邮件投递，不含任何重试逻辑
type Sender interface {
	SendHTML(to, subject, htmlBody string) error
}

// SMTPSender 基于gomail的SMTP投递
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.CommenceConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:   cfg.SMTP.From,
	}
}

func (s *SMTPSender) SendHTML(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}
