package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"northberries/pkg/metrics"
	"northberries/shop-service/internal/app/shop/infrastructure"
)

// SMTPSender - минимальный адаптер почтового порта поверх SMTP
type SMTPSender struct {
	addr string
	auth smtp.Auth
}

// NewSMTPSender создает SMTP-отправитель
// Пустой username отключает аутентификацию (локальный relay)
func NewSMTPSender(host, port, username, password string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPSender{
		addr: host + ":" + port,
		auth: auth,
	}
}

// Send отправляет HTML-письмо
func (s *SMTPSender) Send(ctx context.Context, msg infrastructure.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body strings.Builder
	body.WriteString("From: " + msg.From + "\r\n")
	body.WriteString("To: " + msg.To + "\r\n")
	body.WriteString("Subject: " + msg.Subject + "\r\n")
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	err := smtp.SendMail(s.addr, s.auth, msg.From, []string{msg.To}, []byte(body.String()))
	metrics.RecordMailSend("shop-service", err)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}
