package infrastructure

import (
	"context"
)

type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// MailMessage - исходящее письмо
type MailMessage struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// MailSender - порт исходящей почты
// Ошибки отправки перехватываются вызывающим и не роняют операцию
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}

// PaymentStatus - авторитетный статус транзакции у провайдера
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusPending   PaymentStatus = "pending"
)

// PaymentProvider - порт платёжного провайдера
type PaymentProvider interface {
	CreateIntent(ctx context.Context, orderID string, amount float64, currency string, metadata map[string]string) (string, error)
	GetStatus(ctx context.Context, providerRef string) (PaymentStatus, error)
}
