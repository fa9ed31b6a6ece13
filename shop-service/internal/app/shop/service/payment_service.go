package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"northberries/pkg/logger"
	"northberries/pkg/metrics"
	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/infrastructure"
	"northberries/shop-service/internal/app/shop/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProviderRefMismatch = errors.New("provider reference does not match order")
)

// PaymentService сверяет предварительные карточные заказы с провайдером
// Провайдер авторитетен: заказ финализируется или отбрасывается только
// по его статусу. Повторный callback по уже обработанному заказу
// завершается исходом already_handled без ошибки
type PaymentService struct {
	orderRepo       repository.OrderRepository
	orderItemRepo   repository.OrderItemRepository
	productRepo     repository.ProductRepository
	paymentProvider infrastructure.PaymentProvider
	notifier        Notifier
	mailSender      infrastructure.MailSender
	kafkaProducer   infrastructure.MessagePublisher
	cfg             OrderConfig
}

// NewPaymentService создает новый сервис сверки платежей
func NewPaymentService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	paymentProvider infrastructure.PaymentProvider,
	notifier Notifier,
	mailSender infrastructure.MailSender,
	kafkaProducer infrastructure.MessagePublisher,
	cfg OrderConfig,
) *PaymentService {
	return &PaymentService{
		orderRepo:       orderRepo,
		orderItemRepo:   orderItemRepo,
		productRepo:     productRepo,
		paymentProvider: paymentProvider,
		notifier:        notifier,
		mailSender:      mailSender,
		kafkaProducer:   kafkaProducer,
		cfg:             cfg,
	}
}

// Reconcile обрабатывает callback провайдера по предварительному заказу
// Заказ загружается только пока он предварительный: финализированный,
// истекший или отсутствующий дает already_handled. Ошибка провайдера
// оставляет заказ нетронутым - callback можно повторить
func (s *PaymentService) Reconcile(ctx context.Context, req *entity.ConfirmPaymentRequest) (entity.ReconcileOutcome, error) {
	id, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return "", ErrInvalidID
	}

	order, err := s.orderRepo.GetProvisional(ctx, id, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			metrics.OrdersReconciled.WithLabelValues(string(entity.OutcomeAlreadyHandled)).Inc()
			return entity.OutcomeAlreadyHandled, nil
		}
		return "", fmt.Errorf("failed to get provisional order: %w", err)
	}

	if order.ProviderRef != req.ProviderRef {
		return "", ErrProviderRefMismatch
	}

	status, err := s.paymentProvider.GetStatus(ctx, req.ProviderRef)
	if err != nil {
		return "", fmt.Errorf("failed to get payment status: %w", err)
	}

	switch status {
	case infrastructure.PaymentStatusSucceeded:
		if err := s.finalize(ctx, order); err != nil {
			return "", err
		}
		metrics.OrdersReconciled.WithLabelValues(string(entity.OutcomePaid)).Inc()
		return entity.OutcomePaid, nil

	case infrastructure.PaymentStatusFailed:
		if err := s.discard(ctx, order); err != nil {
			return "", err
		}
		metrics.OrdersReconciled.WithLabelValues(string(entity.OutcomeDiscarded)).Inc()
		return entity.OutcomeDiscarded, nil

	default:
		// Провайдер ещё думает - заказ остается предварительным
		metrics.OrdersReconciled.WithLabelValues(string(entity.OutcomePending)).Inc()
		return entity.OutcomePending, nil
	}
}

// finalize переводит заказ в paid, снимает окно подтверждения
// и списывает остаток по позициям
func (s *PaymentService) finalize(ctx context.Context, order *entity.Order) error {
	if err := s.orderRepo.Finalize(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to finalize order: %w", err)
	}
	if err := s.orderItemRepo.ClearExpiry(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to clear order items expiry: %w", err)
	}
	order.Status = entity.OrderStatusPaid
	order.ExpireAt = nil

	// Остаток для карточных заказов не резервировался; списываем после
	// оплаты, нехватка только логируется - деньги уже приняты
	items, err := s.orderItemRepo.GetByOrderID(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to get order items: %w", err)
	}
	for _, item := range items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Warn().
				Err(err).
				Str("order_id", order.ID.Hex()).
				Str("product_id", item.ProductID.Hex()).
				Msg("Failed to decrement stock for paid order")
		}
	}

	s.notifyOrderPaid(ctx, order)
	s.publishEvent(ctx, "ORDER_PAID", order)

	return nil
}

// discard удаляет несостоявшийся заказ вместе с позициями
func (s *PaymentService) discard(ctx context.Context, order *entity.Order) error {
	if err := s.orderItemRepo.DeleteByOrderID(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.publishEvent(ctx, "ORDER_DISCARDED", order)

	return nil
}

// notifyOrderPaid рассылает уведомления об оплаченном заказе
// Каждый эффект независим: ошибка логируется и не прерывает остальные
func (s *PaymentService) notifyOrderPaid(ctx context.Context, order *entity.Order) {
	if order.Email != "" {
		subject, html := orderPaidMail(order.LanguageCode, order.ID.Hex(), order.Total)
		err := s.mailSender.Send(ctx, infrastructure.MailMessage{
			From:    s.cfg.MailFrom,
			To:      order.Email,
			Subject: subject,
			HTML:    html,
		})
		if err != nil {
			logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("Failed to send buyer mail")
		}
	}

	orderID := order.ID
	if _, err := s.notifier.Notify(ctx, s.cfg.AdminUserID, fmt.Sprintf("Заказ %s оплачен, сумма %.2f", order.ID.Hex(), order.Total), &orderID); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("Failed to notify admin")
	}

	if s.cfg.AdminEmail != "" {
		err := s.mailSender.Send(ctx, infrastructure.MailMessage{
			From:    s.cfg.MailFrom,
			To:      s.cfg.AdminEmail,
			Subject: "Заказ оплачен",
			HTML:    fmt.Sprintf("<p>Заказ %s оплачен, сумма %.2f.</p>", order.ID.Hex(), order.Total),
		})
		if err != nil {
			logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("Failed to send admin mail")
		}
	}
}

// publishEvent отправляет событие о заказе в Kafka
func (s *PaymentService) publishEvent(ctx context.Context, eventType string, order *entity.Order) {
	event := entity.OrderEvent{
		EventType: eventType,
		OrderID:   order.ID.Hex(),
		UserID:    order.UserID,
		Total:     order.Total,
		Status:    order.Status,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("Failed to marshal order event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.OrderID, eventData); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("Failed to publish order event")
	}
}
