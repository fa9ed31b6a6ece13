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
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderTerminal        = errors.New("order is in terminal status")
	ErrPaymentTypeNotFound  = errors.New("payment type not found")
	ErrDeliveryTypeNotFound = errors.New("delivery type not found")
	ErrInsufficientStock    = errors.New("insufficient product stock")
)

// OrderConfig - параметры заказов из конфигурации
type OrderConfig struct {
	AdminUserID        string
	AdminEmail         string
	MailFrom           string
	Currency           string
	ConfirmationWindow time.Duration
}

// OrderService обрабатывает бизнес-логику заказов
// COD и перевод проводятся сразу со списанием остатка; карта создает
// предварительный заказ, который живёт до подтверждения провайдера
// или истечения окна
type OrderService struct {
	orderRepo        repository.OrderRepository
	orderItemRepo    repository.OrderItemRepository
	productRepo      repository.ProductRepository
	paymentTypeRepo  repository.PaymentTypeRepository
	deliveryTypeRepo repository.DeliveryTypeRepository
	paymentProvider  infrastructure.PaymentProvider
	notifier         Notifier
	mailSender       infrastructure.MailSender
	kafkaProducer    infrastructure.MessagePublisher
	cfg              OrderConfig
}

// NewOrderService создает новый сервис заказов с внедрением зависимостей
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	paymentTypeRepo repository.PaymentTypeRepository,
	deliveryTypeRepo repository.DeliveryTypeRepository,
	paymentProvider infrastructure.PaymentProvider,
	notifier Notifier,
	mailSender infrastructure.MailSender,
	kafkaProducer infrastructure.MessagePublisher,
	cfg OrderConfig,
) *OrderService {
	return &OrderService{
		orderRepo:        orderRepo,
		orderItemRepo:    orderItemRepo,
		productRepo:      productRepo,
		paymentTypeRepo:  paymentTypeRepo,
		deliveryTypeRepo: deliveryTypeRepo,
		paymentProvider:  paymentProvider,
		notifier:         notifier,
		mailSender:       mailSender,
		kafkaProducer:    kafkaProducer,
		cfg:              cfg,
	}
}

// CreateOrder создает новый заказ
// 1. Проверяет способы оплаты и доставки, существование товаров
// 2. Считает итоговую сумму по текущим ценам плюс доставка
// 3. COD/перевод: списывает остаток и сохраняет заказ в pending
// 4. Карта: сохраняет предварительный заказ с окном подтверждения,
//    остаток не трогается до ответа провайдера
func (s *OrderService) CreateOrder(ctx context.Context, userID, email string, req *entity.CreateOrderRequest) (*entity.OrderWithItems, error) {
	paymentTypeID, err := primitive.ObjectIDFromHex(req.PaymentTypeID)
	if err != nil {
		return nil, ErrInvalidID
	}
	deliveryTypeID, err := primitive.ObjectIDFromHex(req.DeliveryTypeID)
	if err != nil {
		return nil, ErrInvalidID
	}

	paymentType, err := s.paymentTypeRepo.GetByID(ctx, paymentTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentTypeNotFound) {
			return nil, ErrPaymentTypeNotFound
		}
		return nil, fmt.Errorf("failed to get payment type: %w", err)
	}

	deliveryType, err := s.deliveryTypeRepo.GetByID(ctx, deliveryTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrDeliveryTypeNotFound) {
			return nil, ErrDeliveryTypeNotFound
		}
		return nil, fmt.Errorf("failed to get delivery type: %w", err)
	}

	// Загружаем товары и считаем сумму по текущим ценам
	type orderLine struct {
		product  *entity.Product
		quantity int
	}
	lines := make([]orderLine, 0, len(req.Items))
	var total float64
	for _, itemReq := range req.Items {
		productID, err := primitive.ObjectIDFromHex(itemReq.ProductID)
		if err != nil {
			return nil, ErrInvalidID
		}

		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}

		lines = append(lines, orderLine{product: product, quantity: itemReq.Quantity})
		total += product.Price * float64(itemReq.Quantity)
	}
	total += deliveryType.Price

	order := &entity.Order{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		Email:          email,
		LanguageCode:   req.LanguageCode,
		PaymentTypeID:  paymentTypeID,
		DeliveryTypeID: deliveryTypeID,
		Status:         entity.OrderStatusPending,
		Total:          total,
		CreatedAt:      time.Now(),
	}

	var expireAt *time.Time
	switch paymentType.Kind {
	case entity.PaymentKindCard:
		// Остаток не списываем: заказ предварительный до ответа провайдера
		t := time.Now().Add(s.cfg.ConfirmationWindow)
		expireAt = &t
		order.ExpireAt = expireAt

		ref, err := s.paymentProvider.CreateIntent(ctx, order.ID.Hex(), total, s.cfg.Currency, map[string]string{
			"user_id": userID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create payment intent: %w", err)
		}
		order.ProviderRef = ref
	default:
		// COD и перевод: проверяем и списываем остаток сразу
		for _, line := range lines {
			if line.product.Quantity < line.quantity {
				return nil, ErrInsufficientStock
			}
		}
		for _, line := range lines {
			if err := s.productRepo.DecrementStock(ctx, line.product.ID, line.quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return nil, ErrInsufficientStock
				}
				return nil, fmt.Errorf("failed to decrement stock: %w", err)
			}
		}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := make([]entity.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := entity.OrderItem{
			ID:        primitive.NewObjectID(),
			OrderID:   order.ID,
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			ExpireAt:  expireAt,
		}
		if err := s.orderItemRepo.Create(ctx, &item); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		orderItems = append(orderItems, item)
	}

	metrics.OrdersCreated.WithLabelValues(string(paymentType.Kind)).Inc()

	// Побочные эффекты только для сразу проведённых заказов;
	// карточный заказ уведомляет при подтверждении платежа
	if paymentType.Kind != entity.PaymentKindCard {
		s.notifyOrderPlaced(ctx, order)
	}
	s.publishOrderEvent(ctx, "ORDER_CREATED", order)

	return &entity.OrderWithItems{
		Order: *order,
		Items: orderItems,
	}, nil
}

// notifyOrderPlaced рассылает уведомления о проведённом заказе
// Каждый эффект независим: ошибка логируется и не прерывает остальные
func (s *OrderService) notifyOrderPlaced(ctx context.Context, order *entity.Order) {
	if order.Email != "" {
		subject, html := orderPlacedMail(order.LanguageCode, order.ID.Hex(), order.Total)
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
	if _, err := s.notifier.Notify(ctx, s.cfg.AdminUserID, fmt.Sprintf("Новый заказ %s на сумму %.2f", order.ID.Hex(), order.Total), &orderID); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("Failed to notify admin")
	}

	if s.cfg.AdminEmail != "" {
		err := s.mailSender.Send(ctx, infrastructure.MailMessage{
			From:    s.cfg.MailFrom,
			To:      s.cfg.AdminEmail,
			Subject: "Новый заказ",
			HTML:    fmt.Sprintf("<p>Поступил заказ %s на сумму %.2f.</p>", order.ID.Hex(), order.Total),
		})
		if err != nil {
			logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("Failed to send admin mail")
		}
	}
}

// GetOrder получает заказ по ID с проверкой доступа
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID string) (*entity.OrderWithItems, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrInvalidID
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.UserID != userID {
		return nil, ErrUnauthorized
	}

	items, err := s.orderItemRepo.GetByOrderID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	return &entity.OrderWithItems{
		Order: *order,
		Items: items,
	}, nil
}

// GetUserOrders получает все заказы пользователя
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}
	return orders, nil
}

// ListOrders получает все заказы (админ)
func (s *OrderService) ListOrders(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListPaymentTypes возвращает доступные способы оплаты
func (s *OrderService) ListPaymentTypes(ctx context.Context) ([]entity.PaymentType, error) {
	paymentTypes, err := s.paymentTypeRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment types: %w", err)
	}
	return paymentTypes, nil
}

// ListDeliveryTypes возвращает доступные способы доставки
func (s *OrderService) ListDeliveryTypes(ctx context.Context) ([]entity.DeliveryType, error) {
	deliveryTypes, err := s.deliveryTypeRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery types: %w", err)
	}
	return deliveryTypes, nil
}

// UpdateStatus переводит заказ в новый статус (админ)
// Единственный запрет - выход из финального статуса; остальные переходы
// разрешены как административная коррекция
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, newStatus entity.OrderStatus) (*entity.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrInvalidID
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status.IsTerminal() {
		return nil, ErrOrderTerminal
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = newStatus

	// Покупатель узнаёт о смене статуса; ошибки эффектов не прерывают операцию
	if _, err := s.notifier.Notify(ctx, order.UserID, fmt.Sprintf("Статус заказа %s изменён на %s", order.ID.Hex(), newStatus), &order.ID); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID.Hex()).Msg("Failed to notify buyer")
	}

	if order.Email != "" {
		subject, html := orderStatusMail(order.LanguageCode, order.ID.Hex(), newStatus)
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

	s.publishOrderEvent(ctx, "ORDER_STATUS_UPDATED", order)

	return order, nil
}

// DeleteOrder удаляет заказ вместе с позициями (админ)
// Остаток на склад не возвращается
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return ErrInvalidID
	}

	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	if err := s.orderItemRepo.DeleteByOrderID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return nil
}

// publishOrderEvent отправляет событие о заказе в Kafka
// Ошибка логируется: заказ уже сохранён, проблемы Kafka не критичны
func (s *OrderService) publishOrderEvent(ctx context.Context, eventType string, order *entity.Order) {
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
