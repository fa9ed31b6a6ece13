package processor

import (
	"context"
	"fmt"
	"time"

	"northberries/pkg/logger"
	"northberries/pkg/metrics"
	"northberries/shop-service/internal/app/shop/repository"

	"github.com/robfig/cron/v3"
)

// OrderSweeper периодически удаляет просроченные предварительные заказы
// Заказ, чьё окно подтверждения истекло без ответа провайдера, считается
// несостоявшимся и удаляется вместе с позициями
type OrderSweeper struct {
	cron          *cron.Cron
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	now           func() time.Time
}

// NewOrderSweeper создает новый sweeper просроченных заказов
func NewOrderSweeper(orderRepo repository.OrderRepository, orderItemRepo repository.OrderItemRepository) *OrderSweeper {
	return &OrderSweeper{
		cron:          cron.New(),
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		now:           time.Now,
	}
}

// Start регистрирует задачу по расписанию и выполняет первый проход сразу
func (s *OrderSweeper) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting order sweeper")

	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.Sweep(ctx); err != nil {
			logger.Error().Err(err).Msg("Order sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule order sweep: %w", err)
	}

	s.cron.Start()

	// Первый проход при старте: подбираем заказы, истекшие пока сервис лежал
	if err := s.Sweep(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial order sweep failed")
	}

	return nil
}

// Sweep удаляет просроченные предварительные заказы и их позиции
func (s *OrderSweeper) Sweep(ctx context.Context) error {
	orderIDs, err := s.orderRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to delete expired orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return nil
	}

	for _, orderID := range orderIDs {
		if err := s.orderItemRepo.DeleteByOrderID(ctx, orderID); err != nil {
			logger.Error().Err(err).Str("order_id", orderID.Hex()).Msg("Failed to delete items of expired order")
		}
	}

	metrics.OrdersSwept.Add(float64(len(orderIDs)))
	logger.Info().Int("count", len(orderIDs)).Msg("Swept expired provisional orders")

	return nil
}

// Stop останавливает планировщик и дожидается активных задач
func (s *OrderSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Order sweeper stopped")
}

// GetEntries возвращает зарегистрированные задачи планировщика
func (s *OrderSweeper) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
