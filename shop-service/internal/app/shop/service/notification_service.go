package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"northberries/pkg/metrics"
	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnauthorized         = errors.New("access denied")
	ErrInvalidID            = errors.New("invalid id format")
)

// Notifier - внутренний порт создания уведомлений
// Нужен заказам и сверке платежей, чтобы не тянуть репозитории уведомлений
type Notifier interface {
	Notify(ctx context.Context, userID, message string, orderID *primitive.ObjectID) (*entity.Notification, error)
}

// NotificationService управляет уведомлениями и счётчиком непрочитанных
// Счётчик денормализован: каждая запись/прочтение меняет его атомарно,
// значение никогда не уходит ниже нуля
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	counterRepo      repository.NotificationCounterRepository
}

// NewNotificationService создает новый сервис уведомлений
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	counterRepo repository.NotificationCounterRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		counterRepo:      counterRepo,
	}
}

// Notify создает уведомление и увеличивает счётчик непрочитанных
func (s *NotificationService) Notify(ctx context.Context, userID, message string, orderID *primitive.ObjectID) (*entity.Notification, error) {
	notification := &entity.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Message:   message,
		OrderID:   orderID,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if err := s.counterRepo.Increment(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to increment unread counter: %w", err)
	}

	metrics.NotificationsCreated.Inc()

	return notification, nil
}

// GetUserNotifications возвращает уведомления пользователя
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]entity.Notification, error) {
	notifications, err := s.notificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount возвращает число непрочитанных уведомлений
// Счётчик создается лениво при первом чтении
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.counterRepo.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread counter: %w", err)
	}
	return count, nil
}

// MarkRead помечает уведомления прочитанными
// Счётчик уменьшается ровно на число реально изменённых документов:
// повторная пометка уже прочитанных счётчик не трогает
func (s *NotificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return 0, ErrInvalidID
		}
		objectIDs = append(objectIDs, objectID)
	}

	modified, err := s.notificationRepo.MarkRead(ctx, userID, objectIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	if modified > 0 {
		if err := s.counterRepo.DecrementClamped(ctx, userID, modified); err != nil {
			return 0, fmt.Errorf("failed to decrement unread counter: %w", err)
		}
	}

	return modified, nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	modified, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	if modified > 0 {
		if err := s.counterRepo.DecrementClamped(ctx, userID, modified); err != nil {
			return 0, fmt.Errorf("failed to decrement unread counter: %w", err)
		}
	}

	return modified, nil
}

// Delete удаляет уведомление с проверкой владельца
// Удаление непрочитанного уменьшает счётчик на единицу
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return ErrInvalidID
	}

	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.UserID != userID {
		return ErrUnauthorized
	}

	deleted, err := s.notificationRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	if !deleted.IsRead {
		if err := s.counterRepo.DecrementClamped(ctx, userID, 1); err != nil {
			return fmt.Errorf("failed to decrement unread counter: %w", err)
		}
	}

	return nil
}
