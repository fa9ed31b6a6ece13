package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"northberries/pkg/logger"
	"northberries/shop-service/internal/app/shop/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository создает репозиторий уведомлений
func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	collection := db.Collection("notifications")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}},
		Options: options.Index().SetName("user_id_is_read_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("failed to create index on notifications")
	}

	return &notificationRepository{collection: collection}
}

// Create создает уведомление
func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	notification.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		notification.ID = oid
	}

	return nil
}

// GetByID получает уведомление по ID
func (r *notificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Notification, error) {
	var notification entity.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &notification, nil
}

// GetByUserID получает уведомления пользователя, новые первыми
func (r *notificationRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []entity.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead помечает прочитанными только реально непрочитанные из ids
// ModifiedCount - точная дельта для счётчика: уже прочитанные не считаются
func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"_id":     bson.M{"$in": ids},
		"user_id": userID,
		"is_read": false,
	}
	update := bson.M{"$set": bson.M{"is_read": true}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return result.ModifiedCount, nil
}

// MarkAllRead помечает прочитанными все непрочитанные уведомления пользователя
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"user_id": userID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	return result.ModifiedCount, nil
}

// Delete удаляет уведомление и возвращает удалённый документ
// Вызывающему нужен его is_read для корректировки счётчика
func (r *notificationRepository) Delete(ctx context.Context, id primitive.ObjectID) (*entity.Notification, error) {
	var notification entity.Notification
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&notification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to delete notification: %w", err)
	}

	return &notification, nil
}

type notificationCounterRepository struct {
	collection *mongo.Collection
}

// NewNotificationCounterRepository создает репозиторий счётчиков непрочитанных
// _id документа - userID, поэтому "ровно один счётчик на пользователя"
// обеспечен самим хранилищем
func NewNotificationCounterRepository(db *mongo.Database) NotificationCounterRepository {
	return &notificationCounterRepository{collection: db.Collection("notification_counters")}
}

// Increment атомарно увеличивает счётчик
// Upsert лениво создаёт нулевой документ - read-modify-write здесь недопустим,
// параллельные инкременты не должны теряться
func (r *notificationCounterRepository) Increment(ctx context.Context, userID string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$inc": bson.M{"count": 1}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to increment notification counter: %w", err)
	}

	return nil
}

// DecrementClamped атомарно уменьшает счётчик, не опуская его ниже нуля
// Pipeline update с $max выполняет вычитание и зажим одной операцией
func (r *notificationCounterRepository) DecrementClamped(ctx context.Context, userID string, by int64) error {
	if by <= 0 {
		return nil
	}

	filter := bson.M{"_id": userID}
	update := bson.A{
		bson.M{"$set": bson.M{
			"count": bson.M{"$max": bson.A{
				0,
				bson.M{"$subtract": bson.A{bson.M{"$ifNull": bson.A{"$count", 0}}, by}},
			}},
		}},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to decrement notification counter: %w", err)
	}

	return nil
}

// Get возвращает счётчик, лениво создавая нулевой при первом запросе
func (r *notificationCounterRepository) Get(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"_id": userID}
	update := bson.M{"$setOnInsert": bson.M{"count": int64(0)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter entity.NotificationCounter
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to get notification counter: %w", err)
	}

	return counter.Count, nil
}
