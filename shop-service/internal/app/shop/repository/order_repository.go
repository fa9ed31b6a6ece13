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

type orderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository создает репозиторий заказов
func NewOrderRepository(db *mongo.Database) OrderRepository {
	collection := db.Collection("orders")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "expire_at", Value: 1}},
			Options: options.Index().SetName("expire_at_idx").SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("failed to create order indexes")
	}

	return &orderRepository{collection: collection}
}

// Create создает новый заказ
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	order.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}

	return nil
}

// GetByID получает заказ по ID
func (r *orderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	var order entity.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

// GetProvisional находит заказ только пока он предварительный
// Финализированный (без expire_at) или просроченный заказ здесь не виден -
// это и есть защита идемпотентности сверки платежа
func (r *orderRepository) GetProvisional(ctx context.Context, id primitive.ObjectID, now time.Time) (*entity.Order, error) {
	filter := bson.M{
		"_id":       id,
		"expire_at": bson.M{"$exists": true, "$gt": now},
	}

	var order entity.Order
	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get provisional order: %w", err)
	}

	return &order, nil
}

// GetByUserID получает заказы пользователя, новые первыми
func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []entity.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

// GetAll получает все заказы для админской выборки
func (r *orderRepository) GetAll(ctx context.Context) ([]entity.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []entity.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus меняет статус заказа
func (r *orderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.OrderStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"status": status}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Finalize одним обновлением снимает expire_at и переводит заказ в paid
// Предварительный заказ становится постоянным
func (r *orderRepository) Finalize(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set":   bson.M{"status": entity.OrderStatusPaid},
		"$unset": bson.M{"expire_at": ""},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to finalize order: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Delete удаляет заказ
// Каскад на позиции выполняет service layer через OrderItemRepository
func (r *orderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// DeleteExpired удаляет просроченные предварительные заказы
// Возвращает их ID, чтобы вызывающий каскадно зачистил позиции
func (r *orderRepository) DeleteExpired(ctx context.Context, now time.Time) ([]primitive.ObjectID, error) {
	filter := bson.M{"expire_at": bson.M{"$exists": true, "$lte": now}}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find expired orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode expired orders: %w", err)
	}

	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("failed to delete expired orders: %w", err)
	}

	return ids, nil
}
