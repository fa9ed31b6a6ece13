package repository

import (
	"context"
	"fmt"
	"time"

	"northberries/pkg/logger"
	"northberries/shop-service/internal/app/shop/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderItemRepository struct {
	collection *mongo.Collection
}

// NewOrderItemRepository создает репозиторий позиций заказа
func NewOrderItemRepository(db *mongo.Database) OrderItemRepository {
	collection := db.Collection("order_items")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "order_id", Value: 1}},
		Options: options.Index().SetName("order_id_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("failed to create index on order_id")
	}

	return &orderItemRepository{collection: collection}
}

// Create создает позицию заказа
func (r *orderItemRepository) Create(ctx context.Context, item *entity.OrderItem) error {
	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}

	return nil
}

// GetByOrderID получает все позиции заказа
func (r *orderItemRepository) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]entity.OrderItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to find order items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []entity.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}

	return items, nil
}

// ClearExpiry снимает expire_at со всех позиций заказа
// Вызывается при финализации: позиции становятся постоянными вместе с заказом
func (r *orderItemRepository) ClearExpiry(ctx context.Context, orderID primitive.ObjectID) error {
	filter := bson.M{"order_id": orderID}
	update := bson.M{"$unset": bson.M{"expire_at": ""}}

	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to clear order items expiry: %w", err)
	}

	return nil
}

// DeleteByOrderID каскадно удаляет позиции заказа
func (r *orderItemRepository) DeleteByOrderID(ctx context.Context, orderID primitive.ObjectID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"order_id": orderID}); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	return nil
}
