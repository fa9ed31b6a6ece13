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

type cartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository создает репозиторий корзин
// Partial unique index по user_id закрывает инвариант "одна корзина на
// пользователя" на уровне хранилища; анонимные корзины (без user_id)
// под индекс не попадают
func NewCartRepository(db *mongo.Database) CartRepository {
	collection := db.Collection("carts")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().
			SetName("user_id_unique_idx").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"user_id": bson.M{"$type": "string"}}),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("failed to create unique index on cart user_id")
	}

	return &cartRepository{collection: collection}
}

// Create создает новую корзину
func (r *cartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	cart.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, cart)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		cart.ID = oid
	}

	return nil
}

// GetByID получает корзину по ID
func (r *cartRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Cart, error) {
	var cart entity.Cart
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// GetByUserID получает корзину пользователя
func (r *cartRepository) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	var cart entity.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart by user: %w", err)
	}

	return &cart, nil
}

// AddItem добавляет позицию в корзину
// Повторное добавление того же товара создаёт отдельную позицию - это
// контракт вызывающего, количество меняется только явным обновлением
func (r *cartRepository) AddItem(ctx context.Context, cartID primitive.ObjectID, item entity.CartItem) error {
	filter := bson.M{"_id": cartID}
	update := bson.M{"$push": bson.M{"items": item}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

// UpdateItemQuantity меняет количество конкретной позиции
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID primitive.ObjectID, quantity int) error {
	filter := bson.M{"_id": cartID, "items._id": itemID}
	update := bson.M{"$set": bson.M{"items.$.quantity": quantity}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// RemoveItemByProduct убирает все позиции с товаром и возвращает их суммарное
// количество вместе с числом оставшихся позиций - вызывающий решает, удалять
// ли корзину. Один FindOneAndUpdate: количества считаются по снимку до $pull,
// конкурентное добавление не искажает remaining
func (r *cartRepository) RemoveItemByProduct(ctx context.Context, cartID, productID primitive.ObjectID) (int, int, error) {
	filter := bson.M{"_id": cartID, "items.product_id": productID}
	update := bson.M{"$pull": bson.M{"items": bson.M{"product_id": productID}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before entity.Cart
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Либо корзины нет, либо в ней нет такого товара
			if _, getErr := r.GetByID(ctx, cartID); getErr != nil {
				return 0, 0, getErr
			}
			return 0, 0, ErrCartItemNotFound
		}
		return 0, 0, fmt.Errorf("failed to remove cart item: %w", err)
	}

	removedQty := 0
	remaining := 0
	for _, item := range before.Items {
		if item.ProductID == productID {
			removedQty += item.Quantity
		} else {
			remaining++
		}
	}

	return removedQty, remaining, nil
}

// Delete удаляет корзину вместе с вложенными позициями
func (r *cartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

// DeleteOthers удаляет все корзины пользователя, кроме keepID
func (r *cartRepository) DeleteOthers(ctx context.Context, keepID primitive.ObjectID, userID string) (int64, error) {
	filter := bson.M{
		"user_id": userID,
		"_id":     bson.M{"$ne": keepID},
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete other carts: %w", err)
	}

	return result.DeletedCount, nil
}
