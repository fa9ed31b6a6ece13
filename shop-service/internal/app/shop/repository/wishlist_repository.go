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

type wishlistRepository struct {
	collection *mongo.Collection
}

// NewWishlistRepository создает репозиторий списков желаний
// Тот же partial unique index по user_id, что и у корзин
func NewWishlistRepository(db *mongo.Database) WishlistRepository {
	collection := db.Collection("wishlists")

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
		logger.Warn().Err(err).Msg("failed to create unique index on wishlist user_id")
	}

	return &wishlistRepository{collection: collection}
}

// Create создает новый список желаний
func (r *wishlistRepository) Create(ctx context.Context, wishlist *entity.Wishlist) error {
	wishlist.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, wishlist)
	if err != nil {
		return fmt.Errorf("failed to create wishlist: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		wishlist.ID = oid
	}

	return nil
}

// GetByID получает список желаний по ID
func (r *wishlistRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Wishlist, error) {
	var wishlist entity.Wishlist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return &wishlist, nil
}

// GetByUserID получает список желаний пользователя
func (r *wishlistRepository) GetByUserID(ctx context.Context, userID string) (*entity.Wishlist, error) {
	var wishlist entity.Wishlist
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist by user: %w", err)
	}

	return &wishlist, nil
}

// AddProduct добавляет товар в список; дубликаты схлопываются через $addToSet
func (r *wishlistRepository) AddProduct(ctx context.Context, id, productID primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$addToSet": bson.M{"product_ids": productID}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add wishlist product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrWishlistNotFound
	}

	return nil
}

// RemoveProduct убирает товар и возвращает число оставшихся ссылок
func (r *wishlistRepository) RemoveProduct(ctx context.Context, id, productID primitive.ObjectID) (int, error) {
	filter := bson.M{"_id": id}
	update := bson.M{"$pull": bson.M{"product_ids": productID}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to remove wishlist product: %w", err)
	}

	if result.MatchedCount == 0 {
		return 0, ErrWishlistNotFound
	}

	wishlist, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	return len(wishlist.ProductIDs), nil
}

// Delete удаляет список желаний
func (r *wishlistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete wishlist: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrWishlistNotFound
	}

	return nil
}
