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

type localizedValueRepository struct {
	collection *mongo.Collection
}

// NewLocalizedValueRepository создает репозиторий локализованных значений
// Индекс по language_code ускоряет выборку значений владельца по языку
func NewLocalizedValueRepository(db *mongo.Database) LocalizedValueRepository {
	collection := db.Collection("localized_values")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "language_code", Value: 1},
		},
		Options: options.Index().SetName("language_code_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("failed to create index on language_code")
	}

	return &localizedValueRepository{collection: collection}
}

// Create создает новое локализованное значение
func (r *localizedValueRepository) Create(ctx context.Context, value *entity.LocalizedValue) error {
	result, err := r.collection.InsertOne(ctx, value)
	if err != nil {
		return fmt.Errorf("failed to create localized value: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		value.ID = oid
	}

	return nil
}

// GetByIDs получает все значения владельца по списку ID
func (r *localizedValueRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.LocalizedValue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find localized values: %w", err)
	}
	defer cursor.Close(ctx)

	var values []entity.LocalizedValue
	if err := cursor.All(ctx, &values); err != nil {
		return nil, fmt.Errorf("failed to decode localized values: %w", err)
	}

	return values, nil
}

// UpdateText меняет текст значения, не трогая язык
func (r *localizedValueRepository) UpdateText(ctx context.Context, id primitive.ObjectID, text string) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"text": text}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update localized value: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrValueNotFound
	}

	return nil
}

// DeleteByIDs каскадно удаляет значения владельца
func (r *localizedValueRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}

	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete localized values: %w", err)
	}

	return nil
}
