package repository

import (
	"context"
	"errors"
	"fmt"

	"northberries/shop-service/internal/app/shop/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Справочники способов оплаты и доставки
// Заполняются при развёртывании, сервис их только читает

type paymentTypeRepository struct {
	collection *mongo.Collection
}

func NewPaymentTypeRepository(db *mongo.Database) PaymentTypeRepository {
	return &paymentTypeRepository{collection: db.Collection("payment_types")}
}

func (r *paymentTypeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.PaymentType, error) {
	var paymentType entity.PaymentType
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&paymentType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPaymentTypeNotFound
		}
		return nil, fmt.Errorf("failed to get payment type: %w", err)
	}

	return &paymentType, nil
}

func (r *paymentTypeRepository) GetAll(ctx context.Context) ([]entity.PaymentType, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find payment types: %w", err)
	}
	defer cursor.Close(ctx)

	var types []entity.PaymentType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, fmt.Errorf("failed to decode payment types: %w", err)
	}

	return types, nil
}

type deliveryTypeRepository struct {
	collection *mongo.Collection
}

func NewDeliveryTypeRepository(db *mongo.Database) DeliveryTypeRepository {
	return &deliveryTypeRepository{collection: db.Collection("delivery_types")}
}

func (r *deliveryTypeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.DeliveryType, error) {
	var deliveryType entity.DeliveryType
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&deliveryType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDeliveryTypeNotFound
		}
		return nil, fmt.Errorf("failed to get delivery type: %w", err)
	}

	return &deliveryType, nil
}

func (r *deliveryTypeRepository) GetAll(ctx context.Context) ([]entity.DeliveryType, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find delivery types: %w", err)
	}
	defer cursor.Close(ctx)

	var types []entity.DeliveryType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, fmt.Errorf("failed to decode delivery types: %w", err)
	}

	return types, nil
}
