package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"northberries/pkg/logger"
	"northberries/shop-service/internal/app/shop/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository создает репозиторий товаров
// Индексы покрывают выборку по категории и сортировку по дате создания
func NewProductRepository(db *mongo.Database) ProductRepository {
	collection := db.Collection("products")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category_ids", Value: 1}},
			Options: options.Index().SetName("category_ids_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Msg("failed to create product indexes")
	}

	return &productRepository{collection: collection}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	product.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// GetByIDs получает товары по списку ID
func (r *productRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// Update обновляет товар
// soldOut и quantity устанавливаются независимо: админ может пометить
// товар распроданным, не обнуляя остаток
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	filter := bson.M{"_id": product.ID}
	update := bson.M{
		"$set": bson.M{
			"name":         product.Name,
			"description":  product.Description,
			"category_ids": product.CategoryIDs,
			"price":        product.Price,
			"quantity":     product.Quantity,
			"sold_out":     product.SoldOut,
			"hidden":       product.Hidden,
			"featured":     product.Featured,
			"image":        product.Image,
			"images":       product.Images,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete удаляет товар
func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// sortStage возвращает порядок сортировки для варианта выдачи
// Везде есть вторичные ключи created_at и _id, чтобы пагинация была детерминированной
func sortStage(sort entity.ProductSort) bson.D {
	switch sort {
	case entity.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	case entity.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	case entity.SortFeatured:
		return bson.D{{Key: "featured", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// Query выполняет фильтрацию, сортировку и пагинацию одним pipeline
// $facet считает total по отфильтрованному набору и режет страницу за один проход
func (r *productRepository) Query(ctx context.Context, query *entity.ProductQuery) ([]entity.Product, int64, error) {
	match := bson.M{}

	if !query.IncludeHidden {
		match["hidden"] = false
	}

	if query.CategoryID != nil {
		match["category_ids"] = *query.CategoryID
	}

	if query.Keyword != "" {
		// Экранируем метасимволы: пользовательский ввод никогда
		// не интерпретируется как шаблон
		match["name"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(query.Keyword),
			Options: "i",
		}
	}

	skip := int64(query.Page-1) * int64(query.PageSize)
	limit := int64(query.PageSize)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sort", Value: sortStage(query.Sort)}},
		bson.D{{Key: "$facet", Value: bson.M{
			"items": bson.A{
				bson.M{"$skip": skip},
				bson.M{"$limit": limit},
			},
			"total": bson.A{
				bson.M{"$count": "count"},
			},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []struct {
		Items []entity.Product `bson:"items"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, 0, fmt.Errorf("failed to decode product page: %w", err)
	}

	if len(facets) == 0 {
		return nil, 0, nil
	}

	var total int64
	if len(facets[0].Total) > 0 {
		total = facets[0].Total[0].Count
	}

	return facets[0].Items, total, nil
}

// FeaturedByCategory группирует активные товары по категориям
// Порядок фиксирован: сортировка по дате, группировка, затем срез первых perGroup
func (r *productRepository) FeaturedByCategory(ctx context.Context, perGroup int) ([]entity.FeaturedGroup, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"hidden":   false,
			"sold_out": false,
			"quantity": bson.M{"$gt": 0},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		bson.D{{Key: "$unwind", Value: "$category_ids"}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": "$category_ids",
			"products": bson.M{"$push": bson.M{
				"_id":         "$_id",
				"name":        "$name",
				"description": "$description",
				"price":       "$price",
				"quantity":    "$quantity",
				"sold_out":    "$sold_out",
				"hidden":      "$hidden",
				"featured":    "$featured",
				"image":       "$image",
				"images":      "$images",
				"created_at":  "$created_at",
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"products": bson.M{"$slice": bson.A{"$products", perGroup}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to group featured products: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		CategoryID primitive.ObjectID `bson:"_id"`
		Products   []entity.Product   `bson:"products"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode featured groups: %w", err)
	}

	result := make([]entity.FeaturedGroup, 0, len(groups))
	for _, g := range groups {
		result = append(result, entity.FeaturedGroup{
			CategoryID: g.CategoryID,
			Products:   g.Products,
		})
	}

	return result, nil
}

// DecrementStock атомарно списывает qty единиц товара
// Guarded update исключает уход остатка в минус при конкурентных списаниях;
// sold_out выставляется вторым обновлением сразу после обнуления остатка
func (r *productRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	filter := bson.M{
		"_id":      id,
		"quantity": bson.M{"$gte": qty},
	}
	update := bson.M{"$inc": bson.M{"quantity": -qty}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if result.MatchedCount == 0 {
		// Либо товара нет, либо остатка не хватает
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrInsufficientStock
	}

	soldOutFilter := bson.M{"_id": id, "quantity": bson.M{"$lte": 0}}
	soldOutUpdate := bson.M{"$set": bson.M{"sold_out": true}}

	if _, err := r.collection.UpdateOne(ctx, soldOutFilter, soldOutUpdate); err != nil {
		return fmt.Errorf("failed to mark product sold out: %w", err)
	}

	return nil
}

// CountByCategory считает товары, ссылающиеся на категорию
// Используется как предпроверка перед удалением категории
func (r *productRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"category_ids": categoryID})
	if err != nil {
		return 0, fmt.Errorf("failed to count products by category: %w", err)
	}

	return count, nil
}
