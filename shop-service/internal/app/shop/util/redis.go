package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"northberries/pkg/metrics"
	"northberries/shop-service/internal/app/shop/entity"

	"github.com/redis/go-redis/v9"
)

// Кеш списков категорий, раздельный по языку запроса
// Глобальной локали нет: язык всегда явный параметр ключа
const categoriesKeyPrefix = "categories"

func categoriesKey(languageCode string) string {
	return fmt.Sprintf("%s:%s", categoriesKeyPrefix, languageCode)
}

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// SetCategories кеширует разрезолвленные категории для языка
func (r *RedisClient) SetCategories(ctx context.Context, languageCode string, categories []entity.CategoryView, ttl time.Duration) error {
	timer := metrics.NewRedisTimer("shop-service", metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	if err := r.client.Set(ctx, categoriesKey(languageCode), data, ttl).Err(); err != nil {
		metrics.RecordRedisError("shop-service", metrics.RedisOpSet)
		return fmt.Errorf("failed to set categories in cache: %w", err)
	}

	return nil
}

// GetCategories возвращает кешированные категории для языка; nil при промахе
func (r *RedisClient) GetCategories(ctx context.Context, languageCode string) ([]entity.CategoryView, error) {
	timer := metrics.NewRedisTimer("shop-service", metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, categoriesKey(languageCode)).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss("shop-service", categoriesKeyPrefix)
			return nil, nil
		}
		metrics.RecordRedisError("shop-service", metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get categories from cache: %w", err)
	}

	var categories []entity.CategoryView
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	metrics.RecordCacheHit("shop-service", categoriesKeyPrefix)
	return categories, nil
}

// DeleteCategories инвалидирует кеш для всех языков
func (r *RedisClient) DeleteCategories(ctx context.Context, languageCodes []string) error {
	timer := metrics.NewRedisTimer("shop-service", metrics.RedisOpDel)
	defer timer.ObserveDuration()

	keys := make([]string, len(languageCodes))
	for i, code := range languageCodes {
		keys[i] = categoriesKey(code)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordRedisError("shop-service", metrics.RedisOpDel)
		return fmt.Errorf("failed to delete categories from cache: %w", err)
	}

	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
