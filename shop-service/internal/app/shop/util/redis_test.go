package util

import (
	"context"
	"testing"
	"time"

	"northberries/shop-service/internal/app/shop/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedisClientTestSuite тестовый suite для кеша категорий
type RedisClientTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *RedisClient
}

func TestRedisClientSuite(t *testing.T) {
	suite.Run(t, new(RedisClientTestSuite))
}

func (s *RedisClientTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client, err = NewRedisClient(s.miniRedis.Addr(), "", 0)
	require.NoError(s.T(), err)
}

func (s *RedisClientTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisClientTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *RedisClientTestSuite) TestGetCategories_MissReturnsNil() {
	ctx := context.Background()

	result, err := s.client.GetCategories(ctx, "en")

	s.NoError(err)
	s.Nil(result)
}

func (s *RedisClientTestSuite) TestSetAndGetCategories() {
	ctx := context.Background()
	categories := []entity.CategoryView{
		{
			Category: entity.Category{ID: primitive.NewObjectID(), Featured: true},
			Name:     "Fruits",
		},
	}

	err := s.client.SetCategories(ctx, "en", categories, 10*time.Minute)
	s.NoError(err)

	result, err := s.client.GetCategories(ctx, "en")

	s.NoError(err)
	s.Len(result, 1)
	s.Equal("Fruits", result[0].Name)
	s.Equal(categories[0].ID, result[0].ID)
}

func (s *RedisClientTestSuite) TestCategoriesCachedPerLanguage() {
	ctx := context.Background()

	err := s.client.SetCategories(ctx, "en", []entity.CategoryView{{Name: "Fruits"}}, time.Minute)
	s.NoError(err)
	err = s.client.SetCategories(ctx, "ru", []entity.CategoryView{{Name: "Фрукты"}}, time.Minute)
	s.NoError(err)

	en, err := s.client.GetCategories(ctx, "en")
	s.NoError(err)
	ru, err := s.client.GetCategories(ctx, "ru")
	s.NoError(err)

	s.Equal("Fruits", en[0].Name)
	s.Equal("Фрукты", ru[0].Name)
}

func (s *RedisClientTestSuite) TestDeleteCategories_InvalidatesAllLanguages() {
	ctx := context.Background()

	s.NoError(s.client.SetCategories(ctx, "en", []entity.CategoryView{{Name: "Fruits"}}, time.Minute))
	s.NoError(s.client.SetCategories(ctx, "ru", []entity.CategoryView{{Name: "Фрукты"}}, time.Minute))

	err := s.client.DeleteCategories(ctx, []string{"en", "ru"})
	s.NoError(err)

	en, err := s.client.GetCategories(ctx, "en")
	s.NoError(err)
	s.Nil(en)
	ru, err := s.client.GetCategories(ctx, "ru")
	s.NoError(err)
	s.Nil(ru)
}

func (s *RedisClientTestSuite) TestSetCategories_ExpiresWithTTL() {
	ctx := context.Background()

	s.NoError(s.client.SetCategories(ctx, "en", []entity.CategoryView{{Name: "Fruits"}}, time.Minute))

	s.miniRedis.FastForward(2 * time.Minute)

	result, err := s.client.GetCategories(ctx, "en")
	s.NoError(err)
	s.Nil(result)
}
