package service

import (
	"context"
	"errors"
	"testing"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolve_Success(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en", "ru"})

	ctx := context.Background()
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	valueRepo.On("GetByIDs", ctx, ids).Return([]entity.LocalizedValue{
		{ID: ids[0], LanguageCode: "en", Text: "Fruits"},
		{ID: ids[1], LanguageCode: "ru", Text: "Фрукты"},
	}, nil)

	text, err := service.Resolve(ctx, ids, "ru")

	assert.NoError(t, err)
	assert.Equal(t, "Фрукты", text)
}

func TestResolve_LanguageMissing(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en", "ru"})

	ctx := context.Background()
	ids := []primitive.ObjectID{primitive.NewObjectID()}

	valueRepo.On("GetByIDs", ctx, ids).Return([]entity.LocalizedValue{
		{ID: ids[0], LanguageCode: "en", Text: "Fruits"},
	}, nil)

	text, err := service.Resolve(ctx, ids, "ru")

	assert.ErrorIs(t, err, ErrValueNotFound)
	assert.Empty(t, text)
}

func TestResolve_EmptyIDs(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en"})

	text, err := service.Resolve(context.Background(), nil, "en")

	assert.ErrorIs(t, err, ErrValueNotFound)
	assert.Empty(t, text)
	valueRepo.AssertNotCalled(t, "GetByIDs")
}

func TestUpsert_UpdatesExistingLanguage(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en", "ru"})

	ctx := context.Background()
	valueID := primitive.NewObjectID()
	ids := []primitive.ObjectID{valueID}

	valueRepo.On("GetByIDs", ctx, ids).Return([]entity.LocalizedValue{
		{ID: valueID, LanguageCode: "en", Text: "Old"},
	}, nil)
	valueRepo.On("UpdateText", ctx, valueID, "New").Return(nil)

	appendedID, err := service.Upsert(ctx, ids, "en", "New")

	assert.NoError(t, err)
	assert.Nil(t, appendedID)
	valueRepo.AssertNotCalled(t, "Create")
}

func TestUpsert_AppendsNewLanguage(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en", "ru"})

	ctx := context.Background()
	ids := []primitive.ObjectID{primitive.NewObjectID()}

	valueRepo.On("GetByIDs", ctx, ids).Return([]entity.LocalizedValue{
		{ID: ids[0], LanguageCode: "en", Text: "Fruits"},
	}, nil)
	valueRepo.On("Create", ctx, mock.AnythingOfType("*entity.LocalizedValue")).Return(nil)

	appendedID, err := service.Upsert(ctx, ids, "ru", "Фрукты")

	assert.NoError(t, err)
	assert.NotNil(t, appendedID)
	valueRepo.AssertNotCalled(t, "UpdateText")
}

func TestUpsert_UnsupportedLanguage(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en", "ru"})

	appendedID, err := service.Upsert(context.Background(), nil, "fr", "Fruits")

	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Nil(t, appendedID)
	valueRepo.AssertNotCalled(t, "GetByIDs")
}

func TestCreateSet_BackfillsMissingLanguages(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en", "ru"})

	ctx := context.Background()
	created := make([]entity.LocalizedValue, 0, 2)

	valueRepo.On("Create", ctx, mock.AnythingOfType("*entity.LocalizedValue")).Return(nil).Run(func(args mock.Arguments) {
		created = append(created, *args.Get(1).(*entity.LocalizedValue))
	})

	ids, err := service.CreateSet(ctx, map[string]string{"en": "Fruits"}, "Fruits")

	assert.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Len(t, created, 2)
	assert.Equal(t, "en", created[0].LanguageCode)
	assert.Equal(t, "Fruits", created[0].Text)
	assert.Equal(t, "ru", created[1].LanguageCode)
	assert.Equal(t, "Fruits", created[1].Text)
}

func TestCreateSet_UnsupportedLanguage(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en", "ru"})

	ids, err := service.CreateSet(context.Background(), map[string]string{"fr": "Fruits"}, "Fruits")

	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Nil(t, ids)
}

func TestDeleteSet_EmptyIsNoop(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en"})

	err := service.DeleteSet(context.Background(), nil)

	assert.NoError(t, err)
	valueRepo.AssertNotCalled(t, "DeleteByIDs")
}

func TestDeleteSet_RepoError(t *testing.T) {
	valueRepo := new(mocks.MockLocalizedValueRepository)
	service := NewLocalizedValueService(valueRepo, []string{"en"})

	ctx := context.Background()
	ids := []primitive.ObjectID{primitive.NewObjectID()}

	valueRepo.On("DeleteByIDs", ctx, ids).Return(errors.New("db error"))

	err := service.DeleteSet(ctx, ids)

	assert.Error(t, err)
}
