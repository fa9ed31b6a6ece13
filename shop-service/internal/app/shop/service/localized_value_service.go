package service

import (
	"context"
	"errors"
	"fmt"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrValueNotFound       = errors.New("localized value not found")
	ErrUnsupportedLanguage = errors.New("unsupported language code")
)

// LocalizedValueService управляет локализованными текстами
// Владелец (категория, тип оплаты, тип доставки) хранит только ссылки на значения,
// текст резолвится по языку запроса
type LocalizedValueService struct {
	valueRepo          repository.LocalizedValueRepository
	supportedLanguages []string
}

// NewLocalizedValueService создает новый сервис локализованных значений
func NewLocalizedValueService(valueRepo repository.LocalizedValueRepository, supportedLanguages []string) *LocalizedValueService {
	return &LocalizedValueService{
		valueRepo:          valueRepo,
		supportedLanguages: supportedLanguages,
	}
}

// IsSupported проверяет, входит ли язык в список поддерживаемых
func (s *LocalizedValueService) IsSupported(languageCode string) bool {
	for _, code := range s.supportedLanguages {
		if code == languageCode {
			return true
		}
	}
	return false
}

// SupportedLanguages возвращает список поддерживаемых языков
func (s *LocalizedValueService) SupportedLanguages() []string {
	return s.supportedLanguages
}

// Resolve возвращает текст для языка среди значений владельца
// Возвращает ErrValueNotFound, если ни одно значение не несёт этот язык
func (s *LocalizedValueService) Resolve(ctx context.Context, valueIDs []primitive.ObjectID, languageCode string) (string, error) {
	if len(valueIDs) == 0 {
		return "", ErrValueNotFound
	}

	values, err := s.valueRepo.GetByIDs(ctx, valueIDs)
	if err != nil {
		return "", fmt.Errorf("failed to get localized values: %w", err)
	}

	for _, value := range values {
		if value.LanguageCode == languageCode {
			return value.Text, nil
		}
	}

	return "", ErrValueNotFound
}

// Upsert обновляет текст для языка среди значений владельца или создает новое значение
// Возвращает ID нового значения, которое владелец должен добавить к своим ссылкам;
// nil, если обновлено существующее
func (s *LocalizedValueService) Upsert(ctx context.Context, valueIDs []primitive.ObjectID, languageCode, text string) (*primitive.ObjectID, error) {
	if !s.IsSupported(languageCode) {
		return nil, ErrUnsupportedLanguage
	}

	values, err := s.valueRepo.GetByIDs(ctx, valueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get localized values: %w", err)
	}

	// Значение для языка уже есть - правим текст на месте
	for _, value := range values {
		if value.LanguageCode == languageCode {
			if err := s.valueRepo.UpdateText(ctx, value.ID, text); err != nil {
				return nil, fmt.Errorf("failed to update localized value: %w", err)
			}
			return nil, nil
		}
	}

	// Языка ещё нет - создаем новое значение, владелец добавит ссылку
	value := &entity.LocalizedValue{
		ID:           primitive.NewObjectID(),
		LanguageCode: languageCode,
		Text:         text,
	}
	if err := s.valueRepo.Create(ctx, value); err != nil {
		return nil, fmt.Errorf("failed to create localized value: %w", err)
	}

	return &value.ID, nil
}

// CreateSet создает по одному значению на каждый поддерживаемый язык
// Недостающие языки бэкфиллятся текстом fallback
func (s *LocalizedValueService) CreateSet(ctx context.Context, names map[string]string, fallback string) ([]primitive.ObjectID, error) {
	for code := range names {
		if !s.IsSupported(code) {
			return nil, ErrUnsupportedLanguage
		}
	}

	ids := make([]primitive.ObjectID, 0, len(s.supportedLanguages))
	for _, code := range s.supportedLanguages {
		text, ok := names[code]
		if !ok {
			text = fallback
		}

		value := &entity.LocalizedValue{
			ID:           primitive.NewObjectID(),
			LanguageCode: code,
			Text:         text,
		}
		if err := s.valueRepo.Create(ctx, value); err != nil {
			return nil, fmt.Errorf("failed to create localized value: %w", err)
		}
		ids = append(ids, value.ID)
	}

	return ids, nil
}

// DeleteSet удаляет все значения владельца
func (s *LocalizedValueService) DeleteSet(ctx context.Context, valueIDs []primitive.ObjectID) error {
	if len(valueIDs) == 0 {
		return nil
	}
	if err := s.valueRepo.DeleteByIDs(ctx, valueIDs); err != nil {
		return fmt.Errorf("failed to delete localized values: %w", err)
	}
	return nil
}
