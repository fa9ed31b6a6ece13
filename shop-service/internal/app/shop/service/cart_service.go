package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"northberries/pkg/logger"
	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrWishlistNotFound = errors.New("wishlist not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// CartService управляет корзинами и списками желаний
// Инвариант: не более одной корзины и одного списка на пользователя;
// пустые агрегаты не хранятся
type CartService struct {
	cartRepo     repository.CartRepository
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

// NewCartService создает новый сервис корзины
func NewCartService(
	cartRepo repository.CartRepository,
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

// GetCart возвращает корзину по ID
func (s *CartService) GetCart(ctx context.Context, cartID string) (*entity.Cart, error) {
	id, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, ErrInvalidID
	}

	cart, err := s.cartRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return cart, nil
}

// AddItem добавляет товар в корзину
// Предъявленная существующая корзина выигрывает; иначе прежняя корзина
// пользователя целиком заменяется новой. Каждое добавление - отдельная
// позиция с количеством 1, дубликаты по товару допустимы
func (s *CartService) AddItem(ctx context.Context, userID string, req *entity.AddCartItemRequest) (*entity.Cart, error) {
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, ErrInvalidID
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	item := entity.CartItem{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Quantity:  1,
	}

	// Сначала пробуем предъявленную корзину
	if req.CartID != "" {
		cartID, err := primitive.ObjectIDFromHex(req.CartID)
		if err != nil {
			return nil, ErrInvalidID
		}

		cart, err := s.cartRepo.GetByID(ctx, cartID)
		if err == nil {
			if err := s.cartRepo.AddItem(ctx, cart.ID, item); err != nil {
				return nil, fmt.Errorf("failed to add cart item: %w", err)
			}
			return s.cartRepo.GetByID(ctx, cart.ID)
		}
		if !errors.Is(err, repository.ErrCartNotFound) {
			return nil, fmt.Errorf("failed to get cart: %w", err)
		}
	}

	// Предъявленной корзины нет - прежняя корзина пользователя заменяется новой
	if userID != "" {
		prior, err := s.cartRepo.GetByUserID(ctx, userID)
		if err == nil {
			if err := s.cartRepo.Delete(ctx, prior.ID); err != nil {
				return nil, fmt.Errorf("failed to replace prior cart: %w", err)
			}
		} else if !errors.Is(err, repository.ErrCartNotFound) {
			return nil, fmt.Errorf("failed to get user cart: %w", err)
		}
	}

	cart := &entity.Cart{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Items:     []entity.CartItem{item},
		CreatedAt: time.Now(),
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return cart, nil
}

// UpdateItemQuantity меняет количество позиции
// Количество не проверяется против остатка на складе
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	cartObjectID, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return ErrInvalidID
	}
	itemObjectID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return ErrInvalidID
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cartObjectID, itemObjectID, quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			return ErrCartNotFound
		case errors.Is(err, repository.ErrCartItemNotFound):
			return ErrCartItemNotFound
		}
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return nil
}

// DeleteItem убирает товар из корзины
// Опустевшая корзина удаляется целиком; CartDeleted сообщает об этом вызывающему
func (s *CartService) DeleteItem(ctx context.Context, cartID, productID string) (*entity.DeleteCartItemResult, error) {
	cartObjectID, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, ErrInvalidID
	}
	productObjectID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrInvalidID
	}

	removedQty, remaining, err := s.cartRepo.RemoveItemByProduct(ctx, cartObjectID, productObjectID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			return nil, ErrCartNotFound
		case errors.Is(err, repository.ErrCartItemNotFound):
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	result := &entity.DeleteCartItemResult{RemovedQuantity: removedQty}

	if remaining == 0 {
		if err := s.cartRepo.Delete(ctx, cartObjectID); err != nil {
			return nil, fmt.Errorf("failed to delete empty cart: %w", err)
		}
		result.CartDeleted = true
	}

	return result, nil
}

// ClearOtherCarts удаляет все корзины пользователя, кроме указанной
func (s *CartService) ClearOtherCarts(ctx context.Context, cartID, userID string) (int64, error) {
	id, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return 0, ErrInvalidID
	}

	deleted, err := s.cartRepo.DeleteOthers(ctx, id, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear other carts: %w", err)
	}

	if deleted > 0 {
		logger.Info().
			Str("user_id", userID).
			Int64("deleted", deleted).
			Msg("Cleared duplicate carts")
	}

	return deleted, nil
}

// GetWishlist возвращает список желаний по ID
func (s *CartService) GetWishlist(ctx context.Context, wishlistID string) (*entity.Wishlist, error) {
	id, err := primitive.ObjectIDFromHex(wishlistID)
	if err != nil {
		return nil, ErrInvalidID
	}

	wishlist, err := s.wishlistRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWishlistNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	return wishlist, nil
}

// AddToWishlist добавляет товар в список желаний
// Список хранит только ссылки на товары, без количества
func (s *CartService) AddToWishlist(ctx context.Context, userID string, req *entity.AddWishlistItemRequest) (*entity.Wishlist, error) {
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, ErrInvalidID
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if req.WishlistID != "" {
		wishlistID, err := primitive.ObjectIDFromHex(req.WishlistID)
		if err != nil {
			return nil, ErrInvalidID
		}

		wishlist, err := s.wishlistRepo.GetByID(ctx, wishlistID)
		if err == nil {
			if err := s.wishlistRepo.AddProduct(ctx, wishlist.ID, productID); err != nil {
				return nil, fmt.Errorf("failed to add wishlist product: %w", err)
			}
			return s.wishlistRepo.GetByID(ctx, wishlist.ID)
		}
		if !errors.Is(err, repository.ErrWishlistNotFound) {
			return nil, fmt.Errorf("failed to get wishlist: %w", err)
		}
	}

	if userID != "" {
		existing, err := s.wishlistRepo.GetByUserID(ctx, userID)
		if err == nil {
			if err := s.wishlistRepo.AddProduct(ctx, existing.ID, productID); err != nil {
				return nil, fmt.Errorf("failed to add wishlist product: %w", err)
			}
			return s.wishlistRepo.GetByID(ctx, existing.ID)
		}
		if !errors.Is(err, repository.ErrWishlistNotFound) {
			return nil, fmt.Errorf("failed to get user wishlist: %w", err)
		}
	}

	wishlist := &entity.Wishlist{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		ProductIDs: []primitive.ObjectID{productID},
		CreatedAt:  time.Now(),
	}
	if err := s.wishlistRepo.Create(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("failed to create wishlist: %w", err)
	}

	return wishlist, nil
}

// RemoveFromWishlist убирает товар из списка желаний
// Опустевший список удаляется целиком
func (s *CartService) RemoveFromWishlist(ctx context.Context, wishlistID, productID string) (bool, error) {
	wishlistObjectID, err := primitive.ObjectIDFromHex(wishlistID)
	if err != nil {
		return false, ErrInvalidID
	}
	productObjectID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return false, ErrInvalidID
	}

	remaining, err := s.wishlistRepo.RemoveProduct(ctx, wishlistObjectID, productObjectID)
	if err != nil {
		if errors.Is(err, repository.ErrWishlistNotFound) {
			return false, ErrWishlistNotFound
		}
		return false, fmt.Errorf("failed to remove wishlist product: %w", err)
	}

	if remaining == 0 {
		if err := s.wishlistRepo.Delete(ctx, wishlistObjectID); err != nil {
			return false, fmt.Errorf("failed to delete empty wishlist: %w", err)
		}
		return true, nil
	}

	return false, nil
}
