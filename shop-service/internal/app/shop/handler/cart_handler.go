package handler

import (
	"context"
	"errors"
	"net/http"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CartServiceInterface interface {
	GetCart(ctx context.Context, cartID string) (*entity.Cart, error)
	AddItem(ctx context.Context, userID string, req *entity.AddCartItemRequest) (*entity.Cart, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID string) (*entity.DeleteCartItemResult, error)
	ClearOtherCarts(ctx context.Context, cartID, userID string) (int64, error)
	GetWishlist(ctx context.Context, wishlistID string) (*entity.Wishlist, error)
	AddToWishlist(ctx context.Context, userID string, req *entity.AddWishlistItemRequest) (*entity.Wishlist, error)
	RemoveFromWishlist(ctx context.Context, wishlistID, productID string) (bool, error)
}

// CartHandler обрабатывает HTTP запросы корзины и списка желаний
type CartHandler struct {
	cartService CartServiceInterface
	validator   *validator.Validate
}

// NewCartHandler создает новый обработчик корзины
func NewCartHandler(cartService CartServiceInterface) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

// GetCart обрабатывает GET /cart/:cart_id
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), c.Param("cart_id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart ID"})
			return
		}
		if errors.Is(err, service.ErrCartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cart"})
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddItem обрабатывает POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add cart item"})
		}
		return
	}

	c.JSON(http.StatusOK, cart)
}

// UpdateItem обрабатывает PATCH /cart/:cart_id/items/:item_id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req entity.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	err := h.cartService.UpdateItemQuantity(c.Request.Context(), c.Param("cart_id"), c.Param("item_id"), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		case errors.Is(err, service.ErrCartNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		case errors.Is(err, service.ErrCartItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Cart item updated successfully",
	})
}

// DeleteItem обрабатывает DELETE /cart/:cart_id/items/:product_id
// В ответе cart_deleted сообщает клиенту, что корзины больше нет
func (h *CartHandler) DeleteItem(c *gin.Context) {
	result, err := h.cartService.DeleteItem(c.Request.Context(), c.Param("cart_id"), c.Param("product_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		case errors.Is(err, service.ErrCartNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		case errors.Is(err, service.ErrCartItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cart item"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClearOtherCarts обрабатывает POST /cart/:cart_id/claim
// Удаляет остальные корзины пользователя, оставляя предъявленную
func (h *CartHandler) ClearOtherCarts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deleted, err := h.cartService.ClearOtherCarts(c.Request.Context(), c.Param("cart_id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear carts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// GetWishlist обрабатывает GET /wishlist/:wishlist_id
func (h *CartHandler) GetWishlist(c *gin.Context) {
	wishlist, err := h.cartService.GetWishlist(c.Request.Context(), c.Param("wishlist_id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wishlist ID"})
			return
		}
		if errors.Is(err, service.ErrWishlistNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get wishlist"})
		return
	}

	c.JSON(http.StatusOK, wishlist)
}

// AddToWishlist обрабатывает POST /wishlist/items
func (h *CartHandler) AddToWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	wishlist, err := h.cartService.AddToWishlist(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add wishlist item"})
		}
		return
	}

	c.JSON(http.StatusOK, wishlist)
}

// RemoveFromWishlist обрабатывает DELETE /wishlist/:wishlist_id/items/:product_id
func (h *CartHandler) RemoveFromWishlist(c *gin.Context) {
	deleted, err := h.cartService.RemoveFromWishlist(c.Request.Context(), c.Param("wishlist_id"), c.Param("product_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		case errors.Is(err, service.ErrWishlistNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove wishlist item"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"wishlist_deleted": deleted})
}
