package repository

import (
	"context"
	"errors"
	"time"

	"northberries/shop-service/internal/app/shop/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrValueNotFound        = errors.New("localized value not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrWishlistNotFound     = errors.New("wishlist not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPaymentTypeNotFound  = errors.New("payment type not found")
	ErrDeliveryTypeNotFound = errors.New("delivery type not found")
	ErrInsufficientStock    = errors.New("insufficient product stock")
)

type LocalizedValueRepository interface {
	Create(ctx context.Context, value *entity.LocalizedValue) error
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.LocalizedValue, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, text string) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	AppendValueID(ctx context.Context, categoryID, valueID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Query выполняет фильтрацию, сортировку и пагинацию одним aggregation
	// pipeline; total считается по отфильтрованному набору до пагинации
	Query(ctx context.Context, query *entity.ProductQuery) ([]entity.Product, int64, error)
	// FeaturedByCategory группирует активные товары по категориям и
	// ограничивает каждую группу perGroup первыми по createdAt desc
	FeaturedByCategory(ctx context.Context, perGroup int) ([]entity.FeaturedGroup, error)
	// DecrementStock атомарно списывает количество; возвращает
	// ErrInsufficientStock, если на складе меньше qty
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

type CartRepository interface {
	Create(ctx context.Context, cart *entity.Cart) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Cart, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Cart, error)
	AddItem(ctx context.Context, cartID primitive.ObjectID, item entity.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID primitive.ObjectID, quantity int) error
	// RemoveItemByProduct атомарно убирает все позиции с товаром и
	// возвращает их суммарное количество вместе с числом оставшихся позиций
	RemoveItemByProduct(ctx context.Context, cartID, productID primitive.ObjectID) (removedQty int, remaining int, err error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteOthers удаляет все корзины пользователя, кроме keepID
	DeleteOthers(ctx context.Context, keepID primitive.ObjectID, userID string) (int64, error)
}

type WishlistRepository interface {
	Create(ctx context.Context, wishlist *entity.Wishlist) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Wishlist, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Wishlist, error)
	AddProduct(ctx context.Context, id, productID primitive.ObjectID) error
	RemoveProduct(ctx context.Context, id, productID primitive.ObjectID) (remaining int, err error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error)
	// GetProvisional находит заказ только пока он предварительный:
	// expire_at установлен и ещё не истёк
	GetProvisional(ctx context.Context, id primitive.ObjectID, now time.Time) (*entity.Order, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Order, error)
	GetAll(ctx context.Context) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.OrderStatus) error
	// Finalize снимает expire_at и переводит заказ в paid одним обновлением
	Finalize(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteExpired удаляет просроченные предварительные заказы
	// и возвращает их ID для каскадной зачистки позиций
	DeleteExpired(ctx context.Context, now time.Time) ([]primitive.ObjectID, error)
}

type OrderItemRepository interface {
	Create(ctx context.Context, item *entity.OrderItem) error
	GetByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]entity.OrderItem, error)
	// ClearExpiry снимает expire_at со всех позиций заказа при финализации
	ClearExpiry(ctx context.Context, orderID primitive.ObjectID) error
	DeleteByOrderID(ctx context.Context, orderID primitive.ObjectID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Notification, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Notification, error)
	// MarkRead помечает прочитанными только непрочитанные из ids и
	// возвращает число реально изменённых документов
	MarkRead(ctx context.Context, userID string, ids []primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// Delete возвращает удалённый документ: вызывающему нужен его
	// is_read, чтобы корректно скорректировать счётчик
	Delete(ctx context.Context, id primitive.ObjectID) (*entity.Notification, error)
}

type NotificationCounterRepository interface {
	// Increment атомарно увеличивает счётчик, лениво создавая нулевой
	Increment(ctx context.Context, userID string) error
	// DecrementClamped атомарно уменьшает счётчик, не опуская его ниже нуля
	DecrementClamped(ctx context.Context, userID string, by int64) error
	Get(ctx context.Context, userID string) (int64, error)
}

type PaymentTypeRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.PaymentType, error)
	GetAll(ctx context.Context) ([]entity.PaymentType, error)
}

type DeliveryTypeRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.DeliveryType, error)
	GetAll(ctx context.Context) ([]entity.DeliveryType, error)
}
