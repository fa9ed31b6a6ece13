package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// ProductSort определяет порядок выдачи каталога
type ProductSort string

const (
	SortNewest    ProductSort = "newest" // createdAt desc (по умолчанию)
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortFeatured  ProductSort = "featured" // featured desc, затем createdAt desc
)

// ProductQuery - параметры выборки каталога
// ViewerCartID/ViewerWishlistID нужны только для аннотаций in_cart/in_wishlist
type ProductQuery struct {
	Keyword          string
	CategoryID       *primitive.ObjectID
	IncludeHidden    bool // true только для админской выборки
	Sort             ProductSort
	Page             int
	PageSize         int
	ViewerCartID     *primitive.ObjectID
	ViewerWishlistID *primitive.ObjectID
}

// ProductView - товар с вычисленными аннотациями зрителя
type ProductView struct {
	Product
	InCart     bool `json:"in_cart"`
	InWishlist bool `json:"in_wishlist"`
}

// ProductPage - одна страница выдачи каталога
// TotalRecords считается по отфильтрованному набору до пагинации
type ProductPage struct {
	Items        []ProductView `json:"items"`
	TotalRecords int64         `json:"total_records"`
}

// CategoryView - категория с именем, разрезолвленным для языка запроса
type CategoryView struct {
	Category
	Name string `json:"name"`
}

type CreateCategoryRequest struct {
	// Названия по языкам; недостающие поддерживаемые языки бэкфиллятся
	Names    map[string]string `json:"names" validate:"required,min=1"`
	Image    string            `json:"image"`
	Featured bool              `json:"featured"`
}

type UpdateCategoryRequest struct {
	Names    map[string]string `json:"names" validate:"required,min=1"`
	Image    string            `json:"image"`
	Featured bool              `json:"featured"`
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	CategoryIDs []string `json:"category_ids" validate:"required,min=1,dive,required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Quantity    int      `json:"quantity" validate:"gte=0"`
	Hidden      bool     `json:"hidden"`
	Featured    bool     `json:"featured"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
}

type UpdateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	CategoryIDs []string `json:"category_ids" validate:"required,min=1,dive,required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Quantity    int      `json:"quantity" validate:"gte=0"`
	SoldOut     bool     `json:"sold_out"`
	Hidden      bool     `json:"hidden"`
	Featured    bool     `json:"featured"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
}

type AddCartItemRequest struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id" validate:"required"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// DeleteCartItemResult сообщает вызывающему, исчезла ли корзина
// и сколько единиц товара было убрано
type DeleteCartItemResult struct {
	RemovedQuantity int  `json:"removed_quantity"`
	CartDeleted     bool `json:"cart_deleted"`
}

type AddWishlistItemRequest struct {
	WishlistID string `json:"wishlist_id"`
	ProductID  string `json:"product_id" validate:"required"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	PaymentTypeID  string             `json:"payment_type_id" validate:"required"`
	DeliveryTypeID string             `json:"delivery_type_id" validate:"required"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	LanguageCode   string             `json:"language_code" validate:"required,len=2,lowercase"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending paid confirmed in_progress shipped cancelled"`
}

// ConfirmPaymentRequest - callback платёжного провайдера
type ConfirmPaymentRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	ProviderRef string `json:"provider_ref" validate:"required"`
}

// ReconcileOutcome - трёхзначный результат сверки платежа
type ReconcileOutcome string

const (
	OutcomePaid           ReconcileOutcome = "paid"
	OutcomeDiscarded      ReconcileOutcome = "discarded"
	OutcomePending        ReconcileOutcome = "pending"
	OutcomeAlreadyHandled ReconcileOutcome = "already_handled"
)

type MarkNotificationsReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
