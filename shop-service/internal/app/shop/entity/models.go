package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocalizedValue хранит текст, привязанный к коду языка
// Владелец (категория, тип оплаты, тип доставки) ссылается на значение по ID
type LocalizedValue struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	LanguageCode string             `json:"language_code" bson:"language_code"` // Двухбуквенный код языка (en, ru)
	Text         string             `json:"text" bson:"text"`
}

// Category представляет категорию каталога
// Name не хранится - он резолвится из LocalizedValue по языку запроса
type Category struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	ValueIDs  []primitive.ObjectID `json:"value_ids" bson:"value_ids"`
	Image     string               `json:"image,omitempty" bson:"image,omitempty"`
	Featured  bool                 `json:"featured" bson:"featured"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
}

// Product представляет товар каталога
// InCart/InWishlist не хранятся - вычисляются на чтении относительно корзины зрителя
type Product struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Description string               `json:"description" bson:"description"`
	CategoryIDs []primitive.ObjectID `json:"category_ids" bson:"category_ids"`
	Price       float64              `json:"price" bson:"price"`
	Quantity    int                  `json:"quantity" bson:"quantity"`
	SoldOut     bool                 `json:"sold_out" bson:"sold_out"`
	Hidden      bool                 `json:"hidden" bson:"hidden"`
	Featured    bool                 `json:"featured" bson:"featured"`
	Image       string               `json:"image,omitempty" bson:"image,omitempty"`
	Images      []string             `json:"images,omitempty" bson:"images,omitempty"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
}

// CartItem представляет позицию корзины
// Хранится внутри документа корзины, но имеет собственный ID для адресного обновления
type CartItem struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// Cart представляет корзину пользователя или анонимную корзину
// Инвариант: не более одной корзины на пользователя (partial unique index по user_id)
// Пустые корзины не хранятся - удаление последней позиции удаляет корзину
type Cart struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Items     []CartItem         `json:"items" bson:"items"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Wishlist хранит ссылки на товары без количества
// Тот же инвариант единственного владельца, что и у корзины
type Wishlist struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	UserID     string               `json:"user_id,omitempty" bson:"user_id,omitempty"`
	ProductIDs []primitive.ObjectID `json:"product_ids" bson:"product_ids"`
	CreatedAt  time.Time            `json:"created_at" bson:"created_at"`
}

// OrderStatus представляет статусы заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"     // Ожидает обработки
	OrderStatusPaid       OrderStatus = "paid"        // Оплачен
	OrderStatusConfirmed  OrderStatus = "confirmed"   // Подтвержден
	OrderStatusInProgress OrderStatus = "in_progress" // Собирается
	OrderStatusShipped    OrderStatus = "shipped"     // Отправлен
	OrderStatusCancelled  OrderStatus = "cancelled"   // Отменен
)

// IsTerminal сообщает, является ли статус финальным
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCancelled
}

// Order представляет заказ
// ExpireAt установлен только пока заказ предварительный (карта, ждём подтверждения
// провайдера); заказ с истекшим ExpireAt считается несостоявшимся
type Order struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         string             `json:"user_id" bson:"user_id"`
	Email          string             `json:"email,omitempty" bson:"email,omitempty"`                 // Почта покупателя из JWT, нужна для писем
	LanguageCode   string             `json:"language_code,omitempty" bson:"language_code,omitempty"` // Язык писем покупателю, зафиксирован при оформлении
	PaymentTypeID  primitive.ObjectID `json:"payment_type_id" bson:"payment_type_id"`
	DeliveryTypeID primitive.ObjectID `json:"delivery_type_id" bson:"delivery_type_id"`
	Status         OrderStatus        `json:"status" bson:"status"`
	Total          float64            `json:"total" bson:"total"`
	ProviderRef    string             `json:"provider_ref,omitempty" bson:"provider_ref,omitempty"`
	ExpireAt       *time.Time         `json:"expire_at,omitempty" bson:"expire_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// OrderItem представляет позицию заказа
// ExpireAt зеркалирует родительский заказ в предварительном окне
type OrderItem struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderID   primitive.ObjectID `json:"order_id" bson:"order_id"`
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	ExpireAt  *time.Time         `json:"expire_at,omitempty" bson:"expire_at,omitempty"`
}

// OrderWithItems содержит заказ с полным списком позиций
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

// PaymentKind определяет, как заказ проводится при создании
type PaymentKind string

const (
	PaymentKindCOD  PaymentKind = "cod"  // Наличные при получении - сразу pending
	PaymentKindWire PaymentKind = "wire" // Банковский перевод - сразу pending
	PaymentKindCard PaymentKind = "card" // Карта - предварительный заказ до подтверждения
)

// PaymentType представляет способ оплаты с локализованным названием
type PaymentType struct {
	ID       primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Kind     PaymentKind          `json:"kind" bson:"kind"`
	ValueIDs []primitive.ObjectID `json:"value_ids" bson:"value_ids"`
}

// DeliveryType представляет способ доставки с локализованным названием
type DeliveryType struct {
	ID       primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Price    float64              `json:"price" bson:"price"`
	ValueIDs []primitive.ObjectID `json:"value_ids" bson:"value_ids"`
}

// Notification представляет уведомление пользователя
type Notification struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID    string              `json:"user_id" bson:"user_id"`
	Message   string              `json:"message" bson:"message"`
	OrderID   *primitive.ObjectID `json:"order_id,omitempty" bson:"order_id,omitempty"`
	IsRead    bool                `json:"is_read" bson:"is_read"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
}

// NotificationCounter - денормализованный счётчик непрочитанных уведомлений
// Ровно один на пользователя, создаётся лениво; count == числу непрочитанных
type NotificationCounter struct {
	UserID string `json:"user_id" bson:"_id"`
	Count  int64  `json:"count" bson:"count"`
}

// FeaturedGroup - группа активных товаров одной категории для витрины
type FeaturedGroup struct {
	CategoryID   primitive.ObjectID `json:"category_id"`
	CategoryName string             `json:"category_name"`
	Products     []Product          `json:"products"`
}

// OrderEvent представляет событие изменения заказа для Kafka
type OrderEvent struct {
	EventType string      `json:"event_type"` // ORDER_CREATED, ORDER_PAID, ORDER_STATUS_UPDATED, ORDER_DISCARDED
	OrderID   string      `json:"order_id"`
	UserID    string      `json:"user_id"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}
