package mocks

import (
	"context"
	"time"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/infrastructure"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockLocalizedValueRepository мок для LocalizedValueRepository
type MockLocalizedValueRepository struct {
	mock.Mock
}

func (m *MockLocalizedValueRepository) Create(ctx context.Context, value *entity.LocalizedValue) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockLocalizedValueRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.LocalizedValue, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LocalizedValue), args.Error(1)
}

func (m *MockLocalizedValueRepository) UpdateText(ctx context.Context, id primitive.ObjectID, text string) error {
	args := m.Called(ctx, id, text)
	return args.Error(0)
}

func (m *MockLocalizedValueRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockCategoryRepository мок для CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) AppendValueID(ctx context.Context, categoryID, valueID primitive.ObjectID) error {
	args := m.Called(ctx, categoryID, valueID)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Query(ctx context.Context, query *entity.ProductQuery) ([]entity.Product, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FeaturedByCategory(ctx context.Context, perGroup int) ([]entity.FeaturedGroup, error) {
	args := m.Called(ctx, perGroup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.FeaturedGroup), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCartRepository мок для CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Cart), args.Error(1)
}

func (m *MockCartRepository) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Cart), args.Error(1)
}

func (m *MockCartRepository) AddItem(ctx context.Context, cartID primitive.ObjectID, item entity.CartItem) error {
	args := m.Called(ctx, cartID, item)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID primitive.ObjectID, quantity int) error {
	args := m.Called(ctx, cartID, itemID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) RemoveItemByProduct(ctx context.Context, cartID, productID primitive.ObjectID) (int, int, error) {
	args := m.Called(ctx, cartID, productID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockCartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteOthers(ctx context.Context, keepID primitive.ObjectID, userID string) (int64, error) {
	args := m.Called(ctx, keepID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockWishlistRepository мок для WishlistRepository
type MockWishlistRepository struct {
	mock.Mock
}

func (m *MockWishlistRepository) Create(ctx context.Context, wishlist *entity.Wishlist) error {
	args := m.Called(ctx, wishlist)
	return args.Error(0)
}

func (m *MockWishlistRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Wishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Wishlist), args.Error(1)
}

func (m *MockWishlistRepository) GetByUserID(ctx context.Context, userID string) (*entity.Wishlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Wishlist), args.Error(1)
}

func (m *MockWishlistRepository) AddProduct(ctx context.Context, id, productID primitive.ObjectID) error {
	args := m.Called(ctx, id, productID)
	return args.Error(0)
}

func (m *MockWishlistRepository) RemoveProduct(ctx context.Context, id, productID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, id, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockWishlistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository мок для OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) GetProvisional(ctx context.Context, id primitive.ObjectID, now time.Time) (*entity.Order, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]entity.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Finalize(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteExpired(ctx context.Context, now time.Time) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

// MockOrderItemRepository мок для OrderItemRepository
type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) Create(ctx context.Context, item *entity.OrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockOrderItemRepository) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]entity.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepository) ClearExpiry(ctx context.Context, orderID primitive.ObjectID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderItemRepository) DeleteByOrderID(ctx context.Context, orderID primitive.ObjectID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// MockNotificationRepository мок для NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Notification), args.Error(1)
}

func (m *MockNotificationRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID string, ids []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id primitive.ObjectID) (*entity.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Notification), args.Error(1)
}

// MockNotificationCounterRepository мок для NotificationCounterRepository
type MockNotificationCounterRepository struct {
	mock.Mock
}

func (m *MockNotificationCounterRepository) Increment(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationCounterRepository) DecrementClamped(ctx context.Context, userID string, by int64) error {
	args := m.Called(ctx, userID, by)
	return args.Error(0)
}

func (m *MockNotificationCounterRepository) Get(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentTypeRepository мок для PaymentTypeRepository
type MockPaymentTypeRepository struct {
	mock.Mock
}

func (m *MockPaymentTypeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.PaymentType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentType), args.Error(1)
}

func (m *MockPaymentTypeRepository) GetAll(ctx context.Context) ([]entity.PaymentType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PaymentType), args.Error(1)
}

// MockDeliveryTypeRepository мок для DeliveryTypeRepository
type MockDeliveryTypeRepository struct {
	mock.Mock
}

func (m *MockDeliveryTypeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.DeliveryType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DeliveryType), args.Error(1)
}

func (m *MockDeliveryTypeRepository) GetAll(ctx context.Context) ([]entity.DeliveryType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DeliveryType), args.Error(1)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMailSender мок для MailSender
type MockMailSender struct {
	mock.Mock
	Sent []infrastructure.MailMessage
}

func (m *MockMailSender) Send(ctx context.Context, msg infrastructure.MailMessage) error {
	m.Sent = append(m.Sent, msg)
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockPaymentProvider мок для PaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateIntent(ctx context.Context, orderID string, amount float64, currency string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, orderID, amount, currency, metadata)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProvider) GetStatus(ctx context.Context, providerRef string) (infrastructure.PaymentStatus, error) {
	args := m.Called(ctx, providerRef)
	return args.Get(0).(infrastructure.PaymentStatus), args.Error(1)
}
