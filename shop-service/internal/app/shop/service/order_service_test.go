package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/repository"
	"northberries/shop-service/internal/app/shop/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockNotifier мок для внутреннего порта уведомлений
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID, message string, orderID *primitive.ObjectID) (*entity.Notification, error) {
	args := m.Called(ctx, userID, message, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Notification), args.Error(1)
}

type orderServiceMocks struct {
	orderRepo        *mocks.MockOrderRepository
	orderItemRepo    *mocks.MockOrderItemRepository
	productRepo      *mocks.MockProductRepository
	paymentTypeRepo  *mocks.MockPaymentTypeRepository
	deliveryTypeRepo *mocks.MockDeliveryTypeRepository
	paymentProvider  *mocks.MockPaymentProvider
	notifier         *MockNotifier
	mailSender       *mocks.MockMailSender
	kafkaProducer    *mocks.MockMessagePublisher
}

func newOrderService() (*OrderService, *orderServiceMocks) {
	m := &orderServiceMocks{
		orderRepo:        new(mocks.MockOrderRepository),
		orderItemRepo:    new(mocks.MockOrderItemRepository),
		productRepo:      new(mocks.MockProductRepository),
		paymentTypeRepo:  new(mocks.MockPaymentTypeRepository),
		deliveryTypeRepo: new(mocks.MockDeliveryTypeRepository),
		paymentProvider:  new(mocks.MockPaymentProvider),
		notifier:         new(MockNotifier),
		mailSender:       &mocks.MockMailSender{},
		kafkaProducer:    &mocks.MockMessagePublisher{Messages: make([][]byte, 0)},
	}

	service := NewOrderService(
		m.orderRepo, m.orderItemRepo, m.productRepo,
		m.paymentTypeRepo, m.deliveryTypeRepo,
		m.paymentProvider, m.notifier, m.mailSender, m.kafkaProducer,
		OrderConfig{
			AdminUserID:        "admin-1",
			AdminEmail:         "admin@shop.test",
			MailFrom:           "noreply@shop.test",
			Currency:           "RUB",
			ConfirmationWindow: 15 * time.Minute,
		},
	)
	return service, m
}

func codOrderFixture(m *orderServiceMocks) (*entity.PaymentType, *entity.DeliveryType, *entity.Product) {
	paymentType := &entity.PaymentType{ID: primitive.NewObjectID(), Kind: entity.PaymentKindCOD}
	deliveryType := &entity.DeliveryType{ID: primitive.NewObjectID(), Price: 5}
	product := &entity.Product{ID: primitive.NewObjectID(), Price: 10, Quantity: 8}

	m.paymentTypeRepo.On("GetByID", mock.Anything, paymentType.ID).Return(paymentType, nil)
	m.deliveryTypeRepo.On("GetByID", mock.Anything, deliveryType.ID).Return(deliveryType, nil)
	m.productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	return paymentType, deliveryType, product
}

func TestCreateOrder_COD_DecrementsStockImmediately(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	paymentType, deliveryType, product := codOrderFixture(m)

	m.productRepo.On("DecrementStock", ctx, product.ID, 3).Return(nil)
	m.orderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	m.orderItemRepo.On("Create", ctx, mock.AnythingOfType("*entity.OrderItem")).Return(nil)
	m.notifier.On("Notify", ctx, "admin-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := service.CreateOrder(ctx, "user-1", "buyer@shop.test", &entity.CreateOrderRequest{
		PaymentTypeID:  paymentType.ID.Hex(),
		DeliveryTypeID: deliveryType.ID.Hex(),
		Items:          []entity.OrderItemRequest{{ProductID: product.ID.Hex(), Quantity: 3}},
		LanguageCode:   "ru",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, result.Status)
	assert.Nil(t, result.ExpireAt)
	assert.Empty(t, result.ProviderRef)
	assert.Equal(t, 35.0, result.Total) // 3 x 10 + доставка 5
	m.productRepo.AssertCalled(t, "DecrementStock", ctx, product.ID, 3)
	m.paymentProvider.AssertNotCalled(t, "CreateIntent")
	m.notifier.AssertCalled(t, "Notify", ctx, "admin-1", mock.Anything, mock.Anything)
}

func TestCreateOrder_COD_InsufficientStock(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	paymentType, deliveryType, product := codOrderFixture(m)

	result, err := service.CreateOrder(ctx, "user-1", "", &entity.CreateOrderRequest{
		PaymentTypeID:  paymentType.ID.Hex(),
		DeliveryTypeID: deliveryType.ID.Hex(),
		Items:          []entity.OrderItemRequest{{ProductID: product.ID.Hex(), Quantity: 100}},
		LanguageCode:   "ru",
	})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, result)
	m.orderRepo.AssertNotCalled(t, "Create")
	m.productRepo.AssertNotCalled(t, "DecrementStock")
}

func TestCreateOrder_Card_ProvisionalWithoutStockTouch(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	paymentType := &entity.PaymentType{ID: primitive.NewObjectID(), Kind: entity.PaymentKindCard}
	deliveryType := &entity.DeliveryType{ID: primitive.NewObjectID(), Price: 0}
	product := &entity.Product{ID: primitive.NewObjectID(), Price: 20, Quantity: 5}

	m.paymentTypeRepo.On("GetByID", ctx, paymentType.ID).Return(paymentType, nil)
	m.deliveryTypeRepo.On("GetByID", ctx, deliveryType.ID).Return(deliveryType, nil)
	m.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	m.paymentProvider.On("CreateIntent", ctx, mock.Anything, 100.0, "RUB", mock.Anything).Return("ref-123", nil)
	m.orderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	m.orderItemRepo.On("Create", ctx, mock.AnythingOfType("*entity.OrderItem")).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := service.CreateOrder(ctx, "user-1", "buyer@shop.test", &entity.CreateOrderRequest{
		PaymentTypeID:  paymentType.ID.Hex(),
		DeliveryTypeID: deliveryType.ID.Hex(),
		Items:          []entity.OrderItemRequest{{ProductID: product.ID.Hex(), Quantity: 5}},
		LanguageCode:   "ru",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, result.Status)
	assert.NotNil(t, result.ExpireAt)
	assert.Equal(t, "ref-123", result.ProviderRef)
	assert.NotNil(t, result.Items[0].ExpireAt)
	m.productRepo.AssertNotCalled(t, "DecrementStock")
	// Покупатель и админ узнают о карточном заказе после подтверждения оплаты
	m.notifier.AssertNotCalled(t, "Notify")
}

func TestCreateOrder_Card_ProviderErrorAbortsOrder(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	paymentType := &entity.PaymentType{ID: primitive.NewObjectID(), Kind: entity.PaymentKindCard}
	deliveryType := &entity.DeliveryType{ID: primitive.NewObjectID(), Price: 0}
	product := &entity.Product{ID: primitive.NewObjectID(), Price: 20, Quantity: 5}

	m.paymentTypeRepo.On("GetByID", ctx, paymentType.ID).Return(paymentType, nil)
	m.deliveryTypeRepo.On("GetByID", ctx, deliveryType.ID).Return(deliveryType, nil)
	m.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	m.paymentProvider.On("CreateIntent", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("provider down"))

	result, err := service.CreateOrder(ctx, "user-1", "", &entity.CreateOrderRequest{
		PaymentTypeID:  paymentType.ID.Hex(),
		DeliveryTypeID: deliveryType.ID.Hex(),
		Items:          []entity.OrderItemRequest{{ProductID: product.ID.Hex(), Quantity: 1}},
		LanguageCode:   "ru",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	m.orderRepo.AssertNotCalled(t, "Create")
}

func TestCreateOrder_UnknownPaymentType(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	paymentTypeID := primitive.NewObjectID()

	m.paymentTypeRepo.On("GetByID", ctx, paymentTypeID).Return(nil, repository.ErrPaymentTypeNotFound)

	result, err := service.CreateOrder(ctx, "user-1", "", &entity.CreateOrderRequest{
		PaymentTypeID:  paymentTypeID.Hex(),
		DeliveryTypeID: primitive.NewObjectID().Hex(),
		Items:          []entity.OrderItemRequest{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}},
		LanguageCode:   "ru",
	})

	assert.ErrorIs(t, err, ErrPaymentTypeNotFound)
	assert.Nil(t, result)
}

func TestCreateOrder_MailFailureDoesNotAbort(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	paymentType, deliveryType, product := codOrderFixture(m)

	m.productRepo.On("DecrementStock", ctx, product.ID, 1).Return(nil)
	m.orderRepo.On("Create", ctx, mock.Anything).Return(nil)
	m.orderItemRepo.On("Create", ctx, mock.Anything).Return(nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(errors.New("smtp down"))
	m.notifier.On("Notify", ctx, "admin-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	result, err := service.CreateOrder(ctx, "user-1", "buyer@shop.test", &entity.CreateOrderRequest{
		PaymentTypeID:  paymentType.ID.Hex(),
		DeliveryTypeID: deliveryType.ID.Hex(),
		Items:          []entity.OrderItemRequest{{ProductID: product.ID.Hex(), Quantity: 1}},
		LanguageCode:   "ru",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	orderID := primitive.NewObjectID()

	m.orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{ID: orderID, UserID: "user-2"}, nil)

	result, err := service.GetOrder(ctx, orderID.Hex(), "user-1")

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, result)
}

func TestUpdateStatus_Success(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	orderID := primitive.NewObjectID()
	order := &entity.Order{ID: orderID, UserID: "user-1", Email: "buyer@shop.test", Status: entity.OrderStatusPaid}

	m.orderRepo.On("GetByID", ctx, orderID).Return(order, nil)
	m.orderRepo.On("UpdateStatus", ctx, orderID, entity.OrderStatusShipped).Return(nil)
	m.notifier.On("Notify", ctx, "user-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	updated, err := service.UpdateStatus(ctx, orderID.Hex(), entity.OrderStatusShipped)

	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, updated.Status)
	m.notifier.AssertCalled(t, "Notify", ctx, "user-1", mock.Anything, mock.Anything)
}

func TestUpdateStatus_TerminalStatusRejected(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	orderID := primitive.NewObjectID()

	m.orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{ID: orderID, Status: entity.OrderStatusCancelled}, nil)

	updated, err := service.UpdateStatus(ctx, orderID.Hex(), entity.OrderStatusConfirmed)

	assert.ErrorIs(t, err, ErrOrderTerminal)
	assert.Nil(t, updated)
	m.orderRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestDeleteOrder_CascadesItemsWithoutRestock(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	orderID := primitive.NewObjectID()

	m.orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{ID: orderID, Status: entity.OrderStatusPaid}, nil)
	m.orderItemRepo.On("DeleteByOrderID", ctx, orderID).Return(nil)
	m.orderRepo.On("Delete", ctx, orderID).Return(nil)

	err := service.DeleteOrder(ctx, orderID.Hex())

	assert.NoError(t, err)
	m.orderItemRepo.AssertCalled(t, "DeleteByOrderID", ctx, orderID)
	m.productRepo.AssertNotCalled(t, "DecrementStock")
	m.productRepo.AssertNotCalled(t, "Update")
}

func TestDeleteOrder_NotFound(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	orderID := primitive.NewObjectID()

	m.orderRepo.On("GetByID", ctx, orderID).Return(nil, repository.ErrOrderNotFound)

	err := service.DeleteOrder(ctx, orderID.Hex())

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreateOrder_BuyerMailLocalizedByRequestLanguage(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	paymentType, deliveryType, product := codOrderFixture(m)

	m.productRepo.On("DecrementStock", ctx, product.ID, 1).Return(nil)
	m.orderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	m.orderItemRepo.On("Create", ctx, mock.AnythingOfType("*entity.OrderItem")).Return(nil)
	m.notifier.On("Notify", ctx, "admin-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := service.CreateOrder(ctx, "user-1", "buyer@shop.test", &entity.CreateOrderRequest{
		PaymentTypeID:  paymentType.ID.Hex(),
		DeliveryTypeID: deliveryType.ID.Hex(),
		Items:          []entity.OrderItemRequest{{ProductID: product.ID.Hex(), Quantity: 1}},
		LanguageCode:   "en",
	})

	assert.NoError(t, err)
	assert.Equal(t, "en", result.LanguageCode)
	assert.Equal(t, "Your order has been received", m.mailSender.Sent[0].Subject)
}

func TestCreateOrder_BuyerMailDefaultsToRussianTemplates(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	paymentType, deliveryType, product := codOrderFixture(m)

	m.productRepo.On("DecrementStock", ctx, product.ID, 1).Return(nil)
	m.orderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	m.orderItemRepo.On("Create", ctx, mock.AnythingOfType("*entity.OrderItem")).Return(nil)
	m.notifier.On("Notify", ctx, "admin-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := service.CreateOrder(ctx, "user-1", "buyer@shop.test", &entity.CreateOrderRequest{
		PaymentTypeID:  paymentType.ID.Hex(),
		DeliveryTypeID: deliveryType.ID.Hex(),
		Items:          []entity.OrderItemRequest{{ProductID: product.ID.Hex(), Quantity: 1}},
		LanguageCode:   "ru",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Ваш заказ принят", m.mailSender.Sent[0].Subject)
}

func TestUpdateStatus_BuyerMailFollowsOrderLanguage(t *testing.T) {
	service, m := newOrderService()

	ctx := context.Background()
	orderID := primitive.NewObjectID()
	order := &entity.Order{ID: orderID, UserID: "user-1", Email: "buyer@shop.test", LanguageCode: "en", Status: entity.OrderStatusPaid}

	m.orderRepo.On("GetByID", ctx, orderID).Return(order, nil)
	m.orderRepo.On("UpdateStatus", ctx, orderID, entity.OrderStatusShipped).Return(nil)
	m.notifier.On("Notify", ctx, "user-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := service.UpdateStatus(ctx, orderID.Hex(), entity.OrderStatusShipped)

	assert.NoError(t, err)
	assert.Equal(t, "Order status updated", m.mailSender.Sent[0].Subject)
}
