package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/infrastructure"
	"northberries/shop-service/internal/app/shop/repository"
	"northberries/shop-service/internal/app/shop/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type paymentServiceMocks struct {
	orderRepo       *mocks.MockOrderRepository
	orderItemRepo   *mocks.MockOrderItemRepository
	productRepo     *mocks.MockProductRepository
	paymentProvider *mocks.MockPaymentProvider
	notifier        *MockNotifier
	mailSender      *mocks.MockMailSender
	kafkaProducer   *mocks.MockMessagePublisher
}

func newPaymentService() (*PaymentService, *paymentServiceMocks) {
	m := &paymentServiceMocks{
		orderRepo:       new(mocks.MockOrderRepository),
		orderItemRepo:   new(mocks.MockOrderItemRepository),
		productRepo:     new(mocks.MockProductRepository),
		paymentProvider: new(mocks.MockPaymentProvider),
		notifier:        new(MockNotifier),
		mailSender:      &mocks.MockMailSender{},
		kafkaProducer:   &mocks.MockMessagePublisher{Messages: make([][]byte, 0)},
	}

	service := NewPaymentService(
		m.orderRepo, m.orderItemRepo, m.productRepo,
		m.paymentProvider, m.notifier, m.mailSender, m.kafkaProducer,
		OrderConfig{
			AdminUserID: "admin-1",
			AdminEmail:  "admin@shop.test",
			MailFrom:    "noreply@shop.test",
			Currency:    "RUB",
		},
	)
	return service, m
}

func provisionalOrder() *entity.Order {
	expireAt := time.Now().Add(10 * time.Minute)
	return &entity.Order{
		ID:          primitive.NewObjectID(),
		UserID:      "user-1",
		Email:       "buyer@shop.test",
		Status:      entity.OrderStatusPending,
		Total:       100,
		ProviderRef: "ref-123",
		ExpireAt:    &expireAt,
	}
}

func TestReconcile_Succeeded_FinalizesAndDecrementsStock(t *testing.T) {
	service, m := newPaymentService()

	ctx := context.Background()
	order := provisionalOrder()
	productID := primitive.NewObjectID()
	items := []entity.OrderItem{{ID: primitive.NewObjectID(), OrderID: order.ID, ProductID: productID, Quantity: 5}}

	m.orderRepo.On("GetProvisional", ctx, order.ID, mock.AnythingOfType("time.Time")).Return(order, nil)
	m.paymentProvider.On("GetStatus", ctx, "ref-123").Return(infrastructure.PaymentStatusSucceeded, nil)
	m.orderRepo.On("Finalize", ctx, order.ID).Return(nil)
	m.orderItemRepo.On("ClearExpiry", ctx, order.ID).Return(nil)
	m.orderItemRepo.On("GetByOrderID", ctx, order.ID).Return(items, nil)
	m.productRepo.On("DecrementStock", ctx, productID, 5).Return(nil)
	m.notifier.On("Notify", ctx, "admin-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	outcome, err := service.Reconcile(ctx, &entity.ConfirmPaymentRequest{
		OrderID:     order.ID.Hex(),
		ProviderRef: "ref-123",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.OutcomePaid, outcome)
	m.orderRepo.AssertCalled(t, "Finalize", ctx, order.ID)
	m.orderItemRepo.AssertCalled(t, "ClearExpiry", ctx, order.ID)
	m.productRepo.AssertCalled(t, "DecrementStock", ctx, productID, 5)
	m.notifier.AssertCalled(t, "Notify", ctx, "admin-1", mock.Anything, mock.Anything)
}

func TestReconcile_Failed_DiscardsOrderWithoutTrace(t *testing.T) {
	service, m := newPaymentService()

	ctx := context.Background()
	order := provisionalOrder()

	m.orderRepo.On("GetProvisional", ctx, order.ID, mock.AnythingOfType("time.Time")).Return(order, nil)
	m.paymentProvider.On("GetStatus", ctx, "ref-123").Return(infrastructure.PaymentStatusFailed, nil)
	m.orderItemRepo.On("DeleteByOrderID", ctx, order.ID).Return(nil)
	m.orderRepo.On("Delete", ctx, order.ID).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	outcome, err := service.Reconcile(ctx, &entity.ConfirmPaymentRequest{
		OrderID:     order.ID.Hex(),
		ProviderRef: "ref-123",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.OutcomeDiscarded, outcome)
	m.orderRepo.AssertCalled(t, "Delete", ctx, order.ID)
	m.productRepo.AssertNotCalled(t, "DecrementStock")
	m.notifier.AssertNotCalled(t, "Notify")
}

func TestReconcile_Pending_LeavesOrderUntouched(t *testing.T) {
	service, m := newPaymentService()

	ctx := context.Background()
	order := provisionalOrder()

	m.orderRepo.On("GetProvisional", ctx, order.ID, mock.AnythingOfType("time.Time")).Return(order, nil)
	m.paymentProvider.On("GetStatus", ctx, "ref-123").Return(infrastructure.PaymentStatusPending, nil)

	outcome, err := service.Reconcile(ctx, &entity.ConfirmPaymentRequest{
		OrderID:     order.ID.Hex(),
		ProviderRef: "ref-123",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.OutcomePending, outcome)
	m.orderRepo.AssertNotCalled(t, "Finalize")
	m.orderRepo.AssertNotCalled(t, "Delete")
}

func TestReconcile_AlreadyHandled_Idempotent(t *testing.T) {
	service, m := newPaymentService()

	ctx := context.Background()
	orderID := primitive.NewObjectID()

	// Заказ уже финализирован, истёк или удалён - повторный callback безопасен
	m.orderRepo.On("GetProvisional", ctx, orderID, mock.AnythingOfType("time.Time")).Return(nil, repository.ErrOrderNotFound)

	outcome, err := service.Reconcile(ctx, &entity.ConfirmPaymentRequest{
		OrderID:     orderID.Hex(),
		ProviderRef: "ref-123",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.OutcomeAlreadyHandled, outcome)
	m.paymentProvider.AssertNotCalled(t, "GetStatus")
}

func TestReconcile_ProviderError_OrderUntouched(t *testing.T) {
	service, m := newPaymentService()

	ctx := context.Background()
	order := provisionalOrder()

	m.orderRepo.On("GetProvisional", ctx, order.ID, mock.AnythingOfType("time.Time")).Return(order, nil)
	m.paymentProvider.On("GetStatus", ctx, "ref-123").Return(infrastructure.PaymentStatus(""), errors.New("provider timeout"))

	outcome, err := service.Reconcile(ctx, &entity.ConfirmPaymentRequest{
		OrderID:     order.ID.Hex(),
		ProviderRef: "ref-123",
	})

	assert.Error(t, err)
	assert.Empty(t, outcome)
	m.orderRepo.AssertNotCalled(t, "Finalize")
	m.orderRepo.AssertNotCalled(t, "Delete")
}

func TestReconcile_ProviderRefMismatch(t *testing.T) {
	service, m := newPaymentService()

	ctx := context.Background()
	order := provisionalOrder()

	m.orderRepo.On("GetProvisional", ctx, order.ID, mock.AnythingOfType("time.Time")).Return(order, nil)

	outcome, err := service.Reconcile(ctx, &entity.ConfirmPaymentRequest{
		OrderID:     order.ID.Hex(),
		ProviderRef: "ref-other",
	})

	assert.ErrorIs(t, err, ErrProviderRefMismatch)
	assert.Empty(t, outcome)
	m.paymentProvider.AssertNotCalled(t, "GetStatus")
}

func TestReconcile_InvalidOrderID(t *testing.T) {
	service, m := newPaymentService()

	outcome, err := service.Reconcile(context.Background(), &entity.ConfirmPaymentRequest{
		OrderID:     "not-an-id",
		ProviderRef: "ref-123",
	})

	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Empty(t, outcome)
	m.orderRepo.AssertNotCalled(t, "GetProvisional")
}

func TestReconcile_Succeeded_StockShortageLoggedOnly(t *testing.T) {
	service, m := newPaymentService()

	ctx := context.Background()
	order := provisionalOrder()
	productID := primitive.NewObjectID()
	items := []entity.OrderItem{{ID: primitive.NewObjectID(), OrderID: order.ID, ProductID: productID, Quantity: 5}}

	m.orderRepo.On("GetProvisional", ctx, order.ID, mock.AnythingOfType("time.Time")).Return(order, nil)
	m.paymentProvider.On("GetStatus", ctx, "ref-123").Return(infrastructure.PaymentStatusSucceeded, nil)
	m.orderRepo.On("Finalize", ctx, order.ID).Return(nil)
	m.orderItemRepo.On("ClearExpiry", ctx, order.ID).Return(nil)
	m.orderItemRepo.On("GetByOrderID", ctx, order.ID).Return(items, nil)
	// Товар раскупили, пока провайдер думал - деньги уже приняты
	m.productRepo.On("DecrementStock", ctx, productID, 5).Return(repository.ErrInsufficientStock)
	m.notifier.On("Notify", ctx, "admin-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	outcome, err := service.Reconcile(ctx, &entity.ConfirmPaymentRequest{
		OrderID:     order.ID.Hex(),
		ProviderRef: "ref-123",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.OutcomePaid, outcome)
}

func TestReconcile_Succeeded_BuyerMailFollowsOrderLanguage(t *testing.T) {
	service, m := newPaymentService()

	ctx := context.Background()
	order := provisionalOrder()
	order.LanguageCode = "en"
	productID := primitive.NewObjectID()
	items := []entity.OrderItem{{ID: primitive.NewObjectID(), OrderID: order.ID, ProductID: productID, Quantity: 1}}

	m.orderRepo.On("GetProvisional", ctx, order.ID, mock.AnythingOfType("time.Time")).Return(order, nil)
	m.paymentProvider.On("GetStatus", ctx, "ref-123").Return(infrastructure.PaymentStatusSucceeded, nil)
	m.orderRepo.On("Finalize", ctx, order.ID).Return(nil)
	m.orderItemRepo.On("ClearExpiry", ctx, order.ID).Return(nil)
	m.orderItemRepo.On("GetByOrderID", ctx, order.ID).Return(items, nil)
	m.productRepo.On("DecrementStock", ctx, productID, 1).Return(nil)
	m.notifier.On("Notify", ctx, "admin-1", mock.Anything, mock.Anything).Return(&entity.Notification{}, nil)
	m.mailSender.On("Send", ctx, mock.Anything).Return(nil)
	m.kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	outcome, err := service.Reconcile(ctx, &entity.ConfirmPaymentRequest{
		OrderID:     order.ID.Hex(),
		ProviderRef: "ref-123",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.OutcomePaid, outcome)
	assert.Equal(t, "Payment received", m.mailSender.Sent[0].Subject)
}
