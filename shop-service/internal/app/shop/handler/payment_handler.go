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

type PaymentServiceInterface interface {
	Reconcile(ctx context.Context, req *entity.ConfirmPaymentRequest) (entity.ReconcileOutcome, error)
}

// PaymentHandler обрабатывает callback платёжного провайдера
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validator      *validator.Validate
}

// NewPaymentHandler создает новый обработчик платежей
func NewPaymentHandler(paymentService PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validator:      validator.New(),
	}
}

// ConfirmPayment обрабатывает POST /payments/confirm
// Повторный callback по уже обработанному заказу отвечает already_handled
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req entity.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	outcome, err := h.paymentService.Reconcile(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		case errors.Is(err, service.ErrProviderRefMismatch):
			c.JSON(http.StatusConflict, gin.H{"error": "Provider reference mismatch"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reconcile payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}
