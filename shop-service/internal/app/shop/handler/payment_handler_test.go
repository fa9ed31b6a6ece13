package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"northberries/shop-service/internal/app/shop/entity"
	"northberries/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Reconcile(ctx interface{}, req *entity.ConfirmPaymentRequest) (entity.ReconcileOutcome, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(entity.ReconcileOutcome), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func confirmPayment(router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, "/payments/confirm", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerConfirmRoute(router *gin.Engine, mockService *MockPaymentService) {
	router.POST("/payments/confirm", func(c *gin.Context) {
		var req entity.ConfirmPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.OrderID == "" || req.ProviderRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
			return
		}

		outcome, err := mockService.Reconcile(c.Request.Context(), &req)
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
	})
}

func TestConfirmPaymentHandler_Paid(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockPaymentService)
	mockService.On("Reconcile", mock.Anything, mock.AnythingOfType("*entity.ConfirmPaymentRequest")).
		Return(entity.OutcomePaid, nil)

	registerConfirmRoute(router, mockService)

	w := confirmPayment(router, entity.ConfirmPaymentRequest{OrderID: "6863f1a2b3c4d5e6f7a8b9c0", ProviderRef: "ref-123"})

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "paid", response["outcome"])
}

func TestConfirmPaymentHandler_AlreadyHandled(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockPaymentService)
	mockService.On("Reconcile", mock.Anything, mock.Anything).
		Return(entity.OutcomeAlreadyHandled, nil)

	registerConfirmRoute(router, mockService)

	w := confirmPayment(router, entity.ConfirmPaymentRequest{OrderID: "6863f1a2b3c4d5e6f7a8b9c0", ProviderRef: "ref-123"})

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "already_handled", response["outcome"])
}

func TestConfirmPaymentHandler_RefMismatch(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockPaymentService)
	mockService.On("Reconcile", mock.Anything, mock.Anything).
		Return(entity.ReconcileOutcome(""), service.ErrProviderRefMismatch)

	registerConfirmRoute(router, mockService)

	w := confirmPayment(router, entity.ConfirmPaymentRequest{OrderID: "6863f1a2b3c4d5e6f7a8b9c0", ProviderRef: "ref-wrong"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestConfirmPaymentHandler_ProviderDown(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockPaymentService)
	mockService.On("Reconcile", mock.Anything, mock.Anything).
		Return(entity.ReconcileOutcome(""), errors.New("provider unreachable"))

	registerConfirmRoute(router, mockService)

	w := confirmPayment(router, entity.ConfirmPaymentRequest{OrderID: "6863f1a2b3c4d5e6f7a8b9c0", ProviderRef: "ref-123"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestConfirmPaymentHandler_MissingFields(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockPaymentService)
	registerConfirmRoute(router, mockService)

	w := confirmPayment(router, entity.ConfirmPaymentRequest{OrderID: "6863f1a2b3c4d5e6f7a8b9c0"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}
