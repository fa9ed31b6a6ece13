package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"northberries/pkg/metrics"
	"northberries/shop-service/internal/app/shop/infrastructure"
)

// PaymentClient - JSON-over-HTTP клиент платёжного провайдера
// Провайдер авторитетен: локальный заказ финализируется только
// по его ответу на get_status
type PaymentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPaymentClient создает клиент платёжного провайдера
func NewPaymentClient(baseURL, apiKey string) *PaymentClient {
	return &PaymentClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type createIntentRequest struct {
	OrderID  string            `json:"order_id"`
	Amount   float64           `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type createIntentResponse struct {
	Ref string `json:"ref"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// CreateIntent регистрирует намерение оплаты и возвращает ссылку провайдера
func (c *PaymentClient) CreateIntent(ctx context.Context, orderID string, amount float64, currency string, metadata map[string]string) (string, error) {
	start := time.Now()

	ref, err := c.createIntent(ctx, orderID, amount, currency, metadata)
	metrics.RecordPaymentRequest("shop-service", "create_intent", time.Since(start), err)

	return ref, err
}

func (c *PaymentClient) createIntent(ctx context.Context, orderID string, amount float64, currency string, metadata map[string]string) (string, error) {
	payload, err := json.Marshal(createIntentRequest{
		OrderID:  orderID,
		Amount:   amount,
		Currency: currency,
		Metadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal intent request: %w", err)
	}

	url := fmt.Sprintf("%s/intents", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var intentResp createIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intentResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return intentResp.Ref, nil
}

// GetStatus запрашивает авторитетный статус транзакции
func (c *PaymentClient) GetStatus(ctx context.Context, providerRef string) (infrastructure.PaymentStatus, error) {
	start := time.Now()

	status, err := c.getStatus(ctx, providerRef)
	metrics.RecordPaymentRequest("shop-service", "get_status", time.Since(start), err)

	return status, err
}

func (c *PaymentClient) getStatus(ctx context.Context, providerRef string) (infrastructure.PaymentStatus, error) {
	url := fmt.Sprintf("%s/intents/%s", c.baseURL, providerRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	switch status.Status {
	case "succeeded":
		return infrastructure.PaymentStatusSucceeded, nil
	case "failed", "declined":
		return infrastructure.PaymentStatusFailed, nil
	case "pending":
		return infrastructure.PaymentStatusPending, nil
	default:
		return "", fmt.Errorf("unknown provider status: %s", status.Status)
	}
}
