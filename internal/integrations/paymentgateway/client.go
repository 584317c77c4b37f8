package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RefundRequest запрос на возврат средств по заказу
type RefundRequest struct {
	OrderRef string  `json:"order_ref"`
	Amount   float64 `json:"amount"`
	Reason   string  `json:"reason"`
}

// RefundResult результат возврата
type RefundResult struct {
	Success   bool    `json:"success"`
	Amount    float64 `json:"amount"`
	Automatic bool    `json:"automatic"` // false = шлюз поставил возврат в ручную очередь
}

// Client клиент платёжного шлюза внешней коммерс-системы
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платёжного шлюза
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Refund выполняет возврат по внешнему заказу
func (c *Client) Refund(ctx context.Context, orderRef string, amount float64, reason string) (*RefundResult, error) {
	url := fmt.Sprintf("%s/internal/orders/%s/refund", c.baseURL, orderRef)

	payload, err := json.Marshal(RefundRequest{OrderRef: orderRef, Amount: amount, Reason: reason})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrOrderNotFound
	case http.StatusUnprocessableEntity:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrRefundRejected, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var result RefundResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &result, nil
}

// RefundWithGracefulDegradation выполняет возврат с graceful degradation.
// Бизнес-ошибки (неизвестный заказ, отклонённый возврат) пробрасываются как есть;
// недоступность шлюза превращается в ErrServiceDegraded - отмена бронирования
// при этом не блокируется, возврат уходит в ручную обработку.
func (c *Client) RefundWithGracefulDegradation(ctx context.Context, orderRef string, amount float64, reason string) (*RefundResult, error) {
	c.log.Info("Refunding order_ref=%s amount=%.2f", orderRef, amount)

	result, err := c.Refund(ctx, orderRef, amount, reason)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrRefundRejected) {
			c.log.Warn("Refund rejected by gateway for order_ref=%s: %v", orderRef, err)
			return nil, err
		}

		c.log.Error("Payment gateway unavailable, refund for order_ref=%s needs manual processing: %v", orderRef, err)
		return nil, fmt.Errorf("%w: order_ref=%s, error=%v", ErrServiceDegraded, orderRef, err)
	}

	c.log.Info("Successfully refunded order_ref=%s amount=%.2f automatic=%t", orderRef, result.Amount, result.Automatic)
	return result, nil
}
