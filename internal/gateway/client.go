package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
)

const initializePath = "/transaction/initialize"

// ErrMissingPaymentURL is returned when the gateway accepted the call but its
// body carries no usable payment_url.
var ErrMissingPaymentURL = errors.New("gateway response has no payment_url")

// StatusError is a non-2xx answer from the gateway.
type StatusError struct {
	StatusCode int
	Message    string
	// Details is the decoded response body, or the raw text when it is not JSON.
	Details any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway status=%d: %s", e.StatusCode, e.Message)
}

// UnreachableError means no response came back: dial failure, reset, timeout.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string { return "gateway unreachable: " + e.Err.Error() }

func (e *UnreachableError) Unwrap() error { return e.Err }

// InitializeRequest is the body of a payment initialization call.
type InitializeRequest struct {
	Amount          int64  `json:"amount"`
	TransactionRef  string `json:"transaction_ref"`
	MobileNumber    string `json:"mobile_number"`
	EmailAddress    string `json:"email_address"`
	MerchantBoxCode string `json:"merchant_box_code"`
	CallbackURL     string `json:"callback_url"`
	LogoURL         string `json:"logo_url"`
}

type Client struct {
	Base      string
	SecretKey string
	HTTP      *http.Client

	// MaxRetries bounds extra attempts after an UnreachableError. Rejections
	// and protocol errors are never retried.
	MaxRetries int
	// RetryInterval is the first backoff delay; it grows exponentially.
	RetryInterval time.Duration
}

func New(base, secretKey string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		Base:          strings.TrimRight(base, "/"),
		SecretKey:     secretKey,
		HTTP:          hc,
		RetryInterval: 500 * time.Millisecond,
	}
}

// Initialize registers the payment with the gateway and returns the hosted
// payment page URL.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (string, error) {
	body, err := sonic.ConfigStd.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode initialize request: %w", err)
	}

	if c.MaxRetries <= 0 {
		return c.initialize(ctx, body)
	}

	b := backoff.NewExponentialBackOff()
	if c.RetryInterval > 0 {
		b.InitialInterval = c.RetryInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.MaxRetries)), ctx)

	return backoff.RetryWithData(func() (string, error) {
		url, err := c.initialize(ctx, body)
		var unreachable *UnreachableError
		if err != nil && !errors.As(err, &unreachable) {
			return "", backoff.Permanent(err)
		}
		return url, err
	}, policy)
}

func (c *Client) initialize(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+initializePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build initialize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", &UnreachableError{Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UnreachableError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode/100 != 2 {
		return "", newStatusError(resp.StatusCode, b)
	}

	var payload map[string]any
	if err := sonic.Unmarshal(b, &payload); err != nil {
		return "", fmt.Errorf("%w: body=%s", ErrMissingPaymentURL, strings.TrimSpace(string(b)))
	}
	url := paymentURL(payload)
	if url == "" {
		return "", fmt.Errorf("%w: body=%s", ErrMissingPaymentURL, strings.TrimSpace(string(b)))
	}
	return url, nil
}

// paymentURL looks for payment_url at the top level, then under data.
func paymentURL(payload map[string]any) string {
	if url, ok := payload["payment_url"].(string); ok && url != "" {
		return url
	}
	if data, ok := payload["data"].(map[string]any); ok {
		if url, ok := data["payment_url"].(string); ok {
			return url
		}
	}
	return ""
}

func newStatusError(status int, body []byte) *StatusError {
	e := &StatusError{StatusCode: status, Message: http.StatusText(status)}
	if e.Message == "" {
		e.Message = "unexpected gateway status"
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return e
	}

	var decoded any
	if err := sonic.Unmarshal(trimmed, &decoded); err != nil {
		e.Details = string(trimmed)
		return e
	}
	e.Details = decoded
	if m, ok := decoded.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			e.Message = msg
		}
	}
	return e
}
