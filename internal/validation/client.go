package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vietddude/orderpipe/internal/core/domain"
	"github.com/vietddude/orderpipe/internal/metrics"
)

// ClientConfig defines the resilient validation client behavior.
type ClientConfig struct {
	// URL is the validator's /validate endpoint.
	URL string
	// Timeout bounds a single remote call attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// RetryBase is the first backoff delay; subsequent delays double.
	RetryBase time.Duration
	// RetryCap clamps the backoff delay.
	RetryCap time.Duration
	// FailureThreshold and Cooldown configure the circuit breaker.
	FailureThreshold int
	Cooldown         time.Duration
}

// DefaultClientConfig mirrors the production policy: 3 attempts with
// backoff delays of roughly 4s and 8s clamped at 10s, a 5s per-call
// timeout, and a breaker that opens after 3 failures for 30s.
func DefaultClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:              url,
		Timeout:          5 * time.Second,
		MaxRetries:       2,
		RetryBase:        4 * time.Second,
		RetryCap:         10 * time.Second,
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	}
}

// Result is the validator's verdict for one order.
type Result struct {
	OrderID string `json:"order_id"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Client wraps calls to the external validator with a circuit breaker
// (outermost) and a bounded retry on timeouts (innermost). The breaker
// sits outside the retry loop and sees one outcome per retried attempt.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	breaker    *Breaker
	log        *slog.Logger
}

// NewClient creates a resilient validation client with its own breaker.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 4 * time.Second
	}
	if cfg.RetryCap <= 0 {
		cfg.RetryCap = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: NewBreaker(cfg.FailureThreshold, cfg.Cooldown),
		log:     slog.Default().With("component", "validation_client"),
	}
}

// Breaker exposes the shared breaker, mainly for observability and tests.
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// Validate performs one guarded validation. Outcomes:
//   - (Result, nil) on a parseable 2xx response
//   - ErrCircuitOpen when the breaker refuses the call (no network I/O)
//   - *RetryExhaustedError when every attempt timed out
//   - *ValidationError for terminal transport/response failures
func (c *Client) Validate(ctx context.Context, task *domain.ValidationTask) (*Result, error) {
	if err := c.breaker.Allow(); err != nil {
		metrics.ValidationCalls.WithLabelValues("circuit_open").Inc()
		return nil, err
	}

	var result *Result
	attempts := 0

	backoff := retry.WithMaxRetries(c.cfg.MaxRetries,
		retry.WithCappedDuration(c.cfg.RetryCap,
			retry.NewExponential(c.cfg.RetryBase)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		res, callErr := c.call(ctx, task)
		if callErr != nil {
			if callErr.Kind.Retryable() {
				c.log.Warn("validation attempt timed out",
					"order_id", task.OrderID, "attempt", attempts)
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		result = res
		return nil
	})
	if err != nil {
		// The breaker sees one failure for the whole retried attempt.
		c.breaker.RecordFailure()

		var verr *ValidationError
		if errors.As(err, &verr) && verr.Kind.Retryable() {
			metrics.ValidationCalls.WithLabelValues("retry_exhausted").Inc()
			return nil, &RetryExhaustedError{Attempts: attempts, Last: verr}
		}
		if errors.As(err, &verr) {
			metrics.ValidationCalls.WithLabelValues(verr.Kind.String()).Inc()
		} else {
			metrics.ValidationCalls.WithLabelValues("internal").Inc()
		}
		return nil, err
	}

	c.breaker.RecordSuccess()
	metrics.ValidationCalls.WithLabelValues("success").Inc()
	return result, nil
}

// call performs a single HTTP attempt and classifies the raw outcome.
func (c *Client) call(ctx context.Context, task *domain.ValidationTask) (*Result, *ValidationError) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, &ValidationError{Kind: KindBadRequest, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, &ValidationError{Kind: KindBadRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ValidationError{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()
	metrics.ValidationLatency.Observe(time.Since(start).Seconds())

	switch {
	case resp.StatusCode >= 500:
		return nil, &ValidationError{
			Kind: KindUpstreamDown,
			Err:  fmt.Errorf("validator returned %s", resp.Status),
		}
	case resp.StatusCode >= 400:
		return nil, &ValidationError{
			Kind: KindBadRequest,
			Err:  fmt.Errorf("validator returned %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ValidationError{Kind: classifyTransport(err), Err: err}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ValidationError{Kind: KindBadResponse, Err: err}
	}
	return &result, nil
}

// classifyTransport maps a transport-level error to its kind: timeouts
// are retryable, everything else (connection refused, reset, DNS) means
// the upstream is down.
func classifyTransport(err error) ErrorKind {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUpstreamDown
}
