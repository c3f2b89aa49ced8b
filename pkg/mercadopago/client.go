package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mpsubs/pkg/logger"
)

const (
	opCreatePreapprovalPlan = "create_preapproval_plan"
	opGetPreapproval        = "get_preapproval"

	idempotencyHeader = "X-Idempotency-Key"
	maxErrorBody      = 512
	maxResponseBody   = 1 << 20
)

// Client talks to the MercadoPago REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	maxRetries int

	http      *http.Client
	backoff   Backoff
	breaker   *CircuitBreaker
	log       *slog.Logger
	onAttempt AttemptHook
	newKey    func() string
}

// New validates cfg and builds a client. The access token is captured once;
// the client never reads the environment.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrInvalidConfig)
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.mercadopago.com"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base url must be an absolute http(s) url", ErrInvalidConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		token:      cfg.AccessToken,
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		backoff: ExponentialBackoff{
			Initial:    cfg.RetryInitialInterval,
			Max:        cfg.RetryMaxInterval,
			Multiplier: 2,
			Jitter:     0.1,
		},
		log:    logger.Discard(),
		newKey: uuid.NewString,
	}
	if cfg.BreakerFailureThreshold > 0 {
		c.breaker = NewCircuitBreaker(cfg.BreakerFailureThreshold, 1, cfg.BreakerRecoveryTimeout)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreatePreapprovalPlan creates a recurring billing plan and returns its id
// and hosted checkout URL. Only 201 Created is accepted.
func (c *Client) CreatePreapprovalPlan(ctx context.Context, req PreapprovalPlanRequest) (*PreapprovalPlan, error) {
	if req.Reason == "" || req.AutoRecurring.Frequency <= 0 || req.AutoRecurring.TransactionAmount <= 0 {
		return nil, fmt.Errorf("%w: reason, frequency and amount are required", ErrInvalidRequest)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	var plan PreapprovalPlan
	if err := c.do(ctx, opCreatePreapprovalPlan, http.MethodPost, "/preapproval_plan", body, http.StatusCreated, &plan); err != nil {
		return nil, err
	}
	if plan.ID == "" || plan.InitPoint == "" {
		return nil, fmt.Errorf("%w: response lacks id or init_point", ErrDecodeResponse)
	}
	return &plan, nil
}

// GetPreapproval fetches the authoritative state of a subscription.
func (c *Client) GetPreapproval(ctx context.Context, id string) (*Preapproval, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: preapproval id is required", ErrInvalidRequest)
	}

	var p Preapproval
	if err := c.do(ctx, opGetPreapproval, http.MethodGet, "/preapproval/"+url.PathEscape(id), nil, http.StatusOK, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, want int, out any) error {
	var key string
	if method == http.MethodPost {
		key = c.newKey()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.backoff.NextInterval(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(lastErr, ctx.Err())
			case <-timer.C:
			}
		}

		if c.breaker != nil && !c.breaker.Allow() {
			return errors.Join(ErrCircuitOpen, lastErr)
		}

		start := time.Now()
		status, err := c.attempt(ctx, method, path, body, key, want, out)

		if c.onAttempt != nil {
			c.onAttempt(Attempt{
				Operation:  op,
				Number:     attempt + 1,
				StatusCode: status,
				Duration:   time.Since(start),
				Err:        err,
			})
		}

		retryable := err != nil && isRetryable(err)
		if c.breaker != nil {
			// Permanent 4xx answers prove the API is up.
			if err == nil || !retryable {
				c.breaker.RecordSuccess()
			} else {
				c.breaker.RecordFailure()
			}
		}

		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable {
			return err
		}
		c.log.WarnContext(ctx, "mercadopago request failed, will retry",
			slog.String("operation", op),
			logger.Attempt(attempt+1),
			logger.Error(err),
		)
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte, key string, want int, out any) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &StatusError{
			Op:         method + " " + path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(strings.ReplaceAll(string(raw), "\n", " ")),
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return resp.StatusCode, nil
}

func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return errors.Is(err, ErrTemporaryFailure) || errors.Is(err, ErrTimeout)
}
