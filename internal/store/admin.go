package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// AdminClient is a Store backed by the proxy's administration endpoint.
// Reads and writes operate on whole server documents under
// {base}/config/servers/{name}.
//
// Transient failures (network errors, 5xx responses) are retried with
// exponential backoff. This is the only retry layer in the system; the
// mutation operations above it surface errors unchanged.
type AdminClient struct {
	baseURL     string
	httpClient  *http.Client
	retryBudget time.Duration
	logger      *zap.Logger
}

// NewAdminClient creates a client for the given admin endpoint. timeout
// bounds each individual HTTP request, retryBudget bounds the total time
// spent retrying one logical operation.
func NewAdminClient(baseURL string, timeout, retryBudget time.Duration, logger *zap.Logger) *AdminClient {
	return &AdminClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		retryBudget: retryBudget,
		logger:      logger,
	}
}

// GetServer fetches the server's configuration document.
func (c *AdminClient) GetServer(ctx context.Context, name string) (*ServerConfig, error) {
	operation := func() (*ServerConfig, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL(name), nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to read server config: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if err := c.checkStatus(resp, name); err != nil {
			return nil, err
		}

		var cfg ServerConfig
		if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode server config: %w", err))
		}
		return &cfg, nil
	}

	cfg, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.retryBudget),
	)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("read server config",
		zap.String("server", name),
		zap.Int("routes", len(cfg.Routes)),
	)
	return cfg, nil
}

// PutServer replaces the server's configuration document as a whole.
func (c *AdminClient) PutServer(ctx context.Context, name string, cfg *ServerConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal server config: %w", err)
	}

	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL(name), bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to write server config: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		_, _ = io.Copy(io.Discard, resp.Body)

		return struct{}{}, c.checkStatus(resp, name)
	}

	if _, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.retryBudget),
	); err != nil {
		return err
	}

	c.logger.Debug("wrote server config",
		zap.String("server", name),
		zap.Int("routes", len(cfg.Routes)),
	)
	return nil
}

// Ping checks that the admin endpoint answers at all.
func (c *AdminClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/config/servers", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach admin endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("admin endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// checkStatus maps HTTP statuses to errors: 404 is a permanent NotFoundError,
// 5xx is retryable, any other non-2xx is permanent.
func (c *AdminClient) checkStatus(resp *http.Response, name string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(&NotFoundError{Server: name})
	case resp.StatusCode >= 500:
		return fmt.Errorf("admin endpoint returned status %d", resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("admin endpoint returned status %d", resp.StatusCode))
	}
}

func (c *AdminClient) serverURL(name string) string {
	return c.baseURL + "/config/servers/" + name
}
