package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/dchat/internal/ports"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint    = "https://luminai.my.id"
	DefaultMinInterval = time.Second
	maxResponseBytes   = 1 << 20
	userAgent          = "dchat/completion"
)

var ErrMissingResult = errors.New("response has no result")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}

	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

type Config struct {
	Endpoint string
	// MinInterval spaces consecutive requests. Zero disables spacing.
	MinInterval time.Duration
}

// Client posts a message to the completion endpoint and returns the
// `result` field of the JSON response.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ ports.CompletionClient = (*Client)(nil)

type requestPayload struct {
	Content string `json:"content"`
	User    string `json:"user"`
	Prompt  string `json:"prompt"`
}

type responsePayload struct {
	Result *string `json:"result"`
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultEndpoint
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for request slot: %w", err)
	}

	body, err := json.Marshal(requestPayload{
		Content: req.Content,
		User:    req.User,
		Prompt:  req.Prompt,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User-Agent", userAgent)
	if req.RequestID != "" {
		request.Header.Set("X-Request-Id", req.RequestID)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", &StatusError{Code: response.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var payload responsePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if payload.Result == nil || strings.TrimSpace(*payload.Result) == "" {
		return "", ErrMissingResult
	}

	return *payload.Result, nil
}
