package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConduit      = errors.New("conduit error")
	ErrUnexpected   = errors.New("unexpected tracker response")
	ErrInvalidToken = errors.New("tracker api token is empty")
)

const (
	defaultTimeout = 30 * time.Second
	// Лимит страницы на стороне трекера
	pageLimit = 100
)

type Config struct {
	BaseURL string
	Token   string
	// RPS 0 - без ограничения
	RPS   float64
	Burst int
}

// Client клиент Conduit API трекера
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrInvalidToken
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid tracker url %q: %w", cfg.BaseURL, err)
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type conduitResponse struct {
	Result    json.RawMessage `json:"result"`
	ErrorCode *string         `json:"error_code"`
	ErrorInfo *string         `json:"error_info"`
}

// call выполняет метод Conduit и декодирует result в out
func (c *Client) call(ctx context.Context, method string, params map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body := make(map[string]any, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	body["__conduit__"] = map[string]string{"token": c.token}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s params: %w", method, err)
	}

	form := url.Values{}
	form.Set("params", string(encoded))
	form.Set("output", "json")
	form.Set("__conduit__", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+method, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("tracker request failed",
			zap.String("method", method),
			zap.Error(err),
		)
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	c.log.Debug("tracker request completed",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(started)),
	)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s returned %d: %s", ErrUnexpected, method, resp.StatusCode, string(raw))
	}

	var envelope conduitResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUnexpected, method, err)
	}
	if envelope.ErrorCode != nil {
		info := ""
		if envelope.ErrorInfo != nil {
			info = *envelope.ErrorInfo
		}
		return fmt.Errorf("%w: %s: %s: %s", ErrConduit, method, *envelope.ErrorCode, info)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("%w: decode %s result: %w", ErrUnexpected, method, err)
	}
	return nil
}

type cursor struct {
	After json.RawMessage `json:"after"`
}

// next курсор следующей страницы; трекер отдает его строкой или числом
func (c cursor) next() (string, bool) {
	raw := strings.TrimSpace(string(c.After))
	if raw == "" || raw == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(c.After, &s); err == nil {
		return s, s != ""
	}
	return raw, true
}

type searchPage[T any] struct {
	Data   []T    `json:"data"`
	Cursor cursor `json:"cursor"`
}

// search проходит все страницы *.search метода по cursor.after
func search[T any](ctx context.Context, c *Client, method string, params map[string]any) ([]T, error) {
	var items []T
	after := ""

	for {
		page := make(map[string]any, len(params)+2)
		for k, v := range params {
			page[k] = v
		}
		page["limit"] = pageLimit
		if after != "" {
			page["after"] = after
		}

		var result searchPage[T]
		if err := c.call(ctx, method, page, &result); err != nil {
			return nil, err
		}
		items = append(items, result.Data...)

		next, ok := result.Cursor.next()
		if !ok {
			return items, nil
		}
		after = next
	}
}
