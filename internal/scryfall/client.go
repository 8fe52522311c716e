package scryfall

import (
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

	"golang.org/x/time/rate"

	"github.com/arcanaland/proxymancer/internal/logging"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultInterval = 100 * time.Millisecond
	maxJSONBytes    = 4 << 20
	maxImageBytes   = 32 << 20
)

// Client provides access to the Scryfall API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	maxImage   int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRequestInterval sets the minimum spacing between requests. Zero
// disables rate limiting.
func WithRequestInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithUserAgent sets the User-Agent header Scryfall requires.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxImageBytes caps the size of a downloaded image.
func WithMaxImageBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxImage = n
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "scryfall")
	}
}

// New creates a Scryfall client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("scryfall base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse scryfall base url: %w", err)
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "proxymancer/1.0",
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(defaultInterval), 1),
		logger:     logging.NewNop(),
		maxImage:   maxImageBytes,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Named looks a card up by name. With fuzzy set, Scryfall tolerates
// misspellings and partial names; otherwise the name must match exactly
// (case-insensitively).
func (c *Client) Named(ctx context.Context, name string, fuzzy bool) (*Card, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("card name must not be empty")
	}

	params := url.Values{}
	if fuzzy {
		params.Set("fuzzy", name)
	} else {
		params.Set("exact", name)
	}
	return c.getCard(ctx, "/cards/named?"+params.Encode(), name)
}

// Printing fetches a specific printing by set code and collector number.
func (c *Client) Printing(ctx context.Context, setCode, collectorNumber string) (*Card, error) {
	setCode = strings.ToLower(strings.TrimSpace(setCode))
	collectorNumber = strings.TrimSpace(collectorNumber)
	if setCode == "" || collectorNumber == "" {
		return nil, errors.New("set code and collector number are required")
	}

	path := "/cards/" + url.PathEscape(setCode) + "/" + url.PathEscape(collectorNumber)
	return c.getCard(ctx, path, setCode+"/"+collectorNumber)
}

// Download fetches raw image bytes.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	resp, err := c.do(ctx, imageURL, "image/*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: imageURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImage+1))
	if err != nil {
		return nil, &NetworkError{URL: imageURL, Err: err}
	}
	if int64(len(data)) > c.maxImage {
		return nil, &NetworkError{URL: imageURL, Err: fmt.Errorf("image larger than %d bytes", c.maxImage)}
	}
	if len(data) == 0 {
		return nil, &NetworkError{URL: imageURL, Err: errors.New("empty image body")}
	}
	return data, nil
}

func (c *Client) getCard(ctx context.Context, path, query string) (*Card, error) {
	endpoint := c.baseURL + path
	resp, err := c.do(ctx, endpoint, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxJSONBytes)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		var apiErr apiError
		_ = json.NewDecoder(body).Decode(&apiErr)
		return nil, &NotFoundError{Query: query, Details: apiErr.Details}
	case resp.StatusCode != http.StatusOK:
		return nil, &NetworkError{URL: endpoint, Status: resp.StatusCode}
	}

	var card Card
	if err := json.NewDecoder(body).Decode(&card); err != nil {
		return nil, &NetworkError{URL: endpoint, Err: fmt.Errorf("decode card: %w", err)}
	}
	return &card, nil
}

func (c *Client) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	c.logger.Debug("scryfall request",
		slog.String("url", rawURL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", latency))
	return resp, nil
}
