// Package platform wraps the twilio-go video v1 service: rooms, recording rules,
// recordings and compositions, decoded into the orchestrator's models.
package platform

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

	twclient "github.com/twilio/twilio-go/client"
	video "github.com/twilio/twilio-go/rest/video/v1"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the video API host.
	DefaultBaseURL = "https://video.twilio.com"
	// DefaultTimeout bounds a single HTTP exchange with the platform.
	DefaultTimeout = 30 * time.Second

	maxRedirectBody = 64 * 1024
)

var formHeaders = map[string]interface{}{
	"Content-Type": "application/x-www-form-urlencoded",
}

// Config holds the credentials and endpoint of the platform API.
type Config struct {
	BaseURL      string
	AccountSID   string
	APIKeySID    string
	APIKeySecret string
	Timeout      time.Duration
}

// Client talks to the platform through the SDK using API key basic auth.
// SDK calls take no context: ctx is checked before each call and the HTTP
// client timeout bounds the exchange.
type Client struct {
	video    *video.ApiService
	requests *twclient.RequestHandler
	logger   *zap.Logger
}

// NewClient creates a platform client. Redirects are never followed so that
// FetchRedirect can hand the signed target back to the caller.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKeySID == "" || cfg.APIKeySecret == "" {
		return nil, errors.New("platform: api key sid and secret required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &loggingTransport{next: http.DefaultTransport, logger: logger}
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" && base != DefaultBaseURL {
		u, err := url.Parse(base)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("platform: invalid base url %q", cfg.BaseURL)
		}
		transport.override = u
	}

	sdk := &twclient.Client{
		Credentials: twclient.NewCredentials(cfg.APIKeySID, cfg.APIKeySecret),
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	sdk.SetAccountSid(cfg.AccountSID)
	requests := twclient.NewRequestHandler(sdk)

	return &Client{
		video:    video.NewApiService(requests),
		requests: requests,
		logger:   logger,
	}, nil
}

// loggingTransport logs each platform exchange and, when override is set,
// sends every request to that scheme and host instead.
type loggingTransport struct {
	next     http.RoundTripper
	override *url.URL
	logger   *zap.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.override != nil {
		req = req.Clone(req.Context())
		req.URL.Scheme = t.override.Scheme
		req.URL.Host = t.override.Host
		req.Host = t.override.Host
	}
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Debug("platform request failed", zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.Error(err))
		return nil, err
	}
	t.logger.Debug("platform request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

// decode converts an SDK resource into a local model through its JSON form.
func decode[T any](src interface{}) (*T, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("platform: encode resource: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResource, err)
	}
	return &out, nil
}

func decodeList[T any, S any](items []S) ([]T, error) {
	out := make([]T, 0, len(items))
	for i := range items {
		v, err := decode[T](&items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// post sends a form to a path the SDK does not expose and decodes the JSON reply.
func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := c.requests.Post(DefaultBaseURL+path, form, formHeaders)
	if err != nil {
		return translate(err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("platform: decode POST %s: %w", path, err)
	}
	return nil
}

// FetchRedirect issues an authenticated GET against a platform-issued link and
// returns the temporary URL it points at. The body's redirect_to wins over the
// Location header. The target itself is not fetched.
func (c *Client) FetchRedirect(ctx context.Context, link string) (string, error) {
	if link == "" {
		return "", errors.New("platform: empty link")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := c.requests.Get(link, nil, nil)
	if err != nil {
		return "", translate(err)
	}
	defer resp.Body.Close()

	var body struct {
		RedirectTo string `json:"redirect_to"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRedirectBody))
	if err != nil {
		return "", fmt.Errorf("platform: read redirect body: %w", err)
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	if body.RedirectTo != "" {
		return body.RedirectTo, nil
	}
	if loc := resp.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	return "", ErrNoRedirect
}
