// Package planet is a thin client for the Planet Labs data and orders
// APIs: quick-search with pagination, clip orders with poll-until-ready,
// and delivery-file download.
package planet

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/robert-malhotra/go-planet-client/auth"
)

const (
	defaultDataURL   = "https://api.planet.com/data/v1"
	defaultOrdersURL = "https://api.planet.com/compute/ops/orders/v2"
	defaultUserAgent = "go-planet-client/0.1"
)

// Client is a reusable Planet API client.
type Client struct {
	httpClient    *http.Client
	dataURL       *url.URL
	ordersURL     *url.URL
	authTransport http.RoundTripper
	retryPolicy   RetryPolicy
	logger        Logger
	userAgent     string
}

// New constructs a Client for the given API key with provided options.
func New(key string, opts ...ClientOption) (*Client, error) {
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		httpClient:  &http.Client{},
		retryPolicy: DefaultRetryPolicy,
		userAgent:   defaultUserAgent,
	}
	c.dataURL, _ = url.Parse(defaultDataURL)
	c.ordersURL, _ = url.Parse(defaultOrdersURL)

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.httpClient == nil {
		return nil, ErrNilHTTPClient
	}
	if c.authTransport == nil {
		c.authTransport = &auth.BasicKeyTransport{Key: key, Base: c.httpClient.Transport}
	}
	// Copy so a shared http.Client is not mutated.
	authed := *c.httpClient
	authed.Transport = c.authTransport
	c.httpClient = &authed

	return c, nil
}

// Search returns a service for quick-search requests.
func (c *Client) Search() *SearchService {
	return &SearchService{client: c}
}

// Orders returns a service for clip orders and delivery downloads.
func (c *Client) Orders() *OrderService {
	return &OrderService{client: c}
}

// endpoint joins path segments onto a base URL.
func endpoint(base *url.URL, parts ...string) string {
	u := *base
	u.Path = path.Join(append([]string{base.Path}, parts...)...)
	return u.String()
}

// resolve turns a possibly relative href (e.g. a `_next` link) into an
// absolute URL against the data API base.
func (c *Client) resolve(href string) (string, error) {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return c.dataURL.ResolveReference(u).String(), nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.logger != nil {
		c.logger.Debugf("planet: %s %s", req.Method, req.URL)
	}

	resp, err := c.retry(ctx, func() (*http.Response, error) {
		if req.Body != nil && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, &NetworkError{URL: req.URL.String(), Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return nil, readErr
	}

	apiErr := &APIError{Status: resp.StatusCode, Raw: data}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		// Fallback to plain message.
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if c.logger != nil {
		c.logger.Errorf("planet: request failed status=%d url=%s", resp.StatusCode, req.URL)
	}
	return nil, apiErr
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, body any, out any) error {
	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
