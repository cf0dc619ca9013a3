package planet

import (
	"net/http"
	"net/url"
	"time"
)

// Logger represents the minimal logging interface used by the client.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client) error

// WithBaseURL overrides the data API base URL (default api.planet.com/data/v1).
func WithBaseURL(raw string) ClientOption {
	return func(c *Client) error {
		u, err := parseAbsURL(raw)
		if err != nil {
			return err
		}
		c.dataURL = u
		return nil
	}
}

// WithOrdersURL overrides the orders API base URL
// (default api.planet.com/compute/ops/orders/v2).
func WithOrdersURL(raw string) ClientOption {
	return func(c *Client) error {
		u, err := parseAbsURL(raw)
		if err != nil {
			return err
		}
		c.ordersURL = u
		return nil
	}
}

// WithHTTPClient injects a custom http.Client. The client's transport is
// wrapped with the key-injecting auth transport during construction.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		if httpClient == nil {
			return ErrNilHTTPClient
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithTimeout sets a per-request timeout on the underlying http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		if timeout <= 0 {
			return nil
		}
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
		return nil
	}
}

// WithRetryPolicy configures the retry behavior for retriable requests.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) error {
		c.retryPolicy = policy
		return nil
	}
}

// WithLogger registers a logger used for request lifecycle events.
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) error {
		if ua != "" {
			c.userAgent = ua
		}
		return nil
	}
}

// WithAuthTransport replaces the default basic-auth key transport with a
// custom RoundTripper (e.g. auth.HeaderKeyTransport).
func WithAuthTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) error {
		c.authTransport = rt
		return nil
	}
}

func parseAbsURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, ErrInvalidBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, ErrInvalidBaseURL
	}
	return u, nil
}
