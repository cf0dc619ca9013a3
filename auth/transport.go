package auth

import "net/http"

// BasicKeyTransport injects an API key as the basic-auth username with an
// empty password, which is how the Planet APIs expect the key.
type BasicKeyTransport struct {
	Key  string
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BasicKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Key != "" {
		clone.SetBasicAuth(t.Key, "")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// HeaderKeyTransport injects an API key into a configurable header. Some
// Planet endpoints accept `Authorization: api-key <key>` instead of basic
// auth.
type HeaderKeyTransport struct {
	Key    string
	Header string
	Prefix string
	Base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *HeaderKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	header := t.Header
	if header == "" {
		header = "Authorization"
	}
	if t.Key != "" {
		value := t.Key
		if t.Prefix != "" {
			value = t.Prefix + " " + t.Key
		}
		clone.Header.Set(header, value)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
