// Package httpclient builds the pooled HTTP transport shared by every auth
// mode of the Firestore client.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when Config.UserAgent is empty
const DefaultUserAgent = "fireinspect"

// Default connection pool settings
const (
	defaultMaxIdleConns          = 20
	defaultMaxIdleConnsPerHost   = 4
	defaultIdleConnTimeout       = 90 * time.Second
	defaultTLSHandshakeTimeout   = 10 * time.Second
	defaultResponseHeaderTimeout = 20 * time.Second
	defaultDialTimeout           = 30 * time.Second
	defaultDialKeepAlive         = 30 * time.Second
)

// Config tunes the transport. Zero values take the defaults.
type Config struct {
	UserAgent             string
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = defaultIdleConnTimeout
	}
	if c.TLSHandshakeTimeout == 0 {
		c.TLSHandshakeTimeout = defaultTLSHandshakeTimeout
	}
	if c.ResponseHeaderTimeout == 0 {
		c.ResponseHeaderTimeout = defaultResponseHeaderTimeout
	}
	return c
}

// NewTransport returns a pooled transport that sets the User-Agent on
// requests that carry none. A nil cfg selects the defaults.
func NewTransport(cfg *Config) http.RoundTripper {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c = c.withDefaults()

	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultDialTimeout,
			KeepAlive: defaultDialKeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   c.MaxIdleConnsPerHost,
		IdleConnTimeout:       c.IdleConnTimeout,
		TLSHandshakeTimeout:   c.TLSHandshakeTimeout,
		ResponseHeaderTimeout: c.ResponseHeaderTimeout,
	}
	return &userAgentTransport{base: base, userAgent: c.UserAgent}
}

// New returns a client over NewTransport. Timeouts are left to the request
// context.
func New(cfg *Config) *http.Client {
	return &http.Client{Transport: NewTransport(cfg)}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip must not modify the caller's request, so the header is set on a clone
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

// CloseIdleConnections lets http.Client.CloseIdleConnections reach the pool
func (t *userAgentTransport) CloseIdleConnections() {
	if c, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}
