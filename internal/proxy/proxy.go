// Package proxy resolves the outbound proxy for asset downloads from the
// conventional *_proxy environment variables.
package proxy

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Variables lists the environment variables consulted, highest priority first.
var Variables = []string{
	"https_proxy", "HTTPS_PROXY",
	"http_proxy", "HTTP_PROXY",
	"all_proxy", "ALL_PROXY",
}

var supportedSchemes = map[string]struct{}{
	"http":    {},
	"https":   {},
	"socks5":  {},
	"socks5h": {},
}

// ProxyConfig is the proxy selected for a single provisioning run. The zero
// value means no proxy.
type ProxyConfig struct {
	URL    string
	Source string
}

// Resolve returns the first non-empty proxy setting in Variables order.
func Resolve(env Environment) ProxyConfig {
	if env == nil {
		return ProxyConfig{}
	}
	for _, key := range Variables {
		if v, ok := env.Lookup(key); ok && v != "" {
			return ProxyConfig{URL: v, Source: key}
		}
	}
	return ProxyConfig{}
}

// IsSet reports whether a proxy value was found.
func (c ProxyConfig) IsSet() bool {
	return c.URL != ""
}

// Parse interprets the configured value as a proxy URL. A value without a
// scheme is treated as an http proxy.
func (c ProxyConfig) Parse() (*url.URL, error) {
	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		return nil, errors.New("proxy is not set")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid proxy %q", c.URL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if _, ok := supportedSchemes[u.Scheme]; !ok {
		return nil, errors.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, errors.Errorf("proxy %q has no host", c.URL)
	}

	return u, nil
}

// ProxyFunc returns a transport proxy selector, or nil when no usable proxy
// is configured. An unparseable value yields nil rather than an error.
func (c ProxyConfig) ProxyFunc() func(*http.Request) (*url.URL, error) {
	if !c.IsSet() {
		return nil
	}
	u, err := c.Parse()
	if err != nil {
		return nil
	}
	return http.ProxyURL(u)
}

// NewHTTPClient builds the download client. The proxy comes only from cfg so
// the resolved value is authoritative. No client timeout is set.
func NewHTTPClient(cfg ProxyConfig) *http.Client {
	transport := &http.Transport{
		Proxy:                 cfg.ProxyFunc(),
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    true,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{Transport: transport}
}
