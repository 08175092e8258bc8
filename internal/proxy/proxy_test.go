package proxy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		env  MapEnvironment
		want ProxyConfig
	}{
		{
			name: "none",
			env:  MapEnvironment{},
			want: ProxyConfig{},
		},
		{
			name: "lower case wins over upper case",
			env:  MapEnvironment{"https_proxy": "http://lower:1", "HTTPS_PROXY": "http://upper:2"},
			want: ProxyConfig{URL: "http://lower:1", Source: "https_proxy"},
		},
		{
			name: "https tier wins over http tier",
			env:  MapEnvironment{"HTTPS_PROXY": "http://secure:1", "http_proxy": "http://plain:2"},
			want: ProxyConfig{URL: "http://secure:1", Source: "HTTPS_PROXY"},
		},
		{
			name: "all_proxy fallback",
			env:  MapEnvironment{"all_proxy": "socks5://fallback:1080"},
			want: ProxyConfig{URL: "socks5://fallback:1080", Source: "all_proxy"},
		},
		{
			name: "empty values are skipped",
			env:  MapEnvironment{"https_proxy": "", "HTTP_PROXY": "http://next:3"},
			want: ProxyConfig{URL: "http://next:3", Source: "HTTP_PROXY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.env))
		})
	}

	assert.Equal(t, ProxyConfig{}, Resolve(nil))
}

func TestResolve_OSEnvironment(t *testing.T) {
	for _, key := range Variables {
		t.Setenv(key, "")
	}
	t.Setenv("ALL_PROXY", "http://from-env:8080")

	assert.Equal(t, ProxyConfig{URL: "http://from-env:8080", Source: "ALL_PROXY"}, Resolve(OSEnvironment{}))
}

// The selected value is always the first non-empty variable in priority order.
func TestResolve_PriorityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		env := MapEnvironment{}
		for _, key := range Variables {
			if rapid.Bool().Draw(t, "set_"+key) {
				env[key] = rapid.SampledFrom([]string{"", "http://" + key + ":3128"}).Draw(t, "value_"+key)
			}
		}

		got := Resolve(env)

		for _, key := range Variables {
			if env[key] != "" {
				if got.Source != key || got.URL != env[key] {
					t.Fatalf("expected %s=%q, got %+v", key, env[key], got)
				}
				return
			}
		}
		if got.IsSet() {
			t.Fatalf("expected no proxy, got %+v", got)
		}
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "http://proxy.local:3128", want: "http://proxy.local:3128"},
		{raw: "proxy.local:3128", want: "http://proxy.local:3128"},
		{raw: "HTTPS://user:pw@proxy.local", want: "https://user:pw@proxy.local"},
		{raw: "socks5h://127.0.0.1:1080", want: "socks5h://127.0.0.1:1080"},
		{raw: "ftp://proxy.local", wantErr: true},
		{raw: "socks4://proxy.local:1080", wantErr: true},
		{raw: "http://", wantErr: true},
		{raw: "http://[::1", wantErr: true},
		{raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ProxyConfig{URL: tt.raw}.Parse()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestProxyFunc(t *testing.T) {
	assert.Nil(t, ProxyConfig{}.ProxyFunc())
	assert.Nil(t, ProxyConfig{URL: "ftp://nope", Source: "https_proxy"}.ProxyFunc())

	fn := ProxyConfig{URL: "proxy.local:3128", Source: "http_proxy"}.ProxyFunc()
	require.NotNil(t, fn)

	req, err := http.NewRequest(http.MethodGet, "https://example.com/asset", nil)
	require.NoError(t, err)
	u, err := fn(req)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.local:3128", u.String())
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(ProxyConfig{URL: "ftp://ignored"})
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Nil(t, transport.Proxy)
	assert.Zero(t, client.Timeout)

	client = NewHTTPClient(ProxyConfig{URL: "http://proxy.local:3128"})
	transport = client.Transport.(*http.Transport)
	assert.NotNil(t, transport.Proxy)
}
