// FILE: lixenwraith/confman/decode_test.go
package confman

import (
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanServer struct {
	Host     string        `toml:"host"`
	Port     int           `toml:"port"`
	Timeout  time.Duration `toml:"timeout"`
	Bind     net.IP        `toml:"bind"`
	Allow    *net.IPNet    `toml:"allow"`
	Endpoint url.URL       `toml:"endpoint"`
	Upstream *url.URL      `toml:"upstream"`
	Since    time.Time     `toml:"since"`
	Tags     []string      `toml:"tags"`
}

type scanApp struct {
	Name   string     `toml:"name"`
	Debug  bool       `toml:"debug"`
	Server scanServer `toml:"server"`
}

func TestScan(t *testing.T) {
	cfg := NewConfig(mustMapping(t, map[string]any{
		"name":  "svc",
		"debug": "true",
		"server": map[string]any{
			"host":     "localhost",
			"port":     "8080",
			"timeout":  "1m30s",
			"bind":     "10.0.0.1",
			"allow":    "192.168.0.0/16",
			"endpoint": "https://api.example.com/v1",
			"upstream": "http://backend:9000",
			"since":    "2024-03-01T10:00:00Z",
			"tags":     "a,b,c",
		},
	}))

	t.Run("Whole", func(t *testing.T) {
		var app scanApp
		require.NoError(t, cfg.Scan("", &app))

		assert.Equal(t, "svc", app.Name)
		assert.True(t, app.Debug)
		assert.Equal(t, 8080, app.Server.Port)
		assert.Equal(t, 90*time.Second, app.Server.Timeout)
		assert.True(t, net.ParseIP("10.0.0.1").Equal(app.Server.Bind))
		require.NotNil(t, app.Server.Allow)
		assert.Equal(t, "192.168.0.0/16", app.Server.Allow.String())
		assert.Equal(t, "api.example.com", app.Server.Endpoint.Host)
		require.NotNil(t, app.Server.Upstream)
		assert.Equal(t, "backend:9000", app.Server.Upstream.Host)
		assert.True(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Equal(app.Server.Since))
		assert.Equal(t, []string{"a", "b", "c"}, app.Server.Tags)
	})

	t.Run("Section", func(t *testing.T) {
		var server scanServer
		require.NoError(t, cfg.Scan("server", &server))
		assert.Equal(t, "localhost", server.Host)
	})

	t.Run("MissingSectionIsEmpty", func(t *testing.T) {
		server := scanServer{Host: "stale"}
		require.NoError(t, cfg.Scan("absent", &server))
		assert.Equal(t, "stale", server.Host)
	})

	t.Run("Errors", func(t *testing.T) {
		var app scanApp
		assert.Error(t, cfg.Scan("", app))
		assert.Error(t, cfg.Scan("", (*scanApp)(nil)))
		assert.ErrorContains(t, cfg.Scan("name", &app), "non-mapping")

		bad := NewConfig(mustMapping(t, map[string]any{"bind": "not-an-ip"}))
		var server scanServer
		assert.ErrorContains(t, bad.Scan("", &server), "invalid IP address")
	})

	t.Run("OtherTag", func(t *testing.T) {
		var out struct {
			ServiceName string `json:"name"`
		}
		require.NoError(t, cfg.ScanTag("", "json", &out))
		assert.Equal(t, "svc", out.ServiceName)
	})
}
