package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/splash/internal/config"
	"github.com/aretw0/splash/internal/logging"
	"github.com/aretw0/splash/pkg/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig completes every step within a few milliseconds and hides after timeout.
func fastConfig(timeout time.Duration) config.Config {
	cfg := config.Default()
	cfg.Timing.StartDelay = time.Millisecond
	cfg.Timing.ShortIncrement = time.Millisecond
	cfg.Timing.LongIncrement = 2 * time.Millisecond
	cfg.Timing.FaultProbability = 0
	cfg.Timing.DisplayTimeout = timeout
	cfg.Backend.Probe = false
	return cfg
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1", "/rest/v1/":
			w.WriteHeader(http.StatusOK)
		case "/rest/v1/products":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"code":"42501","message":"permission denied for table products"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_PlainOutput(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Config: fastConfig(200 * time.Millisecond),
		Logger: logging.NewNop(),
		Out:    &out,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "[  0%] 0/6 Initializing system", lines[0])
	assert.Equal(t, "[100%] 6/6 hidden", lines[len(lines)-1])
}

func TestRun_Report(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Config: fastConfig(100 * time.Millisecond),
		Logger: logging.NewNop(),
		Out:    &out,
		Report: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Startup report")
	assert.Contains(t, out.String(), "Preparing dashboard")
}

func TestRun_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	var out bytes.Buffer
	err := Run(ctx, RunOptions{
		Config: fastConfig(time.Hour),
		Logger: logging.NewNop(),
		Out:    &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), ">>> Interrupted at 100%.")
	assert.NotContains(t, out.String(), "hidden")
}

func TestLoadCatalog_Default(t *testing.T) {
	cfg := config.Default()
	catalog, timing, err := LoadCatalog(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 6, catalog.Len())
	assert.Equal(t, cfg.Timing, timing)
}

func TestProbes(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, Probes(cfg))

	cfg.Backend.URL = "https://pos.example.co"
	cfg.Backend.Key = "anon"
	assert.Len(t, Probes(cfg), 2)

	cfg.Backend.Probe = false
	assert.Nil(t, Probes(cfg))
}

func TestCheckBackend(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	_, err := CheckBackend(ctx, config.Default(), logging.NewNop(), &out)
	assert.ErrorIs(t, err, probe.ErrNotConfigured)

	cfg := config.Default()
	cfg.Backend.URL = fakeBackend(t).URL
	cfg.Backend.Key = "anon"

	report, err := CheckBackend(ctx, cfg, logging.NewNop(), &out)
	assert.ErrorIs(t, err, ErrProbesFailed)
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].OK)
	assert.False(t, report.Results[1].OK)
	assert.Contains(t, out.String(), ">>> service: ok")
	assert.Contains(t, out.String(), ">>> policies: failed.")
}

func TestNewStack_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		locker bool
	}{
		{"memory", func(c *config.Config) {}, false},
		{"sqlite", func(c *config.Config) {
			c.Store.Driver = config.StoreSQLite
			c.Store.SQLitePath = filepath.Join(t.TempDir(), "splash.db")
		}, false},
		{"redis", func(c *config.Config) {
			c.Store.Driver = config.StoreRedis
			c.Store.RedisAddr = mr.Addr()
			c.Store.Lock = true
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastConfig(20 * time.Millisecond)
			tt.mutate(&cfg)

			stack, err := NewStack(cfg, logging.NewNop())
			require.NoError(t, err)
			defer stack.Close()
			assert.Equal(t, tt.locker, stack.Locker != nil)

			ctx := context.Background()
			_, err = stack.Manager.Start(ctx, "pos-"+tt.name)
			require.NoError(t, err)
			require.Eventually(t, func() bool {
				snap, err := stack.Store.Load(ctx, "pos-"+tt.name)
				return err == nil && !snap.Visible
			}, 2*time.Second, 5*time.Millisecond)
		})
	}
}

func TestNewStack_RedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.StoreRedis
	cfg.Store.RedisAddr = "127.0.0.1:1"

	_, err := NewStack(cfg, nil)
	assert.Error(t, err)
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	cfg := fastConfig(time.Hour)
	cfg.Server.Metrics = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServeOptions{Config: cfg, Logger: logging.NewNop(), Listener: ln})
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(base+"/sessions", "application/json", strings.NewReader(`{"session_id":"till-1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(base + "/probes")
	require.NoError(t, err)
	var report probe.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	resp.Body.Close()

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "splash_active_sessions 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	err := ServeMCP(context.Background(), MCPOptions{
		Config:    config.Default(),
		Logger:    logging.NewNop(),
		Transport: "pigeon",
	})
	assert.ErrorContains(t, err, `unknown transport "pigeon"`)
}
