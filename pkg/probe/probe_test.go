package probe_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/splash/pkg/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anonKey = "anon-key"

// postgrestError is the JSON error body PostgREST sends with 4xx and 5xx answers.
func postgrestError(code, message string) string {
	return `{"code":"` + code + `","details":null,"hint":null,"message":"` + message + `"}`
}

// fakeBackend answers the REST root with 200 and the table with policyStatus and policyBody.
func fakeBackend(t *testing.T, policyStatus int, policyBody string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("apikey") != anonKey || r.Header.Get("Authorization") != "Bearer "+anonKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(postgrestError("PGRST301", "JWSError JWSInvalidSignature")))
			return
		}
		switch r.URL.Path {
		case "/rest/v1", "/rest/v1/":
			w.WriteHeader(http.StatusOK)
		case "/rest/v1/products":
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "*", r.URL.Query().Get("select"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			w.WriteHeader(policyStatus)
			_, _ = w.Write([]byte(policyBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestService(t *testing.T) {
	srv := fakeBackend(t, http.StatusOK, "[]")

	ok, err := probe.NewService(srv.URL+"/", anonKey).Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = probe.NewService(srv.URL, "wrong").Check(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ok, err := probe.NewService(url, anonKey).Check(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNotConfigured(t *testing.T) {
	_, err := probe.NewService("", "").Check(context.Background())
	assert.ErrorIs(t, err, probe.ErrNotConfigured)

	_, err = probe.NewPolicy("http://localhost", "", "").Check(context.Background())
	assert.ErrorIs(t, err, probe.ErrNotConfigured)
}

func TestPolicy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr error
	}{
		{name: "readable", status: http.StatusOK, body: "[]", want: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: postgrestError("42501", "permission denied for table products")},
		{name: "forbidden", status: http.StatusForbidden, body: postgrestError("42501", "permission denied for table products")},
		{name: "expired jwt", status: http.StatusUnauthorized, body: postgrestError("PGRST301", "JWT expired")},
		{name: "missing table", status: http.StatusNotFound, body: postgrestError("42P01", "relation does not exist"), wantErr: probe.ErrUnexpectedStatus},
		{name: "server error", status: http.StatusInternalServerError, body: "upstream down", wantErr: probe.ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeBackend(t, tt.status, tt.body)
			ok, err := probe.NewPolicy(srv.URL, anonKey, "").Check(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestPolicy_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ok, err := probe.NewPolicy(srv.URL, anonKey, "", probe.WithTimeout(50*time.Millisecond)).Check(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ok)
}

func TestWithTransport(t *testing.T) {
	srv := fakeBackend(t, http.StatusOK, "[]")

	var calls atomic.Int32
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return http.DefaultTransport.RoundTrip(r)
	})

	ok, err := probe.NewPolicy(srv.URL, anonKey, "", probe.WithTransport(rt)).Check(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), calls.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestRunStartup(t *testing.T) {
	srv := fakeBackend(t, http.StatusForbidden, postgrestError("42501", "permission denied for table products"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	report := probe.RunStartup(context.Background(), logger,
		probe.NewService(srv.URL, anonKey),
		probe.NewPolicy(srv.URL, anonKey, ""),
	)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "service", report.Results[0].Name)
	assert.True(t, report.Results[0].OK)
	assert.Empty(t, report.Results[0].Hint)

	assert.Equal(t, "policies", report.Results[1].Name)
	assert.False(t, report.Results[1].OK)
	assert.Empty(t, report.Results[1].Error)
	assert.Contains(t, report.Results[1].Hint, "FIX_RLS_POLICIES.sql")
	assert.False(t, report.OK())

	out := buf.String()
	assert.Contains(t, out, "startup probe passed")
	assert.Contains(t, out, "startup probe failed")
}
