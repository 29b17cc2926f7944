// Package probe checks the hosted backend once at startup.
//
// Results are informational: they are logged and reported, never fed into a
// splash controller.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
)

// DefaultPolicyTable is the table read by the row-level policy probe.
const DefaultPolicyTable = "products"

// DefaultTimeout bounds a single check when the context carries no deadline.
const DefaultTimeout = 5 * time.Second

// deniedCodes are the PostgREST error codes for a read refused by grants,
// row-level policies or the JWT of the anonymous key.
var deniedCodes = []string{"42501", "PGRST301", "PGRST302"}

// Option configures a probe.
type Option func(*backend)

// WithTransport overrides the round tripper under the REST client.
func WithTransport(rt http.RoundTripper) Option {
	return func(b *backend) {
		b.transport = rt
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(b *backend) {
		b.timeout = d
	}
}

// backend holds what both probes share: where the REST API lives and how to authenticate.
type backend struct {
	baseURL   string
	key       string
	transport http.RoundTripper
	timeout   time.Duration
}

func newBackend(baseURL, key string, opts []Option) backend {
	b := backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// client builds a PostgREST client authenticated with the anonymous key.
func (b backend) client() (*postgrest.Client, error) {
	if b.baseURL == "" || b.key == "" {
		return nil, ErrNotConfigured
	}
	c := postgrest.NewClient(b.baseURL+"/rest/v1", "", nil)
	if c.ClientError != nil {
		return nil, fmt.Errorf("build client: %w", c.ClientError)
	}
	c.SetApiKey(b.key).SetAuthToken(b.key)
	if b.transport != nil {
		c.Transport.Parent = b.transport
	}
	return c, nil
}

// run executes call bounded by ctx and the probe timeout. The REST client has
// no context support, so an abandoned call finishes in the background.
func (b backend) run(ctx context.Context, call func() error) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- call() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Service checks that the backend REST endpoint is reachable with the anonymous key.
type Service struct {
	backend
}

// NewService creates the connectivity probe.
func NewService(baseURL, key string, opts ...Option) *Service {
	return &Service{backend: newBackend(baseURL, key, opts)}
}

// Name implements ports.Probe.
func (s *Service) Name() string { return "service" }

// Check implements ports.Probe. A 200 answer on the REST root counts as
// connected; any other answer is a failed check, a transport failure an error.
func (s *Service) Check(ctx context.Context) (bool, error) {
	c, err := s.client()
	if err != nil {
		return false, err
	}

	var ok bool
	err = s.run(ctx, func() error {
		ok = c.Ping()
		if !ok && isTransportError(c.ClientError) {
			return fmt.Errorf("ping backend: %w", c.ClientError)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Hint implements Hinter.
func (s *Service) Hint() string {
	return "Failed to connect to the backend. Please check your credentials in the .env file."
}

// Policy checks that row-level policies let the anonymous key read a table.
type Policy struct {
	backend
	table string
}

// NewPolicy creates the row-level policy probe for table (DefaultPolicyTable when empty).
func NewPolicy(baseURL, key, table string, opts ...Option) *Policy {
	if table == "" {
		table = DefaultPolicyTable
	}
	return &Policy{backend: newBackend(baseURL, key, opts), table: table}
}

// Name implements ports.Probe.
func (p *Policy) Name() string { return "policies" }

// Check implements ports.Probe. A permission or JWT error from PostgREST
// means the policies are missing.
func (p *Policy) Check(ctx context.Context) (bool, error) {
	c, err := p.client()
	if err != nil {
		return false, err
	}

	err = p.run(ctx, func() error {
		_, _, err := c.From(p.table).Select("*", "", false).Limit(1, "").Execute()
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case isDenied(err):
		return false, nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), isTransportError(err):
		return false, fmt.Errorf("read %s: %w", p.table, err)
	default:
		return false, fmt.Errorf("%w: %s answered %v", ErrUnexpectedStatus, p.table, err)
	}
}

// Hint implements Hinter.
func (p *Policy) Hint() string {
	return "Row-level policies need to be configured. Please run the FIX_RLS_POLICIES.sql script in your SQL editor."
}

// isDenied matches the "(code) message" errors the client builds from
// PostgREST error bodies.
func isDenied(err error) bool {
	msg := err.Error()
	for _, code := range deniedCodes {
		if strings.HasPrefix(msg, "("+code+")") {
			return true
		}
	}
	return false
}

func isTransportError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
