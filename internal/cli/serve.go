package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/aretw0/splash/internal/config"
	httpAdapter "github.com/aretw0/splash/pkg/adapters/http"
	"github.com/aretw0/splash/pkg/login"
	"github.com/aretw0/splash/pkg/probe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	Config config.Config
	Logger *slog.Logger

	// Listener overrides Config.Server.Addr.
	Listener net.Listener
}

// probeCache holds the startup probe report once it is available.
type probeCache struct {
	mu     sync.RWMutex
	report *probe.Report
}

func (c *probeCache) set(r probe.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = &r
}

func (c *probeCache) get() (probe.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil {
		return probe.Report{}, false
	}
	return *c.report, true
}

// NewServeHandler builds the HTTP handler for a wired stack.
func NewServeHandler(stack *Stack, probes httpAdapter.ProbeSource) http.Handler {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(stack.Logger),
		httpAdapter.WithAuthenticator(login.New(login.WithDelay(stack.Config.Login.Delay))),
		httpAdapter.WithProbes(probes),
		httpAdapter.WithGraph(stack.Catalog, stack.Timing.FaultStep),
	}
	if stack.Config.Server.Metrics {
		opts = append(opts, httpAdapter.WithMetricsHandler(
			promhttp.HandlerFor(stack.Registry, promhttp.HandlerOpts{}),
		))
	}
	return httpAdapter.NewHandler(stack.Manager, opts...)
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(opts.Config); err != nil {
			return err
		}
	}

	stack, err := NewStack(opts.Config, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	cache := &probeCache{}
	srv := &http.Server{
		Addr:    opts.Config.Server.Addr,
		Handler: NewServeHandler(stack, cache.get),
	}

	ln := opts.Listener
	if ln == nil {
		if ln, err = net.Listen("tcp", srv.Addr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cache.set(probe.RunStartup(gctx, logger, Probes(opts.Config)...))
		return nil
	})
	g.Go(func() error {
		logger.Info("splash server listening", "addr", ln.Addr().String(), "store", opts.Config.Store.Driver)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		// Ending live sessions closes their event streams.
		stack.Manager.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", opts.Config.Server.ShutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	})

	err = g.Wait()
	logger.Info("splash server stopped")
	return err
}
