package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/splash/internal/config"
	"github.com/aretw0/splash/pkg/adapters/mcp"
)

// MCPOptions configures the mcp command.
type MCPOptions struct {
	Config    config.Config
	Logger    *slog.Logger
	Transport string
	Port      int
}

// ServeMCP exposes the session manager as MCP tools over stdio or SSE.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	if opts.Logger == nil {
		logger, err := NewLogger(opts.Config)
		if err != nil {
			return err
		}
		opts.Logger = logger
	}

	stack, err := NewStack(opts.Config, opts.Logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	srv := mcp.NewServer(stack.Manager,
		mcp.WithCatalog(stack.Catalog),
		mcp.WithLogger(opts.Logger),
	)

	switch opts.Transport {
	case "stdio":
		opts.Logger.Info("starting splash mcp server (stdio)")
		return srv.ServeStdio()
	case "sse":
		opts.Logger.Info("starting splash mcp server (sse)", "port", opts.Port)
		return srv.ServeSSE(ctx, opts.Port)
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", opts.Transport)
	}
}
