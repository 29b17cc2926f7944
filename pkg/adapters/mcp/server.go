package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/splash"
	"github.com/aretw0/splash/internal/logging"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// ProgressResponse is the structured result of every session tool.
type ProgressResponse struct {
	SessionID    string        `json:"session_id" jsonschema_description:"The splash session ID"`
	Visible      bool          `json:"visible" jsonschema_description:"Whether the splash is still shown"`
	Percent      float64       `json:"percent" jsonschema_description:"Progress percentage in [0,100]"`
	CurrentIndex int           `json:"current_index" jsonschema_description:"Number of steps visited"`
	ErrorMessage string        `json:"error_message,omitempty" jsonschema_description:"Transient fault banner, if any"`
	Steps        []domain.Step `json:"steps" jsonschema_description:"Steps with their completed/errored flags"`
}

// Sessions is the part of the session manager exposed as tools.
type Sessions interface {
	Start(ctx context.Context, sessionID string) (domain.Snapshot, error)
	Snapshot(ctx context.Context, sessionID string) (domain.Snapshot, error)
	Dismiss(ctx context.Context, sessionID string) error
	Dispose(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// Server exposes splash sessions as an MCP server.
type Server struct {
	sessions  Sessions
	catalog   domain.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithCatalog sets the catalog published as the splash://catalog resource.
func WithCatalog(c domain.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		catalog:   domain.DefaultCatalog(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("splash-mcp", splash.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_splash
	s.mcpServer.AddTool(mcp.NewTool("start_splash",
		mcp.WithDescription("Start a staged-loading splash session. Omit session_id to get a generated one."),
		mcp.WithString("session_id", mcp.Description("Session ID to start (optional)")),
		mcp.WithOutputSchema[ProgressResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	// TOOL: get_progress
	s.mcpServer.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Get the current progress of a splash session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ProgressResponse](),
	), mcp.NewStructuredToolHandler(s.handleProgress))

	// TOOL: dismiss_splash
	s.mcpServer.AddTool(mcp.NewTool("dismiss_splash",
		mcp.WithDescription("Hide the splash before its display timeout."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ProgressResponse](),
	), mcp.NewStructuredToolHandler(s.handleDismiss))

	// TOOL: dispose_splash
	s.mcpServer.AddTool(mcp.NewTool("dispose_splash",
		mcp.WithDescription("Cancel every pending step of a splash session, freezing its progress."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[ProgressResponse](),
	), mcp.NewStructuredToolHandler(s.handleDispose))

	// TOOL: list_sessions
	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List live and stored splash session IDs."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ProgressResponse, error) {
	id, _ := args["session_id"].(string)
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	snap, err := s.sessions.Start(ctx, id)
	if err != nil {
		return ProgressResponse{}, fmt.Errorf("start failed: %w", err)
	}
	s.logger.Debug("mcp: splash started", "session_id", id)
	return toResponse(snap), nil
}

func (s *Server) handleProgress(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ProgressResponse, error) {
	id, err := sessionID(args)
	if err != nil {
		return ProgressResponse{}, err
	}
	snap, err := s.sessions.Snapshot(ctx, id)
	if err != nil {
		return ProgressResponse{}, fmt.Errorf("get progress failed: %w", err)
	}
	return toResponse(snap), nil
}

func (s *Server) handleDismiss(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ProgressResponse, error) {
	return s.endWith(ctx, args, "dismiss", s.sessions.Dismiss)
}

func (s *Server) handleDispose(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ProgressResponse, error) {
	return s.endWith(ctx, args, "dispose", s.sessions.Dispose)
}

func (s *Server) endWith(ctx context.Context, args map[string]interface{}, op string, fn func(context.Context, string) error) (ProgressResponse, error) {
	id, err := sessionID(args)
	if err != nil {
		return ProgressResponse{}, err
	}
	if err := fn(ctx, id); err != nil {
		return ProgressResponse{}, fmt.Errorf("%s failed: %w", op, err)
	}
	snap, err := s.sessions.Snapshot(ctx, id)
	if err != nil {
		return ProgressResponse{}, fmt.Errorf("%s failed: %w", op, err)
	}
	return toResponse(snap), nil
}

func sessionID(args map[string]interface{}) (string, error) {
	id, _ := args["session_id"].(string)
	if strings.TrimSpace(id) == "" {
		return "", errors.New("session_id is required")
	}
	return id, nil
}

func toResponse(snap domain.Snapshot) ProgressResponse {
	p := domain.ProgressOf(snap)
	return ProgressResponse{
		SessionID:    snap.ID,
		Visible:      snap.Visible,
		Percent:      p.Percent,
		CurrentIndex: snap.CurrentIndex,
		ErrorMessage: snap.ErrorMessage,
		Steps:        p.Steps,
	}
}

func (s *Server) registerResources() {
	// EXPOSE: splash://catalog
	s.mcpServer.AddResource(mcp.NewResource("splash://catalog", "Step Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.catalog.Descriptors())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "splash://catalog",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
