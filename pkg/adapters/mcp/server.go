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

	"github.com/aretw0/causalgraph"
	"github.com/aretw0/causalgraph/internal/presentation/graph"
	"github.com/aretw0/causalgraph/pkg/adjacency"
	"github.com/aretw0/causalgraph/pkg/catalog"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/dot"
	"github.com/aretw0/causalgraph/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

const graphsURI = "causalgraph://graphs"

// BuildArgs are the arguments of the build_graph tool.
type BuildArgs struct {
	Matrix    domain.Matrix `mapstructure:"matrix"`
	Labels    []string      `mapstructure:"labels"`
	Threshold *float64      `mapstructure:"threshold"`
	Name      string        `mapstructure:"name"`
	Format    string        `mapstructure:"format"`
}

// Server exposes graph building and normalization as MCP tools.
type Server struct {
	store     *catalog.Catalog
	threshold float64
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithThreshold sets the default edge threshold of build_graph.
func WithThreshold(threshold float64) Option {
	return func(s *Server) {
		s.threshold = threshold
	}
}

// WithLogger sets the server logger. Stdio transports must log to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance backed by store.
func NewServer(store ports.GraphStore, opts ...Option) *Server {
	s := &Server{
		threshold: domain.DefaultThreshold,
		logger:    slog.New(slog.DiscardHandler),
		mcpServer: server.NewMCPServer("causalgraph-mcp", strings.TrimSpace(causalgraph.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = catalog.New(store, catalog.WithLogger(s.logger))
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	formatDesc := mcp.Description("Output format: dot, target, mermaid or json")

	s.mcpServer.AddTool(mcp.NewTool("build_graph",
		mcp.WithDescription("Build a causal graph from a weighted adjacency matrix. Entry [r][c] is the edge from variable c to variable r; entries with absolute value at or below the threshold are ignored."),
		mcp.WithArray("matrix", mcp.Required(),
			mcp.Description("Square matrix of coefficients, one array per row"),
			mcp.Items(map[string]any{"type": "array", "items": map[string]any{"type": "number"}}),
		),
		mcp.WithArray("labels", mcp.Description("Variable names, one per row (default x0, x1, ...)"), mcp.WithStringItems()),
		mcp.WithNumber("threshold", mcp.Description("Edge threshold (default 0.01)")),
		mcp.WithString("name", mcp.Description("Store the graph under this name")),
		mcp.WithString("format", formatDesc),
	), s.handleBuildGraph)

	s.mcpServer.AddTool(mcp.NewTool("normalize_graph",
		mcp.WithDescription("Convert a DOT graph description to the single-line dialect read by effect estimation tools."),
		mcp.WithString("dot", mcp.Required(), mcp.Description("Graph description in DOT")),
	), s.handleNormalize)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a stored graph."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Graph name")),
		mcp.WithString("format", formatDesc),
	), s.handleGetGraph)

	s.mcpServer.AddTool(mcp.NewTool("list_graphs",
		mcp.WithDescription("List the names of the stored graphs."),
	), s.handleListGraphs)
}

func (s *Server) handleBuildGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args BuildArgs
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &args,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(request.GetArguments()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	threshold := s.threshold
	if args.Threshold != nil {
		threshold = *args.Threshold
	}
	opts := []adjacency.Option{adjacency.WithName(args.Name), adjacency.WithThreshold(threshold)}
	if len(args.Labels) > 0 {
		opts = append(opts, adjacency.WithLabels(args.Labels...))
	}

	g, err := adjacency.Build(args.Matrix, opts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}

	if args.Name != "" {
		prev, err := s.store.Replace(ctx, args.Name, g)
		if err != nil {
			s.logger.Error("MCP build_graph: save failed", "graph", args.Name, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
		}
		s.logger.Info("MCP build_graph: stored", "graph", args.Name, "replaced", prev != nil, "edges", len(g.Edges))
	}

	return render(g, args.Format)
}

func (s *Server) handleNormalize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := request.RequireString("dot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := dot.Normalize(src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrGraphNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("graph %q not found", name)), nil
		}
		return nil, err
	}
	return render(g, request.GetString("format", graph.FormatDOT))
}

func (s *Server) handleListGraphs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	data, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphsURI, "Stored causal graphs",
		mcp.WithMIMEType("application/json"),
	), s.readGraphs)
}

func (s *Server) readGraphs(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	data, _ := json.Marshal(names)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      graphsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func render(g *domain.Graph, format string) (*mcp.CallToolResult, error) {
	if format == "" {
		format = graph.FormatDOT
	}
	out, _, err := graph.Format(g, format, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}
