package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
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
	"github.com/aretw0/causalgraph/pkg/observability"
	"github.com/aretw0/causalgraph/pkg/ports"
	"github.com/aretw0/causalgraph/pkg/topology"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// Server exposes graph building, storage and normalization over HTTP.
type Server struct {
	Store     ports.GraphStore
	Graphs    *catalog.Catalog
	Streams   *StreamManager
	Metrics   *observability.Collector
	Threshold float64
	Logger    *slog.Logger

	locker  ports.DistributedLocker
	lockTTL time.Duration
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics records request and pipeline metrics and serves them on /metrics.
func WithMetrics(c *observability.Collector) Option {
	return func(s *Server) {
		s.Metrics = c
	}
}

// WithThreshold sets the default edge threshold for POST /graphs.
func WithThreshold(threshold float64) Option {
	return func(s *Server) {
		s.Threshold = threshold
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithLocker serializes graph replacement across servers sharing the store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Server) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// NewHandler creates the HTTP handler backed by store.
func NewHandler(store ports.GraphStore, opts ...Option) http.Handler {
	s := &Server{
		Store:     store,
		Threshold: domain.DefaultThreshold,
		Logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.Logger)
	catalogOpts := []catalog.Option{catalog.WithLogger(s.Logger)}
	if s.locker != nil {
		catalogOpts = append(catalogOpts, catalog.WithLocker(s.locker, s.lockTTL))
	}
	s.Graphs = catalog.New(store, catalogOpts...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.Metrics != nil {
		r.Use(s.instrument)
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/normalize", s.Normalize)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.ListGraphs)
		r.Post("/", s.CreateGraph)
		r.Get("/{name}", s.GetGraph)
		r.Delete("/{name}", s.DeleteGraph)
	})
	return r
}

// instrument records every request under its route pattern, not its raw path.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.Metrics.RecordHTTP(r.Method, route, code, time.Since(start))
	})
}

// CreateGraphRequest is the body of POST /graphs.
type CreateGraphRequest struct {
	Name      string        `json:"name" validate:"required,max=200,excludesall=/\\"`
	Matrix    domain.Matrix `json:"matrix" validate:"required"`
	Labels    []string      `json:"labels,omitempty" validate:"omitempty,dive,required"`
	Threshold *float64      `json:"threshold,omitempty" validate:"omitempty,gte=0"`
}

// GraphResponse describes a stored graph.
type GraphResponse struct {
	Name      string             `json:"name"`
	Nodes     int                `json:"nodes"`
	Edges     int                `json:"edges"`
	DOT       string             `json:"dot"`
	Target    string             `json:"target"`
	Structure topology.Structure `json:"structure"`
	Diff      *domain.GraphDiff  `json:"diff,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// CreateGraph handles POST /graphs: builds a graph from a matrix and stores it.
// Replacing an existing graph broadcasts the difference to /events subscribers.
func (s *Server) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var body CreateGraphRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := validateRequest(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	threshold := s.Threshold
	if body.Threshold != nil {
		threshold = *body.Threshold
	}
	opts := []adjacency.Option{adjacency.WithName(body.Name), adjacency.WithThreshold(threshold)}
	if len(body.Labels) > 0 {
		opts = append(opts, adjacency.WithLabels(body.Labels...))
	}

	g, err := adjacency.Build(body.Matrix, opts...)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.GraphsBuilt.Inc()
		s.Metrics.GraphEdges.Observe(float64(len(g.Edges)))
	}

	prev, err := s.Graphs.Replace(r.Context(), body.Name, g)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := describe(body.Name, g)
	resp.Diff = domain.Diff(prev, g)
	if resp.Diff != nil {
		if data, err := json.Marshal(resp.Diff); err == nil {
			s.Streams.Broadcast(body.Name, string(data))
		}
	}

	status := http.StatusCreated
	if prev != nil {
		status = http.StatusOK
	}
	s.writeJSON(w, status, resp)
}

// ListGraphs handles GET /graphs.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	names, err := s.Graphs.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"graphs": names})
}

// GetGraph handles GET /graphs/{name}?format=dot|target|mermaid|json.
// Mermaid output accepts treatment and outcome query parameters.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g, err := s.Graphs.Load(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrGraphNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = graph.FormatJSON
	}
	var overlay *graph.GraphOverlay
	if q.Has("treatment") || q.Has("outcome") {
		overlay = &graph.GraphOverlay{Treatment: q.Get("treatment"), Outcome: q.Get("outcome")}
	}

	out, ctype, err := graph.Format(g, format, overlay)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", ctype)
	_, _ = io.WriteString(w, out)
}

// DeleteGraph handles DELETE /graphs/{name}.
func (s *Server) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.Graphs.Delete(r.Context(), name); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Normalize handles POST /normalize: the body is a graph description and the
// response is its single-line form.
func (s *Server) Normalize(w http.ResponseWriter, r *http.Request) {
	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	out, err := dot.Normalize(string(src))
	if s.Metrics != nil {
		s.Metrics.RecordNormalize(err)
	}
	if err != nil {
		var se *dot.SyntaxError
		if errors.As(err, &se) {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: se.Msg, Line: se.Line, Column: se.Column})
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.Store.(interface{ Ping(ctx context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "causalgraph-http",
		"version": strings.TrimSpace(causalgraph.Version),
	})
}

// SubscribeEvents handles GET /events (SSE). Each message is the JSON
// GraphDiff of a replaced graph. ?graph=name narrows the stream to one graph.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	name := r.URL.Query().Get("graph")
	if name == "" {
		name = allGraphs
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(name)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected", "graph", name)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func describe(name string, g *domain.Graph) GraphResponse {
	return GraphResponse{
		Name:      name,
		Nodes:     len(g.Nodes),
		Edges:     len(g.Edges),
		DOT:       dot.Render(g),
		Target:    dot.RenderTarget(g),
		Structure: topology.Analyze(g),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
	} else {
		s.Logger.Debug("request rejected", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
