package causalgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/causalgraph/pkg/adapters/memory"
	"github.com/aretw0/causalgraph/pkg/adjacency"
	"github.com/aretw0/causalgraph/pkg/config"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/dot"
	"github.com/aretw0/causalgraph/pkg/ports"
	"github.com/aretw0/causalgraph/pkg/topology"
)

var (
	// ErrNoDiscoverer is returned when a request carries no matrix and no Discoverer is configured.
	ErrNoDiscoverer = errors.New("no discoverer configured")
	// ErrMissingVariables is returned when estimation is requested without treatment or outcome.
	ErrMissingVariables = errors.New("treatment and outcome are required for estimation")
)

// Engine is the high-level entry point of the library.
// It chains discovery, graph building, normalization, storage and estimation.
type Engine struct {
	discoverer ports.Discoverer
	estimator  ports.Estimator
	store      ports.GraphStore
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	threshold  float64
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithDiscoverer sets the structure search backend.
func WithDiscoverer(d ports.Discoverer) Option {
	return func(e *Engine) {
		e.discoverer = d
	}
}

// WithEstimator sets the effect estimation backend. Without one, Analyze stops after storing the graph.
func WithEstimator(est ports.Estimator) Option {
	return func(e *Engine) {
		e.estimator = est
	}
}

// WithStore replaces the default in-memory graph store.
func WithStore(s ports.GraphStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker serializes analyses of the same name across engines sharing a store.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = l
		e.lockTTL = ttl
	}
}

// WithThreshold sets the default edge threshold. Requests may override it.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		threshold: domain.DefaultThreshold,
		lockTTL:   time.Minute,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}
	return eng
}

// Store returns the graph store the engine writes to.
func (e *Engine) Store() ports.GraphStore {
	return e.store
}

// AnalysisRequest describes one run of the pipeline.
type AnalysisRequest struct {
	Name      string
	Dataset   string
	Algorithm string
	Labels    []string

	// Matrix skips discovery when set.
	Matrix domain.Matrix

	// Threshold overrides the engine default when positive.
	Threshold float64

	Treatment      string
	Outcome        string
	Method         string
	ControlValue   float64
	TreatmentValue float64
	Seed           int64
}

// AnalysisResult holds every artefact produced by Analyze.
type AnalysisResult struct {
	Name      string            `json:"name"`
	Discovery *domain.Discovery `json:"discovery"`
	Graph     *domain.Graph     `json:"graph"`
	DOT       string            `json:"dot"`
	Target    string            `json:"target"`
	Estimate  *domain.Estimate  `json:"estimate,omitempty"`

	// Structure holds the causal order, or the cycles preventing one.
	Structure topology.Structure `json:"structure"`
}

// NewRequest maps a loaded configuration onto a request.
// A precomputed matrix file is not read here; callers load it into Matrix.
func NewRequest(cfg *config.Config) AnalysisRequest {
	return AnalysisRequest{
		Name:           cfg.Name,
		Dataset:        cfg.Dataset,
		Algorithm:      cfg.Discovery.Algorithm,
		Labels:         cfg.Labels,
		Threshold:      cfg.Threshold,
		Treatment:      cfg.Treatment,
		Outcome:        cfg.Outcome,
		Method:         cfg.Method,
		ControlValue:   cfg.ControlValue,
		TreatmentValue: cfg.TreatmentValue,
		Seed:           cfg.Seed,
	}
}

// Analyze runs the pipeline: discover, build, store, estimate.
// The estimator receives the graph in the single-line dialect.
func (e *Engine) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if e.estimator != nil && (req.Treatment == "" || req.Outcome == "") {
		return nil, ErrMissingVariables
	}
	if req.Method == "" {
		req.Method = domain.DefaultMethod
	}
	threshold := e.threshold
	if req.Threshold > 0 {
		threshold = req.Threshold
	}

	logger := e.logger.With("analysis", req.Name)

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, req.Name, e.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock analysis %q: %w", req.Name, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to release lock", "error", err)
			}
		}()
	}

	res := &AnalysisResult{Name: req.Name}

	err := e.stage(ctx, req.Name, domain.StageDiscover, func() error {
		if req.Matrix != nil {
			res.Discovery = &domain.Discovery{Algorithm: req.Algorithm, Labels: req.Labels, Matrix: req.Matrix}
			return nil
		}
		if e.discoverer == nil {
			return ErrNoDiscoverer
		}
		d, err := e.discoverer.Discover(ctx, domain.DiscoveryRequest{
			Dataset:   req.Dataset,
			Algorithm: req.Algorithm,
			Labels:    req.Labels,
			Seed:      req.Seed,
		})
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		res.Discovery = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, req.Name, domain.StageBuild, func() error {
		opts := []adjacency.Option{adjacency.WithName(req.Name), adjacency.WithThreshold(threshold)}
		if len(req.Labels) > 0 {
			opts = append(opts, adjacency.WithLabels(req.Labels...))
		}
		g, err := adjacency.FromDiscovery(res.Discovery, opts...)
		if err != nil {
			return fmt.Errorf("failed to build graph: %w", err)
		}
		for _, v := range []string{req.Treatment, req.Outcome} {
			if v != "" && !g.HasNode(v) {
				return fmt.Errorf("%q: %w", v, domain.ErrUnknownNode)
			}
		}

		res.Graph = g
		res.Structure = topology.Analyze(g)
		if !res.Structure.Acyclic() {
			logger.Warn("graph has cycles, backdoor adjustment assumes a DAG", "cycles", res.Structure.Cycles)
		}
		res.DOT = dot.Render(g)
		if res.Target, err = dot.Normalize(res.DOT); err != nil {
			return fmt.Errorf("failed to normalize graph: %w", err)
		}

		if e.hooks.OnGraphBuilt != nil {
			e.hooks.OnGraphBuilt(ctx, &domain.GraphEvent{
				Timestamp: time.Now(),
				Name:      req.Name,
				Nodes:     len(g.Nodes),
				Edges:     len(g.Edges),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = e.stage(ctx, req.Name, domain.StageStore, func() error {
		if err := e.store.Save(ctx, req.Name, res.Graph); err != nil {
			return fmt.Errorf("failed to store graph: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.estimator == nil {
		logger.Debug("no estimator configured, stopping after store")
		return res, nil
	}

	err = e.stage(ctx, req.Name, domain.StageEstimate, func() error {
		est, err := e.estimator.Estimate(ctx, domain.EstimateRequest{
			Dataset:        req.Dataset,
			Treatment:      req.Treatment,
			Outcome:        req.Outcome,
			Graph:          res.Target,
			Method:         req.Method,
			ControlValue:   req.ControlValue,
			TreatmentValue: req.TreatmentValue,
			Seed:           req.Seed,
		})
		if err != nil {
			return fmt.Errorf("estimation failed: %w", err)
		}
		res.Estimate = est
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// stage runs fn between the start and end hooks.
func (e *Engine) stage(ctx context.Context, analysis string, stage domain.Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if e.hooks.OnStageStart != nil {
		e.hooks.OnStageStart(ctx, &domain.StageEvent{Timestamp: start, Analysis: analysis, Stage: stage})
	}

	err := fn()

	if e.hooks.OnStageEnd != nil {
		e.hooks.OnStageEnd(ctx, &domain.StageEvent{
			Timestamp: time.Now(),
			Analysis:  analysis,
			Stage:     stage,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	return err
}
