package process

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

var callSeq atomic.Uint64

// Discoverer runs a registered discovery tool.
// The tool receives CAUSALGRAPH_ARG_DATASET, _ALGORITHM, _LABELS and _SEED and
// prints {"labels": [...], "matrix": [[...]]}.
type Discoverer struct {
	runner *Runner
	tool   string
}

// NewDiscoverer binds a tool name of r to the ports.Discoverer interface.
func NewDiscoverer(r *Runner, tool string) *Discoverer {
	return &Discoverer{runner: r, tool: tool}
}

// Discover implements ports.Discoverer.
func (d *Discoverer) Discover(ctx context.Context, req domain.DiscoveryRequest) (*domain.Discovery, error) {
	args := map[string]any{
		"dataset":   req.Dataset,
		"algorithm": req.Algorithm,
		"seed":      req.Seed,
	}
	if len(req.Labels) > 0 {
		args["labels"] = req.Labels
	}

	var out domain.Discovery
	if err := d.runner.call(ctx, d.tool, args, &out); err != nil {
		return nil, err
	}
	if out.Algorithm == "" {
		out.Algorithm = req.Algorithm
	}
	if len(out.Matrix) == 0 {
		return nil, fmt.Errorf("%s: missing matrix: %w", d.tool, ErrUnexpectedOutput)
	}
	return &out, nil
}

// Estimator runs a registered estimation tool.
// The tool receives the EstimateRequest fields as CAUSALGRAPH_ARG_* variables,
// the graph in CAUSALGRAPH_ARG_GRAPH, and prints the estimate as JSON.
type Estimator struct {
	runner *Runner
	tool   string
}

// NewEstimator binds a tool name of r to the ports.Estimator interface.
func NewEstimator(r *Runner, tool string) *Estimator {
	return &Estimator{runner: r, tool: tool}
}

// Estimate implements ports.Estimator.
func (e *Estimator) Estimate(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error) {
	args := map[string]any{
		"dataset":         req.Dataset,
		"treatment":       req.Treatment,
		"outcome":         req.Outcome,
		"graph":           req.Graph,
		"method":          req.Method,
		"control_value":   req.ControlValue,
		"treatment_value": req.TreatmentValue,
		"seed":            req.Seed,
	}

	var out domain.Estimate
	if err := e.runner.call(ctx, e.tool, args, &out); err != nil {
		return nil, err
	}
	if out.Method == "" {
		out.Method = req.Method
	}
	return &out, nil
}

// call executes tool and decodes its JSON object output into out.
func (r *Runner) call(ctx context.Context, tool string, args map[string]any, out any) error {
	res, err := r.Execute(ctx, domain.ToolCall{
		ID:   tool + "-" + strconv.FormatUint(callSeq.Add(1), 10),
		Name: tool,
		Args: args,
	})
	if err != nil {
		return err
	}
	if res.IsError {
		if _, ok := r.registry[tool]; !ok {
			return fmt.Errorf("%q: %w", tool, ErrToolNotRegistered)
		}
		return fmt.Errorf("%s: %w: %s", tool, ErrToolFailed, res.Error)
	}

	obj, ok := res.Result.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: expected a JSON object, got %q: %w", tool, fmt.Sprint(res.Result), ErrUnexpectedOutput)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(obj); err != nil {
		return fmt.Errorf("%s: %w: %v", tool, ErrUnexpectedOutput, err)
	}
	return nil
}
