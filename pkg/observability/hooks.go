package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/causalgraph/pkg/domain"
)

// Hooks returns lifecycle hooks that log every event and update c.
// A nil collector only logs.
func Hooks(logger *slog.Logger, c *Collector) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageStart: func(ctx context.Context, e *domain.StageEvent) {
			logger.DebugContext(ctx, "stage_start", "analysis", e.Analysis, "stage", e.Stage)
		},
		OnStageEnd: func(ctx context.Context, e *domain.StageEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "stage_failed", "analysis", e.Analysis, "stage", e.Stage, "error", e.Err)
			} else {
				logger.InfoContext(ctx, "stage_end", "analysis", e.Analysis, "stage", e.Stage, "duration", e.Duration)
			}
			if c != nil {
				c.StageDuration.WithLabelValues(string(e.Stage), status(e.Err)).Observe(e.Duration.Seconds())
			}
		},
		OnGraphBuilt: func(ctx context.Context, e *domain.GraphEvent) {
			logger.InfoContext(ctx, "graph_built", "name", e.Name, "nodes", e.Nodes, "edges", e.Edges)
			if c != nil {
				c.GraphsBuilt.Inc()
				c.GraphEdges.Observe(float64(e.Edges))
			}
		},
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			logger.DebugContext(ctx, "tool_call", "tool_name", e.ToolName)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			logger.DebugContext(ctx, "tool_return", "tool_name", e.ToolName, "is_error", e.IsError)
			if c != nil {
				st := "ok"
				if e.IsError {
					st = "error"
				}
				c.ToolRuns.WithLabelValues(e.ToolName, st).Inc()
			}
		},
	}
}

// Compose merges several hook sets. Callbacks run in argument order.
func Compose(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnStageStart = chain(out.OnStageStart, h.OnStageStart)
		out.OnStageEnd = chain(out.OnStageEnd, h.OnStageEnd)
		out.OnGraphBuilt = chain(out.OnGraphBuilt, h.OnGraphBuilt)
		out.OnToolCall = chain(out.OnToolCall, h.OnToolCall)
		out.OnToolReturn = chain(out.OnToolReturn, h.OnToolReturn)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
