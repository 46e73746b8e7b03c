package domain

import (
	"context"
	"time"
)

// Stage names one step of an analysis run.
type Stage string

const (
	StageDiscover Stage = "discover"
	StageBuild    Stage = "build"
	StageStore    Stage = "store"
	StageEstimate Stage = "estimate"
)

// StageEvent is emitted when an analysis stage starts or finishes.
type StageEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Analysis  string        `json:"analysis"`
	Stage     Stage         `json:"stage"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// ToolEvent represents an external tool execution.
type ToolEvent struct {
	Timestamp time.Time `json:"timestamp"`
	ToolName  string    `json:"tool_name"`
	Input     any       `json:"input,omitempty"`
	Output    any       `json:"output,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
}

// GraphEvent is emitted after a graph has been built.
type GraphEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
}

// LifecycleHooks defines callbacks for pipeline observability.
type LifecycleHooks struct {
	OnStageStart func(context.Context, *StageEvent)
	OnStageEnd   func(context.Context, *StageEvent)
	OnGraphBuilt func(context.Context, *GraphEvent)
	OnToolCall   func(context.Context, *ToolEvent)
	OnToolReturn func(context.Context, *ToolEvent)
}
