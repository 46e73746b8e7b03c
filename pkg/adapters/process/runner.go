package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/causalgraph/pkg/domain"
)

// ArgPrefix prefixes the environment variables that carry tool arguments.
const ArgPrefix = "CAUSALGRAPH_ARG_"

var (
	// ErrToolNotRegistered is returned when a tool name is not in the allow-list.
	ErrToolNotRegistered = errors.New("process tool not registered")
	// ErrToolFailed is returned when a tool exits with an error.
	ErrToolFailed = errors.New("process tool failed")
	// ErrUnexpectedOutput is returned when a tool prints something other than the expected JSON.
	ErrUnexpectedOutput = errors.New("unexpected tool output")
)

// Runner executes local processes.
// It follows a Strict Registry pattern for security (Allow-Listing).
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string // Fixed args; tool arguments travel in the environment
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			r.registry[name] = RegisteredProcess{
				Command: tool.Command,
				Args:    tool.Args,
				Env:     tool.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithHooks registers the tool call callbacks.
func WithHooks(hooks domain.LifecycleHooks) RunnerOption {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithLogger sets the logger used to trace tool runs.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted script/command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// Tools returns the registered tool names, sorted.
func (r *Runner) Tools() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the registered tool named by toolCall.Name.
// Process failures are reported in the ToolResult, not as a Go error.
func (r *Runner) Execute(ctx context.Context, toolCall domain.ToolCall) (domain.ToolResult, error) {
	proc, ok := r.registry[toolCall.Name]
	if !ok {
		return domain.ToolResult{
			ID:      toolCall.ID,
			IsError: true,
			Error:   fmt.Sprintf("%s: %s", ErrToolNotRegistered, toolCall.Name),
		}, nil
	}

	if r.hooks.OnToolCall != nil {
		r.hooks.OnToolCall(ctx, &domain.ToolEvent{
			Timestamp: time.Now(),
			ToolName:  toolCall.Name,
			Input:     toolCall.Args,
		})
	}

	// Arguments are never passed as command flags. They travel as environment
	// variables, which rules out flag injection.
	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), environment(proc.Env, toolCall.Args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running tool", "tool", toolCall.Name, "command", proc.Command)
	start := time.Now()
	err := cmd.Run()

	result := domain.ToolResult{
		ID: toolCall.ID,
	}

	if err != nil {
		result.IsError = true
		result.Error = fmt.Sprintf("execution failed: %v. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	} else {
		result.Result = parseOutput(stdout.String())
	}
	r.logger.Debug("tool returned", "tool", toolCall.Name, "duration", time.Since(start), "is_error", result.IsError)

	if r.hooks.OnToolReturn != nil {
		r.hooks.OnToolReturn(ctx, &domain.ToolEvent{
			Timestamp: time.Now(),
			ToolName:  toolCall.Name,
			Output:    result.Result,
			IsError:   result.IsError,
		})
	}

	return result, nil
}

func environment(fixed map[string]string, args map[string]any) []string {
	env := make([]string, 0, len(fixed)+len(args))
	for k, v := range fixed {
		env = append(env, k+"="+v)
	}
	for k, v := range args {
		// Primitives are printed as is, complex values as JSON.
		var val string
		switch v.(type) {
		case string, int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		case nil:
			val = ""
		default:
			if inJSON, err := json.Marshal(v); err == nil {
				val = string(inJSON)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, ArgPrefix+strings.ToUpper(k)+"="+val)
	}
	return env
}

// parseOutput decodes JSON output and falls back to the trimmed text.
func parseOutput(output string) any {
	trimmed := strings.TrimSpace(output)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var jsonResult any
		if err := json.Unmarshal([]byte(trimmed), &jsonResult); err == nil {
			return jsonResult
		}
	}
	return trimmed
}
