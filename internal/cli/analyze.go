package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"

	"github.com/aretw0/causalgraph"
	"github.com/aretw0/causalgraph/internal/presentation/graph"
	"github.com/aretw0/causalgraph/internal/presentation/tui"
	"github.com/aretw0/causalgraph/pkg/adapters/file"
	"github.com/aretw0/causalgraph/pkg/adapters/process"
	"github.com/aretw0/causalgraph/pkg/config"
	"github.com/aretw0/causalgraph/pkg/dataset"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/observability"
)

// OutputReport selects the Markdown report, the default analyze output.
const OutputReport = "report"

// AnalyzeOptions contains the configuration for the analyze command.
type AnalyzeOptions struct {
	LogOptions

	ConfigPath string
	Overrides  []string

	// Output is "report" or one of graph.Formats.
	Output string

	// Width is the word wrap used when the report is rendered for a terminal.
	Width int

	// StoreDir keeps the built graph on disk. Empty discards it after the run.
	StoreDir string
}

// Analyze loads an analysis file, runs the pipeline and writes the result.
func Analyze(ctx context.Context, streams IOStreams, opts AnalyzeOptions) error {
	cfg, err := config.Load(opts.ConfigPath, opts.Overrides...)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := createLogger(opts.LogOptions)
	hooks := observability.Hooks(logger, nil)

	baseDir := ""
	if opts.ConfigPath != "" {
		baseDir = filepath.Dir(opts.ConfigPath)
	}

	tools, err := loadTools(cfg)
	if err != nil {
		return err
	}
	runner := process.NewRunner(
		process.WithRegistry(tools),
		process.WithBaseDir(baseDir),
		process.WithHooks(hooks),
		process.WithLogger(logger),
	)

	engineOpts := []causalgraph.Option{
		causalgraph.WithLogger(logger),
		causalgraph.WithLifecycleHooks(hooks),
		causalgraph.WithThreshold(cfg.Threshold),
	}
	if opts.StoreDir != "" {
		engineOpts = append(engineOpts, causalgraph.WithStore(file.New(opts.StoreDir, file.WithDOT(true))))
	}
	if cfg.Discovery.Tool != "" {
		engineOpts = append(engineOpts, causalgraph.WithDiscoverer(process.NewDiscoverer(runner, cfg.Discovery.Tool)))
	}
	if cfg.Estimation.Tool != "" {
		engineOpts = append(engineOpts, causalgraph.WithEstimator(process.NewEstimator(runner, cfg.Estimation.Tool)))
	}
	engine := causalgraph.New(engineOpts...)

	req := causalgraph.NewRequest(cfg)
	if cfg.Dataset != "" && cfg.Discovery.Matrix == "" {
		if err := checkDataset(resolvePath(baseDir, cfg.Dataset), cfg, logger); err != nil {
			return err
		}
	}
	if cfg.Discovery.Matrix != "" {
		m, header, err := dataset.LoadMatrix(resolvePath(baseDir, cfg.Discovery.Matrix))
		if err != nil {
			return err
		}
		req.Matrix = m
		if len(req.Labels) == 0 {
			req.Labels = header
		}
	}

	logger.Debug("Analysis Started", "name", req.Name, "tools", runner.Tools())
	res, err := engine.Analyze(ctx, req)
	if err != nil {
		return handleExecutionError(fmt.Errorf("analysis %q failed: %w", req.Name, err))
	}

	return writeResult(streams, cfg, res, opts)
}

// checkDataset fails before any tool runs when the treatment or the
// outcome is not a column of the dataset.
func checkDataset(path string, cfg *config.Config, logger *slog.Logger) error {
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}
	for _, v := range []string{cfg.Treatment, cfg.Outcome} {
		if v != "" && ds.ColumnIndex(v) < 0 {
			return fmt.Errorf("%s: %q: %w", path, v, domain.ErrUnknownColumn)
		}
	}
	rows, cols := ds.Shape()
	logger.Debug("Dataset loaded", "path", path, "rows", rows, "columns", cols)
	return nil
}

// loadTools merges the tools file with the inline registry. Inline entries win.
func loadTools(cfg *config.Config) (map[string]process.ProcessConfig, error) {
	tools := map[string]process.ProcessConfig{}
	if cfg.ToolsFile != "" {
		fromFile, err := process.LoadTools(cfg.ToolsFile)
		if err != nil {
			return nil, err
		}
		maps.Copy(tools, fromFile)
	}
	maps.Copy(tools, process.ToolMap(cfg.Tools))
	return tools, nil
}

func writeResult(streams IOStreams, cfg *config.Config, res *causalgraph.AnalysisResult, opts AnalyzeOptions) error {
	overlay := &graph.GraphOverlay{Treatment: cfg.Treatment, Outcome: cfg.Outcome}

	switch opts.Output {
	case OutputReport, "":
		report := graph.GenerateReport(res.Graph, res.Estimate, graph.ReportOptions{
			Overlay:   overlay,
			Precision: cfg.Precision,
			Target:    res.Target,
		})
		if isTerminal(streams.Out) {
			render, err := tui.NewRenderer(opts.Width)
			if err != nil {
				return err
			}
			if report, err = render(report); err != nil {
				return err
			}
		}
		return writeLine(streams.Out, report)

	case graph.FormatJSON:
		enc := json.NewEncoder(streams.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)

	default:
		out, _, err := graph.Format(res.Graph, opts.Output, overlay)
		if err != nil {
			return err
		}
		return writeLine(streams.Out, out)
	}
}
