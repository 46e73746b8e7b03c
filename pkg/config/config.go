// Package config loads analysis definitions from YAML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/causalgraph/pkg/adapters/process"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config describes one causal analysis run.
type Config struct {
	Name           string  `yaml:"name" json:"name" mapstructure:"name"`
	Dataset        string  `yaml:"dataset" json:"dataset" mapstructure:"dataset"`
	Treatment      string  `yaml:"treatment" json:"treatment" mapstructure:"treatment"`
	Outcome        string  `yaml:"outcome" json:"outcome" mapstructure:"outcome"`
	Method         string  `yaml:"method" json:"method" mapstructure:"method"`
	ControlValue   float64 `yaml:"control_value" json:"control_value" mapstructure:"control_value"`
	TreatmentValue float64 `yaml:"treatment_value" json:"treatment_value" mapstructure:"treatment_value"`

	// Threshold is the absolute coefficient at or below which no edge is drawn.
	Threshold float64 `yaml:"threshold" json:"threshold" mapstructure:"threshold"`

	// Seed is handed to every external tool so runs are reproducible.
	Seed int64 `yaml:"seed" json:"seed" mapstructure:"seed"`

	// Precision is the number of decimals shown in reports. Graph labels are never rounded.
	Precision int `yaml:"precision" json:"precision" mapstructure:"precision"`

	Labels     []string         `yaml:"labels" json:"labels" mapstructure:"labels"`
	Discovery  DiscoveryConfig  `yaml:"discovery" json:"discovery" mapstructure:"discovery"`
	Estimation EstimationConfig `yaml:"estimation" json:"estimation" mapstructure:"estimation"`

	// Tools registers external commands inline, in addition to any tools file.
	Tools     []process.ProcessConfig `yaml:"tools" json:"tools" mapstructure:"tools"`
	ToolsFile string                  `yaml:"tools_file" json:"tools_file" mapstructure:"tools_file"`
}

// DiscoveryConfig selects how the causal structure is obtained.
type DiscoveryConfig struct {
	Algorithm string `yaml:"algorithm" json:"algorithm" mapstructure:"algorithm"`
	Tool      string `yaml:"tool" json:"tool" mapstructure:"tool"`

	// Matrix points to a precomputed adjacency CSV. When set, no tool is run.
	Matrix string `yaml:"matrix" json:"matrix" mapstructure:"matrix"`
}

// EstimationConfig selects the effect estimation tool. An empty Tool stops
// the analysis after the graph has been built.
type EstimationConfig struct {
	Tool string `yaml:"tool" json:"tool" mapstructure:"tool"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{
		Method:         domain.DefaultMethod,
		ControlValue:   0,
		TreatmentValue: 1,
		Threshold:      domain.DefaultThreshold,
		Precision:      2,
		Discovery: DiscoveryConfig{
			Algorithm: domain.AlgorithmLiNGAM,
		},
	}
}

// Load reads a configuration file (YAML or JSON, chosen by extension) and
// applies the key=value overrides on top of it. Keys use dots for nesting:
// "discovery.algorithm=pc".
func Load(path string, overrides ...string) (*Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".json" {
			if err := json.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
			}
		} else {
			// Default to YAML
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
			}
		}
	}

	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid override %q: expected key=value", o)
		}
		Set(raw, strings.TrimSpace(key), value)
	}

	cfg := Default()
	if err := Decode(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Name == "" && path != "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if cfg.ToolsFile != "" && path != "" && !filepath.IsAbs(cfg.ToolsFile) {
		cfg.ToolsFile = filepath.Join(filepath.Dir(path), cfg.ToolsFile)
	}

	return &cfg, nil
}

// Decode maps a generic map (from YAML, JSON, flags or MCP arguments) onto out.
// Strings are converted to numbers and comma-separated strings to slices.
func Decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Set assigns value at a dotted key path, creating nested maps as needed.
func Set(raw map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	cur := raw
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}

	if c.Dataset == "" && c.Discovery.Matrix == "" {
		fail("dataset", "required unless discovery.matrix is set", nil)
	}
	if c.Treatment == "" {
		fail("treatment", "required", nil)
	}
	if c.Outcome == "" {
		fail("outcome", "required", nil)
	}
	if c.Treatment != "" && c.Treatment == c.Outcome {
		fail("outcome", "must differ from treatment", c.Outcome)
	}
	if c.Threshold < 0 {
		fail("threshold", "must not be negative", c.Threshold)
	}
	if c.Precision < 0 || c.Precision > 17 {
		fail("precision", "must be between 0 and 17", c.Precision)
	}

	switch c.Discovery.Algorithm {
	case domain.AlgorithmLiNGAM, domain.AlgorithmPC, domain.AlgorithmGES:
	default:
		fail("discovery.algorithm", "must be one of lingam, pc, ges", c.Discovery.Algorithm)
	}
	if c.Discovery.Matrix == "" && c.Discovery.Tool == "" {
		fail("discovery.tool", "required unless discovery.matrix is set", nil)
	}
	if c.Estimation.Tool != "" && c.Dataset == "" {
		fail("dataset", "required by estimation.tool", nil)
	}

	for i, t := range c.Tools {
		if t.Name == "" {
			fail(fmt.Sprintf("tools[%d].name", i), "required", nil)
		}
		if t.Command == "" {
			fail(fmt.Sprintf("tools[%d].command", i), "required", nil)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
