package domain

// Discovery algorithms understood by the bundled tool scripts.
const (
	AlgorithmLiNGAM = "lingam"
	AlgorithmPC     = "pc"
	AlgorithmGES    = "ges"
)

// DefaultMethod is the estimation method used when none is configured.
const DefaultMethod = "backdoor.linear_regression"

// DiscoveryRequest asks an external tool to learn a causal structure from a dataset.
type DiscoveryRequest struct {
	Dataset   string   `json:"dataset" mapstructure:"dataset"`
	Algorithm string   `json:"algorithm" mapstructure:"algorithm"`
	Labels    []string `json:"labels,omitempty" mapstructure:"labels"`
	Seed      int64    `json:"seed" mapstructure:"seed"`
}

// Discovery is the weighted adjacency matrix reported by a discovery tool.
type Discovery struct {
	Algorithm string   `json:"algorithm,omitempty" mapstructure:"algorithm"`
	Labels    []string `json:"labels" mapstructure:"labels"`
	Matrix    Matrix   `json:"matrix" mapstructure:"matrix"`
}

// EstimateRequest asks an external tool to identify and estimate an effect.
// Graph must be in the single-line dialect produced by dot.RenderTarget.
type EstimateRequest struct {
	Dataset        string  `json:"dataset" mapstructure:"dataset"`
	Treatment      string  `json:"treatment" mapstructure:"treatment"`
	Outcome        string  `json:"outcome" mapstructure:"outcome"`
	Graph          string  `json:"graph" mapstructure:"graph"`
	Method         string  `json:"method" mapstructure:"method"`
	ControlValue   float64 `json:"control_value" mapstructure:"control_value"`
	TreatmentValue float64 `json:"treatment_value" mapstructure:"treatment_value"`
	Seed           int64   `json:"seed" mapstructure:"seed"`
}

// Estimate is the effect reported by an estimation tool.
type Estimate struct {
	Estimand string  `json:"estimand,omitempty" mapstructure:"estimand"`
	Method   string  `json:"method,omitempty" mapstructure:"method"`
	Value    float64 `json:"value" mapstructure:"value"`
	CILow    float64 `json:"ci_low" mapstructure:"ci_low"`
	CIHigh   float64 `json:"ci_high" mapstructure:"ci_high"`
	PValue   float64 `json:"p_value" mapstructure:"p_value"`
}

// Significant reports whether the estimate passes a test at level alpha.
func (e *Estimate) Significant(alpha float64) bool {
	return e.PValue < alpha
}
