package sampling

import (
	"fmt"
	"math"
)

// Fixed study-design constants shared by every calculation.
const (
	DefaultResponseRate = 0.20 // assumed when inputs omit a response rate
	BufferFactor        = 1.2  // over-recruitment buffer on top of response-rate adjustment
	MinPerSegment       = 100  // minimum respondents for a readable subgroup
	CostPerResponse     = 5.0  // USD per completed response
	PowerAlpha          = 0.05
	PowerTarget         = 0.80
)

// zScores maps supported confidence levels to their two-tailed z critical values.
var zScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

// Inputs are the parameters of one sample-size calculation.
type Inputs struct {
	PopulationSize     int     `json:"population_size"`
	ConfidenceLevel    float64 `json:"confidence_level"` // one of 0.90, 0.95, 0.99
	MarginOfError      float64 `json:"margin_of_error"`  // as a fraction, e.g. 0.05
	ExpectedProportion float64 `json:"expected_proportion"`
	ResponseRate       float64 `json:"response_rate,omitempty"` // 0 means DefaultResponseRate
}

// PowerParameters describes the statistical power profile of a sample size.
type PowerParameters struct {
	Alpha      float64 `json:"alpha"`
	Power      float64 `json:"power"`
	Beta       float64 `json:"beta"`
	EffectSize float64 `json:"effect_size"` // minimal detectable effect, approximated as sqrt(2/n)
}

// CostEstimate breaks down fieldwork cost for a recommended sample.
type CostEstimate struct {
	CostPerResponse float64 `json:"cost_per_response"`
	TotalCost       float64 `json:"total_cost"`
	CostPerSegment  float64 `json:"cost_per_segment"`
}

// QualityTier labels a sample size with an expected reliability bucket.
type QualityTier struct {
	Label string  `json:"label"`
	Score float64 `json:"score"` // 0-1 reliability score
}

// Calculation is the deterministic output bundle of Calculate. Identical
// Inputs always produce an identical Calculation.
type Calculation struct {
	Inputs             Inputs          `json:"inputs"`
	ZScore             float64         `json:"z_score"`
	SampleSizeInfinite int             `json:"sample_size_infinite"`
	SampleSizeFinite   int             `json:"sample_size_finite"`
	RecommendedSample  int             `json:"recommended_sample"`
	SubgroupCapacity   int             `json:"subgroup_capacity"`
	Power              PowerParameters `json:"power"`
	Cost               CostEstimate    `json:"cost"`
	Quality            QualityTier     `json:"quality"`
}

// Calculator computes closed-form sample-size, power and cost estimates.
// It holds no mutable state; Calculate is a pure function of the inputs.
type Calculator struct {
	inputs Inputs
}

// NewCalculator creates a calculator for the given inputs.
func NewCalculator(inputs Inputs) *Calculator {
	return &Calculator{inputs: inputs}
}

// Validate reports every problem with the inputs as a human-readable string.
// Callers must check before trusting Calculate: Calculate itself does not
// guard and will produce numeric garbage on out-of-range inputs.
func (c *Calculator) Validate() []string {
	var errs []string
	in := c.inputs

	if _, ok := zScores[in.ConfidenceLevel]; !ok {
		errs = append(errs, fmt.Sprintf("confidence level %.2f is not supported; use 0.90, 0.95 or 0.99", in.ConfidenceLevel))
	}
	if in.MarginOfError <= 0 || in.MarginOfError > 0.5 {
		errs = append(errs, fmt.Sprintf("margin of error %.3f must be in (0, 0.5]", in.MarginOfError))
	}
	if in.ExpectedProportion < 0 || in.ExpectedProportion > 1 {
		errs = append(errs, fmt.Sprintf("expected proportion %.3f must be in [0, 1]", in.ExpectedProportion))
	}
	if in.PopulationSize < 0 {
		errs = append(errs, fmt.Sprintf("population size %d must not be negative", in.PopulationSize))
	}
	if in.ResponseRate < 0 || in.ResponseRate > 1 {
		errs = append(errs, fmt.Sprintf("response rate %.3f must be in (0, 1]", in.ResponseRate))
	}
	return errs
}

// Calculate returns the full deterministic output bundle.
func (c *Calculator) Calculate() Calculation {
	in := c.inputs

	z := zScoreFor(in.ConfidenceLevel)
	p := in.ExpectedProportion
	e := in.MarginOfError

	// Cochran's formula for an infinite population.
	infinite := int(math.Ceil(z * z * p * (1 - p) / (e * e)))

	finite := finiteCorrection(infinite, in.PopulationSize)

	responseRate := in.ResponseRate
	if responseRate == 0 {
		responseRate = DefaultResponseRate
	}
	recommended := int(math.Ceil(float64(finite) / responseRate * BufferFactor))

	subgroups := recommended / MinPerSegment

	power := PowerParameters{
		Alpha:      PowerAlpha,
		Power:      PowerTarget,
		Beta:       1 - PowerTarget,
		EffectSize: math.Sqrt(2 / float64(finite)),
	}

	segments := finite / MinPerSegment
	if segments < 1 {
		segments = 1
	}
	cost := CostEstimate{
		CostPerResponse: CostPerResponse,
		TotalCost:       float64(recommended) * CostPerResponse,
		CostPerSegment:  float64(recommended) * CostPerResponse / float64(segments),
	}

	return Calculation{
		Inputs:             in,
		ZScore:             z,
		SampleSizeInfinite: infinite,
		SampleSizeFinite:   finite,
		RecommendedSample:  recommended,
		SubgroupCapacity:   subgroups,
		Power:              power,
		Cost:               cost,
		Quality:            qualityTier(finite),
	}
}

// zScoreFor looks up the critical value for a confidence level. Unknown
// levels fall back to the 95% value; this is implementation-defined rather
// than an error, and Validate flags it separately.
func zScoreFor(confidence float64) float64 {
	if z, ok := zScores[confidence]; ok {
		return z
	}
	return zScores[0.95]
}

// finiteCorrection applies the finite-population correction. Populations of
// zero or below are treated as unbounded and skip the correction.
func finiteCorrection(n, population int) int {
	if population <= 0 {
		return n
	}
	corrected := float64(n) / (1 + float64(n-1)/float64(population))
	return int(math.Ceil(corrected))
}

// qualityTier buckets a finite-corrected sample size into a reliability tier.
// The thresholds are a fixed ladder, not a continuous score.
func qualityTier(n int) QualityTier {
	switch {
	case n >= 1000:
		return QualityTier{Label: "Excellent", Score: 0.90}
	case n >= 400:
		return QualityTier{Label: "Very Good", Score: 0.85}
	case n < 200:
		return QualityTier{Label: "Fair", Score: 0.75}
	default:
		return QualityTier{Label: "Good", Score: 0.80}
	}
}
