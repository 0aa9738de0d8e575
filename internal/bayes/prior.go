package bayes

import (
	"math"
)

// Family names the distribution family of a prior.
type Family string

const (
	FamilyBeta    Family = "beta"
	FamilyNormal  Family = "normal"
	FamilyGamma   Family = "gamma"
	FamilyUniform Family = "uniform"
)

// Metric names understood by the validator's default prior set.
const (
	MetricPurchaseIntent   = "purchase_intent"
	MetricPriceSensitivity = "price_sensitivity"
	MetricBrandPreference  = "brand_preference"
)

// Prior is a named prior distribution. A prior is a whole value: it is
// replaced via SetPrior or UpdatePriors, never partially mutated.
type Prior struct {
	Family   Family  `json:"family"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Alpha    float64 `json:"alpha,omitempty"` // beta family
	Beta     float64 `json:"beta,omitempty"`  // beta family
}

// BetaPrior builds a beta prior from its shape parameters.
func BetaPrior(alpha, beta float64) Prior {
	total := alpha + beta
	return Prior{
		Family:   FamilyBeta,
		Mean:     alpha / total,
		Variance: alpha * beta / (total * total * (total + 1)),
		Alpha:    alpha,
		Beta:     beta,
	}
}

// NormalPrior builds a normal prior from mean and variance.
func NormalPrior(mean, variance float64) Prior {
	return Prior{Family: FamilyNormal, Mean: mean, Variance: variance}
}

// betaWithMean rebuilds a beta prior with a new mean while keeping the
// original concentration (alpha+beta), so the prior stays equally informative.
func betaWithMean(p Prior, mean float64) Prior {
	concentration := p.Alpha + p.Beta
	if concentration <= 0 {
		concentration = 2
	}
	mean = clamp(mean, 0.01, 0.99)
	return BetaPrior(mean*concentration, (1-mean)*concentration)
}

// defaultPriors returns the validator's built-in priors. Purchase intent
// assumes roughly 30% of a cold market shows real intent; brand preference
// assumes 40%; price sensitivity centers on the scale midpoint.
func defaultPriors() map[string]Prior {
	return map[string]Prior{
		MetricPurchaseIntent:   BetaPrior(3, 7),
		MetricPriceSensitivity: NormalPrior(0.5, 0.1),
		MetricBrandPreference:  BetaPrior(4, 6),
	}
}

// HistoricalAggregate summarizes prior studies of a metric for
// empirical-Bayes prior updating.
type HistoricalAggregate struct {
	Mean       float64 `json:"mean"`
	Variance   float64 `json:"variance"`
	SampleSize int     `json:"sample_size"`
}

// blendPrior nudges a prior toward a historical aggregate, weighting the
// aggregate by its sample size against the prior's effective sample size.
// The result is a fresh Prior value in the same family.
func blendPrior(p Prior, agg HistoricalAggregate) Prior {
	if agg.SampleSize <= 0 {
		return p
	}
	n := float64(agg.SampleSize)

	switch p.Family {
	case FamilyBeta:
		n0 := p.Alpha + p.Beta
		blended := (p.Mean*n0 + agg.Mean*n) / (n0 + n)
		return betaWithMean(p, blended)
	case FamilyNormal:
		sampleVar := agg.Variance
		if sampleVar <= 0 {
			sampleVar = varianceFloor
		}
		precision := 1/p.Variance + n/sampleVar
		mean := (p.Mean/p.Variance + n*agg.Mean/sampleVar) / precision
		return NormalPrior(mean, 1/precision)
	default:
		// Gamma and uniform priors are carried for completeness but have no
		// conjugate update wired to a metric; nudge the mean only.
		weight := n / (n + 10)
		p.Mean = p.Mean*(1-weight) + agg.Mean*weight
		return p
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}
