package bayes

import (
	"math"
)

// Perturbation constants for the sensitivity analysis.
const (
	priorPerturbationScale = 1.5
	injectedOutlierCount   = 6
	stabilityThreshold     = 0.1
	intentScaleMin         = 1.0
	intentScaleMax         = 5.0
)

// SensitivityAnalysis reports how much the purchase-intent posterior moves
// under three perturbations of the analysis. Scores are absolute deltas of
// the posterior mean versus the unperturbed baseline.
type SensitivityAnalysis struct {
	Baseline           ValidationResult `json:"baseline"`
	PriorSensitivity   float64          `json:"prior_sensitivity"`
	SampleSensitivity  float64          `json:"sample_sensitivity"`
	OutlierSensitivity float64          `json:"outlier_sensitivity"`
	Stable             bool             `json:"stable"`
}

// PerformSensitivityAnalysis re-runs the purchase-intent validation with a
// perturbed prior (mean x1.5), with half the sample, and with six injected
// extreme-value responses, and reports the posterior-mean deltas.
//
// The original prior is restored after the prior-perturbation run; the only
// lasting side effect is the comparison counter advancing, as with any other
// validation calls in the session.
func (v *Validator) PerformSensitivityAnalysis(data []float64) SensitivityAnalysis {
	baseline := v.ValidatePurchaseIntent(data)

	// Perturbed prior, restored afterwards.
	original := v.priors[MetricPurchaseIntent]
	v.SetPrior(MetricPurchaseIntent, betaWithMean(original, original.Mean*priorPerturbationScale))
	perturbed := v.ValidatePurchaseIntent(data)
	v.SetPrior(MetricPurchaseIntent, original)

	// Half the sample.
	half := data
	if len(data) >= 2 {
		half = data[:len(data)/2]
	}
	halved := v.ValidatePurchaseIntent(half)

	// Injected extremes: half at each end of the answer scale.
	withOutliers := make([]float64, 0, len(data)+injectedOutlierCount)
	withOutliers = append(withOutliers, data...)
	for i := 0; i < injectedOutlierCount/2; i++ {
		withOutliers = append(withOutliers, intentScaleMin, intentScaleMax)
	}
	contaminated := v.ValidatePurchaseIntent(withOutliers)

	priorDelta := math.Abs(perturbed.PosteriorMean - baseline.PosteriorMean)
	sampleDelta := math.Abs(halved.PosteriorMean - baseline.PosteriorMean)
	outlierDelta := math.Abs(contaminated.PosteriorMean - baseline.PosteriorMean)

	return SensitivityAnalysis{
		Baseline:           baseline,
		PriorSensitivity:   priorDelta,
		SampleSensitivity:  sampleDelta,
		OutlierSensitivity: outlierDelta,
		Stable: priorDelta < stabilityThreshold &&
			sampleDelta < stabilityThreshold &&
			outlierDelta < stabilityThreshold,
	}
}

// GaussianModel is a candidate model for the Bayes factor comparison.
type GaussianModel struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// CalculateBayesFactor returns the likelihood ratio of two Gaussian models
// over the data. This is a simplified approximation, not a rigorous Bayes
// factor: it compares point-parameter likelihoods with no integration over
// parameter uncertainty.
func (v *Validator) CalculateBayesFactor(data []float64, model1, model2 GaussianModel) float64 {
	if len(data) == 0 {
		return 1
	}

	ll1 := gaussianLogLikelihood(data, model1)
	ll2 := gaussianLogLikelihood(data, model2)

	return math.Exp(ll1 - ll2)
}

func gaussianLogLikelihood(data []float64, m GaussianModel) float64 {
	sd := m.StdDev
	if sd <= 0 {
		sd = math.Sqrt(varianceFloor)
	}

	ll := 0.0
	for _, x := range data {
		z := (x - m.Mean) / sd
		ll += -0.5*z*z - math.Log(sd) - 0.5*math.Log(2*math.Pi)
	}
	return ll
}
