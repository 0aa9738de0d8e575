package bayes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intentData builds 1-5 scale answers with the given number of positives
// (answers >= 4) out of n. Positives are interleaved so any prefix keeps
// roughly the same proportion.
func intentData(n, positives int) []float64 {
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		if (i*positives)%n < positives {
			data[i] = 5
		} else {
			data[i] = 2
		}
	}
	return data
}

func TestValidatePurchaseIntent_PosteriorBetweenPriorAndObserved(t *testing.T) {
	v := NewValidator()

	result := v.ValidatePurchaseIntent(intentData(100, 60))

	// Posterior must sit strictly between the prior mean (0.3) and the raw
	// empirical proportion (0.60).
	assert.Greater(t, result.PosteriorMean, 0.3)
	assert.Less(t, result.PosteriorMean, 0.6)
	assert.Equal(t, 100, result.SampleSize)
}

func TestValidatePurchaseIntent_ConvergesTowardData(t *testing.T) {
	small := NewValidator().ValidatePurchaseIntent(intentData(10, 6))
	large := NewValidator().ValidatePurchaseIntent(intentData(1000, 600))

	// With more data the prior's pull weakens and the posterior approaches
	// the empirical 0.60.
	assert.Greater(t, large.PosteriorMean, small.PosteriorMean)
	assert.InDelta(t, 0.60, large.PosteriorMean, 0.01)
}

func TestValidationResult_Invariants(t *testing.T) {
	v := NewValidator()

	results := []ValidationResult{
		v.ValidatePurchaseIntent(intentData(80, 30)),
		v.ValidateBrandPreference(intentData(50, 25)),
		v.ValidatePriceSensitivity([]float64{3, 7, 5, 8, 2, 6, 4, 9, 5, 5}),
	}

	for _, r := range results {
		assert.LessOrEqual(t, r.CredibleInterval.Lower, r.PosteriorMean, "%s interval lower", r.Metric)
		assert.GreaterOrEqual(t, r.CredibleInterval.Upper, r.PosteriorMean, "%s interval upper", r.Metric)
		assert.Equal(t, 0.95, r.CredibleInterval.Probability)
		assert.InDelta(t, 1-r.BayesianPValue, r.Confidence, 1e-12, "%s confidence identity", r.Metric)
	}
}

func TestValidator_BonferroniTightensPerComparison(t *testing.T) {
	v := NewValidator()
	data := intentData(100, 50)

	for n := 1; n <= 8; n++ {
		result := v.ValidatePurchaseIntent(data)
		want := math.Min(1, 0.05/float64(n))
		assert.InDelta(t, want, result.MultipleTestingCorrection, 1e-12, "comparison %d", n)
	}
	assert.Equal(t, 8, v.Comparisons())

	v.Reset()
	assert.Equal(t, 0, v.Comparisons())
	first := v.ValidatePurchaseIntent(data)
	assert.InDelta(t, 0.05, first.MultipleTestingCorrection, 1e-12)
}

func TestValidator_ResetRestoresDefaultPriors(t *testing.T) {
	v := NewValidator()
	v.SetPrior(MetricPurchaseIntent, BetaPrior(50, 50))

	v.Reset()

	p, ok := v.Prior(MetricPurchaseIntent)
	require.True(t, ok)
	assert.InDelta(t, 0.3, p.Mean, 1e-9)
}

func TestValidatePriceSensitivity_ShrinksTowardPrior(t *testing.T) {
	v := NewValidator()

	// Raw scores around 8/10 = 0.8 after normalization; prior mean is 0.5.
	data := []float64{8, 8, 7, 9, 8, 7, 8, 9, 8, 8}
	result := v.ValidatePriceSensitivity(data)

	assert.Greater(t, result.PosteriorMean, 0.5)
	assert.Less(t, result.PosteriorMean, 0.85)
}

func TestRobustness_SmallSampleIsNeutral(t *testing.T) {
	v := NewValidator()
	result := v.ValidatePurchaseIntent(intentData(20, 10))
	assert.Equal(t, 0.5, result.Robustness)
}

func TestRobustness_CleanLargeSampleScoresHigh(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = 3 + float64(i%3) // 3, 4, 5 with no outliers
	}
	v := NewValidator()
	result := v.ValidatePurchaseIntent(data)
	assert.Equal(t, 1.0, result.Robustness)
}

func TestValidator_EmptyDataReturnsPrior(t *testing.T) {
	v := NewValidator()

	result := v.ValidatePurchaseIntent(nil)
	assert.InDelta(t, 0.3, result.PosteriorMean, 1e-9)
	assert.Equal(t, 0, result.SampleSize)
}

func TestUpdatePriors_BlendsTowardHistory(t *testing.T) {
	v := NewValidator()

	v.UpdatePriors(map[string]HistoricalAggregate{
		MetricPurchaseIntent: {Mean: 0.6, SampleSize: 90},
	})

	p, ok := v.Prior(MetricPurchaseIntent)
	require.True(t, ok)
	// Effective prior size is 10, history is 90: the blend lands near 0.57.
	assert.InDelta(t, 0.57, p.Mean, 0.01)
	assert.Equal(t, FamilyBeta, p.Family)
}

func TestValidateComprehensive(t *testing.T) {
	v := NewValidator()

	result := v.ValidateComprehensive(MetricSamples{
		PurchaseIntent:   intentData(200, 150),
		PriceSensitivity: []float64{2, 3, 2, 4, 3, 2, 3, 2, 4, 3},
		BrandPreference:  intentData(200, 120),
	})

	wantOverall := (result.PurchaseIntent.Confidence +
		result.PriceSensitivity.Confidence +
		result.BrandPreference.Confidence) / 3
	assert.InDelta(t, wantOverall, result.OverallConfidence, 1e-12)

	// 150/200 positives produces a strong intent signal; small metric
	// samples trigger the sample-size recommendation.
	assert.NotEmpty(t, result.Recommendations)
}

func TestSensitivityAnalysis_RestoresPriorAndIsStableOnLargeSamples(t *testing.T) {
	v := NewValidator()
	before, _ := v.Prior(MetricPurchaseIntent)

	analysis := v.PerformSensitivityAnalysis(intentData(1000, 600))

	after, _ := v.Prior(MetricPurchaseIntent)
	assert.Equal(t, before, after, "prior must be restored after perturbation run")

	// With 1000 responses the data dominates every perturbation.
	assert.True(t, analysis.Stable)
	assert.Less(t, analysis.PriorSensitivity, 0.1)
	assert.Less(t, analysis.OutlierSensitivity, 0.1)
}

func TestSensitivityAnalysis_SmallSampleMovesMore(t *testing.T) {
	small := NewValidator().PerformSensitivityAnalysis(intentData(12, 7))
	large := NewValidator().PerformSensitivityAnalysis(intentData(1000, 600))

	assert.Greater(t, small.PriorSensitivity, large.PriorSensitivity)
}

func TestCalculateBayesFactor_PrefersBetterModel(t *testing.T) {
	v := NewValidator()
	data := []float64{4.8, 5.1, 4.9, 5.2, 5.0, 4.7, 5.3}

	good := GaussianModel{Name: "centered", Mean: 5.0, StdDev: 0.3}
	bad := GaussianModel{Name: "shifted", Mean: 2.0, StdDev: 0.3}

	bf := v.CalculateBayesFactor(data, good, bad)
	assert.Greater(t, bf, 1.0)

	inverse := v.CalculateBayesFactor(data, bad, good)
	assert.Less(t, inverse, 1.0)
}
