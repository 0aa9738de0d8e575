package bayes

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// Binarization thresholds: a 1-5 scale answer of 4 or above counts as a
	// positive signal for proportion metrics.
	positiveThreshold = 4.0

	// Reference values the Bayesian p-value is computed against.
	referenceIntent = 0.5
	referencePrice  = 0.5
	referenceBrand  = 0.4

	// Samples below this size get a fixed neutral robustness score instead
	// of an IQR-based one.
	robustnessMinSample = 30
	neutralRobustness   = 0.5

	// Floor for sample variance so the Normal-Normal update never divides
	// by zero on degenerate (all-identical) data.
	varianceFloor = 1e-6

	baseAlpha = 0.05
)

// CredibleInterval is the Bayesian analogue of a confidence interval.
type CredibleInterval struct {
	Lower       float64 `json:"lower"`
	Upper       float64 `json:"upper"`
	Probability float64 `json:"probability"`
}

// ValidationResult is the posterior summary for one metric.
// Invariants: Lower <= PosteriorMean <= Upper and
// Confidence == 1 - BayesianPValue.
type ValidationResult struct {
	Metric                    string           `json:"metric"`
	PosteriorMean             float64          `json:"posterior_mean"`
	CredibleInterval          CredibleInterval `json:"credible_interval"`
	BayesianPValue            float64          `json:"bayesian_p_value"`
	Confidence                float64          `json:"confidence"`
	EffectSize                float64          `json:"effect_size"`
	Robustness                float64          `json:"robustness"`
	MultipleTestingCorrection float64          `json:"multiple_testing_correction"`
	SampleSize                int              `json:"sample_size"`
	Prior                     Prior            `json:"prior"`
}

// Validator performs conjugate-prior posterior inference over survey metrics.
//
// A Validator is session-scoped: the prior map and the multiple-testing
// comparison counter accumulate across calls on the same instance, so the
// Bonferroni threshold tightens with every validation performed. It is not
// internally thread-safe; use one instance per analysis session and call
// Reset to start a new session.
type Validator struct {
	priors      map[string]Prior
	comparisons int
}

// NewValidator creates a validator with the default prior set.
func NewValidator() *Validator {
	return &Validator{priors: defaultPriors()}
}

// SetPrior replaces the prior for a metric wholesale.
func (v *Validator) SetPrior(metric string, p Prior) {
	v.priors[metric] = p
}

// Prior returns the current prior for a metric.
func (v *Validator) Prior(metric string) (Prior, bool) {
	p, ok := v.priors[metric]
	return p, ok
}

// UpdatePriors nudges the stored priors toward historical aggregates using
// an empirical-Bayes blend. Each affected prior is replaced as a whole value.
func (v *Validator) UpdatePriors(history map[string]HistoricalAggregate) {
	for metric, agg := range history {
		if p, ok := v.priors[metric]; ok {
			v.priors[metric] = blendPrior(p, agg)
		}
	}
}

// Comparisons returns the number of validations performed this session.
func (v *Validator) Comparisons() int {
	return v.comparisons
}

// Reset starts a new analysis session: the comparison counter is zeroed and
// the priors are restored to their defaults.
func (v *Validator) Reset() {
	v.priors = defaultPriors()
	v.comparisons = 0
}

// ValidatePurchaseIntent binarizes 1-5 intent scores at >=4 and combines
// them with the purchase-intent beta prior via the Beta-Binomial update.
func (v *Validator) ValidatePurchaseIntent(data []float64) ValidationResult {
	return v.validateProportion(MetricPurchaseIntent, data, referenceIntent)
}

// ValidateBrandPreference binarizes 1-5 preference scores at >=4 and
// combines them with the brand-preference beta prior.
func (v *Validator) ValidateBrandPreference(data []float64) ValidationResult {
	return v.validateProportion(MetricBrandPreference, data, referenceBrand)
}

// ValidatePriceSensitivity treats 1-10 sensitivity scores as continuous,
// normalizes them to [0,1], and applies the Normal-Normal conjugate update.
func (v *Validator) ValidatePriceSensitivity(data []float64) ValidationResult {
	prior := v.priors[MetricPriceSensitivity]

	normalized := make([]float64, len(data))
	for i, x := range data {
		normalized[i] = x / 10.0
	}

	n := float64(len(normalized))
	sampleMean := 0.0
	sampleVar := varianceFloor
	if len(normalized) > 0 {
		sampleMean, _ = stats.Mean(normalized)
		if len(normalized) > 1 {
			if sv, err := stats.SampleVariance(normalized); err == nil && sv > varianceFloor {
				sampleVar = sv
			}
		}
	}

	// Precision-weighted Normal-Normal posterior.
	precision := 1 / prior.Variance
	postMean := prior.Mean
	if len(normalized) > 0 {
		precision = 1/prior.Variance + n/sampleVar
		postMean = (prior.Mean/prior.Variance + n*sampleMean/sampleVar) / precision
	}
	postSD := math.Sqrt(1 / precision)

	interval := CredibleInterval{
		Lower:       postMean - 1.96*postSD,
		Upper:       postMean + 1.96*postSD,
		Probability: 0.95,
	}

	pValue := normalCDF(referencePrice, postMean, postSD)

	return v.finishResult(MetricPriceSensitivity, data, prior, postMean, interval, pValue)
}

// validateProportion runs the Beta-Binomial update shared by the intent and
// brand metrics.
func (v *Validator) validateProportion(metric string, data []float64, reference float64) ValidationResult {
	prior := v.priors[metric]

	positives := 0
	for _, x := range data {
		if x >= positiveThreshold {
			positives++
		}
	}
	negatives := len(data) - positives

	alpha := prior.Alpha + float64(positives)
	beta := prior.Beta + float64(negatives)
	total := alpha + beta

	postMean := alpha / total
	postSD := math.Sqrt(alpha * beta / (total * total * (total + 1)))

	// Normal approximation to the Beta posterior, clamped to [0,1].
	interval := CredibleInterval{
		Lower:       clamp(postMean-1.96*postSD, 0, 1),
		Upper:       clamp(postMean+1.96*postSD, 0, 1),
		Probability: 0.95,
	}

	pValue := normalCDF(reference, postMean, postSD)

	return v.finishResult(metric, data, prior, postMean, interval, pValue)
}

// finishResult assembles the shared tail of every validation: effect size,
// robustness, Bonferroni correction, confidence identity.
func (v *Validator) finishResult(metric string, data []float64, prior Prior, postMean float64, interval CredibleInterval, pValue float64) ValidationResult {
	v.comparisons++

	return ValidationResult{
		Metric:                    metric,
		PosteriorMean:             postMean,
		CredibleInterval:          interval,
		BayesianPValue:            pValue,
		Confidence:                1 - pValue,
		EffectSize:                cohenH(postMean, prior.Mean),
		Robustness:                robustness(data),
		MultipleTestingCorrection: math.Min(1, baseAlpha/float64(v.comparisons)),
		SampleSize:                len(data),
		Prior:                     prior,
	}
}

// normalCDF is the posterior mass at or below ref under a normal
// approximation with the given mean and standard deviation.
func normalCDF(ref, mean, sd float64) float64 {
	if sd <= 0 {
		// Degenerate posterior: all mass at the mean.
		if ref < mean {
			return 0
		}
		return 1
	}
	return distuv.Normal{Mu: mean, Sigma: sd}.CDF(ref)
}

// cohenH is the arcsine-transform effect size for two proportions.
// Inputs are clamped to [0,1] so the continuous metrics can reuse it.
func cohenH(observed, expected float64) float64 {
	observed = clamp(observed, 0, 1)
	expected = clamp(expected, 0, 1)
	return 2 * (math.Asin(math.Sqrt(observed)) - math.Asin(math.Sqrt(expected)))
}

// robustness scores outlier sensitivity via the IQR fence. Small samples get
// a fixed neutral score because the quartiles themselves are unstable.
func robustness(data []float64) float64 {
	if len(data) < robustnessMinSample {
		return neutralRobustness
	}

	q1, err1 := stats.Percentile(data, 25)
	q3, err3 := stats.Percentile(data, 75)
	if err1 != nil || err3 != nil {
		return neutralRobustness
	}

	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	outliers := 0
	for _, x := range data {
		if x < lower || x > upper {
			outliers++
		}
	}

	fraction := float64(outliers) / float64(len(data))
	return math.Max(0, 1-2*fraction)
}

// ComprehensiveResult bundles all three metric validations with an overall
// confidence and narrative recommendations.
type ComprehensiveResult struct {
	PurchaseIntent    ValidationResult `json:"purchase_intent"`
	PriceSensitivity  ValidationResult `json:"price_sensitivity"`
	BrandPreference   ValidationResult `json:"brand_preference"`
	OverallConfidence float64          `json:"overall_confidence"`
	Recommendations   []string         `json:"recommendations"`
}

// MetricSamples carries the per-metric answer arrays for a comprehensive run.
type MetricSamples struct {
	PurchaseIntent   []float64 `json:"purchase_intent"`
	PriceSensitivity []float64 `json:"price_sensitivity"`
	BrandPreference  []float64 `json:"brand_preference"`
}

// ValidateComprehensive runs all three validations and derives
// recommendations from fixed confidence and value thresholds.
func (v *Validator) ValidateComprehensive(samples MetricSamples) ComprehensiveResult {
	intent := v.ValidatePurchaseIntent(samples.PurchaseIntent)
	price := v.ValidatePriceSensitivity(samples.PriceSensitivity)
	brand := v.ValidateBrandPreference(samples.BrandPreference)

	overall := (intent.Confidence + price.Confidence + brand.Confidence) / 3

	return ComprehensiveResult{
		PurchaseIntent:    intent,
		PriceSensitivity:  price,
		BrandPreference:   brand,
		OverallConfidence: overall,
		Recommendations:   recommendations(intent, price, brand),
	}
}

func recommendations(intent, price, brand ValidationResult) []string {
	var recs []string

	if intent.Confidence > 0.8 {
		recs = append(recs, fmt.Sprintf(
			"Strong purchase-intent signal (%.0f%% confidence, posterior %.0f%%): the concept is worth advancing to pricing research.",
			intent.Confidence*100, intent.PosteriorMean*100))
	} else if intent.Confidence < 0.6 {
		recs = append(recs, fmt.Sprintf(
			"Purchase-intent evidence is weak (%.0f%% confidence): refine the concept or collect more responses before investing further.",
			intent.Confidence*100))
	}

	if price.PosteriorMean > 0.7 {
		recs = append(recs, "Respondents are highly price sensitive: lead with value pricing and avoid premium positioning.")
	} else if price.PosteriorMean < 0.3 {
		recs = append(recs, "Price sensitivity is low: there is headroom for premium pricing tiers.")
	}

	if brand.Confidence > 0.7 && brand.PosteriorMean > 0.5 {
		recs = append(recs, "Brand preference exceeds the category baseline with solid confidence: brand-led messaging should outperform feature-led messaging.")
	} else if brand.PosteriorMean < 0.3 {
		recs = append(recs, "Brand preference is below baseline: invest in awareness before conversion campaigns.")
	}

	minRobustness := math.Min(intent.Robustness, math.Min(price.Robustness, brand.Robustness))
	if minRobustness < 0.7 {
		recs = append(recs, "Results are sensitive to outlier responses: treat point estimates with caution and inspect the raw distribution.")
	}

	minSample := intent.SampleSize
	if price.SampleSize < minSample {
		minSample = price.SampleSize
	}
	if brand.SampleSize < minSample {
		minSample = brand.SampleSize
	}
	if minSample < 100 {
		recs = append(recs, fmt.Sprintf(
			"Smallest metric sample is %d responses: collect at least 100 per metric before making go/no-go decisions.", minSample))
	}

	return recs
}
