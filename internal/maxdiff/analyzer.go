package maxdiff

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"gopanel/domain/survey"
	"gopanel/internal/errors"
)

const (
	// MinFeatures is the smallest choice set a MaxDiff design supports.
	MinFeatures = 4

	// Each feature should be seen about three times across the exercise,
	// with four features shown per choice task.
	exposuresPerFeature = 3
	featuresPerTask     = 4
)

// FeatureScore is the per-feature outcome of a MaxDiff analysis.
type FeatureScore struct {
	Feature           string  `json:"feature"`
	Rank              int     `json:"rank"`
	UtilityScore      float64 `json:"utility_score"`
	ShareOfPreference float64 `json:"share_of_preference"` // percent of summed positive utility
	SignificanceLevel float64 `json:"significance_level"`
	TimesChosenBest   int     `json:"times_chosen_best"`
	TimesChosenWorst  int     `json:"times_chosen_worst"`
}

// Result is the full output of a MaxDiff analysis.
type Result struct {
	Features               []FeatureScore `json:"features"`
	SampleSize             int            `json:"sample_size"`
	TotalFeatures          int            `json:"total_features"`
	QuestionsPerRespondent int            `json:"questions_per_respondent"`
	CompletionRate         float64        `json:"completion_rate"`
	DataQualityScore       float64        `json:"data_quality_score"`
	SignificantDifferences []string       `json:"significant_differences,omitempty"`
}

// Analyzer estimates feature utilities from best/worst choice responses.
type Analyzer struct {
	features  []string
	responses []survey.MaxDiffChoice
}

// NewAnalyzer creates an analyzer for a feature list and its responses.
func NewAnalyzer(features []string, responses []survey.MaxDiffChoice) *Analyzer {
	return &Analyzer{features: features, responses: responses}
}

// Analyze computes count-based utilities: each feature's utility is its
// best-pick count minus its worst-pick count, normalized by the number of
// respondents. Requires at least MinFeatures features and one response.
func (a *Analyzer) Analyze() (*Result, error) {
	if len(a.features) < MinFeatures {
		return nil, errors.ValidationError(fmt.Sprintf(
			"maxdiff needs at least %d features, got %d", MinFeatures, len(a.features)))
	}
	if len(a.responses) == 0 {
		return nil, errors.InsufficientData("maxdiff needs at least one response")
	}

	known := make(map[string]bool, len(a.features))
	for _, f := range a.features {
		known[f] = true
	}

	best := make(map[string]int)
	worst := make(map[string]int)
	complete := 0
	for _, r := range a.responses {
		if known[r.MostImportant] && known[r.LeastImportant] {
			complete++
			best[r.MostImportant]++
			worst[r.LeastImportant]++
		}
	}

	n := float64(len(a.responses))
	scores := make([]FeatureScore, 0, len(a.features))
	for _, f := range a.features {
		scores = append(scores, FeatureScore{
			Feature:           f,
			UtilityScore:      (float64(best[f]) - float64(worst[f])) / n,
			SignificanceLevel: significanceLevel(best[f] + worst[f]),
			TimesChosenBest:   best[f],
			TimesChosenWorst:  worst[f],
		})
	}

	// Descending utility; feature name breaks ties so ranking is stable.
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].UtilityScore != scores[j].UtilityScore {
			return scores[i].UtilityScore > scores[j].UtilityScore
		}
		return scores[i].Feature < scores[j].Feature
	})

	sumPositive := 0.0
	for _, s := range scores {
		if s.UtilityScore > 0 {
			sumPositive += s.UtilityScore
		}
	}
	for i := range scores {
		scores[i].Rank = i + 1
		if sumPositive > 0 && scores[i].UtilityScore > 0 {
			scores[i].ShareOfPreference = scores[i].UtilityScore / sumPositive * 100
		}
	}

	completion := float64(complete) / n

	return &Result{
		Features:               scores,
		SampleSize:             len(a.responses),
		TotalFeatures:          len(a.features),
		QuestionsPerRespondent: questionsPerRespondent(len(a.features)),
		CompletionRate:         completion,
		DataQualityScore:       dataQuality(len(a.responses), completion),
		SignificantDifferences: significantDifferences(scores, len(a.responses)),
	}, nil
}

// questionsPerRespondent sizes the choice-task design so every feature is
// exposed about three times in tasks of four.
func questionsPerRespondent(featureCount int) int {
	return int(math.Ceil(float64(featureCount*exposuresPerFeature) / featuresPerTask))
}

// significanceLevel maps a feature's appearance count to a confidence bucket.
// This is a count-based policy heuristic, not a derived statistic: features
// seen more often earn more trust in their utility estimate.
func significanceLevel(appearances int) float64 {
	switch {
	case appearances >= 30:
		return 0.99
	case appearances >= 15:
		return 0.95
	case appearances >= 5:
		return 0.80
	default:
		return 0.50
	}
}

// significantDifferences lists ranked pairs whose utility gap exceeds the
// two-proportion normal threshold 1.96*sqrt(2/n).
func significantDifferences(scores []FeatureScore, sampleSize int) []string {
	threshold := distuv.UnitNormal.Quantile(0.975) * math.Sqrt(2/float64(sampleSize))

	var diffs []string
	for i := 0; i < len(scores); i++ {
		for j := i + 1; j < len(scores); j++ {
			gap := scores[i].UtilityScore - scores[j].UtilityScore
			if gap > threshold {
				diffs = append(diffs, fmt.Sprintf(
					"%s is preferred over %s (utility gap %.2f)",
					scores[i].Feature, scores[j].Feature, gap))
			}
		}
	}
	return diffs
}

// dataQuality buckets the sample size and discounts incomplete responses.
// Policy heuristic, flagged as such.
func dataQuality(sampleSize int, completion float64) float64 {
	var score float64
	switch {
	case sampleSize >= 100:
		score = 0.9
	case sampleSize >= 50:
		score = 0.8
	case sampleSize >= 20:
		score = 0.7
	case sampleSize >= 5:
		score = 0.55
	default:
		score = 0.4
	}
	if completion < 0.8 {
		score -= 0.1
	}
	return math.Max(0.1, score)
}

// GenerateInsights narrates the ranking. Pure over the result.
func (r *Result) GenerateInsights() []string {
	if len(r.Features) == 0 {
		return nil
	}

	top := r.Features[0]
	bottom := r.Features[len(r.Features)-1]

	insights := []string{
		fmt.Sprintf("%q leads the feature ranking with a utility of %.2f and %.0f%% share of preference.",
			top.Feature, top.UtilityScore, top.ShareOfPreference),
		fmt.Sprintf("%q ranks last (utility %.2f); respondents consistently traded it away.",
			bottom.Feature, bottom.UtilityScore),
	}

	if len(r.SignificantDifferences) == 0 {
		insights = append(insights, fmt.Sprintf(
			"No pairwise utility gap clears significance at n=%d; the ranking order is suggestive, not conclusive.",
			r.SampleSize))
	} else {
		insights = append(insights, fmt.Sprintf(
			"%d pairwise preferences are statistically separable at this sample size.",
			len(r.SignificantDifferences)))
	}

	return insights
}

// GenerateRecommendations narrates next actions. Pure over the result.
func (r *Result) GenerateRecommendations() []string {
	if len(r.Features) == 0 {
		return nil
	}

	var recs []string
	top := r.Features[0]
	recs = append(recs, fmt.Sprintf(
		"Prioritize %q in positioning and roadmap: it carries the largest share of preference (%.0f%%).",
		top.Feature, top.ShareOfPreference))

	if bottom := r.Features[len(r.Features)-1]; bottom.UtilityScore < 0 {
		recs = append(recs, fmt.Sprintf(
			"Deprioritize %q: its negative utility means promoting it can reduce overall appeal.", bottom.Feature))
	}

	if r.DataQualityScore < 0.7 {
		recs = append(recs, fmt.Sprintf(
			"Sample quality is limited (score %.2f, n=%d, completion %.0f%%): expand fieldwork before final trade-off decisions.",
			r.DataQualityScore, r.SampleSize, r.CompletionRate*100))
	}

	return recs
}
