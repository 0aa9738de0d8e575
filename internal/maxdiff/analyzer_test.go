package maxdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopanel/domain/survey"
	"gopanel/internal/errors"
)

var demoFeatures = []string{"battery", "camera", "price", "screen"}

// choiceSet builds responses where "battery" dominates and "screen" loses.
func choiceSet(n int) []survey.MaxDiffChoice {
	responses := make([]survey.MaxDiffChoice, n)
	for i := range responses {
		switch i % 4 {
		case 0, 1:
			responses[i] = survey.MaxDiffChoice{MostImportant: "battery", LeastImportant: "screen"}
		case 2:
			responses[i] = survey.MaxDiffChoice{MostImportant: "camera", LeastImportant: "screen"}
		default:
			responses[i] = survey.MaxDiffChoice{MostImportant: "battery", LeastImportant: "price"}
		}
	}
	return responses
}

func TestAnalyzer_RankingAndShares(t *testing.T) {
	result, err := NewAnalyzer(demoFeatures, choiceSet(100)).Analyze()
	require.NoError(t, err)

	require.Len(t, result.Features, 4)
	assert.Equal(t, "battery", result.Features[0].Feature)
	assert.Equal(t, 1, result.Features[0].Rank)

	// Features are sorted descending by utility.
	for i := 1; i < len(result.Features); i++ {
		assert.GreaterOrEqual(t,
			result.Features[i-1].UtilityScore, result.Features[i].UtilityScore)
		assert.Equal(t, i+1, result.Features[i].Rank)
	}

	// Positive shares sum to ~100%.
	shareSum := 0.0
	for _, f := range result.Features {
		assert.GreaterOrEqual(t, f.ShareOfPreference, 0.0)
		shareSum += f.ShareOfPreference
	}
	assert.InDelta(t, 100.0, shareSum, 1e-9)

	assert.Equal(t, 100, result.SampleSize)
	assert.Equal(t, 4, result.TotalFeatures)
	assert.Equal(t, 3, result.QuestionsPerRespondent) // ceil(4*3/4)
	assert.Equal(t, 1.0, result.CompletionRate)
}

func TestAnalyzer_UtilityArithmetic(t *testing.T) {
	responses := []survey.MaxDiffChoice{
		{MostImportant: "battery", LeastImportant: "screen"},
		{MostImportant: "battery", LeastImportant: "price"},
		{MostImportant: "camera", LeastImportant: "battery"},
		{MostImportant: "price", LeastImportant: "screen"},
	}

	result, err := NewAnalyzer(demoFeatures, responses).Analyze()
	require.NoError(t, err)

	byName := make(map[string]FeatureScore)
	for _, f := range result.Features {
		byName[f.Feature] = f
	}

	// battery: 2 best, 1 worst over 4 respondents.
	assert.InDelta(t, 0.25, byName["battery"].UtilityScore, 1e-9)
	// screen: 0 best, 2 worst.
	assert.InDelta(t, -0.5, byName["screen"].UtilityScore, 1e-9)
	// price: 1 best, 1 worst.
	assert.InDelta(t, 0.0, byName["price"].UtilityScore, 1e-9)
}

func TestAnalyzer_TooFewFeaturesRejected(t *testing.T) {
	_, err := NewAnalyzer([]string{"a", "b", "c"}, choiceSet(10)).Analyze()
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestAnalyzer_NoResponsesRejected(t *testing.T) {
	_, err := NewAnalyzer(demoFeatures, nil).Analyze()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
}

func TestAnalyzer_SignificanceLevels(t *testing.T) {
	result, err := NewAnalyzer(demoFeatures, choiceSet(100)).Analyze()
	require.NoError(t, err)

	for _, f := range result.Features {
		appearances := f.TimesChosenBest + f.TimesChosenWorst
		switch {
		case appearances >= 30:
			assert.Equal(t, 0.99, f.SignificanceLevel, f.Feature)
		case appearances >= 15:
			assert.Equal(t, 0.95, f.SignificanceLevel, f.Feature)
		case appearances >= 5:
			assert.Equal(t, 0.80, f.SignificanceLevel, f.Feature)
		default:
			assert.Equal(t, 0.50, f.SignificanceLevel, f.Feature)
		}
	}
}

func TestAnalyzer_SignificantDifferencesAtScale(t *testing.T) {
	// At n=100 the threshold is 1.96*sqrt(2/100) ~= 0.277; battery (~0.75)
	// vs screen (-0.75) clears it easily.
	result, err := NewAnalyzer(demoFeatures, choiceSet(100)).Analyze()
	require.NoError(t, err)
	assert.NotEmpty(t, result.SignificantDifferences)

	// A handful of respondents cannot separate anything.
	small, err := NewAnalyzer(demoFeatures, []survey.MaxDiffChoice{
		{MostImportant: "battery", LeastImportant: "screen"},
	}).Analyze()
	require.NoError(t, err)
	assert.Empty(t, small.SignificantDifferences)
}

func TestAnalyzer_IncompleteResponsesLowerCompletion(t *testing.T) {
	responses := append(choiceSet(8),
		survey.MaxDiffChoice{MostImportant: "hologram", LeastImportant: "screen"},
		survey.MaxDiffChoice{})

	result, err := NewAnalyzer(demoFeatures, responses).Analyze()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, result.CompletionRate, 1e-9)
}

func TestResult_NarrativeHelpersAreIdempotent(t *testing.T) {
	result, err := NewAnalyzer(demoFeatures, choiceSet(60)).Analyze()
	require.NoError(t, err)

	assert.Equal(t, result.GenerateInsights(), result.GenerateInsights())
	assert.Equal(t, result.GenerateRecommendations(), result.GenerateRecommendations())
	assert.NotEmpty(t, result.GenerateInsights())
}
