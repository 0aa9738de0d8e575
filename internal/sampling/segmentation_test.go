package sampling

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balancedSegments(n int) []Segment {
	segments := make([]Segment, n)
	for i := range segments {
		segments[i] = Segment{
			Name:                "segment",
			PercentOfPopulation: 100 / float64(n),
			ConfidenceLevel:     0.95,
			MarginOfError:       0.05,
			ExpectedProportion:  0.5,
		}
	}
	return segments
}

func TestSegmentation_FillsRecommendedSizes(t *testing.T) {
	segments := []Segment{
		{Name: "urban", PercentOfPopulation: 60, ConfidenceLevel: 0.95, MarginOfError: 0.05, ExpectedProportion: 0.5},
		{Name: "rural", PercentOfPopulation: 40, ConfidenceLevel: 0.95, MarginOfError: 0.05, ExpectedProportion: 0.5},
	}

	plan := NewSegmentationCalculator(100000).Plan(segments)

	total := 0
	for _, seg := range plan.Segments {
		require.Greater(t, seg.RecommendedSampleSize, 0, "segment %s", seg.Name)
		total += seg.RecommendedSampleSize
	}
	assert.Equal(t, total, plan.TotalSampleSize)
	assert.Equal(t, 100, plan.FeasibilityScore)
}

func TestSegmentation_FeasibilityPenalties(t *testing.T) {
	// Eight equal segments: 3 beyond the comfortable five (-30), and each
	// holds 12.5% of the population so no small-segment penalty applies.
	plan := NewSegmentationCalculator(1000000).Plan(balancedSegments(8))
	assert.Equal(t, 70, plan.FeasibilityScore)

	// Tight margins cost 10 points per segment.
	tight := balancedSegments(2)
	for i := range tight {
		tight[i].MarginOfError = 0.02
	}
	plan = NewSegmentationCalculator(1000000).Plan(tight)
	assert.Equal(t, 80, plan.FeasibilityScore)

	// A thin segment costs 15 points.
	thin := []Segment{
		{Name: "core", PercentOfPopulation: 95, ConfidenceLevel: 0.95, MarginOfError: 0.05, ExpectedProportion: 0.5},
		{Name: "niche", PercentOfPopulation: 5, ConfidenceLevel: 0.95, MarginOfError: 0.05, ExpectedProportion: 0.5},
	}
	plan = NewSegmentationCalculator(1000000).Plan(thin)
	assert.Equal(t, 85, plan.FeasibilityScore)
}

func TestSegmentation_ScoreFlooredAtZero(t *testing.T) {
	segments := balancedSegments(16)
	for i := range segments {
		segments[i].MarginOfError = 0.02
	}
	plan := NewSegmentationCalculator(1000000).Plan(segments)
	assert.Equal(t, 0, plan.FeasibilityScore)
}

func TestSegmentation_Advisories(t *testing.T) {
	// Large total sample triggers the volume advisory.
	segments := balancedSegments(6)
	for i := range segments {
		segments[i].MarginOfError = 0.03
	}
	plan := NewSegmentationCalculator(10000000).Plan(segments)
	require.Greater(t, plan.TotalSampleSize, 5000)

	foundVolume := false
	for _, adv := range plan.Advisories {
		if strings.Contains(adv, "very large") {
			foundVolume = true
		}
	}
	assert.True(t, foundVolume, "expected a volume advisory, got %v", plan.Advisories)

	// A tiny sub-population yields a below-minimum recommendation advisory.
	tiny := []Segment{
		{Name: "micro", PercentOfPopulation: 100, ConfidenceLevel: 0.95, MarginOfError: 0.10, ExpectedProportion: 0.5},
	}
	plan = NewSegmentationCalculator(10).Plan(tiny)
	foundSmall := false
	for _, adv := range plan.Advisories {
		if strings.Contains(adv, "micro") {
			foundSmall = true
		}
	}
	assert.True(t, foundSmall, "expected a small-segment advisory, got %v", plan.Advisories)
}
