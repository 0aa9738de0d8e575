package sampling

import (
	"fmt"
	"math"
)

// Feasibility scoring penalties. The score starts at 100 and is floored at 0.
const (
	maxComfortableSegments = 5
	penaltyPerExtraSegment = 10
	penaltySmallSegment    = 15 // segment under 10% of total population
	penaltyTightMargin     = 10 // segment demanding a margin of error below 5%
)

// Segment describes one named slice of the study population.
// RecommendedSampleSize is filled in by the segmentation calculator.
type Segment struct {
	Name                  string  `json:"name"`
	PercentOfPopulation   float64 `json:"percent_of_population"` // 0-100
	ConfidenceLevel       float64 `json:"confidence_level"`
	MarginOfError         float64 `json:"margin_of_error"`
	ExpectedProportion    float64 `json:"expected_proportion"`
	RecommendedSampleSize int     `json:"recommended_sample_size"`
}

// SegmentationPlan aggregates per-segment sample sizes with a feasibility
// assessment for the whole design.
type SegmentationPlan struct {
	Segments         []Segment `json:"segments"`
	TotalSampleSize  int       `json:"total_sample_size"`
	FeasibilityScore int       `json:"feasibility_score"` // 0-100
	Advisories       []string  `json:"advisories,omitempty"`
}

// SegmentationCalculator derives per-segment sample sizes by composing the
// single-population calculator over each segment's sub-population.
type SegmentationCalculator struct {
	totalPopulation int
}

// NewSegmentationCalculator creates a calculator for a total population.
func NewSegmentationCalculator(totalPopulation int) *SegmentationCalculator {
	return &SegmentationCalculator{totalPopulation: totalPopulation}
}

// Plan calculates every segment's recommended sample size, mutating the
// RecommendedSampleSize field of the passed segments, and scores the design.
func (sc *SegmentationCalculator) Plan(segments []Segment) SegmentationPlan {
	total := 0
	for i := range segments {
		seg := &segments[i]
		subPopulation := int(math.Round(float64(sc.totalPopulation) * seg.PercentOfPopulation / 100))

		calc := NewCalculator(Inputs{
			PopulationSize:     subPopulation,
			ConfidenceLevel:    seg.ConfidenceLevel,
			MarginOfError:      seg.MarginOfError,
			ExpectedProportion: seg.ExpectedProportion,
		}).Calculate()

		seg.RecommendedSampleSize = calc.RecommendedSample
		total += calc.RecommendedSample
	}

	score := sc.feasibilityScore(segments)

	return SegmentationPlan{
		Segments:         segments,
		TotalSampleSize:  total,
		FeasibilityScore: score,
		Advisories:       sc.advisories(segments, total, score),
	}
}

// feasibilityScore starts at 100 and subtracts fixed penalties for designs
// that are hard to field: too many segments, thin segments, tight margins.
func (sc *SegmentationCalculator) feasibilityScore(segments []Segment) int {
	score := 100

	if len(segments) > maxComfortableSegments {
		score -= (len(segments) - maxComfortableSegments) * penaltyPerExtraSegment
	}
	for _, seg := range segments {
		if seg.PercentOfPopulation < 10 {
			score -= penaltySmallSegment
		}
		if seg.MarginOfError < 0.05 {
			score -= penaltyTightMargin
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

func (sc *SegmentationCalculator) advisories(segments []Segment, total, score int) []string {
	var advisories []string

	if total > 5000 {
		advisories = append(advisories, fmt.Sprintf(
			"Total sample of %d respondents is very large; consider relaxing per-segment precision or pooling segments.", total))
	}
	if score < 70 {
		advisories = append(advisories, fmt.Sprintf(
			"Feasibility score %d indicates a difficult design; fewer or larger segments would improve it.", score))
	}
	for _, seg := range segments {
		if seg.RecommendedSampleSize < MinPerSegment {
			advisories = append(advisories, fmt.Sprintf(
				"Segment %q needs only %d respondents, below the %d minimum for stable subgroup reads.",
				seg.Name, seg.RecommendedSampleSize, MinPerSegment))
		}
	}

	return advisories
}
