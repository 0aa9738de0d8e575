package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"gopanel/internal/errors"
)

// Price-sensitivity index cutoffs used by the narrative helpers. The index
// is the acceptable-range width relative to the indifference price, so low
// values mean a narrow acceptance band.
const (
	sensitivityNarrowCutoff   = 0.3
	sensitivityTolerantCutoff = 0.8
)

// PriceRange bounds the acceptable price band.
type PriceRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// CurvePoint is one evaluation of the four cumulative curves at a price.
type CurvePoint struct {
	Price        float64 `json:"price"`
	TooCheap     float64 `json:"too_cheap"`     // share answering "too cheap" at or above this price
	Cheap        float64 `json:"cheap"`         // share still considering this price a bargain
	Expensive    float64 `json:"expensive"`     // share finding this price expensive
	TooExpensive float64 `json:"too_expensive"` // share finding this price too expensive
}

// VanWestendorpResult is the outcome of a price-sensitivity-meter analysis.
type VanWestendorpResult struct {
	OptimalPricePoint     float64      `json:"optimal_price_point"`
	IndifferencePrice     float64      `json:"indifference_price"`
	AcceptableRange       PriceRange   `json:"acceptable_range"`
	PriceSensitivityIndex float64      `json:"price_sensitivity_index"`
	SampleSize            int          `json:"sample_size"`
	DataQualityScore      float64      `json:"data_quality_score"`
	Curves                []CurvePoint `json:"curves"`
}

// VanWestendorpAnalyzer derives price thresholds from the four
// price-perception questions. The four answer arrays are independent
// comma-separated lists in the source UI, so their lengths may differ and
// no respondent alignment across arrays is assumed.
type VanWestendorpAnalyzer struct {
	tooCheap     []float64
	cheap        []float64
	expensive    []float64
	tooExpensive []float64
}

// NewVanWestendorpAnalyzer creates an analyzer over the four price arrays.
func NewVanWestendorpAnalyzer(tooCheap, cheap, expensive, tooExpensive []float64) *VanWestendorpAnalyzer {
	return &VanWestendorpAnalyzer{
		tooCheap:     tooCheap,
		cheap:        cheap,
		expensive:    expensive,
		tooExpensive: tooExpensive,
	}
}

// Analyze computes the curve intersections. The intersection points follow
// the standard Newton price-sensitivity-meter construction on step-function
// cumulative curves over the union grid of observed prices:
//
//	optimal     = "too cheap" x "too expensive"
//	indifference = "cheap" x "expensive"
//	range lower  = "too cheap" x "not cheap"
//	range upper  = "too expensive" x "not expensive"
//
// Each band needs at least one response.
func (a *VanWestendorpAnalyzer) Analyze() (*VanWestendorpResult, error) {
	if len(a.tooCheap) == 0 || len(a.cheap) == 0 || len(a.expensive) == 0 || len(a.tooExpensive) == 0 {
		return nil, errors.InsufficientData("each price band requires at least one response")
	}

	grid := priceGrid(a.tooCheap, a.cheap, a.expensive, a.tooExpensive)
	curves := make([]CurvePoint, len(grid))
	for i, price := range grid {
		curves[i] = CurvePoint{
			Price:        price,
			TooCheap:     shareAtOrAbove(a.tooCheap, price),
			Cheap:        shareAtOrAbove(a.cheap, price),
			Expensive:    shareAtOrBelow(a.expensive, price),
			TooExpensive: shareAtOrBelow(a.tooExpensive, price),
		}
	}

	missedCrossings := 0
	optimal, ok := firstCrossing(curves, func(c CurvePoint) bool { return c.TooExpensive >= c.TooCheap })
	if !ok {
		missedCrossings++
	}
	indifference, ok := firstCrossing(curves, func(c CurvePoint) bool { return c.Expensive >= c.Cheap })
	if !ok {
		missedCrossings++
	}
	rangeLower, ok := firstCrossing(curves, func(c CurvePoint) bool { return 1-c.Cheap >= c.TooCheap })
	if !ok {
		missedCrossings++
	}
	rangeUpper, ok := firstCrossing(curves, func(c CurvePoint) bool { return c.TooExpensive >= 1-c.Expensive })
	if !ok {
		missedCrossings++
	}

	sampleSize := minLen(a.tooCheap, a.cheap, a.expensive, a.tooExpensive)

	index := 0.0
	if indifference > 0 {
		index = (rangeUpper - rangeLower) / indifference
	}

	return &VanWestendorpResult{
		OptimalPricePoint:     optimal,
		IndifferencePrice:     indifference,
		AcceptableRange:       PriceRange{Lower: rangeLower, Upper: rangeUpper},
		PriceSensitivityIndex: index,
		SampleSize:            sampleSize,
		DataQualityScore:      priceDataQuality(sampleSize, missedCrossings),
		Curves:                curves,
	}, nil
}

// GenerateInsights returns human-readable findings derived from the numeric
// thresholds. It is pure: repeated calls return identical strings.
func (r *VanWestendorpResult) GenerateInsights() []string {
	var insights []string

	insights = append(insights, fmt.Sprintf(
		"The optimal price point is %.2f, where resistance from buyers finding the product too cheap equals resistance from those finding it too expensive.",
		r.OptimalPricePoint))
	insights = append(insights, fmt.Sprintf(
		"The acceptable price range runs from %.2f to %.2f around an indifference price of %.2f.",
		r.AcceptableRange.Lower, r.AcceptableRange.Upper, r.IndifferencePrice))

	switch {
	case r.PriceSensitivityIndex < sensitivityNarrowCutoff:
		insights = append(insights, fmt.Sprintf(
			"The acceptance band is narrow (index %.2f): this market is highly price sensitive and small pricing mistakes are costly.",
			r.PriceSensitivityIndex))
	case r.PriceSensitivityIndex > sensitivityTolerantCutoff:
		insights = append(insights, fmt.Sprintf(
			"The acceptance band is wide (index %.2f): buyers are relatively price tolerant.",
			r.PriceSensitivityIndex))
	default:
		insights = append(insights, fmt.Sprintf(
			"Price sensitivity is moderate (index %.2f).", r.PriceSensitivityIndex))
	}

	return insights
}

// GenerateRecommendations returns pricing actions derived from the result.
// Pure and idempotent like GenerateInsights.
func (r *VanWestendorpResult) GenerateRecommendations() []string {
	var recs []string

	recs = append(recs, fmt.Sprintf(
		"Launch pricing should sit near %.2f; staying inside %.2f-%.2f avoids both cheapness suspicion and sticker shock.",
		r.OptimalPricePoint, r.AcceptableRange.Lower, r.AcceptableRange.Upper))

	if r.PriceSensitivityIndex < sensitivityNarrowCutoff {
		recs = append(recs, "Avoid premium tiers far above the optimal point; test discounts carefully since the floor is close.")
	} else if r.PriceSensitivityIndex > sensitivityTolerantCutoff {
		recs = append(recs, "Consider a premium tier: the wide acceptance band suggests willingness to pay above the optimal point.")
	}

	if r.DataQualityScore < 0.7 {
		recs = append(recs, fmt.Sprintf(
			"Data quality is limited (score %.2f, n=%d): collect more price responses before committing to a price.",
			r.DataQualityScore, r.SampleSize))
	}

	return recs
}

// priceGrid returns the sorted union of all observed price points.
func priceGrid(bands ...[]float64) []float64 {
	seen := make(map[float64]struct{})
	var grid []float64
	for _, band := range bands {
		for _, price := range band {
			if _, ok := seen[price]; !ok {
				seen[price] = struct{}{}
				grid = append(grid, price)
			}
		}
	}
	sort.Float64s(grid)
	return grid
}

// shareAtOrAbove is the fraction of answers at or above price (a decreasing
// step curve as price grows).
func shareAtOrAbove(band []float64, price float64) float64 {
	count := 0
	for _, x := range band {
		if x >= price {
			count++
		}
	}
	return float64(count) / float64(len(band))
}

// shareAtOrBelow is the fraction of answers at or below price (an increasing
// step curve).
func shareAtOrBelow(band []float64, price float64) float64 {
	count := 0
	for _, x := range band {
		if x <= price {
			count++
		}
	}
	return float64(count) / float64(len(band))
}

// firstCrossing scans the grid for the first point where the crossing
// condition holds. When the curves never cross, the grid median is returned
// as a documented fallback and ok is false.
func firstCrossing(curves []CurvePoint, crossed func(CurvePoint) bool) (float64, bool) {
	for _, c := range curves {
		if crossed(c) {
			return c.Price, true
		}
	}

	prices := make([]float64, len(curves))
	for i, c := range curves {
		prices[i] = c.Price
	}
	median, err := stats.Median(prices)
	if err != nil {
		return 0, false
	}
	return median, false
}

// priceDataQuality buckets the per-band sample size into a quality score and
// penalizes analyses where curves failed to intersect. The bucket thresholds
// are a policy choice, not a statistical derivation.
func priceDataQuality(sampleSize, missedCrossings int) float64 {
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
	score -= 0.1 * float64(missedCrossings)
	return math.Max(0.1, score)
}

func minLen(bands ...[]float64) int {
	min := len(bands[0])
	for _, band := range bands[1:] {
		if len(band) < min {
			min = len(band)
		}
	}
	return min
}
