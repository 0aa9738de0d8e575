package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gopanel/domain/core"
	"gopanel/domain/survey"
)

// RespondentGeneratorConfig configures the synthetic respondent generator
type RespondentGeneratorConfig struct {
	RespondentCount int      `json:"respondent_count"`
	BasePrice       float64  `json:"base_price"`
	PriceSpread     float64  `json:"price_spread"`
	MaxDiffFeatures []string `json:"maxdiff_features"`
	MaxDiffShare    float64  `json:"maxdiff_share"`
	PriceMeterShare float64  `json:"price_meter_share"`
	MeanIntent      float64  `json:"mean_intent"`
	Seed            int64    `json:"seed"`
}

// DefaultRespondentConfig returns sensible defaults for synthetic panels
func DefaultRespondentConfig() RespondentGeneratorConfig {
	return RespondentGeneratorConfig{
		RespondentCount: 500,
		BasePrice:       100.0,
		PriceSpread:     30.0,
		MaxDiffFeatures: []string{"battery life", "camera quality", "price", "screen size", "durability"},
		MaxDiffShare:    0.8,
		PriceMeterShare: 0.8,
		MeanIntent:      3.5,
		Seed:            42,
	}
}

// RespondentGenerator generates realistic synthetic survey responses.
// The same config always produces the same panel.
type RespondentGenerator struct {
	config RespondentGeneratorConfig
	rng    *rand.Rand
}

// NewRespondentGenerator creates a new respondent generator
func NewRespondentGenerator(config RespondentGeneratorConfig) *RespondentGenerator {
	return &RespondentGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces the full synthetic panel
func (g *RespondentGenerator) Generate() []survey.Response {
	responses := make([]survey.Response, 0, g.config.RespondentCount)
	for i := 0; i < g.config.RespondentCount; i++ {
		responses = append(responses, g.generateRespondent(i))
	}
	return responses
}

func (g *RespondentGenerator) generateRespondent(idx int) survey.Response {
	age := 18 + g.rng.Intn(55)

	// Intent clusters around the configured mean on the 1-5 scale.
	intent := math.Round(g.config.MeanIntent + g.rng.NormFloat64()*1.0)
	intent = clampScale(intent, 1, 5)

	// Price sensitivity runs against income: richer brackets care less.
	income := g.randomIncomeBracket()
	sensitivity := math.Round(6.5 - 1.5*float64(incomeRank(income)) + g.rng.NormFloat64()*1.5)
	sensitivity = clampScale(sensitivity, 1, 10)

	brand := math.Round(3.0 + g.rng.NormFloat64()*1.0)
	brand = clampScale(brand, 1, 5)

	acceptable := g.config.BasePrice * (0.7 + 0.6*g.rng.Float64())

	r := survey.Response{
		RespondentID: core.RespondentID(core.ID(fmt.Sprintf("respondent_%04d", idx+1))),
		SubmittedAt:  core.Now(),
		Demographics: survey.Demographics{
			Age:           age,
			AgeBracket:    ageBracket(age),
			Gender:        g.randomGender(),
			IncomeBracket: income,
			LocationType:  g.randomLocationType(),
			Education:     g.randomEducation(),
			Occupation:    g.randomOccupation(),
		},
		Psychographics: survey.Psychographics{
			Values:      g.randomTags(valuePool, 2, 3),
			Motivations: g.randomTags(motivationPool, 1, 2),
			Concerns:    g.randomTags(concernPool, 1, 3),
		},
		Behavioral: survey.Behavioral{
			ChannelPreference: g.randomChannel(),
			CategoryUsage:     g.randomUsage(),
		},
		PurchaseIntent:   intent,
		PriceSensitivity: sensitivity,
		BrandPreference:  brand,
		AcceptablePrice:  acceptable,
	}

	if len(g.config.MaxDiffFeatures) >= 2 && g.rng.Float64() < g.config.MaxDiffShare {
		r.MaxDiff = g.generateMaxDiffChoice()
	}
	if g.rng.Float64() < g.config.PriceMeterShare {
		r.PriceMeter = g.generatePriceMeter(sensitivity)
	}

	return r
}

// generateMaxDiffChoice biases best picks toward the front of the feature
// list so downstream rankings have a recoverable signal.
func (g *RespondentGenerator) generateMaxDiffChoice() *survey.MaxDiffChoice {
	features := g.config.MaxDiffFeatures
	n := len(features)

	bestIdx := g.biasedIndex(n)
	worstIdx := n - 1 - g.biasedIndex(n)
	if worstIdx == bestIdx {
		worstIdx = (bestIdx + 1) % n
	}

	return &survey.MaxDiffChoice{
		MostImportant:  features[bestIdx],
		LeastImportant: features[worstIdx],
	}
}

// biasedIndex favors low indices: picks the minimum of two uniform draws.
func (g *RespondentGenerator) biasedIndex(n int) int {
	a, b := g.rng.Intn(n), g.rng.Intn(n)
	if b < a {
		a = b
	}
	return a
}

// generatePriceMeter produces the four ordered price meter answers. More
// sensitive respondents report narrower acceptable windows.
func (g *RespondentGenerator) generatePriceMeter(sensitivity float64) *survey.PriceMeterAnswers {
	base := g.config.BasePrice
	spread := g.config.PriceSpread * (1.5 - sensitivity/10.0)
	if spread < g.config.PriceSpread*0.3 {
		spread = g.config.PriceSpread * 0.3
	}

	points := []float64{
		base - spread - g.rng.Float64()*spread,
		base - g.rng.Float64()*spread,
		base + g.rng.Float64()*spread,
		base + spread + g.rng.Float64()*spread,
	}
	sort.Float64s(points)
	for i := range points {
		if points[i] < 1 {
			points[i] = 1
		}
	}

	return &survey.PriceMeterAnswers{
		TooCheap:     points[0],
		Cheap:        points[1],
		Expensive:    points[2],
		TooExpensive: points[3],
	}
}

// Helper methods for random value generation

func (g *RespondentGenerator) randomGender() string {
	options := []string{"female", "male", "non-binary", "prefer not to say"}
	weights := []float64{0.48, 0.48, 0.02, 0.02}
	return g.weighted(options, weights)
}

func (g *RespondentGenerator) randomIncomeBracket() string {
	options := []string{"under-25k", "25-50k", "50-75k", "75-100k", "100k+"}
	weights := []float64{0.15, 0.25, 0.25, 0.2, 0.15}
	return g.weighted(options, weights)
}

func (g *RespondentGenerator) randomLocationType() string {
	options := []string{"urban", "suburban", "rural"}
	weights := []float64{0.45, 0.4, 0.15}
	return g.weighted(options, weights)
}

func (g *RespondentGenerator) randomEducation() string {
	options := []string{"high school", "some college", "bachelors", "graduate"}
	weights := []float64{0.25, 0.25, 0.35, 0.15}
	return g.weighted(options, weights)
}

func (g *RespondentGenerator) randomOccupation() string {
	options := []string{"professional", "service", "trades", "student", "retired", "homemaker"}
	weights := []float64{0.35, 0.2, 0.15, 0.1, 0.12, 0.08}
	return g.weighted(options, weights)
}

func (g *RespondentGenerator) randomChannel() string {
	options := []string{"online", "in-store", "mixed"}
	weights := []float64{0.45, 0.25, 0.3}
	return g.weighted(options, weights)
}

func (g *RespondentGenerator) randomUsage() string {
	options := []string{"daily", "weekly", "monthly", "rarely"}
	weights := []float64{0.3, 0.35, 0.25, 0.1}
	return g.weighted(options, weights)
}

func (g *RespondentGenerator) weighted(options []string, weights []float64) string {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if r <= cumulative {
			return options[i]
		}
	}
	return options[0]
}

// randomTags draws between min and max distinct tags from the pool.
func (g *RespondentGenerator) randomTags(pool []string, min, max int) []string {
	count := min
	if max > min {
		count += g.rng.Intn(max - min + 1)
	}
	if count > len(pool) {
		count = len(pool)
	}
	perm := g.rng.Perm(len(pool))
	tags := make([]string, 0, count)
	for _, p := range perm[:count] {
		tags = append(tags, pool[p])
	}
	return tags
}

var (
	valuePool      = []string{"quality", "sustainability", "convenience", "status", "value for money", "innovation"}
	motivationPool = []string{"save time", "save money", "self improvement", "family needs", "social approval"}
	concernPool    = []string{"price", "privacy", "durability", "customer support", "environmental impact"}
)

func ageBracket(age int) string {
	switch {
	case age < 25:
		return "18-24"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	case age < 65:
		return "55-64"
	default:
		return "65+"
	}
}

func incomeRank(bracket string) int {
	switch bracket {
	case "under-25k":
		return 0
	case "25-50k":
		return 1
	case "50-75k":
		return 2
	case "75-100k":
		return 3
	case "100k+":
		return 4
	default:
		return 2
	}
}

func clampScale(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
