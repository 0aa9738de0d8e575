package survey

import (
	"gopanel/domain/core"
)

// Demographics captures the categorical demographic attributes of a respondent.
// Brackets are stored as labels (e.g. "25-34", "50k-75k") so downstream
// aggregation can treat them as categorical keys.
type Demographics struct {
	Age           int    `json:"age"`
	AgeBracket    string `json:"age_bracket"`
	Gender        string `json:"gender"`
	IncomeBracket string `json:"income_bracket"`
	LocationType  string `json:"location_type"`
	Education     string `json:"education"`
	Occupation    string `json:"occupation"`
}

// Psychographics captures free-form tag sets describing the respondent.
type Psychographics struct {
	Values      []string `json:"values"`
	Motivations []string `json:"motivations"`
	Concerns    []string `json:"concerns"`
}

// Behavioral captures channel and category usage tags.
type Behavioral struct {
	ChannelPreference string `json:"channel_preference"`
	CategoryUsage     string `json:"category_usage"`
}

// MaxDiffChoice records one best/worst pick from an implied choice set.
type MaxDiffChoice struct {
	MostImportant  string `json:"most_important"`
	LeastImportant string `json:"least_important"`
}

// PriceMeterAnswers holds the four Van Westendorp price-perception answers.
// A zero value means the respondent skipped that question.
type PriceMeterAnswers struct {
	TooCheap     float64 `json:"too_cheap"`
	Cheap        float64 `json:"cheap"`
	Expensive    float64 `json:"expensive"`
	TooExpensive float64 `json:"too_expensive"`
}

// Response is one immutable survey response. It is created by the response
// collection layer and consumed read-only by every analyzer; no analyzer
// mutates a response.
type Response struct {
	RespondentID core.RespondentID `json:"respondent_id"`
	SubmittedAt  core.Timestamp    `json:"submitted_at"`

	Demographics   Demographics   `json:"demographics"`
	Psychographics Psychographics `json:"psychographics"`
	Behavioral     Behavioral     `json:"behavioral"`

	// Scale answers. PurchaseIntent and BrandPreference use a 1-5 scale,
	// PriceSensitivity a 1-10 scale. Zero means unanswered.
	PurchaseIntent   float64 `json:"purchase_intent"`
	PriceSensitivity float64 `json:"price_sensitivity"`
	BrandPreference  float64 `json:"brand_preference"`
	AcceptablePrice  float64 `json:"acceptable_price"`

	MaxDiff    *MaxDiffChoice     `json:"max_diff,omitempty"`
	PriceMeter *PriceMeterAnswers `json:"price_meter,omitempty"`
}

// PurchaseIntents extracts the answered purchase-intent scores from a
// response set.
func PurchaseIntents(responses []Response) []float64 {
	out := make([]float64, 0, len(responses))
	for _, r := range responses {
		if r.PurchaseIntent > 0 {
			out = append(out, r.PurchaseIntent)
		}
	}
	return out
}

// PriceSensitivities extracts the answered price-sensitivity scores.
func PriceSensitivities(responses []Response) []float64 {
	out := make([]float64, 0, len(responses))
	for _, r := range responses {
		if r.PriceSensitivity > 0 {
			out = append(out, r.PriceSensitivity)
		}
	}
	return out
}

// BrandPreferences extracts the answered brand-preference scores.
func BrandPreferences(responses []Response) []float64 {
	out := make([]float64, 0, len(responses))
	for _, r := range responses {
		if r.BrandPreference > 0 {
			out = append(out, r.BrandPreference)
		}
	}
	return out
}

// PriceMeterBands collects the four Van Westendorp answer arrays from a
// response set. The four slices are independent: a respondent who skipped
// one question still contributes to the other bands.
func PriceMeterBands(responses []Response) (tooCheap, cheap, expensive, tooExpensive []float64) {
	for _, r := range responses {
		if r.PriceMeter == nil {
			continue
		}
		if r.PriceMeter.TooCheap > 0 {
			tooCheap = append(tooCheap, r.PriceMeter.TooCheap)
		}
		if r.PriceMeter.Cheap > 0 {
			cheap = append(cheap, r.PriceMeter.Cheap)
		}
		if r.PriceMeter.Expensive > 0 {
			expensive = append(expensive, r.PriceMeter.Expensive)
		}
		if r.PriceMeter.TooExpensive > 0 {
			tooExpensive = append(tooExpensive, r.PriceMeter.TooExpensive)
		}
	}
	return tooCheap, cheap, expensive, tooExpensive
}

// MaxDiffChoices collects the answered best/worst picks from a response set.
func MaxDiffChoices(responses []Response) []MaxDiffChoice {
	out := make([]MaxDiffChoice, 0, len(responses))
	for _, r := range responses {
		if r.MaxDiff != nil {
			out = append(out, *r.MaxDiff)
		}
	}
	return out
}
