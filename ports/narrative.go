package ports

import "context"

// PersonaProfile is the aggregated segment handed to a narrative generator.
type PersonaProfile struct {
	Key                 string   `json:"key"`
	AgeBracket          string   `json:"age_bracket"`
	Gender              string   `json:"gender"`
	IncomeBracket       string   `json:"income_bracket"`
	Size                int      `json:"size"`
	MeanAge             float64  `json:"mean_age"`
	ModalLocation       string   `json:"modal_location"`
	MeanPurchaseIntent  float64  `json:"mean_purchase_intent"`
	MeanAcceptablePrice float64  `json:"mean_acceptable_price"`
	TopValues           []string `json:"top_values"`
	TopConcerns         []string `json:"top_concerns"`
}

// PersonaNarrative is the generated prose description of a segment.
type PersonaNarrative struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Generator   string `json:"generator"`
}

// NarrativeGeneratorPort turns aggregated persona profiles into readable
// descriptions. Implementations must be deterministic for a fixed profile.
type NarrativeGeneratorPort interface {
	GeneratePersonaNarrative(ctx context.Context, profile PersonaProfile) (*PersonaNarrative, error)
}
