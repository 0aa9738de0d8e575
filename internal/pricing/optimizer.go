package pricing

import (
	"math"
)

// Fallback model constants. These mirror the closed-form heuristic used when
// no trained model has been injected.
const (
	loyaltyPriceLift      = 0.3 // optimal price lift per unit of brand loyalty
	sensitivityPriceDrag  = 0.2 // optimal price drag per unit of price sensitivity
	demandCurveSteps      = 10  // curve spans [0.5*base, 1.5*base] in base/10 steps
	elasticityScale       = 2.0 // elasticity = -scale * sensitivity
	conversionLoyaltyLift = 0.1
	conversionSensDrag    = 0.1
	fallbackConfidence    = 0.7
	DefaultConversionRate = 0.15
)

// BuyerProfile is the input to price prediction: the pricing context plus
// the demographic, psychographic and behavioral attributes of the target
// buyer, all on documented scales.
type BuyerProfile struct {
	BasePrice        float64 `json:"base_price"`
	PriceSensitivity float64 `json:"price_sensitivity"` // 1-10 survey scale
	BrandLoyalty     float64 `json:"brand_loyalty"`     // 0-1
	Age              int     `json:"age"`               // years
	IncomeLevel      float64 `json:"income_level"`      // ordinal 1-5
	CategoryUsage    float64 `json:"category_usage"`    // 0-1 usage intensity
	OnlineChannel    bool    `json:"online_channel"`
	Competition      float64 `json:"competition"`     // 0-1 market pressure
	SeasonalDemand   float64 `json:"seasonal_demand"` // 0-1
	ProductQuality   float64 `json:"product_quality"` // 0-1 perceived quality
}

// FeatureVector is the fixed-length normalized encoding consumed by trained
// price models. Field order and scale factors are part of the contract:
//
//	[0] base price / 1000
//	[1] price sensitivity / 10
//	[2] brand loyalty (0-1)
//	[3] age / 100
//	[4] income level / 5
//	[5] category usage (0-1)
//	[6] online channel (0 or 1)
//	[7] competition (0-1)
//	[8] seasonal demand (0-1)
//	[9] product quality (0-1)
type FeatureVector [10]float64

// Encode normalizes a buyer profile into the fixed feature layout.
func (p BuyerProfile) Encode() FeatureVector {
	online := 0.0
	if p.OnlineChannel {
		online = 1
	}
	return FeatureVector{
		p.BasePrice / 1000,
		p.PriceSensitivity / 10,
		p.BrandLoyalty,
		float64(p.Age) / 100,
		p.IncomeLevel / 5,
		p.CategoryUsage,
		online,
		p.Competition,
		p.SeasonalDemand,
		p.ProductQuality,
	}
}

// DemandPoint is one point on a predicted demand curve. Demand is an index
// relative to demand at the base price, not a probability.
type DemandPoint struct {
	Price  float64 `json:"price"`
	Demand float64 `json:"demand"`
}

// Prediction is a complete pricing prediction. UsedFallback reports which
// path produced it so callers can monitor trained-model availability.
type Prediction struct {
	OptimalPrice          float64       `json:"optimal_price"`
	DemandCurve           []DemandPoint `json:"demand_curve"`
	Elasticity            float64       `json:"elasticity"`
	ConversionProbability float64       `json:"conversion_probability"`
	Confidence            float64       `json:"confidence"`
	UsedFallback          bool          `json:"used_fallback"`
	ModelName             string        `json:"model_name"`
}

// PriceModel predicts pricing outcomes from an encoded buyer profile.
// Trained models are injected by the caller; the fallback model is always
// available.
type PriceModel interface {
	Name() string
	Ready() bool
	Predict(profile BuyerProfile) (Prediction, error)
}

// FallbackPriceModel is the closed-form statistical path used when no
// trained model is available. It is deterministic and always ready.
type FallbackPriceModel struct {
	baseConversionRate float64
}

// NewFallbackPriceModel creates the fallback model. A non-positive base
// conversion rate falls back to DefaultConversionRate.
func NewFallbackPriceModel(baseConversionRate float64) *FallbackPriceModel {
	if baseConversionRate <= 0 {
		baseConversionRate = DefaultConversionRate
	}
	return &FallbackPriceModel{baseConversionRate: baseConversionRate}
}

func (m *FallbackPriceModel) Name() string { return "statistical_fallback" }

func (m *FallbackPriceModel) Ready() bool { return true }

// Predict derives the full prediction bundle from the closed-form heuristic.
func (m *FallbackPriceModel) Predict(profile BuyerProfile) (Prediction, error) {
	sens := clampUnit(profile.PriceSensitivity / 10)
	loyalty := clampUnit(profile.BrandLoyalty)
	base := profile.BasePrice

	optimal := base * (1 + loyaltyPriceLift*loyalty - sensitivityPriceDrag*sens)

	curve := make([]DemandPoint, 0, demandCurveSteps+1)
	for i := 0; i <= demandCurveSteps; i++ {
		price := base * (0.5 + float64(i)/float64(demandCurveSteps))
		demand := math.Max(0, 1-sens*(price-base)/base)
		curve = append(curve, DemandPoint{Price: price, Demand: demand})
	}

	conversion := m.baseConversionRate + conversionLoyaltyLift*loyalty - conversionSensDrag*sens
	conversion = math.Min(0.99, math.Max(0.01, conversion))

	return Prediction{
		OptimalPrice:          optimal,
		DemandCurve:           curve,
		Elasticity:            -elasticityScale * sens,
		ConversionProbability: conversion,
		Confidence:            fallbackConfidence,
		UsedFallback:          true,
		ModelName:             m.Name(),
	}, nil
}

// Optimizer selects between an injected trained model and the fallback path.
// Selection is explicit dependency injection, not runtime feature detection:
// pass nil to always use the fallback.
type Optimizer struct {
	trained  PriceModel
	fallback *FallbackPriceModel
}

// NewOptimizer creates an optimizer. model may be nil.
func NewOptimizer(baseConversionRate float64, model PriceModel) *Optimizer {
	return &Optimizer{
		trained:  model,
		fallback: NewFallbackPriceModel(baseConversionRate),
	}
}

// PredictOptimalPrice returns a complete prediction. When the trained model
// is absent, not ready, or errors, the fallback path answers instead — no
// error surfaces, and Prediction.UsedFallback records which path ran.
func (o *Optimizer) PredictOptimalPrice(profile BuyerProfile) Prediction {
	if o.trained != nil && o.trained.Ready() {
		if pred, err := o.trained.Predict(profile); err == nil {
			pred.UsedFallback = false
			pred.ModelName = o.trained.Name()
			return pred
		}
	}
	pred, _ := o.fallback.Predict(profile)
	return pred
}

func clampUnit(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
