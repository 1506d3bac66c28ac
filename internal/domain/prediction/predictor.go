package prediction

import (
	"fmt"
	"math"

	"github.com/rentscope/geointel/internal/domain/feature"
	"github.com/rentscope/geointel/internal/domain/stats"
	"github.com/rentscope/geointel/pkg/errors"
)

// FactorContribution is one entry of the ordered factor breakdown.  A slice
// of pairs rather than a map so that the factor order is part of the
// contract.
type FactorContribution struct {
	Factor string  `json:"factor"`
	Amount float64 `json:"amount"`
}

// PriceRange is the confidence-scaled band around the predicted price.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Prediction is the immutable result of a single predict call.  The engine
// never persists it; callers may.
type Prediction struct {
	Price        float64              `json:"price"`
	Confidence   float64              `json:"confidence"`
	Range        PriceRange           `json:"range"`
	Breakdown    []FactorContribution `json:"breakdown"`
	Explanations map[string][]string  `json:"explanations"`
	ModelVersion string               `json:"model_version"`
}

// Predictor scores feature vectors with the versioned additive model.  It is
// stateless, side-effect-free, and safe for concurrent use.
type Predictor struct{}

// NewPredictor constructs a Predictor.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Predict computes price, confidence, range, and the factor breakdown for a
// single feature vector.  It never fails on missing optional fields; it
// fails only on structurally invalid input (non-positive area, non-finite
// values).
func (p *Predictor) Predict(f *feature.PropertyFeature) (*Prediction, error) {
	if f == nil {
		return nil, errors.InvalidFeature("feature is nil")
	}
	if math.IsNaN(f.AreaPing) || math.IsInf(f.AreaPing, 0) {
		return nil, errors.New(errors.ErrCodeNonFiniteInput, "area_ping is not finite")
	}
	if f.AreaPing <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidArea, "area_ping must be positive, got %g", f.AreaPing)
	}
	if f.SafetyScore != nil && (math.IsNaN(*f.SafetyScore) || math.IsInf(*f.SafetyScore, 0)) {
		return nil, errors.New(errors.ErrCodeNonFiniteInput, "safety_score is not finite")
	}

	breakdown := make([]FactorContribution, 0, 10)
	explanations := map[string][]string{}
	add := func(factor string, amount float64) {
		breakdown = append(breakdown, FactorContribution{Factor: factor, Amount: amount})
	}
	explain := func(group, label string) {
		explanations[group] = append(explanations[group], label)
	}

	// Step 1: area subtotal.
	areaContribution := f.AreaPing * AreaRatePerPing
	subtotal := BasePrice + areaContribution
	add("base", BasePrice)
	add("area", areaContribution)

	// Step 2: district multiplier, expressed as a contribution on top of the
	// subtotal so the breakdown still sums to the final price.
	multiplier, knownDistrict := DistrictMultiplier(f.District)
	districtContribution := subtotal * (multiplier - 1)
	add("district", districtContribution)
	switch {
	case !knownDistrict:
		explain("location", fmt.Sprintf("%s is not in the district table; neutral multiplier applied", f.District))
	case multiplier > 1:
		explain("location", fmt.Sprintf("%s commands a %.0f%% premium over the city baseline", f.District, (multiplier-1)*100))
	case multiplier < 1:
		explain("location", fmt.Sprintf("%s rents %.0f%% below the city baseline", f.District, (1-multiplier)*100))
	default:
		explain("location", fmt.Sprintf("%s rents at the city baseline", f.District))
	}

	// Step 3: flat additive factors.
	buildingContribution := buildingTypeAdjustments[f.BuildingType]
	add("building_type", buildingContribution)
	if f.BuildingType != "" {
		explain("building", fmt.Sprintf("building type %s adjusts the estimate by %.0f", f.BuildingType, buildingContribution))
	}

	roomContribution := roomTypeAdjustments[f.RoomType]
	add("rooms", roomContribution)
	if f.RoomType != "" {
		explain("layout", fmt.Sprintf("%s layout adjusts the estimate by %.0f", f.RoomType, roomContribution))
	}

	floorContribution := 0.0
	if f.Floor != nil {
		floorContribution = float64(minInt(*f.Floor, FloorCap)) * FloorRatePerLevel
		explain("building", fmt.Sprintf("floor %d adds %.0f", *f.Floor, floorContribution))
	}
	add("floor", floorContribution)

	ageContribution := 0.0
	if f.AgeYears != nil {
		ageContribution = float64(minInt(*f.AgeYears, AgeCap)) * AgeRatePerYear
		explain("condition", fmt.Sprintf("building age %d years decays the estimate by %.0f", *f.AgeYears, -ageContribution))
	}
	add("age", ageContribution)

	transportContribution := math.Min(float64(len(f.TransportAccess))*TransportBonus, TransportBonusCap)
	add("transport", transportContribution)
	if len(f.TransportAccess) > 0 {
		explain("amenities", fmt.Sprintf("%d transport options add %.0f", len(f.TransportAccess), transportContribution))
	}

	facilityContribution := math.Min(float64(len(f.Facilities))*FacilityBonus, FacilityBonusCap)
	add("facilities", facilityContribution)
	if len(f.Facilities) > 0 {
		explain("amenities", fmt.Sprintf("%d facilities add %.0f", len(f.Facilities), facilityContribution))
	}

	safetyContribution := 0.0
	if f.SafetyScore != nil {
		safetyContribution = (*f.SafetyScore - SafetyPivot) * SafetyRate
		explain("safety", fmt.Sprintf("safety score %.0f adjusts the estimate by %.0f", *f.SafetyScore, safetyContribution))
	}
	add("safety", safetyContribution)

	// Step 4: sum and the single final rounding step.
	raw := subtotal + districtContribution + buildingContribution + roomContribution +
		floorContribution + ageContribution + transportContribution +
		facilityContribution + safetyContribution
	price := stats.RoundHalfAway(raw)

	// Step 5: confidence from known factors and typicality.
	confidence := p.confidence(f, knownDistrict)

	// Step 6: range from confidence.
	margin := price * (1 - confidence) * RangeMarginScale
	rangeMin := math.Max(stats.RoundHalfAway(price-margin), MinRangeFloor)
	if rangeMin > price {
		rangeMin = price
	}
	rangeMax := stats.RoundHalfAway(price + margin)
	if rangeMax < price {
		rangeMax = price
	}

	return &Prediction{
		Price:        price,
		Confidence:   confidence,
		Range:        PriceRange{Min: rangeMin, Max: rangeMax},
		Breakdown:    breakdown,
		Explanations: explanations,
		ModelVersion: ModelVersion,
	}, nil
}

// confidence scores how much of the estimate is backed by known,
// typical-range inputs.  It is not a statistical prediction interval.
func (p *Predictor) confidence(f *feature.PropertyFeature, knownDistrict bool) float64 {
	known := 0
	if f.BuildingType != "" {
		known++
	}
	if f.Rooms != nil {
		known++
	}
	if f.Floor != nil {
		known++
	}
	if f.AgeYears != nil {
		known++
	}
	if f.SafetyScore != nil {
		known++
	}
	if len(f.TransportAccess) > 0 {
		known++
	}
	if len(f.Facilities) > 0 {
		known++
	}

	confidence := ConfidenceBase + float64(known)*ConfidencePerFactor

	if f.AreaPing < TypicalAreaMin || f.AreaPing > TypicalAreaMax {
		confidence -= PenaltyAtypicalArea
	}
	if f.AgeYears != nil && *f.AgeYears > OldBuildingYears {
		confidence -= PenaltyOldBuilding
	}
	if !knownDistrict {
		confidence -= PenaltyUnknownDistrict
	}

	return clamp01(confidence)
}

// PredictBatch scores every feature in order.  The input is expected to be
// pre-validated by the normalization boundary; the first structurally
// invalid feature aborts the batch.
func (p *Predictor) PredictBatch(features []*feature.PropertyFeature) ([]*Prediction, error) {
	out := make([]*Prediction, 0, len(features))
	for i, f := range features {
		pred, err := p.Predict(f)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeUnknown, fmt.Sprintf("batch item %d", i))
		}
		out = append(out, pred)
	}
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
