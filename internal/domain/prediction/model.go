// Package prediction implements the deterministic rental price model: a
// weighted additive scoring function over normalized property features, with
// a parallel confidence score and a derived price range.
//
// Every constant, arithmetic step, and rounding point in this package is
// part of the model contract.  The model is re-implemented in other runtimes
// and validated against shared golden fixtures, so nothing here may depend
// on library-specific floating-point behaviour beyond IEEE-754 doubles.
package prediction

// ModelVersion identifies the constant table below.  Bump it whenever any
// constant changes; golden fixtures are keyed by this version.
const ModelVersion = "additive-v1"

// Additive model constants.  The price is computed as:
//
//	subtotal = BasePrice + area_ping·AreaRatePerPing
//	price    = round( subtotal
//	                + subtotal·(districtMultiplier − 1)
//	                + buildingTypeAdjustment
//	                + roomTypeAdjustment
//	                + min(floor, FloorCap)·FloorRatePerLevel
//	                + min(age, AgeCap)·AgeRatePerYear
//	                + min(len(transport)·TransportBonus, TransportBonusCap)
//	                + min(len(facilities)·FacilityBonus, FacilityBonusCap)
//	                + (safety − SafetyPivot)·SafetyRate )
//
// with round = half-away-from-zero to the nearest whole currency unit as the
// single final rounding step.
const (
	BasePrice       = 15000.0
	AreaRatePerPing = 800.0

	FloorRatePerLevel = 120.0
	FloorCap          = 20

	AgeRatePerYear = -150.0
	AgeCap         = 40

	TransportBonus    = 400.0
	TransportBonusCap = 2000.0

	FacilityBonus    = 250.0
	FacilityBonusCap = 2500.0

	SafetyPivot = 50.0
	SafetyRate  = 30.0
)

// Confidence model constants.  Confidence starts at ConfidenceBase, gains
// ConfidencePerFactor for every known optional factor, loses the listed
// penalties for inputs outside typical ranges, and is clipped to [0,1].
const (
	ConfidenceBase      = 0.5
	ConfidencePerFactor = 0.06

	PenaltyAtypicalArea    = 0.15 // area outside [TypicalAreaMin, TypicalAreaMax]
	PenaltyOldBuilding     = 0.05 // age above OldBuildingYears
	PenaltyUnknownDistrict = 0.10 // district absent from the multiplier table

	TypicalAreaMin   = 8.0
	TypicalAreaMax   = 100.0
	OldBuildingYears = 30
)

// Range constants: margin = price·(1−confidence)·RangeMarginScale; the lower
// bound never drops below MinRangeFloor (unless the price itself is lower).
const (
	RangeMarginScale = 0.35
	MinRangeFloor    = 8000.0
)

// DefaultDistrictMultiplier applies to districts absent from the table.
const DefaultDistrictMultiplier = 1.0

// districtMultipliers scales the area subtotal by location desirability.
var districtMultipliers = map[string]float64{
	"大安區": 1.45,
	"信義區": 1.40,
	"中正區": 1.30,
	"松山區": 1.25,
	"中山區": 1.20,
	"內湖區": 1.10,
	"南港區": 1.05,
	"士林區": 1.05,
	"文山區": 0.95,
	"北投區": 0.95,
	"大同區": 0.95,
	"萬華區": 0.90,
}

// buildingTypeAdjustments is a flat contribution per building category.
var buildingTypeAdjustments = map[string]float64{
	"電梯大樓": 2500.0,
	"住宅大樓": 2000.0,
	"透天厝":  3000.0,
	"公寓":   -1000.0,
	"套房":   -2000.0,
}

// roomTypeAdjustments is a flat contribution per room-type ordinal.
var roomTypeAdjustments = map[string]float64{
	"studio":      -1500.0,
	"2-room":      2000.0,
	"3-room":      4000.0,
	"4-room":      6000.0,
	"5-room-plus": 8000.0,
}

// DistrictMultiplier returns the multiplier for district and whether the
// district is present in the model table.
func DistrictMultiplier(district string) (float64, bool) {
	if m, ok := districtMultipliers[district]; ok {
		return m, true
	}
	return DefaultDistrictMultiplier, false
}
