package feature

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/pkg/errors"
)

// numericJunk matches currency symbols, thousands separators, unit suffixes,
// and surrounding whitespace commonly found in scraped listing fields, e.g.
// "NT$ 25,000 元" or "20.5坪".
var numericJunk = regexp.MustCompile(`(?i)(NT\$|US\$|\$|元|坪|萬|,|\s)`)

// districtPattern extracts an administrative district from an address-like
// string, e.g. "台北市大安區復興南路" → "大安區".
var districtPattern = regexp.MustCompile(`\p{Han}{1,3}[區鄉鎮]`)

// whitespaceRun collapses interior whitespace runs in address-like fields.
var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalizer turns loosely typed property records into PropertyFeature
// vectors.  It is stateless and safe for concurrent use.
type Normalizer struct {
	logger logging.Logger
}

// NewNormalizer constructs a Normalizer.  A nil logger falls back to the
// no-op logger.
func NewNormalizer(log logging.Logger) *Normalizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Normalizer{logger: log.Named("normalizer")}
}

// Normalize converts a single raw record into a PropertyFeature.  It returns
// a typed error when the record is missing a usable price or address, when
// the price is below the sanity floor, or when the area is absent or
// non-positive.  Unknown optional fields degrade to nil, never to an error.
func (n *Normalizer) Normalize(raw map[string]interface{}) (*PropertyFeature, error) {
	if raw == nil {
		return nil, errors.InvalidFeature("record is nil")
	}

	rent, rentOK := coerceFloat(firstPresent(raw, "rent_per_month", "rent", "price"))
	if !rentOK {
		return nil, errors.New(errors.ErrCodeMissingPrice, "record has no usable price")
	}
	if rent < MinSanityRent {
		return nil, errors.Newf(errors.ErrCodePriceBelowFloor,
			"rent %.0f is below the sanity floor %.0f", rent, MinSanityRent)
	}

	district := CleanAddress(coerceString(raw["district"]))
	if district == "" {
		address := CleanAddress(coerceString(firstPresent(raw, "address", "location")))
		if address == "" {
			return nil, errors.New(errors.ErrCodeMissingAddress, "record has no usable address or district")
		}
		district = ExtractDistrict(address)
		if district == "" {
			// Fall back to the cleaned address; downstream treats unknown
			// districts with a neutral multiplier.
			district = address
		}
	}

	area, areaOK := coerceFloat(firstPresent(raw, "area_ping", "area"))
	if !areaOK || area <= 0 || math.IsNaN(area) || math.IsInf(area, 0) {
		return nil, errors.InvalidFeature("area_ping must be a positive number")
	}

	f := &PropertyFeature{
		AreaPing:        area,
		District:        district,
		BuildingType:    strings.TrimSpace(coerceString(raw["building_type"])),
		TransportAccess: coerceStringSlice(raw["transport_access"]),
		Facilities:      coerceStringSlice(raw["facilities"]),
		RentPerMonth:    &rent,
	}

	if rooms, ok := coerceInt(raw["rooms"]); ok && rooms > 0 {
		f.Rooms = &rooms
		f.RoomType = ClassifyRooms(rooms)
	}
	if floor, ok := coerceInt(raw["floor"]); ok && floor > 0 {
		f.Floor = &floor
	}
	if age, ok := coerceInt(firstPresent(raw, "age_years", "age")); ok && age >= 0 {
		f.AgeYears = &age
	}
	if safety, ok := coerceFloat(raw["safety_score"]); ok && safety >= 0 && safety <= 100 {
		f.SafetyScore = &safety
	}

	return f, nil
}

// NormalizeBatch converts a slice of raw records, silently filtering the
// ones that fail validation.  The number of dropped records is logged; a
// batch never fails outright.
func (n *Normalizer) NormalizeBatch(raws []map[string]interface{}) []*PropertyFeature {
	out := make([]*PropertyFeature, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		f, err := n.Normalize(raw)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, f)
	}
	if dropped > 0 {
		n.logger.Debug("filtered invalid records from batch",
			logging.Int("dropped", dropped),
			logging.Int("kept", len(out)),
		)
	}
	return out
}

// CleanNumericString strips currency and unit decorations from s and parses
// the remainder as a float, e.g. "NT$ 25,000 元" → 25000.
func CleanNumericString(s string) (float64, error) {
	cleaned := numericJunk.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return 0, errors.New(errors.ErrCodeUnparsableNumber, "empty numeric string")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeUnparsableNumber, "cannot parse %q as a number", s)
	}
	return v, nil
}

// CleanAddress trims and collapses whitespace in an address-like field.
func CleanAddress(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ExtractDistrict returns the first administrative district found in an
// address-like string, or "" when none is present.
func ExtractDistrict(address string) string {
	return districtPattern.FindString(address)
}

func firstPresent(raw map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func coerceFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case float32:
		if f := float64(x); !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
		return 0, false
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := CleanNumericString(x)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceInt(v interface{}) (int, bool) {
	f, ok := coerceFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func coerceString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func coerceStringSlice(v interface{}) []string {
	switch x := v.(type) {
	case []string:
		return trimAll(x)
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		parts := strings.Split(x, ",")
		return trimAll(parts)
	default:
		return nil
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
