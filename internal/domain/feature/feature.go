// Package feature implements the normalization boundary between loosely
// typed property records and the fixed, validated feature vector consumed by
// the price model.  No other engine component accepts an untyped map.
package feature

// Room-type ordinals produced by ClassifyRooms.
const (
	RoomStudio    = "studio"
	RoomTwo       = "2-room"
	RoomThree     = "3-room"
	RoomFour      = "4-room"
	RoomFivePlus  = "5-room-plus"
)

// MinSanityRent is the floor below which a monthly rent is considered a data
// entry error rather than a real listing.
const MinSanityRent = 1000.0

// PropertyFeature is the normalized, typed representation of a property used
// as model input.  Optional fields are pointers so that "unknown" is
// distinguishable from a zero value; unknown fields degrade to model
// defaults downstream, they never fail normalization.
type PropertyFeature struct {
	AreaPing        float64  `json:"area_ping"`
	District        string   `json:"district"`
	BuildingType    string   `json:"building_type,omitempty"`
	Rooms           *int     `json:"rooms,omitempty"`
	RoomType        string   `json:"room_type,omitempty"`
	Floor           *int     `json:"floor,omitempty"`
	AgeYears        *int     `json:"age_years,omitempty"`
	TransportAccess []string `json:"transport_access,omitempty"`
	Facilities      []string `json:"facilities,omitempty"`
	SafetyScore     *float64 `json:"safety_score,omitempty"`
	RentPerMonth    *float64 `json:"rent_per_month,omitempty"`
}

// ClassifyRooms maps a room count onto the small ordinal room-type scale.
// Zero and negative counts classify as studio.
func ClassifyRooms(rooms int) string {
	switch {
	case rooms <= 1:
		return RoomStudio
	case rooms == 2:
		return RoomTwo
	case rooms == 3:
		return RoomThree
	case rooms == 4:
		return RoomFour
	default:
		return RoomFivePlus
	}
}
