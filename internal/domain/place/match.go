package place

import (
	"encoding/json"
	"strconv"
)

// RawMatch is a single geocoder result as returned by the provider.
// Decoding is lenient: any field that is missing or carries an unexpected
// JSON type degrades to its zero value instead of failing the batch.
type RawMatch struct {
	Name        string
	DisplayName string
	Lat         string
	Lon         string
	Address     AddressDetails
}

// AddressDetails is the subset of the provider's addressdetails mapping
// the label builder reads.
type AddressDetails struct {
	HouseNumber   string
	Road          string
	Neighbourhood string
	Suburb        string
}

// UnmarshalJSON decodes a provider result field by field so that one
// malformed value never poisons the rest of the match.
func (m *RawMatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Name = lenientString(raw["name"])
	m.DisplayName = lenientString(raw["display_name"])
	m.Lat = lenientString(raw["lat"])
	m.Lon = lenientString(raw["lon"])

	var addr map[string]json.RawMessage
	// A non-mapping address value is treated as an empty mapping.
	_ = json.Unmarshal(raw["address"], &addr)
	m.Address = AddressDetails{
		HouseNumber:   lenientString(addr["house_number"]),
		Road:          lenientString(addr["road"]),
		Neighbourhood: lenientString(addr["neighbourhood"]),
		Suburb:        lenientString(addr["suburb"]),
	}
	return nil
}

// lenientString extracts a string from a raw JSON value, accepting numbers
// (Nominatim has historically flip-flopped on lat/lon typing) and returning
// "" for anything else.
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
