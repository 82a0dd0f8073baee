package place

import (
	"math"
	"strconv"
	"strings"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Candidate is a normalized, labeled geocoding result eligible for
// user selection.
type Candidate struct {
	Point    Point  `json:"point"`
	Label    string `json:"label"`
	FullName string `json:"full_name"`
}

// Normalize converts raw geocoder matches into candidates. Matches whose
// coordinates are missing or unparsable are dropped; the relative order of
// the survivors follows the provider's ranking untouched.
func Normalize(matches []RawMatch) []Candidate {
	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		lat, ok := parseFinite(m.Lat)
		if !ok {
			continue
		}
		lon, ok := parseFinite(m.Lon)
		if !ok {
			continue
		}

		displayName := strings.TrimSpace(m.DisplayName)
		label := strings.TrimSpace(BuildLabel(m))
		if label == "" {
			if displayName != "" {
				label = strings.TrimSpace(strings.SplitN(displayName, ",", 2)[0])
			}
			if label == "" {
				label = unknownPlace
			}
		}

		candidates = append(candidates, Candidate{
			Point:    Point{Lat: lat, Lon: lon},
			Label:    label,
			FullName: displayName,
		})
	}
	return candidates
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
