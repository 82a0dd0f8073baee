package place

import "strings"

// unknownPlace is the worst-case label when a match carries no usable name.
const unknownPlace = "Không rõ"

// maxLabelSegments caps the address segments appended after the base name.
// Segments are already at most three by construction; this is a safety bound.
const maxLabelSegments = 3

// beautifications are locale-specific administrative-prefix abbreviations,
// applied to every occurrence, in order.
var beautifications = [...][2]string{
	{"Phường ", "P. "},
	{"Khu phố ", "KP "},
	{"Đường ", ""},
}

// BuildLabel converts a raw geocoder match into a short display label.
// It is total: every input, however malformed, yields a non-empty string.
func BuildLabel(m RawMatch) string {
	name := strings.TrimSpace(m.Name)
	displayName := strings.TrimSpace(m.DisplayName)

	baseName := name
	if baseName == "" && displayName != "" {
		baseName = strings.TrimSpace(strings.SplitN(displayName, ",", 2)[0])
	}
	if baseName == "" {
		baseName = unknownPlace
	}

	houseNumber := strings.TrimSpace(m.Address.HouseNumber)
	road := strings.TrimSpace(m.Address.Road)
	if road == baseName {
		// Avoid repeating the base name as its own street segment.
		road = ""
	}

	var segments []string
	street := strings.TrimSpace(houseNumber + " " + road)
	if street != "" {
		segments = append(segments, street)
	}
	if nb := strings.TrimSpace(m.Address.Neighbourhood); nb != "" {
		segments = append(segments, nb)
	}
	if sb := strings.TrimSpace(m.Address.Suburb); sb != "" {
		segments = append(segments, sb)
	}
	if len(segments) > maxLabelSegments {
		segments = segments[:maxLabelSegments]
	}

	label := baseName
	if len(segments) > 0 {
		label = baseName + " — " + strings.Join(segments, ", ")
	}

	for _, b := range beautifications {
		label = strings.ReplaceAll(label, b[0], b[1])
	}
	return label
}

// BaseName returns the portion of a label before the en-dash separator,
// used for compact result display.
func BaseName(label string) string {
	return strings.TrimSpace(strings.SplitN(label, "—", 2)[0])
}
