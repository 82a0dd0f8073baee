package place

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Empty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]RawMatch{}))
}

func TestNormalize_SkipsUnparsableCoordinatesKeepingOrder(t *testing.T) {
	matches := []RawMatch{
		{Name: "first", Lat: "10.1", Lon: "106.1"},
		{Name: "missing lat", Lon: "106.2"},
		{Name: "second", Lat: "10.3", Lon: "106.3"},
		{Name: "garbage", Lat: "abc", Lon: "106.4"},
		{Name: "nan", Lat: "NaN", Lon: "106.5"},
		{Name: "inf", Lat: "10.6", Lon: "+Inf"},
		{Name: "third", Lat: "10.7", Lon: "106.7"},
	}

	got := Normalize(matches)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Label)
	assert.Equal(t, "second", got[1].Label)
	assert.Equal(t, "third", got[2].Label)
	assert.Equal(t, Point{Lat: 10.1, Lon: 106.1}, got[0].Point)
}

func TestNormalize_PopulatesLabelAndFullName(t *testing.T) {
	matches := []RawMatch{{
		Name:        "Chợ Bến Thành",
		DisplayName: "  Chợ Bến Thành, Quận 1, TPHCM  ",
		Lat:         "10.772",
		Lon:         "106.698",
		Address:     AddressDetails{Suburb: "Phường Bến Thành"},
	}}

	got := Normalize(matches)
	require.Len(t, got, 1)
	assert.Equal(t, "Chợ Bến Thành — P. Bến Thành", got[0].Label)
	assert.Equal(t, "Chợ Bến Thành, Quận 1, TPHCM", got[0].FullName)
}

func TestNormalize_LabelFallsBackToDisplayName(t *testing.T) {
	matches := []RawMatch{{
		DisplayName: "Bến Nhà Rồng, Quận 4",
		Lat:         "10.768",
		Lon:         "106.706",
	}}

	got := Normalize(matches)
	require.Len(t, got, 1)
	assert.Equal(t, "Bến Nhà Rồng", got[0].Label)
}

func TestNormalize_PlaceholderWhenNothingUsable(t *testing.T) {
	matches := []RawMatch{{Lat: "10.0", Lon: "106.0"}}

	got := Normalize(matches)
	require.Len(t, got, 1)
	assert.Equal(t, "Không rõ", got[0].Label)
	assert.Empty(t, got[0].FullName)
}
