package utm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKrugerKnownPoints(t *testing.T) {
	p := New(Zone17S, WithSeries(SeriesKruger))

	testCases := []struct {
		lat, lng          float64
		easting, northing float64
	}{
		{0, -81, 500000, 10000000},
		{-1.4, -81, 500000, 9845257.626},
		{centerLat, centerLng, 783247.175, 9844625.565},
		{-3, -79, 722292.169, 9668203.708},
		{2, -83, 277539.363, 10221196.539},
		{1, -78, 833927.937, 10110682.838},
	}

	for _, tc := range testCases {
		c := p.Project(tc.lat, tc.lng)
		assert.InDelta(t, tc.easting, c.Easting, 0.002, "(%v, %v)", tc.lat, tc.lng)
		assert.InDelta(t, tc.northing, c.Northing, 0.002, "(%v, %v)", tc.lat, tc.lng)
	}
}

// Within a degree of the central meridian wroge/wgs84 agrees with the
// Krüger series to a few centimetres.
func TestKrugerMatchesLibraryNearMeridian(t *testing.T) {
	p := New(Zone17S, WithSeries(SeriesKruger))
	transform := Zone17S.LibraryTransform()

	for lat := -4.0; lat <= 1.0; lat += 0.25 {
		for lng := -82.0; lng <= -80.0; lng += 0.25 {
			east, north, _ := transform(lng, lat, 0)
			c := p.ProjectRaw(lat, lng)
			assert.InDelta(t, east, c.Easting, 0.04, "(%v, %v)", lat, lng)
			assert.InDelta(t, north, c.Northing, 0.04, "(%v, %v)", lat, lng)
		}
	}
}

// wroge/wgs84 evaluates Snyder's series with its e1² in place of the second
// eccentricity, so its easting drifts by about 0.038 m per cubed degree from
// the meridian. Across the whole region this is a decimetre-level check.
func TestKrugerLibraryGapAwayFromMeridian(t *testing.T) {
	p := New(Zone17S, WithSeries(SeriesKruger))
	transform := Zone17S.LibraryTransform()

	for lat := -4.0; lat <= 1.0; lat += 0.25 {
		for lng := -83.0; lng <= -78.0; lng += 0.25 {
			dLng := math.Abs(lng - Zone17S.CentralMeridian)
			tolerance := 0.005 + 0.05*dLng*dLng*dLng

			east, north, _ := transform(lng, lat, 0)
			c := p.ProjectRaw(lat, lng)
			assert.InDelta(t, east, c.Easting, tolerance, "(%v, %v)", lat, lng)
			assert.InDelta(t, north, c.Northing, tolerance, "(%v, %v)", lat, lng)
		}
	}

	// the gap is real at the map centre, and the Krüger side is the correct one
	east, _, _ := transform(centerLng, centerLat, 0)
	c := p.ProjectRaw(centerLat, centerLng)
	assert.InDelta(t, 0.628, c.Easting-east, 0.01)
	assert.InDelta(t, 783247.175, c.Easting, 0.002)
}

// The reference series is not a rigorous transverse Mercator, but it must
// order points the same way an independent implementation does.
func TestReferenceOrderingMatchesLibrary(t *testing.T) {
	transform := Zone17S.LibraryTransform()

	for _, lng := range []float64{-81, centerLng, -82.5} {
		_, prevLib, _ := transform(lng, -5, 0)
		prevRef := Project(-5, lng).Northing
		for lat := -4.9; lat <= 1.0; lat += 0.1 {
			_, lib, _ := transform(lng, lat, 0)
			ref := Project(lat, lng).Northing
			assert.Equal(t, lib > prevLib, ref > prevRef, "lat=%v lng=%v", lat, lng)
			prevLib, prevRef = lib, ref
		}
	}

	for _, lat := range []float64{-3, centerLat, 0.5} {
		eastLib, _, _ := transform(-80, lat, 0)
		westLib, _, _ := transform(-82, lat, 0)
		assert.Equal(t, eastLib > westLib, Project(lat, -80).Easting > Project(lat, -82).Easting)
	}
}
