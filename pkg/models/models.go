package models

import "github.com/kass/go-geo-utm/pkg/utm"

// Location is a WGS84 latitude/longitude in degrees
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geodetic converts to the projector's input type
func (l Location) Geodetic() utm.GeodeticCoordinate {
	return utm.GeodeticCoordinate{Latitude: l.Lat, Longitude: l.Lon}
}

// Point is an identified location together with its grid position.
// Grid is filled in by the index when the point is projected.
type Point struct {
	ID       string                   `json:"id"`
	Location *Location                `json:"location"`
	Grid     *utm.ProjectedCoordinate `json:"grid,omitempty"`
}

// GridBox is an axis-aligned rectangle in projected metres
type GridBox struct {
	MinEasting  float64 `json:"min_easting"`
	MinNorthing float64 `json:"min_northing"`
	MaxEasting  float64 `json:"max_easting"`
	MaxNorthing float64 `json:"max_northing"`
}

// Contains reports whether c lies inside the box, edges included
func (b GridBox) Contains(c utm.ProjectedCoordinate) bool {
	return c.Easting >= b.MinEasting && c.Easting <= b.MaxEasting &&
		c.Northing >= b.MinNorthing && c.Northing <= b.MaxNorthing
}
