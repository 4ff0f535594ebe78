package utm

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidZone is returned when a zone number or zone parameters are unusable.
var ErrInvalidZone = errors.New("utm: invalid zone")

// Ellipsoid describes the reference ellipsoid. A and Fi make it usable as a
// wgs84.Spheroid.
type Ellipsoid struct {
	Name              string
	SemiMajorAxis     float64
	InverseFlattening float64
}

// WGS84 is the World Geodetic System 1984 ellipsoid.
var WGS84 = Ellipsoid{
	Name:              "WGS 84",
	SemiMajorAxis:     6378137.0,
	InverseFlattening: 298.257223563,
}

func (e Ellipsoid) A() float64 {
	return e.SemiMajorAxis
}

func (e Ellipsoid) Fi() float64 {
	return e.InverseFlattening
}

// Flattening returns f = 1/Fi.
func (e Ellipsoid) Flattening() float64 {
	return 1 / e.InverseFlattening
}

// Zone holds every constant the projection needs.
type Zone struct {
	Ellipsoid       Ellipsoid
	CentralMeridian float64 // degrees
	ScaleFactor     float64
	FalseEasting    float64 // metres
	FalseNorthing   float64 // metres
}

// Zone17S is UTM zone 17 south on WGS84 (EPSG:32717).
var Zone17S = Zone{
	Ellipsoid:       WGS84,
	CentralMeridian: -81,
	ScaleFactor:     0.9996,
	FalseEasting:    500000,
	FalseNorthing:   10000000,
}

// NewZone returns the standard WGS84 UTM zone for number 1..60.
func NewZone(number int, south bool) (Zone, error) {
	if number < 1 || number > 60 {
		return Zone{}, fmt.Errorf("%w: number %d outside 1..60", ErrInvalidZone, number)
	}
	z := Zone{
		Ellipsoid:       WGS84,
		CentralMeridian: float64(number*6 - 183),
		ScaleFactor:     0.9996,
		FalseEasting:    500000,
	}
	if south {
		z.FalseNorthing = 10000000
	}
	return z, nil
}

// Validate checks that the parameters describe a usable projection.
func (z Zone) Validate() error {
	if !(z.Ellipsoid.SemiMajorAxis > 0) || !(z.Ellipsoid.InverseFlattening > 1) {
		return fmt.Errorf("%w: bad ellipsoid %+v", ErrInvalidZone, z.Ellipsoid)
	}
	if !(z.ScaleFactor > 0) {
		return fmt.Errorf("%w: scale factor %v", ErrInvalidZone, z.ScaleFactor)
	}
	if math.IsNaN(z.CentralMeridian) || math.Abs(z.CentralMeridian) > 180 {
		return fmt.Errorf("%w: central meridian %v", ErrInvalidZone, z.CentralMeridian)
	}
	return nil
}

// Number is the UTM zone number implied by the central meridian, or 0 if the
// meridian is not a standard one.
func (z Zone) Number() int {
	n := (z.CentralMeridian + 183) / 6
	if n != math.Trunc(n) || n < 1 || n > 60 {
		return 0
	}
	return int(n)
}

// South reports whether the zone uses the southern false northing.
func (z Zone) South() bool {
	return z.FalseNorthing > 0
}

// Label returns e.g. "17S", or "TM" for non-standard meridians.
func (z Zone) Label() string {
	n := z.Number()
	if n == 0 {
		return "TM"
	}
	if z.South() {
		return fmt.Sprintf("%dS", n)
	}
	return fmt.Sprintf("%dN", n)
}

// EPSG returns the EPSG code for a standard WGS84 UTM zone, or 0.
func (z Zone) EPSG() int {
	n := z.Number()
	if n == 0 || z.Ellipsoid != WGS84 {
		return 0
	}
	if z.South() {
		return 32700 + n
	}
	return 32600 + n
}
