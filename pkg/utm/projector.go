// Package utm projects WGS84 latitude/longitude onto transverse Mercator
// (UTM) grid coordinates. The default configuration is zone 17 south and
// reproduces the coordinate readout of the Baños orthophoto map.
package utm

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidCoordinate is returned by ProjectChecked for inputs that
	// cannot yield a finite grid coordinate.
	ErrInvalidCoordinate = errors.New("utm: invalid coordinate")
	ErrUnknownSeries     = errors.New("utm: unknown series")
)

// GeodeticCoordinate is a latitude/longitude pair in degrees.
type GeodeticCoordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// ProjectedCoordinate is a grid position in metres.
type ProjectedCoordinate struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

func (c ProjectedCoordinate) String() string {
	return fmt.Sprintf("X: %.3f Y: %.3f", c.Easting, c.Northing)
}

// Series selects the series expansion used for the forward projection.
type Series int

const (
	// SeriesReference is the truncated series of the original map readout.
	// It is kept bit-compatible so published coordinates do not move.
	SeriesReference Series = iota
	// SeriesKruger is the third order Krüger series through conformal latitude.
	SeriesKruger
)

func (s Series) String() string {
	switch s {
	case SeriesReference:
		return "reference"
	case SeriesKruger:
		return "kruger"
	}
	return fmt.Sprintf("Series(%d)", int(s))
}

// ParseSeries accepts the names produced by Series.String.
func ParseSeries(name string) (Series, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reference":
		return SeriesReference, nil
	case "kruger", "krüger":
		return SeriesKruger, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSeries, name)
}

// Projector converts geodetic coordinates for one zone. It holds only
// immutable values and is safe for concurrent use.
type Projector struct {
	zone   Zone
	series Series
}

// Option configures a Projector.
type Option func(*Projector)

// WithSeries selects the series expansion.
func WithSeries(s Series) Option {
	return func(p *Projector) {
		p.series = s
	}
}

// New returns a projector for zone.
func New(zone Zone, opts ...Option) *Projector {
	p := &Projector{zone: zone}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewChecked is New for zones built by hand: it rejects parameters that
// cannot describe a projection.
func NewChecked(zone Zone, opts ...Option) (*Projector, error) {
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	p := New(zone, opts...)
	if p.series != SeriesReference && p.series != SeriesKruger {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeries, p.series)
	}
	return p, nil
}

var zone17S = New(Zone17S)

// Project converts to UTM 17S with the reference series, rounded to the
// millimetre.
func Project(latitudeDegrees, longitudeDegrees float64) ProjectedCoordinate {
	return zone17S.Project(latitudeDegrees, longitudeDegrees)
}

func (p *Projector) Zone() Zone {
	return p.zone
}

func (p *Projector) Series() Series {
	return p.series
}

// Project returns the grid coordinate rounded to 3 decimals. Out of range
// input is not rejected; the poles yield non-finite values.
func (p *Projector) Project(latitudeDegrees, longitudeDegrees float64) ProjectedCoordinate {
	c := p.ProjectRaw(latitudeDegrees, longitudeDegrees)
	return ProjectedCoordinate{
		Easting:  RoundMillimeter(c.Easting),
		Northing: RoundMillimeter(c.Northing),
	}
}

// ProjectRaw is Project without the final rounding.
func (p *Projector) ProjectRaw(latitudeDegrees, longitudeDegrees float64) ProjectedCoordinate {
	if p.series == SeriesKruger {
		return p.kruger(latitudeDegrees, longitudeDegrees)
	}
	return p.reference(latitudeDegrees, longitudeDegrees)
}

// ProjectChecked is Project with input validation.
func (p *Projector) ProjectChecked(latitudeDegrees, longitudeDegrees float64) (ProjectedCoordinate, error) {
	if err := CheckCoordinate(latitudeDegrees, longitudeDegrees); err != nil {
		return ProjectedCoordinate{}, err
	}
	return p.Project(latitudeDegrees, longitudeDegrees), nil
}

// ProjectCoordinate projects a GeodeticCoordinate value.
func (p *Projector) ProjectCoordinate(c GeodeticCoordinate) ProjectedCoordinate {
	return p.Project(c.Latitude, c.Longitude)
}

// CheckCoordinate rejects non-finite values and latitudes outside (-90, 90).
func CheckCoordinate(latitudeDegrees, longitudeDegrees float64) error {
	if math.IsNaN(latitudeDegrees) || math.IsInf(latitudeDegrees, 0) ||
		math.IsNaN(longitudeDegrees) || math.IsInf(longitudeDegrees, 0) {
		return fmt.Errorf("%w: non-finite input (%v, %v)", ErrInvalidCoordinate, latitudeDegrees, longitudeDegrees)
	}
	if latitudeDegrees <= -90 || latitudeDegrees >= 90 {
		return fmt.Errorf("%w: latitude %v outside (-90, 90)", ErrInvalidCoordinate, latitudeDegrees)
	}
	return nil
}

// RoundMillimeter rounds half away from zero at the third decimal.
// NaN and infinities pass through.
func RoundMillimeter(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// reference evaluates the series exactly as the original readout did,
// operation order included.
func (p *Projector) reference(lat, lng float64) ProjectedCoordinate {
	a := p.zone.Ellipsoid.SemiMajorAxis
	f := p.zone.Ellipsoid.Flattening()
	k0 := p.zone.ScaleFactor
	e := math.Sqrt(2*f - f*f)
	e2 := e * e
	n := (a - a*(1-f)) / (a + a*(1-f))

	latRad := lat * math.Pi / 180
	lngRad := lng * math.Pi / 180

	lng0 := p.zone.CentralMeridian * math.Pi / 180
	deltaLng := lngRad - lng0

	A := a / (1 + n) * (1 + n*n/4 + n*n*n*n/64)
	alpha1 := n/2 - 2*n*n*n/3
	alpha2 := 13*n*n/48 - 3*n*n*n*n/5
	alpha3 := 61 * n * n * n / 240

	t := math.Tan(latRad)
	eta2 := e2 * math.Cos(latRad) * math.Cos(latRad) / (1 - e2)
	N := a / math.Sqrt(1-e2*math.Sin(latRad)*math.Sin(latRad))

	T := t * t
	C := eta2

	x := k0 * N * (deltaLng + (1-T+C)*deltaLng*deltaLng*deltaLng/6 +
		(5-18*T+T*T+72*C-58*eta2)*math.Pow(deltaLng, 5)/120)

	M := A * (latRad - alpha1*math.Sin(2*latRad) + alpha2*math.Sin(4*latRad) - alpha3*math.Sin(6*latRad))

	y := k0 * (M + N*math.Tan(latRad)*(deltaLng*deltaLng/2+
		(5-T+9*C+4*C*C)*math.Pow(deltaLng, 4)/24+
		(61-58*T+T*T+600*C-330*eta2)*math.Pow(deltaLng, 6)/720))

	return ProjectedCoordinate{
		Easting:  x + p.zone.FalseEasting,
		Northing: y + p.zone.FalseNorthing,
	}
}
