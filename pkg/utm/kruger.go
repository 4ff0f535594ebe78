package utm

import "math"

// kruger is the forward Krüger series to third order in n, evaluated on the
// conformal latitude. Accurate to well under a millimetre inside a zone.
func (p *Projector) kruger(lat, lng float64) ProjectedCoordinate {
	a := p.zone.Ellipsoid.SemiMajorAxis
	f := p.zone.Ellipsoid.Flattening()
	k0 := p.zone.ScaleFactor

	n := f / (2 - f)
	n2 := n * n
	n3 := n2 * n
	e := math.Sqrt(f * (2 - f))

	A := a / (1 + n) * (1 + n2/4 + n2*n2/64)
	alpha := [3]float64{
		n/2 - 2*n2/3 + 5*n3/16,
		13*n2/48 - 3*n3/5,
		61 * n3 / 240,
	}

	phi := lat * math.Pi / 180
	lambda := (lng - p.zone.CentralMeridian) * math.Pi / 180

	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - e*math.Atanh(e*sinPhi))
	xi := math.Atan2(t, math.Cos(lambda))
	eta := math.Atanh(math.Sin(lambda) / math.Sqrt(1+t*t))

	x, y := eta, xi
	for j, aj := range alpha {
		k := 2 * float64(j+1)
		x += aj * math.Cos(k*xi) * math.Sinh(k*eta)
		y += aj * math.Sin(k*xi) * math.Cosh(k*eta)
	}

	return ProjectedCoordinate{
		Easting:  k0*A*x + p.zone.FalseEasting,
		Northing: k0*A*y + p.zone.FalseNorthing,
	}
}
