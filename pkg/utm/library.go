package utm

import "github.com/wroge/wgs84"

// LibraryTransform returns the same zone as implemented by
// github.com/wroge/wgs84, for cross-checking. The returned function takes
// longitude first: (lon, lat, h) -> (easting, northing, h).
func (z Zone) LibraryTransform() func(lon, lat, h float64) (float64, float64, float64) {
	datum := wgs84.Datum{
		Spheroid: z.Ellipsoid,
		Area: wgs84.AreaFunc(func(lon, lat float64) bool {
			return lat > -90 && lat < 90
		}),
	}
	proj := datum.TransverseMercator(z.CentralMeridian, 0, z.ScaleFactor, z.FalseEasting, z.FalseNorthing)
	return wgs84.Transform(wgs84.WGS84().LonLat(), proj)
}
