// Package features moves GeoJSON and CSV point data between WGS84 and the
// projected grid.
package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kass/go-geo-utm/pkg/models"
	"github.com/kass/go-geo-utm/pkg/utm"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

// ProjectGeometry returns a copy of g with every position projected.
// GeoJSON positions are (lng, lat); output positions are (easting, northing).
func ProjectGeometry(g orb.Geometry, p *utm.Projector) (orb.Geometry, error) {
	var bad error
	out := project.Geometry(orb.Clone(g), func(pt orb.Point) orb.Point {
		if err := utm.CheckCoordinate(pt.Lat(), pt.Lon()); err != nil {
			if bad == nil {
				bad = err
			}
			return pt
		}
		c := p.Project(pt.Lat(), pt.Lon())
		return orb.Point{c.Easting, c.Northing}
	})
	if bad != nil {
		return nil, bad
	}
	return out, nil
}

// ProjectCollection projects every feature of fc into a new collection.
// Point features also get easting/northing properties. The collection is
// tagged with the zone's EPSG code when there is one.
func ProjectCollection(fc *geojson.FeatureCollection, p *utm.Projector) (*geojson.FeatureCollection, error) {
	out := geojson.NewFeatureCollection()
	for i, f := range fc.Features {
		g, err := ProjectGeometry(f.Geometry, p)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		nf := geojson.NewFeature(g)
		nf.ID = f.ID
		for k, v := range f.Properties {
			nf.Properties[k] = v
		}
		if pt, ok := g.(orb.Point); ok {
			nf.Properties["easting"] = pt[0]
			nf.Properties["northing"] = pt[1]
		}
		nf.Properties["zone"] = p.Zone().Label()
		out.Append(nf)
	}

	if code := p.Zone().EPSG(); code != 0 {
		out.ExtraMembers = geojson.Properties{
			"crs": map[string]interface{}{
				"type":       "name",
				"properties": map[string]interface{}{"name": fmt.Sprintf("EPSG:%d", code)},
			},
		}
	}
	return out, nil
}

// ProjectJSON decodes a FeatureCollection, projects it and re-encodes it.
func ProjectJSON(data []byte, p *utm.Projector) ([]byte, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode feature collection: %w", err)
	}
	projected, err := ProjectCollection(fc, p)
	if err != nil {
		return nil, err
	}
	return projected.MarshalJSON()
}

// FromPoints builds a WGS84 collection of point features. Points that carry
// a grid position keep it as properties.
func FromPoints(points []*models.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, pt := range points {
		if pt == nil || pt.Location == nil {
			continue
		}
		f := geojson.NewFeature(orb.Point{pt.Location.Lon, pt.Location.Lat})
		f.ID = pt.ID
		f.Properties["id"] = pt.ID
		if pt.Grid != nil {
			f.Properties["easting"] = pt.Grid.Easting
			f.Properties["northing"] = pt.Grid.Northing
		}
		fc.Append(f)
	}
	return fc
}

// PointsFromCollection extracts point features as models.Point. Features
// that are not points are skipped. The id comes from the feature id or an
// "id" property, falling back to the feature index.
func PointsFromCollection(fc *geojson.FeatureCollection) []*models.Point {
	var points []*models.Point
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		id := f.Properties.MustString("id", "")
		if s, ok := f.ID.(string); ok && s != "" {
			id = s
		}
		if id == "" {
			id = strconv.Itoa(i)
		}
		points = append(points, &models.Point{
			ID:       id,
			Location: &models.Location{Lat: pt.Lat(), Lon: pt.Lon()},
		})
	}
	return points
}

var ErrBadRecord = errors.New("features: bad csv record")

// ReadCSV reads "id,lat,lng" records. A first line whose lat column is not
// a number is treated as a header.
func ReadCSV(r io.Reader) ([]*models.Point, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var points []*models.Point
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line, err)
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if latErr != nil || lngErr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadRecord, line, strings.Join(record, ","))
		}
		points = append(points, &models.Point{
			ID:       strings.TrimSpace(record[0]),
			Location: &models.Location{Lat: lat, Lon: lng},
		})
	}
	return points, nil
}

// WriteCSV writes "id,lat,lng,easting,northing" with a header. Easting and
// northing are formatted with three decimals and left empty when unknown.
func WriteCSV(w io.Writer, points []*models.Point) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "lat", "lng", "easting", "northing"}); err != nil {
		return err
	}
	for _, pt := range points {
		if pt == nil || pt.Location == nil {
			continue
		}
		row := []string{
			pt.ID,
			strconv.FormatFloat(pt.Location.Lat, 'f', -1, 64),
			strconv.FormatFloat(pt.Location.Lon, 'f', -1, 64),
			"", "",
		}
		if pt.Grid != nil {
			row[3] = strconv.FormatFloat(pt.Grid.Easting, 'f', 3, 64)
			row[4] = strconv.FormatFloat(pt.Grid.Northing, 'f', 3, 64)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
