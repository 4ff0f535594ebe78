package features

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kass/go-geo-utm/pkg/models"
	"github.com/kass/go-geo-utm/pkg/utm"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "plaza", "properties": {"name": "centro"},
     "geometry": {"type": "Point", "coordinates": [-78.454611807775, -1.4043226899226577]}},
    {"type": "Feature", "properties": {"name": "meridian"},
     "geometry": {"type": "LineString", "coordinates": [[-81, 0], [-80, -1.4]]}}
  ]
}`

func TestProjectJSON(t *testing.T) {
	out, err := ProjectJSON([]byte(collection), utm.New(utm.Zone17S))
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(out)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	plaza := fc.Features[0]
	assert.Equal(t, "plaza", plaza.ID)
	assert.Equal(t, orb.Point{783332.332, 9844102.920}, plaza.Geometry)
	assert.Equal(t, "centro", plaza.Properties.MustString("name"))
	assert.Equal(t, 783332.332, plaza.Properties.MustFloat64("easting"))
	assert.Equal(t, "17S", plaza.Properties.MustString("zone"))

	line, ok := fc.Features[1].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.Point{500000, 10000000}, line[0])
	assert.Equal(t, orb.Point{611280.87, 9844712.946}, line[1])

	assert.Contains(t, string(out), "EPSG:32717")
}

func TestProjectCollectionKeepsInput(t *testing.T) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(collection))
	require.NoError(t, err)

	_, err = ProjectCollection(fc, utm.New(utm.Zone17S))
	require.NoError(t, err)
	assert.Equal(t, orb.Point{-78.454611807775, -1.4043226899226577}, fc.Features[0].Geometry)
}

func TestProjectCollectionRejectsPoles(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{-78, 90}))

	_, err := ProjectCollection(fc, utm.New(utm.Zone17S))
	assert.ErrorIs(t, err, utm.ErrInvalidCoordinate)

	_, err = ProjectJSON([]byte(`{"type":`), utm.New(utm.Zone17S))
	assert.Error(t, err)
}

func TestPointsRoundTrip(t *testing.T) {
	grid := utm.Project(-1.4, -80)
	points := []*models.Point{
		{ID: "a", Location: &models.Location{Lat: -1.4, Lon: -80}, Grid: &grid},
		{ID: "b", Location: &models.Location{Lat: 0, Lon: -81}},
		{ID: "skip"},
	}

	fc := FromPoints(points)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, 611280.87, fc.Features[0].Properties.MustFloat64("easting"))

	back := PointsFromCollection(fc)
	require.Len(t, back, 2)
	assert.Equal(t, "a", back[0].ID)
	assert.Equal(t, -1.4, back[0].Location.Lat)
	assert.Equal(t, -80.0, back[0].Location.Lon)
}

func TestReadCSV(t *testing.T) {
	in := "id,lat,lng\nplaza, -1.4043226899226577, -78.454611807775\norigin,0,-81\n"
	points, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "plaza", points[0].ID)
	assert.Equal(t, -78.454611807775, points[0].Location.Lon)

	_, err = ReadCSV(strings.NewReader("a,1,2\nb,x,3\n"))
	assert.ErrorIs(t, err, ErrBadRecord)

	_, err = ReadCSV(strings.NewReader("a,1\n"))
	assert.ErrorIs(t, err, ErrBadRecord)
}

func TestWriteCSV(t *testing.T) {
	grid := utm.Project(0, -81)
	points := []*models.Point{
		{ID: "origin", Location: &models.Location{Lat: 0, Lon: -81}, Grid: &grid},
		{ID: "raw", Location: &models.Location{Lat: -1.5, Lon: -78.4}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, points))
	assert.Equal(t,
		"id,lat,lng,easting,northing\n"+
			"origin,0,-81,500000.000,10000000.000\n"+
			"raw,-1.5,-78.4,,\n",
		buf.String())
}
