package mapview

import (
	"errors"
	"testing"

	"github.com/kass/go-geo-utm/pkg/utm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewControllerDefaults(t *testing.T) {
	c, err := NewController(Options{})
	require.NoError(t, err)

	s := c.State()
	assert.Equal(t, DefaultCenter, s.Center)
	assert.Equal(t, 18, s.Zoom)
	assert.Equal(t, LayerOSM, s.Base)
	assert.Equal(t, map[string]bool{LayerOrthoBanos: true}, s.Overlays)
	assert.Equal(t, "17S", s.Zone)
	assert.Nil(t, s.Last)
	assert.Len(t, c.Layers(), 4)
}

func TestSelectBaseLayerIsExclusive(t *testing.T) {
	c, err := NewController(Options{})
	require.NoError(t, err)

	for _, id := range []string{LayerGoogleSatellite, LayerGoogleHybrid, LayerOSM} {
		require.NoError(t, c.SelectBaseLayer(id))
		assert.Equal(t, id, c.State().Base)

		visible := c.VisibleLayers()
		bases := 0
		for _, l := range visible {
			if l.Kind == KindBase {
				bases++
			}
		}
		assert.Equal(t, 1, bases)
		assert.Equal(t, id, visible[0].ID)
	}

	err = c.SelectBaseLayer("bing")
	assert.True(t, errors.Is(err, ErrUnknownLayer))

	err = c.SelectBaseLayer(LayerOrthoBanos)
	assert.True(t, errors.Is(err, ErrWrongLayerKind))
	assert.Equal(t, LayerOSM, c.State().Base)
}

func TestSetOverlayVisible(t *testing.T) {
	c, err := NewController(Options{})
	require.NoError(t, err)

	require.NoError(t, c.SetOverlayVisible(LayerOrthoBanos, false))
	assert.False(t, c.State().Overlays[LayerOrthoBanos])
	assert.Len(t, c.VisibleLayers(), 1)

	// hiding twice is harmless
	require.NoError(t, c.SetOverlayVisible(LayerOrthoBanos, false))

	require.NoError(t, c.SetOverlayVisible(LayerOrthoBanos, true))
	assert.True(t, c.State().Overlays[LayerOrthoBanos])
	assert.Len(t, c.VisibleLayers(), 2)

	assert.ErrorIs(t, c.SetOverlayVisible(LayerOSM, true), ErrWrongLayerKind)
	assert.ErrorIs(t, c.SetOverlayVisible("nope", true), ErrUnknownLayer)
}

func TestNewControllerOptions(t *testing.T) {
	center := utm.GeodeticCoordinate{Latitude: -1.39, Longitude: -78.42}
	c, err := NewController(Options{
		Center:   &center,
		Zoom:     15,
		Base:     LayerGoogleHybrid,
		Overlays: []string{},
	})
	require.NoError(t, err)

	s := c.State()
	assert.Equal(t, center, s.Center)
	assert.Equal(t, 15, s.Zoom)
	assert.Equal(t, LayerGoogleHybrid, s.Base)
	assert.False(t, s.Overlays[LayerOrthoBanos])

	_, err = NewController(Options{Base: LayerOrthoBanos})
	assert.ErrorIs(t, err, ErrWrongLayerKind)

	_, err = NewController(Options{Layers: []Layer{{ID: "x", Kind: KindOverlay}}})
	assert.ErrorIs(t, err, ErrUnknownLayer)

	_, err = NewController(Options{Layers: []Layer{{ID: "x", Kind: KindBase}, {ID: "x", Kind: KindBase}}})
	assert.Error(t, err)
}

func TestPointerEvents(t *testing.T) {
	c, err := NewController(Options{})
	require.NoError(t, err)

	r := c.PointerMoved(DefaultCenter.Latitude, DefaultCenter.Longitude)
	assert.Equal(t, EventMove, r.Event)
	assert.Equal(t, "Lat: -1.404323\nLng: -78.454612", r.GeodeticText)
	assert.Equal(t, "X: 783332.332\nY: 9844102.920", r.ProjectedText)
	assert.Equal(t, utm.Project(DefaultCenter.Latitude, DefaultCenter.Longitude), r.Projected)

	r = c.Clicked(0, -81)
	assert.Equal(t, "Clicked WGS84:\nLat: 0.000000\nLng: -81.000000", r.GeodeticText)
	assert.Equal(t, "Clicked UTM 17S:\nX: 500000.000\nY: 10000000.000", r.ProjectedText)

	s := c.State()
	require.NotNil(t, s.Last)
	assert.Equal(t, r, *s.Last)
}

func TestSetView(t *testing.T) {
	c, err := NewController(Options{})
	require.NoError(t, err)

	require.NoError(t, c.SetView(utm.GeodeticCoordinate{Latitude: -1.5, Longitude: -78.5}, 12))
	assert.Equal(t, 12, c.State().Zoom)

	assert.ErrorIs(t, c.SetView(utm.GeodeticCoordinate{Latitude: 95}, 12), utm.ErrInvalidCoordinate)
	assert.Error(t, c.SetView(DefaultCenter, -1))
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent("click")
	require.NoError(t, err)
	assert.Equal(t, EventClick, ev)

	_, err = ParseEvent("hover")
	assert.Error(t, err)
}
