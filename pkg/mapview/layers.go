package mapview

import (
	"fmt"
	"strconv"
	"strings"
)

// LayerKind distinguishes mutually exclusive base layers from overlays.
type LayerKind string

const (
	KindBase    LayerKind = "base"
	KindOverlay LayerKind = "overlay"
)

// WMSOptions carries the parameters of a WMS tile source.
type WMSOptions struct {
	Layers      string `json:"layers"`
	Format      string `json:"format"`
	Transparent bool   `json:"transparent"`
	Version     string `json:"version"`
	CRS         string `json:"crs"`
}

// Layer describes a tile source. Nothing here fetches tiles.
type Layer struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Kind        LayerKind   `json:"kind"`
	URLTemplate string      `json:"url"`
	Subdomains  []string    `json:"subdomains,omitempty"`
	MaxZoom     int         `json:"max_zoom"`
	Attribution string      `json:"attribution"`
	WMS         *WMSOptions `json:"wms,omitempty"`
}

const (
	LayerOSM             = "osm"
	LayerGoogleSatellite = "google-satellite"
	LayerGoogleHybrid    = "google-hybrid"
	LayerOrthoBanos      = "orto-banos"
)

// DefaultLayers is the layer catalog of the Baños orthophoto map.
func DefaultLayers() []Layer {
	google := []string{"mt0", "mt1", "mt2", "mt3"}
	return []Layer{
		{
			ID:          LayerOSM,
			Name:        "OpenStreetMap",
			Kind:        KindBase,
			URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Subdomains:  []string{"a", "b", "c"},
			MaxZoom:     19,
			Attribution: "© OpenStreetMap",
		},
		{
			ID:          LayerGoogleSatellite,
			Name:        "Google Satelital",
			Kind:        KindBase,
			URLTemplate: "https://{s}.google.com/vt/lyrs=s&x={x}&y={y}&z={z}",
			Subdomains:  google,
			MaxZoom:     20,
			Attribution: "© Google Maps",
		},
		{
			ID:          LayerGoogleHybrid,
			Name:        "Google Híbrido",
			Kind:        KindBase,
			URLTemplate: "https://{s}.google.com/vt/lyrs=y&x={x}&y={y}&z={z}",
			Subdomains:  google,
			MaxZoom:     20,
			Attribution: "© Google Maps",
		},
		{
			ID:          LayerOrthoBanos,
			Name:        "Ortomosaico Baños",
			Kind:        KindOverlay,
			URLTemplate: "https://acroming.xyz/geoserver/Banos2/wms",
			MaxZoom:     23,
			Attribution: "Ortofoto Baños2",
			WMS: &WMSOptions{
				Layers:      "Banos2:ORTOMOSAICO_WGS84_OPT_BAÑOS",
				Format:      "image/png",
				Transparent: true,
				Version:     "1.1.1",
				CRS:         "EPSG:3857",
			},
		},
	}
}

// TileURL expands the template for tile x/y at zoom z. Subdomains rotate
// on (x+y) so neighbouring tiles spread across hosts.
func (l Layer) TileURL(x, y, z int) (string, error) {
	if l.WMS != nil {
		return "", fmt.Errorf("layer %s is a WMS source and has no tile template", l.ID)
	}
	if z < 0 || z > l.MaxZoom {
		return "", fmt.Errorf("zoom %d outside 0..%d for layer %s", z, l.MaxZoom, l.ID)
	}
	s := ""
	if len(l.Subdomains) > 0 {
		i := (x + y) % len(l.Subdomains)
		if i < 0 {
			i += len(l.Subdomains)
		}
		s = l.Subdomains[i]
	}
	r := strings.NewReplacer(
		"{s}", s,
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{z}", strconv.Itoa(z),
	)
	return r.Replace(l.URLTemplate), nil
}
