package mapview

import (
	"fmt"

	"github.com/kass/go-geo-utm/pkg/utm"
)

// Event is the pointer interaction that produced a readout.
type Event string

const (
	EventMove  Event = "move"
	EventClick Event = "click"
)

// ParseEvent accepts "move" and "click".
func ParseEvent(s string) (Event, error) {
	switch Event(s) {
	case EventMove, EventClick:
		return Event(s), nil
	}
	return "", fmt.Errorf("mapview: unknown event %q", s)
}

// Readout is what the coordinate panels show for one pointer event.
type Readout struct {
	Event     Event                   `json:"event"`
	Geodetic  utm.GeodeticCoordinate  `json:"geodetic"`
	Projected utm.ProjectedCoordinate `json:"projected"`
	Zone      string                  `json:"zone"`

	GeodeticText  string `json:"geodetic_text"`
	ProjectedText string `json:"projected_text"`
}

// NewReadout projects g and formats both panels. Lines are separated by
// "\n"; clicks get a heading line.
func NewReadout(ev Event, g utm.GeodeticCoordinate, p *utm.Projector) Readout {
	c := p.ProjectCoordinate(g)
	zone := p.Zone().Label()

	geoText := fmt.Sprintf("Lat: %.6f\nLng: %.6f", g.Latitude, g.Longitude)
	gridText := fmt.Sprintf("X: %.3f\nY: %.3f", c.Easting, c.Northing)
	if ev == EventClick {
		geoText = "Clicked WGS84:\n" + geoText
		gridText = fmt.Sprintf("Clicked UTM %s:\n", zone) + gridText
	}

	return Readout{
		Event:         ev,
		Geodetic:      g,
		Projected:     c,
		Zone:          zone,
		GeodeticText:  geoText,
		ProjectedText: gridText,
	}
}
