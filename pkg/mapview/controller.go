// Package mapview owns the state of the coordinate map: view centre, the
// selected base layer, overlay visibility and the last coordinate readout.
// All changes go through explicit method calls on a single Controller.
package mapview

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kass/go-geo-utm/pkg/utm"
)

var (
	ErrUnknownLayer   = errors.New("mapview: unknown layer")
	ErrWrongLayerKind = errors.New("mapview: wrong layer kind")
)

// Sample data centre in Baños, Ecuador.
var DefaultCenter = utm.GeodeticCoordinate{Latitude: -1.4043226899226577, Longitude: -78.454611807775}

const DefaultZoom = 18

// Options configures NewController. Zero values take the defaults.
type Options struct {
	Center    *utm.GeodeticCoordinate
	Zoom      int
	Layers    []Layer
	Base      string
	Overlays  []string // initially visible; nil means every overlay
	Projector *utm.Projector
}

// ViewState is a snapshot of the controller.
type ViewState struct {
	Center   utm.GeodeticCoordinate `json:"center"`
	Zoom     int                    `json:"zoom"`
	Base     string                 `json:"base"`
	Overlays map[string]bool        `json:"overlays"`
	Zone     string                 `json:"zone"`
	Last     *Readout               `json:"last,omitempty"`
}

// Controller is safe for concurrent use.
type Controller struct {
	mu        sync.RWMutex
	projector *utm.Projector
	layers    map[string]Layer
	order     []string
	center    utm.GeodeticCoordinate
	zoom      int
	base      string
	overlays  map[string]bool
	last      *Readout
}

// NewController builds the controller once at startup.
func NewController(opts Options) (*Controller, error) {
	c := &Controller{
		projector: opts.Projector,
		layers:    make(map[string]Layer),
		overlays:  make(map[string]bool),
		center:    DefaultCenter,
		zoom:      DefaultZoom,
	}
	if c.projector == nil {
		c.projector = utm.New(utm.Zone17S)
	}
	if opts.Center != nil {
		c.center = *opts.Center
	}
	if opts.Zoom > 0 {
		c.zoom = opts.Zoom
	}

	layers := opts.Layers
	if len(layers) == 0 {
		layers = DefaultLayers()
	}
	for _, l := range layers {
		if _, dup := c.layers[l.ID]; dup {
			return nil, fmt.Errorf("duplicate layer id %q", l.ID)
		}
		c.layers[l.ID] = l
		c.order = append(c.order, l.ID)
		if l.Kind == KindOverlay {
			c.overlays[l.ID] = opts.Overlays == nil
		} else if c.base == "" {
			c.base = l.ID
		}
	}
	if c.base == "" {
		return nil, fmt.Errorf("%w: no base layer configured", ErrUnknownLayer)
	}

	if opts.Base != "" {
		if err := c.SelectBaseLayer(opts.Base); err != nil {
			return nil, err
		}
	}
	for _, id := range opts.Overlays {
		if err := c.SetOverlayVisible(id, true); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Projector returns the projector used for readouts.
func (c *Controller) Projector() *utm.Projector {
	return c.projector
}

// Layers returns the catalog in configuration order.
func (c *Controller) Layers() []Layer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Layer, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.layers[id])
	}
	return out
}

// SelectBaseLayer makes id the only visible base layer.
func (c *Controller) SelectBaseLayer(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.layers[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, id)
	}
	if l.Kind != KindBase {
		return fmt.Errorf("%w: %q is an overlay", ErrWrongLayerKind, id)
	}
	c.base = id
	return nil
}

// SetOverlayVisible shows or hides an overlay. Repeating the current state
// is a no-op.
func (c *Controller) SetOverlayVisible(id string, visible bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.layers[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, id)
	}
	if l.Kind != KindOverlay {
		return fmt.Errorf("%w: %q is a base layer", ErrWrongLayerKind, id)
	}
	c.overlays[id] = visible
	return nil
}

// SetView moves the view centre and zoom.
func (c *Controller) SetView(center utm.GeodeticCoordinate, zoom int) error {
	if err := utm.CheckCoordinate(center.Latitude, center.Longitude); err != nil {
		return err
	}
	if zoom < 0 {
		return fmt.Errorf("mapview: negative zoom %d", zoom)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center = center
	c.zoom = zoom
	return nil
}

// PointerMoved handles a cursor move and returns the readout to display.
func (c *Controller) PointerMoved(lat, lng float64) Readout {
	return c.record(EventMove, lat, lng)
}

// Clicked handles a click and returns the readout to display.
func (c *Controller) Clicked(lat, lng float64) Readout {
	return c.record(EventClick, lat, lng)
}

func (c *Controller) record(ev Event, lat, lng float64) Readout {
	r := NewReadout(ev, utm.GeodeticCoordinate{Latitude: lat, Longitude: lng}, c.projector)
	c.mu.Lock()
	c.last = &r
	c.mu.Unlock()
	return r
}

// State returns a snapshot of the controller.
func (c *Controller) State() ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	overlays := make(map[string]bool, len(c.overlays))
	for id, v := range c.overlays {
		overlays[id] = v
	}
	s := ViewState{
		Center:   c.center,
		Zoom:     c.zoom,
		Base:     c.base,
		Overlays: overlays,
		Zone:     c.projector.Zone().Label(),
	}
	if c.last != nil {
		last := *c.last
		s.Last = &last
	}
	return s
}

// VisibleLayers returns the base layer followed by visible overlays, in
// catalog order.
func (c *Controller) VisibleLayers() []Layer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []Layer{c.layers[c.base]}
	for _, id := range c.order {
		if c.overlays[id] {
			out = append(out, c.layers[id])
		}
	}
	return out
}
