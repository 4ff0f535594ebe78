package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/kass/go-geo-utm/pkg/features"
	"github.com/kass/go-geo-utm/pkg/mapview"
	"github.com/kass/go-geo-utm/pkg/utm"
)

// Coordinate is a WGS84 position in a request body.
type Coordinate struct {
	Lat *float64 `json:"lat" validate:"required,gt=-90,lt=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// ProjectionResponse is one projected position.
type ProjectionResponse struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
	Zone     string  `json:"zone"`
	Series   string  `json:"series"`
}

func (h *Handler) newProjectionResponse(lat, lng float64) ProjectionResponse {
	c := h.projector.Project(lat, lng)
	return ProjectionResponse{
		Lat:      lat,
		Lng:      lng,
		Easting:  c.Easting,
		Northing: c.Northing,
		Zone:     h.projector.Zone().Label(),
		Series:   h.projector.Series().String(),
	}
}

func (h *Handler) project(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("lat: %w", err)))
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("lng: %w", err)))
		return
	}

	if rend := h.validator.check(Coordinate{Lat: &lat, Lng: &lng}); rend != nil {
		render.Render(w, r, rend)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.newProjectionResponse(lat, lng))
}

// BatchRequest is the body of POST /api/projection/batch.
type BatchRequest struct {
	Coordinates []Coordinate `json:"coordinates" validate:"required,min=1,max=10000,dive"`
}

func (b *BatchRequest) Bind(r *http.Request) error {
	if b.Coordinates == nil {
		return errors.New("missing coordinates")
	}
	return nil
}

func (h *Handler) projectBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data := &BatchRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rend := h.validator.check(data); rend != nil {
		render.Render(w, r, rend)
		return
	}

	out := make([]ProjectionResponse, len(data.Coordinates))
	for i, c := range data.Coordinates {
		out[i] = h.newProjectionResponse(*c.Lat, *c.Lng)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{"results": out})
}

func (h *Handler) projectGeoJSON(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	out, err := features.ProjectJSON(body, h.projector)
	if err != nil {
		if errors.Is(err, utm.ErrInvalidCoordinate) {
			render.Render(w, r, ErrUnprocessable(err))
			return
		}
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// ViewResponse is the controller state plus its layer catalog.
type ViewResponse struct {
	mapview.ViewState
	Layers []mapview.Layer `json:"layers"`
}

func (h *Handler) viewState(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ViewResponse{ViewState: h.view.State(), Layers: h.view.Layers()})
}

// BaseLayerRequest is the body of PUT /api/view/base.
type BaseLayerRequest struct {
	Layer string `json:"layer" validate:"required"`
}

func (b *BaseLayerRequest) Bind(r *http.Request) error {
	return nil
}

func (h *Handler) selectBase(w http.ResponseWriter, r *http.Request) {
	data := &BaseLayerRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rend := h.validator.check(data); rend != nil {
		render.Render(w, r, rend)
		return
	}

	if err := h.view.SelectBaseLayer(data.Layer); err != nil {
		render.Render(w, r, layerError(err))
		return
	}
	render.JSON(w, r, h.view.State())
}

// OverlayRequest is the body of PUT /api/view/overlays/{id}.
type OverlayRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

func (o *OverlayRequest) Bind(r *http.Request) error {
	return nil
}

func (h *Handler) setOverlay(w http.ResponseWriter, r *http.Request) {
	data := &OverlayRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rend := h.validator.check(data); rend != nil {
		render.Render(w, r, rend)
		return
	}

	if err := h.view.SetOverlayVisible(chi.URLParam(r, "id"), *data.Visible); err != nil {
		render.Render(w, r, layerError(err))
		return
	}
	render.JSON(w, r, h.view.State())
}

// PointerRequest is the body of POST /api/view/pointer.
type PointerRequest struct {
	Coordinate
	Event string `json:"event"`
}

func (p *PointerRequest) Bind(r *http.Request) error {
	if p.Event == "" {
		p.Event = string(mapview.EventMove)
	}
	return nil
}

func (h *Handler) pointer(w http.ResponseWriter, r *http.Request) {
	data := &PointerRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if rend := h.validator.check(data); rend != nil {
		render.Render(w, r, rend)
		return
	}

	ev, err := mapview.ParseEvent(data.Event)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	var readout mapview.Readout
	if ev == mapview.EventClick {
		readout = h.view.Clicked(*data.Lat, *data.Lng)
	} else {
		readout = h.view.PointerMoved(*data.Lat, *data.Lng)
	}
	render.JSON(w, r, readout)
}

func layerError(err error) render.Renderer {
	switch {
	case errors.Is(err, mapview.ErrUnknownLayer):
		return ErrNotFound(err)
	case errors.Is(err, mapview.ErrWrongLayerKind):
		return ErrUnprocessable(err)
	}
	return ErrInvalidRequest(err)
}
