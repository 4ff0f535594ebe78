// Package server exposes the projector and the map view controller over
// HTTP for the browser map.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/kass/go-geo-utm/pkg/mapview"
	"github.com/kass/go-geo-utm/pkg/utm"
)

const maxBodyBytes = 10 << 20

// Handler serves the projection and view endpoints.
type Handler struct {
	projector *utm.Projector
	view      *mapview.Controller
	validator *requestValidator
}

// NewRouter wires the handlers. The controller's projector is used for
// pointer readouts; p is used for the projection endpoints.
func NewRouter(p *utm.Projector, view *mapview.Controller, logger *slog.Logger) http.Handler {
	h := &Handler{
		projector: p,
		view:      view,
		validator: newRequestValidator(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/projection", func(r chi.Router) {
			r.Get("/", h.project)
			r.Post("/batch", h.projectBatch)
			r.Post("/geojson", h.projectGeoJSON)
		})
		r.Route("/view", func(r chi.Router) {
			r.Get("/", h.viewState)
			r.Put("/base", h.selectBase)
			r.Put("/overlays/{id}", h.setOverlay)
			r.Post("/pointer", h.pointer)
		})
	})
	return r
}

// requestLogger logs method, path, status, size and duration per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.RequestURI(),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
