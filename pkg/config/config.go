// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/kass/go-geo-utm/pkg/mapview"
	"github.com/kass/go-geo-utm/pkg/utm"
)

type Config struct {
	Zone   int    `env:"UTM_ZONE" envDefault:"17"`
	South  bool   `env:"UTM_SOUTH" envDefault:"true"`
	Series string `env:"UTM_SERIES" envDefault:"reference"`

	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":8080"`
	IndexFile  string `env:"INDEX_FILE" envDefault:"data/utm_index.gob"`
	PostGISDSN string `env:"POSTGIS_DSN"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	MapCenterLat float64 `env:"MAP_CENTER_LAT" envDefault:"-1.4043226899226577"`
	MapCenterLng float64 `env:"MAP_CENTER_LNG" envDefault:"-78.454611807775"`
	MapZoom      int     `env:"MAP_ZOOM" envDefault:"18"`
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Projector builds the projector described by the config.
func (c Config) Projector() (*utm.Projector, error) {
	zone, err := utm.NewZone(c.Zone, c.South)
	if err != nil {
		return nil, err
	}
	series, err := utm.ParseSeries(c.Series)
	if err != nil {
		return nil, err
	}
	return utm.NewChecked(zone, utm.WithSeries(series))
}

// Controller builds the map view controller for the configured view.
func (c Config) Controller(p *utm.Projector) (*mapview.Controller, error) {
	center := utm.GeodeticCoordinate{Latitude: c.MapCenterLat, Longitude: c.MapCenterLng}
	if err := utm.CheckCoordinate(center.Latitude, center.Longitude); err != nil {
		return nil, fmt.Errorf("map center: %w", err)
	}
	return mapview.NewController(mapview.Options{
		Center:    &center,
		Zoom:      c.MapZoom,
		Projector: p,
	})
}

// NewLogger returns a text slog logger at the given level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug/info/warn/error to slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
