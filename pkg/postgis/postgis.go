package postgis

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kass/go-geo-utm/pkg/models"
	"github.com/kass/go-geo-utm/pkg/utm"
	_ "github.com/lib/pq"
)

// Store keeps WGS84 points in PostGIS and asks the server to project them,
// giving an independent check of the local projector.
type Store struct {
	db *sql.DB
}

// ConnString builds a lib/pq key/value connection string
func ConnString(host, user, password, dbname string, port int) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// Open connects to PostGIS using a lib/pq DSN or URL
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

// InitSchema creates the points table
func (s *Store) InitSchema() error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		`DROP TABLE IF EXISTS utm_points;`,
		`CREATE TABLE utm_points (
			id TEXT PRIMARY KEY,
			location GEOMETRY(POINT, 4326)
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// BulkInsertPoints inserts points in one transaction, skipping points
// without a location
func (s *Store) BulkInsertPoints(points []*models.Point) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertPoint)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, point := range points {
		if point == nil || point.Location == nil {
			continue
		}
		if _, err := stmt.Exec(point.ID, point.Location.Lon, point.Location.Lat); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert point %s: %w", point.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

const insertPoint = `
	INSERT INTO utm_points (id, location)
	VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326))
	ON CONFLICT (id) DO UPDATE SET location = EXCLUDED.location
`

// ProjectedPoints returns every stored point with Grid set to the server's
// ST_Transform into zone, rounded to the millimetre
func (s *Store) ProjectedPoints(zone utm.Zone) ([]*models.Point, error) {
	srid := zone.EPSG()
	if srid == 0 {
		return nil, fmt.Errorf("%w: zone %s has no EPSG code", utm.ErrInvalidZone, zone.Label())
	}

	rows, err := s.db.Query(`
		SELECT id, ST_Y(location), ST_X(location),
		       ST_X(ST_Transform(location, $1::integer)), ST_Y(ST_Transform(location, $1::integer))
		FROM utm_points
		ORDER BY id
	`, srid)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []*models.Point
	for rows.Next() {
		var (
			id                string
			lat, lon          float64
			easting, northing float64
		)
		if err := rows.Scan(&id, &lat, &lon, &easting, &northing); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, &models.Point{
			ID:       id,
			Location: &models.Location{Lat: lat, Lon: lon},
			Grid: &utm.ProjectedCoordinate{
				Easting:  utm.RoundMillimeter(easting),
				Northing: utm.RoundMillimeter(northing),
			},
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Project asks the server to transform a single WGS84 position into zone
func (s *Store) Project(lat, lng float64, zone utm.Zone) (utm.ProjectedCoordinate, error) {
	srid := zone.EPSG()
	if srid == 0 {
		return utm.ProjectedCoordinate{}, fmt.Errorf("%w: zone %s has no EPSG code", utm.ErrInvalidZone, zone.Label())
	}

	var c utm.ProjectedCoordinate
	err := s.db.QueryRow(`
		SELECT ST_X(g), ST_Y(g)
		FROM (SELECT ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), $3::integer) AS g) t
	`, lng, lat, srid).Scan(&c.Easting, &c.Northing)
	if err != nil {
		return utm.ProjectedCoordinate{}, fmt.Errorf("failed to transform point: %w", err)
	}
	return c, nil
}

// Count returns the number of stored points
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM utm_points").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
