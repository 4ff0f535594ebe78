// Package geo indexes points by their projected grid position so that box,
// radius and nearest-neighbour queries work in metres.
// Projection of a batch is spread across CPU cores before insertion.
package geo

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/go-geo-utm/pkg/models"
	"github.com/kass/go-geo-utm/pkg/utm"
)

const (
	tolerance   = 0.001 // metres
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	gridExtent  = 1e9 // metres, larger than any finite grid coordinate we index
)

// spatialItem wraps a Point for R-Tree indexing
type spatialItem struct {
	*models.Point
	rect *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is a thread-safe R-Tree over grid coordinates
type Index struct {
	projector *utm.Projector
	tree      *rtreego.Rtree
	mu        sync.RWMutex
	itemCount atomic.Int64
}

// NewIndex creates an empty index that projects with p
func NewIndex(p *utm.Projector) *Index {
	return &Index{
		projector: p,
		tree:      rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

// Projector returns the projector used for inserts and queries
func (g *Index) Projector() *utm.Projector {
	return g.projector
}

// IndexPoints projects and indexes a batch of points. Each point's Grid is
// set to its projection. Points without a location or whose projection is
// not finite are skipped. It returns the number of points inserted.
func (g *Index) IndexPoints(points []*models.Point) int {
	if len(points) == 0 {
		return 0
	}

	numCPU := runtime.NumCPU()
	spatialItems := make([]rtreego.Spatial, len(points))
	var wg sync.WaitGroup

	batchSize := (len(points) + numCPU - 1) / numCPU
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				point := points[j]
				if point == nil || point.Location == nil {
					continue
				}
				c := g.projector.Project(point.Location.Lat, point.Location.Lon)
				if !finite(c) {
					continue
				}
				point.Grid = &c
				rect := rtreego.Point{c.Easting, c.Northing}.ToRect(tolerance)
				spatialItems[j] = &spatialItem{point, rect}
			}
		}(start, end)
	}

	wg.Wait()

	// Insertion into the tree is not concurrent-safe
	g.mu.Lock()
	defer g.mu.Unlock()

	count := 0
	for _, item := range spatialItems {
		if item != nil {
			g.tree.Insert(item)
			count++
		}
	}
	g.itemCount.Add(int64(count))
	return count
}

// SearchBox returns all points inside box
func (g *Index) SearchBox(box models.GridBox) ([]*models.Point, error) {
	bounds, err := rtreego.NewRect(
		rtreego.Point{box.MinEasting, box.MinNorthing},
		[]float64{box.MaxEasting - box.MinEasting, box.MaxNorthing - box.MinNorthing},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	results := g.tree.SearchIntersect(bounds)

	points := make([]*models.Point, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok || item.Point == nil {
			continue
		}
		if box.Contains(*item.Grid) {
			points = append(points, item.Point)
		}
	}
	return points, nil
}

// SearchRadius returns all points within radiusMeters of center, measured in
// the projected plane
func (g *Index) SearchRadius(center utm.GeodeticCoordinate, radiusMeters float64) ([]*models.Point, error) {
	if radiusMeters <= 0 || math.IsNaN(radiusMeters) {
		return nil, fmt.Errorf("invalid radius search: radius %v", radiusMeters)
	}
	c := g.projector.ProjectCoordinate(center)
	if !finite(c) {
		return nil, fmt.Errorf("invalid radius search: center %v projects to %v", center, c)
	}

	bounds, err := rtreego.NewRect(
		rtreego.Point{c.Easting - radiusMeters, c.Northing - radiusMeters},
		[]float64{2 * radiusMeters, 2 * radiusMeters},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid radius search: %w", err)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	results := g.tree.SearchIntersect(bounds)

	points := make([]*models.Point, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok || item.Point == nil {
			continue
		}
		if Distance(c, *item.Grid) <= radiusMeters {
			points = append(points, item.Point)
		}
	}
	return points, nil
}

// NearestNeighbors returns the n points closest to center
func (g *Index) NearestNeighbors(center utm.GeodeticCoordinate, n int) []*models.Point {
	c := g.projector.ProjectCoordinate(center)
	if n <= 0 || !finite(c) {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	results := g.tree.NearestNeighbors(n, rtreego.Point{c.Easting, c.Northing})

	points := make([]*models.Point, 0, len(results))
	for _, result := range results {
		if item, ok := result.(*spatialItem); ok && item != nil {
			points = append(points, item.Point)
		}
	}
	return points
}

// Size returns the number of points in the index
func (g *Index) Size() int64 {
	return g.itemCount.Load()
}

// Clear removes all points from the index
func (g *Index) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	g.itemCount.Store(0)
}

// Points returns every indexed point
func (g *Index) Points() []*models.Point {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.allPoints()
}

func (g *Index) allPoints() []*models.Point {
	everything, _ := rtreego.NewRect(
		rtreego.Point{-gridExtent, -gridExtent},
		[]float64{2 * gridExtent, 2 * gridExtent},
	)
	var points []*models.Point
	for _, result := range g.tree.SearchIntersect(everything) {
		if item, ok := result.(*spatialItem); ok {
			points = append(points, item.Point)
		}
	}
	return points
}

// SaveToFile saves the indexed points to a file using gob encoding
func (g *Index) SaveToFile(filename string) error {
	g.mu.RLock()
	points := g.allPoints()
	g.mu.RUnlock()

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(points); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	return nil
}

// LoadFromFile replaces the index contents with the points stored in
// filename. Points are re-projected with this index's projector.
func (g *Index) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var points []*models.Point
	if err := gob.NewDecoder(file).Decode(&points); err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}

	g.Clear()
	g.IndexPoints(points)
	return nil
}

// Distance is the planar distance in metres between two grid coordinates
func Distance(a, b utm.ProjectedCoordinate) float64 {
	return math.Hypot(a.Easting-b.Easting, a.Northing-b.Northing)
}

func finite(c utm.ProjectedCoordinate) bool {
	return !math.IsNaN(c.Easting) && !math.IsInf(c.Easting, 0) &&
		!math.IsNaN(c.Northing) && !math.IsInf(c.Northing, 0) &&
		math.Abs(c.Easting) < gridExtent && math.Abs(c.Northing) < gridExtent
}
