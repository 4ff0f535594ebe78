package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kass/go-geo-utm/pkg/config"
	"github.com/kass/go-geo-utm/pkg/geo"
	"github.com/kass/go-geo-utm/pkg/models"
	"github.com/kass/go-geo-utm/pkg/postgis"
	"github.com/spf13/cobra"
)

var (
	numPoints  int
	outputFile string
	workers    int
	seed       int64
	spreadKm   float64
	toPostGIS  bool
)

var rootCmd = &cobra.Command{
	Use:   "load",
	Short: "Generate random points around the map center and build a UTM grid index",
	Long: `Generate random WGS84 points around the configured map center, project
them into the configured UTM zone, index them in an R-tree and save the index.
With --postgis the raw points are also stored in PostGIS.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().IntVarP(&numPoints, "points", "n", 100000, "Number of points to generate")
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file path (default INDEX_FILE)")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	rootCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed")
	rootCmd.Flags().Float64Var(&spreadKm, "spread", 50, "Half width of the generated area in km")
	rootCmd.Flags().BoolVar(&toPostGIS, "postgis", false, "Also store the points in POSTGIS_DSN")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	p, err := cfg.Projector()
	if err != nil {
		return err
	}
	if outputFile == "" {
		outputFile = cfg.IndexFile
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// roughly 111 km per degree of latitude
	spread := spreadKm / 111.0
	logger.Info("generating points",
		"count", numPoints,
		"workers", workers,
		"center_lat", cfg.MapCenterLat,
		"center_lng", cfg.MapCenterLng,
		"spread_deg", spread,
	)
	points := generateRandomPoints(numPoints, cfg.MapCenterLat, cfg.MapCenterLng, spread, workers, seed)

	start := time.Now()
	index := geo.NewIndex(p)
	indexed := index.IndexPoints(points)
	indexTime := time.Since(start)
	logger.Info("index built",
		"indexed", indexed,
		"zone", p.Zone().Label(),
		"series", p.Series().String(),
		"dur", indexTime,
		"points_per_sec", math.Round(float64(indexed)/indexTime.Seconds()),
	)

	start = time.Now()
	if err := index.SaveToFile(outputFile); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	if info, err := os.Stat(outputFile); err == nil {
		logger.Info("index saved",
			"file", outputFile,
			"dur", time.Since(start),
			"size_mb", fmt.Sprintf("%.2f", float64(info.Size())/(1024*1024)),
		)
	}

	if toPostGIS {
		return storePoints(cfg.PostGISDSN, points, logger)
	}
	return nil
}

func storePoints(dsn string, points []*models.Point, logger *slog.Logger) error {
	if dsn == "" {
		return fmt.Errorf("--postgis needs POSTGIS_DSN")
	}
	store, err := postgis.Open(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		return err
	}
	start := time.Now()
	if err := store.BulkInsertPoints(points); err != nil {
		return err
	}
	count, err := store.Count()
	if err != nil {
		return err
	}
	logger.Info("points stored in postgis", "count", count, "dur", time.Since(start))
	return nil
}

func generateRandomPoints(n int, centerLat, centerLng, spread float64, workers int, seed int64) []*models.Point {
	if workers < 1 {
		workers = 1
	}
	points := make([]*models.Point, n)

	pointsPerWorker := n / workers
	remainder := n % workers

	type workRange struct {
		start, end int
	}
	work := make(chan workRange, workers)
	done := make(chan bool, workers)

	for w := 0; w < workers; w++ {
		go func(workerID int) {
			// each worker gets its own generator to avoid contention
			r := rand.New(rand.NewSource(seed + int64(workerID)))

			for wr := range work {
				for i := wr.start; i < wr.end; i++ {
					points[i] = &models.Point{
						ID: fmt.Sprintf("point_%d", i),
						Location: &models.Location{
							Lat: centerLat + (r.Float64()*2-1)*spread,
							Lon: centerLng + (r.Float64()*2-1)*spread,
						},
					}
				}
			}
			done <- true
		}(w)
	}

	start := 0
	for w := 0; w < workers; w++ {
		size := pointsPerWorker
		if w < remainder {
			size++
		}
		work <- workRange{start: start, end: start + size}
		start += size
	}
	close(work)

	for w := 0; w < workers; w++ {
		<-done
	}
	return points
}
