package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kass/go-geo-utm/pkg/config"
	"github.com/kass/go-geo-utm/pkg/geo"
	"github.com/kass/go-geo-utm/pkg/models"
	"github.com/kass/go-geo-utm/pkg/utm"
	"github.com/spf13/cobra"
)

var (
	indexFile  string
	queryType  string
	box        models.GridBox
	centerLat  float64
	centerLng  float64
	radius     float64
	k          int
	outputJSON bool
	limit      int
)

var rootCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a saved UTM grid index by box, radius or nearest neighbours",
	Example: `  query -t box --min-e 780000 --max-e 790000 --min-n 9840000 --max-n 9850000
  query -t radius --lat -1.4043 --lng -78.4546 --radius 1000
  query -t nearest --lat -1.4043 --lng -78.4546 -k 5`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&indexFile, "index", "i", "", "Index file path (default INDEX_FILE)")
	f.StringVarP(&queryType, "type", "t", "box", "Query type: box, radius, nearest")
	f.Float64Var(&box.MinEasting, "min-e", 0, "Minimum easting in metres (box query)")
	f.Float64Var(&box.MaxEasting, "max-e", 0, "Maximum easting in metres (box query)")
	f.Float64Var(&box.MinNorthing, "min-n", 0, "Minimum northing in metres (box query)")
	f.Float64Var(&box.MaxNorthing, "max-n", 0, "Maximum northing in metres (box query)")
	f.Float64Var(&centerLat, "lat", 0, "Center latitude (radius/nearest query)")
	f.Float64Var(&centerLng, "lng", 0, "Center longitude (radius/nearest query)")
	f.Float64VarP(&radius, "radius", "r", 1000, "Radius in metres (radius query)")
	f.IntVarP(&k, "neighbors", "k", 10, "Number of nearest neighbours (nearest query)")
	f.BoolVar(&outputJSON, "json", false, "Output results as JSON")
	f.IntVar(&limit, "limit", 100, "Maximum number of results to display")
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
	if indexFile == "" {
		indexFile = cfg.IndexFile
	}

	index := geo.NewIndex(p)
	if err := index.LoadFromFile(indexFile); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	logger.Info("index loaded", "file", indexFile, "points", index.Size(), "zone", p.Zone().Label())

	center := utm.GeodeticCoordinate{Latitude: centerLat, Longitude: centerLng}
	needsCenter := queryType == "radius" || queryType == "nearest"
	if needsCenter && !cmd.Flags().Changed("lat") && !cmd.Flags().Changed("lng") {
		return fmt.Errorf("%s query requires --lat and --lng", queryType)
	}

	var results []*models.Point
	switch queryType {
	case "box":
		if box.MaxEasting <= box.MinEasting || box.MaxNorthing <= box.MinNorthing {
			return fmt.Errorf("box query requires --min-e < --max-e and --min-n < --max-n")
		}
		results, err = index.SearchBox(box)
	case "radius":
		results, err = index.SearchRadius(center, radius)
	case "nearest":
		results = index.NearestNeighbors(center, k)
	default:
		return fmt.Errorf("unknown query type: %s", queryType)
	}
	if err != nil {
		return fmt.Errorf("%s query failed: %w", queryType, err)
	}
	logger.Info("query done", "type", queryType, "results", len(results))

	if len(results) > limit {
		logger.Info("truncating results", "limit", limit)
		results = results[:limit]
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	header := table.Row{"#", "ID", "Lat", "Lng", "Easting", "Northing"}
	var origin utm.ProjectedCoordinate
	if needsCenter {
		header = append(header, "Distance (m)")
		origin = p.Project(center.Latitude, center.Longitude)
	}
	tw.AppendHeader(header)
	for i, pt := range results {
		row := table.Row{
			i + 1, pt.ID,
			fmt.Sprintf("%.6f", pt.Location.Lat),
			fmt.Sprintf("%.6f", pt.Location.Lon),
			fmt.Sprintf("%.3f", pt.Grid.Easting),
			fmt.Sprintf("%.3f", pt.Grid.Northing),
		}
		if needsCenter {
			row = append(row, fmt.Sprintf("%.1f", geo.Distance(origin, *pt.Grid)))
		}
		tw.AppendRow(row)
	}
	tw.Render()
	return nil
}
