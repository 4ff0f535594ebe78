package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kass/go-geo-utm/pkg/features"
	"github.com/kass/go-geo-utm/pkg/models"
	"github.com/kass/go-geo-utm/pkg/postgis"
	"github.com/kass/go-geo-utm/pkg/utm"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
)

var (
	rawOutput   bool
	inputFile   string
	inputFormat string
	outFormat   string
)

var projectCmd = &cobra.Command{
	Use:   "project LAT LNG",
	Short: "Project a single coordinate",
	Example: `  utm project -- -1.4043226899226577 -78.454611807775
  utm project --raw -- 0 -81`,
	Args: cobra.ExactArgs(2),
	RunE: runProject,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Project every point of a CSV or GeoJSON file",
	Long: `Read id,lat,lng rows (CSV) or a FeatureCollection (GeoJSON) and write
the projected points as a table, CSV or GeoJSON.`,
	RunE: runBatch,
}

var compareCmd = &cobra.Command{
	Use:   "compare LAT LNG",
	Short: "Compare the projection series against a geodesy library and PostGIS",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	projectCmd.Flags().BoolVar(&rawOutput, "raw", false, "Print the unrounded result")

	batchCmd.Flags().StringVarP(&inputFile, "in", "i", "-", "Input file, - for stdin")
	batchCmd.Flags().StringVar(&inputFormat, "in-format", "", "Input format: csv or geojson (default from the file extension)")
	batchCmd.Flags().StringVarP(&outFormat, "format", "o", "table", "Output format: table, csv or geojson")
}

func parseLatLng(args []string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", args[0], err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", args[1], err)
	}
	if err := utm.CheckCoordinate(lat, lng); err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func runProject(cmd *cobra.Command, args []string) error {
	lat, lng, err := parseLatLng(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rawOutput {
		c := projector.ProjectRaw(lat, lng)
		fmt.Fprintf(out, "%v %v\n", c.Easting, c.Northing)
		return nil
	}

	c := projector.Project(lat, lng)
	fmt.Fprintf(out, "Lat: %.6f\nLng: %.6f\n", lat, lng)
	fmt.Fprintf(out, "UTM %s\nX: %.3f\nY: %.3f\n", projector.Zone().Label(), c.Easting, c.Northing)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if inputFile != "-" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	format := inputFormat
	if format == "" {
		format = "csv"
		switch strings.ToLower(filepath.Ext(inputFile)) {
		case ".geojson", ".json":
			format = "geojson"
		}
	}

	out := cmd.OutOrStdout()

	var points []*models.Point
	switch format {
	case "csv":
		var err error
		points, err = features.ReadCSV(r)
		if err != nil {
			return err
		}
	case "geojson":
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if outFormat == "geojson" {
			// keeps every geometry type, not only points
			projected, err := features.ProjectJSON(data, projector)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(projected))
			return err
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return fmt.Errorf("failed to decode feature collection: %w", err)
		}
		points = features.PointsFromCollection(fc)
	default:
		return fmt.Errorf("unknown input format %q", format)
	}

	skipped := 0
	for _, p := range points {
		if err := utm.CheckCoordinate(p.Location.Lat, p.Location.Lon); err != nil {
			logger.Warn("skipping point", "id", p.ID, "err", err)
			skipped++
			continue
		}
		c := projector.Project(p.Location.Lat, p.Location.Lon)
		p.Grid = &c
	}
	logger.Info("batch projected",
		"points", len(points)-skipped,
		"skipped", skipped,
		"zone", projector.Zone().Label(),
	)

	switch outFormat {
	case "csv":
		return features.WriteCSV(out, points)
	case "geojson":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(features.FromPoints(points))
	case "table":
		tw := table.NewWriter()
		tw.SetOutputMirror(out)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"ID", "Lat", "Lng", "Easting", "Northing"})
		for _, p := range points {
			if p.Grid == nil {
				tw.AppendRow(table.Row{p.ID, p.Location.Lat, p.Location.Lon, "-", "-"})
				continue
			}
			tw.AppendRow(table.Row{
				p.ID, p.Location.Lat, p.Location.Lon,
				fmt.Sprintf("%.3f", p.Grid.Easting),
				fmt.Sprintf("%.3f", p.Grid.Northing),
			})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, Align: text.AlignRight},
			{Number: 5, Align: text.AlignRight},
		})
		tw.AppendFooter(table.Row{"", "", "UTM " + projector.Zone().Label(), len(points) - skipped, ""})
		tw.Render()
		return nil
	}
	return fmt.Errorf("unknown output format %q", outFormat)
}

func runCompare(cmd *cobra.Command, args []string) error {
	lat, lng, err := parseLatLng(args)
	if err != nil {
		return err
	}

	zone := projector.Zone()
	e, n, _ := zone.LibraryTransform()(lng, lat, 0)

	type method struct {
		name string
		c    utm.ProjectedCoordinate
	}
	methods := []method{
		{"reference", utm.New(zone).ProjectRaw(lat, lng)},
		{"kruger", utm.New(zone, utm.WithSeries(utm.SeriesKruger)).ProjectRaw(lat, lng)},
		{"wgs84", utm.ProjectedCoordinate{Easting: e, Northing: n}},
	}
	baseline := methods[1]

	if cfg.PostGISDSN != "" {
		if c, err := projectPostGIS(lat, lng, zone); err != nil {
			logger.Warn("postgis unavailable", "err", err)
		} else {
			methods = append(methods, method{"postgis", c})
			baseline = methods[len(methods)-1]
		}
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(fmt.Sprintf("UTM %s  lat %.6f  lng %.6f  (deltas vs %s)", zone.Label(), lat, lng, baseline.name))
	tw.AppendHeader(table.Row{"Method", "Easting", "Northing", "dE", "dN"})
	for _, m := range methods {
		tw.AppendRow(table.Row{
			m.name,
			fmt.Sprintf("%.3f", m.c.Easting),
			fmt.Sprintf("%.3f", m.c.Northing),
			fmt.Sprintf("%+.3f", m.c.Easting-baseline.c.Easting),
			fmt.Sprintf("%+.3f", m.c.Northing-baseline.c.Northing),
		})
	}
	tw.Render()
	return nil
}

func projectPostGIS(lat, lng float64, zone utm.Zone) (utm.ProjectedCoordinate, error) {
	store, err := postgis.Open(cfg.PostGISDSN)
	if err != nil {
		return utm.ProjectedCoordinate{}, err
	}
	defer store.Close()
	return store.Project(lat, lng, zone)
}
