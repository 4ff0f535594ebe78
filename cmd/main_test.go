package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kass/go-geo-utm/pkg/utm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag of c and its subcommands back to its default,
// since the command tree is package state shared between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("POSTGIS_DSN", "")
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	env := filepath.Join(t.TempDir(), "missing.env")
	rootCmd.SetArgs(append([]string{"--env", env, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestProjectCommand(t *testing.T) {
	out, err := runCLI(t, "project", "--", "-1.4043226899226577", "-78.454611807775")
	require.NoError(t, err)
	assert.Contains(t, out, "UTM 17S\nX: 783332.332\nY: 9844102.920\n")

	out, err = runCLI(t, "project", "--raw", "--", "0", "-81")
	require.NoError(t, err)
	assert.Equal(t, "500000 1e+07\n", out)
}

func TestProjectCommandRejectsInput(t *testing.T) {
	_, err := runCLI(t, "project", "--", "90", "-78")
	assert.ErrorIs(t, err, utm.ErrInvalidCoordinate)

	_, err = runCLI(t, "project", "north", "-78")
	assert.Error(t, err)

	_, err = runCLI(t, "project", "--", "-1.4")
	assert.Error(t, err)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("UTM_SERIES", "kruger")
	t.Setenv("UTM_ZONE", "18")

	out, err := runCLI(t, "project", "--zone", "17", "--", "-1.4043226899226577", "-78.454611807775")
	require.NoError(t, err)
	assert.Contains(t, out, "UTM 17S\nX: 783247.175\nY: 9844625.565\n")

	out, err = runCLI(t, "project", "--zone", "17", "--series", "reference", "--", "-1.4043226899226577", "-78.454611807775")
	require.NoError(t, err)
	assert.Contains(t, out, "X: 783332.332\nY: 9844102.920\n")

	out, err = runCLI(t, "project", "--", "0", "-75")
	require.NoError(t, err)
	assert.Contains(t, out, "UTM 18S\nX: 500000.000\nY: 10000000.000\n")

	out, err = runCLI(t, "project", "--north", "--", "0", "-75")
	require.NoError(t, err)
	assert.Contains(t, out, "UTM 18N\nX: 500000.000\nY: 0.000\n")

	_, err = runCLI(t, "project", "--series", "snyder", "--", "0", "-81")
	assert.ErrorIs(t, err, utm.ErrUnknownSeries)
}

const batchCSV = "id,lat,lng\norigin,0,-81\nedge,-1.4,-80\npole,90,-78\n"

func TestBatchCSV(t *testing.T) {
	in := writeFile(t, "points.csv", batchCSV)

	out, err := runCLI(t, "batch", "--in", in, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "id,lat,lng,easting,northing\n"+
		"origin,0,-81,500000.000,10000000.000\n"+
		"edge,-1.4,-80,611280.870,9844712.946\n"+
		"pole,90,-78,,\n", out)

	out, err = runCLI(t, "batch", "--in", in)
	require.NoError(t, err)
	assert.Contains(t, out, "611280.870")
	assert.Contains(t, out, "UTM 17S")
}

func TestBatchGeoJSON(t *testing.T) {
	in := writeFile(t, "points.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"origin","properties":{},"geometry":{"type":"Point","coordinates":[-81,0]}},
		{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[-81,0],[-80,-1.4]]}}]}`)

	// geojson in and out keeps every geometry and projects it
	out, err := runCLI(t, "batch", "--in", in, "--format", "geojson")
	require.NoError(t, err)
	var fc struct {
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	require.Len(t, fc.Features, 2)
	assert.JSONEq(t, `[500000,10000000]`, string(fc.Features[0].Geometry.Coordinates))
	assert.Equal(t, "LineString", fc.Features[1].Geometry.Type)

	// geojson in, csv out keeps the point features only
	out, err = runCLI(t, "batch", "--in", in, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "id,lat,lng,easting,northing\norigin,0,-81,500000.000,10000000.000\n", out)

	// an explicit input format wins over the extension
	csvNamedJSON := writeFile(t, "points.json", batchCSV)
	out, err = runCLI(t, "batch", "--in", csvNamedJSON, "--in-format", "csv", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "origin,0,-81,500000.000,10000000.000")
}

func TestBatchRejectsFormats(t *testing.T) {
	in := writeFile(t, "points.csv", batchCSV)

	_, err := runCLI(t, "batch", "--in", in, "--format", "kml")
	assert.ErrorContains(t, err, `unknown output format "kml"`)

	_, err = runCLI(t, "batch", "--in", in, "--in-format", "shp")
	assert.ErrorContains(t, err, `unknown input format "shp"`)

	_, err = runCLI(t, "batch", "--in", filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestCompareMeasuresAgainstKruger(t *testing.T) {
	out, err := runCLI(t, "compare", "--", "-1.4043226899226577", "-78.454611807775")
	require.NoError(t, err)

	rows := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		for _, name := range []string{"reference", "kruger", "wgs84"} {
			if strings.Contains(line, " "+name+" ") {
				rows[name] = line
			}
		}
	}
	require.Len(t, rows, 3, out)

	assert.Contains(t, rows["kruger"], "783247.175")
	assert.Equal(t, 2, strings.Count(rows["kruger"], "+0.000"))
	assert.Contains(t, rows["reference"], "+85.157")
	assert.Contains(t, rows["reference"], "-522.645")
	assert.Contains(t, rows["wgs84"], "-0.628")
	assert.NotContains(t, out, "postgis")
}
