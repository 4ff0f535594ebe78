package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kass/go-geo-utm/pkg/config"
	"github.com/kass/go-geo-utm/pkg/utm"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	zoneNum  int
	north    bool
	series   string
	logLevel string

	cfg       config.Config
	projector *utm.Projector
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "utm",
	Short: "Project WGS84 coordinates into UTM grid coordinates",
	Long: `Project WGS84 latitude/longitude pairs into UTM easting/northing.
The default zone is 17 South with the millimetre-rounded reference series.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().IntVarP(&zoneNum, "zone", "z", 17, "UTM zone number (overrides UTM_ZONE)")
	rootCmd.PersistentFlags().BoolVar(&north, "north", false, "Use the northern hemisphere (overrides UTM_SOUTH)")
	rootCmd.PersistentFlags().StringVarP(&series, "series", "s", "reference", "Projection series: reference or kruger (overrides UTM_SERIES)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(projectCmd, batchCmd, compareCmd, serveCmd)
}

// setup loads the config and lets explicitly set flags win over it.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("zone") {
		cfg.Zone = zoneNum
	}
	if flags.Changed("north") {
		cfg.South = !north
	}
	if flags.Changed("series") {
		cfg.Series = series
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	logger = config.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	projector, err = cfg.Projector()
	if err != nil {
		return err
	}
	logger.Debug("projector ready",
		"zone", projector.Zone().Label(),
		"series", projector.Series().String(),
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
