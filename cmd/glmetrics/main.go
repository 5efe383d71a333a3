package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/glmetrics/internal/harness"
	"github.com/ethpandaops/glmetrics/internal/migrate"
	"github.com/ethpandaops/glmetrics/internal/scene"
	"github.com/ethpandaops/glmetrics/internal/version"
)

var (
	cfgFile  string
	logLevel string

	nx             int
	ny             int
	representation string
	lineWidth      float64
	pointSize      float64
	areaPick       bool
	hoverPreselect bool
	instancing     bool
	variant        string
	showDisplay    bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glmetrics",
		Short: "Draw-call metrics for the benchmark scene",
		Long: `glmetrics renders the cone/sphere/cylinder benchmark grid through an
instrumented draw context and reports frame rate and primitive counts
per frame to the terminal, logs, HTTP and ClickHouse.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.PersistentFlags().StringVar(
		&cfgFile, "config", "",
		"path to config file",
	)
	cmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "",
		"override log level (debug, info, warn, error)",
	)

	flags := cmd.Flags()
	flags.IntVar(&nx, "nx", 0, "number of grid cells along x")
	flags.IntVar(&ny, "ny", 0, "number of grid cells along y")
	flags.StringVarP(&representation, "representation", "r", "",
		"representation: 0-3 or points, wireframe, surface, surface_with_edges")
	flags.Float64Var(&lineWidth, "lw", 0, "line width")
	flags.Float64Var(&pointSize, "ps", 0, "point size")
	flags.BoolVar(&areaPick, "area-pick", false, "enable the area picker")
	flags.BoolVar(&hoverPreselect, "hover-preselect", false, "enable hover pre-selection")
	flags.BoolVar(&instancing, "instancing", false, "draw each layer's surfaces with one instanced call")
	flags.StringVar(&variant, "variant", "", "metrics variant (module, standalone)")
	flags.BoolVar(&showDisplay, "display", false, "print the metrics block to the terminal")

	cmd.MarkFlagsMutuallyExclusive("area-pick", "hover-preselect")

	cmd.AddCommand(versionCmd(), migrateCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.FullWithPlatform())
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the ClickHouse report schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := newMigrator()
				if err != nil {
					return err
				}

				return m.Up(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := newMigrator()
				if err != nil {
					return err
				}

				return m.Down(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := newMigrator()
				if err != nil {
					return err
				}

				v, dirty, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Printf("version: %d, dirty: %t\n", v, dirty)

				return nil
			},
		},
	)

	return cmd
}

func newLogger(level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	log.SetLevel(lvl)

	return log, nil
}

func loadConfig() (*harness.Config, error) {
	cfg := harness.DefaultConfig()

	if cfgFile != "" {
		loaded, err := harness.LoadConfig(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		cfg = loaded
	}

	// CLI flag overrides config file.
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func newMigrator() (migrate.Migrator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ch := cfg.Sinks.ClickHouse.ClickHouse
	if ch.Endpoint == "" {
		return nil, fmt.Errorf("sinks.clickhouse.endpoint is required")
	}

	ch.ApplyDefaults()

	return migrate.New(log, ch.DSN()), nil
}

// applyFlags copies explicitly set scene flags over the config.
func applyFlags(cmd *cobra.Command, cfg *harness.Config) {
	flags := cmd.Flags()

	if flags.Changed("nx") {
		cfg.Scene.NX = nx
	}

	if flags.Changed("ny") {
		cfg.Scene.NY = ny
	}

	if flags.Changed("representation") {
		cfg.Scene.Representation = representation
	}

	if flags.Changed("lw") {
		cfg.Scene.LineWidth = lineWidth
	}

	if flags.Changed("ps") {
		cfg.Scene.PointSize = pointSize
	}

	switch {
	case areaPick:
		cfg.Scene.PickType = scene.PickArea.String()
	case hoverPreselect:
		cfg.Scene.PickType = scene.PickHover.String()
	}

	if flags.Changed("instancing") {
		cfg.Scene.Instancing = instancing
	}

	if flags.Changed("variant") {
		cfg.Variant = variant
	}

	if flags.Changed("display") {
		cfg.Display.Enabled = showDisplay
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	h, err := harness.New(log, cfg)
	if err != nil {
		return fmt.Errorf("creating harness: %w", err)
	}

	log.WithField("version", version.Full()).Info("Starting glmetrics")

	if err := h.Start(ctx); err != nil {
		return fmt.Errorf("starting harness: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-h.Done():
	}

	log.Info("Shutting down glmetrics")

	if err := h.Stop(); err != nil {
		log.WithError(err).Error("Error during shutdown")
		return fmt.Errorf("stopping harness: %w", err)
	}

	log.Info("Shutdown complete")

	return nil
}
