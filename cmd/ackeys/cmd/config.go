package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/ackeys/internal/app"
	"github.com/corey/ackeys/internal/config"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the resolved configuration and where it came from. --init writes the defaults to <root>/.ackeys/config.toml.",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a default config file if none exists")
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	out := cmd.OutOrStdout()

	if configInit {
		if _, err := os.Stat(paths.Config); err == nil {
			return fmt.Errorf("%s already exists", paths.Config)
		}
		if err := config.SaveConfig(config.DefaultConfig(), paths.Config); err != nil {
			return err
		}
		fmt.Fprintf(out, "⚡ wrote %s\n", paths.Config)
		return nil
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if path == "" {
		path = "(defaults)"
	}

	fmt.Fprintln(out, paint(colorBold, "⚡ ackeys config"))
	fmt.Fprintf(out, "  Root:       %s\n", root)
	fmt.Fprintf(out, "  File:       %s\n", path)
	fmt.Fprintf(out, "  Name:       %s\n", cfg.Engine.Name)
	fmt.Fprintf(out, "  Backend:    %s\n", paint(colorMagenta, cfg.Store.Backend))
	switch cfg.Store.Backend {
	case config.BackendBbolt:
		db := cfg.Store.Path
		if db == "" {
			db = paths.DB
		}
		fmt.Fprintf(out, "  DB:         %s\n", db)
		fmt.Fprintf(out, "  Timeout:    %s\n", cfg.Store.Timeout.Duration)
	case config.BackendRedis:
		fmt.Fprintf(out, "  Redis:      %s/%d\n", cfg.Redis.Addr, cfg.Redis.DB)
	}
	fmt.Fprintf(out, "  Scan batch: %d\n", cfg.Engine.ScanBatch)
	fmt.Fprintf(out, "  Log level:  %s\n", cfg.Log.Level)
	return nil
}
