package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/ackeys/internal/app"
	"github.com/corey/ackeys/internal/config"
	"github.com/corey/ackeys/internal/logger"
)

var (
	rootFlag     string
	configFlag   string
	backendFlag  string
	nameFlag     string
	logLevelFlag string
	colorFlag    string
	noColorFlag  bool
)

// useColor is resolved once per invocation from --color/--no-color.
var useColor bool

var rootCmd = &cobra.Command{
	Use:   "ackeys",
	Short: "ackeys: store-backed Aho-Corasick keyword matcher",
	Long: "Maintains an Aho-Corasick automaton in bbolt or Redis. Keywords are added and\n" +
		"removed incrementally; find scans text for all of them in one pass.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		useColor = resolveColor(colorFlag, noColorFlag, cmd.OutOrStdout())
	},
}

// projectRoot returns --root, or the cwd by default.
func projectRoot() string {
	if rootFlag != "" {
		return rootFlag
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// loadConfig resolves config file, environment and flags, in that order.
func loadConfig() (*config.Config, string, error) {
	paths := app.NewPaths(projectRoot())
	cfg, path, err := config.LoadConfigWithPriority(configFlag, paths.Config)
	if err != nil {
		return nil, "", err
	}
	if backendFlag != "" {
		cfg.Store.Backend = backendFlag
	}
	if nameFlag != "" {
		cfg.Engine.Name = nameFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	return cfg, path, cfg.Validate()
}

// openApp loads config and opens the store. Callers must Close the app.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	root := projectRoot()
	a, err := app.New(cmd.Context(), app.Options{
		ProjectRoot: root,
		Config:      cfg,
		Logger:      logger.New("ackeys", cfg.Log.Level),
	})
	if err != nil {
		if hint := diagnoseStore(err, cfg, root); hint != "" {
			return nil, &hintError{op: cmd.Name(), hint: hint, err: err}
		}
		return nil, err
	}
	return a, nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the context,
// which ends a running watch.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlag, "root", "", "Project root holding .ackeys/ (default: cwd)")
	pf.StringVar(&configFlag, "config", "", "Config file (default: <root>/.ackeys/config.toml)")
	pf.StringVar(&backendFlag, "backend", "", "Store backend: bbolt, redis or memory")
	pf.StringVar(&nameFlag, "name", "", "Automaton instance name")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&colorFlag, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&noColorFlag, "no-color", false, "Disable color output")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configCmd)
}
