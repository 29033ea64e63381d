package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/ackeys/internal/adapters/bbolt"
	"github.com/corey/ackeys/internal/app"
	"github.com/corey/ackeys/internal/config"
	"github.com/corey/ackeys/internal/metrics"
)

var infoMetrics bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show automaton size and backend",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoMetrics, "metrics", false, "Also print the store metrics gathered by this run")
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	info, err := a.Engine.Info(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, formatInfo(info, describeStore(a)))

	if infoMetrics {
		samples, err := metrics.Samples(a.Registry)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatSamples(samples))
	}
	return nil
}

// describeStore reports where the app's data lives.
func describeStore(a *app.App) storeInfo {
	st := storeInfo{Backend: a.Config.Store.Backend}
	switch st.Backend {
	case config.BackendRedis:
		st.Where = fmt.Sprintf("%s/%d", a.Config.Redis.Addr, a.Config.Redis.DB)
	case config.BackendBbolt:
		inner := a.Store
		if m, ok := inner.(*metrics.Store); ok {
			inner = m.Unwrap()
		}
		if b, ok := inner.(*bbolt.Store); ok {
			st.Where = b.Path()
			if size, err := b.Size(); err == nil {
				st.Size = size
			}
		}
	}
	return st
}
