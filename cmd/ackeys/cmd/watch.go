package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/ackeys/internal/adapters/fsnotify"
	"github.com/corey/ackeys/internal/app"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Keep the automaton in sync with a keyword file",
	Long: "Syncs the automaton to the keyword file, then again on every change, until\n" +
		"interrupted. A missing file is skipped rather than read as an empty list.",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", fsnotify.DefaultDebounce, "Quiet period before a change is synced")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := fsnotify.NewWatcher(watchDebounce)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "⚡ watching %s (ctrl-c to stop)\n", args[0])
	return a.Watch(cmd.Context(), args[0], w, func(res app.SyncResult, err error) {
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", paint(colorRed, "sync failed:"), err)
			return
		}
		fmt.Fprint(out, formatSync(res))
	})
}
