package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/corey/ackeys/internal/app"
)

var loadSync bool

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Add every keyword listed in a file",
	Long: "Reads one keyword per line (blank lines and # comments skipped) and adds them all.\n" +
		"With --sync, keywords missing from the file are removed as well.",
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadSync, "sync", false, "Also remove keywords not listed in the file")
}

func runLoad(cmd *cobra.Command, args []string) error {
	keywords, err := app.ReadKeywordFile(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if loadSync {
		res, err := a.Sync(cmd.Context(), keywords)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatSync(res))
		return nil
	}

	errOut := cmd.ErrOrStderr()
	bar := progressbar.NewOptions(len(keywords),
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionSetVisibility(isTerminal(errOut)),
		progressbar.OptionSetDescription("loading"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	n, err := a.Load(cmd.Context(), keywords, func(done int) {
		_ = bar.Set(done)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatCount(n))
	return nil
}
