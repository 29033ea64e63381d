package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/ackeys/internal/adapters/ahocorasick"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [text...]",
	Short: "Check the stored automaton for consistency",
	Long: "Checks node, suffix and output invariants. Each text given is also scanned and\n" +
		"compared against an in-memory Aho-Corasick matcher built from the same keywords.",
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	keywords, err := a.Engine.Keywords(ctx)
	if err != nil {
		return err
	}
	ref, err := ahocorasick.NewMatcher(keywords)
	if err != nil {
		return err
	}
	report, err := a.Engine.Verify(ctx, ref, args...)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatReport(report))
	if !report.OK() {
		return errors.New("verify failed")
	}
	return nil
}
