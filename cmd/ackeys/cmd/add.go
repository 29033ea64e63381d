package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <keyword>...",
	Short: "Add keywords to the automaton",
	Long:  "Adds each keyword, creating missing trie nodes and updating outputs. Adding a keyword twice is a no-op.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n := 0
	for _, k := range args {
		if n, err = a.Engine.Add(cmd.Context(), k); err != nil {
			return fmt.Errorf("add %q: %w", k, err)
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), formatCount(n))
	return nil
}
