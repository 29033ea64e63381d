package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <keyword>...",
	Aliases: []string{"rm"},
	Short:   "Remove keywords from the automaton",
	Long:    "Removes each keyword and prunes the trie nodes only it needed. Unknown keywords are ignored.",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n := 0
	for _, k := range args {
		if n, err = a.Engine.Remove(cmd.Context(), k); err != nil {
			return fmt.Errorf("remove %q: %w", k, err)
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), formatCount(n))
	return nil
}
