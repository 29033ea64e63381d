package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "List keywords starting with a prefix",
	Long:  "Lists registered keywords starting with prefix in ascending order. No prefix lists them all.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "Maximum suggestions (0 = all)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if suggestLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}
	words, err := a.Engine.SuggestN(cmd.Context(), prefix, suggestLimit)
	if err != nil {
		return err
	}
	for _, w := range words {
		fmt.Fprintln(cmd.OutOrStdout(), w)
	}
	return nil
}
