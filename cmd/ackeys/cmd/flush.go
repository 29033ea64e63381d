package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flushForce bool

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Delete every keyword and node of this instance",
	Long:  "Empties the automaton named by --name. Other instances sharing the backend are untouched.",
	RunE:  runFlush,
}

func init() {
	flushCmd.Flags().BoolVar(&flushForce, "force", false, "Skip confirmation prompt")
}

func runFlush(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if !flushForce {
		fmt.Fprintf(out, "⚠ This will delete every keyword in %q. Continue? [y/N] ", a.Engine.Name())
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "cancelled")
			return nil
		}
	}

	if err := a.Engine.Flush(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(out, "⚡ %s flushed\n", a.Engine.Name())
	return nil
}
