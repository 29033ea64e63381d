package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/ackeys/internal/domain/automaton"
)

var (
	findFold      bool
	findPositions bool
)

var findCmd = &cobra.Command{
	Use:   "find [text...]",
	Short: "Scan text for every keyword",
	Long: "Reports every keyword occurrence in the text, overlapping ones included, in the order\n" +
		"the scan reaches them. With no arguments each line of piped stdin is scanned on its own.",
	RunE: runFind,
}

func init() {
	findCmd.Flags().BoolVar(&findFold, "fold", false, "Case-fold the text before scanning")
	findCmd.Flags().BoolVarP(&findPositions, "positions", "p", false, "Print rune offsets start-end")
}

func runFind(cmd *cobra.Command, args []string) error {
	var texts []string
	switch {
	case len(args) > 0:
		texts = []string{strings.Join(args, " ")}
	case isPipe(cmd.InOrStdin()):
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			texts = append(texts, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	default:
		return fmt.Errorf("find: text required (pass it as arguments or pipe it in)")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []automaton.FindOption
	if findFold {
		opts = append(opts, automaton.FoldText())
	}
	out := cmd.OutOrStdout()
	for i, text := range texts {
		matches, err := a.Engine.FindMatches(cmd.Context(), text, opts...)
		if err != nil {
			if len(texts) > 1 {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			return err
		}
		if len(texts) > 1 && len(matches) > 0 {
			fmt.Fprintln(out, paint(colorGray, fmt.Sprintf("── line %d", i+1)))
		}
		fmt.Fprint(out, formatMatches(matches, findPositions))
	}
	return nil
}
