package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/corey/ackeys/internal/domain/automaton"
)

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the stored automaton to stdout",
	Long:  "Writes keywords, nodes, suffixes, outputs and back-references as json, yaml or msgpack.",
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "json", "Output format: json, yaml, msgpack")
}

func runDump(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.Engine.Dump(cmd.Context())
	if err != nil {
		return err
	}
	return writeSnapshot(cmd.OutOrStdout(), snap, dumpFormat)
}

func writeSnapshot(w io.Writer, snap *automaton.Snapshot, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(snap)
	}
	return fmt.Errorf("unknown format %q (want json, yaml or msgpack)", format)
}
