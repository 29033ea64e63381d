// ackeys maintains an Aho-Corasick keyword automaton in bbolt or Redis.
// Keywords are added and removed one at a time; text is scanned for every
// keyword in a single pass.
package main

import (
	"os"

	"github.com/corey/ackeys/cmd/ackeys/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
