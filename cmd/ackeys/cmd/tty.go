package cmd

import (
	"io"
	"os"
)

// isTerminal returns true if w is a file connected to a terminal. Buffers
// and pipes, as in tests and shell redirections, are not.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// isPipe returns true if r is piped or redirected input rather than a
// terminal. Non-file readers count as piped.
func isPipe(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice == 0
}

// resolveColor determines whether to use color output based on flags and
// whether out is a terminal. colorFlag is the --color value: "auto",
// "always", or "never".
func resolveColor(colorFlag string, noColorFlag bool, out io.Writer) bool {
	if noColorFlag {
		return false
	}
	switch colorFlag {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		return isTerminal(out)
	}
}
