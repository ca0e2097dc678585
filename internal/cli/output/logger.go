package output

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// VerboseLevel is the highest V-level printed by a verbose logger.
const VerboseLevel = 2

// NewLogger returns a logger writing dim trace lines to stderr when verbose is
// set, and a discarding logger otherwise.
func NewLogger(verbose bool) logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	return newWriterLogger(os.Stderr)
}

func newWriterLogger(w io.Writer) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			args = prefix + ": " + args
		}
		fmt.Fprintf(w, "  %s %s\n", SymbolBullet, Dim(args))
	}, funcr.Options{Verbosity: VerboseLevel})
}
