package log

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Setup installs a root handler writing to stderr. Color is used only when
// stderr is a terminal; json selects JSONFormat instead.
func Setup(verbosity Lvl, json bool) {
	var (
		output io.Writer = os.Stderr
		format Format
	)
	if json {
		format = JSONFormat()
	} else {
		usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if usecolor {
			output = colorable.NewColorableStderr()
		}
		format = TerminalFormat(usecolor)
	}
	Root().SetHandler(LvlFilterHandler(verbosity, StreamHandler(output, format)))
}
