/*
Package orchestrator coordinates the user-visible actions of §4.9: print,
print-preview, device operations, config operations, fonts, and version.
It is the single package that wires font, text/markdown, canvas, motion,
stepper, ebb and device together into one execution per invocation.

License: governed by the 3-Clause BSD license found in the module root.
*/
package orchestrator

import (
	"io"

	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/font"
	"github.com/axidraft/plotdrive/internal/settings"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.orchestrator")
}

// Orchestrator is the per-execution-context handle shared by whatever
// actions a single process invocation runs: one font catalog, one config
// store, and one output stream (§5, "the command-output stream is
// per-execution-context; defaults to standard output").
type Orchestrator struct {
	Catalog  *font.Catalog
	Settings *settings.Store
	Out      io.Writer
}
