/*
Package preview renders a composed canvas.Layout to a byte stream for
visual inspection, independent of the device pipeline (§4 component 6).

License: governed by the 3-Clause BSD license found in the module root.
*/
package preview

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/canvas"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.preview")
}

// Emitter turns a composed layout into an owned byte buffer. The
// orchestrator only ever depends on this interface — it is agnostic to
// which concrete format is selected.
type Emitter interface {
	Emit(layout canvas.Layout) ([]byte, error)
}
