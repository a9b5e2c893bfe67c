package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/axidraft/plotdrive/internal/settings"
	"github.com/axidraft/plotdrive/perr"
)

// ShowConfig writes the persisted config document as indented JSON, the
// `config show` action.
func (o *Orchestrator) ShowConfig() error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return perr.Wrap(perr.Internal, err, "marshaling config document")
	}
	_, err = fmt.Fprintln(o.Out, string(raw))
	return err
}

// ResetConfig overwrites the persisted document with built-in defaults,
// the `config reset` action.
func (o *Orchestrator) ResetConfig() error {
	return o.Settings.Save(settings.Default())
}

// SetConfig applies kv onto the persisted document and saves it, the
// `config set k=v[,k=v...]` action. No partial apply: an unknown key or a
// value that fails validation leaves the stored document untouched.
func (o *Orchestrator) SetConfig(kv map[string]string) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	updated, err := settings.Set(doc, kv)
	if err != nil {
		return err
	}
	return o.Settings.Save(updated)
}
