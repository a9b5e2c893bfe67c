package orchestrator

import "fmt"

// ListFonts writes the catalog's faces, one per line; groupByFamily
// switches to one line per family with its variant count, the
// `fonts --families` action.
func (o *Orchestrator) ListFonts(groupByFamily bool) error {
	if groupByFamily {
		for _, fam := range o.Catalog.Families() {
			if _, err := fmt.Fprintf(o.Out, "%s (%d variant(s))\n", fam.DisplayName, len(fam.Variants)); err != nil {
				return err
			}
		}
		return nil
	}
	for _, f := range o.Catalog.Faces() {
		if _, err := fmt.Fprintf(o.Out, "%s\t%s\n", f.ID, f.DisplayName); err != nil {
			return err
		}
	}
	return nil
}
