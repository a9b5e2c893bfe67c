package font

// NewTestCatalog builds a Catalog directly from in-memory faces, bypassing
// LoadCatalog's disk I/O. It is exported for use by other packages' tests
// that need a font catalog without shipping fixture files.
func NewTestCatalog(faces ...*Face) *Catalog {
	c := &Catalog{faces: map[string]*Face{}, families: map[string]*Family{}}
	for _, f := range faces {
		if f.coverage == nil {
			f.buildCoverage()
		}
		c.addFace(f)
	}
	c.finalize()
	return c
}
