package font

// FallbackResolver probes sibling faces (same family, same style) and then
// other families for a codepoint the base face is missing, caching the
// chosen face per codepoint (§4.2 step 2).
type FallbackResolver struct {
	catalog *Catalog
	base    *Face
	cache   map[rune]*Face
}

// NewFallbackResolver builds a resolver rooted at base.
func NewFallbackResolver(catalog *Catalog, base *Face) *FallbackResolver {
	return &FallbackResolver{catalog: catalog, base: base, cache: map[rune]*Face{}}
}

// FaceFor returns the face that should render r: the base face if it
// covers r, else a cached or freshly probed fallback.
func (fr *FallbackResolver) FaceFor(r rune) *Face {
	if fr.base != nil && fr.base.Covers(r) {
		return fr.base
	}
	if f, ok := fr.cache[r]; ok {
		return f
	}
	f := fr.probe(r)
	fr.cache[r] = f
	return f
}

func (fr *FallbackResolver) probe(r rune) *Face {
	if fr.base == nil {
		return nil
	}
	baseKey := normalizeFamilyKey(fr.base.DisplayName)
	baseFam := fr.catalog.families[baseKey]
	if baseFam != nil {
		for _, v := range baseFam.Variants {
			if v.Styles == fr.base.Styles && v.Covers(r) {
				return v
			}
		}
	}
	for _, fam := range fr.catalog.Families() {
		if fam.Key == baseKey {
			continue
		}
		for _, v := range fam.Variants {
			if v.Covers(r) {
				return v
			}
		}
	}
	tracer().Infof("no fallback face covers U+%04X, keeping base face", r)
	return fr.base
}
