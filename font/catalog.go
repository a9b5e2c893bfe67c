package font

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/axidraft/plotdrive/perr"
)

// DefaultFaceID is the face returned when a query is empty or unmatched.
const DefaultFaceID = "hershey-futural"

// indexEntry is one row of the on-disk catalog index.
type indexEntry struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	DisplayName string `json:"displayName"`
}

// strokeFile is the on-disk shape of one face's glyph data, loaded from the
// path named by an indexEntry.
type strokeFile struct {
	Metrics Metrics `json:"metrics"`
	Glyphs  []struct {
		Codepoint rune          `json:"codepoint"`
		Advance   float64       `json:"advance"`
		Strokes   [][][]float64 `json:"strokes"` // each stroke: [[x,y], [x,y], ...]
	} `json:"glyphs"`
}

// Catalog is the full set of loaded faces, grouped into families.
type Catalog struct {
	faces      map[string]*Face
	families   map[string]*Family
	orderedIDs []string
}

// LoadCatalog reads index.json under dir and parses every referenced
// stroke file. I/O or parse failures are reported as *perr.Error with Kind
// Resource.
func LoadCatalog(dir string) (*Catalog, error) {
	idxPath := filepath.Join(dir, "index.json")
	raw, err := os.ReadFile(idxPath)
	if err != nil {
		return nil, perr.Wrap(perr.Resource, err, "reading font catalog index %s", idxPath)
	}
	var entries []indexEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, perr.Wrap(perr.Resource, err, "parsing font catalog index %s", idxPath)
	}
	cat := &Catalog{faces: map[string]*Face{}, families: map[string]*Family{}}
	for _, e := range entries {
		facePath := e.Path
		if !filepath.IsAbs(facePath) {
			facePath = filepath.Join(dir, facePath)
		}
		face, err := loadFace(e, facePath)
		if err != nil {
			return nil, err
		}
		cat.addFace(face)
	}
	cat.finalize()
	return cat, nil
}

func loadFace(e indexEntry, path string) (*Face, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrap(perr.Resource, err, "reading stroke face %s", path)
	}
	var sf strokeFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return nil, perr.Wrap(perr.Resource, err, "parsing stroke face %s", path)
	}
	face := &Face{
		ID:          e.ID,
		DisplayName: e.DisplayName,
		Source:      path,
		Styles:      styleFromName(e.DisplayName),
		Metrics:     sf.Metrics,
		Glyphs:      make(map[rune]Glyph, len(sf.Glyphs)),
	}
	for _, g := range sf.Glyphs {
		strokes := make([][]StrokePoint, 0, len(g.Strokes))
		for _, s := range g.Strokes {
			pts := make([]StrokePoint, 0, len(s))
			for _, xy := range s {
				if len(xy) < 2 {
					continue
				}
				pts = append(pts, StrokePoint{X: xy[0], Y: xy[1]})
			}
			strokes = append(strokes, pts)
		}
		face.Glyphs[g.Codepoint] = Glyph{Codepoint: g.Codepoint, Advance: g.Advance, Strokes: strokes}
	}
	face.buildCoverage()
	return face, nil
}

func (c *Catalog) addFace(f *Face) {
	c.faces[f.ID] = f
	c.orderedIDs = append(c.orderedIDs, f.ID)
	key := normalizeFamilyKey(f.DisplayName)
	fam := c.families[key]
	if fam == nil {
		fam = &Family{Key: key, DisplayName: f.DisplayName}
		c.families[key] = fam
	}
	fam.Variants = append(fam.Variants, f)
	fam.Capability |= f.Styles
}

func (c *Catalog) finalize() {
	for _, fam := range c.families {
		sort.Slice(fam.Variants, func(i, j int) bool { return fam.Variants[i].ID < fam.Variants[j].ID })
	}
	sort.Strings(c.orderedIDs)
}

// Faces returns every loaded face, ordered by id.
func (c *Catalog) Faces() []*Face {
	out := make([]*Face, 0, len(c.orderedIDs))
	for _, id := range c.orderedIDs {
		out = append(out, c.faces[id])
	}
	return out
}

// Families returns every family, ordered by key.
func (c *Catalog) Families() []*Family {
	keys := make([]string, 0, len(c.families))
	for k := range c.families {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Family, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.families[k])
	}
	return out
}

// FaceByID looks up a face by its exact stable id.
func (c *Catalog) FaceByID(id string) (*Face, bool) {
	f, ok := c.faces[id]
	return f, ok
}

// Resolve finds a face by id or by a case-insensitive substring of its
// display name, falling back to DefaultFaceID when query is empty or
// unmatched.
func (c *Catalog) Resolve(query string) (*Face, bool) {
	if query != "" {
		if f, ok := c.faces[query]; ok {
			return f, true
		}
		lower := strings.ToLower(query)
		for _, id := range c.orderedIDs {
			f := c.faces[id]
			if strings.Contains(strings.ToLower(f.DisplayName), lower) {
				return f, true
			}
		}
		tracer().Infof("face query %q unmatched, falling back to default", query)
	}
	if f, ok := c.faces[DefaultFaceID]; ok {
		return f, true
	}
	if len(c.orderedIDs) > 0 {
		return c.faces[c.orderedIDs[0]], true
	}
	return nil, false
}

// familyScore is the sort key computed for §4.1 step 2-3.
type familyScore struct {
	fam         *Family
	best        *Face
	coverCount  int
	coversAll   bool
	capPopcount int
}

func scoreFamily(fam *Family, required []rune) familyScore {
	sc := familyScore{fam: fam}
	reqSet := make(map[rune]bool, len(required))
	for _, r := range required {
		reqSet[r] = true
	}
	var best *Face
	bestCount := -1
	bestStylePriority := 99
	for _, v := range fam.Variants {
		count := 0
		for r := range reqSet {
			if v.Covers(r) {
				count++
			}
		}
		sp := stylePriority(v.Styles)
		if count > bestCount || (count == bestCount && sp < bestStylePriority) {
			best = v
			bestCount = count
			bestStylePriority = sp
		}
	}
	sc.best = best
	sc.coverCount = bestCount
	sc.coversAll = bestCount == len(required) && len(required) > 0
	sc.capPopcount = fam.Capability.popcount()
	return sc
}

// stylePriority orders regular > bold > italic per §4.1 step 2 tie-break.
func stylePriority(s StyleSet) int {
	switch {
	case !s.Has(Bold) && !s.Has(Italic):
		return 0 // regular
	case s.Has(Bold) && !s.Has(Italic):
		return 1
	default:
		return 2 // italic or bold+italic
	}
}

// BestFace implements the §4.1 deterministic selection algorithm.
func (c *Catalog) BestFace(required []rune, preferredHint string) *Face {
	if preferredHint != "" {
		if f, ok := c.faces[preferredHint]; ok {
			return f
		}
	}
	families := c.Families()
	if len(families) == 0 {
		return nil
	}
	scores := make([]familyScore, 0, len(families))
	for _, fam := range families {
		scores = append(scores, scoreFamily(fam, required))
	}

	var preferredKey string
	if preferredHint != "" {
		if pf, ok := c.Resolve(preferredHint); ok {
			preferredKey = normalizeFamilyKey(pf.DisplayName)
		}
	}

	less := func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.coversAll != b.coversAll {
			return a.coversAll && !b.coversAll
		}
		if a.coverCount != b.coverCount {
			return a.coverCount > b.coverCount
		}
		if a.capPopcount != b.capPopcount {
			return a.capPopcount > b.capPopcount
		}
		if hasReg(a.fam) != hasReg(b.fam) {
			return hasReg(a.fam)
		}
		if a.fam.Capability.Has(Bold) != b.fam.Capability.Has(Bold) {
			return a.fam.Capability.Has(Bold)
		}
		if a.fam.Capability.Has(Italic) != b.fam.Capability.Has(Italic) {
			return a.fam.Capability.Has(Italic)
		}
		spA, spB := 99, 99
		if a.best != nil {
			spA = stylePriority(a.best.Styles)
		}
		if b.best != nil {
			spB = stylePriority(b.best.Styles)
		}
		if spA != spB {
			return spA < spB
		}
		if len(a.fam.Variants) != len(b.fam.Variants) {
			return len(a.fam.Variants) > len(b.fam.Variants)
		}
		return a.fam.DisplayName < b.fam.DisplayName
	}
	sort.SliceStable(scores, less)

	winner := scores[0]
	if preferredKey != "" && winner.fam.Key != preferredKey {
		for _, sc := range scores {
			if sc.fam.Key == preferredKey && sc.coversAll {
				// Preferred wins unless another full-cover family strictly
				// dominates it; since `scores` is already sorted best-first,
				// the preferred family only wins here if it ties the winner
				// on every sort key except the display-name tiebreak.
				if sameRank(sc, winner) {
					winner = sc
				}
				break
			}
		}
	}
	if winner.best != nil {
		return winner.best
	}
	if f, ok := c.Resolve(preferredHint); ok {
		return f
	}
	f, _ := c.Resolve("")
	return f
}

func hasReg(fam *Family) bool {
	for _, v := range fam.Variants {
		if v.Styles == Regular {
			return true
		}
	}
	return false
}

func sameRank(a, b familyScore) bool {
	spA, spB := 99, 99
	if a.best != nil {
		spA = stylePriority(a.best.Styles)
	}
	if b.best != nil {
		spB = stylePriority(b.best.Styles)
	}
	return a.coversAll == b.coversAll &&
		a.coverCount == b.coverCount &&
		a.capPopcount == b.capPopcount &&
		hasReg(a.fam) == hasReg(b.fam) &&
		a.fam.Capability.Has(Bold) == b.fam.Capability.Has(Bold) &&
		a.fam.Capability.Has(Italic) == b.fam.Capability.Has(Italic) &&
		spA == spB &&
		len(a.fam.Variants) == len(b.fam.Variants)
}
