package font

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func testFace(id, display string, styles StyleSet, covers ...rune) *Face {
	f := &Face{ID: id, DisplayName: display, Styles: styles, Glyphs: map[rune]Glyph{}}
	for _, r := range covers {
		f.Glyphs[r] = Glyph{Codepoint: r, Advance: 600}
	}
	f.buildCoverage()
	return f
}

func testCatalog(faces ...*Face) *Catalog {
	c := &Catalog{faces: map[string]*Face{}, families: map[string]*Family{}}
	for _, f := range faces {
		c.addFace(f)
	}
	c.finalize()
	return c
}

func TestResolveExactAndSubstring(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "plotdrive.font")
	defer teardown()
	cat := testCatalog(
		testFace("hershey-futural", "Futura Regular", Regular, 'A', 'B'),
		testFace("hershey-futuram", "Futura Bold", Bold, 'A', 'B'),
	)
	if f, ok := cat.Resolve("hershey-futuram"); !ok || f.ID != "hershey-futuram" {
		t.Fatalf("exact id resolve failed: %+v", f)
	}
	if f, ok := cat.Resolve("futura bold"); !ok || f.ID != "hershey-futuram" {
		t.Fatalf("substring resolve failed: %+v", f)
	}
	if f, ok := cat.Resolve(""); !ok || f.ID != DefaultFaceID {
		t.Fatalf("empty query should fall back to default: %+v", f)
	}
}

func TestBestFaceCoversAllWins(t *testing.T) {
	partial := testFace("partial", "Partial Regular", Regular, 'A')
	full := testFace("full", "Full Regular", Regular, 'A', 'B')
	cat := testCatalog(partial, full)

	best := cat.BestFace([]rune{'A', 'B'}, "")
	if best.ID != "full" {
		t.Fatalf("expected full-coverage family to win, got %s", best.ID)
	}
}

func TestBestFacePreferredHintWinsOnTie(t *testing.T) {
	a := testFace("alpha", "Alpha Regular", Regular, 'A', 'B')
	b := testFace("beta", "Beta Regular", Regular, 'A', 'B')
	cat := testCatalog(a, b)

	best := cat.BestFace([]rune{'A', 'B'}, "Beta Regular")
	if best.ID != "beta" {
		t.Fatalf("expected preferred family to win a tie, got %s", best.ID)
	}
}

func TestBestFaceDominatingFamilyBeatsPreferred(t *testing.T) {
	preferred := testFace("pref", "Pref Regular", Regular, 'A')
	dominant := testFace("dom", "Dom Regular", Regular, 'A', 'B')
	cat := testCatalog(preferred, dominant)

	best := cat.BestFace([]rune{'A', 'B'}, "Pref Regular")
	if best.ID != "dom" {
		t.Fatalf("expected strictly dominating family to beat preferred, got %s", best.ID)
	}
}

func TestBestFaceDeterministic(t *testing.T) {
	cat := testCatalog(
		testFace("a", "A Regular", Regular, 'x', 'y'),
		testFace("b", "B Regular", Regular, 'x'),
	)
	first := cat.BestFace([]rune{'x'}, "")
	for i := 0; i < 10; i++ {
		if cat.BestFace([]rune{'x'}, "").ID != first.ID {
			t.Fatalf("face selection is not deterministic across repeated calls")
		}
	}
}

func TestFallbackResolverProbesSiblingsThenOthers(t *testing.T) {
	baseReg := testFace("base-reg", "Base Regular", Regular, 'A')
	baseBold := testFace("base-bold", "Base Bold", Bold, 'A', 'B')
	other := testFace("other-reg", "Other Regular", Regular, 'A', 'B', 'C')
	cat := testCatalog(baseReg, baseBold, other)

	fr := NewFallbackResolver(cat, baseReg)
	if f := fr.FaceFor('A'); f != baseReg {
		t.Fatalf("base-covered rune should stay on base face")
	}
	if f := fr.FaceFor('C'); f.ID != "other-reg" {
		t.Fatalf("expected cross-family fallback for 'C', got %s", f.ID)
	}
	if f := fr.FaceFor('C'); f.ID != "other-reg" {
		t.Fatalf("cached fallback should stay stable")
	}
}
