package orchestrator

import (
	"strings"
	"testing"
)

func TestListFontsGroupedByFamily(t *testing.T) {
	o, out := testOrchestrator(t)
	if err := o.ListFonts(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "test-face") {
		t.Fatalf("expected family listing to mention the test face, got %q", out.String())
	}
}

func TestListFontsByFace(t *testing.T) {
	o, out := testOrchestrator(t)
	if err := o.ListFonts(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "test-face") {
		t.Fatalf("expected face listing to mention the test face id, got %q", out.String())
	}
}
