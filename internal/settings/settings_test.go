package settings

import (
	"path/filepath"
	"testing"

	"github.com/axidraft/plotdrive/perr"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != Default() {
		t.Fatalf("expected defaults, got %+v", doc)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := Default()
	doc.DefaultDeviceAlias = "axidraw-1"
	doc.PaperWMm = 297
	doc.PaperHMm = 420

	if err := store.Save(doc); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if loaded != doc {
		t.Fatalf("round-tripped document differs: got %+v, want %+v", loaded, doc)
	}
}

func TestSaveRejectsInvalidDocumentWithoutWriting(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := Default()
	bad.PaperWMm = 0
	if err := store.Save(bad); perr.KindOf(err) != perr.Config {
		t.Fatalf("expected Config error kind, got %v", err)
	}
	if _, statErr := filepath.Glob(store.Path()); statErr != nil {
		t.Fatalf("unexpected glob error: %v", statErr)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != Default() {
		t.Fatalf("expected no persistence on validation failure, got %+v", loaded)
	}
}

func TestSetAppliesKnownKeys(t *testing.T) {
	doc, err := Set(Default(), map[string]string{"paperWMm": "148", "defaultFamily": "futura"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PaperWMm != 148 || doc.DefaultFamily != "futura" {
		t.Fatalf("unexpected document after Set: %+v", doc)
	}
}

func TestSetRejectsUnknownKey(t *testing.T) {
	_, err := Set(Default(), map[string]string{"bogus": "1"})
	if perr.KindOf(err) != perr.Argument {
		t.Fatalf("expected Argument error kind, got %v", err)
	}
}
