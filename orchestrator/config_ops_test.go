package orchestrator

import (
	"os"
	"strings"
	"testing"

	"github.com/axidraft/plotdrive/perr"
)

func TestShowConfigWritesJSON(t *testing.T) {
	o, out := testOrchestrator(t)
	if err := o.ShowConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "\"paperWMm\"") {
		t.Fatalf("expected JSON config dump, got %q", out.String())
	}
}

func TestSetConfigPersistsKnownKeys(t *testing.T) {
	o, _ := testOrchestrator(t)
	if err := o.SetConfig(map[string]string{"stepsPerMmX": "80", "stepsPerMmY": "80", "kinematicModel": "corexy"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := o.Settings.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.StepsPerMmX != 80 || doc.KinematicModel != "corexy" {
		t.Fatalf("expected persisted config update, got %+v", doc)
	}
}

func TestSetConfigRejectsUnknownKeyWithoutPersisting(t *testing.T) {
	o, _ := testOrchestrator(t)
	err := o.SetConfig(map[string]string{"bogus": "1"})
	if perr.KindOf(err) != perr.Argument {
		t.Fatalf("expected Argument error kind, got %v", err)
	}
	if _, statErr := os.Stat(o.Settings.Path()); !os.IsNotExist(statErr) {
		t.Fatalf("expected no config file to be written, stat returned %v", statErr)
	}
}

func TestResetConfigRestoresDefaults(t *testing.T) {
	o, _ := testOrchestrator(t)
	if err := o.SetConfig(map[string]string{"paperWMm": "148"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.ResetConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := o.Settings.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PaperWMm != 210 {
		t.Fatalf("expected reset to built-in default paper width, got %v", doc.PaperWMm)
	}
}
