/*
Package settings persists the user-scoped configuration document of
§6.3: paper/margin geometry, default font selection, nominal motion
profile, servo calibration, and the default device alias.

License: governed by the 3-Clause BSD license found in the module root.
*/
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/perr"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.settings")
}

// schemaVersion is written into every persisted document and bumped
// whenever the Document shape changes incompatibly.
const schemaVersion = 1

// Document is the full persisted configuration (§6.3).
type Document struct {
	SchemaVersion int `json:"schemaVersion"`

	Orientation string  `json:"orientation"` // "portrait" or "landscape"
	PaperWMm    float64 `json:"paperWMm"`
	PaperHMm    float64 `json:"paperHMm"`
	MarginLMm   float64 `json:"marginLMm"`
	MarginRMm   float64 `json:"marginRMm"`
	MarginTMm   float64 `json:"marginTMm"`
	MarginBMm   float64 `json:"marginBMm"`

	DefaultPointSizePt float64 `json:"defaultPointSizePt"`
	DefaultFamily      string  `json:"defaultFamily"`

	NominalFeedMmS         float64 `json:"nominalFeedMmS"`
	TravelFeedMmS          float64 `json:"travelFeedMmS"` // pen-up travel speed, separate from and higher than NominalFeedMmS (§4.5 step 5)
	NominalAccel           float64 `json:"nominalAccel"`
	MaxCorneringDistanceMm float64 `json:"maxCorneringDistanceMm"`
	MinSegmentMm           float64 `json:"minSegmentMm"`

	ServoUpPosition   int32 `json:"servoUpPosition"`
	ServoDownPosition int32 `json:"servoDownPosition"`
	ServoRate         int32 `json:"servoRate"`
	ServoDelayMs      int32 `json:"servoDelayMs"`
	ServoTimeoutMs    int32 `json:"servoTimeoutMs"`

	// KinematicModel is "cartesian" or "corexy"; StepsPerMmX/Y calibrate
	// the model-profile projection the stepper driver uses (§4.6, §4.8
	// step 5). Zero means unconfigured — print aborts with a Config error
	// rather than guessing (Open Question 3).
	KinematicModel string  `json:"kinematicModel"`
	StepsPerMmX    float64 `json:"stepsPerMmX"`
	StepsPerMmY    float64 `json:"stepsPerMmY"`

	DefaultDeviceAlias string `json:"defaultDeviceAlias"`
}

// Default returns the built-in defaults used when no config file exists
// yet and as the base onto which a loaded document's zero values never
// silently override caller-supplied options (§4.9 step 1).
func Default() Document {
	return Document{
		SchemaVersion:          schemaVersion,
		Orientation:            "portrait",
		PaperWMm:               210,
		PaperHMm:               297,
		MarginLMm:              10,
		MarginRMm:              10,
		MarginTMm:              10,
		MarginBMm:              10,
		DefaultPointSizePt:     12,
		NominalFeedMmS:         60,
		TravelFeedMmS:          100,
		NominalAccel:           800,
		MaxCorneringDistanceMm: 0.1,
		MinSegmentMm:           0.05,
		KinematicModel:         "cartesian",
		ServoUpPosition:        20000,
		ServoDownPosition:      12000,
		ServoRate:              400,
		ServoDelayMs:           300,
		ServoTimeoutMs:     60000,
	}
}

// Validate enforces the invariants the orchestrator and config writer
// both rely on: geometry must be positive and the motion profile
// usable. It does not validate DefaultDeviceAlias or DefaultFamily,
// since empty just means "unset" for both.
func (d Document) Validate() error {
	if d.PaperWMm <= 0 || d.PaperHMm <= 0 {
		return perr.New(perr.Config, "paper size must be positive, got %.2f x %.2f mm", d.PaperWMm, d.PaperHMm)
	}
	if d.MarginLMm < 0 || d.MarginRMm < 0 || d.MarginTMm < 0 || d.MarginBMm < 0 {
		return perr.New(perr.Config, "margins must be non-negative")
	}
	if d.Orientation != "portrait" && d.Orientation != "landscape" {
		return perr.New(perr.Config, "orientation must be \"portrait\" or \"landscape\", got %q", d.Orientation)
	}
	if d.DefaultPointSizePt <= 0 {
		return perr.New(perr.Config, "default point size must be positive, got %.2f", d.DefaultPointSizePt)
	}
	if d.NominalFeedMmS <= 0 || d.NominalAccel <= 0 {
		return perr.New(perr.Config, "nominal feed and acceleration must be positive")
	}
	if d.TravelFeedMmS <= 0 {
		return perr.New(perr.Config, "travel feed must be positive, got %.2f", d.TravelFeedMmS)
	}
	if d.ServoTimeoutMs < 0 {
		return perr.New(perr.Config, "servo timeout must be non-negative")
	}
	if d.MaxCorneringDistanceMm <= 0 {
		return perr.New(perr.Config, "max cornering distance must be positive, got %.4f", d.MaxCorneringDistanceMm)
	}
	if d.MinSegmentMm < 0 {
		return perr.New(perr.Config, "min segment length must be non-negative")
	}
	if d.KinematicModel != "" && d.KinematicModel != "cartesian" && d.KinematicModel != "corexy" {
		return perr.New(perr.Config, "kinematicModel must be \"cartesian\" or \"corexy\", got %q", d.KinematicModel)
	}
	return nil
}

// HasDeviceProfile reports whether enough calibration is present to open a
// device session: both axes' steps_per_mm must be configured (Open
// Question 3 — print aborts rather than guessing when this is false).
func (d Document) HasDeviceProfile() bool {
	return d.StepsPerMmX > 0 && d.StepsPerMmY > 0
}

// Store loads and saves a Document at a fixed path.
type Store struct {
	path string
}

// defaultDir is github.com/axidraft/plotdrive's subdirectory of the
// user's config directory, holding config.json.
func defaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", perr.Wrap(perr.Resource, err, "resolving user config directory")
	}
	return filepath.Join(dir, "plotdrive"), nil
}

// Open resolves the store's path, defaulting to
// os.UserConfigDir()/plotdrive/config.json when dir is empty.
func Open(dir string) (*Store, error) {
	if dir == "" {
		d, err := defaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Store{path: filepath.Join(dir, "config.json")}, nil
}

// Path returns the file Store reads from and writes to.
func (s *Store) Path() string { return s.path }

// Load reads the persisted document, returning built-in defaults if no
// file exists yet.
func (s *Store) Load() (Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Document{}, perr.Wrap(perr.Resource, err, "reading config %s", s.path)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, perr.Wrap(perr.Resource, err, "parsing config %s", s.path)
	}
	return doc, nil
}

// Save validates doc and writes it atomically: a temp file in the same
// directory is written and fsynced, then renamed over the target path,
// so a crash mid-write never leaves a truncated config (§6.3).
func (s *Store) Save(doc Document) error {
	if doc.SchemaVersion == 0 {
		doc.SchemaVersion = schemaVersion
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.Wrap(perr.Resource, err, "creating config directory %s", dir)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return perr.Wrap(perr.Internal, err, "marshaling config document")
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json.tmp")
	if err != nil {
		return perr.Wrap(perr.Resource, err, "creating temp config file in %s", dir)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return perr.Wrap(perr.Resource, err, "writing temp config file %s", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return perr.Wrap(perr.Resource, err, "syncing temp config file %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return perr.Wrap(perr.Resource, err, "closing temp config file %s", tmpPath)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return perr.Wrap(perr.Resource, err, "renaming temp config file into place")
	}
	tracer().Debugf("saved config to %s", s.path)
	return nil
}

// Set applies k=v pairs onto doc's fields named by key, the collaborator
// behind `config set k=v[,k=v...]` (§6.1). Unknown keys are reported as
// *perr.Error with Kind Argument; no partial apply on error.
func Set(doc Document, kv map[string]string) (Document, error) {
	out := doc
	for k, v := range kv {
		if err := setField(&out, k, v); err != nil {
			return doc, err
		}
	}
	return out, nil
}
