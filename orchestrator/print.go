package orchestrator

import (
	"context"
	"fmt"
	"math"

	"github.com/axidraft/plotdrive/canvas"
	"github.com/axidraft/plotdrive/device"
	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/internal/settings"
	"github.com/axidraft/plotdrive/markdown"
	"github.com/axidraft/plotdrive/motion"
	"github.com/axidraft/plotdrive/perr"
	"github.com/axidraft/plotdrive/preview"
	"github.com/axidraft/plotdrive/stepper"
	"github.com/axidraft/plotdrive/text"
)

// unsetMargin is the sentinel a CLI layer should default a margin flag to
// when the user did not supply one, distinguishing "use the configured
// margin" from "print with a literal zero margin" (both are legitimate).
const unsetMargin = -1

// UnsetMargin exposes unsetMargin to cmd/plotdrive, which must default its
// margin flags to it rather than to 0.
const UnsetMargin = unsetMargin

// PrintOptions carries everything a `print` invocation resolves from CLI
// flags, falling back to the persisted config document (§4.9 step 1). Zero
// (or unsetMargin, for the margins) marks a field the caller left
// unspecified.
type PrintOptions struct {
	Input      string
	Markdown   bool
	FamilyHint string
	Language   string // BCP-47 hint, see text.Options.Language

	PointSizePt float64

	Orientation                                canvas.Orientation
	PaperWMm, PaperHMm                         float64
	MarginLMm, MarginRMm, MarginTMm, MarginBMm float64
	FitToFrame                                 bool

	DryRun  bool
	Preview preview.Emitter // non-nil switches Print into preview mode

	DeviceAlias string
}

// resolveOptions implements §4.9 step 1's CLI > config > defaults
// precedence: a field left at its zero/unset value falls back to the
// persisted document (which itself falls back to settings.Default()
// whenever nothing has been saved yet). Orientation is the exception: it
// is taken from opts as given, and the document's orientation is not
// consulted.
func resolveOptions(opts PrintOptions, doc settings.Document) (PrintOptions, error) {
	if opts.PointSizePt <= 0 {
		opts.PointSizePt = doc.DefaultPointSizePt
	}
	if opts.FamilyHint == "" {
		opts.FamilyHint = doc.DefaultFamily
	}
	if opts.PaperWMm <= 0 {
		opts.PaperWMm = doc.PaperWMm
	}
	if opts.PaperHMm <= 0 {
		opts.PaperHMm = doc.PaperHMm
	}
	if opts.MarginLMm == unsetMargin {
		opts.MarginLMm = doc.MarginLMm
	}
	if opts.MarginRMm == unsetMargin {
		opts.MarginRMm = doc.MarginRMm
	}
	if opts.MarginTMm == unsetMargin {
		opts.MarginTMm = doc.MarginTMm
	}
	if opts.MarginBMm == unsetMargin {
		opts.MarginBMm = doc.MarginBMm
	}
	if opts.DeviceAlias == "" {
		opts.DeviceAlias = doc.DefaultDeviceAlias
	}
	if opts.PaperWMm <= 0 || opts.PaperHMm <= 0 {
		return opts, perr.New(perr.Config, "paper size is not configured; pass --paper-w/--paper-h or run `config set`")
	}
	if opts.Input == "" {
		return opts, perr.New(perr.Argument, "print requires non-empty input")
	}
	return opts, nil
}

// Print implements §4.9's five-step print pipeline.
func (o *Orchestrator) Print(ctx context.Context, opts PrintOptions) error {
	doc, err := o.Settings.Load()
	if err != nil {
		return err
	}
	opts, err = resolveOptions(opts, doc)
	if err != nil {
		return err
	}

	page := canvas.Page{
		PaperW:      opts.PaperWMm,
		PaperH:      opts.PaperHMm,
		MarginL:     opts.MarginLMm,
		MarginR:     opts.MarginRMm,
		MarginT:     opts.MarginTMm,
		MarginB:     opts.MarginBMm,
		Orientation: opts.Orientation,
		FitToFrame:  opts.FitToFrame,
		BasePointPt: opts.PointSizePt,
	}
	frameW, _ := canvas.FrameSize(page)

	layout, err := canvas.Compose(page, o.renderer(opts, frameW))
	if err != nil {
		return err
	}

	if opts.Preview != nil {
		raw, err := opts.Preview.Emit(layout)
		if err != nil {
			return err
		}
		_, err = o.Out.Write(raw)
		return err
	}

	limits := motion.Limits{
		MaxFeed:                math.Max(doc.NominalFeedMmS, doc.TravelFeedMmS),
		MaxAccel:                doc.NominalAccel,
		MaxCorneringDistanceMm: doc.MaxCorneringDistanceMm,
		MinSegmentMm:           doc.MinSegmentMm,
	}
	segs := toSegments(layout.Paths, doc.TravelFeedMmS, doc.NominalFeedMmS)
	blocks, err := motion.Plan(geom.Point{}, segs, limits)
	if err != nil {
		return err
	}

	if opts.DryRun {
		return o.reportPlan(blocks)
	}

	if !doc.HasDeviceProfile() {
		return perr.New(perr.Config, "no device profile configured; set stepsPerMmX/stepsPerMmY via `config set` before printing")
	}
	st := stepperSettings(doc)
	devOpts := device.Options{
		Alias:      opts.DeviceAlias,
		StepsPerMm: st.StepsPerMm,
		Model:      st.Model,
		WaitIdle:   true,
	}
	return device.Open(devOpts, func(session *device.Session) error {
		return submit(ctx, session, blocks, st)
	})
}

// renderer returns the RenderFunc canvas.Compose re-invokes at a reduced
// point size for fit-to-frame, selecting plain text or Markdown layout.
func (o *Orchestrator) renderer(opts PrintOptions, frameW float64) canvas.RenderFunc {
	return func(sizePt float64) (geom.PathCollection, error) {
		if opts.Markdown {
			pc, stats, err := markdown.Render(o.Catalog, opts.Input, markdown.Options{
				FamilyHint:  opts.FamilyHint,
				BasePointPt: sizePt,
				FrameWidth:  frameW,
				Language:    opts.Language,
			})
			if err != nil {
				return geom.PathCollection{}, err
			}
			if stats.TextStats.Missing > 0 {
				tracer().Warnf("%d glyphs missing from catalog", stats.TextStats.Missing)
			}
			return pc, nil
		}
		result, err := text.Layout(o.Catalog, opts.Input, nil, text.Options{
			FamilyHint:     opts.FamilyHint,
			PointSize:      sizePt,
			Units:          geom.Mm,
			FrameWidth:     frameW,
			Align:          text.AlignLeft,
			Hyphenate:      true,
			BreakLongWords: true,
			Language:       opts.Language,
		})
		if err != nil {
			return geom.PathCollection{}, err
		}
		if result.Stats.Missing > 0 {
			tracer().Warnf("%d glyphs missing from catalog", result.Stats.Missing)
		}
		return result.Paths, nil
	}
}

// reportPlan writes a one-line dry-run summary instead of opening a
// device session.
func (o *Orchestrator) reportPlan(blocks []motion.Block) error {
	var lengthMm, seconds float64
	for _, b := range blocks {
		lengthMm += b.Length
		seconds += b.Duration
	}
	_, err := fmt.Fprintf(o.Out, "dry run: %d blocks, %.1fmm travel, %.2fs estimated\n", len(blocks), lengthMm, seconds)
	return err
}

// stepperSettings derives the stepper calibration from the persisted
// config document.
func stepperSettings(doc settings.Document) stepper.Settings {
	model := stepper.Cartesian
	if doc.KinematicModel == "corexy" {
		model = stepper.CoreXY
	}
	return stepper.Settings{StepsPerMm: [2]float64{doc.StepsPerMmX, doc.StepsPerMmY}, Model: model}
}
