/*
Package stepper converts a motion.Block into 1-3 EBB-ready phases (accel,
cruise, decel), projecting the block's Cartesian delta through the
device's kinematic model and encoding per-phase rate/acceleration in the
EBB's 40us time base (§4.6).

License: governed by the 3-Clause BSD license found in the module root.
*/
package stepper

import (
	"math"

	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/motion"
	"github.com/axidraft/plotdrive/perr"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.stepper")
}

// KinematicModel selects how a planar (X, Y) delta is projected onto the
// two motor axes.
type KinematicModel int

const (
	Cartesian KinematicModel = iota
	CoreXY
)

// Settings carries the per-device calibration needed to turn millimeters
// into motor steps.
type Settings struct {
	StepsPerMm [2]float64
	Model      KinematicModel
}

// intervalSeconds is the EBB's low-level time base: every rate/accel
// interval is 40 microseconds (§4.6, §6.2).
const intervalSeconds = 40e-6

// rateScale converts steps/second to the EBB's fixed-point rate encoding:
// steps_per_second * 2^31 * 40e-6.
const rateScale = (1 << 31) * intervalSeconds

const maxI32 = 1<<31 - 1
const minI32 = -(1 << 31)

// PhaseKind names which part of the trapezoid a Phase belongs to.
type PhaseKind int

const (
	PhaseAccel PhaseKind = iota
	PhaseCruise
	PhaseDecel
)

// Phase is one device-ready (or dry-run diagnostic) low-level move.
type Phase struct {
	Kind       PhaseKind
	Steps      [2]int32
	Duration   float64
	Intervals  int32
	RateStart  [2]int32
	RateEnd    [2]int32
	Accel      [2]int32
	DryRun     bool
}

// project turns a planar delta into per-axis step deltas under the
// selected kinematic model: Cartesian is the identity, CoreXY combines
// A=X+Y, B=X-Y.
func project(dx, dy float64, settings Settings) (a, b float64) {
	switch settings.Model {
	case CoreXY:
		return dx + dy, dx - dy
	default:
		return dx, dy
	}
}

// Derive implements §4.6: kinematic projection, proportional phase
// distribution with last-phase rounding absorption, phase duration, and
// rate/accel encoding. Zero-distance phases are omitted.
//
// diagnostics collects non-fatal perr.Overflow values raised by saturating
// mm-to-step conversion (§4.6 overflow policy: warn, do not fail) — the
// caller decides whether to log, surface, or discard them.
func Derive(block motion.Block, settings Settings, dryRun bool) (phases []Phase, diagnostics []error, err error) {
	if settings.StepsPerMm[0] <= 0 || settings.StepsPerMm[1] <= 0 {
		return nil, nil, perr.New(perr.Config, "steps_per_mm must be positive, got %v", settings.StepsPerMm)
	}
	dx := block.End.X - block.Start.X
	dy := block.End.Y - block.Start.Y
	axisA, axisB := project(dx, dy, settings)

	totalStepsA, warnA := toSteps(axisA, settings.StepsPerMm[0])
	totalStepsB, warnB := toSteps(axisB, settings.StepsPerMm[1])
	if warnA {
		diagnostics = append(diagnostics, perr.New(perr.Overflow, "axis A mm-to-step conversion saturated for block %+v", block))
	}
	if warnB {
		diagnostics = append(diagnostics, perr.New(perr.Overflow, "axis B mm-to-step conversion saturated for block %+v", block))
	}
	for _, d := range diagnostics {
		tracer().Warnf("%v", d)
	}

	var specs []phaseSpec
	if block.AccelDist > 0 {
		specs = append(specs, phaseSpec{PhaseAccel, block.AccelDist, block.EntrySpeed, block.CruiseSpeed})
	}
	if block.CruiseDist > 0 {
		specs = append(specs, phaseSpec{PhaseCruise, block.CruiseDist, block.CruiseSpeed, block.CruiseSpeed})
	}
	if block.DecelDist > 0 {
		specs = append(specs, phaseSpec{PhaseDecel, block.DecelDist, block.CruiseSpeed, block.ExitSpeed})
	}
	if len(specs) == 0 {
		return nil, diagnostics, nil
	}

	stepsA := distributeSteps(totalStepsA, specsDistances(specs), block.Length)
	stepsB := distributeSteps(totalStepsB, specsDistances(specs), block.Length)

	phases = make([]Phase, len(specs))
	for i, sp := range specs {
		duration := phaseDuration(sp.dist, sp.entrySpeed, sp.exitSpeed)
		intervals := int32(math.Round(duration / intervalSeconds))
		if intervals < 1 {
			intervals = 1
		}

		rateStartA := encodeRate(stepRateHz(sp.entrySpeed, block.Length, axisA, settings.StepsPerMm[0]))
		rateEndA := encodeRate(stepRateHz(sp.exitSpeed, block.Length, axisA, settings.StepsPerMm[0]))
		rateStartB := encodeRate(stepRateHz(sp.entrySpeed, block.Length, axisB, settings.StepsPerMm[1]))
		rateEndB := encodeRate(stepRateHz(sp.exitSpeed, block.Length, axisB, settings.StepsPerMm[1]))

		phases[i] = Phase{
			Kind:      sp.kind,
			Steps:     [2]int32{stepsA[i], stepsB[i]},
			Duration:  duration,
			Intervals: intervals,
			RateStart: [2]int32{rateStartA, rateStartB},
			RateEnd:   [2]int32{rateEndA, rateEndB},
			Accel: [2]int32{
				encodeAccel(rateEndA, rateStartA, intervals),
				encodeAccel(rateEndB, rateStartB, intervals),
			},
			DryRun: dryRun,
		}
	}
	return phases, diagnostics, nil
}

// phaseSpec is one trapezoid phase before step/rate encoding.
type phaseSpec struct {
	kind                  PhaseKind
	dist                  float64
	entrySpeed, exitSpeed float64
}

func specsDistances(specs []phaseSpec) []float64 {
	out := make([]float64, len(specs))
	for i, s := range specs {
		out[i] = s.dist
	}
	return out
}

// distributeSteps allocates total across phases proportionally to their
// distance share of blockLength, with the last nonzero phase absorbing
// all rounding so the phases sum to total exactly (property 5).
func distributeSteps(total int32, distances []float64, blockLength float64) []int32 {
	out := make([]int32, len(distances))
	if blockLength <= 0 || total == 0 {
		return out
	}
	var assigned int32
	lastIdx := len(distances) - 1
	for i, d := range distances {
		if i == lastIdx {
			out[i] = total - assigned
			break
		}
		share := int32(math.Round(float64(total) * d / blockLength))
		out[i] = share
		assigned += share
	}
	return out
}

// phaseDuration implements §4.6: t = 2d/(v0+v1) when the sum is positive,
// falling back to d/max(v0,v1) otherwise, guaranteeing t > 0.
func phaseDuration(d, v0, v1 float64) float64 {
	if v0+v1 > 0 {
		t := 2 * d / (v0 + v1)
		if t > 0 {
			return t
		}
	}
	m := math.Max(v0, v1)
	if m > 0 {
		return d / m
	}
	return 1e-6
}

// stepRateHz converts a linear feed (mm/s) at a point along the block
// into this axis's step rate: scale by the axis's fraction of the
// block's total planar length, then by the axis's steps-per-mm
// calibration to turn the mm/s fraction into steps/second.
func stepRateHz(speedMmS, blockLength, axisDeltaMm, stepsPerMm float64) float64 {
	if blockLength <= 0 {
		return 0
	}
	return speedMmS * math.Abs(axisDeltaMm) / blockLength * stepsPerMm
}

// encodeRate implements steps_per_second * 2^31 * 40e-6, clamped to the
// device's 31-bit field.
func encodeRate(stepsPerSecond float64) int32 {
	if math.IsNaN(stepsPerSecond) || math.IsInf(stepsPerSecond, 0) {
		return 0
	}
	v := stepsPerSecond * rateScale
	if v > maxI32 {
		return maxI32
	}
	if v < 0 {
		return 0
	}
	return int32(math.Round(v))
}

// encodeAccel implements (rate_end - rate_start) / intervals, rounded
// and clamped to i32.
func encodeAccel(rateEnd, rateStart, intervals int32) int32 {
	if intervals <= 0 {
		return 0
	}
	v := float64(rateEnd-rateStart) / float64(intervals)
	if v > maxI32 {
		return maxI32
	}
	if v < minI32 {
		return minI32
	}
	return int32(math.Round(v))
}

// toSteps saturates a millimeter delta to an i32 step count at the given
// calibration, reporting whether saturation or a non-finite input
// occurred (§4.6 overflow policy: warn, do not fail).
func toSteps(deltaMm, stepsPerMm float64) (steps int32, warned bool) {
	if math.IsNaN(deltaMm) || math.IsInf(deltaMm, 0) || math.IsNaN(stepsPerMm) || math.IsInf(stepsPerMm, 0) {
		return 0, true
	}
	v := deltaMm * stepsPerMm
	if v > maxI32 {
		return maxI32, true
	}
	if v < minI32 {
		return minI32, true
	}
	return int32(math.Round(v)), false
}
