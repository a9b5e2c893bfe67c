/*
Package motion turns an ordered sequence of pen-up/pen-down segments into
trapezoidal-profile blocks: a forward junction-speed pass, a reverse
decel-feasibility pass, a second forward accel-feasibility pass, and
short-segment merging (§4.5).

License: governed by the 3-Clause BSD license found in the module root.
*/
package motion

import (
	"math"

	"github.com/npillmayer/schuko/tracing"

	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/perr"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.motion")
}

// Limits bounds the planner's feed, acceleration and junction behavior.
type Limits struct {
	MaxFeed                float64 // mm/s, also the pen-up travel feed
	MaxAccel               float64 // mm/s^2
	MaxCorneringDistanceMm float64
	MinSegmentMm           float64
}

// Segment is one requested move: a target point (mm, absolute), a
// requested feed, and whether the pen is down for the move.
type Segment struct {
	Target  geom.Point
	FeedMmS float64
	PenDown bool
}

// Block is one planned move with a fully resolved trapezoidal profile.
type Block struct {
	Start, End            geom.Point
	Length                float64
	PenDown               bool
	NominalFeed           float64
	EntrySpeed, ExitSpeed float64
	CruiseSpeed           float64
	AccelDist, CruiseDist float64
	DecelDist             float64
	Duration              float64
}

// Plan implements §4.5 steps 1-5. An empty segment list returns (nil, nil).
func Plan(start geom.Point, segs []Segment, limits Limits) ([]Block, error) {
	if limits.MaxFeed <= 0 || limits.MaxAccel <= 0 || limits.MaxCorneringDistanceMm <= 0 || limits.MinSegmentMm < 0 {
		return nil, perr.New(perr.Config, "invalid motion profile: maxFeed=%v maxAccel=%v corneringDist=%v minSegment=%v",
			limits.MaxFeed, limits.MaxAccel, limits.MaxCorneringDistanceMm, limits.MinSegmentMm)
	}
	if len(segs) == 0 {
		return nil, nil
	}

	merged := mergeShortSegments(segs, limits.MinSegmentMm)
	blocks := buildBlocks(start, merged, limits)
	if len(blocks) == 0 {
		return nil, nil
	}

	junction := forwardJunctionPass(blocks, limits)
	reverseDecelPass(blocks, junction, limits.MaxAccel)
	forwardAccelPass(blocks, junction, limits.MaxAccel)
	resolveTrapezoids(blocks, junction, limits.MaxAccel)

	return blocks, nil
}

// mergeShortSegments folds any segment whose length falls under minSegmentMm
// into the previous one by extending its target, avoiding sub-step jitter
// from near-zero-length moves (§4.5 step 4).
func mergeShortSegments(segs []Segment, minSegmentMm float64) []Segment {
	if len(segs) == 0 {
		return nil
	}
	out := make([]Segment, 0, len(segs))
	prev := geom.Point{}
	haveOrigin := false
	for _, s := range segs {
		if !haveOrigin {
			out = append(out, s)
			prev = s.Target
			haveOrigin = true
			continue
		}
		length := dist(prev, s.Target)
		if length < minSegmentMm && len(out) > 0 {
			out[len(out)-1].Target = s.Target
			out[len(out)-1].FeedMmS = s.FeedMmS
		} else {
			out = append(out, s)
		}
		prev = s.Target
	}
	return out
}

func buildBlocks(start geom.Point, segs []Segment, limits Limits) []Block {
	blocks := make([]Block, 0, len(segs))
	cur := start
	for _, s := range segs {
		length := dist(cur, s.Target)
		if length == 0 {
			cur = s.Target
			continue
		}
		nominal := limits.MaxFeed
		if s.PenDown {
			nominal = s.FeedMmS
			if nominal <= 0 || nominal > limits.MaxFeed {
				nominal = limits.MaxFeed
			}
		}
		blocks = append(blocks, Block{
			Start:       cur,
			End:         s.Target,
			Length:      length,
			PenDown:     s.PenDown,
			NominalFeed: nominal,
		})
		cur = s.Target
	}
	return blocks
}

func dist(a, b geom.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// forwardJunctionPass computes the junction speed between each adjacent
// block pair using the cornering-distance formula, clamped by both
// blocks' nominal feeds and zeroed across pen-state transitions. It
// returns a length-(len(blocks)+1) array where junction[0] is the speed
// entering the first block (always 0, starting from rest) and
// junction[i] for i in [1, n-1] is the speed between block i-1 and block
// i; junction[n] is the speed after the last block (always 0).
func forwardJunctionPass(blocks []Block, limits Limits) []float64 {
	n := len(blocks)
	junction := make([]float64, n+1)
	junction[0] = 0
	junction[n] = 0
	for i := 0; i < n-1; i++ {
		a, b := blocks[i], blocks[i+1]
		v := 0.0
		if a.PenDown == b.PenDown {
			v = junctionSpeed(a, b, limits)
		}
		if v > a.NominalFeed {
			v = a.NominalFeed
		}
		if v > b.NominalFeed {
			v = b.NominalFeed
		}
		junction[i+1] = v
	}
	return junction
}

// junctionSpeed implements the cornering-distance formula verbatim:
// v_j <= sqrt(maxAccel * corneringDistance * (1+cosTheta)/(1-cosTheta)).
func junctionSpeed(a, b Block, limits Limits) float64 {
	ux, uy := (a.End.X-a.Start.X)/a.Length, (a.End.Y-a.Start.Y)/a.Length
	vx, vy := (b.End.X-b.Start.X)/b.Length, (b.End.Y-b.Start.Y)/b.Length
	cosTheta := ux*vx + uy*vy
	if cosTheta > 1 {
		cosTheta = 1
	}
	if cosTheta < -1 {
		cosTheta = -1
	}
	const epsilon = 1e-9
	if 1-cosTheta < epsilon {
		// Collinear continuation: no cornering restriction.
		return math.Inf(1)
	}
	return math.Sqrt(limits.MaxAccel * limits.MaxCorneringDistanceMm * (1 + cosTheta) / (1 - cosTheta))
}

// reverseDecelPass walks backward ensuring each block can decelerate from
// its entry speed down to its exit speed within its own length:
// v_entry^2 <= v_exit^2 + 2*a*length.
func reverseDecelPass(blocks []Block, junction []float64, accel float64) {
	n := len(blocks)
	for i := n - 1; i >= 0; i-- {
		maxEntry := math.Sqrt(junction[i+1]*junction[i+1] + 2*accel*blocks[i].Length)
		if junction[i] > maxEntry {
			junction[i] = maxEntry
		}
	}
}

// forwardAccelPass walks forward ensuring each block can accelerate from
// its entry speed up to its exit speed within its own length.
func forwardAccelPass(blocks []Block, junction []float64, accel float64) {
	for i := 0; i < len(blocks); i++ {
		maxExit := math.Sqrt(junction[i]*junction[i] + 2*accel*blocks[i].Length)
		if junction[i+1] > maxExit {
			junction[i+1] = maxExit
		}
	}
}

// resolveTrapezoids derives accel/cruise/decel distances and duration for
// every block from its now-fixed entry/exit speeds (§4.5 step 3, §4.6's
// per-phase duration shape applied at the block level).
func resolveTrapezoids(blocks []Block, junction []float64, accel float64) {
	for i := range blocks {
		b := &blocks[i]
		b.EntrySpeed = junction[i]
		b.ExitSpeed = junction[i+1]
		cruiseSpeed := b.NominalFeed

		accelDist := (cruiseSpeed*cruiseSpeed - b.EntrySpeed*b.EntrySpeed) / (2 * accel)
		decelDist := (cruiseSpeed*cruiseSpeed - b.ExitSpeed*b.ExitSpeed) / (2 * accel)
		if accelDist < 0 {
			accelDist = 0
		}
		if decelDist < 0 {
			decelDist = 0
		}

		if accelDist+decelDist > b.Length {
			peakSq := (2*accel*b.Length + b.EntrySpeed*b.EntrySpeed + b.ExitSpeed*b.ExitSpeed) / 2
			if peakSq < 0 {
				peakSq = 0
			}
			peak := math.Sqrt(peakSq)
			accelDist = (peak*peak - b.EntrySpeed*b.EntrySpeed) / (2 * accel)
			decelDist = (peak*peak - b.ExitSpeed*b.ExitSpeed) / (2 * accel)
			if accelDist < 0 {
				accelDist = 0
			}
			if decelDist < 0 {
				decelDist = 0
			}
			cruiseSpeed = peak
			b.AccelDist, b.DecelDist = accelDist, decelDist
			b.CruiseDist = b.Length - accelDist - decelDist
			if b.CruiseDist < 0 {
				b.CruiseDist = 0
			}
		} else {
			b.AccelDist = accelDist
			b.DecelDist = decelDist
			b.CruiseDist = b.Length - accelDist - decelDist
		}
		b.CruiseSpeed = cruiseSpeed

		var accelTime, cruiseTime, decelTime float64
		if b.AccelDist > 0 && accel > 0 {
			accelTime = (cruiseSpeed - b.EntrySpeed) / accel
		}
		if b.DecelDist > 0 && accel > 0 {
			decelTime = (cruiseSpeed - b.ExitSpeed) / accel
		}
		if b.CruiseDist > 0 && cruiseSpeed > 0 {
			cruiseTime = b.CruiseDist / cruiseSpeed
		}
		b.Duration = accelTime + cruiseTime + decelTime
		if b.Duration <= 0 {
			b.Duration = 1e-6
		}
	}
}
