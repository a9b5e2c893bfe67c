package orchestrator

import (
	"testing"

	"github.com/axidraft/plotdrive/geom"
)

func TestToSegmentsPenUpThenDownThenUp(t *testing.T) {
	paths := geom.PathCollection{
		Units: geom.Mm,
		Paths: []geom.Path{
			{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
			{{X: 20, Y: 20}, {X: 30, Y: 20}},
		},
	}
	segs := toSegments(paths, 100, 40)
	if len(segs) != 5 {
		t.Fatalf("expected 5 segments, got %d", len(segs))
	}
	wantPenDown := []bool{false, true, true, false, true}
	for i, want := range wantPenDown {
		if segs[i].PenDown != want {
			t.Fatalf("segment %d: expected PenDown=%v, got %v", i, want, segs[i].PenDown)
		}
	}
	if segs[0].Target != (geom.Point{X: 0, Y: 0}) {
		t.Fatalf("expected first segment to travel to the first path's start, got %+v", segs[0].Target)
	}
	if segs[3].Target != (geom.Point{X: 20, Y: 20}) {
		t.Fatalf("expected repositioning segment to the second path's start, got %+v", segs[3].Target)
	}
	for i, seg := range segs {
		wantFeed := 100.0
		if seg.PenDown {
			wantFeed = 40.0
		}
		if seg.FeedMmS != wantFeed {
			t.Fatalf("segment %d: expected FeedMmS=%v, got %v", i, wantFeed, seg.FeedMmS)
		}
	}
}

func TestToSegmentsSkipsEmptyPaths(t *testing.T) {
	paths := geom.PathCollection{Units: geom.Mm, Paths: []geom.Path{{}, {{X: 1, Y: 1}}}}
	segs := toSegments(paths, 50, 20)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
}
