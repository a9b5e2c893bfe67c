package orchestrator

import (
	"github.com/axidraft/plotdrive/geom"
	"github.com/axidraft/plotdrive/motion"
)

// toSegments converts a composed layout's paths into planner segments per
// §4.9 step 4: pen-up travel to each path's first point, pen-down motion
// between its consecutive points, pen-up repositioning between paths.
// Pen-up travel uses the separate, higher travelFeedMmS; pen-down motion
// uses the configured drawing speed, penFeedMmS (§4.5 step 5).
func toSegments(paths geom.PathCollection, travelFeedMmS, penFeedMmS float64) []motion.Segment {
	var segs []motion.Segment
	for _, path := range paths.Paths {
		if len(path) == 0 {
			continue
		}
		segs = append(segs, motion.Segment{Target: path[0], FeedMmS: travelFeedMmS})
		for i := 1; i < len(path); i++ {
			segs = append(segs, motion.Segment{Target: path[i], FeedMmS: penFeedMmS, PenDown: true})
		}
	}
	return segs
}
