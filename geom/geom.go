/*
Package geom provides the geometric primitives shared by every downstream
stage of the plotdrive pipeline: points, polyline paths, path collections,
bounding boxes, unit-tagged lengths and rigid transforms.

License: governed by the 3-Clause BSD license found in the module root.
*/
package geom

import (
	"hash/fnv"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("plotdrive.geom")
}

// Unit is a phantom tag distinguishing millimeters from inches, so that
// mixing lengths of different units is caught rather than silently
// producing nonsense (Design Notes §9, "Unit safety").
type Unit int

const (
	Mm Unit = iota
	Inch
)

func (u Unit) String() string {
	if u == Inch {
		return "in"
	}
	return "mm"
}

const mmPerInch = 25.4

// Length is a scalar value carrying its Unit explicitly.
type Length struct {
	Value float64
	Unit  Unit
}

// In converts a Length to the target unit, returning a new Length.
func (l Length) In(u Unit) Length {
	if l.Unit == u {
		return l
	}
	if l.Unit == Mm && u == Inch {
		return Length{Value: l.Value / mmPerInch, Unit: Inch}
	}
	return Length{Value: l.Value * mmPerInch, Unit: Mm}
}

// Point is a single 2D coordinate. It carries no unit tag itself; the
// enclosing PathCollection fixes units for every point it holds.
type Point struct {
	X, Y float64
}

// Path is an ordered polyline: a sequence of points with no implied curves.
type Path []Point

// BBox returns the axis-aligned bounding box of p. An empty path yields an
// empty (inverted) BBox.
func (p Path) BBox() BBox {
	b := EmptyBBox()
	for _, pt := range p {
		b = b.Extend(pt)
	}
	return b
}

// PathCollection is an ordered sequence of paths sharing one unit tag.
type PathCollection struct {
	Paths []Path
	Units Unit
}

// BBox returns the union bounding box of all paths in the collection.
func (pc PathCollection) BBox() BBox {
	b := EmptyBBox()
	for _, p := range pc.Paths {
		for _, pt := range p {
			b = b.Extend(pt)
		}
	}
	return b
}

// Append returns a new collection with other's paths appended. Units must
// match; mismatched units is an internal programming error the caller must
// avoid by converting first.
func (pc PathCollection) Append(other PathCollection) PathCollection {
	if len(other.Paths) == 0 {
		return pc
	}
	if len(pc.Paths) != 0 && pc.Units != other.Units {
		tracer().Errorf("appending path collections of mismatched units (%s vs %s)", pc.Units, other.Units)
	}
	out := PathCollection{Units: pc.Units, Paths: make([]Path, 0, len(pc.Paths)+len(other.Paths))}
	out.Paths = append(out.Paths, pc.Paths...)
	out.Paths = append(out.Paths, other.Paths...)
	if len(pc.Paths) == 0 {
		out.Units = other.Units
	}
	return out
}

// Translate returns a new collection with every point shifted by (dx, dy).
func (pc PathCollection) Translate(dx, dy float64) PathCollection {
	return pc.mapPoints(func(p Point) Point {
		return Point{X: p.X + dx, Y: p.Y + dy}
	})
}

// Scale returns a new collection uniformly scaled about the origin.
func (pc PathCollection) Scale(s float64) PathCollection {
	return pc.mapPoints(func(p Point) Point {
		return Point{X: p.X * s, Y: p.Y * s}
	})
}

// RotateAbout returns a new collection rotated by theta radians about
// center c.
func (pc PathCollection) RotateAbout(c Point, theta float64) PathCollection {
	sin, cos := math.Sin(theta), math.Cos(theta)
	return pc.mapPoints(func(p Point) Point {
		dx, dy := p.X-c.X, p.Y-c.Y
		return Point{
			X: c.X + dx*cos - dy*sin,
			Y: c.Y + dx*sin + dy*cos,
		}
	})
}

func (pc PathCollection) mapPoints(f func(Point) Point) PathCollection {
	out := PathCollection{Units: pc.Units, Paths: make([]Path, len(pc.Paths))}
	for i, p := range pc.Paths {
		np := make(Path, len(p))
		for j, pt := range p {
			np[j] = f(pt)
		}
		out.Paths[i] = np
	}
	return out
}

// ConvertUnits returns a copy of pc with every coordinate rescaled from its
// current Units to target, and the Units tag updated.
func ConvertUnits(pc PathCollection, target Unit) PathCollection {
	if pc.Units == target {
		return pc
	}
	var factor float64
	if pc.Units == Mm && target == Inch {
		factor = 1 / mmPerInch
	} else {
		factor = mmPerInch
	}
	out := pc.Scale(factor)
	out.Units = target
	return out
}

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBBox returns an inverted box such that Extend-ing it with any point
// produces that point as both min and max.
func EmptyBBox() BBox {
	return BBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// Extend returns a box covering b and p.
func (b BBox) Extend(p Point) BBox {
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
	return b
}

// Union returns a box covering both a and b.
func (a BBox) Union(b BBox) BBox {
	return BBox{
		MinX: math.Min(a.MinX, b.MinX),
		MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX),
		MaxY: math.Max(a.MaxY, b.MaxY),
	}
}

// Empty reports whether b has never been Extend-ed.
func (b BBox) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Dx returns the box width.
func (b BBox) Dx() float64 {
	if b.Empty() {
		return 0
	}
	return b.MaxX - b.MinX
}

// Dy returns the box height.
func (b BBox) Dy() float64 {
	if b.Empty() {
		return 0
	}
	return b.MaxY - b.MinY
}

// Hash returns an order-sensitive fnv-1a digest of pc, quantizing each
// coordinate to whole micrometers so that floating-point noise below that
// resolution does not change the hash.
func (pc PathCollection) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeI64 := func(v int64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}
	writeI64(int64(pc.Units))
	for _, p := range pc.Paths {
		writeI64(int64(len(p)))
		for _, pt := range p {
			writeI64(quantizeMicrometers(pt.X))
			writeI64(quantizeMicrometers(pt.Y))
		}
	}
	return h.Sum64()
}

func quantizeMicrometers(v float64) int64 {
	return int64(math.Round(v * 1000))
}
