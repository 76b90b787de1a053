package kernel

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RevolveSteps is the number of angular steps used to approximate a full
// revolution. Partial revolutions use a proportional count.
const RevolveSteps = 32

// Boundary is the polyhedral boundary of a solid. Both kernels share it so
// containment decisions do not depend on the backend.
type Boundary struct {
	Vertices []v3.Vec
	Edges    []Edge
}

// Bounds returns the axis-aligned bounds of the boundary vertices.
func (b Boundary) Bounds() (min, max [3]float64) {
	if len(b.Vertices) == 0 {
		return min, max
	}
	min = [3]float64{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
	max = [3]float64{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}
	for _, v := range b.Vertices {
		min[0], max[0] = math.Min(min[0], v.X), math.Max(max[0], v.X)
		min[1], max[1] = math.Min(min[1], v.Y), math.Max(max[1], v.Y)
		min[2], max[2] = math.Min(min[2], v.Z), math.Max(max[2], v.Z)
	}
	return min, max
}

// Merge returns a boundary holding the vertices and edges of both inputs.
// A difference keeps the cutter's faces as the walls of the cavity, so its
// vertices become part of the host boundary.
func Merge(a, b Boundary) Boundary {
	out := Boundary{
		Vertices: make([]v3.Vec, 0, len(a.Vertices)+len(b.Vertices)),
		Edges:    make([]Edge, 0, len(a.Edges)+len(b.Edges)),
	}
	out.Vertices = append(out.Vertices, a.Vertices...)
	out.Vertices = append(out.Vertices, b.Vertices...)
	out.Edges = append(out.Edges, a.Edges...)
	off := len(a.Vertices)
	for _, e := range b.Edges {
		out.Edges = append(out.Edges, Edge{A: e.A + off, B: e.B + off})
	}
	return out
}

// ExtrudeBoundary sweeps the section along its normal. The first ring is the
// section itself, the second the far face. Edges are ordered near ring, far
// ring, then the lateral edges joining them.
func ExtrudeBoundary(sec Section, spec ExtrudeSpec) (Boundary, error) {
	if err := sec.Check(); err != nil {
		return Boundary{}, err
	}
	if spec.Height <= 0 {
		return Boundary{}, fmt.Errorf("%w: extrusion height %.4f", ErrDegenerate, spec.Height)
	}

	dz := spec.Height
	if spec.Negative {
		dz = -dz
	}
	n := len(sec.Loop)
	c := sec.Centroid()
	inset := spec.Height * math.Tan(spec.TaperAngle*math.Pi/180)

	b := Boundary{Vertices: make([]v3.Vec, 0, 2*n), Edges: make([]Edge, 0, 3*n)}
	for _, p := range sec.Loop {
		b.Vertices = append(b.Vertices, sec.Placement.MulPosition(v3.Vec{X: p.X, Y: p.Y}))
	}
	for _, p := range sec.Loop {
		q := p
		if inset != 0 {
			toward := c.Sub(p)
			d := toward.Length()
			if inset >= d {
				return Boundary{}, fmt.Errorf("%w: taper %.2f° closes the section", ErrDegenerate, spec.TaperAngle)
			}
			q = p.Add(toward.MulScalar(inset / d))
		}
		b.Vertices = append(b.Vertices, sec.Placement.MulPosition(v3.Vec{X: q.X, Y: q.Y, Z: dz}))
	}
	for i := 0; i < n; i++ {
		b.Edges = append(b.Edges, Edge{A: i, B: (i + 1) % n})
	}
	for i := 0; i < n; i++ {
		b.Edges = append(b.Edges, Edge{A: n + i, B: n + (i+1)%n})
	}
	for i := 0; i < n; i++ {
		b.Edges = append(b.Edges, Edge{A: i, B: n + i})
	}
	return b, nil
}

// RevolveBoundary sweeps the section about the world axis through
// AxisStart and AxisEnd. Each angular step contributes a copy of the loop;
// consecutive copies are joined vertex to vertex.
func RevolveBoundary(sec Section, spec RevolveSpec) (Boundary, error) {
	if err := sec.Check(); err != nil {
		return Boundary{}, err
	}
	axis := spec.AxisEnd.Sub(spec.AxisStart)
	if axis.Length() < 1e-9 {
		return Boundary{}, fmt.Errorf("%w: revolution axis has zero length", ErrDegenerate)
	}
	if spec.Angle <= 0 || spec.Angle > 360 {
		return Boundary{}, fmt.Errorf("%w: revolution angle %.2f°", ErrDegenerate, spec.Angle)
	}

	full := spec.Angle >= 360
	steps := int(math.Ceil(RevolveSteps * spec.Angle / 360))
	if steps < 1 {
		steps = 1
	}
	copies := steps + 1
	if full {
		copies = steps
	}

	world := sec.World()
	n := len(world)
	b := Boundary{Vertices: make([]v3.Vec, 0, n*copies)}
	for k := 0; k < copies; k++ {
		m := AxisRotation(spec.AxisStart, axis, spec.Angle*float64(k)/float64(steps))
		for _, p := range world {
			b.Vertices = append(b.Vertices, m.MulPosition(p))
		}
	}
	for k := 0; k < copies; k++ {
		base := k * n
		for i := 0; i < n; i++ {
			b.Edges = append(b.Edges, Edge{A: base + i, B: base + (i+1)%n})
		}
	}
	rings := copies - 1
	if full {
		rings = copies
	}
	for k := 0; k < rings; k++ {
		next := ((k + 1) % copies) * n
		for i := 0; i < n; i++ {
			b.Edges = append(b.Edges, Edge{A: k*n + i, B: next + i})
		}
	}
	return b, nil
}

// AxisRotation returns the rigid rotation by angle degrees about the line
// through point with the given direction.
func AxisRotation(point, dir v3.Vec, angle float64) sdf.M44 {
	if angle == 0 {
		return sdf.Identity3d()
	}
	r := sdf.Rotate3d(dir.Normalize(), angle*math.Pi/180)
	return sdf.Translate3d(point).Mul(r).Mul(sdf.Translate3d(point.MulScalar(-1)))
}

// FilletSelection returns the edge indices a fillet applies to: every other
// edge starting from the second.
func FilletSelection(edgeCount int) []int {
	var sel []int
	for i := 1; i < edgeCount; i += 2 {
		sel = append(sel, i)
	}
	return sel
}
