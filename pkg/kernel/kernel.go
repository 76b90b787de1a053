// Package kernel defines the abstract geometry kernel interface.
// Implementations (memory, sdfx) materialize swept solids from planar
// sections and provide the boolean operations used when a model is
// assembled. The kernel abstraction keeps the drafting layer independent of
// any particular solid modeller.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrDegenerate is returned for sections or sweeps that cannot bound a
// volume: too few vertices, zero area, zero height, a zero-length axis.
var ErrDegenerate = errors.New("degenerate geometry")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Vertices returns the vertices of the polyhedral boundary.
	Vertices() []v3.Vec
	// Edges returns the boundary edges as vertex index pairs.
	Edges() []Edge
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Sweeps
	Extrude(sec Section, spec ExtrudeSpec) (Solid, error)
	Revolve(sec Section, spec RevolveSpec) (Solid, error)
	Fillet(s Solid, spec FilletSpec) (Solid, error)

	// Boolean operations
	Difference(host, cut Solid) (Solid, error)
	Union(a, b Solid) (Solid, error)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Section is a closed planar loop placed in space. The loop is authored in
// the local XY plane; Placement maps local coordinates to world coordinates,
// so the local +Z axis is the section normal.
type Section struct {
	Loop      []v2.Vec
	Placement sdf.M44
}

// NewSection returns a section with an identity placement.
func NewSection(loop []v2.Vec) Section {
	return Section{Loop: loop, Placement: sdf.Identity3d()}
}

// World returns the loop vertices in world coordinates.
func (s Section) World() []v3.Vec {
	out := make([]v3.Vec, len(s.Loop))
	for i, p := range s.Loop {
		out[i] = s.Placement.MulPosition(v3.Vec{X: p.X, Y: p.Y})
	}
	return out
}

// Area returns the signed area of the loop (positive when counter-clockwise).
func (s Section) Area() float64 {
	var a float64
	n := len(s.Loop)
	for i := 0; i < n; i++ {
		p, q := s.Loop[i], s.Loop[(i+1)%n]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Centroid returns the vertex average of the loop.
func (s Section) Centroid() v2.Vec {
	var c v2.Vec
	if len(s.Loop) == 0 {
		return c
	}
	for _, p := range s.Loop {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(s.Loop)))
}

// Check reports whether the section can bound a region.
func (s Section) Check() error {
	if len(s.Loop) < 3 {
		return fmt.Errorf("%w: section has %d vertices", ErrDegenerate, len(s.Loop))
	}
	if math.Abs(s.Area()) < 1e-9 {
		return fmt.Errorf("%w: section has zero area", ErrDegenerate)
	}
	return nil
}

// ExtrudeSpec describes a linear sweep along the section normal.
type ExtrudeSpec struct {
	Height     float64
	TaperAngle float64 // degrees, positive draws the far face inward
	CutOut     bool    // material to remove, never committed on its own
	Negative   bool    // sweep along -normal
}

// RevolveSpec describes a rotational sweep about a world-space axis.
type RevolveSpec struct {
	AxisStart v3.Vec
	AxisEnd   v3.Vec
	Angle     float64 // degrees, 360 for a full revolution
}

// FilletSpec describes an edge fillet. Setbacks trim the fillet at the start
// and end of each selected edge.
type FilletSpec struct {
	Radius       float64
	StartSetback float64
	EndSetback   float64
}

// Edge is a boundary edge between two vertex indices.
type Edge struct {
	A, B int
}
