// Package memory implements kernel.Kernel without a solid modeller. Solids
// are polyhedral boundaries only; booleans merge boundaries and keep the
// host's bounds. It is fast enough for load tests and exact enough for
// containment decisions, which only look at vertices and bounds.
package memory

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Solid = (*Solid)(nil)

// Kind records how a solid was produced.
type Kind int

const (
	Extrusion Kind = iota
	Revolution
	Composite
)

func (k Kind) String() string {
	switch k {
	case Extrusion:
		return "extrusion"
	case Revolution:
		return "revolution"
	case Composite:
		return "composite"
	default:
		return "unknown"
	}
}

// Fillet is a fillet applied to a set of boundary edges.
type Fillet struct {
	Spec  kernel.FilletSpec
	Edges []int
}

// Solid is a boundary-only solid.
type Solid struct {
	Kind     Kind
	boundary kernel.Boundary
	min, max [3]float64
	fillets  []Fillet
	cuts     int
}

func newSolid(kind Kind, b kernel.Boundary) *Solid {
	min, max := b.Bounds()
	return &Solid{Kind: kind, boundary: b, min: min, max: max}
}

// BoundingBox returns the axis-aligned bounding box.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	return s.min, s.max
}

// Vertices returns the boundary vertices.
func (s *Solid) Vertices() []v3.Vec {
	return s.boundary.Vertices
}

// Edges returns the boundary edges.
func (s *Solid) Edges() []kernel.Edge {
	return s.boundary.Edges
}

// Fillets returns the fillets applied to the solid, oldest first.
func (s *Solid) Fillets() []Fillet {
	return s.fillets
}

// Cuts returns how many solids were subtracted from this one.
func (s *Solid) Cuts() int {
	return s.cuts
}

func (s *Solid) clone() *Solid {
	c := *s
	c.fillets = append([]Fillet(nil), s.fillets...)
	return &c
}

// Kernel is the in-memory kernel. The zero value is ready to use.
type Kernel struct{}

// New returns a new in-memory kernel.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) (*Solid, error) {
	ms, ok := s.(*Solid)
	if !ok {
		return nil, fmt.Errorf("memory: foreign solid %T", s)
	}
	return ms, nil
}

// Extrude sweeps the section along its normal.
func (k *Kernel) Extrude(sec kernel.Section, spec kernel.ExtrudeSpec) (kernel.Solid, error) {
	b, err := kernel.ExtrudeBoundary(sec, spec)
	if err != nil {
		return nil, err
	}
	return newSolid(Extrusion, b), nil
}

// Revolve sweeps the section about the spec's axis.
func (k *Kernel) Revolve(sec kernel.Section, spec kernel.RevolveSpec) (kernel.Solid, error) {
	b, err := kernel.RevolveBoundary(sec, spec)
	if err != nil {
		return nil, err
	}
	return newSolid(Revolution, b), nil
}

// Fillet records a fillet on every other edge starting from the second. The
// boundary and bounds are left as they are.
func (k *Kernel) Fillet(s kernel.Solid, spec kernel.FilletSpec) (kernel.Solid, error) {
	ms, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if spec.Radius <= 0 {
		return nil, fmt.Errorf("%w: fillet radius %.4f", kernel.ErrDegenerate, spec.Radius)
	}
	out := ms.clone()
	out.fillets = append(out.fillets, Fillet{Spec: spec, Edges: kernel.FilletSelection(len(ms.boundary.Edges))})
	return out, nil
}

// Difference returns host minus cut. The cut's faces become cavity walls, so
// its boundary is merged into the host's; the host's bounds are kept.
func (k *Kernel) Difference(host, cut kernel.Solid) (kernel.Solid, error) {
	h, err := unwrap(host)
	if err != nil {
		return nil, err
	}
	c, err := unwrap(cut)
	if err != nil {
		return nil, err
	}
	out := h.clone()
	out.boundary = kernel.Merge(h.boundary, c.boundary)
	out.cuts++
	return out, nil
}

// Union returns the combined solid.
func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return newSolid(Composite, kernel.Merge(sa.boundary, sb.boundary)), nil
}

// ToMesh returns the solid's bounding box as a triangle mesh.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	min, max := s.BoundingBox()
	return kernel.BoxMesh(min, max), nil
}
