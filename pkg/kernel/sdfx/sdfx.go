// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Alongside the signed
// distance field every solid carries the polyhedral boundary computed by
// package kernel, so containment checks see the same vertices whichever
// kernel is in use.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*SdfxKernel)(nil)
var _ kernel.Solid = (*sdfxSolid)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// recipe remembers how an extrusion was built so a fillet can rebuild it
// with rounded edges.
type recipe struct {
	profile sdf.SDF2
	sec     kernel.Section
	spec    kernel.ExtrudeSpec
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s        sdf.SDF3
	boundary kernel.Boundary
	extrude  *recipe
}

// BoundingBox returns the bounds of the polyhedral boundary. The SDF's own
// box is padded by the evaluator and would skew containment checks.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	return s.boundary.Bounds()
}

func (s *sdfxSolid) Vertices() []v3.Vec {
	return s.boundary.Vertices
}

func (s *sdfxSolid) Edges() []kernel.Edge {
	return s.boundary.Edges
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// New returns a new SdfxKernel. cells sets the marching cubes resolution
// along the longest axis; zero selects the default.
func New(cells ...int) *SdfxKernel {
	k := &SdfxKernel{meshCells: defaultMeshCells}
	if len(cells) > 0 && cells[0] > 0 {
		k.meshCells = cells[0]
	}
	return k
}

// unwrap extracts the sdfx solid from a kernel.Solid.
func unwrap(s kernel.Solid) (*sdfxSolid, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("sdfx: foreign solid %T", s)
	}
	return ss, nil
}

// SDF returns the signed distance field behind a solid built by this kernel.
func SDF(s kernel.Solid) (sdf.SDF3, bool) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, false
	}
	return ss.s, true
}

// Extrude builds the section's region and sweeps it along the local +Z
// (or -Z) axis before moving it into place.
func (k *SdfxKernel) Extrude(sec kernel.Section, spec kernel.ExtrudeSpec) (kernel.Solid, error) {
	b, err := kernel.ExtrudeBoundary(sec, spec)
	if err != nil {
		return nil, err
	}
	profile, err := sdf.Polygon2D(sec.Loop)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	r := &recipe{profile: profile, sec: sec, spec: spec}
	s, err := r.build(0)
	if err != nil {
		return nil, err
	}
	return &sdfxSolid{s: s, boundary: b, extrude: r}, nil
}

// build creates the extrusion with the given edge rounding.
func (r *recipe) build(round float64) (sdf.SDF3, error) {
	h := r.spec.Height
	var s sdf.SDF3
	switch {
	case r.spec.TaperAngle != 0:
		c := r.sec.Centroid()
		size := r.profile.BoundingBox().Size()
		inset := h * math.Tan(r.spec.TaperAngle*math.Pi/180)
		scale := v2.Vec{X: (size.X - 2*inset) / size.X, Y: (size.Y - 2*inset) / size.Y}
		centered := sdf.Transform2D(r.profile, sdf.Translate2d(c.MulScalar(-1)))
		s = sdf.ScaleExtrude3D(centered, h, scale)
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: c.X, Y: c.Y}))
	case round > 0:
		// ExtrudeRounded3D grows the profile by the radius, so erode it first
		// to keep the part within its nominal outline.
		var err error
		s, err = sdf.ExtrudeRounded3D(sdf.Offset2D(r.profile, -round), h, round)
		if err != nil {
			return nil, fmt.Errorf("sdfx.ExtrudeRounded3D: %w", err)
		}
	default:
		s = sdf.Extrude3D(r.profile, h)
	}

	// sdfx extrusions are centred on z=0.
	m := sdf.Translate3d(v3.Vec{Z: h / 2})
	if r.spec.Negative {
		m = sdf.Scale3d(v3.Vec{X: 1, Y: 1, Z: -1}).Mul(m)
	}
	return sdf.Transform3D(s, r.sec.Placement.Mul(m)), nil
}

// Revolve maps the section into a frame whose Z axis is the revolution axis
// and revolves the resulting (radius, height) profile.
func (k *SdfxKernel) Revolve(sec kernel.Section, spec kernel.RevolveSpec) (kernel.Solid, error) {
	b, err := kernel.RevolveBoundary(sec, spec)
	if err != nil {
		return nil, err
	}

	frame := axisFrame(spec.AxisStart, spec.AxisEnd.Sub(spec.AxisStart))
	world := sec.World()
	half := make([]v2.Vec, len(world))
	var phi float64
	for i, p := range world {
		q := frame.MulPosition(p)
		half[i] = v2.Vec{X: math.Hypot(q.X, q.Y), Y: q.Z}
		if i == 0 || (phi == 0 && half[i].X > 1e-9) {
			phi = math.Atan2(q.Y, q.X)
		}
	}
	profile, err := sdf.Polygon2D(half)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}

	var s sdf.SDF3
	if spec.Angle >= 360 {
		s, err = sdf.Revolve3D(profile)
	} else {
		s, err = sdf.RevolveTheta3D(profile, spec.Angle*math.Pi/180)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx revolve: %w", err)
	}
	s = sdf.Transform3D(s, frame.Inverse().Mul(sdf.RotateZ(phi)))
	return &sdfxSolid{s: s, boundary: b}, nil
}

// axisFrame returns the rigid transform taking the axis point to the origin
// and the axis direction to +Z.
func axisFrame(point, dir v3.Vec) sdf.M44 {
	d := dir.Normalize()
	z := v3.Vec{Z: 1}
	k := d.Cross(z)
	var r sdf.M44
	switch {
	case k.Length() > 1e-9:
		r = sdf.Rotate3d(k.Normalize(), math.Acos(d.Dot(z)))
	case d.Z > 0:
		r = sdf.Identity3d()
	default:
		r = sdf.RotateX(math.Pi)
	}
	return r.Mul(sdf.Translate3d(point.MulScalar(-1)))
}

// Fillet rounds the edges of an extrusion. sdfx rounds every edge of the
// swept profile, so the radius is clamped to what the extrusion can carry;
// other solids are returned unchanged.
func (k *SdfxKernel) Fillet(s kernel.Solid, spec kernel.FilletSpec) (kernel.Solid, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if spec.Radius <= 0 {
		return nil, fmt.Errorf("%w: fillet radius %.4f", kernel.ErrDegenerate, spec.Radius)
	}
	if ss.extrude == nil || ss.extrude.spec.TaperAngle != 0 {
		return ss, nil
	}
	round := math.Min(spec.Radius, ss.extrude.spec.Height/2*0.99)
	size := ss.extrude.profile.BoundingBox().Size()
	round = math.Min(round, math.Min(size.X, size.Y)/2*0.99)
	rounded, err := ss.extrude.build(round)
	if err != nil {
		return nil, err
	}
	return &sdfxSolid{s: rounded, boundary: ss.boundary}, nil
}

// Difference returns the difference host - cut.
func (k *SdfxKernel) Difference(host, cut kernel.Solid) (kernel.Solid, error) {
	h, err := unwrap(host)
	if err != nil {
		return nil, err
	}
	c, err := unwrap(cut)
	if err != nil {
		return nil, err
	}
	return &sdfxSolid{
		s:        sdf.Difference3D(h.s, c.s),
		boundary: kernel.Merge(h.boundary, c.boundary),
	}, nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return &sdfxSolid{
		s:        sdf.Union3D(sa.s, sb.s),
		boundary: kernel.Merge(sa.boundary, sb.boundary),
	}, nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(ss.s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// WriteSTL unions the solids and writes them to an STL file.
func (k *SdfxKernel) WriteSTL(path string, solids ...kernel.Solid) error {
	if len(solids) == 0 {
		return fmt.Errorf("sdfx: nothing to write")
	}
	parts := make([]sdf.SDF3, 0, len(solids))
	for _, s := range solids {
		ss, err := unwrap(s)
		if err != nil {
			return err
		}
		parts = append(parts, ss.s)
	}
	tris := render.ToTriangles(sdf.Union3D(parts...), render.NewMarchingCubesOctree(k.meshCells))
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: write stl: %w", err)
	}
	return nil
}
