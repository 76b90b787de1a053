package kernel

import (
	"errors"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestBoxMesh(t *testing.T) {
	m := BoxMesh([3]float64{0, 0, 0}, [3]float64{10, 20, 30})
	if got := m.TriangleCount(); got != 12 {
		t.Fatalf("TriangleCount() = %d, want 12", got)
	}
	if len(m.Vertices) != len(m.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(m.Vertices), len(m.Normals))
	}
}

// --- Section and boundary tests ---

func square(size float64) []v2.Vec {
	return []v2.Vec{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSectionCheck(t *testing.T) {
	tests := []struct {
		name string
		loop []v2.Vec
		ok   bool
	}{
		{"square", square(10), true},
		{"two points", []v2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}}, false},
		{"collinear", []v2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSection(tt.loop).Check()
			if tt.ok && err != nil {
				t.Fatalf("Check() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrDegenerate) {
				t.Fatalf("Check() = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestExtrudeBoundary(t *testing.T) {
	b, err := ExtrudeBoundary(NewSection(square(10)), ExtrudeSpec{Height: 5})
	if err != nil {
		t.Fatalf("ExtrudeBoundary: %v", err)
	}
	if len(b.Vertices) != 8 {
		t.Fatalf("vertices = %d, want 8", len(b.Vertices))
	}
	if len(b.Edges) != 12 {
		t.Fatalf("edges = %d, want 12", len(b.Edges))
	}
	min, max := b.Bounds()
	if min != [3]float64{0, 0, 0} || max != [3]float64{10, 10, 5} {
		t.Fatalf("bounds = %v..%v", min, max)
	}
}

func TestExtrudeBoundaryNegative(t *testing.T) {
	sec := NewSection(square(10))
	sec.Placement = sdf.Translate3d(v3.Vec{Z: 100})
	b, err := ExtrudeBoundary(sec, ExtrudeSpec{Height: 20, Negative: true})
	if err != nil {
		t.Fatalf("ExtrudeBoundary: %v", err)
	}
	min, max := b.Bounds()
	if !near(min[2], 80) || !near(max[2], 100) {
		t.Fatalf("z range = [%v, %v], want [80, 100]", min[2], max[2])
	}
}

func TestExtrudeBoundaryTaper(t *testing.T) {
	b, err := ExtrudeBoundary(NewSection(square(10)), ExtrudeSpec{Height: 1, TaperAngle: 45})
	if err != nil {
		t.Fatalf("ExtrudeBoundary: %v", err)
	}
	// The far face is drawn toward the centroid by height*tan(angle).
	far := b.Vertices[4]
	d := math.Hypot(far.X-5, far.Y-5)
	if !near(d, math.Hypot(5, 5)-1) {
		t.Fatalf("far corner distance to centre = %v", d)
	}

	if _, err := ExtrudeBoundary(NewSection(square(10)), ExtrudeSpec{Height: 100, TaperAngle: 45}); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("closing taper: err = %v, want ErrDegenerate", err)
	}
}

func TestExtrudeBoundaryZeroHeight(t *testing.T) {
	_, err := ExtrudeBoundary(NewSection(square(10)), ExtrudeSpec{})
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("err = %v, want ErrDegenerate", err)
	}
}

func TestRevolveBoundary(t *testing.T) {
	// A rectangle at radius 10..20 revolved about the Y axis.
	loop := []v2.Vec{{X: 10, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 5}, {X: 10, Y: 5}}
	spec := RevolveSpec{AxisEnd: v3.Vec{Y: 1}, Angle: 360}
	b, err := RevolveBoundary(NewSection(loop), spec)
	if err != nil {
		t.Fatalf("RevolveBoundary: %v", err)
	}
	if len(b.Vertices) != 4*RevolveSteps {
		t.Fatalf("vertices = %d, want %d", len(b.Vertices), 4*RevolveSteps)
	}
	if len(b.Edges) != 2*4*RevolveSteps {
		t.Fatalf("edges = %d, want %d", len(b.Edges), 2*4*RevolveSteps)
	}
	min, max := b.Bounds()
	if !near(min[0], -20) || !near(max[0], 20) || !near(min[2], -20) || !near(max[2], 20) {
		t.Fatalf("bounds = %v..%v", min, max)
	}
	if !near(min[1], 0) || !near(max[1], 5) {
		t.Fatalf("y range = [%v, %v]", min[1], max[1])
	}
}

func TestRevolveBoundaryPartial(t *testing.T) {
	loop := []v2.Vec{{X: 10, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 5}}
	b, err := RevolveBoundary(NewSection(loop), RevolveSpec{AxisEnd: v3.Vec{Y: 1}, Angle: 90})
	if err != nil {
		t.Fatalf("RevolveBoundary: %v", err)
	}
	steps := RevolveSteps / 4
	if len(b.Vertices) != 3*(steps+1) {
		t.Fatalf("vertices = %d, want %d", len(b.Vertices), 3*(steps+1))
	}
}

func TestRevolveBoundaryDegenerate(t *testing.T) {
	loop := square(10)
	tests := []struct {
		name string
		spec RevolveSpec
	}{
		{"zero axis", RevolveSpec{Angle: 360}},
		{"zero angle", RevolveSpec{AxisEnd: v3.Vec{Z: 1}}},
		{"over a turn", RevolveSpec{AxisEnd: v3.Vec{Z: 1}, Angle: 400}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RevolveBoundary(NewSection(loop), tt.spec); !errors.Is(err, ErrDegenerate) {
				t.Fatalf("err = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestAxisRotation(t *testing.T) {
	m := AxisRotation(v3.Vec{X: 10}, v3.Vec{Z: 1}, 90)
	p := m.MulPosition(v3.Vec{X: 20})
	if !near(p.X, 10) || !near(p.Y, 10) || !near(p.Z, 0) {
		t.Fatalf("rotated point = %v, want (10, 10, 0)", p)
	}
}

func TestMerge(t *testing.T) {
	a, _ := ExtrudeBoundary(NewSection(square(10)), ExtrudeSpec{Height: 1})
	b, _ := ExtrudeBoundary(NewSection(square(2)), ExtrudeSpec{Height: 1})
	m := Merge(a, b)
	if len(m.Vertices) != 16 || len(m.Edges) != 24 {
		t.Fatalf("merged = %d vertices %d edges", len(m.Vertices), len(m.Edges))
	}
	if m.Edges[12].A != 8 {
		t.Fatalf("second boundary edges not offset: %v", m.Edges[12])
	}
}

func TestFilletSelection(t *testing.T) {
	got := FilletSelection(7)
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("FilletSelection(7) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FilletSelection(7) = %v, want %v", got, want)
		}
	}
	if len(FilletSelection(1)) != 0 {
		t.Fatal("FilletSelection(1) should be empty")
	}
}
