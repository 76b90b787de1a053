package drafting

import (
	"context"
	"errors"
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/document"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDrafter(t *testing.T) (*Drafter, *document.MemoryStore) {
	t.Helper()
	store := document.NewMemoryStore()
	return New(memory.New(), store), store
}

func assertBounds(t *testing.T, p document.Part, min, max [3]float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, min[i], p.Min[i], 1e-6, "min[%d] of %s", i, p.Label)
		assert.InDelta(t, max[i], p.Max[i], 1e-6, "max[%d] of %s", i, p.Label)
	}
}

func TestPlanePlacement(t *testing.T) {
	tests := []struct {
		plane  Plane
		local  v3.Vec
		world  v3.Vec
		normal v3.Vec
	}{
		{XY, v3.Vec{X: 1, Y: 2}, v3.Vec{X: 1, Y: 2}, v3.Vec{Z: 1}},
		{XZ, v3.Vec{X: 1, Y: 2}, v3.Vec{X: 1, Z: -2}, v3.Vec{Y: 1}},
		{YZ, v3.Vec{X: 1, Y: 2}, v3.Vec{Y: 2, Z: 1}, v3.Vec{X: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.plane.String(), func(t *testing.T) {
			m := tt.plane.Placement()
			got := m.MulPosition(tt.local)
			assert.InDelta(t, 0, got.Sub(tt.world).Length(), 1e-9, "got %v", got)
			n := m.MulPosition(v3.Vec{Z: 1})
			assert.InDelta(t, 0, n.Sub(tt.normal).Length(), 1e-9, "normal %v", n)
		})
	}
}

func TestBulgeMidpoint(t *testing.T) {
	p := v2.Vec{X: 0, Y: 0}
	q := v2.Vec{X: 2, Y: 0}

	// A half circle turning counter-clockwise bows to the right of travel.
	m := BulgeMidpoint(p, q, 180)
	assert.InDelta(t, 1, m.X, 1e-9)
	assert.InDelta(t, -1, m.Y, 1e-9)

	m = BulgeMidpoint(p, q, -180)
	assert.InDelta(t, 1, m.Y, 1e-9)

	// Sagitta is c/2 * tan(θ/4).
	m = BulgeMidpoint(p, q, -60)
	assert.InDelta(t, math.Tan(math.Pi/12), m.Y, 1e-9)
	assert.InDelta(t, math.Tan(math.Pi/12), BulgeFactor(60), 1e-12)
}

func TestFlattenArc(t *testing.T) {
	vs := []Vertex{{X: 0, Y: 0, Bulge: 90}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	loop := flatten(vs)
	require.Len(t, loop, 3+arcFacets-1)

	// Every interior arc point is equidistant from the centre.
	centre := v2.Vec{X: 5, Y: 5}
	r := centre.Length()
	for _, pt := range loop[1:arcFacets] {
		assert.InDelta(t, r, pt.Sub(centre).Length(), 1e-9)
	}
	// The arc's middle facet point is the bulge midpoint.
	mid := loop[arcFacets/2]
	want := BulgeMidpoint(v2.Vec{}, v2.Vec{X: 10}, 90)
	assert.InDelta(t, 0, mid.Sub(want).Length(), 1e-9)
}

func TestFlattenBulgeBowsFollowingSegment(t *testing.T) {
	// Knob stem outline for a 50mm base: only the segment leaving the
	// bulged vertex is curved; its neighbours stay straight.
	vs := []Vertex{
		{X: 0, Y: 0},
		{X: 12.5, Y: 0, Bulge: -60},
		{X: 50.0 / 6, Y: 20},
		{X: 0, Y: 20},
	}
	loop := flatten(vs)
	require.Len(t, loop, 4+arcFacets-1)

	p := v2.Vec{X: 12.5}
	q := v2.Vec{X: 50.0 / 6, Y: 20}
	assert.Equal(t, v2.Vec{}, loop[0])
	assert.Equal(t, p, loop[1])
	assert.Equal(t, q, loop[arcFacets+1])
	assert.Equal(t, v2.Vec{Y: 20}, loop[arcFacets+2])

	chord := q.Sub(p)
	for _, pt := range loop[2 : arcFacets+1] {
		assert.Greater(t, pt.Y, 0.0, "arc must not touch the base edge")
		assert.Less(t, pt.Y, 20.0, "arc must not touch the top edge")
		// A negative bulge bows to the left of travel, towards the axis.
		rel := pt.Sub(p)
		assert.Greater(t, chord.X*rel.Y-chord.Y*rel.X, 0.0, "point %v", pt)
	}
	want := BulgeMidpoint(p, q, -60)
	assert.InDelta(t, 0, loop[1+arcFacets/2].Sub(want).Length(), 1e-9)
}

func TestCircleFacets(t *testing.T) {
	vs := circle(60, 100, 50)
	require.Len(t, vs, circleFacets)
	for _, v := range vs {
		assert.InDelta(t, 30, math.Hypot(v.X-100, v.Y-50), 1e-9)
	}
}

func TestBuildEmpty(t *testing.T) {
	d, store := newDrafter(t)
	_, err := store.Replace(context.Background(), DefaultModelName, nil)
	require.NoError(t, err)
	before, _ := store.Assembly(context.Background(), DefaultModelName)

	asm, err := d.Build(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, asm)

	after, _ := store.Assembly(context.Background(), DefaultModelName)
	assert.Equal(t, before.Revision, after.Revision)
}

func TestBuildXZRectangle(t *testing.T) {
	d, _ := newDrafter(t)
	// World z range [-100, -50] authored in XZ.
	p := d.CreateRectangle(XZ, 10, 50, 20, 50)
	d.Extrude(p, kernel.ExtrudeSpec{Height: 30})
	d.Label(p, "box")

	asm, err := d.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, asm.Parts, 1)
	assertBounds(t, asm.Parts[0], [3]float64{10, 0, -100}, [3]float64{30, 30, -50})
	assert.Equal(t, "extrusion", asm.Parts[0].Kind)
}

func TestBuildContainment(t *testing.T) {
	d, _ := newDrafter(t)
	outer := d.CreateRectangle(XY, 0, 0, 100, 100)
	d.Extrude(outer, kernel.ExtrudeSpec{Height: 100})
	inner := d.CreateRectangle(XY, 10, 10, 50, 50)
	d.Move(inner, v3.Vec{}, v3.Vec{Z: 10})
	d.Extrude(inner, kernel.ExtrudeSpec{Height: 50})

	asm, err := d.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, asm.Parts, 1)
	assert.Equal(t, 1, asm.Parts[0].Solid.(*memory.Solid).Cuts())
}

func TestCutOutDepthAgainstGripBlock(t *testing.T) {
	// A 116x20 block standing 48 out of a door face at y=-20, with a 96 wide
	// cut-out between its posts.
	tests := []struct {
		name     string
		depth    float64
		wantCuts int
	}{
		{"shallower cut leaves a bar", 38, 1},
		{"deeper cut is never contained", 58, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newDrafter(t)
			outer := d.CreateRectangle(XZ, 0, 0, 116, 20)
			d.Move(outer, v3.Vec{}, v3.Vec{Y: -20})
			d.Extrude(outer, kernel.ExtrudeSpec{Height: 48, Negative: true})
			d.Label(outer, "grip")
			inner := d.CreateRectangle(XZ, 10, 0, 96, 20)
			d.Move(inner, v3.Vec{}, v3.Vec{Y: -20})
			d.Extrude(inner, kernel.ExtrudeSpec{Height: tt.depth, Negative: true, CutOut: true})

			asm, err := d.Build(context.Background())
			require.NoError(t, err)
			require.Len(t, asm.Parts, 1)
			assertBounds(t, asm.Parts[0], [3]float64{0, -68, -20}, [3]float64{116, -20, 0})
			assert.Equal(t, tt.wantCuts, asm.Parts[0].Solid.(*memory.Solid).Cuts())
		})
	}
}

func TestBuildDisjoint(t *testing.T) {
	d, _ := newDrafter(t)
	a := d.CreateRectangle(XY, 0, 0, 10, 10)
	d.Extrude(a, kernel.ExtrudeSpec{Height: 10})
	b := d.CreateRectangle(XY, 20, 0, 10, 10)
	d.Extrude(b, kernel.ExtrudeSpec{Height: 10})

	asm, err := d.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, asm.Parts, 2)
	assert.Equal(t, "solid-0", asm.Parts[0].Label)
	assert.Equal(t, "solid-1", asm.Parts[1].Label)
}

func TestBuildReplacesPrevious(t *testing.T) {
	d, store := newDrafter(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		a := d.CreateRectangle(XY, 0, 0, 10, 10)
		d.Extrude(a, kernel.ExtrudeSpec{Height: 10})
		b := d.CreateRectangle(XY, 20, 0, 10, 10)
		d.Extrude(b, kernel.ExtrudeSpec{Height: 10})
		_, err := d.Build(ctx)
		require.NoError(t, err)
	}
	asm, err := store.Assembly(ctx, DefaultModelName)
	require.NoError(t, err)
	assert.Len(t, asm.Parts, 2)
}

func TestMoveAndRotate(t *testing.T) {
	d, _ := newDrafter(t)
	p := d.CreateCircle(XY, 12, 0, 0)
	d.Rotate(p, v3.Vec{Y: 1}, 90, v3.Vec{})
	d.Move(p, v3.Vec{}, v3.Vec{X: 100, Y: 50, Z: -20})
	d.Extrude(p, kernel.ExtrudeSpec{Height: 40})

	asm, err := d.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, asm.Parts, 1)
	assertBounds(t, asm.Parts[0], [3]float64{100, 44, -26}, [3]float64{140, 56, -14})
}

func TestRevolve(t *testing.T) {
	d, _ := newDrafter(t)
	p := d.CreatePolylineWithArcSegments(XY, []Vertex{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 20},
		{X: 0, Y: 20},
	})
	d.Revolve(p, v3.Vec{}, v3.Vec{Y: 1}, 360)

	asm, err := d.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, asm.Parts, 1)
	assert.Equal(t, "revolution", asm.Parts[0].Kind)
	assertBounds(t, asm.Parts[0], [3]float64{-10, 0, -10}, [3]float64{10, 20, 10})
}

func TestFilletEdges(t *testing.T) {
	d, _ := newDrafter(t)
	p := d.CreateCircle(XY, 50, 0, 0)
	d.Extrude(p, kernel.ExtrudeSpec{Height: 10})
	d.FilletEdges(p, 10, 1, 5)

	asm, err := d.Build(context.Background())
	require.NoError(t, err)
	fillets := asm.Parts[0].Solid.(*memory.Solid).Fillets()
	require.Len(t, fillets, 1)
	assert.Equal(t, kernel.FilletSpec{Radius: 10, StartSetback: 1, EndSetback: 5}, fillets[0].Spec)
	assert.Len(t, fillets[0].Edges, 3*circleFacets/2)
}

func TestContractViolations(t *testing.T) {
	tests := []struct {
		name string
		run  func(d *Drafter)
		want error
	}{
		{"second solid operation", func(d *Drafter) {
			p := d.CreateRectangle(XY, 0, 0, 10, 10)
			d.Extrude(p, kernel.ExtrudeSpec{Height: 10})
			d.Revolve(p, v3.Vec{}, v3.Vec{Y: 1}, 360)
		}, ErrOperationPending},
		{"fillet without operation", func(d *Drafter) {
			p := d.CreateRectangle(XY, 0, 0, 10, 10)
			d.FilletEdges(p, 1, 0, 0)
		}, ErrNoOperation},
		{"unknown profile", func(d *Drafter) {
			d.Extrude(Profile(7), kernel.ExtrudeSpec{Height: 10})
		}, ErrUnknownProfile},
		{"zero width", func(d *Drafter) {
			d.CreateRectangle(XY, 0, 0, 0, 10)
		}, ErrInvalidSize},
		{"negative diameter", func(d *Drafter) {
			d.CreateCircle(XZ, -5, 0, 0)
		}, ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, store := newDrafter(t)
			tt.run(d)
			assert.ErrorIs(t, d.Err(), tt.want)

			_, err := d.Build(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, d.Err(), "error must be cleared by Build")

			_, err = store.Assembly(context.Background(), DefaultModelName)
			assert.ErrorIs(t, err, document.ErrNotFound)
		})
	}
}

func TestFirstViolationSticks(t *testing.T) {
	d, _ := newDrafter(t)
	d.CreateRectangle(XY, 0, 0, -1, 10)
	d.Extrude(Profile(3), kernel.ExtrudeSpec{Height: 1})
	assert.ErrorIs(t, d.Err(), ErrInvalidSize)
	assert.False(t, errors.Is(d.Err(), ErrUnknownProfile))
}

func TestBuildDegenerateClearsState(t *testing.T) {
	d, store := newDrafter(t)
	ctx := context.Background()

	good := d.CreateRectangle(XY, 0, 0, 10, 10)
	d.Extrude(good, kernel.ExtrudeSpec{Height: 10})
	_, err := d.Build(ctx)
	require.NoError(t, err)
	before, err := store.Assembly(ctx, DefaultModelName)
	require.NoError(t, err)

	flat := d.CreatePolylineWithArcSegments(XY, []Vertex{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}})
	d.Extrude(flat, kernel.ExtrudeSpec{Height: 10})
	_, err = d.Build(ctx)
	assert.ErrorIs(t, err, kernel.ErrDegenerate)
	assert.Equal(t, 0, d.Pending())

	after, err := store.Assembly(ctx, DefaultModelName)
	require.NoError(t, err)
	assert.Equal(t, before.Revision, after.Revision)

	// The next build starts from a clean slate.
	p := d.CreateRectangle(XY, 0, 0, 5, 5)
	assert.Equal(t, Profile(0), p)
}

func TestModelName(t *testing.T) {
	store := document.NewMemoryStore()
	d := New(memory.New(), store, WithModelName("Workbench"))
	p := d.CreateRectangle(XY, 0, 0, 10, 10)
	d.Extrude(p, kernel.ExtrudeSpec{Height: 10})

	asm, err := d.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Workbench", asm.Name)
	names, _ := store.Names(context.Background())
	assert.Equal(t, []string{"Workbench"}, names)
}
