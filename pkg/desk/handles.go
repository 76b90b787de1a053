package desk

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/drafting"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
)

// Handle constants, in millimetres. All handles stand out from the door
// front toward -Y.
const (
	gripAllowance    = 20
	gripBarThickness = 10

	railingAllowance         = 40
	railingCrossbeamDiameter = 12
	railingLegDiameter       = 8

	knobBaseDepth    = 10
	knobStemLength   = 20
	knobStemBulge    = -60
	knobCapBaseDepth = 5
	knobCapDepth     = 10
	knobCapBaseExtra = 20
	knobCapExtra     = 10
)

// grip builds a U-shaped bar: an outer block with a narrower, shallower
// block cut from it, leaving two posts joined by a bar.
func (b *Builder) grip(id int, c v3.Vec, fastener float64) {
	outer := b.xzRect(c.X-(fastener+gripAllowance)/2, c.Z-gripAllowance/2, fastener+gripAllowance, gripAllowance)
	b.toY(outer, c.Y)
	b.d.Extrude(outer, kernel.ExtrudeSpec{Height: fastener / 2, Negative: true})
	b.d.Label(outer, fmt.Sprintf("handle-%d", id))

	inner := b.xzRect(c.X-fastener/2, c.Z-gripAllowance/2, fastener, gripAllowance)
	b.toY(inner, c.Y)
	b.d.Extrude(inner, kernel.ExtrudeSpec{Height: fastener/2 - gripBarThickness, Negative: true, CutOut: true})
	b.d.Label(inner, fmt.Sprintf("handle-%d-cavity", id))
}

// railing builds a round crossbeam held off the door by two round legs at
// the fastener positions.
func (b *Builder) railing(id int, c v3.Vec, fastener float64) {
	length := fastener + railingAllowance
	depth := length / 2

	beam := b.d.CreateCircle(drafting.XY, railingCrossbeamDiameter, 0, 0)
	b.d.Rotate(beam, v3.Vec{Y: 1}, 90, v3.Vec{})
	b.d.Move(beam, v3.Vec{}, v3.Vec{X: c.X - length/2, Y: c.Y - depth, Z: c.Z})
	b.d.Extrude(beam, kernel.ExtrudeSpec{Height: length})
	b.d.Label(beam, fmt.Sprintf("handle-%d-beam", id))

	for i, dx := range []float64{-fastener / 2, fastener / 2} {
		leg := b.xzCircle(railingLegDiameter, c.X+dx, c.Z)
		b.toY(leg, c.Y)
		b.d.Extrude(leg, kernel.ExtrudeSpec{Height: depth, Negative: true})
		b.d.Label(leg, fmt.Sprintf("handle-%d-leg-%d", id, i+1))
	}
}

// knob builds a filleted base disc, a waisted stem turned about the handle
// axis, and a two-step filleted cap.
func (b *Builder) knob(id int, c v3.Vec, diameter float64) {
	y := c.Y

	base := b.xzCircle(diameter, c.X, c.Z)
	b.toY(base, y)
	b.d.Extrude(base, kernel.ExtrudeSpec{Height: knobBaseDepth, Negative: true})
	b.d.FilletEdges(base, 10, 1, 5)
	b.d.Label(base, fmt.Sprintf("handle-%d-base", id))
	y -= knobBaseDepth

	// The stem is drawn with the axis along local +Y, flipped to point
	// away from the door, and turned about the handle axis.
	stem := b.d.CreatePolylineWithArcSegments(drafting.XY, []drafting.Vertex{
		{X: 0, Y: 0},
		{X: diameter / 4, Y: 0, Bulge: knobStemBulge},
		{X: diameter / 6, Y: knobStemLength},
		{X: 0, Y: knobStemLength},
	})
	b.d.Rotate(stem, v3.Vec{X: 1}, 180, v3.Vec{})
	b.d.Move(stem, v3.Vec{}, v3.Vec{X: c.X, Y: y, Z: c.Z})
	b.d.Revolve(stem, v3.Vec{X: c.X, Y: y, Z: c.Z}, v3.Vec{X: c.X, Y: y - knobStemLength, Z: c.Z}, 360)
	b.d.Label(stem, fmt.Sprintf("handle-%d-stem", id))
	y -= knobStemLength

	capBase := b.xzCircle(diameter+knobCapBaseExtra, c.X, c.Z)
	b.toY(capBase, y)
	b.d.Extrude(capBase, kernel.ExtrudeSpec{Height: knobCapBaseDepth, Negative: true})
	b.d.FilletEdges(capBase, 2, 1, 5)
	b.d.Label(capBase, fmt.Sprintf("handle-%d-cap-base", id))
	y -= knobCapBaseDepth

	top := b.xzCircle(diameter+knobCapExtra, c.X, c.Z)
	b.toY(top, y)
	b.d.Extrude(top, kernel.ExtrudeSpec{Height: knobCapDepth, Negative: true})
	b.d.FilletEdges(top, 5, 1, 5)
	b.d.Label(top, fmt.Sprintf("handle-%d-cap", id))
}
