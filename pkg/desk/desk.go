// Package desk expands a desk parameter set into drafting calls: a worktop,
// two legs and a stack of drawers with doors and handles. Cavities are
// never subtracted explicitly; each one is built inside its host and the
// drafter's containment pass removes it.
package desk

import (
	"context"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/document"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/drafting"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/params"
	"github.com/rs/zerolog"
)

// Fixed construction constants, in millimetres.
const (
	legCornerOffset = 60

	drawerLengthDelta = 20
	drawerHeightDelta = 20
	drawerWidthDelta  = 20

	doorLengthDelta = 4
	doorHeightDelta = 4
	doorWidth       = 20
)

// Drafting is the drafting surface the builder drives. *drafting.Drafter
// implements it.
type Drafting interface {
	CreateRectangle(plane drafting.Plane, x, y, width, height float64) drafting.Profile
	CreateCircle(plane drafting.Plane, diameter, x, y float64) drafting.Profile
	CreatePolylineWithArcSegments(plane drafting.Plane, vs []drafting.Vertex) drafting.Profile
	Move(p drafting.Profile, from, to v3.Vec) drafting.Profile
	Rotate(p drafting.Profile, axis v3.Vec, angle float64, about v3.Vec) drafting.Profile
	Extrude(p drafting.Profile, spec kernel.ExtrudeSpec)
	Revolve(p drafting.Profile, axisStart, axisEnd v3.Vec, angle float64)
	FilletEdges(p drafting.Profile, radius, startSetback, endSetback float64)
	Label(p drafting.Profile, name string)
	Build(ctx context.Context) (*document.Assembly, error)
}

var _ Drafting = (*drafting.Drafter)(nil)

// Builder builds desks.
type Builder struct {
	d   Drafting
	log zerolog.Logger
}

// NewBuilder returns a builder issuing calls against d.
func NewBuilder(d Drafting, log zerolog.Logger) *Builder {
	return &Builder{d: d, log: log}
}

// BuildDesk issues the whole desk and commits it with one Build. The
// parameters are not range-checked here; callers build only valid sets.
func (b *Builder) BuildDesk(ctx context.Context, p *params.DeskParameters) (*document.Assembly, error) {
	p = p.Clone()
	b.worktop(p)
	b.legs(p)
	b.drawers(p)

	asm, err := b.d.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build desk: %w", err)
	}
	return asm, nil
}

// xzRect creates a rectangle in the XZ plane covering world x in
// [x, x+width] and world z in [z, z+height].
func (b *Builder) xzRect(x, z, width, height float64) drafting.Profile {
	return b.d.CreateRectangle(drafting.XZ, x, -(z + height), width, height)
}

// xzCircle creates a circle in the XZ plane centred on world (x, 0, z).
func (b *Builder) xzCircle(diameter, x, z float64) drafting.Profile {
	return b.d.CreateCircle(drafting.XZ, diameter, x, -z)
}

// toY moves a profile lying in the y=0 plane to y.
func (b *Builder) toY(pr drafting.Profile, y float64) drafting.Profile {
	return b.d.Move(pr, v3.Vec{}, v3.Vec{Y: y})
}

func (b *Builder) worktop(p *params.DeskParameters) {
	l := float64(p.Value(params.WorktopLength))
	w := float64(p.Value(params.WorktopWidth))
	h := float64(p.Value(params.WorktopHeight))

	pr := b.d.CreateRectangle(drafting.XY, 0, 0, l, w)
	b.d.Extrude(pr, kernel.ExtrudeSpec{Height: h})
	b.d.Label(pr, "worktop")
}

// legs builds one leg at the origin corner and one mirrored across the
// width.
func (b *Builder) legs(p *params.DeskParameters) {
	w := float64(p.Value(params.WorktopWidth))
	height := float64(p.Value(params.LegHeight))
	base := float64(p.LegBase().Value)

	centres := [2][2]float64{
		{legCornerOffset, legCornerOffset},
		{legCornerOffset, w - legCornerOffset},
	}
	for i, c := range centres {
		var pr drafting.Profile
		switch p.LegType() {
		case params.Square:
			pr = b.d.CreateRectangle(drafting.XY, c[0]-base/2, c[1]-base/2, base, base)
		default:
			pr = b.d.CreateCircle(drafting.XY, base, c[0], c[1])
		}
		b.d.Extrude(pr, kernel.ExtrudeSpec{Height: height, Negative: true})
		b.d.Label(pr, fmt.Sprintf("leg-%d", i+1))
	}
	b.log.Debug().Stringer("type", p.LegType()).Float64("base", base).Msg("legs issued")
}

// drawers stacks the drawers under the far end of the worktop, top first.
func (b *Builder) drawers(p *params.DeskParameters) {
	l := float64(p.Value(params.WorktopLength))
	w := float64(p.Value(params.WorktopWidth))
	dl := float64(p.Value(params.DrawerLength))
	n := p.Value(params.DrawerNumber)
	h := p.DrawerHeight()
	x := l - dl

	for i := 0; i < n; i++ {
		z := -float64(i+1) * h
		id := i + 1

		box := b.xzRect(x, z, dl, h)
		b.d.Extrude(box, kernel.ExtrudeSpec{Height: w})
		b.d.Label(box, fmt.Sprintf("drawer-%d", id))

		cavity := b.xzRect(x+drawerLengthDelta/2, z+drawerHeightDelta/2, dl-drawerLengthDelta, h-drawerHeightDelta)
		b.toY(cavity, drawerWidthDelta/2)
		b.d.Extrude(cavity, kernel.ExtrudeSpec{Height: w - drawerWidthDelta, CutOut: true})
		b.d.Label(cavity, fmt.Sprintf("drawer-%d-cavity", id))

		door := b.xzRect(x+doorLengthDelta/2, z+doorHeightDelta/2, dl-doorLengthDelta, h-doorHeightDelta)
		b.d.Extrude(door, kernel.ExtrudeSpec{Height: doorWidth, Negative: true})
		b.d.Label(door, fmt.Sprintf("door-%d", id))

		centre := v3.Vec{X: x + dl/2, Y: -doorWidth, Z: z + h/2}
		b.handle(p, id, centre)
	}
	b.log.Debug().Int("drawers", n).Float64("height", h).Stringer("handle", p.HandleType()).Msg("drawers issued")
}

func (b *Builder) handle(p *params.DeskParameters, id int, centre v3.Vec) {
	size := float64(p.HandleParameter().Value)
	switch p.HandleType() {
	case params.Railing:
		b.railing(id, centre, size)
	case params.Knob:
		b.knob(id, centre, size)
	default:
		b.grip(id, centre, size)
	}
}
