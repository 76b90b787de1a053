// Package drafting is the drafting layer the desk builder talks to. It
// creates planar profiles, moves and rotates them, and registers solid
// operations against them. Nothing is materialized until Build, which
// sweeps every registered profile, resolves containment between the
// resulting solids and commits the survivors to the document as one named
// assembly.
package drafting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/assembly"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/document"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
	"github.com/rs/zerolog"
)

// DefaultModelName is the assembly name used when none is configured.
const DefaultModelName = "Desk"

var (
	// ErrOperationPending is reported when a second solid operation is
	// registered on a profile.
	ErrOperationPending = errors.New("profile already has a solid operation")
	// ErrNoOperation is reported when a fillet is requested on a profile
	// without a solid operation.
	ErrNoOperation = errors.New("profile has no solid operation")
	// ErrUnknownProfile is reported for handles this drafter did not issue
	// since its last Build.
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrInvalidSize is reported for non-positive dimensions.
	ErrInvalidSize = errors.New("invalid size")
)

// Profile is a handle to a closed planar curve.
type Profile int

// Op is the kind of a pending solid operation.
type Op int

const (
	Extrusion Op = iota
	Revolution
)

func (o Op) String() string {
	switch o {
	case Extrusion:
		return "extrusion"
	case Revolution:
		return "revolution"
	default:
		return "unknown"
	}
}

type profile struct {
	plane     Plane
	vertices  []Vertex
	placement sdf.M44
	label     string
	op        *pendingSolid
}

type pendingSolid struct {
	profile Profile
	op      Op
	extrude kernel.ExtrudeSpec
	revolve kernel.RevolveSpec
	fillet  *kernel.FilletSpec
}

// Drafter records profiles and pending solid operations until Build.
// All methods are safe for concurrent use; Build holds the lock for the
// whole materialize-resolve-commit sequence.
type Drafter struct {
	mu       sync.Mutex
	kernel   kernel.Kernel
	store    document.Store
	log      zerolog.Logger
	name     string
	profiles []profile
	pending  []*pendingSolid
	err      error
	sketch   []Outline
}

// Option configures a Drafter.
type Option func(*Drafter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Drafter) { d.log = l }
}

// WithModelName sets the name the assembly is committed under.
func WithModelName(name string) Option {
	return func(d *Drafter) { d.name = name }
}

// New returns a Drafter materializing with k and committing to store.
func New(k kernel.Kernel, store document.Store, opts ...Option) *Drafter {
	d := &Drafter{
		kernel: k,
		store:  store,
		log:    zerolog.Nop(),
		name:   DefaultModelName,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ModelName returns the name the assembly is committed under.
func (d *Drafter) ModelName() string {
	return d.name
}

// Err returns the first caller-contract violation since the last Build.
func (d *Drafter) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// fail records the first violation. Callers hold d.mu.
func (d *Drafter) fail(err error) {
	if d.err == nil {
		d.err = err
		d.log.Error().Err(err).Msg("drafting call rejected")
	}
}

// lookup returns the profile for p, recording a violation when p is unknown.
// Callers hold d.mu.
func (d *Drafter) lookup(p Profile) *profile {
	if p < 0 || int(p) >= len(d.profiles) {
		d.fail(fmt.Errorf("%w: %d", ErrUnknownProfile, p))
		return nil
	}
	return &d.profiles[p]
}

func (d *Drafter) add(plane Plane, vs []Vertex) Profile {
	if !plane.valid() {
		d.fail(fmt.Errorf("unknown plane %d", plane))
		return -1
	}
	d.profiles = append(d.profiles, profile{
		plane:     plane,
		vertices:  vs,
		placement: plane.Placement(),
	})
	return Profile(len(d.profiles) - 1)
}

// CreateRectangle creates an axis-aligned rectangle with its lower-left
// corner at (x, y) in the plane's local coordinates.
func (d *Drafter) CreateRectangle(plane Plane, x, y, width, height float64) Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return -1
	}
	if width <= 0 || height <= 0 {
		d.fail(fmt.Errorf("%w: rectangle %gx%g", ErrInvalidSize, width, height))
		return -1
	}
	return d.add(plane, []Vertex{
		{X: x, Y: y},
		{X: x + width, Y: y},
		{X: x + width, Y: y + height},
		{X: x, Y: y + height},
	})
}

// CreateCircle creates a circle centred on (x, y) in the plane's local
// coordinates.
func (d *Drafter) CreateCircle(plane Plane, diameter, x, y float64) Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return -1
	}
	if diameter <= 0 {
		d.fail(fmt.Errorf("%w: circle diameter %g", ErrInvalidSize, diameter))
		return -1
	}
	return d.add(plane, circle(diameter, x, y))
}

// CreatePolylineWithArcSegments creates a closed polyline. A vertex with a
// non-zero bulge turns the segment to the next vertex into an arc.
func (d *Drafter) CreatePolylineWithArcSegments(plane Plane, vs []Vertex) Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return -1
	}
	for _, v := range vs {
		if v.Bulge <= -360 || v.Bulge >= 360 {
			d.fail(fmt.Errorf("%w: bulge angle %g", ErrInvalidSize, v.Bulge))
			return -1
		}
	}
	return d.add(plane, append([]Vertex(nil), vs...))
}

// Move translates the profile by to - from.
func (d *Drafter) Move(p Profile, from, to v3.Vec) Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return p
	}
	if pr := d.lookup(p); pr != nil {
		pr.placement = sdf.Translate3d(to.Sub(from)).Mul(pr.placement)
	}
	return p
}

// Rotate turns the profile by angle degrees about the line through about
// with direction axis.
func (d *Drafter) Rotate(p Profile, axis v3.Vec, angle float64, about v3.Vec) Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return p
	}
	if axis.Length() == 0 {
		d.fail(fmt.Errorf("%w: zero rotation axis", ErrInvalidSize))
		return p
	}
	if pr := d.lookup(p); pr != nil {
		pr.placement = kernel.AxisRotation(about, axis, angle).Mul(pr.placement)
	}
	return p
}

// register attaches a solid operation to p. Callers hold d.mu.
func (d *Drafter) register(p Profile, ps *pendingSolid) {
	pr := d.lookup(p)
	if pr == nil {
		return
	}
	if pr.op != nil {
		d.fail(fmt.Errorf("%w: profile %d (%s)", ErrOperationPending, p, pr.op.op))
		return
	}
	ps.profile = p
	pr.op = ps
	d.pending = append(d.pending, ps)
}

// Extrude registers a linear sweep of p along its plane normal.
func (d *Drafter) Extrude(p Profile, spec kernel.ExtrudeSpec) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return
	}
	d.register(p, &pendingSolid{op: Extrusion, extrude: spec})
}

// Revolve registers a sweep of p by angle degrees about the world axis from
// axisStart to axisEnd.
func (d *Drafter) Revolve(p Profile, axisStart, axisEnd v3.Vec, angle float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return
	}
	d.register(p, &pendingSolid{op: Revolution, revolve: kernel.RevolveSpec{
		AxisStart: axisStart,
		AxisEnd:   axisEnd,
		Angle:     angle,
	}})
}

// FilletEdges rounds every other edge of the solid swept from p, starting
// with the second.
func (d *Drafter) FilletEdges(p Profile, radius, startSetback, endSetback float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return
	}
	pr := d.lookup(p)
	if pr == nil {
		return
	}
	if pr.op == nil {
		d.fail(fmt.Errorf("%w: fillet on profile %d", ErrNoOperation, p))
		return
	}
	if radius <= 0 {
		d.fail(fmt.Errorf("%w: fillet radius %g", ErrInvalidSize, radius))
		return
	}
	pr.op.fillet = &kernel.FilletSpec{Radius: radius, StartSetback: startSetback, EndSetback: endSetback}
}

// Label names the part produced from p.
func (d *Drafter) Label(p Profile, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return
	}
	if pr := d.lookup(p); pr != nil {
		pr.label = name
	}
}

// Pending returns the number of registered solid operations.
func (d *Drafter) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// reset drops all profiles, pending operations and the sticky error.
// Callers hold d.mu.
func (d *Drafter) reset() {
	d.profiles = nil
	d.pending = nil
	d.err = nil
}

// Build materializes every pending operation in registration order,
// subtracts contained solids from their hosts and commits the survivors,
// replacing the previous assembly of the same name. With nothing pending
// it returns (nil, nil) and leaves the document alone. Drafter state is
// cleared whatever the outcome.
func (d *Drafter) Build(ctx context.Context) (*document.Assembly, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.reset()

	if d.err != nil {
		return nil, d.err
	}
	if len(d.pending) == 0 {
		return nil, nil
	}

	start := time.Now()
	items := make([]assembly.Item, 0, len(d.pending))
	for _, ps := range d.pending {
		pr := &d.profiles[ps.profile]
		label := pr.label
		if label == "" {
			label = fmt.Sprintf("solid-%d", ps.profile)
		}
		s, err := d.materialize(pr, ps)
		if err != nil {
			return nil, fmt.Errorf("materialize %s: %w", label, err)
		}
		items = append(items, assembly.Item{
			Label:  label,
			Kind:   ps.op.String(),
			Solid:  s,
			CutOut: ps.op == Extrusion && ps.extrude.CutOut,
		})
	}

	resolved, err := assembly.Resolve(d.kernel, items, d.log)
	if err != nil {
		return nil, err
	}

	sketch := make([]Outline, 0, len(d.pending))
	for i, ps := range d.pending {
		pr := &d.profiles[ps.profile]
		sec := kernel.Section{Loop: flatten(pr.vertices), Placement: pr.placement}
		sketch = append(sketch, Outline{Label: items[i].Label, Plane: pr.plane, Points: sec.World()})
	}

	parts := make([]document.Part, len(resolved))
	for i, it := range resolved {
		parts[i] = document.NewPart(it.Label, it.Kind, it.Solid)
	}
	asm, err := d.store.Replace(ctx, d.name, parts)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", d.name, err)
	}
	d.sketch = sketch

	d.log.Info().
		Str("model", d.name).
		Int("materialized", len(items)).
		Int("parts", len(parts)).
		Dur("elapsed", time.Since(start)).
		Msg("model built")
	return asm, nil
}

// materialize sweeps one profile and applies its fillet. Callers hold d.mu.
func (d *Drafter) materialize(pr *profile, ps *pendingSolid) (kernel.Solid, error) {
	sec := kernel.Section{Loop: flatten(pr.vertices), Placement: pr.placement}

	var (
		s   kernel.Solid
		err error
	)
	switch ps.op {
	case Extrusion:
		s, err = d.kernel.Extrude(sec, ps.extrude)
	case Revolution:
		s, err = d.kernel.Revolve(sec, ps.revolve)
	default:
		err = fmt.Errorf("unknown operation %d", ps.op)
	}
	if err != nil {
		return nil, err
	}
	if ps.fillet != nil {
		s, err = d.kernel.Fillet(s, *ps.fillet)
		if err != nil {
			return nil, fmt.Errorf("fillet: %w", err)
		}
	}
	return s, nil
}

// Loop returns the flattened local loop of p. It is meant for inspection
// and returns nil for unknown profiles.
func (d *Drafter) Loop(p Profile) []v2.Vec {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p < 0 || int(p) >= len(d.profiles) {
		return nil
	}
	return flatten(d.profiles[p].vertices)
}

// Sketch returns the outlines of every profile swept by the last successful
// Build, cut-outs included, in registration order.
func (d *Drafter) Sketch() []Outline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Outline(nil), d.sketch...)
}
