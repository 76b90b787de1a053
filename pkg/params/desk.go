package params

import "fmt"

// LegType selects which leg-base parameter is active.
type LegType int

const (
	Round LegType = iota
	Square
)

func (t LegType) String() string {
	switch t {
	case Round:
		return "round"
	case Square:
		return "square"
	default:
		return fmt.Sprintf("LegType(%d)", int(t))
	}
}

// BaseParameter returns the leg-base parameter name used by this leg type.
func (t LegType) BaseParameter() Name {
	if t == Square {
		return LegBaseLength
	}
	return LegBaseDiameter
}

// ParseLegType parses "round" or "square".
func ParseLegType(s string) (LegType, error) {
	switch normalizeName(s) {
	case "round":
		return Round, nil
	case "square":
		return Square, nil
	}
	return 0, fmt.Errorf("invalid leg type %q, expected round or square", s)
}

// HandleType selects one of the three drawer handle geometries.
type HandleType int

const (
	Grip HandleType = iota
	Railing
	Knob
)

func (t HandleType) String() string {
	switch t {
	case Grip:
		return "grip"
	case Railing:
		return "railing"
	case Knob:
		return "knob"
	default:
		return fmt.Sprintf("HandleType(%d)", int(t))
	}
}

// ParseHandleType parses "grip", "railing" or "knob".
func ParseHandleType(s string) (HandleType, error) {
	switch normalizeName(s) {
	case "grip":
		return Grip, nil
	case "railing":
		return Railing, nil
	case "knob":
		return Knob, nil
	}
	return 0, fmt.Errorf("invalid handle type %q, expected grip, railing or knob", s)
}

// bounds is the fixed part of a parameter definition. Derived bounds are
// patched in by recomputeBounds.
type bounds struct {
	min, max, def int
}

var fixedBounds = map[Name]bounds{
	WorktopLength:                       {800, 1200, 1000},
	WorktopWidth:                        {500, 750, 625},
	WorktopHeight:                       {30, 40, 35},
	LegHeight:                           {690, 730, 715},
	LegBaseDiameter:                     {50, 70, 60},
	LegBaseLength:                       {40, 60, 50},
	DrawerNumber:                        {3, 5, 4},
	DrawerLength:                        {250, 333, 291},
	DrawerGripHandleFastenerDistance:    {64, 128, 96},
	DrawerRailingHandleFastenerDistance: {96, 160, 128},
	DrawerKnobHandleBaseDiameter:        {20, 50, 30},
}

// Default returns a freshly bounded parameter holding its default value.
func Default(n Name) Parameter {
	b := fixedBounds[n]
	return Parameter{Name: n, Min: b.min, Max: b.max, Value: b.def}
}

// DeskParameters is the full parameter set read by the desk builder.
type DeskParameters struct {
	groups     map[GroupName]*Group
	legType    LegType
	handleType HandleType
}

// New returns the default desk: a round-legged desk with four drawers and
// grip handles.
func New() *DeskParameters {
	d := &DeskParameters{
		groups: map[GroupName]*Group{
			Worktop: newGroup(Worktop),
			Legs:    newGroup(Legs),
			Drawers: newGroup(Drawers),
		},
		legType:    Round,
		handleType: Grip,
	}
	for _, n := range AllNames() {
		if n == LegBaseLength {
			continue
		}
		d.groups[n.Group()].put(Default(n))
	}
	d.recomputeBounds()
	return d
}

// Clone returns a deep copy.
func (d *DeskParameters) Clone() *DeskParameters {
	c := &DeskParameters{
		groups:     make(map[GroupName]*Group, len(d.groups)),
		legType:    d.legType,
		handleType: d.handleType,
	}
	for name, g := range d.groups {
		ng := newGroup(name)
		for _, p := range g.params {
			ng.put(*p)
		}
		c.groups[name] = ng
	}
	return c
}

// Group returns the named parameter group.
func (d *DeskParameters) Group(name GroupName) *Group {
	return d.groups[name]
}

// Groups returns the groups in display order.
func (d *DeskParameters) Groups() []*Group {
	return []*Group{d.groups[Worktop], d.groups[Legs], d.groups[Drawers]}
}

// Get returns the named parameter. The inactive leg-base parameter is not
// present.
func (d *DeskParameters) Get(n Name) (Parameter, bool) {
	g, ok := d.groups[n.Group()]
	if !ok {
		return Parameter{}, false
	}
	return g.Get(n)
}

// Value returns the current value of an active parameter, or 0.
func (d *DeskParameters) Value(n Name) int {
	p, _ := d.Get(n)
	return p.Value
}

// Set stores a value. Out-of-range values are kept and flagged invalid.
func (d *DeskParameters) Set(n Name, value int) error {
	g := d.groups[n.Group()]
	p, ok := g.params[n]
	if !ok {
		return fmt.Errorf("%w: %s is not active", ErrUnknownParameter, n)
	}
	p.Value = value
	if n == WorktopLength {
		d.recomputeBounds()
	}
	return nil
}

// recomputeBounds derives the worktop width minimum and the drawer length
// maximum from the worktop length.
func (d *DeskParameters) recomputeBounds() {
	length := d.Value(WorktopLength)
	if p, ok := d.groups[Worktop].params[WorktopWidth]; ok {
		p.Min = length / 2
	}
	if p, ok := d.groups[Drawers].params[DrawerLength]; ok {
		p.Max = length / 3
	}
}

// LegType returns the active leg type.
func (d *DeskParameters) LegType() LegType {
	return d.legType
}

// SetLegType swaps the leg-base parameter for the other kind. The numeric
// value survives when it fits the new bounds. Unknown leg types are rejected
// and leave d unchanged.
func (d *DeskParameters) SetLegType(t LegType) error {
	if t != Round && t != Square {
		return fmt.Errorf("invalid leg type %s", t)
	}
	if t == d.legType {
		return nil
	}
	legs := d.groups[Legs]
	old := legs.params[d.legType.BaseParameter()]
	delete(legs.params, d.legType.BaseParameter())

	fresh := Default(t.BaseParameter())
	if old != nil && old.Value >= fresh.Min && old.Value <= fresh.Max {
		fresh.Value = old.Value
	}
	legs.put(fresh)
	d.legType = t
	return nil
}

// HandleType returns the active handle type.
func (d *DeskParameters) HandleType() HandleType {
	return d.handleType
}

// SetHandleType selects the handle geometry used on every drawer.
func (d *DeskParameters) SetHandleType(t HandleType) error {
	switch t {
	case Grip, Railing, Knob:
		d.handleType = t
		return nil
	}
	return fmt.Errorf("invalid handle type %s", t)
}

// LegBase returns the active leg-base parameter.
func (d *DeskParameters) LegBase() Parameter {
	p, _ := d.Get(d.legType.BaseParameter())
	return p
}

// HandleParameter returns the parameter that sizes the active handle.
func (d *DeskParameters) HandleParameter() Parameter {
	var n Name
	switch d.handleType {
	case Railing:
		n = DrawerRailingHandleFastenerDistance
	case Knob:
		n = DrawerKnobHandleBaseDiameter
	default:
		n = DrawerGripHandleFastenerDistance
	}
	p, _ := d.Get(n)
	return p
}

// DrawerHeight is the leg height shared equally by the drawers. Fractional
// heights are kept as is.
func (d *DeskParameters) DrawerHeight() float64 {
	n := d.Value(DrawerNumber)
	if n == 0 {
		return 0
	}
	return float64(d.Value(LegHeight)) / float64(n)
}

// All returns every active parameter in name order.
func (d *DeskParameters) All() []Parameter {
	var out []Parameter
	for _, g := range d.Groups() {
		out = append(out, g.Parameters()...)
	}
	return out
}

// Valid reports whether every active parameter is within its bounds.
func (d *DeskParameters) Valid() bool {
	for _, g := range d.groups {
		if !g.Valid() {
			return false
		}
	}
	return true
}
