// Package params holds the desk parameter model: named integer parameters
// with bounds, grouped by desk section, plus the leg and handle selectors.
// Validity is a flag recomputed on demand; nothing here ever rejects a value.
package params

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnknownParameter is returned when a name is not part of the model or is
// not active for the current leg type.
var ErrUnknownParameter = errors.New("unknown parameter")

// Name identifies a desk parameter.
type Name int

const (
	WorktopLength Name = iota
	WorktopWidth
	WorktopHeight
	LegHeight
	LegBaseDiameter
	LegBaseLength
	DrawerNumber
	DrawerLength
	DrawerGripHandleFastenerDistance
	DrawerRailingHandleFastenerDistance
	DrawerKnobHandleBaseDiameter
)

var names = []string{
	WorktopLength:                       "WorktopLength",
	WorktopWidth:                        "WorktopWidth",
	WorktopHeight:                       "WorktopHeight",
	LegHeight:                           "LegHeight",
	LegBaseDiameter:                     "LegBaseDiameter",
	LegBaseLength:                       "LegBaseLength",
	DrawerNumber:                        "DrawerNumber",
	DrawerLength:                        "DrawerLength",
	DrawerGripHandleFastenerDistance:    "DrawerGripHandleFastenerDistance",
	DrawerRailingHandleFastenerDistance: "DrawerRailingHandleFastenerDistance",
	DrawerKnobHandleBaseDiameter:        "DrawerKnobHandleBaseDiameter",
}

var descriptions = []string{
	WorktopLength:                       "Worktop length",
	WorktopWidth:                        "Worktop width",
	WorktopHeight:                       "Worktop height",
	LegHeight:                           "Leg height",
	LegBaseDiameter:                     "Leg base diameter",
	LegBaseLength:                       "Leg base length",
	DrawerNumber:                        "Number of drawers",
	DrawerLength:                        "Drawer length",
	DrawerGripHandleFastenerDistance:    "Grip handle fastener distance",
	DrawerRailingHandleFastenerDistance: "Railing handle fastener distance",
	DrawerKnobHandleBaseDiameter:        "Knob handle base diameter",
}

func (n Name) String() string {
	if n < 0 || int(n) >= len(names) {
		return fmt.Sprintf("Name(%d)", int(n))
	}
	return names[n]
}

// Description returns the human-readable label shown next to the value.
func (n Name) Description() string {
	if n < 0 || int(n) >= len(descriptions) {
		return n.String()
	}
	return descriptions[n]
}

// Group returns the group the parameter belongs to.
func (n Name) Group() GroupName {
	switch n {
	case WorktopLength, WorktopWidth, WorktopHeight:
		return Worktop
	case LegHeight, LegBaseDiameter, LegBaseLength:
		return Legs
	default:
		return Drawers
	}
}

// AllNames lists every parameter name, including both leg-base kinds.
func AllNames() []Name {
	out := make([]Name, len(names))
	for i := range names {
		out[i] = Name(i)
	}
	return out
}

// ParseName accepts either the canonical form ("WorktopLength") or the
// kebab form used by scripts and presets ("worktop-length").
func ParseName(s string) (Name, error) {
	key := normalizeName(s)
	for i, n := range names {
		if normalizeName(n) == key {
			return Name(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, s)
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Parameter is a bounded integer value in millimetres (or a count).
type Parameter struct {
	Name  Name
	Min   int
	Max   int
	Value int
}

// Valid reports whether the value lies within [Min, Max].
func (p Parameter) Valid() bool {
	return p.Value >= p.Min && p.Value <= p.Max
}

// HasRange reports whether the bounds describe a displayable range.
func (p Parameter) HasRange() bool {
	return p.Min < p.Max
}

// Description returns the display name of the parameter.
func (p Parameter) Description() string {
	return p.Name.Description()
}

// Message returns the validation message, or "" when the value is valid.
func (p Parameter) Message() string {
	if p.Valid() {
		return ""
	}
	if !p.HasRange() {
		return fmt.Sprintf("%s has no acceptable range (min %d, max %d)", p.Description(), p.Min, p.Max)
	}
	unit := " mm"
	if p.Name == DrawerNumber {
		unit = ""
	}
	return fmt.Sprintf("%s must be between %d and %d%s", p.Description(), p.Min, p.Max, unit)
}

func (p Parameter) String() string {
	return fmt.Sprintf("%s=%d [%d..%d]", p.Name, p.Value, p.Min, p.Max)
}

// GroupName identifies a parameter group.
type GroupName int

const (
	Worktop GroupName = iota
	Legs
	Drawers
)

func (g GroupName) String() string {
	switch g {
	case Worktop:
		return "Worktop"
	case Legs:
		return "Legs"
	case Drawers:
		return "Drawers"
	default:
		return fmt.Sprintf("GroupName(%d)", int(g))
	}
}

// Group is a named collection of parameters keyed by name.
type Group struct {
	Name   GroupName
	params map[Name]*Parameter
}

func newGroup(name GroupName) *Group {
	return &Group{Name: name, params: make(map[Name]*Parameter)}
}

func (g *Group) put(p Parameter) {
	g.params[p.Name] = &p
}

// Get returns the named parameter and whether it is present in the group.
func (g *Group) Get(n Name) (Parameter, bool) {
	p, ok := g.params[n]
	if !ok {
		return Parameter{}, false
	}
	return *p, true
}

// Parameters returns the group's parameters ordered by name.
func (g *Group) Parameters() []Parameter {
	out := make([]Parameter, 0, len(g.params))
	for _, n := range AllNames() {
		if p, ok := g.params[n]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// Valid reports whether every parameter in the group is valid.
func (g *Group) Valid() bool {
	for _, p := range g.params {
		if !p.Valid() {
			return false
		}
	}
	return true
}
