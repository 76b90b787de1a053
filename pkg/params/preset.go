package params

import (
	"fmt"
	"os"
	"sort"

	"github.com/titanous/json5"
)

// Preset is the on-disk form of a parameter set. Files are JSON5 so they can
// carry comments:
//
//	{
//	  legType: "square",
//	  handleType: "knob",
//	  values: { WorktopLength: 900, "drawer-number": 3 },
//	}
type Preset struct {
	LegType    string         `json:"legType,omitempty"`
	HandleType string         `json:"handleType,omitempty"`
	Values     map[string]int `json:"values,omitempty"`
}

// LoadPreset reads a JSON5 preset file and applies it over the defaults.
func LoadPreset(path string) (*DeskParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(data)
}

// ParsePreset applies a JSON5 preset over the default parameters.
func ParsePreset(data []byte) (*DeskParameters, error) {
	var pr Preset
	if err := json5.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	return pr.Apply(New())
}

// Apply writes the preset into d and returns it. The leg type is switched
// before values are set so the matching leg-base parameter is active, and
// WorktopLength is set first so derived bounds are current.
func (pr Preset) Apply(d *DeskParameters) (*DeskParameters, error) {
	if pr.LegType != "" {
		t, err := ParseLegType(pr.LegType)
		if err != nil {
			return nil, err
		}
		if err := d.SetLegType(t); err != nil {
			return nil, err
		}
	}
	if pr.HandleType != "" {
		t, err := ParseHandleType(pr.HandleType)
		if err != nil {
			return nil, err
		}
		if err := d.SetHandleType(t); err != nil {
			return nil, err
		}
	}

	type entry struct {
		name  Name
		value int
	}
	entries := make([]entry, 0, len(pr.Values))
	for key, v := range pr.Values {
		n, err := ParseName(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{n, v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	for _, e := range entries {
		if err := d.Set(e.name, e.value); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// PresetOf captures d as a preset.
func PresetOf(d *DeskParameters) Preset {
	pr := Preset{
		LegType:    d.LegType().String(),
		HandleType: d.HandleType().String(),
		Values:     make(map[string]int),
	}
	for _, p := range d.All() {
		pr.Values[p.Name.String()] = p.Value
	}
	return pr
}
