package drafting

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/yofu/dxf"
)

// Outline is a swept profile's boundary in world coordinates.
type Outline struct {
	Label  string
	Plane  Plane
	Points []v3.Vec
}

// WriteDXF writes the outlines as closed loops of 3D lines, one layer per
// construction plane.
func WriteDXF(path string, outlines []Outline) error {
	d := dxf.NewDrawing()
	for _, pl := range []Plane{XY, XZ, YZ} {
		if _, err := d.AddLayer(pl.String(), dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("dxf layer %s: %w", pl, err)
		}
	}
	for _, o := range outlines {
		if err := d.ChangeLayer(o.Plane.String()); err != nil {
			return fmt.Errorf("dxf layer %s: %w", o.Plane, err)
		}
		n := len(o.Points)
		for i, p := range o.Points {
			q := o.Points[(i+1)%n]
			if _, err := d.Line(p.X, p.Y, p.Z, q.X, q.Y, q.Z); err != nil {
				return fmt.Errorf("dxf outline %s: %w", o.Label, err)
			}
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save dxf: %w", err)
	}
	return nil
}
