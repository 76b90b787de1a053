package drafting

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Plane is the construction plane a profile is created in. Profiles are
// always authored in local XY and rotated into their plane.
type Plane int

const (
	XY Plane = iota
	// XZ maps local (x, y) to world (x, 0, -y); the section normal is +Y.
	XZ
	// YZ maps local (x, y) to world (0, y, x); the section normal is -X.
	YZ
)

func (p Plane) String() string {
	switch p {
	case XY:
		return "XY"
	case XZ:
		return "XZ"
	case YZ:
		return "YZ"
	default:
		return "unknown"
	}
}

// Placement returns the rotation taking the local XY plane into p.
func (p Plane) Placement() sdf.M44 {
	switch p {
	case XZ:
		return sdf.RotateX(-math.Pi / 2)
	case YZ:
		return sdf.RotateY(-math.Pi / 2)
	default:
		return sdf.Identity3d()
	}
}

func (p Plane) valid() bool {
	return p >= XY && p <= YZ
}
