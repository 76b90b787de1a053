package drafting

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

const (
	// arcFacets is the number of straight segments an arc is flattened to.
	arcFacets = 16
	// circleFacets is the number of straight segments a circle is flattened to.
	circleFacets = 32
)

// Vertex is a polyline vertex. A non-zero Bulge is the included angle, in
// degrees, of the arc running from this vertex to the next one. Positive
// angles turn counter-clockwise.
type Vertex struct {
	X, Y  float64
	Bulge float64
}

// BulgeFactor returns tan(θ/4) for an included angle θ in degrees.
func BulgeFactor(angle float64) float64 {
	return math.Tan(angle * math.Pi / 180 / 4)
}

// BulgeMidpoint returns the point halfway along the arc from p to q with
// the given included angle. It sits at sagitta c/2·tan(θ/4) from the chord
// midpoint.
func BulgeMidpoint(p, q v2.Vec, angle float64) v2.Vec {
	d := q.Sub(p)
	c := d.Length()
	left := v2.Vec{X: -d.Y / c, Y: d.X / c}
	mid := p.Add(q).MulScalar(0.5)
	return mid.Sub(left.MulScalar(c / 2 * BulgeFactor(angle)))
}

// arcPoints returns the interior points of the arc from p to q, excluding
// both ends.
func arcPoints(p, q v2.Vec, angle float64) []v2.Vec {
	d := q.Sub(p)
	c := d.Length()
	theta := angle * math.Pi / 180
	left := v2.Vec{X: -d.Y / c, Y: d.X / c}
	mid := p.Add(q).MulScalar(0.5)
	centre := mid.Add(left.MulScalar(c / 2 / math.Tan(theta/2)))

	r := p.Sub(centre).Length()
	a0 := math.Atan2(p.Y-centre.Y, p.X-centre.X)
	out := make([]v2.Vec, 0, arcFacets-1)
	for k := 1; k < arcFacets; k++ {
		a := a0 + theta*float64(k)/arcFacets
		out = append(out, v2.Vec{X: centre.X + r*math.Cos(a), Y: centre.Y + r*math.Sin(a)})
	}
	return out
}

// flatten converts a closed bulge polyline into a straight-sided loop.
func flatten(vs []Vertex) []v2.Vec {
	out := make([]v2.Vec, 0, len(vs))
	for i, v := range vs {
		p := v2.Vec{X: v.X, Y: v.Y}
		out = append(out, p)
		if v.Bulge == 0 {
			continue
		}
		next := vs[(i+1)%len(vs)]
		q := v2.Vec{X: next.X, Y: next.Y}
		if p.Sub(q).Length() < 1e-12 {
			continue
		}
		out = append(out, arcPoints(p, q, v.Bulge)...)
	}
	return out
}

// circle returns the vertices of a circle flattened to circleFacets sides.
func circle(diameter, x, y float64) []Vertex {
	r := diameter / 2
	vs := make([]Vertex, circleFacets)
	for i := range vs {
		a := 2 * math.Pi * float64(i) / circleFacets
		vs[i] = Vertex{X: x + r*math.Cos(a), Y: y + r*math.Sin(a)}
	}
	return vs
}
