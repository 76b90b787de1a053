package assembly

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// box extrudes a w×d rectangle at (x, y, z) upward by h.
func box(t *testing.T, k kernel.Kernel, x, y, z, w, d, h float64) kernel.Solid {
	t.Helper()
	sec := kernel.NewSection([]v2.Vec{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: d}, {X: 0, Y: d}})
	sec.Placement = sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	s, err := k.Extrude(sec, kernel.ExtrudeSpec{Height: h})
	require.NoError(t, err)
	return s
}

func labels(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestResolveContained(t *testing.T) {
	k := memory.New()
	items := []Item{
		{Label: "outer", Solid: box(t, k, 0, 0, 0, 100, 100, 100)},
		{Label: "inner", Solid: box(t, k, 10, 10, 10, 50, 50, 50)},
	}
	out, err := Resolve(k, items, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []string{"outer"}, labels(out))
	assert.Equal(t, 1, out[0].Solid.(*memory.Solid).Cuts())
}

func TestResolveContainedLaterHost(t *testing.T) {
	k := memory.New()
	items := []Item{
		{Label: "inner", Solid: box(t, k, 10, 10, 10, 50, 50, 50)},
		{Label: "outer", Solid: box(t, k, 0, 0, 0, 100, 100, 100)},
	}
	out, err := Resolve(k, items, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"outer"}, labels(out))
}

func TestResolveDisjoint(t *testing.T) {
	k := memory.New()
	a := box(t, k, 0, 0, 0, 10, 10, 10)
	b := box(t, k, 20, 0, 0, 10, 10, 10)
	out, err := Resolve(k, []Item{{Label: "a", Solid: a}, {Label: "b", Solid: b}}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, labels(out))
	assert.Same(t, a, out[0].Solid)
	assert.Same(t, b, out[1].Solid)
}

func TestResolveOverlappingNotContained(t *testing.T) {
	k := memory.New()
	items := []Item{
		{Label: "a", Solid: box(t, k, 0, 0, 0, 10, 10, 10)},
		{Label: "b", Solid: box(t, k, 5, 5, 5, 10, 10, 10)},
	}
	out, err := Resolve(k, items, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestResolveTruncation(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want int
	}{
		// 100.7 truncates to 100, inside a host ending at 100.
		{"fraction past the edge", 50.7, 1},
		// 101.2 truncates to 101.
		{"whole unit past the edge", 51.2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := memory.New()
			items := []Item{
				{Label: "host", Solid: box(t, k, 0, 0, 0, 100, 100, 100)},
				{Label: "cand", Solid: box(t, k, tt.x, 10, 10, 50, 50, 50)},
			}
			out, err := Resolve(k, items, zerolog.Nop())
			require.NoError(t, err)
			assert.Len(t, out, tt.want)
		})
	}
}

func TestResolveNegativeTruncation(t *testing.T) {
	k := memory.New()
	// Host min z of -178.75 truncates to -178; a vertex at -178.5 also
	// truncates to -178 and stays inside.
	items := []Item{
		{Label: "host", Solid: box(t, k, 0, 0, -178.75, 100, 100, 178.75)},
		{Label: "cand", Solid: box(t, k, 10, 10, -178.5, 50, 50, 100)},
	}
	out, err := Resolve(k, items, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestResolveIdenticalBoxes(t *testing.T) {
	k := memory.New()
	items := []Item{
		{Label: "a", Solid: box(t, k, 0, 0, 0, 10, 10, 10)},
		{Label: "b", Solid: box(t, k, 0, 0, 0, 10, 10, 10)},
	}
	out, err := Resolve(k, items, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, labels(out))
}

func TestResolveDropsUnusedCutOut(t *testing.T) {
	k := memory.New()
	items := []Item{
		{Label: "part", Solid: box(t, k, 0, 0, 0, 10, 10, 10)},
		{Label: "cut", Solid: box(t, k, 50, 0, 0, 10, 10, 10), CutOut: true},
	}
	out, err := Resolve(k, items, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"part"}, labels(out))
}

func TestResolveKeepsOrder(t *testing.T) {
	k := memory.New()
	items := []Item{
		{Label: "a", Solid: box(t, k, 0, 0, 0, 10, 10, 10)},
		{Label: "host", Solid: box(t, k, 100, 0, 0, 100, 100, 100)},
		{Label: "c", Solid: box(t, k, 300, 0, 0, 10, 10, 10)},
		{Label: "cavity", Solid: box(t, k, 110, 10, 10, 20, 20, 20), CutOut: true},
		{Label: "e", Solid: box(t, k, 500, 0, 0, 10, 10, 10)},
	}
	out, err := Resolve(k, items, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "host", "c", "e"}, labels(out))
}

func TestBoxContainsEmpty(t *testing.T) {
	var empty memory.Solid
	assert.False(t, Box{Max: [3]int64{10, 10, 10}}.Contains(&empty))
}
