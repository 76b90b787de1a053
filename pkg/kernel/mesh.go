package kernel

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // label of the part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// BoxMesh returns the 12-triangle mesh of an axis-aligned box.
func BoxMesh(min, max [3]float64) *Mesh {
	corner := func(i int) [3]float32 {
		c := [3]float32{float32(min[0]), float32(min[1]), float32(min[2])}
		if i&1 != 0 {
			c[0] = float32(max[0])
		}
		if i&2 != 0 {
			c[1] = float32(max[1])
		}
		if i&4 != 0 {
			c[2] = float32(max[2])
		}
		return c
	}
	// Each face lists its corners counter-clockwise seen from outside.
	faces := []struct {
		corners [4]int
		normal  [3]float32
	}{
		{[4]int{0, 2, 3, 1}, [3]float32{0, 0, -1}},
		{[4]int{4, 5, 7, 6}, [3]float32{0, 0, 1}},
		{[4]int{0, 1, 5, 4}, [3]float32{0, -1, 0}},
		{[4]int{2, 6, 7, 3}, [3]float32{0, 1, 0}},
		{[4]int{0, 4, 6, 2}, [3]float32{-1, 0, 0}},
		{[4]int{1, 3, 7, 5}, [3]float32{1, 0, 0}},
	}

	m := &Mesh{}
	for _, f := range faces {
		for _, tri := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
			for _, k := range tri {
				c := corner(f.corners[k])
				m.Vertices = append(m.Vertices, c[0], c[1], c[2])
				m.Normals = append(m.Normals, f.normal[0], f.normal[1], f.normal[2])
				m.Indices = append(m.Indices, uint32(len(m.Indices)))
			}
		}
	}
	return m
}
