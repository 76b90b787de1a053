// Package tessellate turns a committed desk assembly into triangle meshes
// using a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"fmt"

	"github.com/ice-rage/DeskPlugin-sub000/pkg/document"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
)

// Tessellate produces one triangle mesh per part of asm, in part order,
// named by the part label. Parts read back from storage carry no solid and
// are meshed as their bounding boxes. The assembly is never mutated.
func Tessellate(asm *document.Assembly, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if asm == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, 0, len(asm.Parts))
	for _, p := range asm.Parts {
		mesh, err := partMesh(k, p)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for part %s: %w", p.Label, err)
		}
		mesh.PartName = p.Label
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func partMesh(k kernel.Kernel, p document.Part) (*kernel.Mesh, error) {
	if p.Solid == nil {
		return kernel.BoxMesh(p.Min, p.Max), nil
	}
	return k.ToMesh(p.Solid)
}
