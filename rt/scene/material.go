// Material is adapted from
// _examples/Gekko3D-gekko/voxelrt/rt/core/material.go, trimmed to what the
// shading model in SPEC_FULL.md §7 actually consumes (n.l Lambertian with
// a base color; no PBR roughness/metalness/IOR terms since this renderer
// has no microfacet shading stage).
package scene

import "github.com/bsegovia/miniq-rt/rt/csg"

// Material is indexed by csg.Material id.
type Material struct {
	BaseColor [3]uint8
}

// MaterialTable maps csg.Material ids to shading colors.
type MaterialTable []Material

// DefaultMaterialTable covers the csg.AIR/MatSimple/MatNoise ids the CSG
// evaluator and the isosurface mesher can emit.
func DefaultMaterialTable() MaterialTable {
	tbl := make(MaterialTable, 3)
	tbl[csg.AIR] = Material{BaseColor: [3]uint8{0, 0, 0}}
	tbl[csg.MatSimple] = Material{BaseColor: [3]uint8{200, 190, 180}}
	tbl[csg.MatNoise] = Material{BaseColor: [3]uint8{150, 160, 150}}
	return tbl
}

func (tbl MaterialTable) At(id csg.Material) Material {
	if int(id) < 0 || int(id) >= len(tbl) {
		return Material{BaseColor: [3]uint8{255, 0, 255}} // invariant violation marker
	}
	return tbl[id]
}
