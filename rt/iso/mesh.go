// Package iso implements the dual-contouring isosurface extractor: an
// octree-of-subgrids spatial subdivision over a CSG distance field,
// meshed leaf by leaf with a per-slice QEF solver.
//
// Grounded on _examples/original_source/iso.cpp and iso_dc.cpp (gradient
// estimation, the marching-cubes edge/corner tables, false-position root
// finding, the per-slice dual-contouring sweep and its QEF vertex solve).
package iso

import (
	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/mathx"
)

// Segment is the contiguous run of a Mesh's index/vertex buffers produced
// by one octree leaf, tagged with that leaf's dominant material so the
// renderer can bind one material per draw call.
type Segment struct {
	FirstIndex  int
	FirstVertex int
	IndexCount  int
	VertexCount int
	Material    csg.Material
}

// Mesh is three parallel arrays plus the material segmentation.
type Mesh struct {
	Pos      []mathx.Vec3f
	Nor      []mathx.Vec3f
	Index    []uint32
	Segments []Segment
}

// DistanceField samples a CSG tree (or any other signed distance source)
// at a single world-space point.
type DistanceField func(pos mathx.Vec3f) float32

// MaterialField samples the dominant material at a single world-space
// point, used only to tag faces for segmentation.
type MaterialField func(pos mathx.Vec3f) csg.Material

// Gradient estimates the surface normal at pos via a central difference,
// the same formula CSG uses, duplicated here so the mesher never needs a
// second pass through the CSG tree for vector work it can do locally.
func Gradient(d DistanceField, pos mathx.Vec3f, step float32) mathx.Vec3f {
	dx := mathx.Vec3f{X: step}
	dy := mathx.Vec3f{Y: step}
	dz := mathx.Vec3f{Z: step}
	n := mathx.Vec3f{
		X: d(pos.Add(dx)) - d(pos.Sub(dx)),
		Y: d(pos.Add(dy)) - d(pos.Sub(dy)),
		Z: d(pos.Add(dz)) - d(pos.Sub(dz)),
	}
	if n.X == 0 && n.Y == 0 && n.Z == 0 {
		return mathx.Vec3f{}
	}
	return n.Normalize()
}

// Grid describes a uniformly spaced sampling lattice anchored in world
// space: cellsize per axis, world-space origin, and cell-count dimensions.
type Grid struct {
	CellSize mathx.Vec3f
	Org      mathx.Vec3f
	Dim      [3]int
}

func (g Grid) Vertex(xyz [3]int) mathx.Vec3f {
	return mathx.Vec3f{
		X: g.Org.X + g.CellSize.X*float32(xyz[0]),
		Y: g.Org.Y + g.CellSize.Y*float32(xyz[1]),
		Z: g.Org.Z + g.CellSize.Z*float32(xyz[2]),
	}
}
