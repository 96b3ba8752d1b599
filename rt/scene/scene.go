// Scene ties a CSG tree, its extracted mesh, the built BVH, a camera, a
// material table and a light together into the renderable unit the CLI
// driver in cmd/miniqrt operates on. Grounded in the same spirit as
// _examples/Gekko3D-gekko/voxelrt/rt/core/scene.go's VoxelObject, which
// bundles a transform, geometry and material table as one renderable
// object, generalized from a single voxel brickmap to the CSG/mesh/BVH
// pipeline built in rt/csg, rt/iso and rt/bvh.
package scene

import (
	"github.com/bsegovia/miniq-rt/rt/bvh"
	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/iso"
	"github.com/bsegovia/miniq-rt/rt/mathx"
)

type Scene struct {
	Root   *csg.Node
	Mesh   *iso.Mesh
	BVH    *bvh.BVH
	Camera *Camera
	Light  Light
	Mats   MaterialTable
}

// NewScene extracts an isosurface mesh from root, builds a BVH over its
// triangles and wires up defaults for camera, light and material table.
func NewScene(root *csg.Node, org mathx.Vec3f, levels int, cellSize float32) *Scene {
	mesh := iso.Extract(root, org, levels, cellSize)
	tree := BuildBVH(mesh)
	return &Scene{
		Root:   root,
		Mesh:   mesh,
		BVH:    tree,
		Camera: NewCamera(),
		Light:  DefaultLight(),
		Mats:   DefaultMaterialTable(),
	}
}

// BuildBVH converts a mesh's indexed triangle list into Wald-preprocessed
// bvh.Primitives, one per triangle, tagged with the owning segment's
// material id, then hands them to bvh.Build.
func BuildBVH(mesh *iso.Mesh) *bvh.BVH {
	var prims []bvh.Primitive
	for _, seg := range mesh.Segments {
		triCount := seg.IndexCount / 3
		for i := 0; i < triCount; i++ {
			i0 := mesh.Index[seg.FirstIndex+i*3+0]
			i1 := mesh.Index[seg.FirstIndex+i*3+1]
			i2 := mesh.Index[seg.FirstIndex+i*3+2]
			a, b, c := mesh.Pos[i0], mesh.Pos[i1], mesh.Pos[i2]
			triID := uint32(seg.FirstIndex/3 + i)
			tri := bvh.BuildWaldTriangle(a, b, c, triID, uint32(seg.Material))
			box := mathx.EmptyAABB()
			box = box.Sum(mathx.AABB{
				PMin: mathx.MinVec3(mathx.MinVec3(a, b), c),
				PMax: mathx.MaxVec3(mathx.MaxVec3(a, b), c),
			})
			prims = append(prims, bvh.Primitive{Box: box, Triangle: &tri})
		}
	}
	return bvh.Build(prims)
}
