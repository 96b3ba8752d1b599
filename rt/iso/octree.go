package iso

import (
	"context"

	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/mathx"
	"golang.org/x/sync/errgroup"
)

// icubevOffset reuses the marching-cubes corner ordering as the octree's
// canonical child ordering, the `icubev` table referenced by the spec's
// phase-1 subdivision rule.
var icubevOffset = icubev

// leafJob is a surviving SubGrid-sized octree leaf, queued by phase 1 for
// phase 2's independent per-leaf meshing.
type leafJob struct {
	org       mathx.Vec3f
	cellCount int
}

// Extract tessellates a CSG tree over a 2^levels x 2^levels x 2^levels
// world-space grid using the two-phase dual-contouring pipeline (spec
// §4.3): phase 1 recursively subdivides an octree of cells, culling
// subtrees whose CSG distance at the cell center exceeds a conservative
// bound; phase 2 meshes each surviving SubGrid-sized leaf independently
// with the per-slice sweep in dualcontour.go, fanned out across an
// errgroup since csg.Dist and each leafMesher touch no shared state.
//
// Every sample goes through csg.Dist's normalDist band set to one cell's
// size: spec §4.2's UNION normal-quality mode exists precisely so the
// extractor's crossing/gradient sampling (dualcontour.go's falsePosition
// and qefVertex) prefers the surface actually closest to a crossing over
// whichever operand happens to win the tie-break, the normal-quality use
// the spec names this mode for.
func Extract(scene *csg.Node, org mathx.Vec3f, levels int, cellSize float32) *Mesh {
	normalDist := cellSize
	df := func(p mathx.Vec3f) float32 {
		d, _ := csg.Dist(scene, p, mathx.AllAABB(), normalDist)
		return d
	}
	mf := func(p mathx.Vec3f) csg.Material {
		_, m := csg.Dist(scene, p, mathx.AllAABB(), normalDist)
		return m
	}

	cellCount := 1 << uint(levels)
	var jobs []leafJob
	collectLeaves(df, org, cellCount, cellSize, &jobs)
	return meshLeavesParallel(df, mf, jobs, cellSize)
}

// collectLeaves walks the octree rooted at a cellCount^3 cube anchored at
// org. A node is pruned once the CSG distance at its center exceeds its
// half-diagonal world-space extent (no surface can reach inside it); a
// node at or below SubGrid cells is queued as a leaf job instead of being
// meshed inline, so phase 2 can run every leaf concurrently.
func collectLeaves(df DistanceField, org mathx.Vec3f, cellCount int, cellSize float32, jobs *[]leafJob) {
	extent := float32(cellCount) * cellSize
	center := org.Add(mathx.Vec3f{X: extent / 2, Y: extent / 2, Z: extent / 2})
	halfDiag := extent * 0.8660254 // sqrt(3)/2

	if df(center) > halfDiag {
		return
	}
	if cellCount <= SubGrid {
		*jobs = append(*jobs, leafJob{org: org, cellCount: cellCount})
		return
	}
	half := cellCount / 2
	childExtent := float32(half) * cellSize
	for _, off := range icubevOffset {
		childOrg := mathx.Vec3f{
			X: org.X + float32(off[0])*childExtent,
			Y: org.Y + float32(off[1])*childExtent,
			Z: org.Z + float32(off[2])*childExtent,
		}
		collectLeaves(df, childOrg, half, cellSize, jobs)
	}
}

// meshLeavesParallel runs leafMesher.build for every queued job concurrently
// via errgroup, then merges the per-leaf vertex/index buffers into one Mesh
// in job order so output is deterministic regardless of goroutine schedule.
func meshLeavesParallel(df DistanceField, mf MaterialField, jobs []leafJob, cellSize float32) *Mesh {
	meshers := make([]*leafMesher, len(jobs))
	g, _ := errgroup.WithContext(context.Background())
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			gr := Grid{
				CellSize: mathx.Vec3f{X: cellSize, Y: cellSize, Z: cellSize},
				Org:      job.org,
				Dim:      [3]int{job.cellCount, job.cellCount, job.cellCount},
			}
			s := newLeafMesher(df, mf, gr)
			s.build()
			meshers[i] = s
			return nil
		})
	}
	_ = g.Wait() // every goroutine above is infallible; error is always nil

	mesh := &Mesh{}
	for _, s := range meshers {
		appendLeaf(mesh, s)
	}
	return mesh
}

func appendLeaf(mesh *Mesh, s *leafMesher) {
	if len(s.idx) == 0 {
		return
	}
	firstVertex := len(mesh.Pos)
	firstIndex := len(mesh.Index)
	base := uint32(firstVertex)
	for _, v := range s.idx {
		mesh.Index = append(mesh.Index, v+base)
	}
	mesh.Pos = append(mesh.Pos, s.pos...)
	mesh.Nor = append(mesh.Nor, s.nor...)

	mesh.Segments = append(mesh.Segments, Segment{
		FirstIndex:  firstIndex,
		FirstVertex: firstVertex,
		IndexCount:  len(s.idx),
		VertexCount: len(s.pos),
		Material:    dominantMaterial(s.mtl),
	})
}

// dominantMaterial picks the most frequent non-AIR material sampled across
// a leaf's vertices, the segment's representative material id.
func dominantMaterial(mats []csg.Material) csg.Material {
	counts := map[csg.Material]int{}
	best, bestCount := csg.AIR, 0
	for _, m := range mats {
		if m == csg.AIR {
			continue
		}
		counts[m]++
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best
}
