package iso

import (
	"testing"

	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/mathx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSphereProducesTriangles(t *testing.T) {
	scene := csg.NewSphere(2, csg.MatSimple)
	mesh := Extract(scene, mathx.Vec3f{X: -3, Y: -3, Z: -3}, 1, 0.75)
	require.NotEmpty(t, mesh.Pos)
	require.NotEmpty(t, mesh.Index)
	assert.Equal(t, 0, len(mesh.Index)%3)
	for _, idx := range mesh.Index {
		assert.Less(t, int(idx), len(mesh.Pos))
	}
}

func TestExtractEmptyFieldProducesNoGeometry(t *testing.T) {
	// A sphere far outside the sampled volume: every leaf should be culled
	// by the conservative distance bound before any meshing runs.
	scene := csg.NewTranslation(mathx.Vec3f{X: 1000}, csg.NewSphere(2, csg.MatSimple))
	mesh := Extract(scene, mathx.Vec3f{X: -3, Y: -3, Z: -3}, 1, 0.75)
	assert.Empty(t, mesh.Pos)
	assert.Empty(t, mesh.Index)
}

func TestSegmentsCoverAllIndices(t *testing.T) {
	scene := csg.NewSphere(3, csg.MatSimple)
	mesh := Extract(scene, mathx.Vec3f{X: -4, Y: -4, Z: -4}, 1, 0.5)
	total := 0
	for _, seg := range mesh.Segments {
		total += seg.IndexCount
	}
	assert.Equal(t, len(mesh.Index), total)
}

func TestFalsePositionConverges(t *testing.T) {
	df := func(p mathx.Vec3f) float32 { return p.X - 0.5 }
	g := Grid{CellSize: mathx.Vec3f{X: 1, Y: 1, Z: 1}}
	p := falsePosition(df, g, mathx.Vec3f{}, mathx.Vec3f{}, mathx.Vec3f{X: 1}, -0.5, 0.5)
	assert.InDelta(t, 0.5, p.X, 0.05)
}

func TestExtractBoxProducesSharpCreasedNormals(t *testing.T) {
	// A box's faces meet at 90 degrees (dot == 0 < SharpEdge), so every
	// corner vertex should get split into per-face groups with the
	// brightened (absolute-valued) axis-aligned normal of its own face,
	// not an averaged corner normal.
	scene := csg.NewBox(mathx.Vec3f{X: 2, Y: 2, Z: 2}, csg.MatSimple)
	mesh := Extract(scene, mathx.Vec3f{X: -3, Y: -3, Z: -3}, 1, 0.5)
	require.NotEmpty(t, mesh.Pos)
	for _, n := range mesh.Nor {
		// Every recomputed normal should be axis-aligned and already
		// absolute-valued (two near-zero components, one near-one).
		maxc := n.X
		if n.Y > maxc {
			maxc = n.Y
		}
		if n.Z > maxc {
			maxc = n.Z
		}
		assert.GreaterOrEqual(t, n.X, float32(0))
		assert.GreaterOrEqual(t, n.Y, float32(0))
		assert.GreaterOrEqual(t, n.Z, float32(0))
		assert.InDelta(t, 1, maxc, 0.25)
	}
}

func TestCreaseSharpEdgesSplitsBoxCorner(t *testing.T) {
	// A unit cube: two faces meeting at a corner disagree by 90 degrees,
	// well past SharpEdge, so the shared vertex must be duplicated.
	pos := []mathx.Vec3f{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	idx := []uint32{
		0, 1, 2, 0, 2, 3, // bottom face in the z=0 plane, normal +Z
		0, 1, 4, // a face in the y=0 plane sharing edge (0,1), normal -Y
	}
	s := &leafMesher{
		pos: append([]mathx.Vec3f(nil), pos...),
		nor: make([]mathx.Vec3f, len(pos)),
		mtl: make([]csg.Material, len(pos)),
		idx: append([]uint32(nil), idx...),
	}
	before := len(s.pos)
	s.creaseSharpEdges()
	assert.Greater(t, len(s.pos), before, "expected at least one vertex duplicated across the sharp corner")
}
