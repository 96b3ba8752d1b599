package trace

import (
	"math/rand"
	"testing"

	"github.com/bsegovia/miniq-rt/rt/bvh"
	"github.com/bsegovia/miniq-rt/rt/mathx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scatterPacket(n int, rng *rand.Rand) ([]mathx.Vec3f, []mathx.Vec3f) {
	org := make([]mathx.Vec3f, n)
	dir := make([]mathx.Vec3f, n)
	for i := range org {
		org[i] = mathx.Vec3f{X: float32(rng.Float64())*0.4 - 0.2, Y: float32(rng.Float64())*0.4 - 0.2}
		dir[i] = mathx.Vec3f{Z: 1}
	}
	return org, dir
}

func buildWallScene() *bvh.BVH {
	var prims []bvh.Primitive
	for i := 0; i < 20; i++ {
		prims = append(prims, quadXY(float32(5+i), uint32(i*2))...)
	}
	return bvh.Build(prims)
}

func TestClosest4And8MatchScalarForExactWidths(t *testing.T) {
	tree := buildWallScene()
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{4, 8, 16, 24} {
		org, dir := scatterPacket(n, rng)
		p := NewPacket(org, dir, 1e-4, 1e30)
		scalar := p.Closest(tree)
		w4 := p.Closest4(tree)
		w8 := p.Closest8(tree)
		for i := 0; i < n; i++ {
			assert.InDelta(t, scalar.T[i], w4.T[i], 1e-3, "width4 ray %d in packet size %d", i, n)
			assert.InDelta(t, scalar.T[i], w8.T[i], 1e-3, "width8 ray %d in packet size %d", i, n)
			assert.Equal(t, scalar.TriID[i], w4.TriID[i])
			assert.Equal(t, scalar.TriID[i], w8.TriID[i])
		}
	}
}

func TestOccluded4And8MatchScalar(t *testing.T) {
	tree := buildWallScene()
	rng := rand.New(rand.NewSource(9))
	org, dir := scatterPacket(16, rng)
	p := NewPacket(org, dir, 1e-4, 1e30)

	scalar := p.Occluded(tree)
	w4 := p.Occluded4(tree)
	w8 := p.Occluded8(tree)
	for i := range scalar.Occluded {
		assert.Equal(t, scalar.Occluded[i], w4.Occluded[i], "width4 ray %d", i)
		assert.Equal(t, scalar.Occluded[i], w8.Occluded[i], "width8 ray %d", i)
	}
}

func TestSelectKernelPicksWidestDivisor(t *testing.T) {
	assert.Equal(t, 8, SelectKernel(16).Width)
	assert.Equal(t, 4, SelectKernel(12).Width)
	assert.Equal(t, 1, SelectKernel(17).Width)
	assert.Equal(t, 1, SelectKernel(0).Width)
}

func TestSelectedKernelAgreesWithScalar(t *testing.T) {
	tree := buildWallScene()
	rng := rand.New(rand.NewSource(11))
	org, dir := scatterPacket(16, rng)
	p := NewPacket(org, dir, 1e-4, 1e30)

	k := SelectKernel(p.RayNum)
	require.Equal(t, 8, k.Width)
	got := k.Closest(p, tree)
	want := p.Closest(tree)
	for i := range want.T {
		assert.InDelta(t, want.T[i], got.T[i], 1e-3)
	}
}
