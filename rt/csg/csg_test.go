package csg

import (
	"math"
	"testing"

	"github.com/bsegovia/miniq-rt/rt/mathx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approx(t *testing.T, want, got float32) {
	t.Helper()
	assert.InDelta(t, want, got, 1e-3)
}

func TestSphereDist(t *testing.T) {
	s := NewSphere(1, MatSimple)
	d, m := Dist(s, mathx.Vec3f{X: 2}, mathx.AllAABB(), 0)
	approx(t, 1, d)
	assert.Equal(t, AIR, m)

	d, m = Dist(s, mathx.Vec3f{}, mathx.AllAABB(), 0)
	approx(t, -1, d)
	assert.Equal(t, MatSimple, m)
}

func TestDifferenceBoxSphere(t *testing.T) {
	// S3: DIFFERENCE(box(2), sphere(1)); point p=(0,0,0) -> dist = +1.0, AIR
	b := NewBox(mathx.Vec3f{X: 2, Y: 2, Z: 2}, MatSimple)
	s := NewSphere(1, MatSimple)
	d := NewDifference(b, s)
	dist, mat := Dist(d, mathx.Vec3f{}, mathx.AllAABB(), 0)
	approx(t, 1, dist)
	assert.Equal(t, AIR, mat)
}

func TestUnionTieBreakRightWins(t *testing.T) {
	// Two coincident spheres of equal radius centered at the same point:
	// at the center both report the same negative distance, right must win.
	a := NewSphere(1, MatSimple)
	b := NewSphere(1, MatNoise)
	u := NewUnion(a, b)
	_, mat := Dist(u, mathx.Vec3f{}, mathx.AllAABB(), 0)
	assert.Equal(t, MatNoise, mat)
}

func TestUnionNormalDistPrefersNearbyRightSurface(t *testing.T) {
	// left is a big sphere (radius 20) the query point sits well inside
	// (dist ~ -1.9); right is a small sphere (radius 3, centered at x=15)
	// whose surface the same point sits just outside (dist ~ +0.1).
	// Plain min/tie-break picks left (its distance is the more negative of
	// the two), but with normalDist covering the +0.1 band, the union must
	// report right's distance/material outright for normal-quality near
	// that join, reversing the plain-min choice.
	left := NewSphere(20, MatSimple)
	right := NewTranslation(mathx.Vec3f{X: 15}, NewSphere(3, MatNoise))
	u := NewUnion(left, right)
	p := mathx.Vec3f{X: 18.1}

	dLeft, _ := Dist(left, p, mathx.AllAABB(), 0)
	dRight, wantM := Dist(right, p, mathx.AllAABB(), 0)
	require.Less(t, dLeft, dRight, "left must be the plain-min winner")

	dPlain, mPlain := Dist(u, p, mathx.AllAABB(), 0)
	approx(t, dLeft, dPlain)
	assert.Equal(t, MatSimple, mPlain)

	dBanded, mBanded := Dist(u, p, mathx.AllAABB(), 0.2)
	approx(t, dRight, dBanded)
	assert.Equal(t, wantM, mBanded)
}

func TestTranslationShiftsQueryAndPoint(t *testing.T) {
	s := NewSphere(1, MatSimple)
	tr := NewTranslation(mathx.Vec3f{X: 5}, s)
	d, m := Dist(tr, mathx.Vec3f{X: 5}, mathx.AllAABB(), 0)
	approx(t, -1, d)
	assert.Equal(t, MatSimple, m)
}

func TestRotationBoxIsAll(t *testing.T) {
	s := NewSphere(1, MatSimple)
	q := mathx.Quat{W: 1}
	r := NewRotation(q, s)
	assert.True(t, math.IsInf(float64(r.Box.PMax.X), 1))
}

func TestBoxPruningSkipsFarSubtree(t *testing.T) {
	near := NewSphere(1, MatSimple)
	far := NewTranslation(mathx.Vec3f{X: 1000}, NewSphere(1, MatNoise))
	u := NewUnion(near, far)
	tight := mathx.AABB{PMin: mathx.Vec3f{X: -2, Y: -2, Z: -2}, PMax: mathx.Vec3f{X: 2, Y: 2, Z: 2}}
	d, m := Dist(u, mathx.Vec3f{}, tight, 0)
	approx(t, -1, d)
	assert.Equal(t, MatSimple, m)
}

func TestDistBatchMatchesScalar(t *testing.T) {
	scene := ExampleScene()
	points := []mathx.Vec3f{
		{X: 0, Y: 0, Z: 0},
		{X: 7, Y: 5, Z: 7},
		{X: 2, Y: 2, Z: 2},
		{X: 100, Y: 100, Z: 100},
	}
	outD := make([]float32, len(points))
	outM := make([]Material, len(points))
	normalDist := make([]float32, len(points))
	for i := range normalDist {
		normalDist[i] = 0.1
	}
	DistBatch(scene, points, outD, outM, mathx.AllAABB(), normalDist)
	for i, p := range points {
		wantD, wantM := Dist(scene, p, mathx.AllAABB(), 0.1)
		approx(t, wantD, outD[i])
		assert.Equal(t, wantM, outM[i])
	}
}

func TestCappedCylinderBox(t *testing.T) {
	c := CappedCylinder(mathx.Vec2f{X: 2, Y: 2}, 1, 1, 4, MatSimple)
	require.Equal(t, float32(1), c.Box.PMin.X)
	require.Equal(t, float32(3), c.Box.PMax.X)
	require.Equal(t, float32(1), c.Box.PMin.Y)
	require.Equal(t, float32(4), c.Box.PMax.Y)
}

func TestGradientPointsOutwardOnSphere(t *testing.T) {
	s := NewSphere(2, MatSimple)
	g := Gradient(s, mathx.Vec3f{X: 2})
	approx(t, 1, g.X)
	approx(t, 0, g.Y)
	approx(t, 0, g.Z)
}

func TestExampleSceneBuilds(t *testing.T) {
	scene := ExampleScene()
	require.NotNil(t, scene)
	d, _ := Dist(scene, mathx.Vec3f{X: 7, Y: 6, Z: 7}, mathx.AllAABB(), 0)
	assert.Less(t, d, float32(1e30))
}
