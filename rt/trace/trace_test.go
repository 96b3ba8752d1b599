package trace

import (
	"math/rand"
	"testing"

	"github.com/bsegovia/miniq-rt/rt/bvh"
	"github.com/bsegovia/miniq-rt/rt/mathx"
)

func triPrim(a, b, c mathx.Vec3f, id uint32) bvh.Primitive {
	tri := bvh.BuildWaldTriangle(a, b, c, id, 0)
	box := mathx.EmptyAABB()
	box = box.Sum(mathx.AABB{PMin: mathx.MinVec3(mathx.MinVec3(a, b), c), PMax: mathx.MaxVec3(mathx.MaxVec3(a, b), c)})
	return bvh.Primitive{Box: box, Triangle: &tri}
}

func quadXY(z float32, id uint32) []bvh.Primitive {
	a := mathx.Vec3f{X: -1, Y: -1, Z: z}
	b := mathx.Vec3f{X: 1, Y: -1, Z: z}
	c := mathx.Vec3f{X: 1, Y: 1, Z: z}
	d := mathx.Vec3f{X: -1, Y: 1, Z: z}
	return []bvh.Primitive{triPrim(a, b, c, id), triPrim(a, c, d, id + 1)}
}

func TestClosestHitsWall(t *testing.T) {
	prims := quadXY(5, 0)
	tree := bvh.Build(prims)
	hit, ok := Closest(tree, Ray{Org: mathx.Vec3f{}, Dir: mathx.Vec3f{Z: 1}, Tmin: 1e-4, Tmax: 1e30})
	if !ok {
		t.Fatal("expected a hit against the wall quad")
	}
	if hit.T < 4.9 || hit.T > 5.1 {
		t.Errorf("expected t~5, got %f", hit.T)
	}
}

func TestClosestMissesEmptyScene(t *testing.T) {
	tree := bvh.Build(nil)
	_, ok := Closest(tree, Ray{Org: mathx.Vec3f{}, Dir: mathx.Vec3f{Z: 1}, Tmin: 0, Tmax: 1e30})
	if ok {
		t.Fatal("expected no hit in an empty scene")
	}
}

func TestOccludedAgreesWithClosest(t *testing.T) {
	tree := bvh.Build(quadXY(5, 0))
	ray := Ray{Org: mathx.Vec3f{}, Dir: mathx.Vec3f{Z: 1}, Tmin: 1e-4, Tmax: 1e30}
	_, hit := Closest(tree, ray)
	occ := Occluded(tree, ray)
	if hit != occ {
		t.Errorf("closest found a hit=%v but occluded reported %v", hit, occ)
	}
}

func TestPacketClosestMatchesScalar(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var prims []bvh.Primitive
	for i := 0; i < 20; i++ {
		z := float32(5 + i)
		prims = append(prims, quadXY(z, uint32(i*2))...)
	}
	tree := bvh.Build(prims)

	n := 16
	org := make([]mathx.Vec3f, n)
	dir := make([]mathx.Vec3f, n)
	for i := range org {
		org[i] = mathx.Vec3f{X: float32(rng.Float64())*0.1 - 0.05, Y: float32(rng.Float64())*0.1 - 0.05}
		dir[i] = mathx.Vec3f{Z: 1}
	}
	p := NewPacket(org, dir, 1e-4, 1e30)
	ph := p.Closest(tree)

	for i := 0; i < n; i++ {
		want, ok := Closest(tree, Ray{Org: org[i], Dir: dir[i], Tmin: 1e-4, Tmax: 1e30})
		if !ok {
			t.Fatalf("ray %d: scalar closest found no hit", i)
		}
		if absDiff(ph.T[i], want.T) > 1e-3 {
			t.Errorf("ray %d: packet t=%f scalar t=%f", i, ph.T[i], want.T)
		}
	}
}

func absDiff(a, b float32) float32 {
	if a < b {
		return b - a
	}
	return a - b
}
