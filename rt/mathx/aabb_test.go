package mathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func box(pmin, pmax Vec3f) AABB { return AABB{PMin: pmin, PMax: pmax} }

// Spec §8 property 2: Sum is associative, commutative, idempotent.
func TestAABBSumAlgebra(t *testing.T) {
	a := box(Vec3f{X: -1, Y: -1, Z: -1}, Vec3f{X: 1, Y: 1, Z: 1})
	b := box(Vec3f{X: 0, Y: 0, Z: 0}, Vec3f{X: 3, Y: 2, Z: 1})
	c := box(Vec3f{X: -5, Y: 0, Z: 2}, Vec3f{X: -2, Y: 4, Z: 6})

	assert.Equal(t, a.Sum(b), b.Sum(a), "commutative")
	assert.Equal(t, a.Sum(a), a, "idempotent")
	assert.Equal(t, a.Sum(b).Sum(c), a.Sum(b.Sum(c)), "associative")
}

// Spec §8 property 2: intersect(A,B) iff intersection(A,B) non-empty iff the
// per-axis overlap condition holds.
func TestAABBIntersectsMatchesIntersectionEmptiness(t *testing.T) {
	cases := []struct {
		name string
		a, b AABB
		want bool
	}{
		{"overlapping", box(Vec3f{X: 0, Y: 0, Z: 0}, Vec3f{X: 2, Y: 2, Z: 2}), box(Vec3f{X: 1, Y: 1, Z: 1}, Vec3f{X: 3, Y: 3, Z: 3}), true},
		{"touching-face", box(Vec3f{X: 0, Y: 0, Z: 0}, Vec3f{X: 1, Y: 1, Z: 1}), box(Vec3f{X: 1, Y: 0, Z: 0}, Vec3f{X: 2, Y: 1, Z: 1}), true},
		{"disjoint-x", box(Vec3f{X: 0, Y: 0, Z: 0}, Vec3f{X: 1, Y: 1, Z: 1}), box(Vec3f{X: 2, Y: 0, Z: 0}, Vec3f{X: 3, Y: 1, Z: 1}), false},
		{"disjoint-y", box(Vec3f{X: 0, Y: 5, Z: 0}, Vec3f{X: 1, Y: 6, Z: 1}), box(Vec3f{X: 0, Y: 0, Z: 0}, Vec3f{X: 1, Y: 1, Z: 1}), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.a.Intersects(c.b))
			assert.Equal(t, c.want, !c.a.Intersection(c.b).Empty())

			manual := c.a.PMin.X <= c.b.PMax.X && c.b.PMin.X <= c.a.PMax.X &&
				c.a.PMin.Y <= c.b.PMax.Y && c.b.PMin.Y <= c.a.PMax.Y &&
				c.a.PMin.Z <= c.b.PMax.Z && c.b.PMin.Z <= c.a.PMax.Z
			assert.Equal(t, c.want, manual)
		})
	}
}

func TestAABBEmptyIsSumIdentity(t *testing.T) {
	e := EmptyAABB()
	real := box(Vec3f{X: -1, Y: -1, Z: -1}, Vec3f{X: 1, Y: 1, Z: 1})
	assert.True(t, e.Empty())
	assert.Equal(t, real, e.Sum(real))
}

// Spec §8 property 3: slab returns hit with tnear equal to the analytic
// entry distance for a ray outside the box pointed at it.
func TestSlabMatchesAnalyticEntryDistance(t *testing.T) {
	b := box(Vec3f{X: -1, Y: -1, Z: -1}, Vec3f{X: 1, Y: 1, Z: 1})

	org := Vec3f{X: -5, Y: 0, Z: 0}
	dir := Vec3f{X: 1, Y: 0, Z: 0}
	// y/z are parallel to the ray and org's y/z already fall inside the
	// slab, so a huge reciprocal (standing in for 1/0) leaves those axes
	// non-restricting, matching the x axis's real 4.0 entry distance.
	rdir := Vec3f{X: 1 / dir.X, Y: 1e30, Z: 1e30}
	hit, tnear := Slab(b, org, rdir, 1e30)
	assert.True(t, hit)
	assert.InDelta(t, 4.0, tnear, 1e-4)

	// Ray pointing away from the box must miss.
	missDir := Vec3f{X: -1, Y: 0, Z: 0}
	missRdir := Vec3f{X: 1 / missDir.X, Y: 1e30, Z: 1e30}
	hit, _ = Slab(b, org, missRdir, 1e30)
	assert.False(t, hit)

	// tmax smaller than the entry distance rejects the hit.
	hit, _ = Slab(b, org, rdir, 2.0)
	assert.False(t, hit)
}

func TestSlabTnearClampedNonNegativeFromInside(t *testing.T) {
	b := box(Vec3f{X: -1, Y: -1, Z: -1}, Vec3f{X: 1, Y: 1, Z: 1})
	org := Vec3f{}
	dir := Vec3f{X: 0, Y: 0, Z: 1}
	rdir := Vec3f{X: 1e30, Y: 1e30, Z: 1 / dir.Z}
	hit, tnear := Slab(b, org, rdir, 1e30)
	assert.True(t, hit)
	assert.Equal(t, float32(0), tnear)
}
