package mathx

import "math"

// AABB is an axis-aligned bounding box, (pmin, pmax) in mini.q's own
// naming. EmptyAABB() yields (+inf,-inf) so that Sum() with any real box
// returns that box unchanged.
type AABB struct {
	PMin, PMax Vec3f
}

func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{Vec3f{inf, inf, inf}, Vec3f{-inf, -inf, -inf}}
}

// AllAABB spans the entire space; used to invalidate box-culling for a
// subtree whose AABB is unreliable (e.g. under an un-recomputed rotation).
func AllAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{Vec3f{-inf, -inf, -inf}, Vec3f{inf, inf, inf}}
}

func NewAABB(pmin, pmax Vec3f) AABB { return AABB{pmin, pmax} }

// FromExtent builds the symmetric box [-e,+e], the shape every CSG leaf
// primitive computes for itself.
func FromExtent(e Vec3f) AABB { return AABB{e.Neg(), e} }

func (a AABB) Sum(b AABB) AABB {
	return AABB{MinVec3(a.PMin, b.PMin), MaxVec3(a.PMax, b.PMax)}
}

func (a AABB) Intersection(b AABB) AABB {
	return AABB{MaxVec3(a.PMin, b.PMin), MinVec3(a.PMax, b.PMax)}
}

// Intersects reports whether a and b share any volume, i.e. the
// intersection box is non-empty on every axis.
func (a AABB) Intersects(b AABB) bool {
	return a.PMin.X <= b.PMax.X && b.PMin.X <= a.PMax.X &&
		a.PMin.Y <= b.PMax.Y && b.PMin.Y <= a.PMax.Y &&
		a.PMin.Z <= b.PMax.Z && b.PMin.Z <= a.PMax.Z
}

// Empty reports whether any axis has pmin > pmax.
func (a AABB) Empty() bool {
	return AnyGreater(a.PMin, a.PMax)
}

func (a AABB) Extent() Vec3f { return a.PMax.Sub(a.PMin) }
func (a AABB) Center() Vec3f { return a.PMin.Add(a.PMax).Mul(0.5) }

// HalfArea is half the surface area of the box: sum of the three face
// areas (x*y + y*z + z*x). The SAH cost only ever compares ratios of this
// quantity, so the factor of two is dropped everywhere consistently.
func (a AABB) HalfArea() float32 {
	e := a.Extent()
	if a.Empty() {
		return 0
	}
	return e.X*e.Y + e.Y*e.Z + e.Z*e.X
}

// Translate shifts both corners, used by the TRANSLATION CSG node to push
// its bounding box down the tree.
func (a AABB) Translate(p Vec3f) AABB {
	return AABB{a.PMin.Add(p), a.PMax.Add(p)}
}

// Grow inflates the box by eps on both sides, applied once after a BVH
// build to avoid rejecting grazing rays (spec §4.1 failure mode).
func (a AABB) Grow(eps float32) AABB {
	e := Vec3f{eps, eps, eps}
	return AABB{a.PMin.Sub(e), a.PMax.Add(e)}
}

// Corners returns the eight corner points, used for conservative
// transform of an AABB through a rotation/translation matrix.
func (a AABB) Corners() [8]Vec3f {
	return [8]Vec3f{
		{a.PMin.X, a.PMin.Y, a.PMin.Z},
		{a.PMax.X, a.PMin.Y, a.PMin.Z},
		{a.PMin.X, a.PMax.Y, a.PMin.Z},
		{a.PMax.X, a.PMax.Y, a.PMin.Z},
		{a.PMin.X, a.PMin.Y, a.PMax.Z},
		{a.PMax.X, a.PMin.Y, a.PMax.Z},
		{a.PMin.X, a.PMax.Y, a.PMax.Z},
		{a.PMax.X, a.PMax.Y, a.PMax.Z},
	}
}

// Slab intersects a ray against the box using the standard three-slab
// test. It returns (hit, tnear) with tnear clamped to >= 0.
func Slab(box AABB, org, rdir Vec3f, tmax float32) (bool, float32) {
	l1 := box.PMin.Sub(org).MulElem(rdir)
	l2 := box.PMax.Sub(org).MulElem(rdir)
	tnearv := MinVec3(l1, l2)
	tfarv := MaxVec3(l1, l2)
	tnear := tnearv.ReduceMax()
	tfar := tfarv.ReduceMin()
	if tnear < 0 {
		tnear = 0
	}
	hit := tfar >= tnear && tfar >= 0 && tnear < tmax
	return hit, tnear
}
