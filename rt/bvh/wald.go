package bvh

import (
	"math"

	"github.com/bsegovia/miniq-rt/rt/mathx"
)

// WaldTriangle is the preprocessed triangle representation used by the
// traversal kernel's ray-triangle test (C5), grounded on the projection-
// plane/barycentric formulation used throughout the retrieval pack's BVH
// and ray-tracing examples: project onto the dominant axis of the
// triangle's normal, then test the hit point's 2-D barycentric
// coordinates against precomputed edge functions instead of doing a full
// 3-D Moller-Trumbore solve per ray.
type WaldTriangle struct {
	K        int // projection axis: index of the normal's largest component
	Nu, Nv   float32
	Nd       float32
	A        mathx.Vec3f
	Bnu, Bnv float32
	Bd       float32
	Cnu, Cnv float32
	Cd       float32
	Sign     bool // sign of the source normal's k component
	TriID    uint32
	MatID    uint32
}

// BuildWaldTriangle derives the projection-plane representation from a
// triangle's three vertices. ku/kv are the two axes orthogonal to k, in
// the canonical (k+1)%3, (k+2)%3 order.
func BuildWaldTriangle(a, b, c mathx.Vec3f, triID, matID uint32) WaldTriangle {
	normal := b.Sub(a).Cross(c.Sub(a))
	k := 0
	if absf(normal.Y) > absf(normal.Index(k)) {
		k = 1
	}
	if absf(normal.Z) > absf(normal.Index(k)) {
		k = 2
	}
	ku, kv := (k+1)%3, (k+2)%3

	var nu, nv, nd float32
	switch k {
	case 0:
		nu, nv, nd = normal.Y/normal.X, normal.Z/normal.X, a.Dot(normal)/normal.X
	case 1:
		nu, nv, nd = normal.Z/normal.Y, normal.X/normal.Y, a.Dot(normal)/normal.Y
	default:
		nu, nv, nd = normal.X/normal.Z, normal.Y/normal.Z, a.Dot(normal)/normal.Z
	}

	au, av := a.Index(ku), a.Index(kv)
	bu, bv := b.Index(ku)-au, b.Index(kv)-av
	cu, cv := c.Index(ku)-au, c.Index(kv)-av

	invDet := 1 / (bu*cv - bv*cu)
	bnu, bnv := -bv*invDet, bu*invDet
	cnu, cnv := cv*invDet, -cu*invDet
	bd := -(au*bnu + av*bnv)
	cd := -(au*cnu + av*cnv)

	return WaldTriangle{
		K: k, Nu: nu, Nv: nv, Nd: nd,
		A:    a,
		Bnu:  bnu, Bnv: bnv, Bd: bd,
		Cnu: cnu, Cnv: cnv, Cd: cd,
		Sign:  normal.Index(k) < 0,
		TriID: triID, MatID: matID,
	}
}

// xorSign flips x's sign bit when neg is set, the bitwise operation spec
// §4.5 describes reconstructing normals with: no divergent control flow,
// just a conditional XOR of the IEEE-754 sign bit.
func xorSign(x float32, neg bool) float32 {
	bits := math.Float32bits(x)
	if neg {
		bits ^= 0x80000000
	}
	return math.Float32frombits(bits)
}

// Normal reconstructs the (normalized) face normal from the projection-
// plane representation instead of carrying a separately-stored vector:
// the unnormalized normal is (1, Nu, Nv) in (k, ku, kv) order, scaled by
// the source normal's k-component, whose sign is exactly w.Sign. Spec
// §4.5's "XORing a sign bit into the k, ku, kv components" is xorSign
// above applied to all three before normalizing.
func (w WaldTriangle) Normal() mathx.Vec3f {
	ku, kv := (w.K+1)%3, (w.K+2)%3
	var n mathx.Vec3f
	n.SetIndex(w.K, xorSign(1, w.Sign))
	n.SetIndex(ku, xorSign(w.Nu, w.Sign))
	n.SetIndex(kv, xorSign(w.Nv, w.Sign))
	return n.Normalize()
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Intersect performs the projection-plane ray/triangle test, returning
// (hit, t, u, v). ku/kv follow the same axis permutation used to build
// the triangle.
func (w WaldTriangle) Intersect(org, dir mathx.Vec3f, tmin, tmax float32) (hit bool, t, u, v float32) {
	ku, kv := (w.K+1)%3, (w.K+2)%3
	ok := org.Index(w.K)
	dk := dir.Index(w.K)
	if dk == 0 {
		return false, 0, 0, 0
	}
	t = (w.Nd - ok - w.Nu*org.Index(ku) - w.Nv*org.Index(kv)) /
		(dk + w.Nu*dir.Index(ku) + w.Nv*dir.Index(kv))
	if t < tmin || t > tmax {
		return false, 0, 0, 0
	}
	hu := org.Index(ku) + t*dir.Index(ku)
	hv := org.Index(kv) + t*dir.Index(kv)
	u = hu*w.Bnu + hv*w.Bnv + w.Bd
	if u < 0 {
		return false, 0, 0, 0
	}
	v = hu*w.Cnu + hv*w.Cnv + w.Cd
	if v < 0 {
		return false, 0, 0, 0
	}
	if u+v > 1 {
		return false, 0, 0, 0
	}
	return true, t, u, v
}
