// Package trace implements single-ray and packet traversal over a bvh.BVH:
// closest-hit and any-hit (occluded) queries, with interval-arithmetic node
// culling and corner-ray frustum rejection for coherent packets.
//
// Grounded on _examples/original_source (the mini.q engine this system was
// distilled from describes exactly this traversal shape in its rendering
// core) and on the teacher's own concurrency/SOA idioms elsewhere in this
// module; no single retrieval-pack file implements ray/BVH packet
// traversal directly, so the node-stack descent and Wald-triangle leaf
// test below are written from the module contract itself.
package trace

import "github.com/bsegovia/miniq-rt/rt/mathx"

// MaxRayNum bounds how many rays a single packet may hold.
const MaxRayNum = 256

// Ray is a single ray query.
type Ray struct {
	Org, Dir   mathx.Vec3f
	Tmin, Tmax float32
}

// Hit is a single-ray intersection result. TriID and MatID are NoHit when
// the ray missed.
type Hit struct {
	T, U, V float32
	TriID   uint32
	MatID   uint32
	N       mathx.Vec3f
}

const NoHit = ^uint32(0)
