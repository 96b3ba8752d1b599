package trace

import (
	"github.com/bsegovia/miniq-rt/rt/bvh"
	"github.com/bsegovia/miniq-rt/rt/mathx"
)

const stackDepth = 64

type stackEntry struct {
	node int32
}

// Closest finds the nearest intersection of ray against tree, following
// the node-stack descent in spec §4.5 specialized to one ray: each popped
// node's box is slab-tested against the closest t found so far, leaves test
// their primitives, and interior nodes push Right then Left, so the left
// child is visited first whatever the ray direction.
func Closest(tree *bvh.BVH, ray Ray) (Hit, bool) {
	hit := Hit{TriID: NoHit, MatID: NoHit, T: ray.Tmax}
	found := false
	if len(tree.Nodes) == 0 {
		return hit, false
	}
	var stack [stackDepth]stackEntry
	sp := 0
	stack[sp] = stackEntry{node: 0}
	sp++
	for sp > 0 {
		sp--
		n := tree.Nodes[stack[sp].node]
		ok, _ := mathx.Slab(n.Box, ray.Org, rcp3(ray.Dir), hit.T)
		if !ok {
			continue
		}
		if n.IsLeaf() {
			for i := int32(0); i < n.LeafCount; i++ {
				p := tree.Prims[n.LeafFirst+i]
				if p.Triangle != nil {
					if ok, t, u, v := p.Triangle.Intersect(ray.Org, ray.Dir, ray.Tmin, hit.T); ok {
						hit.T, hit.U, hit.V = t, u, v
						hit.TriID, hit.MatID = p.Triangle.TriID, p.Triangle.MatID
						hit.N = p.Triangle.Normal()
						found = true
					}
				} else if p.Nested != nil {
					if sub, ok := closestIntersector(p.Nested, ray, hit.T); ok {
						hit = sub
						found = true
					}
				}
			}
			continue
		}
		stack[sp] = stackEntry{node: n.Right}
		sp++
		stack[sp] = stackEntry{node: n.Left}
		sp++
	}
	return hit, found
}

// closestIntersector lets a BVH leaf point at another BVH (instancing);
// any type satisfying bvh.Intersector that also happens to be a *bvh.BVH
// is dispatched directly, other Intersector implementations are out of
// scope for this entry point.
func closestIntersector(it bvh.Intersector, ray Ray, tmax float32) (Hit, bool) {
	sub, ok := it.(*bvh.BVH)
	if !ok {
		return Hit{}, false
	}
	r := ray
	r.Tmax = tmax
	return Closest(sub, r)
}

// Occluded reports whether any geometry blocks ray before ray.Tmax,
// stopping at the first hit (no need for the nearest one).
func Occluded(tree *bvh.BVH, ray Ray) bool {
	if len(tree.Nodes) == 0 {
		return false
	}
	var stack [stackDepth]stackEntry
	sp := 0
	stack[sp] = stackEntry{node: 0}
	sp++
	for sp > 0 {
		sp--
		n := tree.Nodes[stack[sp].node]
		ok, _ := mathx.Slab(n.Box, ray.Org, rcp3(ray.Dir), ray.Tmax)
		if !ok {
			continue
		}
		if n.IsLeaf() {
			for i := int32(0); i < n.LeafCount; i++ {
				p := tree.Prims[n.LeafFirst+i]
				if p.Triangle != nil {
					if ok, t, _, _ := p.Triangle.Intersect(ray.Org, ray.Dir, ray.Tmin, ray.Tmax); ok && t > 0 {
						return true
					}
				} else if sub, ok := p.Nested.(*bvh.BVH); ok {
					r := ray
					if Occluded(sub, r) {
						return true
					}
				}
			}
			continue
		}
		stack[sp] = stackEntry{node: n.Right}
		sp++
		stack[sp] = stackEntry{node: n.Left}
		sp++
	}
	return false
}

func rcp3(d mathx.Vec3f) mathx.Vec3f {
	return mathx.Vec3f{X: 1 / d.X, Y: 1 / d.Y, Z: 1 / d.Z}
}
