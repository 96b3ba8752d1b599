// Package bvh builds a surface-area-heuristic BVH over Wald-preprocessed
// triangles (and, for the top level, over arbitrary nested intersectors),
// and exposes it to the packet traversal kernel in C5.
//
// The node layout and recursiveBuild shape come from
// _examples/voxelrt/rt/bvh/builder.go (the teacher's own TLASBuilder); the
// exact-sweep SAH cost evaluation (full prefix/suffix area sweep rather
// than a binned approximation) is adapted from
// _examples/other_examples/079a29d5_viamrobotics-rdk__spatialmath-bvh.go.go's
// buildBVHNode, which computes leftArea*count + rightArea*count directly
// off sorted prefix/suffix bounding boxes instead of histogram bins.
package bvh

import (
	"sort"

	"github.com/bsegovia/miniq-rt/rt/mathx"
)

// MaxPrimitivesPerLeaf is the leaf-merging cap: a subtree of at most this
// many triangles is only split further when the SAH split cost actually
// beats the cost of leaving it as one leaf.
const MaxPrimitivesPerLeaf = 8

// Primitive is anything the builder can place at a leaf: a Wald triangle
// or a nested intersector (a sub-BVH, or any other boundable object).
type Primitive struct {
	Box      mathx.AABB
	Triangle *WaldTriangle // nil if this primitive is a nested intersector
	Nested   Intersector
}

// Intersector is any boundable traversal structure the top-level BVH can
// hold a reference to as a single leaf primitive.
type Intersector interface {
	Bounds() mathx.AABB
}

// Node is one BVH node: either an interior node with two children or a
// leaf spanning a contiguous run of the builder's primitive array.
type Node struct {
	Box         mathx.AABB
	Left, Right int32 // -1 if this is a leaf
	LeafFirst   int32
	LeafCount   int32
}

func (n Node) IsLeaf() bool { return n.Left < 0 }

// BVH is a built, immutable tree plus the primitive array leaves index into.
type BVH struct {
	Nodes []Node
	Prims []Primitive
}

// Bounds lets a *BVH itself be used as a nested Intersector, for instancing
// one built tree as a single leaf primitive inside another.
func (b *BVH) Bounds() mathx.AABB {
	if len(b.Nodes) == 0 {
		return mathx.EmptyAABB()
	}
	return b.Nodes[0].Box
}

// Build constructs a SAH BVH over prims. A node of at most
// MaxPrimitivesPerLeaf triangles becomes a leaf when its leaf cost is no
// higher than the best split's cost; a node that contains a nested
// intersector is always split down to single-primitive leaves, since
// unlike triangles their per-primitive traversal cost isn't O(1) and the
// sweep's cost model would systematically undercount them.
func Build(prims []Primitive) *BVH {
	b := &BVH{Prims: append([]Primitive(nil), prims...)}
	if len(b.Prims) == 0 {
		b.Nodes = []Node{{Left: -1, Right: -1, LeafFirst: 0, LeafCount: 0}}
		return b
	}
	b.recursiveBuild(0, len(b.Prims))
	for i := range b.Nodes {
		b.Nodes[i].Box = b.Nodes[i].Box.Grow(1e-6)
	}
	return b
}

func boundsOf(prims []Primitive) mathx.AABB {
	box := mathx.EmptyAABB()
	for _, p := range prims {
		box = box.Sum(p.Box)
	}
	return box
}

func centroid(b mathx.AABB) mathx.Vec3f { return b.Center() }

func allTriangles(prims []Primitive) bool {
	for _, p := range prims {
		if p.Triangle == nil {
			return false
		}
	}
	return true
}

// recursiveBuild builds the subtree over b.Prims[first:last] and returns
// its node index.
func (b *BVH) recursiveBuild(first, last int) int32 {
	idx := int32(len(b.Nodes))
	b.Nodes = append(b.Nodes, Node{Left: -1, Right: -1})
	prims := b.Prims[first:last]
	box := boundsOf(prims)
	b.Nodes[idx].Box = box

	n := last - first
	if n == 1 {
		b.Nodes[idx].LeafFirst, b.Nodes[idx].LeafCount = int32(first), 1
		return idx
	}

	leafOK := n <= MaxPrimitivesPerLeaf && allTriangles(prims)

	bestAxis, bestSplit, bestCost := -1, 0, float32(1e30)
	leafCost := box.HalfArea() * float32(n)
	for axis := 0; axis < 3; axis++ {
		sort.Slice(prims, func(i, j int) bool {
			return centroid(prims[i].Box).Index(axis) < centroid(prims[j].Box).Index(axis)
		})

		prefix := make([]mathx.AABB, n)
		suffix := make([]mathx.AABB, n)
		prefix[0] = prims[0].Box
		for i := 1; i < n; i++ {
			prefix[i] = prefix[i-1].Sum(prims[i].Box)
		}
		suffix[n-1] = prims[n-1].Box
		for i := n - 2; i >= 0; i-- {
			suffix[i] = suffix[i+1].Sum(prims[i].Box)
		}

		for split := 1; split < n; split++ {
			leftArea := prefix[split-1].HalfArea()
			rightArea := suffix[split].HalfArea()
			// The node's own half-area accounts for the extra traversal
			// step a split adds, so a split has to beat the leaf by more.
			cost := box.HalfArea() + leftArea*float32(split) + rightArea*float32(n-split)
			if cost < bestCost {
				bestCost, bestAxis, bestSplit = cost, axis, split
			}
		}
	}

	if leafOK && leafCost <= bestCost {
		b.Nodes[idx].LeafFirst, b.Nodes[idx].LeafCount = int32(first), int32(n)
		return idx
	}

	sort.Slice(prims, func(i, j int) bool {
		return centroid(prims[i].Box).Index(bestAxis) < centroid(prims[j].Box).Index(bestAxis)
	})
	mid := bestSplit
	if mid <= 0 || mid >= n {
		mid = n / 2
	}

	left := b.recursiveBuild(first, first+mid)
	right := b.recursiveBuild(first+mid, last)
	b.Nodes[idx].Left = left
	b.Nodes[idx].Right = right
	return idx
}
