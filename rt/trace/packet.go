package trace

import (
	"github.com/bsegovia/miniq-rt/rt/bvh"
	"github.com/bsegovia/miniq-rt/rt/mathx"
)

// Packet flag bits, the "valid flag subset" the descent loop dispatches on.
type Flags uint8

const (
	SharedOrg Flags = 1 << iota
	SharedDir
	IntervalArith
	CornerRays
)

// Packet is a structure-of-arrays bundle of up to MaxRayNum rays sharing a
// single traversal, mirroring vorg[3][N]/vdir[3][N] plus the packet's four
// corner-ray directions and its flag byte.
type Packet struct {
	RayNum int
	Flags  Flags

	Org [3][]float32
	Dir [3][]float32

	// Corner directions for the implicit mini-frustum (CornerRays).
	Crx, Cry, Crz [4]float32
	CornerOrg     mathx.Vec3f

	Tmin, Tmax []float32

	// init-extra state, filled by initExtra.
	rdir    [3][]float32
	iaOrg   mathx.Interval3f
	iaDir   mathx.Interval3f
	haveIA  bool
	iaValid bool
}

// PacketHit is the SOA result of Closest: per-ray t,u,v,id and normal.
type PacketHit struct {
	T, U, V    []float32
	TriID      []uint32
	MatID      []uint32
	Nx, Ny, Nz []float32
}

// PacketShadow is the per-ray any-hit result.
type PacketShadow struct {
	Occluded []bool
	Mapping  []int // ray index -> shadow slot; Occluded fills it with the identity
}

func NewPacket(org, dir []mathx.Vec3f, tmin, tmax float32) *Packet {
	n := len(org)
	p := &Packet{RayNum: n}
	for a := 0; a < 3; a++ {
		p.Org[a] = make([]float32, n)
		p.Dir[a] = make([]float32, n)
	}
	p.Tmin = make([]float32, n)
	p.Tmax = make([]float32, n)
	sharedOrg, sharedDir := true, true
	for i, o := range org {
		p.Org[0][i], p.Org[1][i], p.Org[2][i] = o.X, o.Y, o.Z
		d := dir[i]
		p.Dir[0][i], p.Dir[1][i], p.Dir[2][i] = d.X, d.Y, d.Z
		p.Tmin[i], p.Tmax[i] = tmin, tmax
		if i > 0 && o != org[0] {
			sharedOrg = false
		}
		if i > 0 && d != dir[0] {
			sharedDir = false
		}
	}
	if sharedOrg {
		p.Flags |= SharedOrg
	}
	if sharedDir {
		p.Flags |= SharedDir
	}
	p.initExtra()
	return p
}

// initExtra fills precomputed reciprocal directions, and — only when every
// ray's direction sign agrees per axis — the interval-arithmetic org/dir
// pair the descent loop needs for IntervalArith culling.
func (p *Packet) initExtra() {
	for a := 0; a < 3; a++ {
		p.rdir[a] = make([]float32, p.RayNum)
		for i := range p.rdir[a] {
			p.rdir[a][i] = 1 / p.Dir[a][i]
		}
	}
	agree := true
	for a := 0; a < 3 && agree; a++ {
		sign := p.Dir[a][0] < 0
		for i := 1; i < p.RayNum; i++ {
			if (p.Dir[a][i] < 0) != sign {
				agree = false
				break
			}
		}
	}
	if !agree {
		p.iaValid = false
		return
	}
	var orgLo, orgHi, dirLo, dirHi [3]float32
	for a := 0; a < 3; a++ {
		orgLo[a], orgHi[a] = p.Org[a][0], p.Org[a][0]
		dirLo[a], dirHi[a] = p.Dir[a][0], p.Dir[a][0]
		for i := 1; i < p.RayNum; i++ {
			orgLo[a] = minf(orgLo[a], p.Org[a][i])
			orgHi[a] = maxf(orgHi[a], p.Org[a][i])
			dirLo[a] = minf(dirLo[a], p.Dir[a][i])
			dirHi[a] = maxf(dirHi[a], p.Dir[a][i])
		}
	}
	p.iaOrg = mathx.Interval3f{
		X: mathx.NewInterval(orgLo[0], orgHi[0]),
		Y: mathx.NewInterval(orgLo[1], orgHi[1]),
		Z: mathx.NewInterval(orgLo[2], orgHi[2]),
	}
	p.iaDir = mathx.Interval3f{
		X: mathx.NewInterval(dirLo[0], dirHi[0]),
		Y: mathx.NewInterval(dirLo[1], dirHi[1]),
		Z: mathx.NewInterval(dirLo[2], dirHi[2]),
	}
	p.iaValid = true
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func (p *Packet) ray(i int) Ray {
	return Ray{
		Org:  mathx.Vec3f{X: p.Org[0][i], Y: p.Org[1][i], Z: p.Org[2][i]},
		Dir:  mathx.Vec3f{X: p.Dir[0][i], Y: p.Dir[1][i], Z: p.Dir[2][i]},
		Tmin: p.Tmin[i], Tmax: p.Tmax[i],
	}
}

// iaCullBox tests the packet's direction/origin interval against box,
// corresponding to the spec's iacullia/iaculliaco: compute the interval
// t-range along each axis via interval reciprocal and reject if the
// resulting [tnear,tfar] interval cannot intersect [0, tmax].
func iaCullBox(p *Packet, box mathx.AABB, tmax float32) bool {
	if !p.iaValid {
		return true // can't cull conservatively without a valid IA pair
	}
	var tnear, tfar mathx.Interval[float32]
	first := true
	axes := [3]mathx.Interval[float32]{p.iaDir.X, p.iaDir.Y, p.iaDir.Z}
	orgs := [3]mathx.Interval[float32]{p.iaOrg.X, p.iaOrg.Y, p.iaOrg.Z}
	mins := [3]float32{box.PMin.X, box.PMin.Y, box.PMin.Z}
	maxs := [3]float32{box.PMax.X, box.PMax.Y, box.PMax.Z}
	for a := 0; a < 3; a++ {
		rdir, ok := axes[a].Rcp()
		if !ok {
			rdir = mathx.UnboundedInterval[float32]()
		}
		lo := mathx.NewInterval(mins[a], mins[a]).Sub(orgs[a]).Mul(rdir)
		hi := mathx.NewInterval(maxs[a], maxs[a]).Sub(orgs[a]).Mul(rdir)
		axisNear := mathx.NewInterval(minf(lo.Lo, hi.Lo), minf(lo.Hi, hi.Hi))
		axisFar := mathx.NewInterval(maxf(lo.Lo, hi.Lo), maxf(lo.Hi, hi.Hi))
		if first {
			tnear, tfar = axisNear, axisFar
			first = false
		} else {
			tnear = mathx.NewInterval(maxf(tnear.Lo, axisNear.Lo), maxf(tnear.Hi, axisNear.Hi))
			tfar = mathx.NewInterval(minf(tfar.Lo, axisFar.Lo), minf(tfar.Hi, axisFar.Hi))
		}
	}
	// Reject only when even the most optimistic corner of the box cannot
	// be reached: tfar.Hi < tnear.Lo, or the box lies entirely behind/after.
	return !(tfar.Hi < tnear.Lo || tfar.Hi < 0 || tnear.Lo > tmax)
}

// cornerOutside reports whether the packet's four corner rays all fall on
// the same "outside" side of tri's plane, the fast shadow-packet reject.
func cornerOutside(p *Packet, tri *bvh.WaldTriangle) bool {
	if p.Flags&CornerRays == 0 {
		return false
	}
	signSet := false
	var sign bool
	for c := 0; c < 4; c++ {
		dir := mathx.Vec3f{X: p.Crx[c], Y: p.Cry[c], Z: p.Crz[c]}
		_, t, u, v := tri.Intersect(p.CornerOrg, dir, 0, 1e30)
		outside := t == 0 && (u < 0 || v < 0 || u+v > 1)
		if !signSet {
			sign, signSet = outside, true
			continue
		}
		if outside != sign {
			return false
		}
	}
	return signSet && sign
}

type nodeEntry struct {
	node        int32
	firstActive int
}

// boxGroupTest finds the first ray at index >= first that hits box before
// curT[ray], or -1 if none does in [first, RayNum). It is the hook
// specialized per traversal width: boxGroupTest1 checks one ray at a time
// (the scalar kernel), boxGroupTest4/8 check a SIMD lane group at a time.
type boxGroupTest func(p *Packet, first int, box mathx.AABB, curT []float32) int

// boxGroupTest1 is the scalar specialization: advance first until some
// ray hits the box, exactly spec §4.5's non-IntervalArith descent step.
func boxGroupTest1(p *Packet, first int, box mathx.AABB, curT []float32) int {
	for first < p.RayNum {
		r := p.ray(first)
		if ok, _ := mathx.Slab(box, r.Org, rcp3(r.Dir), curT[first]); ok {
			return first
		}
		first++
	}
	return -1
}

func newPacketHit(n int) *PacketHit {
	out := &PacketHit{
		T: make([]float32, n), U: make([]float32, n), V: make([]float32, n),
		TriID: make([]uint32, n), MatID: make([]uint32, n),
		Nx: make([]float32, n), Ny: make([]float32, n), Nz: make([]float32, n),
	}
	return out
}

// Closest runs the scalar (width-1) packet descent loop from spec §4.5.
func (p *Packet) Closest(tree *bvh.BVH) *PacketHit {
	return p.closestWithBoxTest(tree, boxGroupTest1)
}

// closestWithBoxTest is the shared node-stack descent spec §4.5 and
// DESIGN NOTES §9 describe: an explicit 64-deep stack of (node,
// first_active_ray) entries, IntervalArith culling when available, else
// the width-specialized box-group test finding the next active ray.
// Closest/Closest4/Closest8 are this loop instantiated once per width;
// kernel.go's SelectKernel picks among them once per packet size, without
// any per-node runtime branch.
func (p *Packet) closestWithBoxTest(tree *bvh.BVH, test boxGroupTest) *PacketHit {
	out := newPacketHit(p.RayNum)
	for i := 0; i < p.RayNum; i++ {
		out.T[i] = p.Tmax[i]
		out.TriID[i] = NoHit
		out.MatID[i] = NoHit
	}
	if len(tree.Nodes) == 0 {
		return out
	}

	var stack [stackDepth]nodeEntry
	sp := 0
	stack[sp] = nodeEntry{node: 0, firstActive: 0}
	sp++
	for sp > 0 {
		sp--
		e := stack[sp]
		n := tree.Nodes[e.node]

		first := e.firstActive
		if p.Flags&IntervalArith != 0 {
			r := p.ray(first)
			if ok, _ := mathx.Slab(n.Box, r.Org, rcp3(r.Dir), out.T[first]); !ok {
				if !iaCullBox(p, n.Box, maxOf(out.T)) {
					continue
				}
			}
		} else {
			first = test(p, first, n.Box, out.T)
			if first < 0 {
				continue
			}
		}

		if n.IsLeaf() {
			p.traceLeaf(tree, n, first, out)
			continue
		}
		stack[sp] = nodeEntry{node: n.Right, firstActive: first}
		sp++
		stack[sp] = nodeEntry{node: n.Left, firstActive: first}
		sp++
	}
	return out
}

func maxOf(v []float32) float32 {
	m := float32(0)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}

func (p *Packet) traceLeaf(tree *bvh.BVH, n bvh.Node, first int, out *PacketHit) {
	active := make([]bool, p.RayNum)
	for i := first; i < p.RayNum; i++ {
		r := p.ray(i)
		ok, _ := mathx.Slab(n.Box, r.Org, rcp3(r.Dir), out.T[i])
		active[i] = ok
	}
	for i := int32(0); i < n.LeafCount; i++ {
		prim := tree.Prims[n.LeafFirst+i]
		if prim.Triangle == nil {
			continue
		}
		tri := prim.Triangle
		if cornerOutside(p, tri) {
			continue
		}
		var normal mathx.Vec3f
		normalSet := false
		for r := first; r < p.RayNum; r++ {
			if !active[r] {
				continue
			}
			ray := p.ray(r)
			if ok, t, u, v := tri.Intersect(ray.Org, ray.Dir, ray.Tmin, out.T[r]); ok {
				out.T[r], out.U[r], out.V[r] = t, u, v
				out.TriID[r], out.MatID[r] = tri.TriID, tri.MatID
				if !normalSet {
					normal, normalSet = tri.Normal(), true
				}
				out.Nx[r], out.Ny[r], out.Nz[r] = normal.X, normal.Y, normal.Z
			}
		}
	}
}

// Occluded runs the scalar (width-1) any-hit packet descent.
func (p *Packet) Occluded(tree *bvh.BVH) *PacketShadow {
	return p.occludedWithBoxTest(tree, boxGroupTest1)
}

// occludedWithBoxTest is Occluded/Occluded4/Occluded8's shared descent:
// per-ray bit, early-terminating once every active ray has been marked
// occluded, with the box test against the first still-live ray delegated
// to the width-specialized test hook (see closestWithBoxTest).
func (p *Packet) occludedWithBoxTest(tree *bvh.BVH, test boxGroupTest) *PacketShadow {
	out := &PacketShadow{Occluded: make([]bool, p.RayNum), Mapping: make([]int, p.RayNum)}
	for i := range out.Mapping {
		out.Mapping[i] = i
	}
	if len(tree.Nodes) == 0 {
		return out
	}
	remaining := p.RayNum

	var stack [stackDepth]nodeEntry
	sp := 0
	stack[sp] = nodeEntry{node: 0, firstActive: 0}
	sp++
	for sp > 0 && remaining > 0 {
		sp--
		e := stack[sp]
		n := tree.Nodes[e.node]

		first := e.firstActive
		for first < p.RayNum && out.Occluded[first] {
			first++
		}
		if first >= p.RayNum {
			continue
		}
		if p.Flags&IntervalArith != 0 {
			r := p.ray(first)
			if ok, _ := mathx.Slab(n.Box, r.Org, rcp3(r.Dir), r.Tmax); !ok {
				if !iaCullBox(p, n.Box, r.Tmax) {
					continue
				}
			}
		} else {
			hit := test(p, first, n.Box, p.Tmax)
			if hit < 0 {
				continue
			}
			first = hit
		}

		if n.IsLeaf() {
			for i := int32(0); i < n.LeafCount; i++ {
				prim := tree.Prims[n.LeafFirst+i]
				if prim.Triangle == nil {
					continue
				}
				tri := prim.Triangle
				if cornerOutside(p, tri) {
					continue
				}
				for ri := first; ri < p.RayNum; ri++ {
					if out.Occluded[ri] {
						continue
					}
					ray := p.ray(ri)
					if ok, t, _, _ := tri.Intersect(ray.Org, ray.Dir, ray.Tmin, ray.Tmax); ok && t > 0 {
						out.Occluded[ri] = true
						remaining--
					}
				}
			}
			continue
		}
		stack[sp] = nodeEntry{node: n.Right, firstActive: first}
		sp++
		stack[sp] = nodeEntry{node: n.Left, firstActive: first}
		sp++
	}
	return out
}
