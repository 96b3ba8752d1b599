package trace

import "github.com/bsegovia/miniq-rt/rt/bvh"

// Closest4/Closest8 and Occluded4/Occluded8 are the packet descent loop
// instantiated once per SIMD width, spec §4.5's "two entry points per
// flavor (scalar, 4-wide, 8-wide)".
func (p *Packet) Closest4(tree *bvh.BVH) *PacketHit    { return p.closestWithBoxTest(tree, boxGroupTest4) }
func (p *Packet) Closest8(tree *bvh.BVH) *PacketHit    { return p.closestWithBoxTest(tree, boxGroupTest8) }
func (p *Packet) Occluded4(tree *bvh.BVH) *PacketShadow { return p.occludedWithBoxTest(tree, boxGroupTest4) }
func (p *Packet) Occluded8(tree *bvh.BVH) *PacketShadow { return p.occludedWithBoxTest(tree, boxGroupTest8) }

// Kernel bundles one traversal width's two entry points, the "vtable of
// function pointers" spec §9's design note asks for in place of a
// per-node runtime width branch.
type Kernel struct {
	Width    int
	Closest  func(p *Packet, tree *bvh.BVH) *PacketHit
	Occluded func(p *Packet, tree *bvh.BVH) *PacketShadow
}

var kernels = [3]Kernel{
	{Width: 1, Closest: (*Packet).Closest, Occluded: (*Packet).Occluded},
	{Width: 4, Closest: (*Packet).Closest4, Occluded: (*Packet).Occluded4},
	{Width: 8, Closest: (*Packet).Closest8, Occluded: (*Packet).Occluded8},
}

// SelectKernel publishes the widest SIMD kernel whose lane width evenly
// divides raynum, falling back to scalar. Real engines pick this vtable
// entry once at startup from CPUID; Go exposes no portable intrinsic
// query for that, so the stand-in here is packet shape, decided once per
// packet size rather than once per process, which is the only part of
// spec §9's startup-dispatch note that doesn't carry over directly.
func SelectKernel(raynum int) Kernel {
	switch {
	case raynum > 0 && raynum%8 == 0:
		return kernels[2]
	case raynum > 0 && raynum%4 == 0:
		return kernels[1]
	default:
		return kernels[0]
	}
}
