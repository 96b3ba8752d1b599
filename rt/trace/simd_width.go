package trace

import "github.com/bsegovia/miniq-rt/rt/mathx"

// Width-4 and width-8 box-group tests: the same three-slab test Slab()
// runs per ray, but evaluated for a whole lane group at once through
// mathx.F32x4/F32x8, with Select/Any as the only branch — spec §4.5's
// "per (flag_bits x simd_width)" traversal instantiation applied to the
// packet's dominant per-node cost, the box test against every ray still
// live at that node. Leaf triangle intersection stays scalar per active
// ray (traceLeaf, unchanged): a leaf's few triangles don't pay for the
// lane-broadcast overhead the way a box test run against 4-8 rays does.

func loadLane4(s []float32, lane0, cnt int) mathx.F32x4 {
	var r mathx.F32x4
	for i := 0; i < 4; i++ {
		idx := lane0 + i
		if i >= cnt {
			idx = lane0 + cnt - 1
		}
		r[i] = s[idx]
	}
	return r
}

func loadLane8(s []float32, lane0, cnt int) mathx.F32x8 {
	var r mathx.F32x8
	for i := 0; i < 8; i++ {
		idx := lane0 + i
		if i >= cnt {
			idx = lane0 + cnt - 1
		}
		r[i] = s[idx]
	}
	return r
}

// slabMask4 is Slab() broadcast across four rays at once.
func slabMask4(org, rdir [3]mathx.F32x4, box mathx.AABB, tmax mathx.F32x4) mathx.Mask4 {
	pmin := [3]float32{box.PMin.X, box.PMin.Y, box.PMin.Z}
	pmax := [3]float32{box.PMax.X, box.PMax.Y, box.PMax.Z}
	var tnear, tfar mathx.F32x4
	for a := 0; a < 3; a++ {
		l1 := mathx.Broadcast4(pmin[a]).Sub(org[a]).Mul(rdir[a])
		l2 := mathx.Broadcast4(pmax[a]).Sub(org[a]).Mul(rdir[a])
		near, far := l1.Min(l2), l1.Max(l2)
		if a == 0 {
			tnear, tfar = near, far
		} else {
			tnear, tfar = tnear.Max(near), tfar.Min(far)
		}
	}
	zero := mathx.Broadcast4(0)
	tnear = mathx.Select4(tnear.Lt(zero), zero, tnear)
	return and4(tfar.Ge(tnear), and4(tfar.Ge(zero), tnear.Lt(tmax)))
}

func and4(a, b mathx.Mask4) (r mathx.Mask4) {
	for i := range a {
		r[i] = a[i] && b[i]
	}
	return
}

func and8(a, b mathx.Mask8) (r mathx.Mask8) {
	for i := range a {
		r[i] = a[i] && b[i]
	}
	return
}

func slabMask8(org, rdir [3]mathx.F32x8, box mathx.AABB, tmax mathx.F32x8) mathx.Mask8 {
	pmin := [3]float32{box.PMin.X, box.PMin.Y, box.PMin.Z}
	pmax := [3]float32{box.PMax.X, box.PMax.Y, box.PMax.Z}
	var tnear, tfar mathx.F32x8
	for a := 0; a < 3; a++ {
		l1 := mathx.Broadcast8(pmin[a]).Sub(org[a]).Mul(rdir[a])
		l2 := mathx.Broadcast8(pmax[a]).Sub(org[a]).Mul(rdir[a])
		near, far := l1.Min(l2), l1.Max(l2)
		if a == 0 {
			tnear, tfar = near, far
		} else {
			tnear, tfar = tnear.Max(near), tfar.Min(far)
		}
	}
	zero := mathx.Broadcast8(0)
	tnear = mathx.Select8(tnear.Lt(zero), zero, tnear)
	return and8(tfar.Ge(tnear), and8(tfar.Ge(zero), tnear.Lt(tmax)))
}

// boxGroupTest4 is the SSE-equivalent specialization: test four rays'
// slab intersection against box per iteration instead of one.
func boxGroupTest4(p *Packet, first int, box mathx.AABB, curT []float32) int {
	n := p.RayNum
	for lane0 := first; lane0 < n; lane0 += 4 {
		cnt := 4
		if lane0+cnt > n {
			cnt = n - lane0
		}
		var org, rdir [3]mathx.F32x4
		for a := 0; a < 3; a++ {
			org[a] = loadLane4(p.Org[a], lane0, cnt)
			rdir[a] = loadLane4(p.rdir[a], lane0, cnt)
		}
		mask := slabMask4(org, rdir, box, loadLane4(curT, lane0, cnt))
		for i := 0; i < cnt; i++ {
			if mask[i] {
				return lane0 + i
			}
		}
	}
	return -1
}

// boxGroupTest8 is the AVX-equivalent specialization: eight rays per
// iteration.
func boxGroupTest8(p *Packet, first int, box mathx.AABB, curT []float32) int {
	n := p.RayNum
	for lane0 := first; lane0 < n; lane0 += 8 {
		cnt := 8
		if lane0+cnt > n {
			cnt = n - lane0
		}
		var org, rdir [3]mathx.F32x8
		for a := 0; a < 3; a++ {
			org[a] = loadLane8(p.Org[a], lane0, cnt)
			rdir[a] = loadLane8(p.rdir[a], lane0, cnt)
		}
		mask := slabMask8(org, rdir, box, loadLane8(curT, lane0, cnt))
		for i := 0; i < cnt; i++ {
			if mask[i] {
				return lane0 + i
			}
		}
	}
	return -1
}
