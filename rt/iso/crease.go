package iso

import "github.com/bsegovia/miniq-rt/rt/mathx"

// Sharp-feature edge creasing, spec §4.3 step 4: build an edge list from
// the leaf's freshly-tessellated triangles, mark any vertex touching an
// edge whose two incident faces disagree by more than SharpEdge as sharp,
// then split that vertex once per group of mutually-agreeing incident
// faces (bounded by MaxNewVert) so each group gets its own unshared
// normal instead of one averaged-to-mush value across the crease.
//
// Grounded on _examples/original_source/iso_dc.cpp's edge-list build
// ("for each tri, for each ordered edge i1<i2, push; second sweep i1>i2
// matches pairs") and its per-vertex group-and-duplicate pass.

type edgeKey struct{ a, b uint32 }

func makeEdgeKey(a, b uint32) edgeKey {
	if a < b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

// faceNormal returns the un-normalized cross product of triangle tri's
// edges, used both as a direction and as an area-proportional weight.
func faceNormal(pos []mathx.Vec3f, idx []uint32, tri int) mathx.Vec3f {
	i0, i1, i2 := idx[tri*3+0], idx[tri*3+1], idx[tri*3+2]
	return pos[i1].Sub(pos[i0]).Cross(pos[i2].Sub(pos[i0]))
}

// creaseSharpEdges mutates s.pos/s.nor/s.mtl/s.idx in place: vertices on a
// sharp edge are duplicated once per normal-agreeing group of incident
// triangles, then every vertex's normal is recomputed as the area-weighted
// (un-normalized cross product) sum of its current incident faces,
// normalized and absolute-valued (spec's brightening choice, preserved
// per DESIGN.md's open-question decision).
func (s *leafMesher) creaseSharpEdges() {
	triCount := len(s.idx) / 3
	if triCount == 0 {
		return
	}
	faceN := make([]mathx.Vec3f, triCount)
	for t := 0; t < triCount; t++ {
		faceN[t] = faceNormal(s.pos, s.idx, t)
	}

	// Edge -> up to two incident triangle ids (the two-sweep match the
	// spec describes collapses to one pass over a map keyed by the
	// unordered edge).
	edgeFaces := map[edgeKey][2]int{}
	edgeFaceCount := map[edgeKey]int{}
	for t := 0; t < triCount; t++ {
		v := [3]uint32{s.idx[t*3], s.idx[t*3+1], s.idx[t*3+2]}
		for e := 0; e < 3; e++ {
			key := makeEdgeKey(v[e], v[(e+1)%3])
			n := edgeFaceCount[key]
			if n < 2 {
				faces := edgeFaces[key]
				faces[n] = t
				edgeFaces[key] = faces
			}
			edgeFaceCount[key] = n + 1
		}
	}

	vertTris := vertexTriangles(s.idx, len(s.pos))

	sharp := make(map[uint32]bool)
	for key, count := range edgeFaceCount {
		if count != 2 {
			continue // a boundary edge of this leaf's own triangle set; never sharp on its own
		}
		faces := edgeFaces[key]
		n0 := faceN[faces[0]].Normalize()
		n1 := faceN[faces[1]].Normalize()
		if n0.Dot(n1) < SharpEdge {
			sharp[key.a] = true
			sharp[key.b] = true
		}
	}

	for v := range sharp {
		groups := groupByNormal(vertTris[v], faceN, SharpEdge)
		if len(groups) <= 1 {
			continue
		}
		newGroups := len(groups) - 1
		if newGroups > MaxNewVert {
			logger.Warnf("iso: vertex %d wants %d sharp-edge splits, truncating to %d", v, newGroups, MaxNewVert)
			// fold the overflow groups into the last kept group so every
			// triangle still gets reassigned to *some* duplicate.
			kept := groups[:MaxNewVert+1]
			for _, extra := range groups[MaxNewVert+1:] {
				kept[MaxNewVert] = append(kept[MaxNewVert], extra...)
			}
			groups = kept
		}
		for g := 1; g < len(groups); g++ {
			dup := uint32(len(s.pos))
			s.pos = append(s.pos, s.pos[v])
			s.nor = append(s.nor, s.nor[v])
			s.mtl = append(s.mtl, s.mtl[v])
			for _, t := range groups[g] {
				replaceTriVertex(s.idx, t, v, dup)
			}
		}
	}

	s.recomputeNormals()
}

// vertexTriangles returns, per vertex index, the list of triangle ids
// touching it.
func vertexTriangles(idx []uint32, vertCount int) map[uint32][]int {
	out := make(map[uint32][]int, vertCount)
	for t := 0; t < len(idx)/3; t++ {
		for e := 0; e < 3; e++ {
			v := idx[t*3+e]
			out[v] = append(out[v], t)
		}
	}
	return out
}

// groupByNormal partitions tris into clusters whose face normals pairwise
// agree within SharpEdge, greedily: each new cluster is seeded by the
// first unassigned triangle and absorbs every remaining triangle whose
// normal agrees with that seed.
func groupByNormal(tris []int, faceN []mathx.Vec3f, threshold float32) [][]int {
	assigned := make([]bool, len(tris))
	var groups [][]int
	for i, t := range tris {
		if assigned[i] {
			continue
		}
		seed := faceN[t].Normalize()
		group := []int{t}
		assigned[i] = true
		for j := i + 1; j < len(tris); j++ {
			if assigned[j] {
				continue
			}
			if seed.Dot(faceN[tris[j]].Normalize()) > threshold {
				group = append(group, tris[j])
				assigned[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// replaceTriVertex rewrites every occurrence of from in triangle tri's
// three index slots to to.
func replaceTriVertex(idx []uint32, tri int, from, to uint32) {
	for e := 0; e < 3; e++ {
		if idx[tri*3+e] == from {
			idx[tri*3+e] = to
		}
	}
}

// recomputeNormals sets every vertex's normal to the area-weighted
// (un-normalized cross product) sum of its current incident faces,
// matching step 4's final bullet: "normalize and take absolute value."
func (s *leafMesher) recomputeNormals() {
	triCount := len(s.idx) / 3
	sum := make([]mathx.Vec3f, len(s.pos))
	touched := make([]bool, len(s.pos))
	for t := 0; t < triCount; t++ {
		fn := faceNormal(s.pos, s.idx, t)
		for e := 0; e < 3; e++ {
			v := s.idx[t*3+e]
			sum[v] = sum[v].Add(fn)
			touched[v] = true
		}
	}
	for v := range s.nor {
		if !touched[v] {
			continue
		}
		n := sum[v]
		if n.LenSqr() == 0 {
			continue
		}
		s.nor[v] = n.Normalize().Abs()
	}
}
