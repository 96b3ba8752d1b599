// Package csg implements the signed-distance-function constructive solid
// geometry tree: tagged node variants, per-node precomputed AABBs, and a
// batched distance evaluator with box-driven spatial pruning.
//
// Grounded on _examples/original_source/csg.{hpp,cpp} (the node enum,
// per-operator distance formulas, AABB-pruned distr()/dist() recursion,
// makescene()/makescene0()/capped_cylinder()), extended with the REPLACE
// operator, ROTATION node and per-point material resolution the
// distillation's module contract adds on top of the original.
package csg

import (
	"fmt"

	"github.com/bsegovia/miniq-rt/rt/mathx"
)

// MaxBatch is the evaluator's preferred point-batch stride, mirroring the
// original's fixed 64-wide scratch buffers.
const MaxBatch = 64

// Material indexes a named surface appearance; AIR marks "outside everything".
type Material int32

const (
	AIR Material = iota
	MatSimple
	MatNoise
)

type Tag int

const (
	Union Tag = iota
	Difference
	Intersection
	Replace
	Translation
	Rotation
	Box
	Sphere
	Plane
	CylinderXZ
	CylinderXY
	CylinderYZ
)

// Node is a CSG tree node: a tagged variant over the shapes above, each
// carrying a precomputed AABB used for query-box pruning. Binary nodes
// exclusively own their children.
type Node struct {
	Tag  Tag
	Box  mathx.AABB
	Mat  Material // leaf material, when this node is a primitive
	Left *Node
	Right *Node

	Extent mathx.Vec3f // BOX
	R      float32     // SPHERE, CYLINDER_*
	Center mathx.Vec2f // CYLINDER_* (the two in-plane axes)
	Plane  mathx.Vec4f // PLANE (a,b,c,d)
	P      mathx.Vec3f // TRANSLATION offset
	Q      mathx.Quat  // ROTATION
}

func NewUnion(left, right *Node) *Node {
	return &Node{Tag: Union, Box: left.Box.Sum(right.Box), Left: left, Right: right}
}

func NewDifference(left, right *Node) *Node {
	return &Node{Tag: Difference, Box: left.Box, Left: left, Right: right}
}

func NewIntersection(left, right *Node) *Node {
	return &Node{Tag: Intersection, Box: left.Box.Intersection(right.Box), Left: left, Right: right}
}

// NewReplace keeps A's shape and box, substituting B's material wherever
// both are inside.
func NewReplace(a, b *Node) *Node {
	return &Node{Tag: Replace, Box: a.Box, Left: a, Right: b}
}

func NewTranslation(p mathx.Vec3f, n *Node) *Node {
	return &Node{Tag: Translation, Box: n.Box.Translate(p), P: p, Left: n}
}

// NewRotation widens the box to "all": a rotated child's AABB is unreliable
// without recomputation, so culling is disabled for this subtree.
func NewRotation(q mathx.Quat, n *Node) *Node {
	return &Node{Tag: Rotation, Box: mathx.AllAABB(), Q: q, Left: n}
}

func NewBox(extent mathx.Vec3f, mat Material) *Node {
	return &Node{Tag: Box, Box: mathx.FromExtent(extent), Extent: extent, Mat: mat}
}

func NewSphere(r float32, mat Material) *Node {
	e := mathx.Vec3f{X: r, Y: r, Z: r}
	return &Node{Tag: Sphere, Box: mathx.FromExtent(e), R: r, Mat: mat}
}

func NewPlane(p mathx.Vec4f, mat Material) *Node {
	return &Node{Tag: Plane, Box: mathx.AllAABB(), Plane: p, Mat: mat}
}

func infBox(cxMin, cxMax, cyMin, cyMax float32, infAxis int) mathx.AABB {
	inf := float32(1e30)
	pmin := mathx.Vec3f{X: cxMin, Y: cyMin, Z: -inf}
	pmax := mathx.Vec3f{X: cxMax, Y: cyMax, Z: inf}
	switch infAxis {
	case 0: // X is infinite: YZ cylinder
		pmin = mathx.Vec3f{X: -inf, Y: cxMin, Z: cyMin}
		pmax = mathx.Vec3f{X: inf, Y: cxMax, Z: cyMax}
	case 1: // Y is infinite: XZ cylinder
		pmin = mathx.Vec3f{X: cxMin, Y: -inf, Z: cyMin}
		pmax = mathx.Vec3f{X: cxMax, Y: inf, Z: cyMax}
	}
	return mathx.AABB{PMin: pmin, PMax: pmax}
}

func NewCylinderXZ(cxz mathx.Vec2f, r float32, mat Material) *Node {
	box := infBox(cxz.X-r, cxz.X+r, cxz.Y-r, cxz.Y+r, 1)
	return &Node{Tag: CylinderXZ, Box: box, Center: cxz, R: r, Mat: mat}
}

func NewCylinderXY(cxy mathx.Vec2f, r float32, mat Material) *Node {
	box := infBox(cxy.X-r, cxy.X+r, cxy.Y-r, cxy.Y+r, 2)
	return &Node{Tag: CylinderXY, Box: box, Center: cxy, R: r, Mat: mat}
}

func NewCylinderYZ(cyz mathx.Vec2f, r float32, mat Material) *Node {
	box := infBox(cyz.X-r, cyz.X+r, cyz.Y-r, cyz.Y+r, 0)
	return &Node{Tag: CylinderYZ, Box: box, Center: cyz, R: r, Mat: mat}
}

// CappedCylinder builds a CYLINDER_XZ capped by two PLANE caps, the
// combinator the original exposes as capped_cylinder(): a finite cylinder
// is DIFFERENCE(DIFFERENCE(cyl, bottom_plane), top_plane), then its box is
// tightened to the true finite extent rather than the infinite cylinder box.
func CappedCylinder(cxz mathx.Vec2f, r, ymin, ymax float32, mat Material) *Node {
	cyl := NewCylinderXZ(cxz, r, mat)
	plane0 := NewPlane(mathx.Vec4f{X: 0, Y: 1, Z: 0, W: -ymin}, mat)
	plane1 := NewPlane(mathx.Vec4f{X: 0, Y: -1, Z: 0, W: ymax}, mat)
	ccyl := NewDifference(NewDifference(cyl, plane0), plane1)
	ccyl.Box = mathx.AABB{
		PMin: mathx.Vec3f{X: cxz.X - r, Y: ymin, Z: cxz.Y - r},
		PMax: mathx.Vec3f{X: cxz.X + r, Y: ymax, Z: cxz.Y + r},
	}
	return ccyl
}

// boxSDF is the exact-distance axis-aligned box SDF shared by Box leaf
// evaluation: the usual "outside" length plus clamped "inside" term.
func boxSDF(p, extent mathx.Vec3f) float32 {
	pd := p.Abs().Sub(extent)
	outside := mathx.MaxVec3(pd, mathx.Vec3f{}).Len()
	inside := minT(maxT(pd.X, maxT(pd.Y, pd.Z)), 0)
	return inside + outside
}

func minT(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxT(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absT(a float32) float32 {
	if a < 0 {
		return -a
	}
	return a
}

// Dist evaluates a single point, returning its signed distance and the
// material of the innermost solid containing it (AIR if outside).
//
// normalDist is the UNION normal-quality threshold spec §4.2 describes: when
// positive, a UNION prefers its right child's distance outright whenever
// that distance's magnitude falls within the band, a min-absolute-value
// selection that keeps normals clean near the join (used by the isosurface
// extractor's crossing/gradient sampling; _examples/original_source/src/csg.cpp:216-218's
// `distr`). Pass 0 to disable and fall back to plain min, as every other
// operator does unconditionally.
func Dist(n *Node, p mathx.Vec3f, box mathx.AABB, normalDist float32) (float32, Material) {
	isec := box.Intersection(n.Box)
	if isec.Empty() {
		return 1e30, AIR
	}
	switch n.Tag {
	case Union:
		dl, ml := Dist(n.Left, p, box, normalDist)
		dr, mr := Dist(n.Right, p, box, normalDist)
		if normalDist > 0 && absT(dr) < normalDist {
			return dr, mr
		}
		if dl <= 0 && dr <= 0 {
			if dr <= dl {
				return dr, mr
			}
			return dl, ml
		}
		if dl < dr {
			return dl, ml
		}
		return dr, mr
	case Intersection:
		dl, ml := Dist(n.Left, p, box, normalDist)
		dr, _ := Dist(n.Right, p, box, normalDist)
		d := maxT(dl, dr)
		if d >= 0 {
			return d, AIR
		}
		return d, ml
	case Difference:
		dl, ml := Dist(n.Left, p, box, normalDist)
		dr, _ := Dist(n.Right, p, box, normalDist)
		d := maxT(dl, -dr)
		if d >= 0 {
			return d, AIR
		}
		return d, ml
	case Replace:
		dl, ml := Dist(n.Left, p, box, normalDist)
		if dl >= 0 {
			return dl, ml
		}
		_, mr := Dist(n.Right, p, box, normalDist)
		if mr != AIR {
			return dl, mr
		}
		return dl, ml
	case Translation:
		tp := p.Sub(n.P)
		tbox := mathx.AABB{PMin: box.PMin.Sub(n.P), PMax: box.PMax.Sub(n.P)}
		return Dist(n.Left, tp, tbox, normalDist)
	case Rotation:
		rp := mathx.RotateVec3(n.Q.Conjugate(), p)
		return Dist(n.Left, rp, mathx.AllAABB(), normalDist)
	case Plane:
		d := p.Dot(n.Plane.XYZ()) + n.Plane.W
		if d < 0 {
			return d, n.Mat
		}
		return d, AIR
	case CylinderXZ:
		d := p.XZ().Sub(n.Center).Len() - n.R
		if d < 0 {
			return d, n.Mat
		}
		return d, AIR
	case CylinderXY:
		d := p.XY().Sub(n.Center).Len() - n.R
		if d < 0 {
			return d, n.Mat
		}
		return d, AIR
	case CylinderYZ:
		d := p.YZ().Sub(n.Center).Len() - n.R
		if d < 0 {
			return d, n.Mat
		}
		return d, AIR
	case Sphere:
		d := p.Len() - n.R
		if d < 0 {
			return d, n.Mat
		}
		return d, AIR
	case Box:
		d := boxSDF(p, n.Extent)
		if d < 0 {
			return d, n.Mat
		}
		return d, AIR
	}
	panic(fmt.Sprintf("csg: unreachable node tag %d", n.Tag))
}

// DistBatch evaluates up to MaxBatch points at once against n, writing
// results into outDist/outMat (which must have length >= len(points)).
// It pushes the query box down the tree exactly as Dist does, but
// amortizes the tree-walk cost across the whole batch. The isosurface
// extractor does not call it; it samples through Dist one point at a time.
//
// normalDist is Dist's per-point UNION normal-quality threshold, one entry
// per point; pass nil to disable it for the whole batch (every point then
// falls back to plain min, exactly as a nil `normaldist` pointer does in
// _examples/original_source/src/csg.cpp's `distr`).
func DistBatch(n *Node, points []mathx.Vec3f, outDist []float32, outMat []Material, box mathx.AABB, normalDist []float32) {
	if len(points) > MaxBatch {
		panic("csg: batch exceeds MaxBatch")
	}
	for i := range points {
		outDist[i] = 1e30
		outMat[i] = AIR
	}
	distBatchR(n, points, outDist, outMat, box, normalDist)
}

func distBatchR(n *Node, pos []mathx.Vec3f, dist []float32, mat []Material, box mathx.AABB, normalDist []float32) {
	isec := box.Intersection(n.Box)
	if isec.Empty() {
		return
	}
	num := len(pos)
	switch n.Tag {
	case Union:
		tempd := make([]float32, num)
		tempm := make([]Material, num)
		distBatchR(n.Left, pos, dist, mat, box, normalDist)
		for i := 0; i < num; i++ {
			tempd[i] = 1e30
			tempm[i] = AIR
		}
		distBatchR(n.Right, pos, tempd, tempm, box, normalDist)
		for i := 0; i < num; i++ {
			dl, dr := dist[i], tempd[i]
			if normalDist != nil && absT(dr) < normalDist[i] {
				dist[i], mat[i] = dr, tempm[i]
				continue
			}
			if dl <= 0 && dr <= 0 {
				if dr <= dl {
					dist[i], mat[i] = dr, tempm[i]
				}
				continue
			}
			if dr < dl {
				dist[i], mat[i] = dr, tempm[i]
			}
		}
		return
	case Intersection:
		tempd := make([]float32, num)
		tempm := make([]Material, num)
		distBatchR(n.Left, pos, dist, mat, box, normalDist)
		for i := 0; i < num; i++ {
			tempd[i] = 1e30
			tempm[i] = AIR
		}
		distBatchR(n.Right, pos, tempd, tempm, box, normalDist)
		for i := 0; i < num; i++ {
			d := maxT(dist[i], tempd[i])
			if d >= 0 {
				dist[i], mat[i] = d, AIR
			} else {
				dist[i] = d
			}
		}
		return
	case Difference:
		tempd := make([]float32, num)
		tempm := make([]Material, num)
		distBatchR(n.Left, pos, dist, mat, box, normalDist)
		for i := 0; i < num; i++ {
			tempd[i] = 1e30
			tempm[i] = AIR
		}
		distBatchR(n.Right, pos, tempd, tempm, box, normalDist)
		for i := 0; i < num; i++ {
			d := maxT(dist[i], -tempd[i])
			if d >= 0 {
				dist[i], mat[i] = d, AIR
			} else {
				dist[i] = d
			}
		}
		return
	case Replace:
		tempd := make([]float32, num)
		tempm := make([]Material, num)
		distBatchR(n.Left, pos, dist, mat, box, normalDist)
		for i := 0; i < num; i++ {
			tempd[i] = 1e30
			tempm[i] = AIR
		}
		distBatchR(n.Right, pos, tempd, tempm, box, normalDist)
		for i := 0; i < num; i++ {
			if dist[i] < 0 && tempm[i] != AIR {
				mat[i] = tempm[i]
			}
		}
		return
	case Translation:
		tpos := make([]mathx.Vec3f, num)
		for i := range pos {
			tpos[i] = pos[i].Sub(n.P)
		}
		tbox := mathx.AABB{PMin: box.PMin.Sub(n.P), PMax: box.PMax.Sub(n.P)}
		distBatchR(n.Left, tpos, dist, mat, tbox, normalDist)
		return
	case Rotation:
		qc := n.Q.Conjugate()
		rpos := make([]mathx.Vec3f, num)
		for i := range pos {
			rpos[i] = mathx.RotateVec3(qc, pos[i])
		}
		distBatchR(n.Left, rpos, dist, mat, mathx.AllAABB(), normalDist)
		return
	case Plane:
		for i := range pos {
			d := pos[i].Dot(n.Plane.XYZ()) + n.Plane.W
			dist[i] = d
			if d < 0 {
				mat[i] = n.Mat
			}
		}
		return
	case CylinderXZ:
		for i := range pos {
			d := pos[i].XZ().Sub(n.Center).Len() - n.R
			dist[i] = d
			if d < 0 {
				mat[i] = n.Mat
			}
		}
		return
	case CylinderXY:
		for i := range pos {
			d := pos[i].XY().Sub(n.Center).Len() - n.R
			dist[i] = d
			if d < 0 {
				mat[i] = n.Mat
			}
		}
		return
	case CylinderYZ:
		for i := range pos {
			d := pos[i].YZ().Sub(n.Center).Len() - n.R
			dist[i] = d
			if d < 0 {
				mat[i] = n.Mat
			}
		}
		return
	case Sphere:
		for i := range pos {
			d := pos[i].Len() - n.R
			dist[i] = d
			if d < 0 {
				mat[i] = n.Mat
			}
		}
		return
	case Box:
		for i := range pos {
			d := boxSDF(pos[i], n.Extent)
			dist[i] = d
			if d < 0 {
				mat[i] = n.Mat
			}
		}
		return
	}
	panic(fmt.Sprintf("csg: unreachable node tag %d", n.Tag))
}

// DefaultGradStep is the central-difference step used to estimate surface
// normals from the distance field.
const DefaultGradStep = 1e-3

// Gradient estimates the surface normal at p via a central-difference
// sample of the distance field along each axis.
func Gradient(n *Node, p mathx.Vec3f) mathx.Vec3f {
	const h = DefaultGradStep
	dx := func(d mathx.Vec3f) float32 {
		v, _ := Dist(n, p.Add(d), mathx.AllAABB(), 0)
		return v
	}
	g := mathx.Vec3f{
		X: dx(mathx.Vec3f{X: h}) - dx(mathx.Vec3f{X: -h}),
		Y: dx(mathx.Vec3f{Y: h}) - dx(mathx.Vec3f{Y: -h}),
		Z: dx(mathx.Vec3f{Z: h}) - dx(mathx.Vec3f{Z: -h}),
	}
	return g.Normalize()
}
