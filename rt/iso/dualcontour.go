package iso

import (
	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/mathx"
)

// falsePosition refines the root of df along segment p0-p1 (v0, v1 its
// field values) by false-position iteration, grounded on
// iso_dc.cpp's false_position(): MAX_STEPS=4, converging early once the
// resampled density is within toleranceDensity or the bracket has
// collapsed to toleranceDist2.
func falsePosition(df DistanceField, grid Grid, org, p0, p1 mathx.Vec3f, v0, v1 float32) mathx.Vec3f {
	if v1 < 0 {
		p0, p1 = p1, p0
		v0, v1 = v1, v0
	}
	p := p1
	for step := 0; step < maxSteps; step++ {
		denom := v1 - v0
		if denom == 0 {
			break
		}
		p = p1.Sub(p1.Sub(p0).Mul(v1 / denom))
		sample := mathx.Vec3f{
			X: org.X + grid.CellSize.X*p.X,
			Y: org.Y + grid.CellSize.Y*p.Y,
			Z: org.Z + grid.CellSize.Z*p.Z,
		}
		density := df(sample) + 1e-4
		if abs32(density) < toleranceDensity {
			break
		}
		if dist2(p0, p1) < toleranceDist2 {
			break
		}
		if density < 0 {
			p0, v0 = p, density
		} else {
			p1, v1 = p, density
		}
	}
	return p
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func dist2(a, b mathx.Vec3f) float32 {
	d := a.Sub(b)
	return d.LenSqr()
}

// leafMesher runs the per-slice dual contouring sweep over one dense
// SubGrid-sized cube of the distance field, matching the rolling
// two-slice window of iso_dc.cpp's slicebuilder: only the current and
// previous z-slice of cube corners are kept live at any time.
type leafMesher struct {
	df  DistanceField
	mat MaterialField
	g   Grid

	cubePerSlice int
	qefPos       []mathx.Vec3f
	qefNor       []mathx.Vec3f
	qefIdx       []uint32
	qefValid     []bool

	pos []mathx.Vec3f
	nor []mathx.Vec3f
	mtl []csg.Material
	idx []uint32
}

func newLeafMesher(df DistanceField, mat MaterialField, g Grid) *leafMesher {
	cps := (g.Dim[0] + 1) * (g.Dim[1] + 1)
	return &leafMesher{
		df: df, mat: mat, g: g,
		cubePerSlice: cps,
		qefPos:       make([]mathx.Vec3f, 2*cps),
		qefNor:       make([]mathx.Vec3f, 2*cps),
		qefIdx:       make([]uint32, 2*cps),
		qefValid:     make([]bool, 2*cps),
	}
}

func (s *leafMesher) index(x, y, z int) int {
	offset := (z % 2) * s.cubePerSlice
	return offset + y*(s.g.Dim[0]+1) + x
}

func (s *leafMesher) initSlice(z int) {
	offset := (z % 2) * s.cubePerSlice
	for i := 0; i < s.cubePerSlice; i++ {
		s.qefIdx[offset+i] = noIndex
		s.qefValid[offset+i] = false
	}
	for y := 0; y <= s.g.Dim[1]; y++ {
		for x := 0; x <= s.g.Dim[0]; x++ {
			xyz := [3]int{x, y, z}
			var cell [8]float32
			for i := 0; i < 8; i++ {
				c := [3]int{x + icubev[i][0], y + icubev[i][1], z + icubev[i][2]}
				cell[i] = s.df(s.g.Vertex(c))
			}
			pos, nor, ok := s.qefVertex(cell, xyz)
			if ok {
				idx := s.index(x, y, z)
				s.qefPos[idx] = s.g.Vertex(xyz).Add(pos.MulElem(s.g.CellSize))
				s.qefNor[idx] = nor.Normalize()
				s.qefValid[idx] = true
			}
		}
	}
}

func (s *leafMesher) qefVertex(cell [8]float32, xyz [3]int) (pos, nor mathx.Vec3f, ok bool) {
	cubeindex := 0
	for i := 0; i < 8; i++ {
		if cell[i] < 0 {
			cubeindex |= 1 << uint(i)
		}
	}
	if edgetable[cubeindex] == 0 {
		return mathx.Vec3f{}, mathx.Vec3f{}, false
	}

	org := s.g.Vertex(xyz)
	var p, n [12]mathx.Vec3f
	mass := mathx.Vec3f{}
	num := 0
	for i := 0; i < 12; i++ {
		if edgetable[cubeindex]&(1<<uint(i)) == 0 {
			continue
		}
		idx0, idx1 := interptable[i][0], interptable[i][1]
		v0, v1 := cell[idx0], cell[idx1]
		p0, p1 := fcubev[idx0], fcubev[idx1]
		pr := falsePosition(s.df, s.g, org, p0, p1, v0, v1)
		sample := org.Add(pr.MulElem(s.g.CellSize))
		p[num] = pr
		n[num] = Gradient(s.df, sample, DefaultGradStep)
		nor = nor.Add(n[num])
		mass = mass.Add(p[num])
		num++
	}
	mass = mass.Mul(1 / float32(num))

	var mat [12][3]float64
	var vec [12]float64
	for i := 0; i < num; i++ {
		mat[i][0], mat[i][1], mat[i][2] = float64(n[i].X), float64(n[i].Y), float64(n[i].Z)
		d := p[i].Sub(mass)
		vec[i] = float64(n[i].Dot(d))
	}
	off := qefEvaluate(mat, vec, num)
	pos = mass.Add(mathx.Vec3f{X: float32(off[0]), Y: float32(off[1]), Z: float32(off[2])})
	nor = nor.Abs().Normalize()
	return pos, nor, true
}

var axis = [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (s *leafMesher) tesselateSlice(z int) {
	for y := 1; y <= s.g.Dim[1]; y++ {
		for x := 1; x <= s.g.Dim[0]; x++ {
			xyz := [3]int{x, y, z}
			startSign := 0
			if s.df(s.g.Vertex(xyz)) < 0 {
				startSign = 1
			}
			for i := 0; i < 3; i++ {
				end := [3]int{xyz[0] + axis[i][0], xyz[1] + axis[i][1], xyz[2] + axis[i][2]}
				endSign := 0
				if s.df(s.g.Vertex(end)) < 0 {
					endSign = 1
				}
				if startSign == endSign {
					continue
				}
				axis0, axis1 := axis[(i+1)%3], axis[(i+2)%3]
				corners := [4][3]int{
					xyz,
					{xyz[0] - axis0[0], xyz[1] - axis0[1], xyz[2] - axis0[2]},
					{xyz[0] - axis0[0] - axis1[0], xyz[1] - axis0[1] - axis1[1], xyz[2] - axis0[2] - axis1[2]},
					{xyz[0] - axis1[0], xyz[1] - axis1[1], xyz[2] - axis1[2]},
				}
				var quad [4]uint32
				for j, c := range corners {
					ci := s.index(c[0], c[1], c[2])
					if !s.qefValid[ci] {
						continue
					}
					if s.qefIdx[ci] == noIndex {
						s.qefIdx[ci] = uint32(len(s.pos))
						s.pos = append(s.pos, s.qefPos[ci])
						s.nor = append(s.nor, s.qefNor[ci])
						s.mtl = append(s.mtl, s.mat(s.qefPos[ci]))
					}
					quad[j] = s.qefIdx[ci]
				}
				for _, t := range quadtotris {
					s.idx = append(s.idx, quad[t])
				}
			}
		}
	}
}

// build runs the full rolling two-slice sweep described above, filling s's
// raw (unsegmented) vertex/normal/material/index buffers, then splits
// vertices along sharp creases.
func (s *leafMesher) build() {
	s.initSlice(0)
	for z := 1; z <= s.g.Dim[2]; z++ {
		s.initSlice(z)
		s.tesselateSlice(z)
	}
	s.creaseSharpEdges()
}
