// Render implements the shading model from SPEC_FULL.md §7: a missed
// pixel is (0,0,0,0); a hit pixel is the material base color scaled by
// (n.l) clamped to [0,1], zeroed out entirely if a shadow ray toward the
// light is occluded, with alpha forced to 255.
package scene

import (
	"context"
	"runtime"

	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/mathx"
	"github.com/bsegovia/miniq-rt/rt/trace"
	"golang.org/x/sync/errgroup"
)

// tileRows is the C5 scheduler's tile height: each errgroup worker renders
// a contiguous band of scanlines, the simplest tiling that still gives
// every worker a cache-local, non-overlapping slice of PixelBuffer.Pix.
const tileRows = 16

// PixelBuffer is a width*height*4 byte RGBA buffer, row-major, top to
// bottom, matching the BMP writer's expected input layout.
type PixelBuffer struct {
	Width, Height int
	Pix           []byte
}

func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// Dimensions and RGBA satisfy rt/bmpio.PixelSource without rt/scene
// importing rt/bmpio.
func (p *PixelBuffer) Dimensions() (width, height int) { return p.Width, p.Height }
func (p *PixelBuffer) RGBA() []byte                    { return p.Pix }

func (p *PixelBuffer) set(x, y int, r, g, b, a byte) {
	i := (y*p.Width + x) * 4
	p.Pix[i+0] = r
	p.Pix[i+1] = g
	p.Pix[i+2] = b
	p.Pix[i+3] = a
}

const shadowBias = 1e-3

// packetWidth is the ray-packet tile width C5 traces per dispatch: a row of
// pixels at a time, capped at trace.MaxRayNum and reusing the CSG
// evaluator's own 64-wide batch stride (spec §9's "batch size is a tunable
// constant") since neither budget has a reason to disagree.
const packetWidth = 64

// Render casts rays through s.Camera and writes the shaded result into a
// new PixelBuffer. Scanlines are split into tileRows-tall bands and
// rendered concurrently: every band writes a disjoint slice of buf.Pix, so
// no synchronization is needed beyond the errgroup barrier at the end.
// Within a band, each row is traced packetWidth pixels at a time through
// trace.SelectKernel's packet/SIMD kernels (spec §2's "iterates C5 per
// tile of the output image"), not one scalar ray per pixel.
func (s *Scene) Render(width, height int) *PixelBuffer {
	buf := NewPixelBuffer(width, height)
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y0 := 0; y0 < height; y0 += tileRows {
		y0 := y0
		y1 := y0 + tileRows
		if y1 > height {
			y1 = height
		}
		g.Go(func() error {
			s.renderRows(buf, width, y0, y1)
			return nil
		})
	}
	_ = g.Wait() // renderRows is infallible; error is always nil
	return buf
}

func (s *Scene) renderRows(buf *PixelBuffer, width, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x0 := 0; x0 < width; x0 += packetWidth {
			x1 := x0 + packetWidth
			if x1 > width {
				x1 = width
			}
			s.renderTile(buf, width, y, x0, x1)
		}
	}
}

// renderTile traces one row-segment of pixels as a single ray packet:
// build the primary packet, dispatch through the widest kernel
// SelectKernel publishes for that packet size, then build a second packet
// for the shadow rays of only the pixels that actually hit something
// (spec §3: "rays whose primary hit missed are excluded from shadow
// computation") and dispatch that through its own kernel.
func (s *Scene) renderTile(buf *PixelBuffer, width, y, x0, x1 int) {
	n := x1 - x0
	org := make([]mathx.Vec3f, n)
	dir := make([]mathx.Vec3f, n)
	for i := 0; i < n; i++ {
		org[i], dir[i] = s.Camera.PrimaryRay(x0+i, y, width, buf.Height)
	}

	primary := trace.NewPacket(org, dir, 1e-4, 1e30)
	hits := trace.SelectKernel(primary.RayNum).Closest(primary, s.BVH)

	hitPoint := make([]mathx.Vec3f, n)
	hitNormal := make([]mathx.Vec3f, n)
	shadowSlot := make([]int, n)
	var shadowOrg, shadowDir []mathx.Vec3f
	for i := 0; i < n; i++ {
		shadowSlot[i] = -1
		if hits.TriID[i] == trace.NoHit {
			continue
		}
		p := org[i].Add(dir[i].Mul(hits.T[i]))
		nrm := mathx.Vec3f{X: hits.Nx[i], Y: hits.Ny[i], Z: hits.Nz[i]}
		if nrm.Dot(dir[i]) > 0 {
			nrm = nrm.Neg() // face the normal toward the viewer
		}
		hitPoint[i], hitNormal[i] = p, nrm
		shadowSlot[i] = len(shadowOrg)
		shadowOrg = append(shadowOrg, p.Add(nrm.Mul(shadowBias)))
		shadowDir = append(shadowDir, s.Light.Direction)
	}

	var shadow *trace.PacketShadow
	if len(shadowOrg) > 0 {
		shadowPkt := trace.NewPacket(shadowOrg, shadowDir, 1e-4, 1e30)
		shadow = trace.SelectKernel(shadowPkt.RayNum).Occluded(shadowPkt, s.BVH)
	}

	for i := 0; i < n; i++ {
		x := x0 + i
		if hits.TriID[i] == trace.NoHit {
			buf.set(x, y, 0, 0, 0, 0)
			continue
		}
		occluded := shadow != nil && shadowSlot[i] >= 0 && shadow.Occluded[shadowSlot[i]]
		buf.set(x, y, s.shade(hitNormal[i], dir[i], hits.MatID[i], occluded))
	}
}

func (s *Scene) shade(n, dir mathx.Vec3f, matID uint32, occluded bool) (r, g, b, a byte) {
	nl := n.Dot(s.Light.Direction)
	if nl < 0 || occluded {
		nl = 0
	}

	mat := s.Mats.At(csg.Material(matID))
	r = clampByte(float32(mat.BaseColor[0]) * nl * s.Light.Color.X)
	g = clampByte(float32(mat.BaseColor[1]) * nl * s.Light.Color.Y)
	b = clampByte(float32(mat.BaseColor[2]) * nl * s.Light.Color.Z)
	a = 255
	return
}

func clampByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}
