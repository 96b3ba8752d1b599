package mathx

import "math"

// Software SIMD lanes: width-4 and width-8 float vectors plus their mask
// type, modeled on the original engine's ssef/avxf/sseb/avxb (see
// _examples/original_source/src/base/{ssef,avxf,sseb,avxb}.hpp) rather than
// on any real hardware intrinsic package — no library in the retrieval
// pack exposes Go SIMD intrinsics, so these are concrete, width-specific
// float/mask types with the same algebraic surface the original gives its
// hardware vectors, implemented as plain scalar loops over a fixed-size
// array. There is deliberately no "blend" method: select() is the only
// lane-wise branch, matching the source.

// F32x4 is a 4-wide float lane, backing the SSE-equivalent traversal path.
type F32x4 [4]float32

func Broadcast4(v float32) F32x4 {
	return F32x4{v, v, v, v}
}

func Load4(p []float32) F32x4 {
	var r F32x4
	copy(r[:], p[:4])
	return r
}

func (a F32x4) Store(p []float32) { copy(p[:4], a[:]) }

func (a F32x4) Add(b F32x4) (r F32x4) {
	for i := range a {
		r[i] = a[i] + b[i]
	}
	return
}
func (a F32x4) Sub(b F32x4) (r F32x4) {
	for i := range a {
		r[i] = a[i] - b[i]
	}
	return
}
func (a F32x4) Mul(b F32x4) (r F32x4) {
	for i := range a {
		r[i] = a[i] * b[i]
	}
	return
}
func (a F32x4) Min(b F32x4) (r F32x4) {
	for i := range a {
		r[i] = minT(a[i], b[i])
	}
	return
}
func (a F32x4) Max(b F32x4) (r F32x4) {
	for i := range a {
		r[i] = maxT(a[i], b[i])
	}
	return
}

// Rcp is the hardware-approximation-plus-Newton-step form from ssef.hpp's
// rcp(): r2 = r+r - r*r*a. In software r already equals 1/a exactly, so the
// refinement is a no-op identity, kept for parity with the original
// instruction sequence.
func (a F32x4) Rcp() (r F32x4) {
	for i := range a {
		e := 1 / a[i]
		r[i] = e + e - e*e*a[i]
	}
	return
}

// Mask4 is a per-lane boolean mask, the only thing comparisons produce.
type Mask4 [4]bool

func (a F32x4) Lt(b F32x4) (m Mask4) {
	for i := range a {
		m[i] = a[i] < b[i]
	}
	return
}
func (a F32x4) Ge(b F32x4) (m Mask4) {
	for i := range a {
		m[i] = a[i] >= b[i]
	}
	return
}

// Select is the only branch allowed across lanes: m[i] picks t[i], else f[i].
func Select4(m Mask4, t, f F32x4) (r F32x4) {
	for i := range m {
		if m[i] {
			r[i] = t[i]
		} else {
			r[i] = f[i]
		}
	}
	return
}

func (m Mask4) Any() bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}
func (m Mask4) All() bool {
	for _, v := range m {
		if !v {
			return false
		}
	}
	return true
}
func (m Mask4) None() bool { return !m.Any() }

func (m Mask4) Popcount() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Movemask packs the mask into the low N bits of a uint32, the software
// analogue of _mm_movemask_ps.
func (m Mask4) Movemask() uint32 {
	var r uint32
	for i, v := range m {
		if v {
			r |= 1 << uint(i)
		}
	}
	return r
}

// F32x8 is the 8-wide, AVX-equivalent lane.
type F32x8 [8]float32

func Broadcast8(v float32) (r F32x8) {
	for i := range r {
		r[i] = v
	}
	return
}

func Load8(p []float32) F32x8 {
	var r F32x8
	copy(r[:], p[:8])
	return r
}

func (a F32x8) Store(p []float32) { copy(p[:8], a[:]) }

func (a F32x8) Add(b F32x8) (r F32x8) {
	for i := range a {
		r[i] = a[i] + b[i]
	}
	return
}
func (a F32x8) Sub(b F32x8) (r F32x8) {
	for i := range a {
		r[i] = a[i] - b[i]
	}
	return
}
func (a F32x8) Mul(b F32x8) (r F32x8) {
	for i := range a {
		r[i] = a[i] * b[i]
	}
	return
}
func (a F32x8) Min(b F32x8) (r F32x8) {
	for i := range a {
		r[i] = minT(a[i], b[i])
	}
	return
}
func (a F32x8) Max(b F32x8) (r F32x8) {
	for i := range a {
		r[i] = maxT(a[i], b[i])
	}
	return
}
func (a F32x8) Rcp() (r F32x8) {
	for i := range a {
		e := 1 / a[i]
		r[i] = e + e - e*e*a[i]
	}
	return
}

type Mask8 [8]bool

func (a F32x8) Lt(b F32x8) (m Mask8) {
	for i := range a {
		m[i] = a[i] < b[i]
	}
	return
}
func (a F32x8) Ge(b F32x8) (m Mask8) {
	for i := range a {
		m[i] = a[i] >= b[i]
	}
	return
}

func Select8(m Mask8, t, f F32x8) (r F32x8) {
	for i := range m {
		if m[i] {
			r[i] = t[i]
		} else {
			r[i] = f[i]
		}
	}
	return
}

func (m Mask8) Any() bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}
func (m Mask8) All() bool {
	for _, v := range m {
		if !v {
			return false
		}
	}
	return true
}
func (m Mask8) None() bool { return !m.Any() }
func (m Mask8) Popcount() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
func (m Mask8) Movemask() uint32 {
	var r uint32
	for i, v := range m {
		if v {
			r |= 1 << uint(i)
		}
	}
	return r
}

// Rsqrt backs Normalize(v) = v * rsqrt(dot(v,v)); callers must guard zero.
func Rsqrt(x float32) float32 {
	return float32(1 / math.Sqrt(float64(x)))
}
