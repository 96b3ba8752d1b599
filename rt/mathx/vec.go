// Package mathx implements the vector, interval and AABB algebra shared by
// the CSG evaluator, isosurface extractor, BVH builder and packet traversal
// kernels.
//
// mgl32 (github.com/go-gl/mathgl/mgl32) already covers the float32
// vec3/mat4/quat surface the rest of the engine needs for transforms and
// camera matrices, and is used directly there. It has no generic vecN<T>,
// no interval arithmetic and no SIMD lane types, so those live here,
// written in mgl32's own idiom: value-typed structs with exported
// `X`/`Y`/`Z` fields, chainable `Add`/`Sub`/`Mul` methods.
package mathx

import "math"

// Float is the scalar element type vec2/3/4 and interval are generic over.
type Float interface {
	~float32 | ~float64
}

// Vec2 is a 2-element vector.
type Vec2[T Float] struct{ X, Y T }

func (v Vec2[T]) Add(o Vec2[T]) Vec2[T] { return Vec2[T]{v.X + o.X, v.Y + o.Y} }
func (v Vec2[T]) Sub(o Vec2[T]) Vec2[T] { return Vec2[T]{v.X - o.X, v.Y - o.Y} }
func (v Vec2[T]) Mul(s T) Vec2[T]       { return Vec2[T]{v.X * s, v.Y * s} }
func (v Vec2[T]) Dot(o Vec2[T]) T       { return v.X*o.X + v.Y*o.Y }
func (v Vec2[T]) LenSqr() T             { return v.Dot(v) }
func (v Vec2[T]) Len() T                { return T(math.Sqrt(float64(v.LenSqr()))) }

// Vec3 is a 3-element vector, the workhorse type of the CSG and iso kernels.
type Vec3[T Float] struct{ X, Y, Z T }

func (v Vec3[T]) Add(o Vec3[T]) Vec3[T] { return Vec3[T]{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3[T]) Sub(o Vec3[T]) Vec3[T] { return Vec3[T]{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3[T]) Mul(s T) Vec3[T]       { return Vec3[T]{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3[T]) MulElem(o Vec3[T]) Vec3[T] {
	return Vec3[T]{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}
func (v Vec3[T]) Dot(o Vec3[T]) T { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3[T]) Cross(o Vec3[T]) Vec3[T] {
	return Vec3[T]{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}
func (v Vec3[T]) LenSqr() T { return v.Dot(v) }
func (v Vec3[T]) Len() T    { return T(math.Sqrt(float64(v.LenSqr()))) }

// Normalize returns the unit vector. Callers must guard against a
// zero-length input; this mirrors rsqrt(dot(v,v)) without the guard, same
// as the SIMD path.
func (v Vec3[T]) Normalize() Vec3[T] {
	l := v.Len()
	return v.Mul(1 / l)
}

func (v Vec3[T]) Abs() Vec3[T] {
	return Vec3[T]{absT(v.X), absT(v.Y), absT(v.Z)}
}

func (v Vec3[T]) Neg() Vec3[T] { return Vec3[T]{-v.X, -v.Y, -v.Z} }

// Min/Max are component-wise, used by the AABB algebra.
func MinVec3[T Float](a, b Vec3[T]) Vec3[T] {
	return Vec3[T]{minT(a.X, b.X), minT(a.Y, b.Y), minT(a.Z, b.Z)}
}
func MaxVec3[T Float](a, b Vec3[T]) Vec3[T] {
	return Vec3[T]{maxT(a.X, b.X), maxT(a.Y, b.Y), maxT(a.Z, b.Z)}
}

// ReduceMin/Max/Add fold the three components down to a scalar.
func (v Vec3[T]) ReduceMin() T { return minT(v.X, minT(v.Y, v.Z)) }
func (v Vec3[T]) ReduceMax() T { return maxT(v.X, maxT(v.Y, v.Z)) }
func (v Vec3[T]) ReduceAdd() T { return v.X + v.Y + v.Z }

// Any/All test the sign of every component against a per-component
// predicate; used by the CSG box-culling "any(gt(pmin,pmax))" check.
func AnyGreater[T Float](a, b Vec3[T]) bool {
	return a.X > b.X || a.Y > b.Y || a.Z > b.Z
}
func AllLessEq[T Float](a, b Vec3[T]) bool {
	return a.X <= b.X && a.Y <= b.Y && a.Z <= b.Z
}

func (v Vec3[T]) XY() Vec2[T] { return Vec2[T]{v.X, v.Y} }
func (v Vec3[T]) XZ() Vec2[T] { return Vec2[T]{v.X, v.Z} }
func (v Vec3[T]) YZ() Vec2[T] { return Vec2[T]{v.Y, v.Z} }

// Index exposes component access by index, needed by the axis-generic
// split code in the BVH builder and the per-axis QEF assembly.
func (v Vec3[T]) Index(axis int) T {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (v *Vec3[T]) SetIndex(axis int, val T) {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
}

// Vec4 is a 4-element vector, used for plane equations (abcd) and
// homogeneous transforms.
type Vec4[T Float] struct{ X, Y, Z, W T }

func (v Vec4[T]) Add(o Vec4[T]) Vec4[T] {
	return Vec4[T]{v.X + o.X, v.Y + o.Y, v.Z + o.Z, v.W + o.W}
}
func (v Vec4[T]) Mul(s T) Vec4[T] { return Vec4[T]{v.X * s, v.Y * s, v.Z * s, v.W * s} }
func (v Vec4[T]) Dot(o Vec4[T]) T { return v.X*o.X + v.Y*o.Y + v.Z*o.Z + v.W*o.W }
func (v Vec4[T]) XYZ() Vec3[T]    { return Vec3[T]{v.X, v.Y, v.Z} }

func Vec3From4[T Float](v Vec3[T], w T) Vec4[T] { return Vec4[T]{v.X, v.Y, v.Z, w} }

func absT[T Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
func minT[T Float](a, b T) T {
	if a < b {
		return a
	}
	return b
}
func maxT[T Float](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Float32 aliases: the concrete instantiation used by every other package
// in this module, since the CSG/iso/bvh/trace pipeline runs single
// precision end to end.
type (
	Vec2f = Vec2[float32]
	Vec3f = Vec3[float32]
	Vec4f = Vec4[float32]
)
