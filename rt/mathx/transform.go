package mathx

import "github.com/go-gl/mathgl/mgl32"

// Mat3, Mat4 and Quat alias mgl32 directly rather than re-deriving matrix
// and quaternion algebra generically: the one caller, the ROTATION CSG
// node's Quat, runs in float32, and mgl32 already gives idiomatic
// quaternion construction and rotation for that single instantiation.
type (
	Mat3 = mgl32.Mat3
	Mat4 = mgl32.Mat4
	Quat = mgl32.Quat
)

// ToMgl32/FromMgl32 convert between this package's generic Vec3f and
// mgl32.Vec3 at the seam where RotateVec3 hands a point to mgl32's
// quaternion rotation.
func (v Vec3f) ToMgl32() mgl32.Vec3 { return mgl32.Vec3{v.X, v.Y, v.Z} }

func FromMgl32(v mgl32.Vec3) Vec3f { return Vec3f{v[0], v[1], v[2]} }

// RotateVec3 applies a unit quaternion rotation q to v, the ROTATION CSG
// node's per-point transform: conjugate rotation, shape-preserving.
func RotateVec3(q Quat, v Vec3f) Vec3f {
	return FromMgl32(q.Rotate(v.ToMgl32()))
}
