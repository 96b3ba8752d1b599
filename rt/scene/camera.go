// Package scene assembles the pieces built by rt/csg, rt/iso, rt/bvh and
// rt/trace into a renderable frame: a camera, a material table, lights
// and pixel-buffer shading. BMP encoding lives in rt/bmpio.
//
// Camera is adapted from _examples/Gekko3D-gekko/voxelrt/rt/core/camera.go
// (yaw/pitch Euler state plus its forward/right vectors), extended
// with primary-ray generation for the 70-degree-fov CLI contract in
// SPEC_FULL.md §6.
package scene

import (
	"math"

	"github.com/bsegovia/miniq-rt/rt/mathx"
)

// Camera mirrors the teacher's CameraState: yaw/pitch orientation around a
// world position, Y-up, used to build primary ray directions for packet
// traversal.
type Camera struct {
	Position mathx.Vec3f
	Yaw      float32
	Pitch    float32
	FovY     float32 // radians
}

// NewCamera returns a camera at the origin looking down +Z with the CLI's
// default 70-degree vertical field of view.
func NewCamera() *Camera {
	return &Camera{FovY: 70 * math.Pi / 180}
}

func (c *Camera) Forward() mathx.Vec3f {
	return mathx.Vec3f{
		X: float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		Y: float32(math.Sin(float64(c.Pitch))),
		Z: float32(math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
	}
}

func (c *Camera) Right() mathx.Vec3f {
	return mathx.Vec3f{
		X: float32(-math.Cos(float64(c.Yaw))),
		Y: 0,
		Z: float32(math.Sin(float64(c.Yaw))),
	}
}

func (c *Camera) Up() mathx.Vec3f {
	f := c.Forward()
	r := c.Right()
	return r.Cross(f).Normalize()
}

// PrimaryRay returns the world-space ray origin and direction for a pixel at
// (px, py) in a width x height image, using a standard pinhole projection:
// ndc in [-1, 1], scaled by tan(fovY/2) and the aspect ratio.
func (c *Camera) PrimaryRay(px, py, width, height int) (org, dir mathx.Vec3f) {
	aspect := float32(width) / float32(height)
	tanHalfFov := float32(math.Tan(float64(c.FovY) / 2))

	ndcX := (2*(float32(px)+0.5)/float32(width) - 1) * aspect * tanHalfFov
	ndcY := (1 - 2*(float32(py)+0.5)/float32(height)) * tanHalfFov

	forward := c.Forward()
	right := c.Right()
	up := c.Up()

	dir = forward.Add(right.Mul(ndcX)).Add(up.Mul(ndcY)).Normalize()
	return c.Position, dir
}
