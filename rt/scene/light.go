// Light is adapted from
// _examples/Gekko3D-gekko/voxelrt/rt/core/light.go's GPU-facing struct,
// narrowed to a single directional key light, used for the (n.l) term
// clamped to [0,1] and for the shadow ray; there is no point light.
package scene

import "github.com/bsegovia/miniq-rt/rt/mathx"

type Light struct {
	Direction mathx.Vec3f // points from the surface toward the light
	Color     mathx.Vec3f
}

func DefaultLight() Light {
	return Light{
		Direction: mathx.Vec3f{X: -0.4, Y: -0.5, Z: 0.8}.Normalize(),
		Color:     mathx.Vec3f{X: 1, Y: 1, Z: 1},
	}
}
