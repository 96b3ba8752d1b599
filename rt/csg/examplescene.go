package csg

import "github.com/bsegovia/miniq-rt/rt/mathx"

// ExampleScene rebuilds the literal demo level from
// _examples/original_source/csg.cpp's makescene()/makescene0(): a box with
// a sphere carved out of it, unioned with a stack of capped cylinders and
// notched by a second box, then unioned with a small arcade of punched-out
// boxes. Kept as a supplemented feature (the
// distillation dropped the concrete scene, but any complete build of this
// system needs a scene to exercise C2/C3/C4/C5 against).
func ExampleScene() *Node {
	t := mathx.Vec3f{X: 7, Y: 5, Z: 7}
	s := NewSphere(4.2, MatSimple)
	b0 := NewBox(mathx.Vec3f{X: 4, Y: 4, Z: 4}, MatSimple)
	d0 := NewTranslation(t, s)
	d1 := NewTranslation(t, b0)
	var c *Node = NewDifference(d1, d0)

	for i := 0; i < 16; i++ {
		center := mathx.Vec2f{X: 2, Y: 2 + 2*float32(i)}
		r := float32(1)
		ymin := float32(1)
		ymax := 2*float32(i) + 2
		cyl := CappedCylinder(center, r, ymin, ymax, MatSimple)
		c = NewUnion(c, cyl)
	}

	b := NewBox(mathx.Vec3f{X: 3.5, Y: 4, Z: 3.5}, MatSimple)
	scene0 := NewDifference(c, NewTranslation(mathx.Vec3f{X: 2, Y: 5, Z: 18}, b))

	big := NewBox(mathx.Vec3f{X: 3, Y: 4, Z: 20}, MatSimple)
	cut := NewTranslation(mathx.Vec3f{Y: -2}, NewBox(mathx.Vec3f{X: 2, Y: 2, Z: 20}, MatSimple))
	bigp := NewDifference(big, cut)
	bigp = NewTranslation(mathx.Vec3f{X: 16, Y: 4, Z: 10}, bigp)

	cxy := NewCylinderXY(mathx.Vec2f{}, 2, MatSimple)
	cxy = NewTranslation(mathx.Vec3f{X: 16, Y: 4, Z: 10}, cxy)
	arcade := NewDifference(bigp, cxy)
	for i := 0; i < 7; i++ {
		pos := mathx.Vec3f{X: 16, Y: 3.5, Z: 7 + 3*float32(i)}
		hole := NewBox(mathx.Vec3f{X: 3, Y: 1, Z: 1}, MatSimple)
		arcade = NewDifference(arcade, NewTranslation(pos, hole))
	}

	return NewUnion(scene0, arcade)
}
