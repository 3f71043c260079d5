package glm

import "golang.org/x/mobile/exp/f32"

// Rad is an angle in radians
type Rad float32

func (r Rad) Sincos() (sin, cos float32) {
	return f32.Sin(float32(r)), f32.Cos(float32(r))
}
