package glm

type Vec2[T numeric] [2]T

func (lhs Vec2[T]) Add(rhs Vec2[T]) Vec2[T] {
	return Vec2[T]{
		lhs[0] + rhs[0],
		lhs[1] + rhs[1],
	}
}

// Mul multiplies component wise
func (lhs Vec2[T]) Mul(rhs Vec2[T]) Vec2[T] {
	return Vec2[T]{
		lhs[0] * rhs[0],
		lhs[1] * rhs[1],
	}
}

// Rotate rotates the vector counter clockwise around the origin.
func Rotate(v Vec2f, angle Rad) Vec2f {
	sin, cos := angle.Sincos()

	return Vec2f{
		v[0]*cos - v[1]*sin,
		v[0]*sin + v[1]*cos,
	}
}
