package mathx

// Interval is a closed interval [Lo, Hi], used by the interval-arithmetic
// packet traversal mode to conservatively reject BVH nodes without testing
// every ray individually.
type Interval[T Float] struct{ Lo, Hi T }

func NewInterval[T Float](lo, hi T) Interval[T] { return Interval[T]{lo, hi} }
func PointInterval[T Float](v T) Interval[T]    { return Interval[T]{v, v} }

func (i Interval[T]) Add(j Interval[T]) Interval[T] {
	return Interval[T]{i.Lo + j.Lo, i.Hi + j.Hi}
}
func (i Interval[T]) Sub(j Interval[T]) Interval[T] {
	return Interval[T]{i.Lo - j.Hi, i.Hi - j.Lo}
}

// Mul is the four-corners form: the product interval is bounded by the min
// and max of the four corner products, since neither interval's sign is
// assumed fixed.
func (i Interval[T]) Mul(j Interval[T]) Interval[T] {
	a, b, c, d := i.Lo*j.Lo, i.Lo*j.Hi, i.Hi*j.Lo, i.Hi*j.Hi
	lo := minT(minT(a, b), minT(c, d))
	hi := maxT(maxT(a, b), maxT(c, d))
	return Interval[T]{lo, hi}
}

// Rcp returns the component-wise [1/hi, 1/lo] reciprocal. ok is false when
// the interval straddles zero, in which case the caller must fall back to
// [-inf,+inf] for that component (spec §4.1).
func (i Interval[T]) Rcp() (r Interval[T], ok bool) {
	if i.Lo <= 0 && i.Hi >= 0 {
		return Interval[T]{}, false
	}
	return Interval[T]{1 / i.Hi, 1 / i.Lo}, true
}

func (i Interval[T]) Union(j Interval[T]) Interval[T] {
	return Interval[T]{minT(i.Lo, j.Lo), maxT(i.Hi, j.Hi)}
}

func (i Interval[T]) Intersection(j Interval[T]) Interval[T] {
	return Interval[T]{maxT(i.Lo, j.Lo), minT(i.Hi, j.Hi)}
}

func (i Interval[T]) Empty() bool { return i.Lo > i.Hi }

// UnboundedInterval is the fallback [-2^64,+2^64], a finite stand-in for
// [-inf,+inf], used whenever Rcp's sign guard fails.
func UnboundedInterval[T Float]() Interval[T] {
	var big T
	big = 1
	for k := 0; k < 64; k++ {
		big *= 2
	}
	return Interval[T]{-big, big}
}

type Interval3f struct{ X, Y, Z Interval[float32] }

func PointInterval3f(v Vec3f) Interval3f {
	return Interval3f{PointInterval(v.X), PointInterval(v.Y), PointInterval(v.Z)}
}

func (a Interval3f) Index(axis int) Interval[float32] {
	switch axis {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}
