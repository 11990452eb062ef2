package d3

import "gonum.org/v1/gonum/spatial/r3"

// Triangle is a triangle in space.
type Triangle [3]r3.Vec

// Cross returns the unnormalised face normal (v1-v0)x(v2-v0), whose
// length is twice the triangle area.
func (t Triangle) Cross() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return 0.5 * r3.Norm(t.Cross())
}

// Normal returns the unit face normal following the right hand rule.
func (t Triangle) Normal() r3.Vec {
	return r3.Unit(t.Cross())
}

// LongestEdge2 returns the squared length of the longest edge.
func (t Triangle) LongestEdge2() float64 {
	l := r3.Norm2(r3.Sub(t[1], t[0]))
	if e := r3.Norm2(r3.Sub(t[2], t[1])); e > l {
		l = e
	}
	if e := r3.Norm2(r3.Sub(t[0], t[2])); e > l {
		l = e
	}
	return l
}

// Degenerate reports whether the triangle has coincident or collinear
// vertices. tol is relative to the squared longest edge.
func (t Triangle) Degenerate(tol float64) bool {
	l := t.LongestEdge2()
	if l == 0 {
		return true
	}
	return r3.Norm(t.Cross()) <= tol*l
}
