package shapes

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mathext"
)

// EllipsoidStats returns the exact volume and surface area of the
// ellipsoid with semi-axes a, b and c.
func EllipsoidStats(a, b, c float64) (vol, area float64, err error) {
	if !(a > 0 && b > 0 && c > 0) {
		return 0, 0, fmt.Errorf("%w: semi-axes %v, %v, %v", ErrInvalidSize, a, b, c)
	}
	vol = 4 * math.Pi * a * b * c / 3

	s := []float64{a, b, c}
	sort.Sort(sort.Reverse(sort.Float64Slice(s)))
	a, b, c = s[0], s[1], s[2]

	switch {
	case a == c:
		return vol, 4 * math.Pi * a * a, nil
	case a == b:
		// Oblate spheroid: the elliptic parameter is 1.
		e := math.Sqrt(1 - c*c/(a*a))
		return vol, 2 * math.Pi * a * a * (1 + (1-e*e)/e*math.Atanh(e)), nil
	}

	phi := math.Acos(c / a)
	m := a * a * (b*b - c*c) / (b * b * (a*a - c*c))
	sin, cos := math.Sincos(phi)
	area = 2*math.Pi*c*c + 2*math.Pi*a*b/sin*(mathext.EllipticE(phi, m)*sin*sin+mathext.EllipticF(phi, m)*cos*cos)
	return vol, area, nil
}
