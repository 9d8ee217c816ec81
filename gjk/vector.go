package gjk

import (
	"math/bits"

	"github.com/go-gl/mathgl/mgl64"
)

// maxSlots is the working simplex capacity of the widest instantiation (Dim3).
// Narrower instantiations only ever touch the first MaxPoints() slots.
const maxSlots = 4

// ActiveSet is a bitmask over the slots of a Simplex. Bit i set means slot i
// holds a live point; the content of every other slot must not be read.
type ActiveSet uint8

func (s ActiveSet) Has(i int) bool {
	return s&(1<<i) != 0
}

func (s ActiveSet) With(i int) ActiveSet {
	return s | 1<<i
}

func (s ActiveSet) Without(i int) ActiveSet {
	return s &^ (1 << i)
}

// Count returns the number of live slots.
func (s ActiveSet) Count() int {
	return bits.OnesCount8(uint8(s))
}

// compareSigns reports whether a and b lie on the same side of zero.
// Zero is grouped with the positive values.
func compareSigns(a, b float64) bool {
	return (a >= 0) == (b >= 0)
}

// combine returns Σ λ_i·w_i over the slots marked in used.
func combine(w *[maxSlots]mgl64.Vec3, lambdas *[maxSlots]float64, used ActiveSet) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < maxSlots; i++ {
		if used.Has(i) {
			p = p.Add(w[i].Mul(lambdas[i]))
		}
	}
	return p
}

// signedArea returns twice the signed area of the triangle abc projected on
// the (i, j) coordinate plane.
func signedArea(a, b, c mgl64.Vec3, i, j int) float64 {
	return b[i]*c[j] + a[i]*b[j] + c[i]*a[j] -
		b[i]*a[j] - c[i]*b[j] - a[i]*c[j]
}

// det3 returns the determinant of the 3x3 matrix whose rows are a, b and c.
func det3(a, b, c mgl64.Vec3) float64 {
	return a[0]*b[1]*c[2] + b[0]*c[1]*a[2] + c[0]*a[1]*b[2] -
		c[0]*b[1]*a[2] - b[0]*a[1]*c[2] - a[0]*c[1]*b[2]
}
