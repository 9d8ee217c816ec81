package gjk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// The signed-volume sub-algorithms below never modify w. They receive the
// current active set by value and return the reduced one, writing barycentric
// weights for the surviving slots into lambdas. Callers that try several
// reductions keep their own copies of the set and the weights.
//
// Reference: Montanari, Petrinic, Barbieri, "Improving the GJK Algorithm for
// Faster and More Reliable Distance Queries Between Convex Objects" (2017).

// subalgorithm dispatches on the number of live points in s and updates
// s.Used and s.Lambdas so that s.point() is the point of the active hull
// closest to the origin.
func subalgorithm[D Dimension](s *Simplex) {
	switch s.Used.Count() {
	case 1:
		for i := 0; i < maxPoints[D](); i++ {
			if s.Used.Has(i) {
				s.Lambdas[i] = 1
			}
		}
	case 2:
		s.Used = s1d[D](&s.W, s.Used, &s.Lambdas)
	case 3:
		s.Used = s2d[D](&s.W, s.Used, &s.Lambdas)
	default:
		// Only reachable when MaxPoints() == 4.
		s.Used = s3d(&s.W, s.Used, &s.Lambdas)
	}
}

// s1d handles a segment (two live slots).
func s1d[D Dimension](w *[maxSlots]mgl64.Vec3, used ActiveSet, lambdas *[maxSlots]float64) ActiveSet {
	i1, i2 := -1, -1
	for i := 0; i < maxPoints[D](); i++ {
		if !used.Has(i) {
			continue
		}
		if i1 < 0 {
			i1 = i
		} else {
			i2 = i
			break
		}
	}

	// Project on the axis along which the segment is longest.
	t := w[i2].Sub(w[i1])
	axis := 0
	negT := -t[0]
	if math.Abs(t[1]) > math.Abs(negT) {
		axis = 1
		negT = -t[1]
	}
	if math.Abs(t[2]) > math.Abs(negT) {
		axis = 2
		negT = -t[2]
	}

	if negT == 0 {
		// Coincident points: either one is the closest point.
		lambdas[i1] = 1
		return used.Without(i2)
	}

	// Coordinate of the origin's projection on the line, and the signed
	// lengths obtained by replacing each end point by that projection.
	p := (w[i2].Dot(t)/t.Dot(t))*negT + w[i2][axis]
	c1 := p - w[i2][axis]
	c2 := w[i1][axis] - p

	keep1 := compareSigns(negT, c1)
	keep2 := compareSigns(negT, c2)
	switch {
	case keep1 && keep2:
		lambdas[i1] = c1 / negT
		lambdas[i2] = c2 / negT
		return used
	case keep1:
		// The origin projects beyond the first point.
		lambdas[i1] = 1
		return used.Without(i2)
	default:
		lambdas[i2] = 1
		return used.Without(i1)
	}
}

// s2d handles a triangle (three live slots).
func s2d[D Dimension](w *[maxSlots]mgl64.Vec3, used ActiveSet, lambdas *[maxSlots]float64) ActiveSet {
	var idx [3]int
	k := 0
	for i := 0; i < maxPoints[D]() && k < 3; i++ {
		if used.Has(i) {
			idx[k] = i
			k++
		}
	}
	p0, p1, p2 := w[idx[0]], w[idx[1]], w[idx[2]]

	var (
		mu   float64
		c    [3]float64
		keep [3]bool
	)
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if nn := n.Dot(n); nn > 0 {
		proj := n.Mul(p0.Dot(n) / nn)

		// Project on the coordinate plane with the largest signed area.
		ax, ay := 1, 2
		mu = signedArea(p0, p1, p2, 1, 2)
		if m := signedArea(p0, p1, p2, 0, 2); math.Abs(m) > math.Abs(mu) {
			mu, ax, ay = m, 0, 2
		}
		if m := signedArea(p0, p1, p2, 0, 1); math.Abs(m) > math.Abs(mu) {
			mu, ax, ay = m, 0, 1
		}

		c[0] = signedArea(proj, p1, p2, ax, ay)
		c[1] = signedArea(p0, proj, p2, ax, ay)
		c[2] = signedArea(p0, p1, proj, ax, ay)
		for j := range c {
			keep[j] = compareSigns(mu, c[j])
		}
	}

	if mu != 0 && keep[0] && keep[1] && keep[2] {
		for j, i := range idx {
			lambdas[i] = c[j] / mu
		}
		return used
	}

	// The projection falls outside the triangle (or the triangle is flat).
	// Every vertex whose sign disagrees is a removal candidate; keep the
	// reduction whose closest point is nearest to the origin.
	best := ActiveSet(0)
	bestDist := math.Inf(1)
	found := false
	for j, i := range idx {
		if mu != 0 && keep[j] {
			continue
		}
		var trial [maxSlots]float64
		candidate := s1d[D](w, used.Without(i), &trial)
		if d := combine(w, &trial, candidate).LenSqr(); !found || d < bestDist {
			found = true
			best = candidate
			bestDist = d
			*lambdas = trial
		}
	}
	return best
}

// s3d handles a tetrahedron (all four slots live). It only exists in the
// three-dimensional instantiation.
func s3d(w *[maxSlots]mgl64.Vec3, used ActiveSet, lambdas *[maxSlots]float64) ActiveSet {
	// Cofactors of the 4x4 matrix made of the points as columns with a row
	// of ones appended, expanded along that last row.
	var c [4]float64
	c[0] = det3(w[3], w[2], w[1])
	c[1] = det3(w[0], w[2], w[3])
	c[2] = det3(w[3], w[1], w[0])
	c[3] = det3(w[0], w[1], w[2])
	dm := c[0] + c[1] + c[2] + c[3]

	var keep [4]bool
	inside := dm != 0
	for j := range c {
		keep[j] = compareSigns(dm, c[j])
		inside = inside && keep[j]
	}

	if inside {
		for j := range c {
			lambdas[j] = c[j] / dm
		}
		return used
	}

	best := ActiveSet(0)
	bestDist := math.Inf(1)
	found := false
	for j := range c {
		if dm != 0 && keep[j] {
			continue
		}
		var trial [maxSlots]float64
		candidate := s2d[Dim3](w, used.Without(j), &trial)
		if d := combine(w, &trial, candidate).LenSqr(); !found || d < bestDist {
			found = true
			best = candidate
			bestDist = d
			*lambdas = trial
		}
	}
	return best
}
