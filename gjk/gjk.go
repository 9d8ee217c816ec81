// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) distance algorithm
// for convex vertex sets, using the signed-volume distance sub-algorithm.
//
// Given two point sets under independent rotations and a relative translation,
// GJK walks the Minkowski difference A - B towards the origin while keeping a
// working simplex of at most ndim+1 points. On exit it reports whether the
// origin is enclosed (overlap) and, when it is not, the minimum separating
// vector together with one witness point on each shape.
//
// The implementation allocates nothing: the simplex is a fixed array plus an
// active-slot bitmask, and every query is self-contained, so any number of
// queries may run concurrently.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Montanari, Petrinic, Barbieri: "Improving the GJK Algorithm for Faster and
//     More Reliable Distance Queries Between Convex Objects" (2017)
package gjk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultEps is the relative tolerance on the gap between the current
	// distance estimate and its lower bound.
	DefaultEps = 1e-8

	// DefaultOmega is the absolute tolerance under which the distance is
	// considered zero.
	DefaultOmega = 1e-4
)

// Dimension selects the instantiation of the algorithm. Dim2 works on planar
// shapes (every vertex has z == 0 and rotations are about the z axis), Dim3 on
// general shapes.
type Dimension interface {
	Dim2 | Dim3
	// MaxPoints is ndim+1, the largest number of affinely independent points.
	MaxPoints() int
}

type Dim2 struct{}

func (Dim2) MaxPoints() int { return 3 }

type Dim3 struct{}

func (Dim3) MaxPoints() int { return 4 }

func maxPoints[D Dimension]() int {
	var d D
	return d.MaxPoints()
}

// Config holds the numeric tolerances of a query. Callers that need
// reproducible results across machines must keep them fixed.
type Config struct {
	Eps   float64
	Omega float64

	// DegeneracyCheck stops the loop as soon as a support point equals a
	// point already stored in the simplex. Disabling it reproduces the
	// behaviour of builds where the check is compiled out for throughput;
	// termination is then bounded by the tolerances and the iteration cap only.
	DegeneracyCheck bool
}

// DefaultConfig returns the fixed tolerances used by Distance and Distance2D.
func DefaultConfig() Config {
	return Config{
		Eps:             DefaultEps,
		Omega:           DefaultOmega,
		DegeneracyCheck: true,
	}
}

// Simplex is the working set of a query. Slot i is meaningful only while
// Used.Has(i); its Lambdas entry is its barycentric weight and IndexA/IndexB
// are the vertices of each shape that produced it.
type Simplex struct {
	W       [maxSlots]mgl64.Vec3
	Lambdas [maxSlots]float64
	Used    ActiveSet
	IndexA  [maxSlots]int
	IndexB  [maxSlots]int

	// written marks every slot that has held a point, live or not. The
	// degeneracy check looks at all of them to catch cycles through points
	// that were dropped earlier.
	written ActiveSet
}

// seen reports whether w is stored in any slot written so far.
func (s *Simplex) seen(w mgl64.Vec3) bool {
	for i := 0; i < maxSlots; i++ {
		if s.written.Has(i) && s.W[i] == w {
			return true
		}
	}
	return false
}

// insert stores w in the first free slot among the first n.
func (s *Simplex) insert(n int, w mgl64.Vec3, indexA, indexB int) bool {
	for i := 0; i < n; i++ {
		if !s.Used.Has(i) {
			s.W[i] = w
			s.IndexA[i] = indexA
			s.IndexB[i] = indexB
			s.Used = s.Used.With(i)
			s.written = s.written.With(i)
			return true
		}
	}
	return false
}

// point returns Σ λ_i·W_i over the live slots.
func (s *Simplex) point() mgl64.Vec3 {
	return combine(&s.W, &s.Lambdas, s.Used)
}

// Result is the outcome of a query, expressed in the frame where shape A sits
// at the origin.
type Result struct {
	// Separation is WitnessA - WitnessB. It is the minimum separating vector
	// when Overlap is false and meaningless otherwise.
	Separation mgl64.Vec3
	WitnessA   mgl64.Vec3
	WitnessB   mgl64.Vec3

	// Success is false when the iteration cap was hit; the other fields then
	// hold the last estimate and must not be trusted.
	Success bool
	Overlap bool

	// Iterations is the number of support evaluations performed. It never
	// exceeds len(verts1)+len(verts2)+1.
	Iterations int

	Simplex Simplex
}

// Distance returns the length of the separating vector.
func (r Result) Distance() float64 {
	return r.Separation.Len()
}

// Distance runs a three-dimensional query with the default tolerances.
func Distance(verts1, verts2 []mgl64.Vec3, q1, q2 mgl64.Quat, dr mgl64.Vec3) Result {
	return GJK[Dim3](verts1, verts2, q1, q2, dr, DefaultConfig())
}

// Distance2D runs a planar query with the default tolerances.
func Distance2D(verts1, verts2 []mgl64.Vec3, q1, q2 mgl64.Quat, dr mgl64.Vec3) Result {
	return GJK[Dim2](verts1, verts2, q1, q2, dr, DefaultConfig())
}

// GJK computes the distance between the convex hulls of verts1, rotated by q1,
// and verts2, rotated by q2 then translated by dr.
//
// Algorithm overview:
//  1. Start from the vector between the two centroids
//  2. Find the support point w of A - B along -v
//  3. Stop if w repeats a stored point, if the lower bound u is within Eps of
//     |v|, or if |v| < Omega
//  4. Otherwise add w to the simplex, reduce it with the signed-volume
//     sub-algorithm and set v to the closest point of the reduced simplex
//
// Overlap is reported when the final simplex is full-dimensional or when the
// loop stopped on |v| < Omega: in both cases the origin lies in the hull of
// the final simplex, within Omega.
//
// verts1 and verts2 must not be empty; GJK panics otherwise.
func GJK[D Dimension](verts1, verts2 []mgl64.Vec3, q1, q2 mgl64.Quat, dr mgl64.Vec3, cfg Config) Result {
	if len(verts1) == 0 || len(verts2) == 0 {
		panic("gjk: empty vertex set")
	}
	n := maxPoints[D]()

	var mean1, mean2 mgl64.Vec3
	for _, p := range verts1 {
		mean1 = mean1.Add(q1.Rotate(p))
	}
	for _, p := range verts2 {
		mean2 = mean2.Add(q2.Rotate(p).Add(dr))
	}
	v := mean1.Mul(1 / float64(len(verts1))).Sub(mean2.Mul(1 / float64(len(verts2))))
	if v.Len() < cfg.Omega {
		// Fallback if the centroids coincide
		v = mgl64.Vec3{1, 0, 0}
	}

	result := Result{Success: true}
	s := &result.Simplex
	u := 0.0
	maxIterations := len(verts1) + len(verts2) + 1

	for {
		if result.Iterations == maxIterations {
			result.Success = false
			break
		}
		result.Iterations++

		vnorm := v.Len()
		if s.Used != 0 && vnorm < cfg.Omega {
			break
		}

		// support_{A-B}(-v) = support_A(-v) - support_B(v)
		i1 := Support(verts1, v.Mul(-1), q1, mgl64.Vec3{})
		i2 := Support(verts2, v, q2, dr)
		w := q1.Rotate(verts1[i1]).Sub(q2.Rotate(verts2[i2]).Add(dr))

		// u is a lower bound on the distance. Until the first point is in,
		// v is only a guess and the stopping tests do not apply.
		u = math.Max(u, v.Dot(w)/vnorm)
		if s.Used != 0 {
			if cfg.DegeneracyCheck && s.seen(w) {
				break
			}
			if vnorm-u <= cfg.Eps*vnorm {
				break
			}
		}

		s.insert(n, w, i1, i2)
		subalgorithm[D](s)
		v = s.point()
	}

	for i := 0; i < n; i++ {
		if !s.Used.Has(i) {
			continue
		}
		lambda := s.Lambdas[i]
		result.WitnessA = result.WitnessA.Add(q1.Rotate(verts1[s.IndexA[i]]).Mul(lambda))
		result.WitnessB = result.WitnessB.Add(q2.Rotate(verts2[s.IndexB[i]]).Add(dr).Mul(lambda))
	}
	result.Separation = v
	result.Overlap = s.Used.Count() == n || v.Len() < cfg.Omega

	return result
}
