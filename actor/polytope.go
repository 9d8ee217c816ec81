package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var (
	ErrEmptyVertexSet  = errors.New("empty vertex set")
	ErrNonFiniteVertex = errors.New("non-finite vertex")
	ErrTooFewSides     = errors.New("prism needs at least 3 sides")
)

// Polytope is the convex hull of an ordered vertex set, expressed in the
// shape's local frame. It is immutable once built, so a single Polytope may be
// shared by any number of bodies and read concurrently.
//
// The vertex order matters: support queries break ties by keeping the first
// vertex encountered.
type Polytope struct {
	vertices []mgl64.Vec3
	centroid mgl64.Vec3
}

// NewPolytope copies vertices into a new Polytope. The hull is never computed;
// interior points are allowed and simply never win a support query.
func NewPolytope(vertices []mgl64.Vec3) (*Polytope, error) {
	if len(vertices) == 0 {
		return nil, errors.WithStack(ErrEmptyVertexSet)
	}

	p := &Polytope{vertices: make([]mgl64.Vec3, len(vertices))}
	for i, v := range vertices {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, errors.Wrapf(ErrNonFiniteVertex, "vertex %d %v", i, v)
			}
		}
		p.vertices[i] = v
		p.centroid = p.centroid.Add(v)
	}
	p.centroid = p.centroid.Mul(1 / float64(len(vertices)))

	return p, nil
}

// MustPolytope is like NewPolytope but panics on invalid input.
func MustPolytope(vertices []mgl64.Vec3) *Polytope {
	p, err := NewPolytope(vertices)
	if err != nil {
		panic(err)
	}
	return p
}

// Box returns the 8 corners of a box centered on the origin.
func Box(halfExtents mgl64.Vec3) *Polytope {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()
	return MustPolytope([]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	})
}

func Tetrahedron(a, b, c, d mgl64.Vec3) *Polytope {
	return MustPolytope([]mgl64.Vec3{a, b, c, d})
}

// Prism returns a right prism whose cross-section is a regular polygon with the
// given number of sides inscribed in a circle of the given radius. The bottom
// ring (z = -halfHeight) comes first, then the top ring.
func Prism(sides int, radius, halfHeight float64) (*Polytope, error) {
	if sides < 3 {
		return nil, errors.Wrapf(ErrTooFewSides, "got %d", sides)
	}

	vertices := make([]mgl64.Vec3, 0, 2*sides)
	for _, z := range [2]float64{-halfHeight, halfHeight} {
		for i := 0; i < sides; i++ {
			angle := 2 * math.Pi * float64(i) / float64(sides)
			vertices = append(vertices, mgl64.Vec3{radius * math.Cos(angle), radius * math.Sin(angle), z})
		}
	}
	return NewPolytope(vertices)
}

// Polygon lifts planar points to z = 0, for planar queries.
func Polygon(points []mgl64.Vec2) (*Polytope, error) {
	vertices := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		vertices[i] = p.Vec3(0)
	}
	return NewPolytope(vertices)
}

// Vertices returns the local vertex list. It must not be modified.
func (p *Polytope) Vertices() []mgl64.Vec3 {
	return p.vertices
}

func (p *Polytope) Len() int {
	return len(p.vertices)
}

// Centroid returns the mean of the vertices in local space.
func (p *Polytope) Centroid() mgl64.Vec3 {
	return p.centroid
}

// Bounds computes the world-space AABB of the polytope placed by transform.
func (p *Polytope) Bounds(transform Transform) AABB {
	worldVertex := transform.Apply(p.vertices[0])
	min := worldVertex
	max := worldVertex

	for _, v := range p.vertices[1:] {
		worldVertex = transform.Apply(v)

		min[0] = math.Min(min[0], worldVertex[0])
		min[1] = math.Min(min[1], worldVertex[1])
		min[2] = math.Min(min[2], worldVertex[2])

		max[0] = math.Max(max[0], worldVertex[0])
		max[1] = math.Max(max[1], worldVertex[1])
		max[2] = math.Max(max[2], worldVertex[2])
	}

	return AABB{Min: min, Max: max}
}
