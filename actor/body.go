package actor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var ErrNilShape = errors.New("body has no shape")

// Body is a polytope placed in the world. The polytope may be shared between
// bodies; the transform and the cached bounds are per body.
type Body struct {
	ID        int
	Transform Transform
	Shape     *Polytope

	// Static bodies never form a pair with another static body
	Static bool

	aabb AABB
}

// NewBody creates a body and computes its bounds. The rotation is normalized,
// a zero quaternion becomes the identity.
func NewBody(id int, transform Transform, shape *Polytope) (*Body, error) {
	if shape == nil {
		return nil, errors.Wrapf(ErrNilShape, "body %d", id)
	}

	transform.Rotation = transform.Rotation.Normalize()
	b := &Body{
		ID:        id,
		Transform: transform,
		Shape:     shape,
	}
	b.ComputeAABB(0)

	return b, nil
}

// ComputeAABB refreshes the cached bounds from the current transform, grown by
// margin so that pairs closer than margin are reported by the broad phase.
func (b *Body) ComputeAABB(margin float64) {
	b.aabb = b.Shape.Bounds(b.Transform).Expand(margin)
}

func (b *Body) GetAABB() AABB {
	return b.aabb
}

// SetPose moves the body. Bounds are refreshed on the next ComputeAABB.
func (b *Body) SetPose(position mgl64.Vec3, rotation mgl64.Quat) {
	b.Transform.Position = position
	b.Transform.Rotation = rotation.Normalize()
}

// WorldVertices returns the vertices placed by the body's transform.
func (b *Body) WorldVertices() []mgl64.Vec3 {
	local := b.Shape.Vertices()
	world := make([]mgl64.Vec3, len(local))
	for i, v := range local {
		world[i] = b.Transform.Apply(v)
	}
	return world
}
