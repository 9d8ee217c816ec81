package gjk

import "github.com/go-gl/mathgl/mgl64"

// Support returns the index of the vertex of verts that lies furthest along
// direction once rotated by q and translated by shift.
//
// Ties keep the first vertex encountered, so the result only depends on the
// vertex order. verts must not be empty.
func Support(verts []mgl64.Vec3, direction mgl64.Vec3, q mgl64.Quat, shift mgl64.Vec3) int {
	index := 0
	maxDist := q.Rotate(verts[0]).Add(shift).Dot(direction)
	for i := 1; i < len(verts); i++ {
		if dist := q.Rotate(verts[i]).Add(shift).Dot(direction); dist > maxDist {
			maxDist = dist
			index = i
		}
	}
	return index
}
