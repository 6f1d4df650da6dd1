package bind

import (
	"github.com/akmonengine/motor"
	"github.com/akmonengine/motor/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Query casts the controller's rays into a physics world
type Query struct {
	World *world.World
}

var _ motor.SpatialQuery = Query{}

func (q Query) Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask motor.LayerMask) (motor.RaycastHit, bool) {
	hit, ok := q.World.Raycast(origin, direction, maxDistance, world.LayerMask(mask))
	if !ok {
		return motor.RaycastHit{}, false
	}

	return motor.RaycastHit{Point: hit.Point, Normal: hit.Normal, Distance: hit.Distance}, true
}
