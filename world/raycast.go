package world

import (
	"math"

	"github.com/akmonengine/motor/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// LayerMask selects collision layers, bit i stands for layer i
type LayerMask uint32

// AllLayers matches every layer
const AllLayers LayerMask = math.MaxUint32

func (m LayerMask) Contains(layer int) bool {
	if layer < 0 || layer > 31 {
		return false
	}
	return m&(1<<uint(layer)) != 0
}

// RaycastHit is the closest surface found by Raycast
type RaycastHit struct {
	Body     *actor.RigidBody
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Raycast returns the closest hit along direction within maxDistance.
// Trigger bodies and bodies outside mask are ignored, as is any shape containing origin.
func (w *World) Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool) {
	length := direction.Len()
	if length < 1e-12 || maxDistance <= 0 || math.IsNaN(length) {
		return RaycastHit{}, false
	}
	direction = direction.Mul(1.0 / length)

	if w.SpatialGrid == nil {
		w.SpatialGrid = NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_CELLS)
	}

	finite := make([]*actor.RigidBody, 0, len(w.Bodies))
	var candidates []*actor.RigidBody
	for _, body := range w.Bodies {
		if body.IsTrigger || !mask.Contains(body.Layer) {
			continue
		}
		if body.Shape.Type() == actor.ShapeTypePlane {
			candidates = append(candidates, body)
		} else {
			finite = append(finite, body)
		}
	}

	// Bodies move between steps, the grid is rebuilt for the query
	w.SpatialGrid.Clear()
	for i, body := range finite {
		w.SpatialGrid.Insert(i, body)
	}
	for _, idx := range w.SpatialGrid.RayCandidates(origin, direction, maxDistance, len(finite)) {
		candidates = append(candidates, finite[idx])
	}

	var closest RaycastHit
	found := false
	for _, body := range candidates {
		if body.Shape.Type() != actor.ShapeTypePlane {
			if _, ok := body.Shape.GetAABB().IntersectRay(origin, direction, maxDistance); !ok {
				continue
			}
		}

		hit, ok := body.Raycast(origin, direction, maxDistance)
		if !ok || (found && hit.Distance >= closest.Distance) {
			continue
		}

		closest = RaycastHit{Body: body, Point: hit.Point, Normal: hit.Normal, Distance: hit.Distance}
		found = true
	}

	return closest, found
}
