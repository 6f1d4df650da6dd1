package world

import (
	"math"
	"sort"

	"github.com/akmonengine/motor/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// maxCellsPerAxis bounds the cells a single AABB may cover, larger bodies are clipped
const maxCellsPerAxis = 64

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies overlapping it
type Cell struct {
	bodyIndices []int
}

// Pair of bodies potentially in contact
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// SpatialGrid is a uniform hashed grid used for the broad phase and ray queries.
// Planes are never inserted: their bounds are unbounded.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// NewSpatialGrid rounds numCells up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// cellRange returns the cells covered by an AABB, clipped to maxCellsPerAxis around its minimum
func (sg *SpatialGrid) cellRange(aabb actor.AABB) (CellKey, CellKey) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	maxCell.X = min(maxCell.X, minCell.X+maxCellsPerAxis)
	maxCell.Y = min(maxCell.Y, minCell.Y+maxCellsPerAxis)
	maxCell.Z = min(maxCell.Z, minCell.Z+maxCellsPerAxis)
	return minCell, maxCell
}

// Insert adds a body to every cell it overlaps
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	minCell, maxCell := sg.cellRange(body.Shape.GetAABB())

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs returns each overlapping pair once, in body index order
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make([]bool, len(bodies))

	for bodyIdx, bodyA := range bodies {
		clear(seen)
		minCell, maxCell := sg.cellRange(bodyA.Shape.GetAABB())

		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					cellIdx := sg.hashCell(CellKey{x, y, z})

					for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
						// (A,B) only, never (B,A)
						if otherIdx <= bodyIdx || seen[otherIdx] {
							continue
						}
						seen[otherIdx] = true

						bodyB := bodies[otherIdx]
						if bodyA.BodyType == actor.BodyTypeStatic && bodyB.BodyType == actor.BodyTypeStatic {
							continue
						}
						if bodyA.Shape.GetAABB().Overlaps(bodyB.Shape.GetAABB()) {
							pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
						}
					}
				}
			}
		}
	}

	return pairs
}

// RayCandidates walks the cells crossed by the ray (3D DDA) and returns the indices of
// the bodies stored in them, deduplicated, in traversal order
func (sg *SpatialGrid) RayCandidates(origin, direction mgl64.Vec3, maxDistance float64, bodyCount int) []int {
	seen := make([]bool, bodyCount)
	var candidates []int

	visit := func(cell CellKey) {
		for _, idx := range sg.cells[sg.hashCell(cell)].bodyIndices {
			if idx < bodyCount && !seen[idx] {
				seen[idx] = true
				candidates = append(candidates, idx)
			}
		}
	}

	cell := sg.worldToCell(origin)
	var step [3]int
	var tMax, tDelta [3]float64
	current := [3]int{cell.X, cell.Y, cell.Z}

	for axis := 0; axis < 3; axis++ {
		switch {
		case direction[axis] > 0:
			step[axis] = 1
			boundary := float64(current[axis]+1) * sg.cellSize
			tMax[axis] = (boundary - origin[axis]) / direction[axis]
			tDelta[axis] = sg.cellSize / direction[axis]
		case direction[axis] < 0:
			step[axis] = -1
			boundary := float64(current[axis]) * sg.cellSize
			tMax[axis] = (boundary - origin[axis]) / direction[axis]
			tDelta[axis] = -sg.cellSize / direction[axis]
		default:
			tMax[axis] = math.Inf(1)
			tDelta[axis] = math.Inf(1)
		}
	}

	// Bounded to avoid spinning on degenerate directions
	maxSteps := 3*int(maxDistance/sg.cellSize) + 3
	for i := 0; i <= maxSteps; i++ {
		visit(CellKey{current[0], current[1], current[2]})

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if tMax[axis] > maxDistance {
			break
		}

		current[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}

	return candidates
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
