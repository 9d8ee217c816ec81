package proximity

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/proximity/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies whose bounds touch it
type Cell struct {
	bodyIndices []int
}

// Pair is a pair of bodies whose bounds overlap and that need a narrow-phase query
type Pair struct {
	BodyA *actor.Body
	BodyB *actor.Body
}

// SpatialGrid is a uniform hashed grid used as broad phase. Several cells may
// share a bucket; the AABB test in candidate filters the false positives.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// NewSpatialGrid creates a grid with numCells buckets, rounded up to a power of two
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

// Insert registers a body in every cell covered by its cached AABB
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.Body) {
	sg.forEachCell(body.GetAABB(), func(cellIdx int) {
		sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
	})
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

// FindPairs returns every candidate pair once, with BodyA before BodyB in bodies
func (sg *SpatialGrid) FindPairs(bodies []*actor.Body) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make([]bool, len(bodies))

	for bodyIdx := range bodies {
		clear(seen)
		sg.visitNeighbours(bodies, bodyIdx, seen, func(p Pair) {
			pairs = append(pairs, p)
		})
	}

	return pairs
}

// FindPairsParallel splits bodies between numWorkers goroutines and streams the
// candidate pairs. The channel is closed once every worker is done.
func (sg *SpatialGrid) FindPairsParallel(bodies []*actor.Body, numWorkers int) <-chan Pair {
	var wg sync.WaitGroup
	pairsChan := make(chan Pair, numWorkers*10)

	bodiesPerWorker := len(bodies) / numWorkers
	if bodiesPerWorker == 0 {
		bodiesPerWorker = 1
	}

	for w := 0; w < numWorkers; w++ {
		startIdx := w * bodiesPerWorker
		endIdx := startIdx + bodiesPerWorker
		if w == numWorkers-1 {
			endIdx = len(bodies)
		}
		if startIdx >= len(bodies) {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			seen := make([]bool, len(bodies))
			for bodyIdx := start; bodyIdx < end; bodyIdx++ {
				clear(seen)
				sg.visitNeighbours(bodies, bodyIdx, seen, func(p Pair) {
					pairsChan <- p
				})
			}
		}(startIdx, endIdx)
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

// visitNeighbours emits the pairs formed by bodies[bodyIdx] and the bodies of
// higher index sharing one of its cells. seen must be cleared by the caller.
func (sg *SpatialGrid) visitNeighbours(bodies []*actor.Body, bodyIdx int, seen []bool, emit func(Pair)) {
	bodyA := bodies[bodyIdx]

	sg.forEachCell(bodyA.GetAABB(), func(cellIdx int) {
		for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
			// Ordre déterministe: (A,B) only, never (B,A)
			if otherIdx <= bodyIdx || seen[otherIdx] {
				continue
			}
			seen[otherIdx] = true

			bodyB := bodies[otherIdx]
			if candidate(bodyA, bodyB) {
				emit(Pair{BodyA: bodyA, BodyB: bodyB})
			}
		}
	})
}

func candidate(bodyA, bodyB *actor.Body) bool {
	if bodyA.Static && bodyB.Static {
		return false
	}
	return bodyA.GetAABB().Overlaps(bodyB.GetAABB())
}

func (sg *SpatialGrid) forEachCell(aabb actor.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

// worldToCell converts a world position into cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell maps a cell to its bucket
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
