package proximity

import (
	"sort"
	"testing"

	"github.com/akmonengine/proximity/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origine", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positif", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negatif", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"fractionnaire", mgl64.Vec3{0.5, 0.5, 0.5}, CellKey{0, 0, 0}},
		{"grand", mgl64.Vec3{100.7, -200.3, 50.1}, CellKey{100, -201, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16) // 16 cells, mask = 15

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origine", CellKey{0, 0, 0}, 0},
		{"simple", CellKey{1, 2, 3}, 0},
		{"negatif", CellKey{-1, -2, -3}, 13},
		{"grand", CellKey{100, 200, 300}, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.hashCell(tt.key)
			if result < 0 || result >= len(grid.cells) {
				t.Errorf("hashCell(%v) = %d, out of range [0, %d)", tt.key, result, len(grid.cells))
			}
			if result != tt.expected {
				t.Errorf("hashCell(%v) = %d, want %d", tt.key, result, tt.expected)
			}
		})
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {16, 16}, {17, 32}, {1000, 1024},
	}

	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func createTestCube(t *testing.T, id int, position mgl64.Vec3, half float64) *actor.Body {
	t.Helper()

	body, err := actor.NewBody(id, actor.Transform{Position: position, Rotation: mgl64.QuatIdent()}, actor.Box(mgl64.Vec3{half, half, half}))
	if err != nil {
		t.Fatalf("NewBody(%d): %v", id, err)
	}
	return body
}

func TestInsertSingleBody(t *testing.T) {
	grid := NewSpatialGrid(1.0, 1024)
	body := createTestCube(t, 1, mgl64.Vec3{0.5, 0.5, 0.5}, 0.8)
	grid.Insert(0, body)

	minCell := grid.worldToCell(body.GetAABB().Min)
	maxCell := grid.worldToCell(body.GetAABB().Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := grid.hashCell(CellKey{x, y, z})
				found := false
				for _, idx := range grid.cells[cellIdx].bodyIndices {
					if idx == 0 {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("body not found in cell %v", CellKey{x, y, z})
				}
			}
		}
	}
}

func TestClear(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)
	for i := 0; i < 5; i++ {
		grid.Insert(i, createTestCube(t, i, mgl64.Vec3{float64(i), 0, 0}, 0.4))
	}

	grid.Clear()

	for i, cell := range grid.cells {
		if len(cell.bodyIndices) != 0 {
			t.Errorf("cell %d not cleared: %v", i, cell.bodyIndices)
		}
	}
}

func TestSortCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	grid.cells[3].bodyIndices = append(grid.cells[3].bodyIndices, 5, 1, 3, 2)

	grid.SortCells()

	if !sort.IntsAreSorted(grid.cells[3].bodyIndices) {
		t.Errorf("cell not sorted: %v", grid.cells[3].bodyIndices)
	}
}

func collectPairs(ch <-chan Pair) []Pair {
	pairs := make([]Pair, 0)
	for pair := range ch {
		pairs = append(pairs, pair)
	}
	return pairs
}

func TestFindPairs(t *testing.T) {
	tests := []struct {
		name     string
		bodies   func(t *testing.T) []*actor.Body
		expected int
	}{
		{
			name: "separated",
			bodies: func(t *testing.T) []*actor.Body {
				return []*actor.Body{
					createTestCube(t, 1, mgl64.Vec3{0, 0, 0}, 0.4),
					createTestCube(t, 2, mgl64.Vec3{10, 10, 10}, 0.4),
				}
			},
			expected: 0,
		},
		{
			name: "overlapping bounds",
			bodies: func(t *testing.T) []*actor.Body {
				return []*actor.Body{
					createTestCube(t, 1, mgl64.Vec3{0, 0, 0}, 0.4),
					createTestCube(t, 2, mgl64.Vec3{0.5, 0.5, 0.5}, 0.4),
				}
			},
			expected: 1,
		},
		{
			name: "both static",
			bodies: func(t *testing.T) []*actor.Body {
				a := createTestCube(t, 1, mgl64.Vec3{0, 0, 0}, 0.4)
				b := createTestCube(t, 2, mgl64.Vec3{0.5, 0, 0}, 0.4)
				a.Static = true
				b.Static = true
				return []*actor.Body{a, b}
			},
			expected: 0,
		},
		{
			name: "cluster spanning cells",
			bodies: func(t *testing.T) []*actor.Body {
				return []*actor.Body{
					createTestCube(t, 1, mgl64.Vec3{0.9, 0.9, 0}, 0.3),
					createTestCube(t, 2, mgl64.Vec3{1.1, 0.9, 0}, 0.3),
					createTestCube(t, 3, mgl64.Vec3{0.9, 1.1, 0}, 0.3),
					createTestCube(t, 4, mgl64.Vec3{5, 5, 5}, 0.3),
				}
			},
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies := tt.bodies(t)

			grid := NewSpatialGrid(1.0, 64)
			for i, body := range bodies {
				grid.Insert(i, body)
			}
			grid.SortCells()

			sequential := grid.FindPairs(bodies)
			if len(sequential) != tt.expected {
				t.Errorf("FindPairs: expected %d pairs, got %d", tt.expected, len(sequential))
			}

			for _, workers := range []int{1, 2, 8} {
				parallel := collectPairs(grid.FindPairsParallel(bodies, workers))
				if len(parallel) != tt.expected {
					t.Errorf("FindPairsParallel(%d): expected %d pairs, got %d", workers, tt.expected, len(parallel))
				}
			}
		})
	}
}

func TestFindPairsOrder(t *testing.T) {
	bodies := []*actor.Body{
		createTestCube(t, 7, mgl64.Vec3{0, 0, 0}, 0.5),
		createTestCube(t, 3, mgl64.Vec3{0.5, 0, 0}, 0.5),
	}
	grid := NewSpatialGrid(1.0, 64)
	for i, body := range bodies {
		grid.Insert(i, body)
	}

	pairs := grid.FindPairs(bodies)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	// Pairs follow the order of the slice, not the ids
	if pairs[0].BodyA != bodies[0] || pairs[0].BodyB != bodies[1] {
		t.Errorf("unexpected pair order: %d/%d", pairs[0].BodyA.ID, pairs[0].BodyB.ID)
	}
}

func TestLargeBodySpanningManyCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 4096)
	large := createTestCube(t, 1, mgl64.Vec3{0, 0, 0}, 5)
	small := createTestCube(t, 2, mgl64.Vec3{4, 4, 4}, 0.2)
	bodies := []*actor.Body{large, small}
	for i, body := range bodies {
		grid.Insert(i, body)
	}

	pairs := grid.FindPairs(bodies)
	if len(pairs) != 1 {
		t.Errorf("expected 1 pair, got %d", len(pairs))
	}
}
