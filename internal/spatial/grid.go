// Package spatial provides the uniform 2D grid used for both collision
// queries and LOS ray traversal (spec.md §4.1). Cells are stored in a
// flat, row-major slice exactly the way the teacher's SpatialGrid lays
// out its dense cell array; we extend it to bin two kinds of occupant
// (static obstacles and mobile entities) and to serve ray traversal.
package spatial

import (
	"math"

	"losgame/internal/world"
)

// Grid is a uniform, fixed-cell-size index over the XZ plane. Y is
// ignored for binning; entities and obstacles are binned by footprint.
type Grid struct {
	worldSize float64 // full extent of the world on each axis
	cellSize  float64
	cols      int // == rows, grid is square

	obstacleCells [][]*world.Obstacle // cells[row*cols+col]
	entityCells   [][]uint32

	// entityCell tracks each live entity's current packed cell key so
	// moveEntity can no-op when the entity hasn't crossed a cell boundary,
	// and so removeEntity knows which cell to evict from without a scan.
	entityCell map[uint32]int

	// nearby is the precomputed 3x3 union cache described in spec.md
	// §4.1: one slice per cell, built once after all obstacles are
	// inserted. Empty (nil) until BuildNearbyCache is called.
	nearby [][]*world.Obstacle
}

// NewGrid builds an empty grid covering [-worldSize/2, +worldSize/2] on
// both axes, divided into cellSize-sized square cells.
func NewGrid(worldSize, cellSize float64) *Grid {
	cols := int(math.Ceil(worldSize / cellSize))
	if cols < 1 {
		cols = 1
	}

	total := cols * cols
	g := &Grid{
		worldSize:     worldSize,
		cellSize:      cellSize,
		cols:          cols,
		obstacleCells: make([][]*world.Obstacle, total),
		entityCells:   make([][]uint32, total),
		entityCell:    make(map[uint32]int),
	}
	return g
}

// Cols returns the number of cells per axis.
func (g *Grid) Cols() int { return g.cols }

// Locate returns the (cellX, cellZ) indices containing world position
// (x, z), clamped to the grid bounds (spec.md §4.1).
func (g *Grid) Locate(x, z float64) (cellX, cellZ int) {
	half := g.worldSize / 2
	cellX = int(math.Floor((x + half) / g.cellSize))
	cellZ = int(math.Floor((z + half) / g.cellSize))
	return g.clamp(cellX), g.clamp(cellZ)
}

func (g *Grid) clamp(c int) int {
	if c < 0 {
		return 0
	}
	if c >= g.cols {
		return g.cols - 1
	}
	return c
}

// packedKey packs (cellX, cellZ) into a single int: cellX*10000 + cellZ,
// matching spec.md §4.1's "avoids allocating a textual key" rationale.
func packedKey(cellX, cellZ int) int {
	return cellX*10000 + cellZ
}

func (g *Grid) index(cellX, cellZ int) int {
	return cellZ*g.cols + cellX
}

// InsertObstacle adds o to every cell its AABB footprint overlaps. Called
// once per obstacle at world load; obstacle cell membership never changes
// afterward.
func (g *Grid) InsertObstacle(o *world.Obstacle) {
	box := o.AABB()
	minX, minZ := box.MinXZ()
	maxX, maxZ := box.MaxXZ()

	minCX, minCZ := g.Locate(minX, minZ)
	maxCX, maxCZ := g.Locate(maxX, maxZ)

	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := g.index(cx, cz)
			g.obstacleCells[idx] = append(g.obstacleCells[idx], o)
		}
	}
}

// BuildNearbyCache materializes, for every cell, the union of obstacles in
// that cell and its 8 neighbours (spec.md §4.1). Must be called once after
// all obstacles have been inserted and before the first NearbyObstacles
// call.
func (g *Grid) BuildNearbyCache() {
	g.nearby = make([][]*world.Obstacle, len(g.obstacleCells))

	for cz := 0; cz < g.cols; cz++ {
		for cx := 0; cx < g.cols; cx++ {
			idx := g.index(cx, cz)

			seen := make(map[int]bool)
			var union []*world.Obstacle
			for dz := -1; dz <= 1; dz++ {
				for dx := -1; dx <= 1; dx++ {
					ncx, ncz := cx+dx, cz+dz
					if ncx < 0 || ncx >= g.cols || ncz < 0 || ncz >= g.cols {
						continue
					}
					for _, o := range g.obstacleCells[g.index(ncx, ncz)] {
						if seen[o.Index] {
							continue
						}
						seen[o.Index] = true
						union = append(union, o)
					}
				}
			}
			g.nearby[idx] = union
		}
	}
}

// NearbyObstacles returns the precomputed 3x3 union for the cell
// containing (x, z); nil if the cache hasn't been built. Positions outside
// the grid are clamped to the nearest edge cell by Locate.
func (g *Grid) NearbyObstacles(x, z float64) []*world.Obstacle {
	if g.nearby == nil {
		return nil
	}
	cx, cz := g.Locate(x, z)
	return g.nearby[g.index(cx, cz)]
}

// NearbyObstaclesForCell is the cell-indexed counterpart of
// NearbyObstacles, used by ray traversal which already has cell
// coordinates from CellsAlongRay and has no single (x, z) to re-locate.
func (g *Grid) NearbyObstaclesForCell(cellX, cellZ int) []*world.Obstacle {
	if g.nearby == nil {
		return nil
	}
	if cellX < 0 || cellX >= g.cols || cellZ < 0 || cellZ >= g.cols {
		return nil
	}
	return g.nearby[g.index(cellX, cellZ)]
}

// MoveEntity updates id's cell membership for newPos. If the packed cell
// key hasn't changed since the last call, this is a no-op (spec.md §4.1).
func (g *Grid) MoveEntity(id uint32, newPos float64, newPosZ float64) {
	cx, cz := g.Locate(newPos, newPosZ)
	newKey := packedKey(cx, cz)

	if oldKey, ok := g.entityCell[id]; ok && oldKey == newKey {
		return
	} else if ok {
		g.removeFromCell(id, oldKey)
	}

	g.entityCell[id] = newKey
	idx := g.index(cx, cz)
	g.entityCells[idx] = append(g.entityCells[idx], id)
}

// RemoveEntity evicts id from its recorded cell entirely (e.g. on client
// disconnect).
func (g *Grid) RemoveEntity(id uint32) {
	key, ok := g.entityCell[id]
	if !ok {
		return
	}
	g.removeFromCell(id, key)
	delete(g.entityCell, id)
}

func (g *Grid) removeFromCell(id uint32, packed int) {
	cx, cz := packed/10000, packed%10000
	idx := g.index(cx, cz)
	cell := g.entityCells[idx]
	for i, eid := range cell {
		if eid == id {
			cell[i] = cell[len(cell)-1]
			g.entityCells[idx] = cell[:len(cell)-1]
			return
		}
	}
}

// EntitiesInCell returns the entity ids currently occupying the cell
// containing (x, z). Used by invariant tests (spec.md §8 invariant 5).
func (g *Grid) EntitiesInCell(x, z float64) []uint32 {
	cx, cz := g.Locate(x, z)
	return g.entityCells[g.index(cx, cz)]
}

// CellOf returns the cell indices id is currently recorded as occupying,
// and whether id is tracked at all.
func (g *Grid) CellOf(id uint32) (cellX, cellZ int, ok bool) {
	key, tracked := g.entityCell[id]
	if !tracked {
		return 0, 0, false
	}
	return key / 10000, key % 10000, true
}
