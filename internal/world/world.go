package world

import (
	"losgame/internal/heightmap"
	"losgame/internal/spatial"
	"losgame/internal/worldmath"
)

// World owns every mutable piece of simulation state: obstacles, the
// spatial grid, entities, bullets and the current tick's hit events. Per
// spec.md §5, the tick orchestrator exclusively owns this struct; every
// other component receives borrowed references scoped to one tick.
type World struct {
	Size      float64
	Obstacles []*Obstacle
	Grid      *spatial.Grid

	Entities map[uint32]*Entity
	Bullets  []*Bullet

	// TickHitEvents is cleared at the start of every tick (spec.md §3).
	TickHitEvents []HitEvent

	nextBulletID  uint32
	nextPlayerID  uint32
}

// New builds a World around a pre-generated obstacle list and inserts
// every obstacle into a freshly built grid.
func New(size, cellSize float64, obstacles []*Obstacle) *World {
	grid := spatial.NewGrid(size, cellSize)
	for _, o := range obstacles {
		grid.InsertObstacle(o)
	}
	grid.BuildNearbyCache()

	return &World{
		Size:         size,
		Obstacles:    obstacles,
		Grid:         grid,
		Entities:     make(map[uint32]*Entity),
		nextPlayerID: PlayerIDStart,
	}
}

// GroundHeight returns the raw terrain height at (x, z), shared by bots,
// players and bullets alike (spec.md §3, §6.4). Entity feet rest 2 units
// above it (see SnapToGround).
func (w *World) GroundHeight(x, z float64) float64 {
	return heightmap.Sample(x, z)
}

// SnapToGround sets p.Y to the correct feet height for its (x, z).
func (w *World) SnapToGround(p *worldmath.Vector3) {
	p.Y = heightmap.FeetHeight(p.X, p.Z)
}

// NextPlayerID returns the next strictly-monotonic player id, starting at
// 1000 and never reused within a run (spec.md §3).
func (w *World) NextPlayerID() uint32 {
	id := w.nextPlayerID
	w.nextPlayerID++
	return id
}

// NextBulletID returns a process-unique bullet id for this run.
func (w *World) NextBulletID() uint32 {
	id := w.nextBulletID
	w.nextBulletID++
	return id
}

// Collides reports whether a point (x, z) inflated by radius r overlaps
// any solid-for-movement obstacle near it (spec.md §4.4's collides
// predicate, shared by bots and players; bullets use their own 3D test).
func (w *World) Collides(x, z, r float64) bool {
	for _, o := range w.Grid.NearbyObstacles(x, z) {
		if !o.Kind.IsSolidForMovement() {
			continue
		}
		if o.AABB().Inflated(r).ContainsXZ(x, z) {
			return true
		}
	}
	return false
}

// AddEntity registers e in both the entity table and the grid.
func (w *World) AddEntity(e *Entity) {
	w.Entities[e.ID] = e
	w.Grid.MoveEntity(e.ID, e.Position.X, e.Position.Z)
}

// RemoveEntity evicts e from the entity table and the grid.
func (w *World) RemoveEntity(id uint32) {
	delete(w.Entities, id)
	w.Grid.RemoveEntity(id)
}

// MoveEntity updates e's position and keeps the grid's cell membership in
// sync in the same call, so callers can never forget the second step.
func (w *World) MoveEntity(e *Entity, newPos worldmath.Vector3) {
	e.Position = newPos
	w.Grid.MoveEntity(e.ID, newPos.X, newPos.Z)
}

// ClearTickHitEvents resets the transient hit-event list at the start of
// a tick.
func (w *World) ClearTickHitEvents() {
	w.TickHitEvents = w.TickHitEvents[:0]
}
