package los

import (
	"testing"

	"losgame/internal/spatial"
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

func buildGrid(obstacles ...*world.Obstacle) *spatial.Grid {
	g := spatial.NewGrid(2000, 5)
	for i, o := range obstacles {
		o.Index = i
		g.InsertObstacle(o)
	}
	g.BuildNearbyCache()
	return g
}

// S1: radial LOS with no obstacles — direct line is always clear.
func TestCanSeeNoObstacles(t *testing.T) {
	g := buildGrid()
	viewer := worldmath.Vector3{X: 0, Y: 2, Z: 0}
	target := worldmath.Vector3{X: 50, Y: 2, Z: 50}
	if !CanSee(viewer, target, g) {
		t.Fatal("expected clear line of sight with no obstacles")
	}
}

// S2: wall occlusion — a HouseWall directly between viewer and target
// blocks all four silhouette rays when the target is dead-center behind it.
func TestCanSeeWallOcclusion(t *testing.T) {
	wall := &world.Obstacle{
		Center: worldmath.Vector3{X: 10, Y: 5, Z: 0},
		Size:   worldmath.Vector3{X: 4, Y: 10, Z: 4},
		Kind:   world.KindHouseWall,
	}
	g := buildGrid(wall)

	viewer := worldmath.Vector3{X: 0, Y: 2, Z: 0}
	target := worldmath.Vector3{X: 20, Y: 2, Z: 0}

	if CanSee(viewer, target, g) {
		t.Fatal("expected wall to occlude the bot")
	}
}

// S3: silhouette peek — the target's right silhouette edge is outside the
// obstacle's XZ shadow, so canSee must return true even though the centre
// line is blocked.
func TestCanSeeSilhouettePeek(t *testing.T) {
	wall := &world.Obstacle{
		Center: worldmath.Vector3{X: 10, Y: 5, Z: 0},
		Size:   worldmath.Vector3{X: 4, Y: 10, Z: 4},
		Kind:   world.KindHouseWall,
	}
	g := buildGrid(wall)

	viewer := worldmath.Vector3{X: 0, Y: 2, Z: 0}
	target := worldmath.Vector3{X: 20, Y: 2, Z: 4.5}

	if !CanSee(viewer, target, g) {
		t.Fatal("expected silhouette ray to clear the wall's shadow")
	}
}

func TestCanSeeCoLocated(t *testing.T) {
	g := buildGrid()
	p := worldmath.Vector3{X: 5, Y: 2, Z: 5}
	if !CanSee(p, p, g) {
		t.Fatal("co-located viewer/target must be visible")
	}
}

func TestSegmentClearDedupesAcrossCells(t *testing.T) {
	// An obstacle spanning several cells must only be tested once per
	// SegmentClear call; this test just exercises that no obstacle
	// spanning multiple cells causes a false negative/positive due to
	// double-processing (the dedup logic itself is structural, so we
	// assert the externally observable behaviour: a clear segment well
	// outside the obstacle's footprint stays clear).
	wall := &world.Obstacle{
		Center: worldmath.Vector3{X: 0, Y: 5, Z: 0},
		Size:   worldmath.Vector3{X: 30, Y: 10, Z: 30},
		Kind:   world.KindHouseWall,
	}
	g := buildGrid(wall)

	start := worldmath.Vector3{X: -100, Y: 2, Z: 100}
	end := worldmath.Vector3{X: -90, Y: 2, Z: 100}
	if !SegmentClear(start, end, g) {
		t.Fatal("expected segment far from the obstacle to be clear")
	}
}
