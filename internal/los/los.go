// Package los implements the line-of-sight engine: ray-vs-AABB sweeping
// over the spatial grid and the multi-ray silhouette test that makes
// wallhack prevention tractable at interactive rates (spec.md §4.2).
package los

import (
	"losgame/internal/config"
	"losgame/internal/spatial"
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

// SegmentClear reports whether the segment from start to end is
// unobstructed by any solid-for-LOS obstacle in the grid. It enumerates
// the cells the segment's 2D projection touches, dedupes obstacles seen
// across cells (large obstacles span multiple cells), and runs the slab
// test against each exactly once.
func SegmentClear(start, end worldmath.Vector3, grid *spatial.Grid) bool {
	cells := grid.CellsAlongRay(start.X, start.Z, end.X, end.Z)

	visited := make(map[int]bool)
	for _, cell := range cells {
		for _, o := range grid.NearbyObstaclesForCell(cell.X, cell.Z) {
			if visited[o.Index] {
				continue
			}
			visited[o.Index] = true

			if !o.Kind.IsOpaqueForLOS() {
				continue
			}
			if hit, _ := o.AABB().RayIntersect(start, end); hit {
				return false
			}
		}
	}
	return true
}

// CanSee casts up to four silhouette rays from viewerPos to targetPos and
// returns true if any succeeds (spec.md §4.2). Viewer origin is raised by
// EyeHeight; target offsets cover the head-top and foot-level left/right
// silhouette edges so a peeker can see a hider's shoulder even when the
// centre line is blocked.
func CanSee(viewerPos, targetPos worldmath.Vector3, grid *spatial.Grid) bool {
	delta := targetPos.Sub(viewerPos)
	if delta.LengthXZ() < 1e-3 {
		return true
	}

	origin := viewerPos.Add(worldmath.Vector3{Y: config.EyeHeight})
	perp := delta.PerpendicularXZ()
	offset := perp.Scale(config.EntityRadius)

	targets := [4]worldmath.Vector3{
		targetPos.Add(offset).Add(worldmath.Vector3{Y: config.EntityHeight}), // top-left
		targetPos.Sub(offset).Add(worldmath.Vector3{Y: config.EntityHeight}), // top-right
		targetPos.Add(offset),                                                // bottom-left
		targetPos.Sub(offset),                                                // bottom-right
	}

	for _, t := range targets {
		if SegmentClear(origin, t, grid) {
			return true
		}
	}
	return false
}

// RayVsAABB exposes the slab test directly for callers (e.g. bullet CCD)
// that already hold an obstacle and just need the intersection fraction.
func RayVsAABB(start, end worldmath.Vector3, o *world.Obstacle) (hit bool, t float64) {
	return o.AABB().RayIntersect(start, end)
}
