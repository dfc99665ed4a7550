// Package sim implements the per-tick movers: bots, players and bullets.
// Bots and players share the same wall-sliding shape (spec.md §4.4, §4.5);
// this file holds that shared step so neither simulator reimplements it.
package sim

import (
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

// slideResult reports what a wall-slide attempt actually did, so callers
// can react (e.g. a bot that got fully stuck rotates to unstick itself).
type slideResult int

const (
	slideFull slideResult = iota // moved by the full (dx, dz)
	slideAxis                    // moved along one axis only
	slideStuck                   // no movement possible
)

// attemptWallSlide tries the full (dx, dz) step, then dx-only, then
// dz-only, returning the resulting position and which attempt succeeded.
// collides reports whether (x, z) at the given radius overlaps a solid
// obstacle; it is the caller's chance to also apply a boundary rule
// before consulting the grid.
func attemptWallSlide(pos worldmath.Vector3, dx, dz float64, collides func(x, z float64) bool) (worldmath.Vector3, slideResult) {
	if !collides(pos.X+dx, pos.Z+dz) {
		return worldmath.Vector3{X: pos.X + dx, Y: pos.Y, Z: pos.Z + dz}, slideFull
	}
	if dx != 0 && !collides(pos.X+dx, pos.Z) {
		return worldmath.Vector3{X: pos.X + dx, Y: pos.Y, Z: pos.Z}, slideAxis
	}
	if dz != 0 && !collides(pos.X, pos.Z+dz) {
		return worldmath.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z + dz}, slideAxis
	}
	return pos, slideStuck
}

// collidesAt adapts world.World.Collides to the attemptWallSlide
// signature for a given inflation radius.
func collidesAt(w *world.World, radius float64) func(x, z float64) bool {
	return func(x, z float64) bool {
		return w.Collides(x, z, radius)
	}
}
