// Package heightmap computes the deterministic terrain height function
// shared by server and client (spec.md §6.4). Both sides must land on the
// same bits for the same (x, z), so the formula is pinned here exactly as
// specified rather than left to float64 math library differences — the
// seeded PRNG and interpolation are pure functions of their inputs.
package heightmap

import "math"

const (
	// TileSize is the spacing, in world units, between heightmap sample
	// corners. Height is bilinearly interpolated between the four corners
	// of the tile containing (x, z).
	TileSize = 10.0

	// HeightScale multiplies the raw seeded-random sample to produce the
	// final terrain elevation.
	HeightScale = 2.5

	// FeetOffset is added to groundHeight to place an entity's feet at
	// the correct resting height (spec.md §3 invariant).
	FeetOffset = 2.0
)

// seededRandom reproduces the client's `frac(sin(x*12.9898+z*78.233)*43758.5453)`
// pseudo-random corner sampler. It is deterministic in both languages
// because it only uses sin and a fractional part, not a stateful PRNG.
func seededRandom(x, z float64) float64 {
	v := math.Sin(x*12.9898+z*78.233) * 43758.5453
	return v - math.Floor(v)
}

// cornerHeight samples the raw (unscaled) height at an integer tile
// corner (tx, tz).
func cornerHeight(tx, tz float64) float64 {
	return seededRandom(tx, tz)
}

// Sample returns the bilinearly interpolated terrain height at world
// position (x, z), scaled by HeightScale.
func Sample(x, z float64) float64 {
	tileX := x / TileSize
	tileZ := z / TileSize

	x0 := math.Floor(tileX)
	z0 := math.Floor(tileZ)
	x1 := x0 + 1
	z1 := z0 + 1

	fx := tileX - x0
	fz := tileZ - z0

	h00 := cornerHeight(x0, z0)
	h10 := cornerHeight(x1, z0)
	h01 := cornerHeight(x0, z1)
	h11 := cornerHeight(x1, z1)

	top := h00 + (h10-h00)*fx
	bottom := h01 + (h11-h01)*fx
	height := top + (bottom-top)*fz

	return height * HeightScale
}

// FeetHeight returns the Y coordinate an entity's feet should rest at for
// ground position (x, z): groundHeight(x, z) + 2, per spec.md §3.
func FeetHeight(x, z float64) float64 {
	return Sample(x, z) + FeetOffset
}
