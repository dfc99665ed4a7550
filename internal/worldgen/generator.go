// Package worldgen produces the deterministic obstacle list and height
// sampler the simulation core consumes. Spec.md §2 treats world
// generation as an external collaborator reachable "only via its output
// contract" — this package is that collaborator: a seeded, reproducible
// layout plus the shared heightmap.Sample function.
package worldgen

import (
	"math"
	"math/rand"

	"losgame/internal/heightmap"
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

// Config parameterizes generation. WorldSize must match the spatial grid
// and LOS engine's world extent so obstacles, collision, and rendering
// agree.
type Config struct {
	Seed          int64
	WorldSize     float64
	ObstacleCount int
}

// DefaultConfig returns the tunables from spec.md §6.3.
func DefaultConfig() Config {
	return Config{
		Seed:          1,
		WorldSize:     2000,
		ObstacleCount: 400,
	}
}

var placeableKinds = []world.ObstacleKind{
	world.KindHouseWall,
	world.KindRuins,
	world.KindFence,
	world.KindTower,
	world.KindCrate,
	world.KindBarricade,
	world.KindRock,
	world.KindShed,
	world.KindTree,
}

// Generate builds a deterministic obstacle list for cfg. The same seed
// always produces the same layout, so server and client (and repeated
// test runs) agree on obstacle placement byte-for-byte.
func Generate(cfg Config) []*world.Obstacle {
	rng := rand.New(rand.NewSource(cfg.Seed))
	half := cfg.WorldSize / 2

	obstacles := make([]*world.Obstacle, 0, cfg.ObstacleCount+4)

	for i := 0; i < cfg.ObstacleCount; i++ {
		kind := placeableKinds[rng.Intn(len(placeableKinds))]
		x := (rng.Float64()*2 - 1) * (half - 20)
		z := (rng.Float64()*2 - 1) * (half - 20)

		size := sizeForKind(kind, rng)
		groundY := heightmap.Sample(x, z)

		o := &world.Obstacle{
			Index:  len(obstacles),
			Center: worldmath.Vector3{X: x, Y: groundY + size.Y/2, Z: z},
			Size:   size,
			Kind:   kind,
		}
		if kind == world.KindTree {
			o.TrunkRadius = 0.4 + rng.Float64()*0.3
			o.FoliageRadius = 2.5 + rng.Float64()*1.5
			o.FoliageColor = foliageColors[rng.Intn(len(foliageColors))]

			obstacles = append(obstacles, o)

			foliage := &world.Obstacle{
				Index:  len(obstacles),
				Center: worldmath.Vector3{X: x, Y: groundY + size.Y + o.FoliageRadius*0.6, Z: z},
				Size:   worldmath.Vector3{X: o.FoliageRadius * 2, Y: o.FoliageRadius * 2, Z: o.FoliageRadius * 2},
				Kind:   world.KindTreeFoliage,
			}
			obstacles = append(obstacles, foliage)
			continue
		}

		obstacles = append(obstacles, o)
	}

	obstacles = append(obstacles, boundaryWalls(cfg, len(obstacles))...)
	return obstacles
}

var foliageColors = []string{"#2e7d32", "#388e3c", "#1b5e20", "#33691e"}

func sizeForKind(kind world.ObstacleKind, rng *rand.Rand) worldmath.Vector3 {
	switch kind {
	case world.KindHouseWall:
		return worldmath.Vector3{X: 4 + rng.Float64()*6, Y: 6 + rng.Float64()*4, Z: 1}
	case world.KindRuins:
		return worldmath.Vector3{X: 3 + rng.Float64()*3, Y: 2 + rng.Float64()*3, Z: 3 + rng.Float64()*3}
	case world.KindFence:
		return worldmath.Vector3{X: 3 + rng.Float64()*4, Y: 1.5, Z: 0.3}
	case world.KindTower:
		return worldmath.Vector3{X: 4, Y: 12 + rng.Float64()*8, Z: 4}
	case world.KindCrate:
		side := 1 + rng.Float64()
		return worldmath.Vector3{X: side, Y: side, Z: side}
	case world.KindBarricade:
		return worldmath.Vector3{X: 2 + rng.Float64()*2, Y: 1.2, Z: 1}
	case world.KindRock:
		side := 1.5 + rng.Float64()*2
		return worldmath.Vector3{X: side, Y: side * 0.7, Z: side}
	case world.KindShed:
		return worldmath.Vector3{X: 5, Y: 4, Z: 5}
	case world.KindTree:
		return worldmath.Vector3{X: 0.8, Y: 5 + rng.Float64()*3, Z: 0.8}
	default:
		return worldmath.Vector3{X: 1, Y: 1, Z: 1}
	}
}

// boundaryWalls rings the playable area with Boundary obstacles, solid
// for movement and opaque for LOS like everything else, so the hard
// movement boundary (spec.md §4.5) has a physical backing that also
// blocks sightlines past the map edge.
func boundaryWalls(cfg Config, startIndex int) []*world.Obstacle {
	half := cfg.WorldSize / 2
	thickness := 4.0
	height := 20.0

	segments := []struct {
		center worldmath.Vector3
		size   worldmath.Vector3
	}{
		{worldmath.Vector3{X: 0, Y: height / 2, Z: -half}, worldmath.Vector3{X: cfg.WorldSize, Y: height, Z: thickness}},
		{worldmath.Vector3{X: 0, Y: height / 2, Z: half}, worldmath.Vector3{X: cfg.WorldSize, Y: height, Z: thickness}},
		{worldmath.Vector3{X: -half, Y: height / 2, Z: 0}, worldmath.Vector3{X: thickness, Y: height, Z: cfg.WorldSize}},
		{worldmath.Vector3{X: half, Y: height / 2, Z: 0}, worldmath.Vector3{X: thickness, Y: height, Z: cfg.WorldSize}},
	}

	out := make([]*world.Obstacle, 0, len(segments))
	for i, seg := range segments {
		out = append(out, &world.Obstacle{
			Index:  startIndex + i,
			Center: seg.center,
			Size:   seg.size,
			Kind:   world.KindBoundary,
		})
	}
	return out
}

// GroundHeight exposes the shared heightmap sampler under the output
// contract spec.md §2 names for the world generator.
func GroundHeight(x, z float64) float64 {
	return heightmap.Sample(x, z)
}

// ClampToPlayable keeps a proposed spawn point within the world's usable
// interior, mirroring the (worldSize-200)/2 bound used for bot and player
// spawns and post-kill respawns (spec.md §4.6).
func ClampToPlayable(worldSize, v float64) float64 {
	bound := (worldSize - 200) / 2
	return math.Max(-bound, math.Min(bound, v))
}
