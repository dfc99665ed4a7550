package world

import "losgame/internal/worldmath"

// ObstacleKind is a closed tagged variant for obstacle types. The teacher's
// string-tag dispatch (and the source this spec distills from) is replaced
// here by a small enum; solidity and opacity become pure functions of the
// tag per the design notes.
type ObstacleKind int

const (
	KindHouseWall ObstacleKind = iota
	KindRuins
	KindFence
	KindTower
	KindCrate
	KindBarricade
	KindRock
	KindShed
	KindBoundary
	KindTree
	KindTreeFoliage
	KindHill
)

var obstacleKindNames = map[ObstacleKind]string{
	KindHouseWall:   "HouseWall",
	KindRuins:       "Ruins",
	KindFence:       "Fence",
	KindTower:       "Tower",
	KindCrate:       "Crate",
	KindBarricade:   "Barricade",
	KindRock:        "Rock",
	KindShed:        "Shed",
	KindBoundary:    "Boundary",
	KindTree:        "Tree",
	KindTreeFoliage: "TreeFoliage",
	KindHill:        "Hill",
}

// String renders the kind's wire name, used by the JSON CONFIG envelope.
func (k ObstacleKind) String() string {
	if name, ok := obstacleKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// solidKinds are solid-for-movement per spec.md §3. TreeFoliage and Hill
// are deliberately absent: foliage is a decorative box (opaque-for-LOS
// only) and Hill is terrain dressing, not a collider.
var solidKinds = map[ObstacleKind]bool{
	KindHouseWall: true,
	KindRuins:     true,
	KindTower:     true,
	KindShed:      true,
	KindCrate:     true,
	KindBarricade: true,
	KindRock:      true,
	KindFence:     true,
	KindBoundary:  true,
	KindTree:      true,
}

// IsSolidForMovement reports whether k blocks bot/player/bullet movement.
func (k ObstacleKind) IsSolidForMovement() bool {
	return solidKinds[k]
}

// IsOpaqueForLOS reports whether k blocks line of sight. Every obstacle
// box is opaque for LOS purposes, including TreeFoliage and Hill, per
// spec.md §3.
func (k ObstacleKind) IsOpaqueForLOS() bool {
	return true
}

// Obstacle is immutable after world construction (spec.md §3).
type Obstacle struct {
	// Index is this obstacle's position in the world's obstacle slice.
	// It doubles as a stable identity key for segmentClear's
	// cross-cell deduplication (design notes: "object identity vs value
	// equality").
	Index int

	Center worldmath.Vector3
	Size   worldmath.Vector3 // full width/height/depth, center-extent form
	Kind   ObstacleKind

	// Decorations are forwarded to clients opaquely; the core never reads
	// them. Only populated for the kinds that carry them (Tree/TreeFoliage).
	TrunkRadius   float64
	FoliageRadius float64
	FoliageColor  string
}

// AABB returns the obstacle's bounding box.
func (o *Obstacle) AABB() worldmath.AABB {
	return worldmath.NewAABB(o.Center, o.Size)
}
