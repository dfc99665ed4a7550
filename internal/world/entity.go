package world

import "losgame/internal/worldmath"

// ID partitioning (spec.md §3): bots occupy [0, BotsCount); players start
// at 1000 and increase monotonically, never reused within a run.
const PlayerIDStart uint32 = 1000

// Entity is mutable, identified by a 32-bit unsigned integer.
type Entity struct {
	ID       uint32
	Position worldmath.Vector3
	Velocity worldmath.Vector3 // unused by this core and not sent on the wire; reserved
	Yaw      float64
	Pitch    float64
	IsPlayer bool
	HP       int
	MaxHP    int
}

// Alive reports whether the entity still has hit points.
func (e *Entity) Alive() bool {
	return e.HP > 0
}

// ClampHP enforces 0 <= hp <= maxHp (spec.md §8 invariant 1).
func (e *Entity) ClampHP() {
	if e.HP < 0 {
		e.HP = 0
	}
	if e.HP > e.MaxHP {
		e.HP = e.MaxHP
	}
}

// Bullet is owned exclusively by the bullet simulator; no other component
// keeps a reference to one (spec.md §3, §5 resource policy).
type Bullet struct {
	ID             uint32
	OwnerID        uint32
	Position       worldmath.Vector3
	Direction      worldmath.Vector3 // unit
	Speed          float64
	Damage         int
	CreatedAtMilli int64
}

// HitEvent is transient: the tick orchestrator clears the slice at the
// start of every tick (spec.md §3).
type HitEvent struct {
	Position   worldmath.Vector3
	HitEntity  bool
	EntityID   uint32 // valid only if HitEntity is true
}
