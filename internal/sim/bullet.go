package sim

import (
	"math"

	"losgame/internal/config"
	"losgame/internal/heightmap"
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

// entityHitCapsuleHeight is the vertical span of the capsule-like entity
// hit test, measured up from entity.Position.Y (spec.md §4.6).
const entityHitCapsuleHeight = 4.0

// CanFire reports whether a shooter may spawn a bullet right now, gating
// on wallclock fire rate (spec.md §4.6, §8 S4).
func CanFire(nowMilli, lastShotMilli int64) bool {
	return nowMilli-lastShotMilli >= 1000/config.FireRate
}

// SpawnBullet creates a bullet leaving the shooter's eye position along
// their look direction, offset forward so it never spawns inside the
// shooter's own capsule (spec.md §4.6, §8 invariant 9).
func SpawnBullet(w *world.World, owner *world.Entity, nowMilli int64) *world.Bullet {
	direction := worldmath.DirectionFromYawPitch(owner.Yaw, owner.Pitch)
	origin := owner.Position.
		Add(worldmath.Vector3{Y: config.EyeHeight}).
		Add(direction.Scale(1.5))

	return &world.Bullet{
		ID:             w.NextBulletID(),
		OwnerID:        owner.ID,
		Position:       origin,
		Direction:      direction,
		Speed:          config.BulletSpeed,
		Damage:         config.BulletDamage,
		CreatedAtMilli: nowMilli,
	}
}

// StepBullets integrates every live bullet by one tick, sub-stepping for
// continuous collision detection so a fast bullet cannot tunnel through a
// thin obstacle (spec.md §4.6). Hit bullets, expired bullets and
// out-of-bounds bullets are all removed from w.Bullets in place; hit
// events are appended to w.TickHitEvents.
func StepBullets(w *world.World, nowMilli int64, deltaTime float64, rng *FastRand) {
	alive := w.Bullets[:0]
	for _, b := range w.Bullets {
		if nowMilli-b.CreatedAtMilli >= config.BulletLifetimeMs {
			continue
		}
		if stepOneBullet(w, b, deltaTime, rng) {
			alive = append(alive, b)
		}
	}
	w.Bullets = alive
}

// stepOneBullet advances b by one tick's worth of sub-steps, returning
// false if b should be removed (entity or obstacle hit, below the terrain,
// or out-of-bounds). Lifetime expiry is checked by StepBullets.
func stepOneBullet(w *world.World, b *world.Bullet, deltaTime float64, rng *FastRand) bool {
	total := b.Speed * deltaTime
	n := int(math.Ceil(total / config.BulletSubstep))
	if n < 1 {
		n = 1
	}
	step := total / float64(n)

	prev := b.Position
	half := w.Size / 2

	for i := 0; i < n; i++ {
		next := prev.Add(b.Direction.Scale(step))

		if victim, ok := entityHit(w, b, next); ok {
			pos := refineHitPosition(prev, next, func(p worldmath.Vector3) bool {
				return entityHitAt(victim, p)
			})
			recordEntityHit(w, b, victim, pos, rng)
			return false
		}

		if o, ok := obstacleHit(w, next); ok {
			pos := refineHitPosition(prev, next, func(p worldmath.Vector3) bool {
				return o.AABB().Inflated(config.BulletRadius).ContainsPoint(p)
			})
			contact := pos.Add(b.Direction.Scale(config.BulletRadius))
			w.TickHitEvents = append(w.TickHitEvents, world.HitEvent{Position: contact})
			return false
		}

		if next.Y < heightmap.Sample(next.X, next.Z) || math.Abs(next.X) > half || math.Abs(next.Z) > half {
			return false
		}

		prev = next
	}

	b.Position = prev
	return true
}

// entityHit returns the first live entity (other than the bullet's owner)
// whose capsule the tentative position falls within.
func entityHit(w *world.World, b *world.Bullet, pos worldmath.Vector3) (*world.Entity, bool) {
	for _, e := range w.Entities {
		if e.ID == b.OwnerID || !e.Alive() {
			continue
		}
		if entityHitAt(e, pos) {
			return e, true
		}
	}
	return nil, false
}

func entityHitAt(e *world.Entity, pos worldmath.Vector3) bool {
	dx := pos.X - e.Position.X
	dz := pos.Z - e.Position.Z
	distXZ := math.Sqrt(dx*dx + dz*dz)
	if distXZ >= config.EntityRadius+config.BulletRadius {
		return false
	}
	return pos.Y >= e.Position.Y && pos.Y <= e.Position.Y+entityHitCapsuleHeight
}

// obstacleHit returns the first solid-for-movement obstacle whose
// BULLET_RADIUS-inflated box contains the tentative position.
func obstacleHit(w *world.World, pos worldmath.Vector3) (*world.Obstacle, bool) {
	for _, o := range w.Grid.NearbyObstacles(pos.X, pos.Z) {
		if !o.Kind.IsSolidForMovement() {
			continue
		}
		if o.AABB().Inflated(config.BulletRadius).ContainsPoint(pos) {
			return o, true
		}
	}
	return nil, false
}

// refineHitPosition narrows the exact crossing point along [from, to] via
// 5 iterations of binary search against the same hit predicate used for
// coarse detection, starting at t=1 (the tentative position) with
// half-step 0.5 (spec.md §4.6).
func refineHitPosition(from, to worldmath.Vector3, hit func(worldmath.Vector3) bool) worldmath.Vector3 {
	t := 1.0
	half := 0.5
	at := func(t float64) worldmath.Vector3 {
		return from.Add(to.Sub(from).Scale(t))
	}
	for i := 0; i < 5; i++ {
		if hit(at(t)) {
			t -= half
		} else {
			t += half
		}
		half /= 2
	}
	return at(t)
}

// recordEntityHit applies damage, handles kill/respawn, and emits the
// tick's HitEvent for an entity hit (spec.md §4.6).
func recordEntityHit(w *world.World, b *world.Bullet, victim *world.Entity, pos worldmath.Vector3, rng *FastRand) {
	w.TickHitEvents = append(w.TickHitEvents, world.HitEvent{
		Position:  pos,
		HitEntity: true,
		EntityID:  victim.ID,
	})

	victim.HP -= b.Damage
	victim.ClampHP()
	if victim.HP > 0 {
		return
	}

	victim.HP = victim.MaxHP
	bound := (w.Size - 200) / 2
	respawn := worldmath.Vector3{
		X: rng.Uniform(-bound, bound),
		Z: rng.Uniform(-bound, bound),
	}
	respawn.Y = w.GroundHeight(respawn.X, respawn.Z) + heightmap.FeetOffset
	w.MoveEntity(victim, respawn)
}
