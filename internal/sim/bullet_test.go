package sim

import (
	"math"
	"testing"

	"losgame/internal/config"
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

func newBulletTestWorld(obstacles ...*world.Obstacle) *world.World {
	return world.New(2000, 5, obstacles)
}

// TestCanFireGatesOnFireRate exercises S4: holding SHOOT for 1.0s at
// FIRE_RATE=5 admits exactly 5 shots.
func TestCanFireGatesOnFireRate(t *testing.T) {
	lastShot := int64(-1_000_000)
	fired := 0
	for now := int64(0); now < 1000; now += 10 {
		if CanFire(now, lastShot) {
			fired++
			lastShot = now
		}
	}
	if fired != 5 {
		t.Fatalf("expected 5 shots in 1.0s at FIRE_RATE=5, got %d", fired)
	}
}

// TestBulletCCDThinWall exercises S5: a fast bullet crossing a thin wall
// must refine to the wall's surface within tolerance and report exactly
// one non-entity HitEvent.
func TestBulletCCDThinWall(t *testing.T) {
	wall := &world.Obstacle{
		Index:  0,
		Center: worldmath.Vector3{X: 10, Y: 4, Z: 0},
		Size:   worldmath.Vector3{X: 0.5, Y: 4, Z: 4},
		Kind:   world.KindHouseWall,
	}
	w := newBulletTestWorld(wall)

	b := &world.Bullet{
		ID:        1,
		OwnerID:   9999,
		Position:  worldmath.Vector3{X: 0, Y: 4, Z: 0},
		Direction: worldmath.Vector3{X: 1},
		Speed:     config.BulletSpeed,
		Damage:    config.BulletDamage,
	}
	w.Bullets = append(w.Bullets, b)

	rng := NewFastRand(1)
	for i := 0; i < 10 && len(w.Bullets) > 0; i++ {
		StepBullets(w, int64(i)*33, 1.0/config.TickRate, rng)
	}

	if len(w.Bullets) != 0 {
		t.Fatalf("expected bullet to be removed on wall hit, %d remain", len(w.Bullets))
	}
	if len(w.TickHitEvents) != 1 {
		t.Fatalf("expected exactly one HitEvent, got %d", len(w.TickHitEvents))
	}
	hit := w.TickHitEvents[0]
	if hit.HitEntity {
		t.Fatalf("expected hitEntity=false for an obstacle hit")
	}
	if math.Abs(hit.Position.X-9.75) >= 0.05 {
		t.Fatalf("expected refined x within 0.05 of 9.75, got %f", hit.Position.X)
	}
}

// TestBulletKillAndRespawn exercises S6: a lethal hit resets hp to maxHp
// and teleports the victim within the playable bounds.
func TestBulletKillAndRespawn(t *testing.T) {
	w := newBulletTestWorld()

	victimY := w.GroundHeight(5, 0) + 50
	victim := &world.Entity{ID: 1, Position: worldmath.Vector3{X: 5, Y: victimY, Z: 0}, HP: 20, MaxHP: 20}
	w.AddEntity(victim)

	b := &world.Bullet{
		ID:        1,
		OwnerID:   9999,
		Position:  worldmath.Vector3{X: -100, Y: victimY, Z: 0},
		Direction: worldmath.Vector3{X: 1},
		Speed:     config.BulletSpeed,
		Damage:    20,
	}
	w.Bullets = append(w.Bullets, b)

	rng := NewFastRand(7)
	for i := 0; i < 30 && len(w.Bullets) > 0; i++ {
		StepBullets(w, int64(i)*33, 1.0/config.TickRate, rng)
	}

	if victim.HP != victim.MaxHP {
		t.Fatalf("expected hp reset to maxHp on kill, got %d", victim.HP)
	}
	bound := (w.Size - 200) / 2
	if math.Abs(victim.Position.X) > bound || math.Abs(victim.Position.Z) > bound {
		t.Fatalf("expected respawn within [-%f, %f]^2, got (%f, %f)", bound, bound, victim.Position.X, victim.Position.Z)
	}
}

// TestSpawnBulletNoImmediateSelfHit exercises S9: a bullet spawned just
// off an obstacle's surface, aimed away from it, must not register an
// immediate hit on the spawning tick.
func TestSpawnBulletNoImmediateSelfHit(t *testing.T) {
	wall := &world.Obstacle{
		Index:  0,
		Center: worldmath.Vector3{X: 0, Y: 4, Z: 0},
		Size:   worldmath.Vector3{X: 4, Y: 4, Z: 4},
		Kind:   world.KindHouseWall,
	}
	w := newBulletTestWorld(wall)

	owner := &world.Entity{ID: 1, Position: worldmath.Vector3{X: 2, Y: 1, Z: 0}, Yaw: -math.Pi / 2, IsPlayer: true, HP: 100, MaxHP: 100}
	w.AddEntity(owner)

	b := SpawnBullet(w, owner, 0)
	w.Bullets = append(w.Bullets, b)

	rng := NewFastRand(3)
	StepBullets(w, 0, 1.0/config.TickRate, rng)

	if len(w.TickHitEvents) != 0 {
		t.Fatalf("expected no immediate self-hit at spawn, got %d hit events", len(w.TickHitEvents))
	}
}
