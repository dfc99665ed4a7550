package broadcast

import (
	"encoding/json"
	"math"
	"testing"

	"losgame/internal/sim"
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

// TestUpdateRoundTrip exercises invariant 6: encode then decode an UPDATE
// frame and recover every field the wire carries within float32 narrowing
// tolerance. A hit record carries no entity id, so EntityID decodes as 0.
func TestUpdateRoundTrip(t *testing.T) {
	u := Update{
		MyPosition: worldmath.Vector3{X: 1.5, Y: 2.25, Z: -3.75},
		Entities: []EntityView{
			{ID: 7, Position: worldmath.Vector3{X: 10, Y: 0, Z: -10}, Yaw: 1.2, Pitch: -0.3, HP: 80, MaxHP: 100, IsPlayer: true},
			{ID: 8, Position: worldmath.Vector3{X: -5, Y: 3, Z: 5}, HP: 100, MaxHP: 100},
		},
		Bullets: []BulletView{
			{Position: worldmath.Vector3{X: 1, Y: 2, Z: 3}},
		},
		Hits: []world.HitEvent{
			{Position: worldmath.Vector3{X: 4, Y: 5, Z: 6}, HitEntity: true, EntityID: 7},
			{Position: worldmath.Vector3{X: 7, Y: 8, Z: 9}},
		},
		Stats: Stats{
			TotalEntities: 600, TotalObstacles: 400, ConnectedPlayers: 3,
			TickTimeMsPerSec: 12.5, LOSTimeMsPerSec: 4.25, TickTimeMsAvg: 0.42,
			VisibleEntities: 9, ServerMode: 1, TickRate: 30,
		},
	}

	frame := EncodeUpdate(u)
	if frame[0] != TypeUpdate {
		t.Fatalf("expected leading byte 0x%02x, got 0x%02x", TypeUpdate, frame[0])
	}

	got, err := DecodeUpdate(frame)
	if err != nil {
		t.Fatalf("DecodeUpdate: %v", err)
	}

	if !approxVec(got.MyPosition, u.MyPosition) {
		t.Fatalf("MyPosition mismatch: got %+v want %+v", got.MyPosition, u.MyPosition)
	}
	if len(got.Entities) != len(u.Entities) {
		t.Fatalf("entity count mismatch: got %d want %d", len(got.Entities), len(u.Entities))
	}
	for i, e := range got.Entities {
		want := u.Entities[i]
		if e.ID != want.ID || e.HP != want.HP || e.MaxHP != want.MaxHP || e.IsPlayer != want.IsPlayer {
			t.Fatalf("entity[%d] mismatch: got %+v want %+v", i, e, want)
		}
		if !approxVec(e.Position, want.Position) {
			t.Fatalf("entity[%d] position mismatch: got %+v want %+v", i, e.Position, want.Position)
		}
	}
	if len(got.Bullets) != 1 || !approxVec(got.Bullets[0].Position, u.Bullets[0].Position) {
		t.Fatalf("bullet mismatch: got %+v", got.Bullets)
	}
	if len(got.Hits) != 2 || !got.Hits[0].HitEntity || got.Hits[0].EntityID != 0 || got.Hits[1].HitEntity {
		t.Fatalf("hit events mismatch: got %+v", got.Hits)
	}
	if got.Stats != u.Stats {
		t.Fatalf("stats mismatch: got %+v want %+v", got.Stats, u.Stats)
	}
}

// TestUpdateEmptyRoundTrip exercises the zero-entity/zero-bullet/zero-hit
// edge case (an UPDATE frame with nothing in view).
func TestUpdateEmptyRoundTrip(t *testing.T) {
	frame := EncodeUpdate(Update{})
	got, err := DecodeUpdate(frame)
	if err != nil {
		t.Fatalf("DecodeUpdate: %v", err)
	}
	if len(got.Entities) != 0 || len(got.Bullets) != 0 || len(got.Hits) != 0 {
		t.Fatalf("expected empty slices, got entities=%d bullets=%d hits=%d", len(got.Entities), len(got.Bullets), len(got.Hits))
	}
}

// TestInputRoundTrip exercises invariant 7: the 17-byte INPUT frame.
func TestInputRoundTrip(t *testing.T) {
	intent := sim.MoveIntent{MoveX: 0.7071, MoveZ: -0.7071, Yaw: 3.14, Pitch: -0.5}
	frame := EncodeInput(intent)
	if len(frame) != 17 {
		t.Fatalf("expected 17-byte INPUT frame, got %d", len(frame))
	}

	got, err := DecodeInput(frame)
	if err != nil {
		t.Fatalf("DecodeInput: %v", err)
	}
	if math.Abs(got.MoveX-intent.MoveX) > 1e-4 || math.Abs(got.MoveZ-intent.MoveZ) > 1e-4 {
		t.Fatalf("move mismatch: got %+v want %+v", got, intent)
	}
	if math.Abs(got.Yaw-intent.Yaw) > 1e-4 || math.Abs(got.Pitch-intent.Pitch) > 1e-4 {
		t.Fatalf("orientation mismatch: got %+v want %+v", got, intent)
	}
}

func TestInputRejectsWrongLength(t *testing.T) {
	if _, err := DecodeInput([]byte{TypeInput, 0, 0}); err == nil {
		t.Fatalf("expected error decoding a truncated INPUT frame")
	}
}

func TestShootRoundTrip(t *testing.T) {
	for _, shooting := range []bool{true, false} {
		frame := EncodeShoot(shooting)
		got, err := DecodeShoot(frame)
		if err != nil {
			t.Fatalf("DecodeShoot: %v", err)
		}
		if got != shooting {
			t.Fatalf("expected %v, got %v", shooting, got)
		}
	}
}

func TestToggleModeRoundTrip(t *testing.T) {
	for _, losMode := range []bool{true, false} {
		frame := EncodeToggleMode(losMode)
		got, err := DecodeToggleMode(frame)
		if err != nil {
			t.Fatalf("DecodeToggleMode: %v", err)
		}
		if got != losMode {
			t.Fatalf("expected %v, got %v", losMode, got)
		}
	}
}

// TestEncodeConfigIsJSONEnvelope checks the one-time CONFIG frame carries
// the type tag followed by a parseable JSON terrain envelope.
func TestEncodeConfigIsJSONEnvelope(t *testing.T) {
	obstacles := []*world.Obstacle{
		{Index: 0, Center: worldmath.Vector3{X: 1, Y: 2, Z: 3}, Size: worldmath.Vector3{X: 4, Y: 4, Z: 4}, Kind: world.KindTree},
	}
	frame, err := EncodeConfig(2000, 200, obstacles)
	if err != nil {
		t.Fatalf("EncodeConfig: %v", err)
	}
	if frame[0] != TypeConfig {
		t.Fatalf("expected leading byte 0x%02x, got 0x%02x", TypeConfig, frame[0])
	}
	if !json.Valid(frame[1:]) {
		t.Fatalf("expected a parseable JSON payload after the type byte")
	}
}

func approxVec(a, b worldmath.Vector3) bool {
	const eps = 1e-3
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}
