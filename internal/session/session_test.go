package session

import (
	"math"
	"testing"

	"losgame/internal/sim"
	"losgame/internal/world"
)

func TestTrySendDropsStaleFrameForFreshest(t *testing.T) {
	s := New(&world.Entity{ID: 1}, 200)

	s.TrySend([]byte{0xAA})
	s.TrySend([]byte{0xBB}) // must not block even though the channel is full

	got := <-s.Send
	if got[0] != 0xBB {
		t.Fatalf("expected the newest frame to win, got 0x%02x", got[0])
	}
}

func TestMoveIntentSanitizesNonFiniteInput(t *testing.T) {
	s := New(&world.Entity{ID: 1}, 200)
	s.SetMoveIntent(sim.MoveIntent{MoveX: math.NaN(), MoveZ: 1, Yaw: math.Inf(1)})

	got := s.Intent()
	if got.MoveX != 0 || got.MoveZ != 0 {
		t.Fatalf("expected NaN/Inf move input sanitized to zero, got %+v", got)
	}
	if got.Yaw != 0 {
		t.Fatalf("expected non-finite yaw to keep the previous orientation (zero for a new session), got %f", got.Yaw)
	}
}

func TestLOSModeDefaultsOff(t *testing.T) {
	s := New(&world.Entity{ID: 1}, 200)
	if s.Mode() {
		t.Fatal("expected a new session to default to LOS mode off")
	}
	s.SetLOSMode(true)
	if !s.Mode() {
		t.Fatal("expected Mode() to reflect SetLOSMode(true)")
	}
}
