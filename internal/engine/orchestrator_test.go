package engine

import (
	"testing"
	"time"

	"losgame/internal/broadcast"
	"losgame/internal/config"
	"losgame/internal/sim"
	"losgame/internal/world"
)

func newTestOrchestrator(botCount int) *Orchestrator {
	w := world.New(2000, config.CellSize, nil)
	return New(w, botCount, 1)
}

// TestConnectSpawnsSessionAndSendsConfig exercises spec.md §4.8: Connect
// returns a session plus a one-time CONFIG frame the transport writes
// before anything else.
func TestConnectSpawnsSessionAndSendsConfig(t *testing.T) {
	o := newTestOrchestrator(0)

	sess, cfg, err := o.Connect()
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if sess == nil {
		t.Fatal("expected a non-nil session")
	}
	if len(cfg) == 0 || cfg[0] != broadcast.TypeConfig {
		t.Fatalf("expected CONFIG frame leading with 0x%02x, got %v", broadcast.TypeConfig, cfg)
	}
	if o.ConnectedSessions() != 1 {
		t.Fatalf("expected 1 connected session, got %d", o.ConnectedSessions())
	}
}

// TestDisconnectRemovesEntityAndSession exercises spec.md §5's immediate
// teardown: after Disconnect, the entity is gone from the world and the
// session no longer counts toward ConnectedSessions.
func TestDisconnectRemovesEntityAndSession(t *testing.T) {
	o := newTestOrchestrator(0)
	sess, _, err := o.Connect()
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	entityID := sess.Entity.ID
	o.Disconnect(sess.ID)

	if o.ConnectedSessions() != 0 {
		t.Fatalf("expected 0 connected sessions after disconnect, got %d", o.ConnectedSessions())
	}
	if _, alive := o.world.Entities[entityID]; alive {
		t.Fatalf("expected entity %d removed from the world", entityID)
	}
}

// TestTickSendsAnUpdateFrame runs one manual tick and checks a connected
// session's Send channel receives a well-formed UPDATE frame, satisfying
// the review's "a single client receiving a UPDATE frame" bar.
func TestTickSendsAnUpdateFrame(t *testing.T) {
	o := newTestOrchestrator(3)
	sess, _, err := o.Connect()
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	o.lastTime = time.Now().Add(-time.Duration(1e9 / config.TickRate))
	o.statsWindowStart = time.Now()
	if n := o.tick(); n != 1 {
		t.Fatalf("expected 1 connected session after tick, got %d", n)
	}

	select {
	case frame := <-sess.Send:
		if frame[0] != broadcast.TypeUpdate {
			t.Fatalf("expected UPDATE frame, got leading byte 0x%02x", frame[0])
		}
		u, err := broadcast.DecodeUpdate(frame)
		if err != nil {
			t.Fatalf("DecodeUpdate: %v", err)
		}
		if u.Stats.TotalEntities != uint32(len(o.world.Entities)) {
			t.Fatalf("expected stats.TotalEntities=%d, got %d", len(o.world.Entities), u.Stats.TotalEntities)
		}
	default:
		t.Fatal("expected a frame queued on sess.Send after a tick")
	}
}

// TestTickAppliesMoveIntent exercises stage (c): a session's recorded
// intent moves its entity within the same tick.
func TestTickAppliesMoveIntent(t *testing.T) {
	o := newTestOrchestrator(0)
	sess, _, err := o.Connect()
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	start := sess.Entity.Position
	sess.SetMoveIntent(sim.MoveIntent{MoveX: 1, MoveZ: 0})

	o.lastTime = time.Now().Add(-200 * time.Millisecond)
	o.statsWindowStart = time.Now()
	o.tick()

	if sess.Entity.Position.X == start.X {
		t.Fatalf("expected entity to move along +X, stayed at %v", sess.Entity.Position)
	}
}
