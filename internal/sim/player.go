package sim

import (
	"math"

	"losgame/internal/config"
	"losgame/internal/world"
)

// MoveIntent is the last received INPUT (spec.md §6.1): a pre-normalised
// (mx, mz) direction the server applies directly without re-normalising.
type MoveIntent struct {
	MoveX, MoveZ float64
	Yaw, Pitch   float64
}

// Sanitize replaces non-finite move components with zero movement and a
// non-finite yaw or pitch with zero. session.ClientSession.SetMoveIntent
// then puts the previously recorded yaw/pitch in place of a non-finite
// one, so the entity keeps its previous-frame orientation.
func (m MoveIntent) Sanitize() MoveIntent {
	out := m
	if !finite(out.MoveX) || !finite(out.MoveZ) {
		out.MoveX, out.MoveZ = 0, 0
	}
	if !finite(out.Yaw) {
		out.Yaw = 0
	}
	if !finite(out.Pitch) {
		out.Pitch = 0
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// StepPlayer applies one tick of player movement: intent-driven
// wall-sliding identical in shape to the bot simulator, plus a hard
// boundary and unconditional yaw/pitch copy for remote-entity
// orientation (spec.md §4.5).
func StepPlayer(w *world.World, e *world.Entity, intent MoveIntent, deltaTime float64) {
	e.Yaw = intent.Yaw
	e.Pitch = intent.Pitch

	dx := intent.MoveX * config.PlayerSpeed * deltaTime
	dz := intent.MoveZ * config.PlayerSpeed * deltaTime
	if dx == 0 && dz == 0 {
		return
	}

	half := w.Size / 2
	hardBound := half - config.HardBoundaryMargin

	collide := func(x, z float64) bool {
		if math.Abs(x) >= hardBound || math.Abs(z) >= hardBound {
			return true
		}
		return w.Collides(x, z, config.PlayerRadius)
	}

	newPos, result := attemptWallSlide(e.Position, dx, dz, collide)
	if result == slideStuck {
		return
	}

	newPos.Y = w.GroundHeight(newPos.X, newPos.Z) + heightFeetOffset
	w.MoveEntity(e, newPos)
}
