package sim

import (
	"math"

	"losgame/internal/config"
	"losgame/internal/world"
)

// StepBot advances one bot by one tick of random-walk movement with
// wall-sliding collision (spec.md §4.4).
func StepBot(w *world.World, e *world.Entity, rng *FastRand, deltaTime float64) {
	if rng.Float64() < config.BotTurnChance {
		e.Yaw += rng.Uniform(-0.5, 0.5) * config.BotTurnSpeed * deltaTime * 10
	}

	dx := -math.Sin(e.Yaw) * config.BotSpeed * deltaTime
	dz := -math.Cos(e.Yaw) * config.BotSpeed * deltaTime

	half := w.Size / 2
	softBound := half - config.SoftBoundaryMargin
	proposedX := e.Position.X + dx
	proposedZ := e.Position.Z + dz
	if math.Abs(proposedX) > softBound || math.Abs(proposedZ) > softBound {
		e.Yaw += math.Pi
		return
	}

	newPos, result := attemptWallSlide(e.Position, dx, dz, collidesAt(w, config.BotRadius))
	if result == slideStuck {
		e.Yaw += math.Pi/2 + rng.Uniform(-math.Pi/8, math.Pi/8)
		return
	}

	newPos.Y = w.GroundHeight(newPos.X, newPos.Z) + heightFeetOffset
	w.MoveEntity(e, newPos)
}

// heightFeetOffset mirrors heightmap.FeetOffset; world.GroundHeight
// returns the raw terrain sample, so the feet offset is applied here.
const heightFeetOffset = 2.0
