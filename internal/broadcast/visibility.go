package broadcast

import (
	"losgame/internal/config"
	"losgame/internal/los"
	"losgame/internal/session"
	"losgame/internal/world"
)

// VisibleSet computes one client's visible entity set for the current
// tick under the grace-window policy (spec.md §4.3):
//
//  1. Radial candidate set: every other entity within viewDistance^2.
//  2. If losMode is off, that is the visible set.
//  3. Otherwise filter by canSee.
//  4. Entities still in the client's grace map but not in visibleNow
//     survive one extra tick (LOSGraceTicks) before being dropped.
//
// The session's GraceMap is mutated in place; callers must call this
// exactly once per client per tick.
func VisibleSet(w *world.World, s *session.ClientSession) []EntityView {
	viewer := s.Entity
	viewDistSq := s.ViewDistance * s.ViewDistance

	visibleNow := make(map[uint32]*world.Entity)
	for _, e := range w.Entities {
		if e.ID == viewer.ID {
			continue
		}
		if viewer.Position.DistanceSq(e.Position) > viewDistSq {
			continue
		}
		if s.Mode() && !los.CanSee(viewer.Position, e.Position, w.Grid) {
			continue
		}
		visibleNow[e.ID] = e
	}

	final := make(map[uint32]*world.Entity, len(visibleNow))
	for id, e := range visibleNow {
		final[id] = e
	}

	for id, ticksLeft := range s.GraceMap {
		if _, stillVisible := visibleNow[id]; stillVisible {
			continue
		}
		e, alive := w.Entities[id]
		if !alive || !e.Alive() {
			delete(s.GraceMap, id)
			continue
		}
		if ticksLeft <= 0 {
			delete(s.GraceMap, id)
			continue
		}
		final[id] = e
		s.GraceMap[id] = ticksLeft - 1
		if s.GraceMap[id] <= 0 {
			delete(s.GraceMap, id)
		}
	}

	for id := range visibleNow {
		s.GraceMap[id] = config.LOSGraceTicks
	}

	views := make([]EntityView, 0, len(final))
	for _, e := range final {
		views = append(views, EntityView{
			ID:       e.ID,
			Position: e.Position,
			Yaw:      e.Yaw,
			Pitch:    e.Pitch,
			HP:       e.HP,
			MaxHP:    e.MaxHP,
			IsPlayer: e.IsPlayer,
		})
	}
	return views
}
