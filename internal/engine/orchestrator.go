// Package engine is the tick orchestrator: the single authority over
// world state, client sessions and stage ordering (spec.md §4.7, §5).
// It owns the only goroutine that mutates the world; everything else
// (transport reads, session field updates) is data the orchestrator
// picks up at the top of the next tick.
package engine

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"losgame/internal/api"
	"losgame/internal/broadcast"
	"losgame/internal/config"
	"losgame/internal/perf"
	"losgame/internal/session"
	"losgame/internal/sim"
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

// tickInterval is the fixed wall-clock spacing between ticks (spec.md §4.7).
var tickInterval = time.Second / time.Duration(config.TickRate)

// Orchestrator runs the fixed-interval game loop described in spec.md
// §2 and §4.7: idle when no clients are connected, running otherwise,
// with every tick stage strictly ordered.
type Orchestrator struct {
	mu       sync.Mutex
	world    *world.World
	sessions map[uuid.UUID]*session.ClientSession
	rng      *sim.FastRand
	perf     perf.Tracker

	running  bool
	lastTime time.Time
	wake     chan struct{}

	// rolling 1-second stats window (spec.md §4.5, §6.1).
	statsWindowStart time.Time
	tickAccumMs      float64
	losAccumMs       float64
	tickSamples      int
	published        broadcast.Stats
}

// New builds an orchestrator around w and populates it with botCount
// bots at ids [0, botCount) per spec.md §3's id partitioning.
func New(w *world.World, botCount int, seed int64) *Orchestrator {
	o := &Orchestrator{
		world:    w,
		sessions: make(map[uuid.UUID]*session.ClientSession),
		rng:      sim.NewFastRand(uint64(seed)),
		wake:     make(chan struct{}, 1),
		published: broadcast.Stats{
			TickRate: uint8(config.TickRate),
		},
	}
	for i := 0; i < botCount; i++ {
		o.spawnBot(uint32(i))
	}
	return o
}

func (o *Orchestrator) spawnBot(id uint32) {
	half := o.world.Size/2 - 100
	x := o.rng.Uniform(-half, half)
	z := o.rng.Uniform(-half, half)
	e := &world.Entity{
		ID:       id,
		Position: worldmath.Vector3{X: x, Y: o.world.GroundHeight(x, z) + 2, Z: z},
		Yaw:      o.rng.Uniform(0, 2*math.Pi),
		HP:       100,
		MaxHP:    100,
	}
	o.world.AddEntity(e)
}

// Run starts the orchestrator's control goroutine. It blocks (parked on
// wake) until the first client connects, runs the fixed-interval loop
// while any session is open, then parks again. Intended to be launched
// once in its own goroutine by main.
func (o *Orchestrator) Run() {
	for {
		<-o.wake
		o.runWhileConnected()
	}
}

func (o *Orchestrator) runWhileConnected() {
	o.mu.Lock()
	o.lastTime = time.Now()
	o.statsWindowStart = o.lastTime
	o.running = true
	o.mu.Unlock()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		if o.tick() == 0 {
			o.mu.Lock()
			o.running = false
			o.mu.Unlock()
			return
		}
	}
}

// Connect spawns a player entity and session, returning the session and
// its one-time CONFIG frame (spec.md §4.8). Starts the loop if idle.
func (o *Orchestrator) Connect() (*session.ClientSession, []byte, error) {
	o.mu.Lock()
	id := o.world.NextPlayerID()
	bound := (o.world.Size - 200) / 2
	x := o.rng.Uniform(-bound, bound)
	z := o.rng.Uniform(-bound, bound)
	entity := &world.Entity{
		ID:       id,
		Position: worldmath.Vector3{X: x, Y: o.world.GroundHeight(x, z) + 2, Z: z},
		IsPlayer: true,
		HP:       100,
		MaxHP:    100,
	}
	o.world.AddEntity(entity)

	sess := session.New(entity, config.ViewDistance)
	o.sessions[sess.ID] = sess
	worldSize, obstacles := o.world.Size, o.world.Obstacles
	o.mu.Unlock()

	cfg, err := broadcast.EncodeConfig(worldSize, config.ViewDistance, obstacles)
	if err != nil {
		return nil, nil, err
	}

	select {
	case o.wake <- struct{}{}:
	default:
	}

	log.Printf("session connected: %s (player id %d)", sess.ID, id)
	return sess, cfg, nil
}

// Disconnect tears down a session immediately: entity removed, grid bin
// evicted, grace map discarded (spec.md §5 cancellation semantics).
func (o *Orchestrator) Disconnect(id uuid.UUID) {
	o.mu.Lock()
	sess, ok := o.sessions[id]
	if ok {
		o.world.RemoveEntity(sess.Entity.ID)
		delete(o.sessions, id)
	}
	o.mu.Unlock()
	log.Printf("session disconnected: %s", id)
}

// ConnectedSessions reports the current number of connected client
// sessions, satisfying api.StatsProvider for the /api/stats endpoint.
func (o *Orchestrator) ConnectedSessions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sessions)
}

// tick runs one full stage sequence and returns the number of sessions
// still connected afterward (0 tells the caller to go idle).
func (o *Orchestrator) tick() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := time.Now()
	deltaTime := now.Sub(o.lastTime).Seconds()
	o.lastTime = now
	nowMilli := now.UnixMilli()

	stopTick := o.perf.Start("tick")
	o.world.ClearTickHitEvents()

	// (a) advance bots
	for id, e := range o.world.Entities {
		if e.IsPlayer {
			continue
		}
		sim.StepBot(o.world, e, o.rng, deltaTime)
		_ = id
	}

	// (b) grid refresh is folded into World.MoveEntity, already called by
	// every mover in (a), (c) and the bullet step below.

	// (c) apply player intents
	for _, s := range o.sessions {
		sim.StepPlayer(o.world, s.Entity, s.Intent(), deltaTime)
	}

	// (d) spawn and integrate bullets
	for _, s := range o.sessions {
		if !s.IsShooting() {
			continue
		}
		if sim.CanFire(nowMilli, s.LastShotMilli) {
			s.LastShotMilli = nowMilli
			o.world.Bullets = append(o.world.Bullets, sim.SpawnBullet(o.world, s.Entity, nowMilli))
		}
	}
	sim.StepBullets(o.world, nowMilli, deltaTime, o.rng)
	// (e) hit events for this tick are now settled in o.world.TickHitEvents.

	// (f)-(g) per-client visibility + encode + send
	stopLOS := o.perf.Start("los")
	bulletViews := make([]broadcast.BulletView, len(o.world.Bullets))
	for i, b := range o.world.Bullets {
		bulletViews[i] = broadcast.BulletView{Position: b.Position}
	}

	connected := len(o.sessions)
	visibleSum := 0
	for _, s := range o.sessions {
		views := broadcast.VisibleSet(o.world, s)
		visibleSum += len(views)

		stats := o.published
		stats.TotalEntities = uint32(len(o.world.Entities))
		stats.TotalObstacles = uint32(len(o.world.Obstacles))
		stats.ConnectedPlayers = uint16(connected)
		stats.VisibleEntities = uint16(len(views))
		if s.Mode() {
			stats.ServerMode = 1
		}

		frame := broadcast.EncodeUpdate(broadcast.Update{
			MyPosition: s.Entity.Position,
			Entities:   views,
			Bullets:    bulletViews,
			Hits:       o.world.TickHitEvents,
			Stats:      stats,
		})
		s.TrySend(frame)
	}
	stopLOS()
	stopTick()

	api.UpdateConnectedPlayers(connected)
	if connected > 0 {
		api.UpdateVisibleEntities(visibleSum / connected)
	}
	api.RecordTick(o.perf.Duration("tick"))
	api.RecordLOS(o.perf.Duration("los"))

	// (h) rolling 1-second stats window
	o.tickAccumMs += o.perf.Duration("tick").Seconds() * 1000
	o.losAccumMs += o.perf.Duration("los").Seconds() * 1000
	o.tickSamples++
	o.perf.Reset()

	if now.Sub(o.statsWindowStart) >= time.Second {
		if o.tickSamples > 0 {
			n := float64(o.tickSamples)
			o.published.TickTimeMsPerSec = float32(o.tickAccumMs)
			o.published.TickTimeMsAvg = float32(o.tickAccumMs / n)
			o.published.LOSTimeMsPerSec = float32(o.losAccumMs)
		}
		o.tickAccumMs, o.losAccumMs, o.tickSamples = 0, 0, 0
		o.statsWindowStart = now
	}

	return connected
}
