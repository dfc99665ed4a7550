package config

// Constants are the compile-time tunables of spec.md §6.3. They are the
// single shared definition the design notes call for: client and server
// must agree on EYE_HEIGHT, ENTITY_HEIGHT, ENTITY_RADIUS, the heightmap
// seed formula and the binary message layout byte-for-byte and
// metre-for-metre, so every package that needs one of these values
// imports it from here rather than redeclaring it locally.
const (
	TerrainSize = 2000.0
	GridSize    = 400
	CellSize    = 5.0

	ViewDistance = 200.0
	BotsCount    = 600
	TickRate     = 30

	PlayerSpeed  = 50.0
	PlayerRadius = 1.5

	FireRate          = 5 // shots per second
	BulletSpeed       = 150.0
	BulletDamage      = 20
	BulletLifetimeMs  = 3000
	BulletRadius      = 0.3
	BulletSubstep     = 0.1 // max travel distance per CCD sub-step

	EntityRadius = 1.0
	EntityHeight = 3.6
	EyeHeight    = 3.0

	LOSGraceTicks = 1

	BotTurnChance      = 0.02
	BotTurnSpeed       = 1.0 // rad/s
	BotSpeed           = 5.0 // u/s
	BotRadius          = 1.5
	SoftBoundaryMargin = 50.0
	HardBoundaryMargin = 10.0

	DefaultPort = 3005
)
