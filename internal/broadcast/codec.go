// Package broadcast builds each client's per-tick visible set and
// encodes it onto the wire (spec.md §4.3, §4.8, §6.1). Framing mirrors
// the byte-oriented writer pattern the teacher's packet code uses, but
// the layout itself is pinned by the wire format both server and client
// must agree on bit-for-bit.
package broadcast

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"losgame/internal/sim"
	"losgame/internal/world"
	"losgame/internal/worldmath"
)

// Frame type tags (spec.md §6.1).
const (
	TypeConfig      byte = 0x01
	TypeUpdate      byte = 0x02
	TypeInput       byte = 0x03
	TypeShoot       byte = 0x04
	TypeToggleMode  byte = 0x05
)

// entityFlagIsPlayer is bit 0 of an UPDATE entity's flags byte.
const entityFlagIsPlayer = 1 << 0

// EntityView is the wire-facing projection of a world.Entity: only what
// an UPDATE frame carries for a remote entity.
type EntityView struct {
	ID       uint32
	Position worldmath.Vector3
	Yaw      float64
	Pitch    float64
	HP       int
	MaxHP    int
	IsPlayer bool
}

// BulletView is the wire-facing projection of a world.Bullet: position only.
type BulletView struct {
	Position worldmath.Vector3
}

// Stats is the 28-byte operator-facing tail appended to every UPDATE
// frame (spec.md §6.1). These never feed back into control.
type Stats struct {
	TotalEntities    uint32
	TotalObstacles   uint32
	ConnectedPlayers uint16
	TickTimeMsPerSec float32
	LOSTimeMsPerSec  float32
	TickTimeMsAvg    float32
	VisibleEntities  uint16
	ServerMode       uint8
	TickRate         uint8
}

// Update is the fully decoded content of a server->client UPDATE frame.
type Update struct {
	MyPosition worldmath.Vector3
	Entities   []EntityView
	Bullets    []BulletView
	Hits       []world.HitEvent
	Stats      Stats
}

// EncodeUpdate serialises u per spec.md §6.1's UPDATE layout, little-endian.
func EncodeUpdate(u Update) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(TypeUpdate)

	writeVec3f32(buf, u.MyPosition)

	binary.Write(buf, binary.LittleEndian, uint16(len(u.Entities)))
	for _, e := range u.Entities {
		binary.Write(buf, binary.LittleEndian, e.ID)
		writeVec3f32(buf, e.Position)
		binary.Write(buf, binary.LittleEndian, float32(e.Yaw))
		binary.Write(buf, binary.LittleEndian, float32(e.Pitch))
		binary.Write(buf, binary.LittleEndian, uint16(e.HP))
		binary.Write(buf, binary.LittleEndian, uint16(e.MaxHP))
		var flags byte
		if e.IsPlayer {
			flags |= entityFlagIsPlayer
		}
		buf.WriteByte(flags)
	}

	binary.Write(buf, binary.LittleEndian, uint16(len(u.Bullets)))
	for _, b := range u.Bullets {
		writeVec3f32(buf, b.Position)
	}

	binary.Write(buf, binary.LittleEndian, uint16(len(u.Hits)))
	for _, h := range u.Hits {
		writeVec3f32(buf, h.Position)
		if h.HitEntity {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}

	binary.Write(buf, binary.LittleEndian, u.Stats.TotalEntities)
	binary.Write(buf, binary.LittleEndian, u.Stats.TotalObstacles)
	binary.Write(buf, binary.LittleEndian, u.Stats.ConnectedPlayers)
	binary.Write(buf, binary.LittleEndian, u.Stats.TickTimeMsPerSec)
	binary.Write(buf, binary.LittleEndian, u.Stats.LOSTimeMsPerSec)
	binary.Write(buf, binary.LittleEndian, u.Stats.TickTimeMsAvg)
	binary.Write(buf, binary.LittleEndian, u.Stats.VisibleEntities)
	buf.WriteByte(u.Stats.ServerMode)
	buf.WriteByte(u.Stats.TickRate)
	buf.Write([]byte{0, 0}) // reserved

	return buf.Bytes()
}

// DecodeUpdate is the inverse of EncodeUpdate, used by codec_test.go's
// round-trip property (spec.md §8 invariant 6).
func DecodeUpdate(data []byte) (Update, error) {
	r := bytes.NewReader(data)
	var typ byte
	if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
		return Update{}, err
	}
	if typ != TypeUpdate {
		return Update{}, fmt.Errorf("broadcast: expected UPDATE frame, got type 0x%02x", typ)
	}

	var u Update
	u.MyPosition = readVec3f32(r)

	var entityCount uint16
	binary.Read(r, binary.LittleEndian, &entityCount)
	u.Entities = make([]EntityView, entityCount)
	for i := range u.Entities {
		var id uint32
		binary.Read(r, binary.LittleEndian, &id)
		pos := readVec3f32(r)
		var yaw, pitch float32
		binary.Read(r, binary.LittleEndian, &yaw)
		binary.Read(r, binary.LittleEndian, &pitch)
		var hp, maxHP uint16
		binary.Read(r, binary.LittleEndian, &hp)
		binary.Read(r, binary.LittleEndian, &maxHP)
		var flags byte
		binary.Read(r, binary.LittleEndian, &flags)
		u.Entities[i] = EntityView{
			ID: id, Position: pos,
			Yaw: float64(yaw), Pitch: float64(pitch),
			HP: int(hp), MaxHP: int(maxHP),
			IsPlayer: flags&entityFlagIsPlayer != 0,
		}
	}

	var bulletCount uint16
	binary.Read(r, binary.LittleEndian, &bulletCount)
	u.Bullets = make([]BulletView, bulletCount)
	for i := range u.Bullets {
		u.Bullets[i] = BulletView{Position: readVec3f32(r)}
	}

	var hitCount uint16
	binary.Read(r, binary.LittleEndian, &hitCount)
	u.Hits = make([]world.HitEvent, hitCount)
	for i := range u.Hits {
		pos := readVec3f32(r)
		var hitEntity byte
		binary.Read(r, binary.LittleEndian, &hitEntity)
		u.Hits[i] = world.HitEvent{Position: pos, HitEntity: hitEntity != 0}
	}

	binary.Read(r, binary.LittleEndian, &u.Stats.TotalEntities)
	binary.Read(r, binary.LittleEndian, &u.Stats.TotalObstacles)
	binary.Read(r, binary.LittleEndian, &u.Stats.ConnectedPlayers)
	binary.Read(r, binary.LittleEndian, &u.Stats.TickTimeMsPerSec)
	binary.Read(r, binary.LittleEndian, &u.Stats.LOSTimeMsPerSec)
	binary.Read(r, binary.LittleEndian, &u.Stats.TickTimeMsAvg)
	binary.Read(r, binary.LittleEndian, &u.Stats.VisibleEntities)
	binary.Read(r, binary.LittleEndian, &u.Stats.ServerMode)
	binary.Read(r, binary.LittleEndian, &u.Stats.TickRate)
	r.Seek(2, 1) // reserved

	return u, nil
}

func writeVec3f32(buf *bytes.Buffer, v worldmath.Vector3) {
	binary.Write(buf, binary.LittleEndian, float32(v.X))
	binary.Write(buf, binary.LittleEndian, float32(v.Y))
	binary.Write(buf, binary.LittleEndian, float32(v.Z))
}

func readVec3f32(r *bytes.Reader) worldmath.Vector3 {
	var x, y, z float32
	binary.Read(r, binary.LittleEndian, &x)
	binary.Read(r, binary.LittleEndian, &y)
	binary.Read(r, binary.LittleEndian, &z)
	return worldmath.Vector3{X: float64(x), Y: float64(y), Z: float64(z)}
}

// DecodeInput parses a 17-byte client->server INPUT frame (spec.md §6.1).
func DecodeInput(data []byte) (sim.MoveIntent, error) {
	if len(data) != 17 || data[0] != TypeInput {
		return sim.MoveIntent{}, fmt.Errorf("broadcast: malformed INPUT frame (%d bytes)", len(data))
	}
	r := bytes.NewReader(data[1:])
	var mx, mz, yaw, pitch float32
	binary.Read(r, binary.LittleEndian, &mx)
	binary.Read(r, binary.LittleEndian, &mz)
	binary.Read(r, binary.LittleEndian, &yaw)
	binary.Read(r, binary.LittleEndian, &pitch)
	return sim.MoveIntent{
		MoveX: float64(mx), MoveZ: float64(mz),
		Yaw: float64(yaw), Pitch: float64(pitch),
	}, nil
}

// EncodeInput is the inverse of DecodeInput, used by codec_test.go's
// round-trip property (spec.md §8 invariant 7).
func EncodeInput(intent sim.MoveIntent) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(TypeInput)
	binary.Write(buf, binary.LittleEndian, float32(intent.MoveX))
	binary.Write(buf, binary.LittleEndian, float32(intent.MoveZ))
	binary.Write(buf, binary.LittleEndian, float32(intent.Yaw))
	binary.Write(buf, binary.LittleEndian, float32(intent.Pitch))
	return buf.Bytes()
}

// DecodeShoot parses a 2-byte SHOOT frame.
func DecodeShoot(data []byte) (bool, error) {
	if len(data) != 2 || data[0] != TypeShoot {
		return false, fmt.Errorf("broadcast: malformed SHOOT frame (%d bytes)", len(data))
	}
	return data[1] != 0, nil
}

// EncodeShoot builds a 2-byte SHOOT frame.
func EncodeShoot(shooting bool) []byte {
	var v byte
	if shooting {
		v = 1
	}
	return []byte{TypeShoot, v}
}

// DecodeToggleMode parses a 2-byte TOGGLE_MODE frame.
func DecodeToggleMode(data []byte) (bool, error) {
	if len(data) != 2 || data[0] != TypeToggleMode {
		return false, fmt.Errorf("broadcast: malformed TOGGLE_MODE frame (%d bytes)", len(data))
	}
	return data[1] != 0, nil
}

// EncodeToggleMode builds a 2-byte TOGGLE_MODE frame.
func EncodeToggleMode(losMode bool) []byte {
	var v byte
	if losMode {
		v = 1
	}
	return []byte{TypeToggleMode, v}
}

// configObstacle is the JSON shape of one obstacle in the CONFIG envelope.
type configObstacle struct {
	Position      [3]float64 `json:"position"`
	Size          [3]float64 `json:"size"`
	Type          string     `json:"type"`
	TrunkRadius   float64    `json:"trunkRadius,omitempty"`
	FoliageRadius float64    `json:"foliageRadius,omitempty"`
	FoliageColor  string     `json:"foliageColor,omitempty"`
}

type configTerrain struct {
	Size      float64          `json:"size"`
	Obstacles []configObstacle `json:"obstacles"`
}

type configEnvelope struct {
	Type         string        `json:"type"`
	Terrain      configTerrain `json:"terrain"`
	ViewDistance float64       `json:"viewDistance"`
}

// EncodeConfig builds the one-time JSON CONFIG envelope (spec.md §6.1,
// §4.8): sent once at session open, ahead of any binary UPDATE frame.
func EncodeConfig(worldSize, viewDistance float64, obstacles []*world.Obstacle) ([]byte, error) {
	env := configEnvelope{
		Type:         "config",
		ViewDistance: viewDistance,
		Terrain: configTerrain{
			Size:      worldSize,
			Obstacles: make([]configObstacle, len(obstacles)),
		},
	}
	for i, o := range obstacles {
		env.Terrain.Obstacles[i] = configObstacle{
			Position:      [3]float64{o.Center.X, o.Center.Y, o.Center.Z},
			Size:          [3]float64{o.Size.X, o.Size.Y, o.Size.Z},
			Type:          o.Kind.String(),
			TrunkRadius:   o.TrunkRadius,
			FoliageRadius: o.FoliageRadius,
			FoliageColor:  o.FoliageColor,
		}
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte{TypeConfig}, payload...), nil
}
