// Package mob defines the unit of simulation: the Mob record, its type
// table, and the Set container the fleet-dispatch layer hands to
// controllers.
package mob

import (
	"spacerobots2/internal/geom"
)

// ID uniquely identifies a mob within one battle. IDs are dense small
// integers assigned from a monotonically increasing counter; 0 is never
// assigned.
type ID uint32

// InvalidID marks "no mob", e.g. the parent of a battle-placed mob.
const InvalidID ID = 0

// PlayerID indexes a player within one battle. Player 0 is always the
// neutral player, which owns the free-floating power cores.
type PlayerID uint32

// NeutralPlayer owns power cores and never acts.
const NeutralPlayer PlayerID = 0

// MaxPlayers bounds PlayerID so scannedBy fits one 32-bit bitmap.
const MaxPlayers = 32

// Command is the per-tick order a controller writes onto its mob.
type Command struct {
	// Target is the destination the mob moves toward at its type speed.
	Target geom.Point

	// SpawnType requests a child mob this tick, or TypeInvalid.
	SpawnType Type
}

// Mob is one simulated entity. The battle engine owns the authoritative
// records; controllers only ever see masked copies.
type Mob struct {
	ID       ID
	Type     Type
	PlayerID PlayerID

	// Alive is cleared on death; the record lingers one tick so
	// controllers observe the death, then Remove marks it for the
	// swap-remove on the following tick.
	Alive  bool
	Remove bool

	Pos     geom.Point
	LastPos geom.Point
	Cmd     Command

	Health       int
	Fuel         int
	RechargeTime int

	BirthTick     uint32
	LastSpawnTick uint32

	// ParentID is the spawner for missiles and dropped power cores.
	ParentID ID

	// PowerCoreCredits is the credit value carried by a power core.
	PowerCoreCredits int

	// ScannedBy has bit p set when player p sees this mob this tick.
	ScannedBy uint32
}

// Init resets m to a freshly spawned mob of type t at full health and
// fuel. Position, owner and id are the caller's to fill in.
func (m *Mob) Init(t Type) {
	*m = Mob{
		Type:   t,
		Alive:  true,
		Health: t.MaxHealth(),
		Fuel:   t.MaxFuel(),
	}
}

// IsAmmo reports whether m collides into ships rather than being one.
func (m *Mob) IsAmmo() bool {
	return m.Type.Flag()&FlagAmmo != 0
}

// Circle returns m's bounding circle.
func (m *Mob) Circle() geom.Circle {
	return geom.Circle{Center: m.Pos, Radius: m.Type.Radius()}
}

// SensorCircle returns m's scan circle.
func (m *Mob) SensorCircle() geom.Circle {
	return geom.Circle{Center: m.Pos, Radius: m.Type.SensorRadius()}
}

// MaskForAI strips fields the owning controller has no business seeing.
// The owner keeps commands and identity.
func (m *Mob) MaskForAI() {
	m.ScannedBy = 0
}

// MaskForSensor additionally strips fields not observable from outside:
// orders, fuel and recharge state stay hidden from enemy sensors.
func (m *Mob) MaskForSensor() {
	m.MaskForAI()
	m.Cmd = Command{Target: m.Pos, SpawnType: TypeInvalid}
	m.Fuel = 0
	m.RechargeTime = 0
	m.LastSpawnTick = 0
	m.ParentID = InvalidID
}

// ScannedByPlayer reports whether player p sees m this tick.
func (m *Mob) ScannedByPlayer(p PlayerID) bool {
	return m.ScannedBy&(1<<p) != 0
}

// SetScannedBy marks m as seen by player p this tick.
func (m *Mob) SetScannedBy(p PlayerID) {
	m.ScannedBy |= 1 << p
}

// ClearScannedBy drops player p's scan bit.
func (m *Mob) ClearScannedBy(p PlayerID) {
	m.ScannedBy &^= 1 << p
}
