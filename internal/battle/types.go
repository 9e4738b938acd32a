// Package battle implements the authoritative single-battle simulation:
// world state, the tick loop, physics, collisions, scanning, the
// power-core economy and victory detection.
package battle

import (
	"fmt"

	"spacerobots2/internal/mob"
	"spacerobots2/internal/registry"
)

// PlayerUID identifies a player across battles; within a battle players
// are indexed by mob.PlayerID. UID 0 is the neutral player.
type PlayerUID uint32

// NeutralUID is the neutral player's UID; it is also the recorded
// "winner" of a draw.
const NeutralUID PlayerUID = 0

// PlayerType classifies a fleet for the tournament driver.
type PlayerType int

const (
	PlayerTypeInvalid PlayerType = iota
	PlayerTypeNeutral
	PlayerTypeControl
	PlayerTypeTarget
)

func (t PlayerType) String() string {
	switch t {
	case PlayerTypeInvalid:
		return "PlayerTypeInvalid"
	case PlayerTypeNeutral:
		return "Neutral"
	case PlayerTypeControl:
		return "Control"
	case PlayerTypeTarget:
		return "Target"
	default:
		panic(fmt.Sprintf("battle: bad player type %d", int(t)))
	}
}

// PlayerTypeFromString maps the population-file spelling back to a
// PlayerType. The empty string reads as Invalid; any other unrecognized
// string is a configuration fault and panics.
func PlayerTypeFromString(s string) PlayerType {
	switch s {
	case "", "PlayerTypeInvalid":
		return PlayerTypeInvalid
	case "Neutral":
		return PlayerTypeNeutral
	case "Control":
		return PlayerTypeControl
	case "Target":
		return PlayerTypeTarget
	default:
		panic(fmt.Sprintf("battle: unknown player type %q", s))
	}
}

// Params is the immutable per-battle tuning block.
type Params struct {
	Width  float32
	Height float32

	StartingCredits int
	CreditsPerTick  int
	TickLimit       uint32

	PowerCoreDropRate  float32
	PowerCoreSpawnRate float32
	MinPowerCoreSpawn  int
	MaxPowerCoreSpawn  int

	RestrictedStart  bool
	StartingBases    int
	StartingFighters int

	// BaseVictory makes owning a base the liveness condition; otherwise
	// any non-core mob keeps a player alive.
	BaseVictory bool

	NumPlayers int
}

// Player describes one fleet slot in a scenario.
type Player struct {
	UID    PlayerUID
	Name   string
	AIType string
	Type   PlayerType

	// Params is the controller's opaque configuration; nil means
	// defaults.
	Params *registry.Registry
}

// Scenario is the immutable configuration of one battle.
type Scenario struct {
	Params  Params
	Players []Player
}

// PlayerStatus is the per-player slice of a BattleStatus snapshot.
type PlayerStatus struct {
	UID     PlayerUID
	Alive   bool
	Credits int
	NumMobs int
}

// Status is the aggregated battle snapshot published each tick.
type Status struct {
	Tick     uint32
	Finished bool

	// Winner is the in-battle index of the winning player; WinnerUID is
	// its cross-battle identity. Both stay neutral on a draw.
	Winner    mob.PlayerID
	WinnerUID PlayerUID

	Players []PlayerStatus

	Collisions     uint32
	SensorContacts uint32
	Spawns         uint32
	ShipSpawns     uint32
}

// Dispatcher is the fleet-dispatch layer the engine drives once per
// tick; it builds masked views, invokes controllers and writes commands
// back onto the authoritative mobs.
type Dispatcher interface {
	RunTick(status *Status, mobs []*mob.Mob)
	Destroy()
}

// DispatcherFactory builds the dispatch block for a battle. The seed is
// drawn from the battle's own stream so (scenario, seed) pins the whole
// run.
type DispatcherFactory func(sc *Scenario, seed uint64) Dispatcher
