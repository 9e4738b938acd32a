package mob

import "fmt"

// Type identifies what kind of mob a record is.
type Type int

const (
	TypeInvalid Type = iota
	TypeBase
	TypeFighter
	TypeMissile
	TypePowerCore

	typeMax
)

// TypeFlag is a bitmask over mob types, used for filtered set iteration
// and collision/scan partitioning.
type TypeFlag uint

const (
	FlagBase      TypeFlag = 1 << TypeBase
	FlagFighter   TypeFlag = 1 << TypeFighter
	FlagMissile   TypeFlag = 1 << TypeMissile
	FlagPowerCore TypeFlag = 1 << TypePowerCore

	// Ships own ammo; ammo collides with ships.
	FlagShip = FlagBase | FlagFighter
	FlagAmmo = FlagMissile | FlagPowerCore
	FlagAll  = FlagShip | FlagAmmo
)

// Flag returns the TypeFlag bit for t.
func (t Type) Flag() TypeFlag {
	return 1 << t
}

func (t Type) String() string {
	switch t {
	case TypeInvalid:
		return "Invalid"
	case TypeBase:
		return "Base"
	case TypeFighter:
		return "Fighter"
	case TypeMissile:
		return "Missile"
	case TypePowerCore:
		return "PowerCore"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// typeStats is the per-type stat table. Bases are immobile; power cores
// neither move nor scan. Fuel is the missile/core lifetime in ticks.
type typeStats struct {
	radius        float32
	sensorRadius  float32
	speed         float32
	maxHealth     int
	maxFuel       int
	cost          int
	rechargeTicks int
}

var statTable = [typeMax]typeStats{
	TypeBase: {
		radius:        30,
		sensorRadius:  250,
		speed:         0,
		maxHealth:     50,
		cost:          500,
		rechargeTicks: 10,
	},
	TypeFighter: {
		radius:        10,
		sensorRadius:  100,
		speed:         2.5,
		maxHealth:     1,
		cost:          100,
		rechargeTicks: 5,
	},
	TypeMissile: {
		radius:       3,
		sensorRadius: 60,
		speed:        5,
		maxHealth:    1,
		maxFuel:      40,
		cost:         1,
	},
	TypePowerCore: {
		radius:    8,
		maxHealth: 1,
		maxFuel:   400,
	},
}

func (t Type) stats() *typeStats {
	if t <= TypeInvalid || t >= typeMax {
		panic(fmt.Sprintf("mob: bad type %d", int(t)))
	}
	return &statTable[t]
}

// Radius returns the bounding-circle radius for t.
func (t Type) Radius() float32 { return t.stats().radius }

// SensorRadius returns the scan radius for t; 0 means t cannot scan.
func (t Type) SensorRadius() float32 { return t.stats().sensorRadius }

// Speed returns the per-tick movement budget for t.
func (t Type) Speed() float32 { return t.stats().speed }

// MaxHealth returns the starting health for t, which is also the damage
// t deals on a ship-vs-ammo collision.
func (t Type) MaxHealth() int { return t.stats().maxHealth }

// MaxFuel returns the lifetime in ticks for missiles and power cores;
// 0 for ships, which do not burn fuel.
func (t Type) MaxFuel() int { return t.stats().maxFuel }

// Cost returns the credit cost to spawn t.
func (t Type) Cost() int { return t.stats().cost }

// RechargeTicks returns how long a parent of type t waits between
// spawns.
func (t Type) RechargeTicks() int { return t.stats().rechargeTicks }

// SpawnableBy reports whether a parent of type parent may spawn t:
// bases build fighters, fighters fire missiles, nothing else spawns.
func (t Type) SpawnableBy(parent Type) bool {
	switch parent {
	case TypeBase:
		return t == TypeFighter
	case TypeFighter:
		return t == TypeMissile
	default:
		return false
	}
}
