package fleet

import (
	"spacerobots2/internal/geom"
	"spacerobots2/internal/mob"
	"spacerobots2/internal/mutate"
	"spacerobots2/internal/random"
	"spacerobots2/internal/registry"
)

// SimpleName is the basic attack controller: fighters chase the closest
// sensor contact, missiles home, the base builds fighters above a
// credit reserve.
const SimpleName = "Simple"

func init() {
	register(&Spec{
		Name:   SimpleName,
		New:    newSimpleFleet,
		Mutate: mutateSimpleFleet,
	})
}

// enemyBaseMemoryTicks is how long a stale enemy-base sighting is kept
// feeding the sensor set.
const enemyBaseMemoryTicks = 200

type simpleFleet struct {
	ai *AI

	basePos      geom.Point
	enemyBase    mob.Mob
	enemyBaseAge int

	creditReserve int
	missileOdds   int
}

func newSimpleFleet(ai *AI) Controller {
	sf := &simpleFleet{
		ai:            ai,
		creditReserve: 200,
		missileOdds:   20,
	}
	if reg := ai.Player.Params; reg != nil {
		sf.creditReserve = int(reg.GetFloatDefault("creditReserve", 200))
		sf.missileOdds = int(reg.GetFloatDefault("missileOdds", 20))
		if sf.missileOdds < 1 {
			sf.missileOdds = 1
		}
	}
	return sf
}

func mutateSimpleFleet(reg *registry.Registry, rng *random.Rand) {
	mutate.Float(reg, rng, []mutate.FloatParams{
		// key            min  max   mag   jump  rate
		{Key: "creditReserve", Min: 0, Max: 1000, Magnitude: 0.1, JumpRate: 0.05, MutationRate: 0.25},
		{Key: "missileOdds", Min: 1, Max: 100, Magnitude: 0.1, JumpRate: 0.05, MutationRate: 0.25},
	})
}

func (sf *simpleFleet) MobSpawned(*mob.Mob) any    { return nil }
func (sf *simpleFleet) MobDestroyed(*mob.Mob, any) {}
func (sf *simpleFleet) Destroy()                   {}

func (sf *simpleFleet) RunTick() {
	ai := sf.ai
	rs := ai.Rand

	// If we've found the enemy base, assume it's still there.
	if enemyBase := ai.Sensors.FindClosest(sf.basePos, mob.FlagBase); enemyBase != nil {
		sf.enemyBase = *enemyBase
		sf.enemyBaseAge = 0
	} else if sf.enemyBase.Type == mob.TypeBase && sf.enemyBaseAge < enemyBaseMemoryTicks {
		ai.Sensors.Add(&sf.enemyBase)
		sf.enemyBaseAge++
	}

	target := ai.Sensors.FindClosest(sf.basePos, mob.FlagShip)

	// Avoid sending every fighter to the same power core.
	coreClaims := make(map[mob.ID]int)

	ai.Mobs.All(func(m *mob.Mob) {
		switch m.Type {
		case mob.TypeFighter:
			t := target
			if t == nil {
				t = ai.Sensors.FindClosest(sf.basePos, mob.FlagPowerCore)
				if t != nil {
					coreClaims[t.ID]++
					if coreClaims[t.ID] > 1 {
						t = nil
					}
				}
			}

			if t != nil {
				m.Cmd.Target = t.Pos
				if t.Type != mob.TypePowerCore && rs.Int(0, sf.missileOdds) == 0 {
					m.Cmd.SpawnType = mob.TypeMissile
				}
			} else if m.Pos.Distance(m.Cmd.Target) <= geom.Micron {
				if rs.Bit() {
					m.Cmd.Target.X = rs.FloatRange(0, ai.Params.Width)
					m.Cmd.Target.Y = rs.FloatRange(0, ai.Params.Height)
				} else {
					m.Cmd.Target = sf.basePos
				}
			}

		case mob.TypeMissile:
			if t := ai.Sensors.FindClosest(m.Pos, mob.FlagShip); t != nil {
				m.Cmd.Target = t.Pos
			}

		case mob.TypeBase:
			sf.basePos = m.Pos
			if ai.Credits > sf.creditReserve && rs.Int(0, 100) == 0 {
				m.Cmd.SpawnType = mob.TypeFighter
			} else {
				m.Cmd.SpawnType = mob.TypeInvalid
			}
		}
	})
}
