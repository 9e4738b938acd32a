package fleet

import (
	"spacerobots2/internal/geom"
	"spacerobots2/internal/mob"
)

// DummyName is the baseline random-walk controller.
const DummyName = "Dummy"

func init() {
	register(&Spec{
		Name: DummyName,
		New:  func(ai *AI) Controller { return &dummyFleet{ai: ai} },
	})
}

// dummyFleet wanders at random and occasionally asks its base for a
// fighter. It exists as the weakest benchmark opponent.
type dummyFleet struct {
	ai *AI
}

func (d *dummyFleet) MobSpawned(*mob.Mob) any    { return nil }
func (d *dummyFleet) MobDestroyed(*mob.Mob, any) {}
func (d *dummyFleet) Destroy()                   {}

func (d *dummyFleet) RunTick() {
	ai := d.ai
	rs := ai.Rand

	ai.Mobs.All(func(m *mob.Mob) {
		newTarget := false

		if m.Type == mob.TypeBase {
			if rs.Int(0, 100) == 0 {
				m.Cmd.SpawnType = mob.TypeFighter
			}
		}

		if m.Pos.Distance(m.Cmd.Target) <= geom.Micron {
			newTarget = true
		}
		if m.Type != mob.TypeBase && rs.Int(0, 100) == 0 {
			newTarget = true
		}
		if m.BirthTick == ai.Tick {
			newTarget = true
		}

		if newTarget && rs.Bit() {
			m.Cmd.Target.X = rs.FloatRange(0, ai.Params.Width)
			m.Cmd.Target.Y = rs.FloatRange(0, ai.Params.Height)
		}
	})
}
