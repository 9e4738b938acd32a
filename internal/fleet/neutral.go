package fleet

import "spacerobots2/internal/mob"

// NeutralName is the aiType of the neutral player's controller.
const NeutralName = "Neutral"

func init() {
	register(&Spec{
		Name: NeutralName,
		New:  func(ai *AI) Controller { return neutralFleet{} },
	})
}

// neutralFleet is the inert controller for player 0. Neutral mobs are
// power cores, which never move, so there is nothing to command.
type neutralFleet struct{}

func (neutralFleet) RunTick()                      {}
func (neutralFleet) MobSpawned(*mob.Mob) any       { return nil }
func (neutralFleet) MobDestroyed(*mob.Mob, any)    {}
func (neutralFleet) Destroy()                      {}
