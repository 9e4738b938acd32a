package fleet

import (
	"fmt"

	"spacerobots2/internal/battle"
	"spacerobots2/internal/mob"
	"spacerobots2/internal/random"
)

// Fleet is the dispatch block for one battle: one AI block plus
// controller per player, and the scratch pools the masked views are
// built in each tick.
type Fleet struct {
	scenario battle.Scenario
	rng      *random.Rand

	ais   []*AI
	ctrls []Controller

	// Scratch pools for the masked copies. Capacity is reserved up
	// front each tick so set pointers stay valid while filling.
	scratchMobs    []mob.Mob
	scratchSensors []mob.Mob
}

var _ battle.Dispatcher = (*Fleet)(nil)

// New builds the fleet-dispatch block for a scenario. It satisfies
// battle.DispatcherFactory; each AI gets its own stream derived from
// the fleet seed.
func New(sc *battle.Scenario, seed uint64) battle.Dispatcher {
	f := &Fleet{
		scenario: *sc,
		rng:      random.New(seed),
	}

	numAIs := sc.Params.NumPlayers
	if numAIs < 3 {
		panic(fmt.Sprintf("fleet: need >= 3 players, got %d", numAIs))
	}

	for i := 0; i < numAIs; i++ {
		player := sc.Players[i]
		if i == int(mob.NeutralPlayer) && player.AIType != NeutralName {
			panic(fmt.Sprintf("fleet: player 0 must run %q, got %q", NeutralName, player.AIType))
		}
		if player.Params != nil {
			player.Params = player.Params.Copy()
		}

		ai := &AI{
			PlayerID: mob.PlayerID(i),
			Player:   player,
			Params:   sc.Params,
			Rand:     random.New(f.rng.Uint64()),
			Mobs:     mob.NewSet(),
			Sensors:  mob.NewSet(),
			handles:  make(map[mob.ID]any),
		}
		f.ais = append(f.ais, ai)
		f.ctrls = append(f.ctrls, Lookup(player.AIType).New(ai))
	}

	return f
}

// Destroy tears the controllers down, delivering MobDestroyed for
// whatever each AI still had in its set after the final tick.
func (f *Fleet) Destroy() {
	for i, ai := range f.ais {
		ctrl := f.ctrls[i]
		ai.Mobs.All(func(m *mob.Mob) {
			ctrl.MobDestroyed(m, ai.MobHandle(m.ID))
		})
		ctrl.Destroy()
	}
}

// RunTick builds each player's masked view, runs the controller
// callbacks, and writes the (clamped) commands back.
func (f *Fleet) RunTick(status *battle.Status, mobs []*mob.Mob) {
	numMobs := len(mobs)
	numAIs := len(f.ais)

	// Reserve capacity so the scratch slices never reallocate while
	// the sets hold pointers into them.
	if cap(f.scratchMobs) < numMobs {
		f.scratchMobs = make([]mob.Mob, 0, numMobs*2)
	}
	if cap(f.scratchSensors) < numMobs*numAIs {
		f.scratchSensors = make([]mob.Mob, 0, numMobs*numAIs*2)
	}
	f.scratchMobs = f.scratchMobs[:0]
	f.scratchSensors = f.scratchSensors[:0]

	for i, ai := range f.ais {
		ai.Mobs.Clear()
		ai.Sensors.Clear()
		ai.Credits = status.Players[i].Credits
		ai.Tick = status.Tick
	}

	// Partition the world by owner, masking as we copy.
	for _, src := range mobs {
		f.scratchMobs = append(f.scratchMobs, *src)
		m := &f.scratchMobs[len(f.scratchMobs)-1]
		m.MaskForAI()

		p := src.PlayerID
		if p != mob.NeutralPlayer {
			f.ais[p].Mobs.Add(m)
		}

		if src.ScannedBy != 0 {
			for s := 0; s < numAIs; s++ {
				if !src.ScannedByPlayer(mob.PlayerID(s)) {
					continue
				}
				f.scratchSensors = append(f.scratchSensors, *src)
				sm := &f.scratchSensors[len(f.scratchSensors)-1]
				sm.MaskForSensor()
				f.ais[s].Sensors.Add(sm)
			}
		}
	}

	// Controller callbacks.
	for i, ai := range f.ais {
		f.runAITick(ai, f.ctrls[i])
	}

	// Write the commands back onto the authoritative mobs, clamping
	// out-of-field targets the way misbehaving controllers are
	// normalized everywhere else: silently.
	p := &f.scenario.Params
	for i, src := range mobs {
		m := &f.scratchMobs[i]
		if src.ID != m.ID {
			panic(fmt.Sprintf("fleet: write-back misaligned: %d != %d", src.ID, m.ID))
		}
		m.Cmd.Target = m.Cmd.Target.Clamp(0, p.Width, 0, p.Height)
		src.Cmd = m.Cmd
	}
}

// runAITick delivers one AI's birth callbacks, tick, and death
// callbacks.
func (f *Fleet) runAITick(ai *AI, ctrl Controller) {
	ai.Mobs.All(func(m *mob.Mob) {
		if m.BirthTick == ai.Tick {
			ai.SetMobHandle(m.ID, ctrl.MobSpawned(m))
		}
	})

	ctrl.RunTick()

	// Collect first: removal invalidates set iteration.
	var dead []*mob.Mob
	ai.Mobs.All(func(m *mob.Mob) {
		if !m.Alive {
			dead = append(dead, m)
		}
	})
	for _, m := range dead {
		ctrl.MobDestroyed(m, ai.MobHandle(m.ID))
		ai.dropMobHandle(m.ID)
		ai.Mobs.RemoveID(m.ID)
	}
}
