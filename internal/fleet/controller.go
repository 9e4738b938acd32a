// Package fleet sits between the battle engine and the AI controllers:
// it builds per-player masked views of the world, invokes controller
// callbacks, and writes commands back onto the authoritative mobs. The
// built-in reference controllers and the aiType registry live here too.
package fleet

import (
	"fmt"
	"sort"

	"spacerobots2/internal/battle"
	"spacerobots2/internal/mob"
	"spacerobots2/internal/random"
	"spacerobots2/internal/registry"
)

// Controller is the per-battle AI contract. A controller is created
// once per battle via its Spec factory, ticked every tick, told about
// each of its mobs' births and deaths, and destroyed after the final
// tick. Controllers only ever touch the masked copies in their own AI
// block, never the authoritative world.
type Controller interface {
	// RunTick writes commands into the AI block's mob set.
	RunTick()

	// MobSpawned is called once per owned mob on its birth tick. The
	// returned handle is stored per-mob and passed back to
	// MobDestroyed; nil is fine.
	MobSpawned(m *mob.Mob) any

	// MobDestroyed is called once per owned mob after its death, with
	// whatever MobSpawned returned for it.
	MobDestroyed(m *mob.Mob, handle any)

	// Destroy releases any controller state after the final tick.
	Destroy()
}

// Spec describes one registered controller kind.
type Spec struct {
	Name string

	// New builds the controller for one battle, bound to its AI block.
	New func(ai *AI) Controller

	// Mutate perturbs a parameter registry during population mutation;
	// nil when the controller has nothing to evolve.
	Mutate func(reg *registry.Registry, rng *random.Rand)
}

var specs = map[string]*Spec{}

// register adds a controller kind; called from init funcs below.
func register(s *Spec) {
	if _, dup := specs[s.Name]; dup {
		panic(fmt.Sprintf("fleet: duplicate controller %q", s.Name))
	}
	specs[s.Name] = s
}

// Lookup resolves an aiType name. Unknown names are a configuration
// fault and panic before any battle starts.
func Lookup(name string) *Spec {
	s, ok := specs[name]
	if !ok {
		panic(fmt.Sprintf("fleet: unknown controller %q", name))
	}
	return s
}

// Known reports whether an aiType name is registered.
func Known(name string) bool {
	_, ok := specs[name]
	return ok
}

// Names returns the registered controller names, sorted, excluding the
// neutral controller. This is the control-fleet roster for tournaments.
func Names() []string {
	var names []string
	for name := range specs {
		if name == NeutralName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mutate applies a controller kind's mutation operator to reg, if it
// has one.
func Mutate(aiType string, reg *registry.Registry, rng *random.Rand) {
	if s := Lookup(aiType); s.Mutate != nil {
		s.Mutate(reg, rng)
	}
}

// AI is the per-player block handed to a controller: identity, masked
// mob and sensor sets, and a private deterministic random stream.
type AI struct {
	PlayerID mob.PlayerID
	Player   battle.Player
	Params   battle.Params

	Rand *random.Rand

	// Tick mirrors the battle tick the controller is influencing.
	Tick uint32

	// Credits mirrors the player's balance at dispatch time.
	Credits int

	// Mobs holds masked copies of the player's own mobs; Sensors holds
	// further-masked copies of everything the player scanned this tick.
	Mobs    *mob.Set
	Sensors *mob.Set

	// handles is the per-fleet arena of controller per-mob state,
	// keyed by mob id. The mob record itself carries no controller
	// pointer.
	handles map[mob.ID]any
}

// MobHandle returns the controller state registered for a mob, or nil.
func (ai *AI) MobHandle(id mob.ID) any {
	return ai.handles[id]
}

// SetMobHandle registers controller state for a mob.
func (ai *AI) SetMobHandle(id mob.ID, h any) {
	ai.handles[id] = h
}

func (ai *AI) dropMobHandle(id mob.ID) {
	delete(ai.handles, id)
}
