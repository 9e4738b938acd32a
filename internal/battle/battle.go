package battle

import (
	"fmt"

	"spacerobots2/internal/geom"
	"spacerobots2/internal/mob"
	"spacerobots2/internal/random"
)

// Battle owns the authoritative world state for one fight. A battle is
// exclusively owned by one worker goroutine from creation to the final
// status read; nothing here is safe for concurrent use.
type Battle struct {
	scenario Scenario
	rng      *random.Rand

	status         Status
	statusAcquired bool

	dispatch Dispatcher

	powerCoreSpawnBucket float32

	lastMobID     mob.ID
	mobs          []*mob.Mob
	mobsAcquired  bool
	pendingSpawns []*mob.Mob
}

// New validates the scenario, places the starting fleets, and builds the
// dispatch block from a derived seed. The PRNG consumption order here is
// fixed: placements first, then the dispatcher seed.
func New(sc *Scenario, seed uint64, newDispatcher DispatcherFactory) *Battle {
	if sc == nil {
		panic("battle: nil scenario")
	}
	// Neutral plus at least two fleets.
	if sc.Params.NumPlayers < 3 {
		panic(fmt.Sprintf("battle: need >= 3 players, got %d", sc.Params.NumPlayers))
	}
	if len(sc.Players) != sc.Params.NumPlayers {
		panic(fmt.Sprintf("battle: scenario has %d player slots for numPlayers=%d",
			len(sc.Players), sc.Params.NumPlayers))
	}
	if sc.Params.NumPlayers > mob.MaxPlayers {
		panic(fmt.Sprintf("battle: numPlayers %d exceeds scan bitmap width", sc.Params.NumPlayers))
	}
	if sc.Players[mob.NeutralPlayer].Type != PlayerTypeNeutral {
		panic("battle: player 0 must be the neutral player")
	}

	b := &Battle{
		scenario: *sc,
		rng:      random.New(seed),
		mobs:     make([]*mob.Mob, 0, 1024),
	}

	b.status.Players = make([]PlayerStatus, sc.Params.NumPlayers)
	for i := range b.status.Players {
		b.status.Players[i] = PlayerStatus{
			UID:     sc.Players[i].UID,
			Alive:   true,
			Credits: sc.Params.StartingCredits,
		}
	}
	b.status.Winner = mob.NeutralPlayer
	b.status.WinnerUID = NeutralUID

	b.placeStartingMobs()

	b.dispatch = newDispatcher(&b.scenario, b.rng.Uint64())
	return b
}

// placeStartingMobs seeds each non-neutral player's bases and fighters,
// either anywhere on the field or inside the player's vertical strip
// when restrictedStart is set.
func (b *Battle) placeStartingMobs() {
	p := &b.scenario.Params
	numPlayers := p.NumPlayers

	randomShift := b.rng.Int(0, numPlayers-1)
	for i := 0; i < numPlayers; i++ {
		if mob.PlayerID(i) == mob.NeutralPlayer {
			continue
		}
		for s := 0; s < p.StartingBases+p.StartingFighters; s++ {
			t := mob.TypeFighter
			if s < p.StartingBases {
				t = mob.TypeBase
			}

			m := &mob.Mob{}
			m.Init(t)
			m.PlayerID = mob.PlayerID(i)
			b.lastMobID++
			m.ID = b.lastMobID

			if p.RestrictedStart {
				// The neutral player has no strip.
				slot := (i + randomShift) % (numPlayers - 1)
				slotW := p.Width / float32(numPlayers-1)
				m.Pos.X = b.rng.FloatRange(float32(slot)*slotW, float32(slot+1)*slotW)
				m.Pos.Y = b.rng.FloatRange(0, p.Height)
			} else {
				m.Pos.X = b.rng.FloatRange(0, p.Width)
				m.Pos.Y = b.rng.FloatRange(0, p.Height)
			}
			m.LastPos = m.Pos
			m.Cmd.Target = m.Pos
			b.mobs = append(b.mobs, m)
		}
	}
}

// Destroy releases the dispatch block and its controller state.
func (b *Battle) Destroy() {
	if b.dispatch != nil {
		b.dispatch.Destroy()
		b.dispatch = nil
	}
}

// Scenario returns the battle's immutable configuration.
func (b *Battle) Scenario() *Scenario {
	return &b.scenario
}

func (b *Battle) checkMobInvariants(m *mob.Mob) {
	p := &b.scenario.Params
	if m.Pos.X < 0 || m.Pos.Y < 0 || m.Pos.X > p.Width || m.Pos.Y > p.Height {
		panic(fmt.Sprintf("battle: mob %d out of bounds at (%f, %f)", m.ID, m.Pos.X, m.Pos.Y))
	}
	t := m.Cmd.Target
	if t.X < 0 || t.Y < 0 || t.X > p.Width || t.Y > p.Height {
		panic(fmt.Sprintf("battle: mob %d target out of bounds at (%f, %f)", m.ID, t.X, t.Y))
	}
}

// queueSpawn appends a pending child mob; it materializes after the
// collision pass.
func (b *Battle) queueSpawn(parent mob.ID, t mob.Type, p mob.PlayerID, pos geom.Point) *mob.Mob {
	spawn := &mob.Mob{}
	spawn.Init(t)
	spawn.PlayerID = p
	b.lastMobID++
	spawn.ID = b.lastMobID
	spawn.Pos = pos
	spawn.LastPos = pos
	spawn.Cmd.Target = pos
	spawn.BirthTick = b.status.Tick
	spawn.ParentID = parent

	b.pendingSpawns = append(b.pendingSpawns, spawn)

	b.status.Spawns++
	if t != mob.TypePowerCore && t != mob.TypeMissile {
		b.status.ShipSpawns++
	}
	return spawn
}

// runMobSpawn handles one mob's spawn request: legality, credit debit,
// recharge, and queueing the child at the parent's position with the
// parent's target.
func (b *Battle) runMobSpawn(m *mob.Mob) {
	spawnType := m.Cmd.SpawnType
	if spawnType == mob.TypeInvalid {
		return
	}
	if !m.Alive {
		return
	}
	if !spawnType.SpawnableBy(m.Type) {
		// Controller misbehavior: illegal spawn requests are dropped.
		return
	}

	ps := &b.status.Players[m.PlayerID]
	if ps.Credits < spawnType.Cost() {
		return
	}
	if m.RechargeTime > 0 {
		m.RechargeTime--
		return
	}

	ps.Credits -= spawnType.Cost()
	spawn := b.queueSpawn(m.ID, spawnType, m.PlayerID, m.Pos)
	spawn.Cmd.Target = m.Cmd.Target
	m.RechargeTime = m.Type.RechargeTicks()
	m.LastSpawnTick = b.status.Tick
}

// runMobMove advances one live mob toward its target by at most its
// type speed. Neutral mobs (power cores) never move.
func (b *Battle) runMobMove(m *mob.Mob) {
	if m.PlayerID == mob.NeutralPlayer {
		if m.Type != mob.TypePowerCore {
			panic(fmt.Sprintf("battle: neutral player owns a %s", m.Type))
		}
		return
	}

	m.LastPos = m.Pos
	m.Pos = m.Pos.MoveToward(m.Cmd.Target, m.Type.Speed())
	b.checkMobInvariants(m)
}

// RunTick advances the battle by one tick through the fixed phase
// order: AI dispatch, tick increment, physics, power-core regeneration,
// spawn queueing, collisions, spawn materialization, scanning, removal
// and victory.
func (b *Battle) RunTick() {
	// The AI sees the tick it is about to influence.
	b.dispatch.RunTick(&b.status, b.mobs)

	b.status.Tick++

	// Physics.
	for _, m := range b.mobs {
		m.ScannedBy = 0

		if m.Alive && (m.Type == mob.TypeMissile || m.Type == mob.TypePowerCore) {
			m.Fuel--
			if m.Fuel <= 0 {
				m.Alive = false
			}
		}
		if m.Alive {
			b.runMobMove(m)
		}
	}

	// Power-core regeneration.
	p := &b.scenario.Params
	b.powerCoreSpawnBucket += p.PowerCoreSpawnRate
	for b.powerCoreSpawnBucket > float32(p.MinPowerCoreSpawn) {
		credits := b.rng.Int(p.MinPowerCoreSpawn, p.MaxPowerCoreSpawn)
		b.powerCoreSpawnBucket -= float32(credits)

		pos := geom.Point{
			X: b.rng.FloatRange(0, p.Width),
			Y: b.rng.FloatRange(0, p.Height),
		}
		spawn := b.queueSpawn(mob.InvalidID, mob.TypePowerCore, mob.NeutralPlayer, pos)
		spawn.PowerCoreCredits = credits
	}

	// Spawn queueing.
	for _, m := range b.mobs {
		b.runMobSpawn(m)
		m.Cmd.SpawnType = mob.TypeInvalid
	}

	b.runCollisions()

	// Materialize pending spawns after collisions so newborns cannot be
	// hit on their birth tick.
	b.mobs = append(b.mobs, b.pendingSpawns...)
	b.pendingSpawns = b.pendingSpawns[:0]

	b.runScanning()

	// Removal and per-player liveness.
	for i := range b.status.Players {
		b.status.Players[i].Alive = false
		b.status.Players[i].NumMobs = 0
	}
	for i := 0; i < len(b.mobs); i++ {
		m := b.mobs[i]
		if m.Alive {
			ps := &b.status.Players[m.PlayerID]
			ps.NumMobs++

			if (m.Type != mob.TypePowerCore && !p.BaseVictory) || m.Type == mob.TypeBase {
				ps.Alive = true
			}
			continue
		}

		// Dead mobs linger one tick so the fleet AIs see the death.
		if m.Remove {
			last := len(b.mobs) - 1
			b.mobs[i] = b.mobs[last]
			b.mobs = b.mobs[:last]
			i--
		} else {
			m.Remove = true
		}
	}

	// Victory check and per-tick pay.
	livePlayers := 0
	for i := range b.status.Players {
		if b.status.Players[i].Alive {
			livePlayers++
			b.status.Players[i].Credits += p.CreditsPerTick
		}
	}
	if livePlayers <= 1 {
		b.status.Finished = true
		for i := range b.status.Players {
			if b.status.Players[i].Alive {
				b.status.Winner = mob.PlayerID(i)
				b.status.WinnerUID = b.status.Players[i].UID
			}
		}
	}
	if b.status.Tick >= p.TickLimit {
		b.status.Finished = true
	}
}

// AcquireMobs hands out the live mob slice for the display copy-out.
// At most one borrow may be outstanding; the engine will not advance
// while the slice is held.
func (b *Battle) AcquireMobs() []*mob.Mob {
	if b.mobsAcquired {
		panic("battle: mobs already acquired")
	}
	b.mobsAcquired = true
	return b.mobs
}

// ReleaseMobs returns the borrow taken by AcquireMobs.
func (b *Battle) ReleaseMobs() {
	if !b.mobsAcquired {
		panic("battle: mobs not acquired")
	}
	b.mobsAcquired = false
}

// AcquireStatus hands out the current battle status. At most one borrow
// may be outstanding.
func (b *Battle) AcquireStatus() *Status {
	if b.statusAcquired {
		panic("battle: status already acquired")
	}
	b.statusAcquired = true
	return &b.status
}

// ReleaseStatus returns the borrow taken by AcquireStatus.
func (b *Battle) ReleaseStatus() {
	if !b.statusAcquired {
		panic("battle: status not acquired")
	}
	b.statusAcquired = false
}
