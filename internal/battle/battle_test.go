package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacerobots2/internal/geom"
	"spacerobots2/internal/mob"
)

// stubDispatcher lets tests drive the tick loop without controllers.
type stubDispatcher struct {
	fn func(status *Status, mobs []*mob.Mob)
}

func (s *stubDispatcher) RunTick(status *Status, mobs []*mob.Mob) {
	if s.fn != nil {
		s.fn(status, mobs)
	}
}

func (s *stubDispatcher) Destroy() {}

func stubFactory(fn func(*Status, []*mob.Mob)) DispatcherFactory {
	return func(*Scenario, uint64) Dispatcher {
		return &stubDispatcher{fn: fn}
	}
}

func testScenario(params Params) *Scenario {
	players := make([]Player, params.NumPlayers)
	players[0] = Player{UID: NeutralUID, Name: "Neutral", AIType: "Neutral", Type: PlayerTypeNeutral}
	for i := 1; i < params.NumPlayers; i++ {
		players[i] = Player{
			UID:    PlayerUID(i),
			Name:   "P" + string(rune('0'+i)),
			AIType: "Dummy",
			Type:   PlayerTypeTarget,
		}
	}
	return &Scenario{Params: params, Players: players}
}

func quietParams() Params {
	return Params{
		Width:              200,
		Height:             200,
		StartingCredits:    1000,
		CreditsPerTick:     0,
		TickLimit:          10,
		PowerCoreDropRate:  0.25,
		PowerCoreSpawnRate: 0,
		MinPowerCoreSpawn:  10,
		MaxPowerCoreSpawn:  20,
		StartingBases:      1,
		StartingFighters:   0,
		NumPlayers:         3,
	}
}

func TestCreateValidation(t *testing.T) {
	sc := testScenario(quietParams())
	sc.Params.NumPlayers = 2
	sc.Players = sc.Players[:2]
	assert.Panics(t, func() { New(sc, 1, stubFactory(nil)) }, "needs neutral plus two fleets")

	bad := testScenario(quietParams())
	bad.Players[0].Type = PlayerTypeTarget
	assert.Panics(t, func() { New(bad, 1, stubFactory(nil)) }, "player 0 must be neutral")

	mismatched := testScenario(quietParams())
	mismatched.Players = mismatched.Players[:2]
	assert.Panics(t, func() { New(mismatched, 1, stubFactory(nil)) })
}

func TestCreatePlacesStartingMobs(t *testing.T) {
	params := quietParams()
	params.StartingBases = 1
	params.StartingFighters = 2
	b := New(testScenario(params), 0x1, stubFactory(nil))

	// Two non-neutral players, three mobs each.
	require.Len(t, b.mobs, 6)

	ids := map[mob.ID]bool{}
	perPlayer := map[mob.PlayerID]int{}
	bases := 0
	for _, m := range b.mobs {
		assert.True(t, m.Alive)
		assert.False(t, ids[m.ID], "duplicate mobid")
		ids[m.ID] = true
		perPlayer[m.PlayerID]++
		if m.Type == mob.TypeBase {
			bases++
		}
		assert.LessOrEqual(t, m.Pos.X, params.Width)
		assert.LessOrEqual(t, m.Pos.Y, params.Height)
		assert.GreaterOrEqual(t, m.Pos.X, float32(0))
		assert.GreaterOrEqual(t, m.Pos.Y, float32(0))
	}
	assert.Equal(t, 2, bases)
	assert.Equal(t, 3, perPlayer[1])
	assert.Equal(t, 3, perPlayer[2])
	assert.Zero(t, perPlayer[mob.NeutralPlayer])

	for i := range b.status.Players {
		assert.Equal(t, params.StartingCredits, b.status.Players[i].Credits)
	}
}

func TestRestrictedStartKeepsPlayersInStrips(t *testing.T) {
	params := quietParams()
	params.RestrictedStart = true
	params.StartingFighters = 10
	b := New(testScenario(params), 0x77, stubFactory(nil))

	// Each player's mobs share one vertical strip of width/(numPlayers-1).
	slotW := params.Width / float32(params.NumPlayers-1)
	strips := map[mob.PlayerID]int{}
	for _, m := range b.mobs {
		strip := int(m.Pos.X / slotW)
		if prev, seen := strips[m.PlayerID]; seen {
			assert.Equal(t, prev, strip, "player %d straddles strips", m.PlayerID)
		} else {
			strips[m.PlayerID] = strip
		}
	}
	assert.NotEqual(t, strips[1], strips[2])
}

// Spec scenario: two inert fleets, tick limit 10 — a draw with both
// players alive and nothing colliding.
func TestTickLimitDraw(t *testing.T) {
	b := New(testScenario(quietParams()), 0x1, stubFactory(nil))

	ticks := 0
	for {
		b.RunTick()
		ticks++
		status := b.AcquireStatus()
		finished := status.Finished
		b.ReleaseStatus()
		if finished {
			break
		}
		require.Less(t, ticks, 100, "battle never finished")
	}

	status := b.AcquireStatus()
	defer b.ReleaseStatus()
	assert.True(t, status.Finished)
	assert.Equal(t, uint32(10), status.Tick)
	assert.Equal(t, NeutralUID, status.WinnerUID)
	assert.True(t, status.Players[1].Alive)
	assert.True(t, status.Players[2].Alive)
	assert.Zero(t, status.Collisions)
}

// Spec scenario: a missile killing a fighter drops a power core worth
// the fighter's full cost at the crash site.
func TestPowerCoreDropOnFighterKill(t *testing.T) {
	params := quietParams()
	params.PowerCoreDropRate = 1.0
	b := New(testScenario(params), 0x1, stubFactory(nil))

	fighter := &mob.Mob{}
	fighter.Init(mob.TypeFighter)
	fighter.ID = 101
	fighter.PlayerID = 1
	fighter.Pos = geom.Point{X: 100, Y: 100}
	fighter.Cmd.Target = fighter.Pos

	missile := &mob.Mob{}
	missile.Init(mob.TypeMissile)
	missile.ID = 102
	missile.PlayerID = 2
	missile.Pos = geom.Point{X: 100, Y: 100}
	missile.Cmd.Target = missile.Pos

	b.mobs = []*mob.Mob{fighter, missile}
	b.lastMobID = 200

	b.RunTick()

	assert.False(t, fighter.Alive)
	assert.False(t, missile.Alive)

	var core *mob.Mob
	for _, m := range b.mobs {
		if m.Type == mob.TypePowerCore {
			require.Nil(t, core, "exactly one core expected")
			core = m
		}
	}
	require.NotNil(t, core, "fighter kill must drop a core")
	assert.Equal(t, mob.TypeFighter.Cost(), core.PowerCoreCredits)
	assert.Equal(t, geom.Point{X: 100, Y: 100}, core.Pos)
	assert.Equal(t, mob.NeutralPlayer, core.PlayerID)
	assert.Equal(t, fighter.ID, core.ParentID)
}

// Spec scenario: scanning is symmetric within sensor range and no
// player ever scans itself.
func TestScanningConsistency(t *testing.T) {
	params := quietParams()
	params.Width = 1000
	params.Height = 1000
	b := New(testScenario(params), 0x1, stubFactory(nil))

	fighter := &mob.Mob{}
	fighter.Init(mob.TypeFighter)
	fighter.ID = 101
	fighter.PlayerID = 1
	fighter.Pos = geom.Point{X: 100, Y: 100}
	fighter.Cmd.Target = fighter.Pos

	base := &mob.Mob{}
	base.Init(mob.TypeBase)
	base.ID = 102
	base.PlayerID = 2
	base.Pos = geom.Point{X: 100, Y: 100 + mob.TypeFighter.SensorRadius() - 1}
	base.Cmd.Target = base.Pos

	b.mobs = []*mob.Mob{fighter, base}
	b.lastMobID = 200

	b.RunTick()

	assert.True(t, base.ScannedByPlayer(1))
	assert.True(t, fighter.ScannedByPlayer(2))
	assert.False(t, fighter.ScannedByPlayer(1), "no self-scan")
	assert.False(t, base.ScannedByPlayer(2), "no self-scan")
}

// Spec scenario: with baseVictory, losing the sole base loses the
// battle on the next tick.
func TestVictoryByLastPlayerAlive(t *testing.T) {
	params := quietParams()
	params.BaseVictory = true
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(nil))

	b.RunTick()
	status := b.AcquireStatus()
	assert.False(t, status.Finished)
	b.ReleaseStatus()

	for _, m := range b.mobs {
		if m.PlayerID == 2 && m.Type == mob.TypeBase {
			m.Alive = false
		}
	}

	b.RunTick()
	status = b.AcquireStatus()
	defer b.ReleaseStatus()
	assert.True(t, status.Finished)
	assert.Equal(t, PlayerUID(1), status.WinnerUID)
	assert.Equal(t, mob.PlayerID(1), status.Winner)
	assert.True(t, status.Players[1].Alive)
	assert.False(t, status.Players[2].Alive)
}

func TestDeadMobLingersOneTick(t *testing.T) {
	params := quietParams()
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(nil))

	victim := b.mobs[0]
	victim.Alive = false

	b.RunTick()
	found := false
	for _, m := range b.mobs {
		if m.ID == victim.ID {
			found = true
			assert.True(t, m.Remove, "grace tick should be marked")
		}
	}
	assert.True(t, found, "dead mob must linger one tick")

	b.RunTick()
	for _, m := range b.mobs {
		assert.NotEqual(t, victim.ID, m.ID, "dead mob must be removed after grace")
	}
}

func TestSpawnQueueing(t *testing.T) {
	params := quietParams()
	params.TickLimit = 1000
	requested := false
	b := New(testScenario(params), 0x1, stubFactory(func(status *Status, mobs []*mob.Mob) {
		if requested {
			return
		}
		for _, m := range mobs {
			if m.Type == mob.TypeBase && m.PlayerID == 1 {
				m.Cmd.SpawnType = mob.TypeFighter
				requested = true
			}
		}
	}))

	before := b.status.Players[1].Credits
	b.RunTick()

	var child *mob.Mob
	var parent *mob.Mob
	for _, m := range b.mobs {
		if m.Type == mob.TypeFighter && m.PlayerID == 1 {
			child = m
		}
		if m.Type == mob.TypeBase && m.PlayerID == 1 {
			parent = m
		}
	}
	require.NotNil(t, child, "spawn must materialize")
	require.NotNil(t, parent)

	assert.Equal(t, before-mob.TypeFighter.Cost(), b.status.Players[1].Credits)
	assert.Equal(t, parent.Pos, child.Pos)
	assert.Equal(t, parent.ID, child.ParentID)
	assert.Equal(t, b.status.Tick, child.BirthTick)
	assert.Equal(t, mob.TypeBase.RechargeTicks(), parent.RechargeTime)
	assert.Equal(t, uint32(1), b.status.ShipSpawns)
	assert.Equal(t, mob.TypeInvalid, parent.Cmd.SpawnType, "request cleared after the pass")
}

func TestSpawnBlockedByRecharge(t *testing.T) {
	params := quietParams()
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(func(_ *Status, mobs []*mob.Mob) {
		for _, m := range mobs {
			if m.Type == mob.TypeBase && m.PlayerID == 1 {
				m.Cmd.SpawnType = mob.TypeFighter
			}
		}
	}))

	b.RunTick()
	assert.Equal(t, uint32(1), b.status.ShipSpawns)

	// The recharge window ticks down one per attempted spawn; no new
	// fighter until it hits zero.
	for i := 0; i < mob.TypeBase.RechargeTicks(); i++ {
		b.RunTick()
		assert.Equal(t, uint32(1), b.status.ShipSpawns, "tick %d", i)
	}
	b.RunTick()
	assert.Equal(t, uint32(2), b.status.ShipSpawns)
}

func TestIllegalSpawnRequestsDropped(t *testing.T) {
	params := quietParams()
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(func(status *Status, mobs []*mob.Mob) {
		for _, m := range mobs {
			if m.Type == mob.TypeBase {
				// Bases may only build fighters.
				m.Cmd.SpawnType = mob.TypeMissile
			}
		}
	}))

	credits := b.status.Players[1].Credits
	b.RunTick()
	assert.Zero(t, b.status.Spawns)
	assert.Equal(t, credits, b.status.Players[1].Credits)
}

func TestInsufficientCreditsBlocksSpawn(t *testing.T) {
	params := quietParams()
	params.StartingCredits = mob.TypeFighter.Cost() - 1
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(func(status *Status, mobs []*mob.Mob) {
		for _, m := range mobs {
			if m.Type == mob.TypeBase {
				m.Cmd.SpawnType = mob.TypeFighter
			}
		}
	}))

	b.RunTick()
	assert.Zero(t, b.status.Spawns)
	for i := range b.status.Players {
		assert.GreaterOrEqual(t, b.status.Players[i].Credits, 0, "credits never go negative")
	}
}

func TestPowerCoreRegeneration(t *testing.T) {
	params := quietParams()
	params.PowerCoreSpawnRate = 25
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(nil))

	b.RunTick()

	cores := 0
	for _, m := range b.mobs {
		if m.Type == mob.TypePowerCore {
			cores++
			assert.Equal(t, mob.NeutralPlayer, m.PlayerID)
			assert.GreaterOrEqual(t, m.PowerCoreCredits, params.MinPowerCoreSpawn)
			assert.LessOrEqual(t, m.PowerCoreCredits, params.MaxPowerCoreSpawn)
		}
	}
	assert.Positive(t, cores, "bucket of 25 must spawn at least one core")
	// The bucket never retains more than one spawn's worth above the
	// floor.
	assert.LessOrEqual(t, b.powerCoreSpawnBucket, float32(params.MinPowerCoreSpawn))
}

func TestPowerCorePickup(t *testing.T) {
	params := quietParams()
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(nil))

	fighter := &mob.Mob{}
	fighter.Init(mob.TypeFighter)
	fighter.ID = 101
	fighter.PlayerID = 1
	fighter.Pos = geom.Point{X: 50, Y: 50}
	fighter.Cmd.Target = fighter.Pos

	core := &mob.Mob{}
	core.Init(mob.TypePowerCore)
	core.ID = 102
	core.PlayerID = mob.NeutralPlayer
	core.Pos = geom.Point{X: 50, Y: 50}
	core.Cmd.Target = core.Pos
	core.PowerCoreCredits = 17

	b.mobs = []*mob.Mob{fighter, core}
	b.lastMobID = 200

	before := b.status.Players[1].Credits
	b.RunTick()

	assert.True(t, fighter.Alive, "picking up a core is harmless")
	assert.False(t, core.Alive)
	assert.Equal(t, before+17, b.status.Players[1].Credits)
	assert.Equal(t, uint32(1), b.status.Collisions)
}

func TestNoFriendlyMissileCollision(t *testing.T) {
	params := quietParams()
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(nil))

	fighter := &mob.Mob{}
	fighter.Init(mob.TypeFighter)
	fighter.ID = 101
	fighter.PlayerID = 1
	fighter.Pos = geom.Point{X: 50, Y: 50}
	fighter.Cmd.Target = fighter.Pos

	missile := &mob.Mob{}
	missile.Init(mob.TypeMissile)
	missile.ID = 102
	missile.PlayerID = 1
	missile.Pos = geom.Point{X: 50, Y: 50}
	missile.Cmd.Target = missile.Pos

	b.mobs = []*mob.Mob{fighter, missile}
	b.lastMobID = 200

	b.RunTick()
	assert.True(t, fighter.Alive)
	assert.True(t, missile.Alive)
	assert.Zero(t, b.status.Collisions)
}

func TestMissileFuelExpiry(t *testing.T) {
	params := quietParams()
	params.TickLimit = 1000
	b := New(testScenario(params), 0x1, stubFactory(nil))

	missile := &mob.Mob{}
	missile.Init(mob.TypeMissile)
	missile.ID = 101
	missile.PlayerID = 1
	missile.Pos = geom.Point{X: 50, Y: 50}
	missile.Cmd.Target = missile.Pos
	b.mobs = append(b.mobs, missile)
	b.lastMobID = 200

	for i := 0; i < mob.TypeMissile.MaxFuel()-1; i++ {
		b.RunTick()
		require.True(t, missile.Alive, "tick %d", i)
		require.Positive(t, missile.Fuel, "live ammo keeps fuel > 0")
	}
	b.RunTick()
	assert.False(t, missile.Alive, "missile dies when fuel runs out")
}

func TestBorrowGuards(t *testing.T) {
	b := New(testScenario(quietParams()), 0x1, stubFactory(nil))

	mobs := b.AcquireMobs()
	assert.NotNil(t, mobs)
	assert.Panics(t, func() { b.AcquireMobs() })
	b.ReleaseMobs()
	assert.Panics(t, func() { b.ReleaseMobs() })

	status := b.AcquireStatus()
	assert.NotNil(t, status)
	assert.Panics(t, func() { b.AcquireStatus() })
	b.ReleaseStatus()
	assert.Panics(t, func() { b.ReleaseStatus() })

	// Pairs nest: a fresh acquire works after release.
	_ = b.AcquireMobs()
	b.ReleaseMobs()
}

func TestDispatcherSeesPreIncrementTick(t *testing.T) {
	var seen []uint32
	params := quietParams()
	params.TickLimit = 3
	b := New(testScenario(params), 0x1, stubFactory(func(status *Status, _ []*mob.Mob) {
		seen = append(seen, status.Tick)
	}))

	for i := 0; i < 3; i++ {
		b.RunTick()
	}
	assert.Equal(t, []uint32{0, 1, 2}, seen)
}
