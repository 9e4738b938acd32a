package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacerobots2/internal/battle"
	"spacerobots2/internal/fleet"
	"spacerobots2/internal/mob"
)

func liveScenario() *battle.Scenario {
	return &battle.Scenario{
		Params: battle.Params{
			Width:              600,
			Height:             400,
			StartingCredits:    1000,
			CreditsPerTick:     1,
			TickLimit:          400,
			PowerCoreDropRate:  0.25,
			PowerCoreSpawnRate: 2.0,
			MinPowerCoreSpawn:  10,
			MaxPowerCoreSpawn:  20,
			RestrictedStart:    true,
			StartingBases:      1,
			StartingFighters:   3,
			NumPlayers:         3,
		},
		Players: []battle.Player{
			{UID: battle.NeutralUID, Name: "Neutral", AIType: fleet.NeutralName, Type: battle.PlayerTypeNeutral},
			{UID: 1, Name: "Simple", AIType: fleet.SimpleName, Type: battle.PlayerTypeTarget},
			{UID: 2, Name: "Dummy", AIType: fleet.DummyName, Type: battle.PlayerTypeTarget},
		},
	}
}

func runToCompletion(t *testing.T, sc *battle.Scenario, seed uint64) battle.Status {
	t.Helper()
	b := battle.New(sc, seed, fleet.New)
	defer b.Destroy()

	for {
		b.RunTick()

		status := b.AcquireStatus()
		finished := status.Finished
		require.LessOrEqual(t, status.Tick, sc.Params.TickLimit)
		b.ReleaseStatus()
		if finished {
			break
		}
	}

	status := b.AcquireStatus()
	out := *status
	out.Players = append([]battle.PlayerStatus(nil), status.Players...)
	b.ReleaseStatus()
	return out
}

// (scenario, seed) uniquely determines the final status.
func TestDeterministicReplay(t *testing.T) {
	first := runToCompletion(t, liveScenario(), 0xC0FFEE)
	second := runToCompletion(t, liveScenario(), 0xC0FFEE)
	assert.Equal(t, first, second)

	other := runToCompletion(t, liveScenario(), 0xC0FFEF)
	// A different seed virtually always lands elsewhere; at minimum the
	// deterministic pair above proved equality, this guards against a
	// constant result.
	if other.Tick == first.Tick && other.Spawns == first.Spawns &&
		other.SensorContacts == first.SensorContacts {
		t.Log("warning: distinct seeds produced identical counters")
	}
}

// Live-world invariants hold after every tick of a real battle.
func TestTickInvariants(t *testing.T) {
	sc := liveScenario()
	b := battle.New(sc, 0xFEED, fleet.New)
	defer b.Destroy()

	for tick := 0; tick < 200; tick++ {
		b.RunTick()

		mobs := b.AcquireMobs()
		for _, m := range mobs {
			require.GreaterOrEqual(t, m.Pos.X, float32(0))
			require.GreaterOrEqual(t, m.Pos.Y, float32(0))
			require.LessOrEqual(t, m.Pos.X, sc.Params.Width)
			require.LessOrEqual(t, m.Pos.Y, sc.Params.Height)

			require.GreaterOrEqual(t, m.Cmd.Target.X, float32(0))
			require.LessOrEqual(t, m.Cmd.Target.X, sc.Params.Width)

			if m.Alive && m.IsAmmo() {
				require.Positive(t, m.Fuel, "live ammo keeps fuel")
			}
			if m.Type == mob.TypePowerCore {
				require.Equal(t, mob.NeutralPlayer, m.PlayerID)
			}
		}
		b.ReleaseMobs()

		status := b.AcquireStatus()
		for i := range status.Players {
			require.GreaterOrEqual(t, status.Players[i].Credits, 0)
		}
		finished := status.Finished
		b.ReleaseStatus()
		if finished {
			break
		}
	}
}

// The winner, when not neutral, was alive at the finish; a full-length
// draw leaves the winner neutral.
func TestWinnerWasAlive(t *testing.T) {
	status := runToCompletion(t, liveScenario(), 0xFACE)

	if status.WinnerUID == battle.NeutralUID {
		return
	}
	for _, ps := range status.Players {
		if ps.UID == status.WinnerUID {
			assert.True(t, ps.Alive, "winner must be alive at finish")
			return
		}
	}
	t.Fatalf("winner UID %d not found in status", status.WinnerUID)
}
