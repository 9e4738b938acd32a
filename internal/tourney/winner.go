package tourney

import (
	"fmt"

	"spacerobots2/internal/battle"
)

// WinnerData accumulates one fleet's results across battles. Tallying
// is commutative: the totals depend only on the multiset of results,
// never on completion order.
type WinnerData struct {
	Battles     uint
	BattleTicks uint
	Wins        uint
	WinTicks    uint
	Losses      uint
	LossTicks   uint
	Draws       uint
	DrawTicks   uint
}

// Record tallies one battle result for the player with the given UID.
// A result whose winner is neutral is a draw for every non-neutral
// player in it; the neutral player's own record counts it as a win.
func (wd *WinnerData) Record(uid battle.PlayerUID, status *battle.Status) {
	ticks := uint(status.Tick)

	switch {
	case uid == status.WinnerUID:
		wd.Wins++
		wd.WinTicks += ticks
	case status.WinnerUID == battle.NeutralUID:
		wd.Draws++
		wd.DrawTicks += ticks
	default:
		wd.Losses++
		wd.LossTicks += ticks
	}
	wd.Battles++
	wd.BattleTicks += ticks

	if wd.Wins+wd.Losses+wd.Draws != wd.Battles {
		panic("tourney: winner tally out of balance")
	}
	if wd.WinTicks+wd.LossTicks+wd.DrawTicks != wd.BattleTicks {
		panic("tourney: winner tick tally out of balance")
	}
}

// Summary renders the classic one-line record.
func (wd *WinnerData) Summary() string {
	percent := float32(0)
	if wd.Battles > 0 {
		percent = 100 * float32(wd.Wins) / float32(wd.Battles)
	}
	return fmt.Sprintf("%3d wins, %3d losses, %3d draws => %4.1f%% wins",
		wd.Wins, wd.Losses, wd.Draws, percent)
}
