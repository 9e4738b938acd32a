package tourney

import (
	"fmt"

	"github.com/pkg/errors"

	"spacerobots2/internal/battle"
	"spacerobots2/internal/fleet"
	"spacerobots2/internal/registry"
)

// usePopulation loads the fleets enumerated in the population file onto
// the roster and, when requested, runs the kill/mutate cycle over the
// TARGET fleets.
func (d *Driver) usePopulation() error {
	popReg := registry.New()
	if err := popReg.LoadFile(d.opts.UsePopulation); err != nil {
		return err
	}

	numFleets := popReg.GetInt("numFleets")
	if numFleets <= 0 {
		return errors.Errorf("tourney: %s: missing key: numFleets", d.opts.UsePopulation)
	}

	startIndex := len(d.players)
	numTargetFleets := 0

	for i := 1; i <= numFleets; i++ {
		fleetReg := popReg.SplitOnPrefix(fmt.Sprintf("fleet%d.", i))

		fleetName := fleetReg.Get("fleetName")
		if fleetName == "" {
			return errors.Errorf("tourney: %s: fleet%d: missing key: fleetName",
				d.opts.UsePopulation, i)
		}
		if !fleet.Known(fleetName) {
			return errors.Errorf("tourney: %s: fleet%d: unknown fleet %q",
				d.opts.UsePopulation, i, fleetName)
		}

		playerName := fleetReg.Get("playerName")
		if playerName == "" {
			playerName = fleetName
		}

		if fleetReg.Contains("age") {
			fleetReg.PutInt("age", fleetReg.GetInt("age")+1)
		} else {
			fleetReg.PutInt("age", 0)
		}

		playerType := battle.PlayerTypeFromString(fleetReg.Get("playerType"))
		if playerType == battle.PlayerTypeInvalid {
			return errors.Errorf("tourney: %s: fleet%d: missing playerType",
				d.opts.UsePopulation, i)
		}
		if playerType == battle.PlayerTypeTarget {
			numTargetFleets++
		}

		d.players = append(d.players, battle.Player{
			Name:   playerName,
			AIType: fleetName,
			Type:   playerType,
			Params: fleetReg.Copy(),
		})
	}

	if d.opts.MutatePopulation {
		return d.mutatePopulation(startIndex, numFleets, numTargetFleets)
	}
	return nil
}

// mutatePopulation removes killCount weak TARGET fleets and refills the
// roster with mutated clones of strong ones, keeping the population
// under the configured limit.
func (d *Driver) mutatePopulation(startIndex, numFleets, numTargetFleets int) error {
	popLimit := d.opts.PopulationLimit
	killRatio := d.opts.PopulationKillRatio

	if popLimit <= 0 {
		return errors.New("tourney: populationLimit must be positive")
	}
	if killRatio <= 0 || killRatio > 1 {
		return errors.Errorf("tourney: populationKillRatio %f out of (0, 1]", killRatio)
	}
	if numTargetFleets == 0 {
		return errors.New("tourney: population has no Target fleets to mutate")
	}

	killCount := int(float32(numTargetFleets) * killRatio)
	if numFleets > popLimit && numFleets-popLimit > killCount {
		killCount = numFleets - popLimit
	}
	if killCount > numTargetFleets-1 {
		killCount = numTargetFleets - 1
	}
	mutateCount := popLimit - numFleets + killCount
	if mutateCount < 0 {
		return errors.Errorf("tourney: population of %d cannot fit populationLimit %d (killable: %d)",
			numFleets, popLimit, killCount)
	}

	for killCount > 0 {
		fi := d.fleetCompetition(startIndex, numFleets, false)
		last := startIndex + numFleets - 1
		d.players[fi] = d.players[last]
		d.players = d.players[:last]
		killCount--
		numFleets--
	}

	for mutateCount > 0 {
		mi := d.fleetCompetition(startIndex, numFleets, true)
		d.players = append(d.players, d.mutateFleet(&d.players[mi]))
		mutateCount--
	}
	return nil
}

// fleetCompetition samples two weighted candidates and keeps the
// heavier one. Win-weighted picks survivors worth cloning; loss-
// weighted picks victims.
func (d *Driver) fleetCompetition(startIndex, numFleets int, useWinRatio bool) int {
	f1, w1 := d.findRandomFleet(startIndex, numFleets, useWinRatio)
	f2, w2 := d.findRandomFleet(startIndex, numFleets, useWinRatio)
	if w1 >= w2 {
		return f1
	}
	return f2
}

// findRandomFleet walks the TARGET fleets from a random start, accepting
// each with probability proportional to its historical win (or loss)
// fraction plus a floor that grows each full lap, so selection always
// terminates.
func (d *Driver) findRandomFleet(startIndex, numFleets int, useWinRatio bool) (int, float32) {
	iterations := 0
	i := d.rng.Int(0, numFleets-1)

	for {
		fi := startIndex + i
		p := &d.players[fi]

		if p.Type == battle.PlayerTypeTarget {
			var numBattles, weight uint
			if p.Params != nil {
				numBattles = p.Params.GetUint("numBattles")
				if useWinRatio {
					weight = p.Params.GetUint("numWins")
				} else {
					weight = p.Params.GetUint("numLosses")
				}
			}

			sProb := float32(0)
			if numBattles > 0 {
				sProb = float32(weight) / float32(numBattles)
			}
			sProb += float32(iterations/numFleets) + 0.01
			if sProb > 1 {
				sProb = 1
			}

			if d.rng.Flip(sProb) {
				return fi, sProb
			}
		}

		i = (i + 1) % numFleets
		iterations++
		if iterations > numFleets*101 {
			panic("tourney: unable to select enough fleets")
		}
	}
}

// mutateFleet clones a survivor, zeroes its record, resets its age, and
// runs the controller's mutation operator over its parameters.
func (d *Driver) mutateFleet(src *battle.Player) battle.Player {
	dest := *src
	dest.Type = battle.PlayerTypeTarget

	if src.Params != nil {
		dest.Params = src.Params.Copy()
	} else {
		dest.Params = registry.New()
	}
	dest.Params.Remove("numBattles")
	dest.Params.Remove("numWins")
	dest.Params.Remove("numLosses")
	dest.Params.Remove("numDraws")
	dest.Params.PutInt("age", 0)

	fleet.Mutate(dest.AIType, dest.Params, d.rng)
	return dest
}

// dumpPopulation writes the roster, its parameters, and the cumulative
// battle records back out in the population file format.
func (d *Driver) dumpPopulation(path string) error {
	popReg := registry.New()
	numFleets := 0

	for i := 1; i < len(d.players); i++ {
		p := &d.players[i]
		numFleets++
		prefix := fmt.Sprintf("fleet%d.", numFleets)

		// Copy the fleet's own keys first so the bookkeeping keys below
		// can override them.
		if p.Params != nil {
			popReg.PutAllWithPrefix(p.Params, prefix)
		}

		popReg.Put(prefix+"fleetName", p.AIType)
		popReg.Put(prefix+"playerName", p.Name)
		popReg.Put(prefix+"playerType", p.Type.String())

		wd := d.winnerData(p.UID)
		addCounter := func(key string, add uint) {
			prior := 0
			if p.Params != nil {
				prior = p.Params.GetInt(key)
			}
			popReg.PutInt(prefix+key, prior+int(add))
		}
		addCounter("numBattles", wd.Battles)
		addCounter("numWins", wd.Wins)
		addCounter("numLosses", wd.Losses)
		addCounter("numDraws", wd.Draws)
	}

	popReg.PutInt("numFleets", numFleets)
	return popReg.SaveFile(path)
}
