package tourney

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"spacerobots2/internal/battle"
	"spacerobots2/internal/config"
	"spacerobots2/internal/display"
	"spacerobots2/internal/fleet"
	"spacerobots2/internal/random"
)

// workType distinguishes queue items.
type workType int

const (
	workInvalid workType = iota
	workExit
	workBattle
)

// workUnit is one queued battle (or an exit sentinel).
type workUnit struct {
	Type     workType
	BattleID int
	Seed     uint64
	Scenario *battle.Scenario
}

// result carries one battle's final status back to the driver.
type result struct {
	BattleID int
	Status   battle.Status
}

// Options is the parsed CLI surface the driver runs under.
type Options struct {
	Headless  bool
	FrameSkip bool
	Loop      int
	Scenario  string

	Tournament bool
	Optimize   bool

	DumpPopulation   string
	UsePopulation    string
	MutatePopulation bool

	MutationNewIterations   int
	MutationStaleIterations int
	PopulationLimit         int
	PopulationKillRatio     float32

	Seed      uint64
	ReuseSeed bool
	TickLimit uint32

	NumThreads int
}

// Driver owns the whole tournament run: players, scenarios, the two
// queues, the worker pool and the result tally. It replaces the
// original's process-global state; its lifetime is main's.
type Driver struct {
	opts Options
	log  zerolog.Logger
	rng  *random.Rand

	players   []battle.Player
	scenarios []*battle.Scenario

	winners   map[battle.PlayerUID]*WinnerData
	breakdown map[[2]battle.PlayerUID]*WinnerData

	workQ   *Queue[workUnit]
	resultQ *Queue[result]

	totalBattles int
	asyncExit    atomic.Bool

	// Display is the optional render-frontend mailbox; nil when
	// headless. Only valid with a single worker.
	Display *display.Buffer
}

// NewDriver builds a driver from parsed options. The seed 0 means
// "random": it is replaced by a time-derived seed so every run differs
// unless pinned.
func NewDriver(opts Options, log zerolog.Logger) *Driver {
	if opts.NumThreads < 1 {
		opts.NumThreads = 1
	}
	if opts.Loop < 1 {
		opts.Loop = 1
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	d := &Driver{
		opts:      opts,
		log:       log,
		rng:       random.New(seed),
		winners:   make(map[battle.PlayerUID]*WinnerData),
		breakdown: make(map[[2]battle.PlayerUID]*WinnerData),
		workQ:     NewQueue[workUnit](),
		resultQ:   NewQueue[result](),
	}
	log.Debug().Str("seed", fmt.Sprintf("0x%X", seed)).Msg("driver seed")
	return d
}

// RequestExit makes workers abort their battles at the next tick
// boundary; aborted battles post no result.
func (d *Driver) RequestExit() {
	d.asyncExit.Store(true)
}

// TotalBattles returns how many battles this run will queue in total.
func (d *Driver) TotalBattles() int {
	return d.opts.Loop * len(d.scenarios)
}

// PendingBattles returns queued plus in-progress battles.
func (d *Driver) PendingBattles() int {
	return d.workQ.Count()
}

// Players returns the driver's player roster (neutral first).
func (d *Driver) Players() []battle.Player {
	return d.players
}

// ConstructScenarios loads the scenario parameters and materializes the
// battle scenarios for the selected mode.
func (d *Driver) ConstructScenarios() error {
	reg, err := config.LoadScenario(config.ScenarioDir(), d.opts.Scenario)
	if err != nil {
		return err
	}
	params := config.ParamsFromRegistry(reg)
	if d.opts.TickLimit != 0 {
		params.TickLimit = d.opts.TickLimit
	}

	// The neutral fleet always needs to be there.
	d.players = []battle.Player{{
		UID:    battle.NeutralUID,
		Name:   fleet.NeutralName,
		AIType: fleet.NeutralName,
		Type:   battle.PlayerTypeNeutral,
	}}

	switch {
	case d.opts.UsePopulation != "":
		if err := d.usePopulation(); err != nil {
			return err
		}
	case d.opts.Optimize:
		d.addPlayersForOptimize()
	case d.opts.Tournament:
		for _, name := range fleet.Names() {
			d.players = append(d.players, battle.Player{
				Name:   name,
				AIType: name,
				Type:   battle.PlayerTypeControl,
			})
		}
	default:
		// Single combat between the two reference fleets.
		d.players = append(d.players,
			battle.Player{Name: fleet.SimpleName, AIType: fleet.SimpleName},
			battle.Player{Name: fleet.DummyName, AIType: fleet.DummyName},
		)
	}

	for i := range d.players {
		p := &d.players[i]
		p.UID = battle.PlayerUID(i)
		if p.Name == "" {
			p.Name = p.AIType
		}
		if p.Type == battle.PlayerTypeInvalid {
			p.Type = battle.PlayerTypeTarget
		}
		if !fleet.Known(p.AIType) {
			return errors.Errorf("tourney: player %q uses unknown aiType %q", p.Name, p.AIType)
		}
	}

	d.buildScenarios(params)
	if len(d.scenarios) == 0 {
		return errors.New("tourney: no scenarios to run")
	}
	return nil
}

// addPlayersForOptimize appends every registered controller as a
// control fleet (the dummy stays out of the benchmark pool) plus the
// target fleets to optimize.
func (d *Driver) addPlayersForOptimize() {
	for _, name := range fleet.Names() {
		if name == fleet.DummyName {
			continue
		}
		d.players = append(d.players, battle.Player{
			Name:   name,
			AIType: name,
			Type:   battle.PlayerTypeControl,
		})
	}

	d.players = append(d.players, battle.Player{
		Name:   fleet.SimpleName + " Test",
		AIType: fleet.SimpleName,
		Type:   battle.PlayerTypeTarget,
	})
}

// buildScenarios turns the player roster into concrete battle
// scenarios for the selected mode.
func (d *Driver) buildScenarios(params battle.Params) {
	neutral := d.players[0]

	pairScenario := func(a, b battle.Player) *battle.Scenario {
		p := params
		p.NumPlayers = 3
		return &battle.Scenario{
			Params:  p,
			Players: []battle.Player{neutral, a, b},
		}
	}

	switch {
	case d.opts.Optimize || (d.opts.UsePopulation != "" && d.opts.MutatePopulation):
		for ti := range d.players {
			target := d.players[ti]
			if target.Type != battle.PlayerTypeTarget {
				continue
			}

			itCount := d.opts.MutationStaleIterations
			if target.Params == nil || target.Params.GetInt("numBattles") == 0 {
				itCount = d.opts.MutationNewIterations
			}

			for it := 0; it < itCount; it++ {
				for ci := range d.players {
					control := d.players[ci]
					if control.Type != battle.PlayerTypeControl {
						continue
					}
					d.scenarios = append(d.scenarios, pairScenario(target, control))
				}
			}
		}

	case d.opts.Tournament:
		for x := 1; x < len(d.players); x++ {
			for y := 1; y < len(d.players); y++ {
				if x == y {
					continue
				}
				d.scenarios = append(d.scenarios, pairScenario(d.players[x], d.players[y]))
			}
		}

	default:
		p := params
		p.NumPlayers = len(d.players)
		d.scenarios = append(d.scenarios, &battle.Scenario{
			Params:  p,
			Players: append([]battle.Player(nil), d.players...),
		})
	}
}

// Run drives the full tournament: spawns the worker pool, queues every
// battle, joins, tallies, prints, and optionally dumps the population.
func (d *Driver) Run() error {
	var g errgroup.Group
	for i := 0; i < d.opts.NumThreads; i++ {
		worker := &workerState{driver: d, id: i}
		g.Go(worker.loop)
	}

	battleID := 0
	for loop := 0; loop < d.opts.Loop; loop++ {
		for _, sc := range d.scenarios {
			wu := workUnit{
				Type:     workBattle,
				BattleID: battleID,
				Scenario: sc,
			}
			battleID++

			if battleID == 1 || d.opts.ReuseSeed {
				// The first battle runs on the driver seed itself, so a
				// single battle can be recreated from its logged seed
				// without --reuseSeed.
				wu.Seed = d.rng.Seed()
			} else {
				wu.Seed = d.rng.Uint64()
			}

			d.workQ.Enqueue(wu)
		}
	}
	d.totalBattles = battleID

	d.workQ.WaitForAllFinished()
	for i := 0; i < d.opts.NumThreads; i++ {
		d.workQ.Enqueue(workUnit{Type: workExit})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	d.tallyResults()
	d.printWinners()

	if d.opts.DumpPopulation != "" {
		return d.dumpPopulation(d.opts.DumpPopulation)
	}
	return nil
}

// tallyResults drains the result queue into the winner tables. Workers
// have all exited by now, so no synchronization is needed.
func (d *Driver) tallyResults() {
	for _, res := range d.resultQ.Drain() {
		status := res.Status
		for _, ps := range status.Players {
			d.winnerData(ps.UID).Record(ps.UID, &status)
		}
		if len(status.Players) == 3 {
			uid1 := status.Players[1].UID
			uid2 := status.Players[2].UID
			d.breakdownData(uid1, uid2).Record(uid1, &status)
			d.breakdownData(uid2, uid1).Record(uid2, &status)
		}
	}
}

func (d *Driver) winnerData(uid battle.PlayerUID) *WinnerData {
	wd, ok := d.winners[uid]
	if !ok {
		wd = &WinnerData{}
		d.winners[uid] = wd
	}
	return wd
}

func (d *Driver) breakdownData(uid, vs battle.PlayerUID) *WinnerData {
	key := [2]battle.PlayerUID{uid, vs}
	wd, ok := d.breakdown[key]
	if !ok {
		wd = &WinnerData{}
		d.breakdown[key] = wd
	}
	return wd
}

// printWinners logs the breakdown matrix (tournament mode) and the
// summary table.
func (d *Driver) printWinners() {
	if d.opts.Tournament {
		d.log.Info().Msg("Winner Breakdown:")
		for _, p1 := range d.players {
			for _, p2 := range d.players {
				wd, ok := d.breakdown[[2]battle.PlayerUID{p1.UID, p2.UID}]
				if !ok || wd.Battles == 0 {
					continue
				}
				d.log.Info().
					Str("fleet", p1.Name).
					Str("vs", p2.Name).
					Msg(wd.Summary())
			}
		}
	}

	d.log.Info().Msg("Summary:")
	totalBattles := uint(0)
	for _, p := range d.players {
		wd := d.winnerData(p.UID)
		totalBattles += wd.Wins
		d.log.Info().Str("fleet", p.Name).Msg(wd.Summary())
	}
	d.log.Info().Uint("totalBattles", totalBattles).Msg("done")
}

// workerState is one worker goroutine's scratch.
type workerState struct {
	driver *Driver
	id     int
}

// loop dequeues and runs battles until the exit sentinel arrives.
func (w *workerState) loop() error {
	for {
		wu := w.driver.workQ.WaitForItem()
		switch wu.Type {
		case workBattle:
			w.runBattle(&wu)
		case workExit:
			return nil
		default:
			panic(fmt.Sprintf("tourney: bad work type %d", wu.Type))
		}
		w.driver.workQ.FinishItem()
	}
}

// runBattle drives one battle from creation to its final status and
// posts the result. The battle and everything inside it is owned by
// this worker alone.
func (w *workerState) runBattle(wu *workUnit) {
	d := w.driver

	workersActive.Inc()
	defer workersActive.Dec()
	start := time.Now()

	b := battle.New(wu.Scenario, wu.Seed, fleet.New)
	defer b.Destroy()

	d.log.Info().
		Int("battle", wu.BattleID+1).
		Int("of", d.totalBattles).
		Int("worker", w.id).
		Msg("starting battle")

	finished := false
	var lastTick uint32
	for !finished && !d.asyncExit.Load() {
		b.RunTick()

		if d.Display != nil {
			mobs := b.AcquireMobs()
			d.Display.Publish(mobs)
			b.ReleaseMobs()
		}

		status := b.AcquireStatus()
		ticksSimulated.Add(float64(status.Tick - lastTick))
		lastTick = status.Tick
		if d.opts.NumThreads == 1 && status.Tick%5000 == 0 {
			w.logBattleStatus(wu, status, start)
		}
		finished = status.Finished
		b.ReleaseStatus()
	}

	status := b.AcquireStatus()
	w.logBattleStatus(wu, status, start)

	if finished {
		res := result{BattleID: wu.BattleID, Status: *status}
		res.Status.Players = append([]battle.PlayerStatus(nil), status.Players...)
		d.resultQ.Enqueue(res)
		battlesCompleted.Inc()
		collisionsTotal.Add(float64(status.Collisions))
		battleDuration.Observe(time.Since(start).Seconds())
	} else {
		battlesAborted.Inc()
	}
	b.ReleaseStatus()
}

// logBattleStatus is the per-battle summary line.
func (w *workerState) logBattleStatus(wu *workUnit, status *battle.Status, start time.Time) {
	d := w.driver
	elapsed := time.Since(start)
	tps := float64(status.Tick) / elapsed.Seconds()

	ev := d.log.Info().
		Int("battle", wu.BattleID+1).
		Str("seed", fmt.Sprintf("0x%X", wu.Seed)).
		Uint32("tick", status.Tick).
		Uint32("collisions", status.Collisions).
		Uint32("sensorContacts", status.SensorContacts).
		Uint32("spawns", status.Spawns).
		Uint32("shipSpawns", status.ShipSpawns).
		Float64("ticksPerSec", tps)

	if status.Finished {
		winner := "draw"
		for _, p := range wu.Scenario.Players {
			if p.UID == status.WinnerUID && status.WinnerUID != battle.NeutralUID {
				winner = p.Name
			}
		}
		ev = ev.Str("winner", winner)
	}
	ev.Msg("battle status")
}
