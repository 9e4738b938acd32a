// Command spacerobots2 runs the headless fleet-combat simulator: single
// battles, tournaments, and population optimization runs.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"spacerobots2/internal/api"
	"spacerobots2/internal/config"
	"spacerobots2/internal/display"
	"spacerobots2/internal/geom"
	"spacerobots2/internal/mob"
	"spacerobots2/internal/sprite"
	"spacerobots2/internal/tourney"
)

type options struct {
	Headless  bool   `long:"headless" short:"H" description:"Run without display"`
	FrameSkip bool   `long:"frameSkip" short:"F" description:"Allow display to skip frames under load"`
	Loop      int    `long:"loop" short:"l" default:"1" description:"Run each scenario N times"`
	Scenario  string `long:"scenario" short:"S" description:"Scenario file name"`

	Tournament bool `long:"tournament" short:"T" description:"Round-robin every non-neutral pair"`
	Optimize   bool `long:"optimize" short:"O" description:"Tournament plus target fleets"`

	DumpPopulation   string `long:"dumpPopulation" short:"D" description:"Write population registry to file"`
	UsePopulation    string `long:"usePopulation" short:"U" description:"Load population registry from file"`
	MutatePopulation bool   `long:"mutatePopulation" short:"M" description:"After loading, kill and mutate targets"`

	MutationNewIterations   int     `long:"mutationNewIterations" short:"I" default:"1" description:"Battles per fresh target per control"`
	MutationStaleIterations int     `long:"mutationStaleIterations" short:"J" default:"1" description:"Battles per stale target per control"`
	PopulationLimit         int     `long:"populationLimit" short:"Z" default:"100" description:"Cap on total fleets"`
	PopulationKillRatio     float32 `long:"populationKillRatio" short:"K" default:"0.25" description:"Fraction of targets to kill each round"`

	Seed      uint64 `long:"seed" short:"s" description:"Battle seed (0 = random)"`
	ReuseSeed bool   `long:"reuseSeed" short:"R" description:"Use same seed for every battle"`
	TickLimit uint32 `long:"tickLimit" short:"L" description:"Hard cap on ticks per battle"`

	NumThreads int `long:"numThreads" short:"t" default:"1" description:"Worker count"`

	StartPaused bool   `long:"startPaused" short:"P" description:"Display starts paused"`
	UnitTests   bool   `long:"unitTests" short:"u" description:"Run self-tests then exit"`
	DumpPNG     string `long:"dumpPNG" short:"p" description:"Emit sprite sheet then exit"`

	DebugAddr string `long:"debugAddr" description:"Serve the debug/metrics endpoint on this address"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "spacerobots2"

	if _, err := parser.Parse(); err != nil {
		// Spec'd exit codes: help and parse failures both exit 1.
		os.Exit(1)
	}

	// Optional .env overlay for deployment settings.
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	if opts.UnitTests {
		log.Info().Msg("starting unit tests")
		geom.SelfTest()
		mob.SelfTest()
		log.Info().Msg("done")
		return
	}

	if opts.DumpPNG != "" {
		if err := sprite.DumpPNG(opts.DumpPNG); err != nil {
			log.Fatal().Err(err).Msg("sprite dump failed")
		}
		return
	}

	driver := tourney.NewDriver(tourney.Options{
		Headless:                opts.Headless,
		FrameSkip:               opts.FrameSkip,
		Loop:                    opts.Loop,
		Scenario:                opts.Scenario,
		Tournament:              opts.Tournament || opts.Optimize,
		Optimize:                opts.Optimize,
		DumpPopulation:          opts.DumpPopulation,
		UsePopulation:           opts.UsePopulation,
		MutatePopulation:        opts.MutatePopulation,
		MutationNewIterations:   opts.MutationNewIterations,
		MutationStaleIterations: opts.MutationStaleIterations,
		PopulationLimit:         opts.PopulationLimit,
		PopulationKillRatio:     opts.PopulationKillRatio,
		Seed:                    opts.Seed,
		ReuseSeed:               opts.ReuseSeed,
		TickLimit:               opts.TickLimit,
		NumThreads:              opts.NumThreads,
	}, log)

	if err := driver.ConstructScenarios(); err != nil {
		log.Fatal().Err(err).Msg("scenario construction failed")
	}

	if !opts.Headless {
		if opts.NumThreads != 1 {
			log.Fatal().Msg("multiple threads requires --headless")
		}
		driver.Display = display.NewBuffer()
		if opts.StartPaused {
			log.Warn().Msg("--startPaused is honored by the display frontend")
		}
	}

	debugAddr := opts.DebugAddr
	if debugAddr == "" {
		debugAddr = config.GetEnvString("SR2_DEBUG_ADDR", "")
	}
	if debugAddr != "" {
		server := api.NewServer(driver.Display, func() api.Status {
			s := api.Status{
				TotalBattles:   driver.TotalBattles(),
				BattlesPending: driver.PendingBattles(),
			}
			if driver.Display != nil {
				s.FrameGeneration = driver.Display.Generation()
			}
			return s
		}, log)
		go func() {
			if err := server.Start(debugAddr); err != nil {
				log.Error().Err(err).Msg("debug server stopped")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Warn().Msg("exit requested, aborting battles")
		driver.RequestExit()
	}()

	if err := driver.Run(); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}
