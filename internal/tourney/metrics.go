package tourney

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bounded-cardinality driver metrics; no per-fleet labels.
var (
	battlesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_battles_completed_total",
		Help: "Battles driven to a final status",
	})

	battlesAborted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_battles_aborted_total",
		Help: "Battles abandoned by async exit",
	})

	ticksSimulated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Simulation ticks executed across all battles",
	})

	collisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_collisions_total",
		Help: "Mob collisions resolved across all battles",
	})

	workersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_workers_active",
		Help: "Worker goroutines currently running a battle",
	})

	battleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_battle_duration_seconds",
		Help:    "Wall time per battle",
		Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 30, 120},
	})
)
