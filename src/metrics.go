package game

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent advancing all rooms in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.016, 0.05},
	})

	playersOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_players_online",
		Help: "Joined player entities across all rooms",
	})

	botsAlive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_bots_alive",
		Help: "Living bot entities across all rooms",
	})

	bulletsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_bullets_in_flight",
		Help: "Bullets currently being simulated",
	})

	killsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_kills_total",
		Help: "Entity deaths resolved by the simulation",
	})
)

func observeTick(start time.Time, players, bots, bullets int) {
	tickDuration.Observe(time.Since(start).Seconds())
	playersOnline.Set(float64(players))
	botsAlive.Set(float64(bots))
	bulletsInFlight.Set(float64(bullets))
}
