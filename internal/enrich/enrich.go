// Package enrich computes derived per-round player features. Every feature
// is gated by a flag and is a deterministic function of the dataset; flags
// that are off leave their columns zero-valued.
package enrich

import (
	"log/slog"

	"github.com/rmaguire/valorant-data/internal/model"
)

// Recognized feature flags.
const (
	FlagSurvivalRate     = "survival_rate"     // Survived = Deaths == 0
	FlagAggressionIndex  = "aggression_index"  // Kills / (Deaths + 1)
	FlagConsistencyIndex = "consistency_index" // mean kills per player
)

// Engineer applies flagged features to player round stats.
type Engineer struct {
	flags  map[string]bool
	logger *slog.Logger
}

// New creates an Engineer. Unknown flags are ignored.
func New(flags map[string]bool, logger *slog.Logger) *Engineer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engineer{flags: flags, logger: logger}
}

// PlayerRoundStats enriches the rows in place and returns them.
func (e *Engineer) PlayerRoundStats(stats []model.PlayerRoundStats) []model.PlayerRoundStats {
	if len(stats) == 0 {
		return stats
	}

	if e.flags[FlagSurvivalRate] {
		for i := range stats {
			stats[i].Survived = stats[i].Deaths == 0
		}
	}

	if e.flags[FlagAggressionIndex] {
		for i := range stats {
			stats[i].AggressionIndex = float64(stats[i].Kills) / float64(stats[i].Deaths+1)
		}
	}

	if e.flags[FlagConsistencyIndex] {
		means := meanKillsPerPlayer(stats)
		for i := range stats {
			stats[i].ConsistencyIndex = means[stats[i].PlayerID]
		}
	}

	e.logger.Debug("enrichment complete",
		"rows", len(stats),
		"survival_rate", e.flags[FlagSurvivalRate],
		"aggression_index", e.flags[FlagAggressionIndex],
		"consistency_index", e.flags[FlagConsistencyIndex],
	)

	return stats
}

func meanKillsPerPlayer(stats []model.PlayerRoundStats) map[string]float64 {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, s := range stats {
		sums[s.PlayerID] += s.Kills
		counts[s.PlayerID]++
	}

	means := make(map[string]float64, len(sums))
	for id, sum := range sums {
		means[id] = float64(sum) / float64(counts[id])
	}
	return means
}
