// Package validate performs the post-merge quality pass: per-table null
// ratio reporting and identity-based deduplication.
//
// Duplicates arise when the same team or player appears in several records,
// or the same record is normalized from more than one source page; the first
// occurrence wins. Matches are keyed by (source, id), so equal raw ids from
// different sources are never collapsed.
package validate

import (
	"log/slog"

	"github.com/rmaguire/valorant-data/internal/model"
	"github.com/rmaguire/valorant-data/internal/source"
)

// nullRatioThreshold is the fraction of unset values above which a column is
// flagged.
const nullRatioThreshold = 0.9

// Report summarizes the validation of one table.
type Report struct {
	Table      string
	Rows       int // rows kept after dedup
	Duplicates int // rows removed
}

// Validator runs the quality pass.
type Validator struct {
	logger *slog.Logger
}

// New creates a Validator.
func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Dataset validates and deduplicates all six tables, returning the cleaned
// dataset and one report per table.
func (v *Validator) Dataset(data source.Entities) (source.Entities, []Report) {
	var out source.Entities
	var reports []Report

	out.Matches = dedup(data.Matches, model.Match.Key)
	reports = append(reports, v.report("matches", len(data.Matches), len(out.Matches)))
	v.checkNulls("matches", len(out.Matches), matchNulls(out.Matches))

	out.Maps = dedup(data.Maps, func(m model.GameMap) string { return m.MapID })
	reports = append(reports, v.report("maps", len(data.Maps), len(out.Maps)))
	v.checkNulls("maps", len(out.Maps), mapNulls(out.Maps))

	out.Rounds = dedup(data.Rounds, func(r model.Round) string { return r.RoundID })
	reports = append(reports, v.report("rounds", len(data.Rounds), len(out.Rounds)))
	v.checkNulls("rounds", len(out.Rounds), roundNulls(out.Rounds))

	out.Teams = dedup(data.Teams, func(t model.Team) string { return t.TeamID })
	reports = append(reports, v.report("teams", len(data.Teams), len(out.Teams)))
	v.checkNulls("teams", len(out.Teams), teamNulls(out.Teams))

	out.Players = dedup(data.Players, func(p model.Player) string { return p.PlayerID })
	reports = append(reports, v.report("players", len(data.Players), len(out.Players)))
	v.checkNulls("players", len(out.Players), playerNulls(out.Players))

	out.Stats = dedup(data.Stats, model.PlayerRoundStats.Key)
	reports = append(reports, v.report("player_round_stats", len(data.Stats), len(out.Stats)))

	return out, reports
}

// dedup keeps the first row for each key.
func dedup[T any](rows []T, key func(T) string) []T {
	seen := make(map[string]bool, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, row)
	}
	return out
}

func (v *Validator) report(table string, before, after int) Report {
	r := Report{Table: table, Rows: after, Duplicates: before - after}
	if r.Duplicates > 0 {
		v.logger.Info("removed duplicate rows",
			"table", table,
			"duplicates", r.Duplicates,
			"rows", r.Rows,
		)
	}
	return r
}

// checkNulls warns for each column whose unset ratio exceeds the threshold.
func (v *Validator) checkNulls(table string, rows int, unset map[string]int) {
	if rows == 0 {
		return
	}
	for column, count := range unset {
		ratio := float64(count) / float64(rows)
		if ratio > nullRatioThreshold {
			v.logger.Warn("high null ratio",
				"table", table,
				"column", column,
				"ratio", ratio,
			)
		}
	}
}

func matchNulls(rows []model.Match) map[string]int {
	unset := map[string]int{"start_time": 0, "patch": 0, "tournament": 0}
	for _, m := range rows {
		if m.StartTime == nil {
			unset["start_time"]++
		}
		if m.Patch == "" {
			unset["patch"]++
		}
		if m.Tournament == "" {
			unset["tournament"]++
		}
	}
	return unset
}

func mapNulls(rows []model.GameMap) map[string]int {
	unset := map[string]int{"name": 0, "winner_team_id": 0}
	for _, m := range rows {
		if m.Name == "" {
			unset["name"]++
		}
		if m.WinnerTeamID == "" {
			unset["winner_team_id"]++
		}
	}
	return unset
}

func roundNulls(rows []model.Round) map[string]int {
	unset := map[string]int{
		"attacking_team_id": 0,
		"defending_team_id": 0,
		"winner_team_id":    0,
		"end_offset":        0,
	}
	for _, r := range rows {
		if r.AttackingTeamID == "" {
			unset["attacking_team_id"]++
		}
		if r.DefendingTeamID == "" {
			unset["defending_team_id"]++
		}
		if r.WinnerTeamID == "" {
			unset["winner_team_id"]++
		}
		if r.EndOffset == nil {
			unset["end_offset"]++
		}
	}
	return unset
}

func teamNulls(rows []model.Team) map[string]int {
	unset := map[string]int{"name": 0, "region": 0}
	for _, t := range rows {
		if t.Name == "" {
			unset["name"]++
		}
		if t.Region == "" {
			unset["region"]++
		}
	}
	return unset
}

func playerNulls(rows []model.Player) map[string]int {
	unset := map[string]int{"handle": 0, "team_id": 0}
	for _, p := range rows {
		if p.Handle == "" {
			unset["handle"]++
		}
		if p.TeamID == "" {
			unset["team_id"]++
		}
	}
	return unset
}
