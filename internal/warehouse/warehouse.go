// Package warehouse loads a cleaned dataset into Postgres. Loading is
// idempotent: rows already present are skipped via ON CONFLICT DO NOTHING,
// and each run is recorded in ingest_runs.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmaguire/valorant-data/internal/config"
	"github.com/rmaguire/valorant-data/internal/model"
	"github.com/rmaguire/valorant-data/internal/source"
)

// Connect creates and pings a connection pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Loader writes datasets to the warehouse.
type Loader struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewLoader creates a Loader on an existing pool.
func NewLoader(db *pgxpool.Pool, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{db: db, logger: logger}
}

// Load inserts all tables for one run and records the run itself.
func (l *Loader) Load(ctx context.Context, runID string, data source.Entities) error {
	start := time.Now()

	for _, table := range []struct {
		name  string
		batch *pgx.Batch
		rows  int
	}{
		{"matches", matchBatch(data.Matches), len(data.Matches)},
		{"teams", teamBatch(data.Teams), len(data.Teams)},
		{"players", playerBatch(data.Players), len(data.Players)},
		{"maps", mapBatch(data.Maps), len(data.Maps)},
		{"rounds", roundBatch(data.Rounds), len(data.Rounds)},
		{"player_round_stats", statBatch(data.Stats), len(data.Stats)},
	} {
		conflicts, err := l.send(ctx, table.batch, table.rows)
		if err != nil {
			return fmt.Errorf("loading %s: %w", table.name, err)
		}
		l.logger.Debug("loaded table",
			"table", table.name,
			"rows", table.rows,
			"conflicts", conflicts,
		)
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO ingest_runs (run_id, ran_at, matches, teams, players, maps, rounds, player_round_stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, runID, start.UTC(),
		len(data.Matches), len(data.Teams), len(data.Players),
		len(data.Maps), len(data.Rounds), len(data.Stats),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	l.logger.Info("warehouse load complete", "run_id", runID, "duration", time.Since(start))
	return nil
}

// send executes a batch and counts rows skipped by conflict.
func (l *Loader) send(ctx context.Context, batch *pgx.Batch, rows int) (conflicts int, err error) {
	if rows == 0 {
		return 0, nil
	}

	results := l.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < rows; i++ {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}
	return conflicts, nil
}

func matchBatch(rows []model.Match) *pgx.Batch {
	b := &pgx.Batch{}
	for _, m := range rows {
		var start *time.Time
		if m.StartTime != nil {
			utc := m.StartTime.UTC()
			start = &utc
		}
		b.Queue(`
			INSERT INTO matches (match_id, source, start_time, patch, tournament, teams)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (source, match_id) DO NOTHING
		`, m.MatchID, m.Source, start, m.Patch, m.Tournament, m.Teams)
	}
	return b
}

func teamBatch(rows []model.Team) *pgx.Batch {
	b := &pgx.Batch{}
	for _, t := range rows {
		b.Queue(`
			INSERT INTO teams (team_id, name, region)
			VALUES ($1, $2, $3)
			ON CONFLICT (team_id) DO NOTHING
		`, t.TeamID, t.Name, t.Region)
	}
	return b
}

func playerBatch(rows []model.Player) *pgx.Batch {
	b := &pgx.Batch{}
	for _, p := range rows {
		b.Queue(`
			INSERT INTO players (player_id, handle, team_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (player_id) DO NOTHING
		`, p.PlayerID, p.Handle, p.TeamID)
	}
	return b
}

func mapBatch(rows []model.GameMap) *pgx.Batch {
	b := &pgx.Batch{}
	for _, m := range rows {
		b.Queue(`
			INSERT INTO maps (map_id, match_id, name, winner_team_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (map_id) DO NOTHING
		`, m.MapID, m.MatchID, m.Name, m.WinnerTeamID)
	}
	return b
}

func roundBatch(rows []model.Round) *pgx.Batch {
	b := &pgx.Batch{}
	for _, r := range rows {
		b.Queue(`
			INSERT INTO rounds (round_id, map_id, round_number, attacking_team_id, defending_team_id,
				winner_team_id, spike_planted, spike_defused, end_offset)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (round_id) DO NOTHING
		`, r.RoundID, r.MapID, r.RoundNumber, r.AttackingTeamID, r.DefendingTeamID,
			r.WinnerTeamID, r.SpikePlanted, r.SpikeDefused, r.EndOffset)
	}
	return b
}

func statBatch(rows []model.PlayerRoundStats) *pgx.Batch {
	b := &pgx.Batch{}
	for _, s := range rows {
		b.Queue(`
			INSERT INTO player_round_stats (round_id, player_id, kills, deaths, assists,
				first_kill, first_death, clutch_attempt, survived, aggression_index, consistency_index)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (round_id, player_id) DO NOTHING
		`, s.RoundID, s.PlayerID, s.Kills, s.Deaths, s.Assists,
			s.FirstKill, s.FirstDeath, s.ClutchAttempt, s.Survived,
			s.AggressionIndex, s.ConsistencyIndex)
	}
	return b
}
