// Package vlr adapts the vlrggapi public API to the canonical schema.
//
// The upstream envelope is {"data": [...]} with one object per match. Ids
// arrive as strings or numbers, timestamps as epoch seconds in "time" with an
// ISO 8601 fallback in "date". Map, round, and per-player detail appears in
// an optional "maps" array; records without it normalize to match and team
// rows only.
package vlr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rmaguire/valorant-data/internal/fetch"
	"github.com/rmaguire/valorant-data/internal/model"
	"github.com/rmaguire/valorant-data/internal/source"
)

// Name is the source tag for this adapter.
const Name = "vlr"

// Adapter fetches and normalizes vlrggapi match records.
type Adapter struct {
	client     *fetch.Client
	maxMatches int
	logger     *slog.Logger
}

var _ source.Adapter = (*Adapter)(nil)

// New creates a VLR adapter. maxMatches bounds one page.
func New(client *fetch.Client, maxMatches int, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		client:     client,
		maxMatches: maxMatches,
		logger:     logger,
	}
}

// Name returns the source tag.
func (a *Adapter) Name() string { return Name }

// FetchPage fetches up to maxMatches raw records from /match.
func (a *Adapter) FetchPage(ctx context.Context) ([]json.RawMessage, error) {
	body, err := a.client.Get(ctx, "/match", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		a.logger.Warn("malformed page envelope, treating as empty",
			"source", Name,
			"error", err,
		)
		return nil, nil
	}
	if len(envelope.Data) > a.maxMatches {
		envelope.Data = envelope.Data[:a.maxMatches]
	}
	return envelope.Data, nil
}

type record struct {
	MatchID    any       `json:"match_id"`
	ID         any       `json:"id"`
	Time       any       `json:"time"` // epoch seconds
	Date       string    `json:"date"` // ISO 8601 fallback
	Event      string    `json:"event"`
	Tournament string    `json:"tournament"`
	Patch      string    `json:"patch"`
	Teams      []team    `json:"teams"`
	Maps       []gameMap `json:"maps"`
}

type team struct {
	ID     any    `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

type gameMap struct {
	ID     any     `json:"id"`
	Name   string  `json:"map"`
	Winner any     `json:"winner"`
	Rounds []round `json:"rounds"`
}

type round struct {
	Number      int          `json:"round"`
	Attacking   any          `json:"attacking"`
	Defending   any          `json:"defending"`
	Winner      any          `json:"winner"`
	Plant       bool         `json:"plant"`
	Defuse      bool         `json:"defuse"`
	EndTime     *float64     `json:"end_time"`
	PlayerStats []playerStat `json:"player_stats"`
}

type playerStat struct {
	PlayerID   any    `json:"player_id"`
	Handle     string `json:"name"`
	TeamID     any    `json:"team"`
	Kills      int    `json:"kills"`
	Deaths     int    `json:"deaths"`
	Assists    int    `json:"assists"`
	FirstKill  bool   `json:"first_kill"`
	FirstDeath bool   `json:"first_death"`
	Clutch     bool   `json:"clutch"`
	Survived   bool   `json:"survived"`
}

// RecordKey returns the record's match id, or "" when absent.
func (a *Adapter) RecordKey(raw json.RawMessage) string {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return ""
	}
	return r.matchID()
}

func (r *record) matchID() string {
	if id := source.StringID(r.MatchID); id != "" {
		return id
	}
	return source.StringID(r.ID)
}

// Normalize converts one raw record into canonical entities. A record with
// no usable match id is skipped; an unparseable timestamp leaves the start
// time unset rather than failing the record.
func (a *Adapter) Normalize(raw json.RawMessage) source.Result {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return source.Skip("unmarshal record: %v", err)
	}

	matchID := r.matchID()
	if matchID == "" {
		return source.Skip("record has no match id")
	}

	var out source.Entities

	teamIDs := make([]string, 0, len(r.Teams))
	for _, t := range r.Teams {
		tid := source.StringID(t.ID)
		if tid == "" {
			tid = t.Name
		}
		if tid == "" {
			continue
		}
		teamIDs = append(teamIDs, tid)
		out.Teams = append(out.Teams, model.Team{
			TeamID: tid,
			Name:   t.Name,
			Region: t.Region,
		})
	}

	tournament := r.Event
	if tournament == "" {
		tournament = r.Tournament
	}

	out.Matches = append(out.Matches, model.Match{
		MatchID:    matchID,
		Source:     Name,
		StartTime:  parseStartTime(r.Time, r.Date),
		Patch:      r.Patch,
		Tournament: tournament,
		Teams:      teamIDs,
	})

	for i, m := range r.Maps {
		mapID := source.StringID(m.ID)
		if mapID == "" {
			mapID = fmt.Sprintf("%s-m%d", matchID, i+1)
		}
		out.Maps = append(out.Maps, model.GameMap{
			MapID:        mapID,
			MatchID:      matchID,
			Name:         m.Name,
			WinnerTeamID: source.StringID(m.Winner),
		})
		normalizeRounds(mapID, m.Rounds, &out)
	}

	return source.Result{Entities: out}
}

func normalizeRounds(mapID string, rounds []round, out *source.Entities) {
	for i, rd := range rounds {
		number := rd.Number
		if number == 0 {
			number = i + 1
		}
		roundID := fmt.Sprintf("%s-r%d", mapID, number)

		out.Rounds = append(out.Rounds, model.Round{
			RoundID:         roundID,
			MapID:           mapID,
			RoundNumber:     number,
			AttackingTeamID: source.StringID(rd.Attacking),
			DefendingTeamID: source.StringID(rd.Defending),
			WinnerTeamID:    source.StringID(rd.Winner),
			SpikePlanted:    rd.Plant,
			SpikeDefused:    rd.Defuse,
			EndOffset:       rd.EndTime,
		})

		for _, ps := range rd.PlayerStats {
			pid := source.StringID(ps.PlayerID)
			if pid == "" {
				pid = ps.Handle
			}
			if pid == "" {
				continue
			}
			out.Players = append(out.Players, model.Player{
				PlayerID: pid,
				Handle:   ps.Handle,
				TeamID:   source.StringID(ps.TeamID),
			})
			out.Stats = append(out.Stats, model.PlayerRoundStats{
				RoundID:       roundID,
				PlayerID:      pid,
				Kills:         ps.Kills,
				Deaths:        ps.Deaths,
				Assists:       ps.Assists,
				FirstKill:     ps.FirstKill,
				FirstDeath:    ps.FirstDeath,
				ClutchAttempt: ps.Clutch,
				Survived:      ps.Survived,
			})
		}
	}
}

// parseStartTime tries the epoch-seconds "time" field, then the ISO "date"
// fallback. Unparseable values yield nil.
func parseStartTime(epoch any, iso string) *time.Time {
	switch v := epoch.(type) {
	case float64:
		if v > 0 {
			t := time.Unix(int64(v), 0).UTC()
			return &t
		}
	case string:
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil && sec > 0 {
			t := time.Unix(sec, 0).UTC()
			return &t
		}
	}
	if iso != "" {
		if t, err := time.Parse(time.RFC3339, iso); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
