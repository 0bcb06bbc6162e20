// Package grid adapts the GRID esports API to the canonical schema.
//
// GRID speaks JSON:API: each record carries "attributes" for scalar fields
// and "relationships" for team and game references. Per-game, per-round, and
// per-player detail arrives as typed objects in the record's "included"
// array; records without it normalize to match and team rows only.
package grid

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/rmaguire/valorant-data/internal/fetch"
	"github.com/rmaguire/valorant-data/internal/model"
	"github.com/rmaguire/valorant-data/internal/source"
)

// Name is the source tag for this adapter.
const Name = "grid"

// Adapter fetches and normalizes GRID match records.
type Adapter struct {
	client     *fetch.Client
	maxMatches int
	logger     *slog.Logger
}

var _ source.Adapter = (*Adapter)(nil)

// New creates a GRID adapter. maxMatches bounds the requested page size.
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

// FetchPage fetches one page of raw records from /matches.
func (a *Adapter) FetchPage(ctx context.Context) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("page[size]", strconv.Itoa(a.maxMatches))

	body, err := a.client.Get(ctx, "/matches", query)
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
	ID         string `json:"id"`
	Attributes struct {
		StartTime  string `json:"start_time"`
		Patch      string `json:"patch"`
		Tournament string `json:"tournament"`
	} `json:"attributes"`
	Relationships struct {
		Teams struct {
			Data []ref `json:"data"`
		} `json:"teams"`
	} `json:"relationships"`
	Included []included `json:"included"`
}

type ref struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type included struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

type gameAttrs struct {
	Map          string `json:"map"`
	WinnerTeamID string `json:"winner_team_id"`
}

type roundAttrs struct {
	GameID          string   `json:"game_id"`
	RoundNumber     int      `json:"round_number"`
	AttackingTeamID string   `json:"attacking_team_id"`
	DefendingTeamID string   `json:"defending_team_id"`
	WinnerTeamID    string   `json:"winner_team_id"`
	SpikePlanted    bool     `json:"spike_planted"`
	SpikeDefused    bool     `json:"spike_defused"`
	EndOffset       *float64 `json:"end_offset"`
}

type statAttrs struct {
	RoundID       string `json:"round_id"`
	PlayerID      string `json:"player_id"`
	Handle        string `json:"handle"`
	TeamID        string `json:"team_id"`
	Kills         int    `json:"kills"`
	Deaths        int    `json:"deaths"`
	Assists       int    `json:"assists"`
	FirstKill     bool   `json:"first_kill"`
	FirstDeath    bool   `json:"first_death"`
	ClutchAttempt bool   `json:"clutch_attempt"`
	Survived      bool   `json:"survived"`
}

// RecordKey returns the record's id, or "" when absent.
func (a *Adapter) RecordKey(raw json.RawMessage) string {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return ""
	}
	return r.ID
}

// Normalize converts one raw record into canonical entities.
func (a *Adapter) Normalize(raw json.RawMessage) source.Result {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return source.Skip("unmarshal record: %v", err)
	}
	if r.ID == "" {
		return source.Skip("record has no match id")
	}

	var out source.Entities

	teamIDs := make([]string, 0, len(r.Relationships.Teams.Data))
	for _, t := range r.Relationships.Teams.Data {
		if t.ID == "" {
			continue
		}
		teamIDs = append(teamIDs, t.ID)
		// GRID relationship refs carry no display name.
		out.Teams = append(out.Teams, model.Team{TeamID: t.ID})
	}

	out.Matches = append(out.Matches, model.Match{
		MatchID:    r.ID,
		Source:     Name,
		StartTime:  parseStartTime(r.Attributes.StartTime),
		Patch:      r.Attributes.Patch,
		Tournament: r.Attributes.Tournament,
		Teams:      teamIDs,
	})

	a.normalizeIncluded(r.ID, r.Included, &out)

	return source.Result{Entities: out}
}

// normalizeIncluded walks the record's included objects. Objects whose
// attributes fail to decode are dropped individually.
func (a *Adapter) normalizeIncluded(matchID string, objs []included, out *source.Entities) {
	for _, obj := range objs {
		switch obj.Type {
		case "game":
			var attrs gameAttrs
			if err := json.Unmarshal(obj.Attributes, &attrs); err != nil || obj.ID == "" {
				continue
			}
			out.Maps = append(out.Maps, model.GameMap{
				MapID:        obj.ID,
				MatchID:      matchID,
				Name:         attrs.Map,
				WinnerTeamID: attrs.WinnerTeamID,
			})

		case "round":
			var attrs roundAttrs
			if err := json.Unmarshal(obj.Attributes, &attrs); err != nil || obj.ID == "" {
				continue
			}
			out.Rounds = append(out.Rounds, model.Round{
				RoundID:         obj.ID,
				MapID:           attrs.GameID,
				RoundNumber:     attrs.RoundNumber,
				AttackingTeamID: attrs.AttackingTeamID,
				DefendingTeamID: attrs.DefendingTeamID,
				WinnerTeamID:    attrs.WinnerTeamID,
				SpikePlanted:    attrs.SpikePlanted,
				SpikeDefused:    attrs.SpikeDefused,
				EndOffset:       attrs.EndOffset,
			})

		case "player-round-stats":
			var attrs statAttrs
			if err := json.Unmarshal(obj.Attributes, &attrs); err != nil {
				continue
			}
			if attrs.PlayerID == "" || attrs.RoundID == "" {
				continue
			}
			out.Players = append(out.Players, model.Player{
				PlayerID: attrs.PlayerID,
				Handle:   attrs.Handle,
				TeamID:   attrs.TeamID,
			})
			out.Stats = append(out.Stats, model.PlayerRoundStats{
				RoundID:       attrs.RoundID,
				PlayerID:      attrs.PlayerID,
				Kills:         attrs.Kills,
				Deaths:        attrs.Deaths,
				Assists:       attrs.Assists,
				FirstKill:     attrs.FirstKill,
				FirstDeath:    attrs.FirstDeath,
				ClutchAttempt: attrs.ClutchAttempt,
				Survived:      attrs.Survived,
			})

		default:
			a.logger.Debug("ignoring included object",
				"source", Name,
				"type", obj.Type,
				"id", obj.ID,
			)
		}
	}
}

// parseStartTime parses the RFC 3339 start_time attribute. Unparseable
// values yield nil.
func parseStartTime(iso string) *time.Time {
	if iso == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
