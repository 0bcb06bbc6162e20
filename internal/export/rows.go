package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/rmaguire/valorant-data/internal/model"
)

// Row types carry the flat shape written to disk. Parquet tags give the
// column names; the record methods produce the matching CSV fields.

var matchHeader = []string{"match_id", "source", "start_time", "patch", "tournament", "teams"}

type matchRow struct {
	MatchID    string `parquet:"match_id"`
	Source     string `parquet:"source"`
	StartTime  string `parquet:"start_time,optional"`
	Patch      string `parquet:"patch,optional"`
	Tournament string `parquet:"tournament,optional"`
	Teams      string `parquet:"teams"`
}

func matchRows(matches []model.Match) []matchRow {
	rows := make([]matchRow, len(matches))
	for i, m := range matches {
		var start string
		if m.StartTime != nil {
			start = m.StartTime.UTC().Format(time.RFC3339)
		}
		rows[i] = matchRow{
			MatchID:    m.MatchID,
			Source:     m.Source,
			StartTime:  start,
			Patch:      m.Patch,
			Tournament: m.Tournament,
			Teams:      strings.Join(m.Teams, "|"),
		}
	}
	return rows
}

func (r matchRow) record() []string {
	return []string{r.MatchID, r.Source, r.StartTime, r.Patch, r.Tournament, r.Teams}
}

var teamHeader = []string{"team_id", "name", "region"}

type teamRow struct {
	TeamID string `parquet:"team_id"`
	Name   string `parquet:"name,optional"`
	Region string `parquet:"region,optional"`
}

func teamRows(teams []model.Team) []teamRow {
	rows := make([]teamRow, len(teams))
	for i, t := range teams {
		rows[i] = teamRow{TeamID: t.TeamID, Name: t.Name, Region: t.Region}
	}
	return rows
}

func (r teamRow) record() []string {
	return []string{r.TeamID, r.Name, r.Region}
}

var playerHeader = []string{"player_id", "handle", "team_id"}

type playerRow struct {
	PlayerID string `parquet:"player_id"`
	Handle   string `parquet:"handle,optional"`
	TeamID   string `parquet:"team_id,optional"`
}

func playerRows(players []model.Player) []playerRow {
	rows := make([]playerRow, len(players))
	for i, p := range players {
		rows[i] = playerRow{PlayerID: p.PlayerID, Handle: p.Handle, TeamID: p.TeamID}
	}
	return rows
}

func (r playerRow) record() []string {
	return []string{r.PlayerID, r.Handle, r.TeamID}
}

var mapHeader = []string{"map_id", "match_id", "name", "winner_team_id"}

type mapRow struct {
	MapID        string `parquet:"map_id"`
	MatchID      string `parquet:"match_id"`
	Name         string `parquet:"name,optional"`
	WinnerTeamID string `parquet:"winner_team_id,optional"`
}

func mapRows(maps []model.GameMap) []mapRow {
	rows := make([]mapRow, len(maps))
	for i, m := range maps {
		rows[i] = mapRow{MapID: m.MapID, MatchID: m.MatchID, Name: m.Name, WinnerTeamID: m.WinnerTeamID}
	}
	return rows
}

func (r mapRow) record() []string {
	return []string{r.MapID, r.MatchID, r.Name, r.WinnerTeamID}
}

var roundHeader = []string{
	"round_id", "map_id", "round_number",
	"attacking_team_id", "defending_team_id", "winner_team_id",
	"spike_planted", "spike_defused", "end_offset",
}

type roundRow struct {
	RoundID         string   `parquet:"round_id"`
	MapID           string   `parquet:"map_id"`
	RoundNumber     int32    `parquet:"round_number"`
	AttackingTeamID string   `parquet:"attacking_team_id,optional"`
	DefendingTeamID string   `parquet:"defending_team_id,optional"`
	WinnerTeamID    string   `parquet:"winner_team_id,optional"`
	SpikePlanted    bool     `parquet:"spike_planted"`
	SpikeDefused    bool     `parquet:"spike_defused"`
	EndOffset       *float64 `parquet:"end_offset,optional"`
}

func roundRows(rounds []model.Round) []roundRow {
	rows := make([]roundRow, len(rounds))
	for i, r := range rounds {
		rows[i] = roundRow{
			RoundID:         r.RoundID,
			MapID:           r.MapID,
			RoundNumber:     int32(r.RoundNumber),
			AttackingTeamID: r.AttackingTeamID,
			DefendingTeamID: r.DefendingTeamID,
			WinnerTeamID:    r.WinnerTeamID,
			SpikePlanted:    r.SpikePlanted,
			SpikeDefused:    r.SpikeDefused,
			EndOffset:       r.EndOffset,
		}
	}
	return rows
}

func (r roundRow) record() []string {
	var offset string
	if r.EndOffset != nil {
		offset = strconv.FormatFloat(*r.EndOffset, 'f', -1, 64)
	}
	return []string{
		r.RoundID, r.MapID, strconv.Itoa(int(r.RoundNumber)),
		r.AttackingTeamID, r.DefendingTeamID, r.WinnerTeamID,
		strconv.FormatBool(r.SpikePlanted), strconv.FormatBool(r.SpikeDefused), offset,
	}
}

var statHeader = []string{
	"round_id", "player_id", "kills", "deaths", "assists",
	"first_kill", "first_death", "clutch_attempt", "survived",
	"aggression_index", "consistency_index",
}

type statRow struct {
	RoundID          string  `parquet:"round_id"`
	PlayerID         string  `parquet:"player_id"`
	Kills            int32   `parquet:"kills"`
	Deaths           int32   `parquet:"deaths"`
	Assists          int32   `parquet:"assists"`
	FirstKill        bool    `parquet:"first_kill"`
	FirstDeath       bool    `parquet:"first_death"`
	ClutchAttempt    bool    `parquet:"clutch_attempt"`
	Survived         bool    `parquet:"survived"`
	AggressionIndex  float64 `parquet:"aggression_index"`
	ConsistencyIndex float64 `parquet:"consistency_index"`
}

func statRows(stats []model.PlayerRoundStats) []statRow {
	rows := make([]statRow, len(stats))
	for i, s := range stats {
		rows[i] = statRow{
			RoundID:          s.RoundID,
			PlayerID:         s.PlayerID,
			Kills:            int32(s.Kills),
			Deaths:           int32(s.Deaths),
			Assists:          int32(s.Assists),
			FirstKill:        s.FirstKill,
			FirstDeath:       s.FirstDeath,
			ClutchAttempt:    s.ClutchAttempt,
			Survived:         s.Survived,
			AggressionIndex:  s.AggressionIndex,
			ConsistencyIndex: s.ConsistencyIndex,
		}
	}
	return rows
}

func (r statRow) record() []string {
	return []string{
		r.RoundID, r.PlayerID,
		strconv.Itoa(int(r.Kills)), strconv.Itoa(int(r.Deaths)), strconv.Itoa(int(r.Assists)),
		strconv.FormatBool(r.FirstKill), strconv.FormatBool(r.FirstDeath),
		strconv.FormatBool(r.ClutchAttempt), strconv.FormatBool(r.Survived),
		strconv.FormatFloat(r.AggressionIndex, 'f', -1, 64),
		strconv.FormatFloat(r.ConsistencyIndex, 'f', -1, 64),
	}
}
