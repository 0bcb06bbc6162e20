package model

import "time"

// -----------------------------------------------------------------------------
// Organizational Types
// -----------------------------------------------------------------------------

// Team represents a competing organization.
type Team struct {
	TeamID string // Primary key (source-scoped)
	Name   string // Display name, "" if unknown
	Region string // Region tag (e.g., "EMEA"), "" if unknown
}

// Player represents a single competitor.
type Player struct {
	PlayerID string // Primary key (source-scoped)
	Handle   string // In-game handle, "" if unknown
	TeamID   string // Owning team, weak reference, "" if unknown
}

// -----------------------------------------------------------------------------
// Match Structure Types
// -----------------------------------------------------------------------------

// Match represents one competitive series between teams.
type Match struct {
	MatchID    string     // Source-scoped id
	Source     string     // Originating source tag (e.g., "vlr", "grid")
	StartTime  *time.Time // Scheduled start (UTC), nil if not provided
	Patch      string     // Game version tag, "" if unknown
	Tournament string     // Tournament name, "" if unknown
	Teams      []string   // Participant team ids, order not significant
}

// Key returns the match identity. Ids are only unique within a source, so
// the source tag is part of the key.
func (m Match) Key() string {
	return m.Source + ":" + m.MatchID
}

// GameMap represents a single map played within a match.
type GameMap struct {
	MapID        string // Primary key
	MatchID      string // Owning match, weak reference
	Name         string // Map name (e.g., "Ascent"), "" if unknown
	WinnerTeamID string // Winning team, "" if unknown
}

// Round represents one round within a map.
type Round struct {
	RoundID         string   // Primary key
	MapID           string   // Owning map, weak reference
	RoundNumber     int      // 1-based, unique within a map
	AttackingTeamID string   // "" if unknown
	DefendingTeamID string   // "" if unknown
	WinnerTeamID    string   // "" if unknown
	SpikePlanted    bool     // Spike was planted this round
	SpikeDefused    bool     // Spike was defused this round
	EndOffset       *float64 // Seconds from map start to round end, nil if unknown
}

// -----------------------------------------------------------------------------
// Per-Round Player Statistics
// -----------------------------------------------------------------------------

// PlayerRoundStats holds one player's performance in one round.
// Identity is (RoundID, PlayerID).
//
// AggressionIndex and ConsistencyIndex are derived columns populated by the
// enrichment pass when the corresponding feature flags are enabled; they are
// zero otherwise.
type PlayerRoundStats struct {
	RoundID       string
	PlayerID      string
	Kills         int
	Deaths        int
	Assists       int
	FirstKill     bool
	FirstDeath    bool
	ClutchAttempt bool
	Survived      bool

	AggressionIndex  float64
	ConsistencyIndex float64
}

// Key returns the composite row identity.
func (s PlayerRoundStats) Key() string {
	return s.RoundID + ":" + s.PlayerID
}
