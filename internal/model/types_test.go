package model

import (
	"testing"
	"time"
)

// TestMatchKey validates that match identity is scoped by source.
func TestMatchKey(t *testing.T) {
	t.Run("includes source", func(t *testing.T) {
		m := Match{MatchID: "123", Source: "vlr"}
		if got := m.Key(); got != "vlr:123" {
			t.Errorf("Key() = %q, want %q", got, "vlr:123")
		}
	})

	t.Run("same id different sources", func(t *testing.T) {
		a := Match{MatchID: "123", Source: "vlr"}
		b := Match{MatchID: "123", Source: "grid"}
		if a.Key() == b.Key() {
			t.Errorf("keys collide across sources: %q", a.Key())
		}
	})
}

// TestPlayerRoundStatsKey validates the composite row identity.
func TestPlayerRoundStatsKey(t *testing.T) {
	s := PlayerRoundStats{RoundID: "r1", PlayerID: "p9"}
	if got := s.Key(); got != "r1:p9" {
		t.Errorf("Key() = %q, want %q", got, "r1:p9")
	}
}

// TestModelTypes validates that model types can be instantiated correctly.
func TestModelTypes(t *testing.T) {
	t.Run("Match", func(t *testing.T) {
		start := time.Unix(1700000000, 0).UTC()
		m := Match{
			MatchID:    "7",
			Source:     "vlr",
			StartTime:  &start,
			Patch:      "8.11",
			Tournament: "Champions",
			Teams:      []string{"t1", "t2"},
		}

		if m.MatchID != "7" {
			t.Errorf("MatchID = %q, want %q", m.MatchID, "7")
		}
		if m.StartTime == nil || !m.StartTime.Equal(start) {
			t.Errorf("StartTime = %v, want %v", m.StartTime, start)
		}
		if len(m.Teams) != 2 {
			t.Errorf("len(Teams) = %d, want %d", len(m.Teams), 2)
		}
	})

	t.Run("Match without start time", func(t *testing.T) {
		m := Match{MatchID: "8", Source: "grid"}
		if m.StartTime != nil {
			t.Errorf("StartTime = %v, want nil", m.StartTime)
		}
	})

	t.Run("Round", func(t *testing.T) {
		end := 93.4
		r := Round{
			RoundID:         "m1-r13",
			MapID:           "m1",
			RoundNumber:     13,
			AttackingTeamID: "t1",
			DefendingTeamID: "t2",
			WinnerTeamID:    "t1",
			SpikePlanted:    true,
			SpikeDefused:    false,
			EndOffset:       &end,
		}

		if r.RoundNumber != 13 {
			t.Errorf("RoundNumber = %d, want %d", r.RoundNumber, 13)
		}
		if !r.SpikePlanted || r.SpikeDefused {
			t.Errorf("spike flags = (%v, %v), want (true, false)", r.SpikePlanted, r.SpikeDefused)
		}
		if r.EndOffset == nil || *r.EndOffset != 93.4 {
			t.Errorf("EndOffset = %v, want %v", r.EndOffset, 93.4)
		}
	})

	t.Run("PlayerRoundStats defaults", func(t *testing.T) {
		s := PlayerRoundStats{RoundID: "r1", PlayerID: "p1", Kills: 2}
		if s.Deaths != 0 || s.Assists != 0 {
			t.Errorf("counters = (%d, %d), want zero", s.Deaths, s.Assists)
		}
		if s.AggressionIndex != 0 || s.ConsistencyIndex != 0 {
			t.Error("derived columns should start zero-valued")
		}
	})
}
