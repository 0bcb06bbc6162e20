package enrich

import (
	"testing"

	"github.com/rmaguire/valorant-data/internal/model"
)

func sample() []model.PlayerRoundStats {
	return []model.PlayerRoundStats{
		{RoundID: "r1", PlayerID: "p1", Kills: 3, Deaths: 0},
		{RoundID: "r2", PlayerID: "p1", Kills: 1, Deaths: 2},
		{RoundID: "r1", PlayerID: "p2", Kills: 0, Deaths: 1},
	}
}

func TestSurvivalRate(t *testing.T) {
	e := New(map[string]bool{FlagSurvivalRate: true}, nil)
	out := e.PlayerRoundStats(sample())

	if !out[0].Survived {
		t.Error("zero-death row must be marked survived")
	}
	if out[1].Survived || out[2].Survived {
		t.Error("rows with deaths must not be marked survived")
	}
}

func TestAggressionIndex(t *testing.T) {
	e := New(map[string]bool{FlagAggressionIndex: true}, nil)
	out := e.PlayerRoundStats(sample())

	cases := []float64{3.0, 1.0 / 3.0, 0.0}
	for i, want := range cases {
		if got := out[i].AggressionIndex; got != want {
			t.Errorf("row %d AggressionIndex = %v, want %v", i, got, want)
		}
	}
}

func TestConsistencyIndex(t *testing.T) {
	e := New(map[string]bool{FlagConsistencyIndex: true}, nil)
	out := e.PlayerRoundStats(sample())

	// p1 averages (3+1)/2 = 2 kills, p2 averages 0.
	if out[0].ConsistencyIndex != 2 || out[1].ConsistencyIndex != 2 {
		t.Errorf("p1 rows = (%v, %v), want 2", out[0].ConsistencyIndex, out[1].ConsistencyIndex)
	}
	if out[2].ConsistencyIndex != 0 {
		t.Errorf("p2 row = %v, want 0", out[2].ConsistencyIndex)
	}
}

func TestFlagsOff(t *testing.T) {
	e := New(nil, nil)
	in := sample()
	in[1].Survived = true // pre-existing source value must be preserved
	out := e.PlayerRoundStats(in)

	for i, s := range out {
		if s.AggressionIndex != 0 || s.ConsistencyIndex != 0 {
			t.Errorf("row %d derived columns = (%v, %v), want zero", i, s.AggressionIndex, s.ConsistencyIndex)
		}
	}
	if !out[1].Survived {
		t.Error("survival flag off must not overwrite source value")
	}
}

func TestEmptyInput(t *testing.T) {
	e := New(map[string]bool{FlagSurvivalRate: true}, nil)
	if out := e.PlayerRoundStats(nil); len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
}
