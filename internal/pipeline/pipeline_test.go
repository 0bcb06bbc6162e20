package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rmaguire/valorant-data/internal/cache"
	"github.com/rmaguire/valorant-data/internal/fetch"
	"github.com/rmaguire/valorant-data/internal/model"
	"github.com/rmaguire/valorant-data/internal/source"
	"github.com/rmaguire/valorant-data/internal/source/vlr"
)

// stubAdapter is a scripted source for orchestrator tests.
type stubAdapter struct {
	name    string
	page    []json.RawMessage
	err     error
	fetches atomic.Int64
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) FetchPage(ctx context.Context) ([]json.RawMessage, error) {
	s.fetches.Add(1)
	return s.page, s.err
}

func (s *stubAdapter) RecordKey(raw json.RawMessage) string {
	var r struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return ""
	}
	return r.ID
}

func (s *stubAdapter) Normalize(raw json.RawMessage) source.Result {
	var r struct {
		ID   string `json:"id"`
		Time int64  `json:"time"`
	}
	if err := json.Unmarshal(raw, &r); err != nil || r.ID == "" {
		return source.Skip("no id")
	}
	m := model.Match{MatchID: r.ID, Source: s.name}
	if r.Time > 0 {
		t := time.Unix(r.Time, 0).UTC()
		m.StartTime = &t
	}
	return source.Result{Entities: source.Entities{Matches: []model.Match{m}}}
}

func rawRecords(ids ...string) []json.RawMessage {
	var out []json.RawMessage
	for _, id := range ids {
		out = append(out, json.RawMessage(fmt.Sprintf(`{"id":%q}`, id)))
	}
	return out
}

func TestRunMergesSources(t *testing.T) {
	a := &stubAdapter{name: "alpha", page: rawRecords("1", "2")}
	b := &stubAdapter{name: "beta", page: rawRecords("3")}

	res, err := New(Config{}, []source.Adapter{a, b}, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Data.Matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(res.Data.Matches))
	}
	// Configured order: alpha's records precede beta's.
	if res.Data.Matches[0].Source != "alpha" || res.Data.Matches[2].Source != "beta" {
		t.Errorf("merge order = %v, want alpha records first", res.Data.Matches)
	}
	if res.RunID == "" {
		t.Error("RunID must be set")
	}
}

// TestCrossSourceNonCollision: the same raw id from two sources yields two
// distinct matches, both present in the merged output.
func TestCrossSourceNonCollision(t *testing.T) {
	a := &stubAdapter{name: "alpha", page: rawRecords("123")}
	b := &stubAdapter{name: "beta", page: rawRecords("123")}

	res, err := New(Config{}, []source.Adapter{a, b}, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Data.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(res.Data.Matches))
	}
	if res.Data.Matches[0].Key() == res.Data.Matches[1].Key() {
		t.Errorf("match keys collide: %q", res.Data.Matches[0].Key())
	}
}

// TestFailureIsolation: one failing source never prevents the others.
func TestFailureIsolation(t *testing.T) {
	bad := &stubAdapter{name: "bad", err: errors.New("connection refused")}
	good := &stubAdapter{name: "good", page: rawRecords("9")}

	res, err := New(Config{}, []source.Adapter{bad, good}, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Data.Matches) != 1 || res.Data.Matches[0].Source != "good" {
		t.Errorf("matches = %+v, want one from good", res.Data.Matches)
	}
	if !res.Reports[0].Failed {
		t.Error("bad source must be reported as failed")
	}
	if res.Reports[1].Normalized != 1 {
		t.Errorf("good.Normalized = %d, want 1", res.Reports[1].Normalized)
	}
}

func TestSkippedRecordsCounted(t *testing.T) {
	a := &stubAdapter{name: "alpha", page: []json.RawMessage{
		json.RawMessage(`{"id":"1"}`),
		json.RawMessage(`{"broken":true}`),
		json.RawMessage(`{"id":"2"}`),
	}}

	res, err := New(Config{}, []source.Adapter{a}, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	r := res.Reports[0]
	if r.Fetched != 3 || r.Normalized != 2 || r.Skipped != 1 {
		t.Errorf("report = %+v, want fetched 3 normalized 2 skipped 1", r)
	}
}

// TestCacheReplay: a record cached on the first run is replayed verbatim on
// the second run even when the upstream record has changed.
func TestCacheReplay(t *testing.T) {
	store, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}

	first := &stubAdapter{name: "alpha", page: []json.RawMessage{json.RawMessage(`{"id":"7","time":1700000000}`)}}
	res1, err := New(Config{}, []source.Adapter{first}, store, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if res1.Reports[0].CacheHits != 0 {
		t.Errorf("first run cache hits = %d, want 0", res1.Reports[0].CacheHits)
	}

	// Upstream now reports a different start time for the same record.
	second := &stubAdapter{name: "alpha", page: []json.RawMessage{json.RawMessage(`{"id":"7","time":1800000000}`)}}
	res2, err := New(Config{}, []source.Adapter{second}, store, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if res2.Reports[0].CacheHits != 1 {
		t.Errorf("second run cache hits = %d, want 1", res2.Reports[0].CacheHits)
	}
	want := time.Unix(1700000000, 0).UTC()
	got := res2.Data.Matches[0].StartTime
	if got == nil || !got.Equal(want) {
		t.Errorf("replayed StartTime = %v, want cached %v", got, want)
	}
}

func TestMinMatchDateFilter(t *testing.T) {
	a := &stubAdapter{name: "alpha", page: []json.RawMessage{
		json.RawMessage(`{"id":"old","time":1500000000}`),
		json.RawMessage(`{"id":"new","time":1700000000}`),
		json.RawMessage(`{"id":"undated"}`),
	}}

	cfg := Config{MinMatchDate: time.Unix(1600000000, 0).UTC()}
	res, err := New(cfg, []source.Adapter{a}, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Data.Matches) != 2 {
		t.Fatalf("matches = %d, want 2 (old dropped, undated kept)", len(res.Data.Matches))
	}
	if res.Reports[0].Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", res.Reports[0].Dropped)
	}
	for _, m := range res.Data.Matches {
		if m.MatchID == "old" {
			t.Error("match before min date must be dropped")
		}
	}
}

// TestParallelMatchesSequential: parallel mode produces the identical
// dataset, in the identical order, as sequential mode.
func TestParallelMatchesSequential(t *testing.T) {
	build := func() []source.Adapter {
		return []source.Adapter{
			&stubAdapter{name: "alpha", page: rawRecords("1", "2")},
			&stubAdapter{name: "beta", page: rawRecords("3", "4")},
			&stubAdapter{name: "gamma", page: rawRecords("5")},
		}
	}

	seq, err := New(Config{Parallel: false}, build(), nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("sequential Run failed: %v", err)
	}
	par, err := New(Config{Parallel: true}, build(), nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("parallel Run failed: %v", err)
	}

	if !reflect.DeepEqual(seq.Data, par.Data) {
		t.Errorf("parallel dataset differs from sequential:\nseq: %+v\npar: %+v", seq.Data, par.Data)
	}
}

// TestEndToEndVLR runs the full fetch-cache-normalize path against a stub
// VLR upstream with caching disabled.
func TestEndToEndVLR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"match_id":"7","time":1700000000,"teams":[{"id":"t1","name":"Alpha"}]}]}`))
	}))
	defer srv.Close()

	client := fetch.NewClient(srv.URL, "", vlr.Name,
		fetch.WithRetries(1, 0),
		fetch.WithLimiter(fetch.NewLimiter(map[string]int{vlr.Name: 1000})),
	)
	adapter := vlr.New(client, 10, nil)

	res, err := New(Config{}, []source.Adapter{adapter}, cache.Disabled(), nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Data.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(res.Data.Matches))
	}
	m := res.Data.Matches[0]
	if m.MatchID != "7" || m.Source != "vlr" {
		t.Errorf("match = (%q, %q), want (7, vlr)", m.MatchID, m.Source)
	}
	wantStart := time.Unix(1700000000, 0).UTC()
	if m.StartTime == nil || !m.StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, want %v", m.StartTime, wantStart)
	}
	if len(m.Teams) != 1 || m.Teams[0] != "t1" {
		t.Errorf("Teams = %v, want [t1]", m.Teams)
	}
	if len(res.Data.Teams) != 1 || res.Data.Teams[0].TeamID != "t1" || res.Data.Teams[0].Name != "Alpha" {
		t.Errorf("teams = %+v, want one t1/Alpha row", res.Data.Teams)
	}
}
