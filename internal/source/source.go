// Package source defines the contract every upstream API adapter implements
// and the normalized entity bundle adapters emit.
//
// An adapter owns fetching one bounded page of raw match records and turning
// a single raw record into canonical entities. Normalization is pure: it
// performs no I/O, and a record it cannot use becomes a skip with a reason,
// never an error that aborts the page.
package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rmaguire/valorant-data/internal/model"
)

// Adapter is the per-source fetch+normalize capability. The orchestrator
// depends only on this interface, never on concrete sources.
type Adapter interface {
	// Name returns the source tag ("vlr", "grid"). It doubles as the rate
	// limiter client class and the cache key prefix.
	Name() string

	// FetchPage returns one bounded page of raw match records. An absent or
	// malformed top-level envelope yields an empty page and nil error;
	// network-level failures are returned as errors.
	FetchPage(ctx context.Context) ([]json.RawMessage, error)

	// RecordKey extracts the record identifier used in the cache key.
	// Returns "" when the record has no usable id.
	RecordKey(raw json.RawMessage) string

	// Normalize converts one raw record into canonical entities.
	Normalize(raw json.RawMessage) Result
}

// Entities bundles the six canonical tables produced from raw records.
type Entities struct {
	Matches []model.Match
	Maps    []model.GameMap
	Rounds  []model.Round
	Teams   []model.Team
	Players []model.Player
	Stats   []model.PlayerRoundStats
}

// Append concatenates other onto e.
func (e *Entities) Append(other Entities) {
	e.Matches = append(e.Matches, other.Matches...)
	e.Maps = append(e.Maps, other.Maps...)
	e.Rounds = append(e.Rounds, other.Rounds...)
	e.Teams = append(e.Teams, other.Teams...)
	e.Players = append(e.Players, other.Players...)
	e.Stats = append(e.Stats, other.Stats...)
}

// Result is the outcome of normalizing one raw record: either entities, or a
// skip carrying the reason, so skipped-record counts are observable instead
// of silently swallowed.
type Result struct {
	Entities Entities
	Skipped  bool
	Reason   string
}

// Skip builds a skipped Result.
func Skip(format string, args ...any) Result {
	return Result{Skipped: true, Reason: fmt.Sprintf(format, args...)}
}

// StringID renders a raw JSON id value as a string. Upstream APIs disagree on
// whether ids are strings or numbers; both arrive here as decoded values.
func StringID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		// JSON numbers decode as float64; ids are integral.
		return fmt.Sprintf("%.0f", id)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}
