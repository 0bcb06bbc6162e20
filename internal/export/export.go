// Package export writes the cleaned dataset to flat files, one per table,
// in CSV or Parquet format.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rmaguire/valorant-data/internal/source"
)

// Format selects the output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat converts a config string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatParquet:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Exporter writes dataset tables under a single directory.
type Exporter struct {
	dir    string
	format Format
	logger *slog.Logger
}

// New creates an Exporter writing to dir in the given format.
func New(dir string, format Format, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dir: dir, format: format, logger: logger}
}

// Write exports all six tables and returns the paths written.
func (e *Exporter) Write(data source.Entities) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	var paths []string

	p, err := writeTable(e, "matches", matchHeader, matchRows(data.Matches))
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeTable(e, "teams", teamHeader, teamRows(data.Teams))
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeTable(e, "players", playerHeader, playerRows(data.Players))
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeTable(e, "maps", mapHeader, mapRows(data.Maps))
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeTable(e, "rounds", roundHeader, roundRows(data.Rounds))
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeTable(e, "player_round_stats", statHeader, statRows(data.Stats))
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	return paths, nil
}

// writeTable writes one table in the exporter's format and logs the result.
func writeTable[T csvRow](e *Exporter, table string, header []string, rows []T) (string, error) {
	path := filepath.Join(e.dir, table+"."+string(e.format))

	var err error
	switch e.format {
	case FormatParquet:
		err = writeParquet(path, rows)
	default:
		err = writeCSV(path, header, rows)
	}
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", table, err)
	}

	e.logger.Info("wrote table", "table", table, "rows", len(rows), "path", path)
	return path, nil
}
