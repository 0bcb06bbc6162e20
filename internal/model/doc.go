// Package model defines the canonical analytics schema that every source
// adapter normalizes into.
//
// Conventions:
//   - IDs: opaque strings, unique only within their originating source
//   - Timestamps: UTC instants; a nil *time.Time means the source did not
//     provide the field
//   - Match identity: (Source, MatchID). The same raw id seen on two
//     different sources is two distinct matches and must never be merged.
package model
