// Package domain defines the core types of the carbon-intensity service.
//
// # Core Types
//
// IntensityRecord is a single measurement over the half-open interval
// [From, To). The (From, To) pair is unique across every stored record;
// overlapping but distinct intervals are allowed.
//
// IntensityIndex is the closed set of severity values: low, moderate,
// high and very high.
//
// IntensityInput is the full field set used to create a record and
// IntensityPatch the partial field set applied by an update.
//
// # Errors
//
// ErrNotFound and ErrDuplicateInterval are the only outcomes a caller is
// expected to recover from. ValidationErrors reports malformed payloads
// before they reach the service.
//
// # Design Principles
//
// - No database or transport dependencies
// - All timestamps normalized to UTC
package domain
