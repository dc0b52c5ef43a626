package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// IntensityIndex is the categorical severity of a carbon-intensity reading
type IntensityIndex string

const (
	IndexLow      IntensityIndex = "low"
	IndexModerate IntensityIndex = "moderate"
	IndexHigh     IntensityIndex = "high"
	IndexVeryHigh IntensityIndex = "very high"
)

// AllIndexes returns the closed set of index values in severity order
func AllIndexes() []IntensityIndex {
	return []IntensityIndex{IndexLow, IndexModerate, IndexHigh, IndexVeryHigh}
}

// Valid reports whether the index is one of the known values
func (i IntensityIndex) Valid() bool {
	switch i {
	case IndexLow, IndexModerate, IndexHigh, IndexVeryHigh:
		return true
	}
	return false
}

// ParseIndex converts a string to an IntensityIndex. Matching is exact;
// the second return value is false for anything outside the closed set.
func ParseIndex(s string) (IntensityIndex, bool) {
	idx := IntensityIndex(s)
	return idx, idx.Valid()
}

// indexList renders the allowed values for validation messages
func indexList() string {
	parts := make([]string, 0, 4)
	for _, idx := range AllIndexes() {
		parts = append(parts, string(idx))
	}
	return strings.Join(parts, ", ")
}

// IntensityRecord is one carbon-intensity measurement over the interval [From, To).
// ID is assigned by storage on insert and never changes afterwards.
type IntensityRecord struct {
	ID       int64          `json:"id"`
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Forecast int64          `json:"forecast"`
	Actual   int64          `json:"actual"`
	Index    IntensityIndex `json:"index"`
}

// MarshalJSON renders interval bounds in the wire timestamp format
func (r IntensityRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       int64          `json:"id"`
		From     string         `json:"from"`
		To       string         `json:"to"`
		Forecast int64          `json:"forecast"`
		Actual   int64          `json:"actual"`
		Index    IntensityIndex `json:"index"`
	}{
		ID:       r.ID,
		From:     FormatTimestamp(r.From),
		To:       FormatTimestamp(r.To),
		Forecast: r.Forecast,
		Actual:   r.Actual,
		Index:    r.Index,
	})
}

// IntervalKey identifies the (from, to) pair that must be unique across all records
type IntervalKey struct {
	From time.Time
	To   time.Time
}

// Key returns the record's interval key normalized to UTC
func (r *IntensityRecord) Key() IntervalKey {
	return IntervalKey{From: r.From.UTC(), To: r.To.UTC()}
}

// IntensityInput carries every field of a record except the ID.
// It is the payload of a create operation.
type IntensityInput struct {
	From     time.Time
	To       time.Time
	Forecast int64
	Actual   int64
	Index    IntensityIndex
}

// NewRecord builds an unsaved record (ID 0) from the input
func (in IntensityInput) NewRecord() *IntensityRecord {
	return &IntensityRecord{
		From:     in.From.UTC(),
		To:       in.To.UTC(),
		Forecast: in.Forecast,
		Actual:   in.Actual,
		Index:    in.Index,
	}
}

// IntensityPatch carries the fields supplied to an update. Nil fields are left
// untouched on the stored record.
type IntensityPatch struct {
	From     *time.Time
	To       *time.Time
	Forecast *int64
	Actual   *int64
	Index    *IntensityIndex
}

// PatchFromInput builds a patch that replaces every field
func PatchFromInput(in IntensityInput) IntensityPatch {
	from, to := in.From.UTC(), in.To.UTC()
	forecast, actual, index := in.Forecast, in.Actual, in.Index
	return IntensityPatch{
		From:     &from,
		To:       &to,
		Forecast: &forecast,
		Actual:   &actual,
		Index:    &index,
	}
}

// Empty reports whether no field was supplied
func (p IntensityPatch) Empty() bool {
	return p.From == nil && p.To == nil && p.Forecast == nil && p.Actual == nil && p.Index == nil
}

// Apply assigns the supplied fields to rec. The ID is never modified.
func (p IntensityPatch) Apply(rec *IntensityRecord) {
	if p.From != nil {
		rec.From = p.From.UTC()
	}
	if p.To != nil {
		rec.To = p.To.UTC()
	}
	if p.Forecast != nil {
		rec.Forecast = *p.Forecast
	}
	if p.Actual != nil {
		rec.Actual = *p.Actual
	}
	if p.Index != nil {
		rec.Index = *p.Index
	}
}
