package sqlite

import (
	"errors"
	"fmt"
	"time"

	"carbonintensity/internal/domain"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ============================================================================
// Timestamp Helpers
// ============================================================================

// storedTimeLayout is fixed width so text order matches time order and
// equal instants always produce equal strings
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

// timeToText renders t as the canonical UTC column value
func timeToText(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// textToTime parses a column value written by timeToText
func textToTime(s string) (time.Time, error) {
	t, err := time.Parse(storedTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ============================================================================
// Row Scanning
// ============================================================================

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads id, from_ts, to_ts, forecast, actual, index
func scanRecord(row rowScanner) (*domain.IntensityRecord, error) {
	var (
		rec      domain.IntensityRecord
		from, to string
		index    string
	)
	if err := row.Scan(&rec.ID, &from, &to, &rec.Forecast, &rec.Actual, &index); err != nil {
		return nil, err
	}

	var err error
	if rec.From, err = textToTime(from); err != nil {
		return nil, err
	}
	if rec.To, err = textToTime(to); err != nil {
		return nil, err
	}
	rec.Index = domain.IntensityIndex(index)

	return &rec, nil
}

// ============================================================================
// Error Classification
// ============================================================================

// isUniqueViolation reports whether err came from a UNIQUE constraint
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
