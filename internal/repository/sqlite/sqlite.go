package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"carbonintensity/internal/domain"
	"carbonintensity/internal/repository"

	_ "modernc.org/sqlite"
)

// Compile-time contract assertions
var (
	_ repository.Repository = (*Repository)(nil)
	_ repository.Importer   = (*Repository)(nil)
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
// ":memory:" opens a private in-memory database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	if isMemory(dbPath) {
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(dbPath string) string {
	if isMemory(dbPath) {
		return dbPath
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS intensity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_ts TEXT NOT NULL,
		to_ts TEXT NOT NULL,
		forecast INTEGER NOT NULL CHECK (forecast >= 0),
		actual INTEGER NOT NULL CHECK (actual >= 0),
		"index" TEXT NOT NULL CHECK ("index" IN ('low', 'moderate', 'high', 'very high')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT intensity_from_to_unique UNIQUE (from_ts, to_ts)
	);

	CREATE INDEX IF NOT EXISTS idx_intensity_from ON intensity(from_ts);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ListOrderedByFrom returns every record ascending by interval start
func (r *Repository) ListOrderedByFrom(ctx context.Context) ([]domain.IntensityRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, from_ts, to_ts, forecast, actual, "index"
		FROM intensity
		ORDER BY from_ts ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query intensities: %w", err)
	}
	defer rows.Close()

	records := make([]domain.IntensityRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan intensity: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intensities: %w", err)
	}

	return records, nil
}

// FindByID retrieves a single record. A nil record with a nil error means
// the id does not exist.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.IntensityRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, from_ts, to_ts, forecast, actual, "index"
		FROM intensity WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query intensity: %w", err)
	}
	return rec, nil
}

// Insert stores a new record and returns it with its assigned id
func (r *Repository) Insert(ctx context.Context, rec *domain.IntensityRecord) (repository.WriteResult, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO intensity (from_ts, to_ts, forecast, actual, "index")
		VALUES (?, ?, ?, ?, ?)
	`, timeToText(rec.From), timeToText(rec.To), rec.Forecast, rec.Actual, string(rec.Index))

	if isUniqueViolation(err) {
		return repository.WriteResult{Status: repository.WriteDuplicate}, nil
	}
	if err != nil {
		return repository.WriteResult{}, fmt.Errorf("failed to insert intensity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return repository.WriteResult{}, fmt.Errorf("failed to read inserted id: %w", err)
	}

	stored := *rec
	stored.ID = id
	stored.From = rec.From.UTC()
	stored.To = rec.To.UTC()
	return repository.WriteResult{Status: repository.WriteOK, Record: &stored}, nil
}

// Persist writes every mutable field of rec to the row with rec.ID
func (r *Repository) Persist(ctx context.Context, rec *domain.IntensityRecord) (repository.WriteResult, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE intensity
		SET from_ts = ?, to_ts = ?, forecast = ?, actual = ?, "index" = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, timeToText(rec.From), timeToText(rec.To), rec.Forecast, rec.Actual, string(rec.Index), rec.ID)

	if isUniqueViolation(err) {
		return repository.WriteResult{Status: repository.WriteDuplicate}, nil
	}
	if err != nil {
		return repository.WriteResult{}, fmt.Errorf("failed to update intensity: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return repository.WriteResult{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.WriteResult{Status: repository.WriteMissing}, nil
	}

	stored := *rec
	stored.From = rec.From.UTC()
	stored.To = rec.To.UTC()
	return repository.WriteResult{Status: repository.WriteOK, Record: &stored}, nil
}

// DeleteByID removes a record permanently. It reports whether a row was deleted.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM intensity WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete intensity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// ImportRecords inserts inputs in one transaction, skipping intervals that
// are already stored. It returns the number of rows inserted.
func (r *Repository) ImportRecords(ctx context.Context, inputs []domain.IntensityInput) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO intensity (from_ts, to_ts, forecast, actual, "index")
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(from_ts, to_ts) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, in := range inputs {
		res, err := stmt.ExecContext(ctx, timeToText(in.From), timeToText(in.To), in.Forecast, in.Actual, string(in.Index))
		if err != nil {
			return 0, fmt.Errorf("failed to import record %d: %w", i, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
