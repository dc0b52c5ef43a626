// Package postgres provides a GORM-backed Postgres repository for intensity
// records. Uniqueness of the (from, to) pair is enforced by the
// intensity_from_to_unique index; duplicate writes are reported as
// repository.WriteDuplicate.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carbonintensity/internal/domain"
	"carbonintensity/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Compile-time contract assertions
var (
	_ repository.Repository = (*Repository)(nil)
	_ repository.Importer   = (*Repository)(nil)
)

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = "23505"

// Options holds connection settings
type Options struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
}

// DSN renders the options as a libpq keyword/value connection string
func (o Options) DSN() string {
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	tz := o.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		o.Host, o.User, o.Password, o.DBName, o.Port, sslMode, tz,
	)
}

// intensityRow is the storage shape of a record
type intensityRow struct {
	ID       int64     `gorm:"column:id;primaryKey;autoIncrement"`
	From     time.Time `gorm:"column:from;type:timestamptz;not null;uniqueIndex:intensity_from_to_unique,priority:1"`
	To       time.Time `gorm:"column:to;type:timestamptz;not null;uniqueIndex:intensity_from_to_unique,priority:2"`
	Forecast int64     `gorm:"column:forecast;type:int;not null"`
	Actual   int64     `gorm:"column:actual;type:int;not null"`
	Index    string    `gorm:"column:index;type:text;not null"`
}

func (intensityRow) TableName() string {
	return "intensity"
}

func rowFromRecord(rec *domain.IntensityRecord) intensityRow {
	return intensityRow{
		ID:       rec.ID,
		From:     rec.From.UTC(),
		To:       rec.To.UTC(),
		Forecast: rec.Forecast,
		Actual:   rec.Actual,
		Index:    string(rec.Index),
	}
}

func (r intensityRow) record() *domain.IntensityRecord {
	return &domain.IntensityRecord{
		ID:       r.ID,
		From:     r.From.UTC(),
		To:       r.To.UTC(),
		Forecast: r.Forecast,
		Actual:   r.Actual,
		Index:    domain.IntensityIndex(r.Index),
	}
}

// Repository implements repository.Repository on Postgres through GORM
type Repository struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the intensity table
func Open(opts Options) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(opts.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing GORM handle and migrates the schema
func NewWithDB(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&intensityRow{}); err != nil {
		return nil, fmt.Errorf("migrate intensity: %w", err)
	}
	return &Repository{db: db}, nil
}

// ListOrderedByFrom returns every record ascending by interval start
func (r *Repository) ListOrderedByFrom(ctx context.Context) ([]domain.IntensityRecord, error) {
	var rows []intensityRow
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "from"}}).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list intensities: %w", err)
	}

	records := make([]domain.IntensityRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *row.record())
	}
	return records, nil
}

// FindByID retrieves a single record, or nil when the id is unknown
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.IntensityRecord, error) {
	var row intensityRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find intensity %d: %w", id, err)
	}
	return row.record(), nil
}

// Insert stores a new record and returns it with its assigned id
func (r *Repository) Insert(ctx context.Context, rec *domain.IntensityRecord) (repository.WriteResult, error) {
	row := rowFromRecord(rec)
	row.ID = 0

	err := r.db.WithContext(ctx).Create(&row).Error
	if isUniqueViolation(err) {
		return repository.WriteResult{Status: repository.WriteDuplicate}, nil
	}
	if err != nil {
		return repository.WriteResult{}, fmt.Errorf("insert intensity: %w", err)
	}
	return repository.WriteResult{Status: repository.WriteOK, Record: row.record()}, nil
}

// Persist writes every mutable field of rec to the row with rec.ID
func (r *Repository) Persist(ctx context.Context, rec *domain.IntensityRecord) (repository.WriteResult, error) {
	row := rowFromRecord(rec)

	res := r.db.WithContext(ctx).
		Model(&intensityRow{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"from":     row.From,
			"to":       row.To,
			"forecast": row.Forecast,
			"actual":   row.Actual,
			"index":    row.Index,
		})
	if isUniqueViolation(res.Error) {
		return repository.WriteResult{Status: repository.WriteDuplicate}, nil
	}
	if res.Error != nil {
		return repository.WriteResult{}, fmt.Errorf("update intensity %d: %w", row.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.WriteResult{Status: repository.WriteMissing}, nil
	}
	return repository.WriteResult{Status: repository.WriteOK, Record: row.record()}, nil
}

// DeleteByID removes a record permanently and reports whether a row was deleted
func (r *Repository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&intensityRow{})
	if res.Error != nil {
		return false, fmt.Errorf("delete intensity %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ImportRecords inserts inputs in one transaction, skipping intervals that
// are already stored
func (r *Repository) ImportRecords(ctx context.Context, inputs []domain.IntensityInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	rows := make([]intensityRow, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, rowFromRecord(in.NewRecord()))
	}

	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from"}, {Name: "to"}},
			DoNothing: true,
		}).CreateInBatches(rows, 500)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import intensities: %w", err)
	}
	return int(inserted), nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation reports whether err was raised by a unique constraint,
// either already translated by GORM or as a raw pgx error
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
