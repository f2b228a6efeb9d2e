package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver registered as "pgx".
	_ "modernc.org/sqlite"             // Pure-Go SQLite driver.

	"inacovid/internal/domain"
)

// Compile-time interface checks.
var _ StatStore = (*SQLStore)(nil)

// sqlitePrefix selects the SQLite driver; the rest of the DSN is its path.
const sqlitePrefix = "sqlite:"

// SQLStore implements StatStore on a database/sql pool. Each upsert batch
// runs in its own transaction.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	log     *slog.Logger
}

// Open connects to dsn and verifies the connection. A DSN of the form
// "sqlite:<path>" opens a SQLite database; anything else is handed to the
// Postgres driver.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*SQLStore, error) {
	d := postgresDialect
	if strings.HasPrefix(dsn, sqlitePrefix) {
		d = sqliteDialect
		dsn = strings.TrimPrefix(dsn, sqlitePrefix)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s database: %w", domain.ErrPersistence, d.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s database: %w", domain.ErrPersistence, d.driver, err)
	}
	if d == sqliteDialect {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	return NewSQLStore(db, d.driver, log), nil
}

// NewSQLStore wraps an open pool. driverName selects the placeholder style
// ("pgx" or "sqlite").
func NewSQLStore(db *sql.DB, driverName string, log *slog.Logger) *SQLStore {
	d := postgresDialect
	if driverName == sqliteDialect.driver {
		d = sqliteDialect
	}
	if log == nil {
		log = slog.Default()
	}
	return &SQLStore{db: db, dialect: d, log: log}
}

// Close closes the underlying pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Migrate creates the three target tables when they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: applying schema: %w", domain.ErrPersistence, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Upserts
// ---------------------------------------------------------------------------

// UpsertDaily inserts daily stats keyed by date, first write wins. Stats
// without a date are skipped.
func (s *SQLStore) UpsertDaily(ctx context.Context, stats []domain.DailyStat) (int, error) {
	written := 0
	err := s.inTx(ctx, upsertDailySQL, func(stmt *sql.Stmt) error {
		for _, d := range stats {
			if d.Date == nil {
				s.log.Warn("skipping daily stat without date", "day", value(d.Day))
				continue
			}
			_, err := stmt.ExecContext(ctx,
				value(d.Day), *d.Date, value(d.NewCasesPerDay), value(d.CumulativeCases), value(d.UnderInvestigation),
				value(d.UnderTreatment), value(d.UnderTreatmentPerDay), value(d.UnderTreatmentPercentage),
				value(d.Recovered), value(d.RecoveredPerDay), value(d.RecoveredPercentage),
				value(d.Deaths), value(d.DeathsPerDay), value(d.DeathsPercentage), value(d.LatestUpdate),
			)
			if err != nil {
				return fmt.Errorf("upserting daily %s: %w", *d.Date, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// UpsertProvince inserts province stats keyed by "{province}_{date}", first
// write wins. Stats lacking a province or date have no key and are skipped.
func (s *SQLStore) UpsertProvince(ctx context.Context, stats []domain.ProvinceStat) (int, error) {
	written := 0
	err := s.inTx(ctx, upsertProvinceSQL, func(stmt *sql.Stmt) error {
		for _, p := range stats {
			key, ok := p.Key()
			if !ok {
				s.log.Warn("skipping province stat without natural key", "province_id", value(p.ProvinceID))
				continue
			}
			_, err := stmt.ExecContext(ctx,
				value(p.ProvinceID), value(p.Date), value(p.Province),
				value(p.Positive), value(p.Recovered), value(p.Deaths), key,
			)
			if err != nil {
				return fmt.Errorf("upserting province %s: %w", key, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// UpsertCumulative inserts the running totals keyed by date, first write
// wins. A stat without a date is skipped.
func (s *SQLStore) UpsertCumulative(ctx context.Context, c domain.CumulativeStat) (int, error) {
	if c.Date == nil {
		s.log.Warn("skipping cumulative stat without date")
		return 0, nil
	}
	err := s.inTx(ctx, upsertCumulativeSQL, func(stmt *sql.Stmt) error {
		_, err := stmt.ExecContext(ctx,
			value(c.Deaths), value(c.TotalCases), value(c.Recovered), value(c.UnderTreatment), *c.Date,
		)
		if err != nil {
			return fmt.Errorf("upserting cumulative %s: %w", *c.Date, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// inTx prepares query inside a fresh transaction, runs fn, and commits. Any
// failure rolls the batch back and is reported as domain.ErrPersistence.
func (s *SQLStore) inTx(ctx context.Context, query string, fn func(stmt *sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", domain.ErrPersistence, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(query))
	if err != nil {
		return fmt.Errorf("%w: prepare: %w", domain.ErrPersistence, err)
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrPersistence, err)
	}
	committed = true
	return nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// DailyByDate returns the stored daily stat for date and whether it has
// been seen again since the first insert.
func (s *SQLStore) DailyByDate(ctx context.Context, date string) (domain.DailyStat, bool, error) {
	var (
		d       domain.DailyStat
		existed bool
	)
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(selectDailySQL), date).Scan(
		&d.Day, &d.Date, &d.NewCasesPerDay, &d.CumulativeCases, &d.UnderInvestigation,
		&d.UnderTreatment, &d.UnderTreatmentPerDay, &d.UnderTreatmentPercentage,
		&d.Recovered, &d.RecoveredPerDay, &d.RecoveredPercentage,
		&d.Deaths, &d.DeathsPerDay, &d.DeathsPercentage, &d.LatestUpdate, &existed,
	)
	if err != nil {
		return domain.DailyStat{}, false, readErr("daily", date, err)
	}
	return d, existed, nil
}

// ProvinceByKey returns the stored province stat for a natural key.
func (s *SQLStore) ProvinceByKey(ctx context.Context, key string) (domain.ProvinceStat, bool, error) {
	var (
		p       domain.ProvinceStat
		existed bool
	)
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(selectProvinceSQL), key).Scan(
		&p.ProvinceID, &p.Date, &p.Province, &p.Positive, &p.Recovered, &p.Deaths, &existed,
	)
	if err != nil {
		return domain.ProvinceStat{}, false, readErr("province", key, err)
	}
	return p, existed, nil
}

// CumulativeByDate returns the stored running totals for date.
func (s *SQLStore) CumulativeByDate(ctx context.Context, date string) (domain.CumulativeStat, bool, error) {
	var (
		c       domain.CumulativeStat
		existed bool
	)
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(selectCumulativeSQL), date).Scan(
		&c.Deaths, &c.TotalCases, &c.Recovered, &c.UnderTreatment, &c.Date, &existed,
	)
	if err != nil {
		return domain.CumulativeStat{}, false, readErr("cumulative", date, err)
	}
	return c, existed, nil
}

// Count returns the number of rows in one of the three target tables.
func (s *SQLStore) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case "covid_daily", "covid_province", "covid_stats":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting %s: %w", domain.ErrPersistence, table, err)
	}
	return n, nil
}

func readErr(kind, key string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, key, ErrNotFound)
	}
	return fmt.Errorf("%w: reading %s %s: %w", domain.ErrPersistence, kind, key, err)
}

// value unwraps an optional field into a driver argument; nil becomes NULL.
func value[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
