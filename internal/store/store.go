// Package store defines storage interfaces for persisting normalized
// statistics and provides the relational and Parquet implementations.
package store

import (
	"context"
	"errors"

	"inacovid/internal/domain"
)

// ErrNotFound is returned by the read helpers when no row matches.
var ErrNotFound = errors.New("not found")

// DailyStore persists the national daily series.
type DailyStore interface {
	// UpsertDaily inserts each stat keyed by date. An existing date keeps its
	// stored values and is only marked as seen again. It returns the number
	// of records written.
	UpsertDaily(ctx context.Context, stats []domain.DailyStat) (int, error)
}

// ProvinceStore persists the per-province series.
type ProvinceStore interface {
	// UpsertProvince inserts each stat keyed by "{province}_{date}" with the
	// same first-write-wins policy as UpsertDaily.
	UpsertProvince(ctx context.Context, stats []domain.ProvinceStat) (int, error)
}

// CumulativeStore persists the national running totals.
type CumulativeStore interface {
	// UpsertCumulative inserts stat keyed by its date, first write wins.
	UpsertCumulative(ctx context.Context, stat domain.CumulativeStat) (int, error)
}

// StatStore is the full persistence surface used by a collection run.
type StatStore interface {
	DailyStore
	ProvinceStore
	CumulativeStore
}

// DailyArchive keeps a columnar copy of the daily series.
type DailyArchive interface {
	ArchiveDaily(ctx context.Context, stats []domain.DailyStat) (int, error)
}
