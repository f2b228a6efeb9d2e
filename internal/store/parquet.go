package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	"inacovid/internal/domain"
)

// Compile-time interface check.
var _ DailyArchive = (*ParquetArchive)(nil)

// ParquetArchive keeps the daily series in yearly Parquet files on disk.
type ParquetArchive struct {
	DataDir string
}

// NewParquetArchive creates a ParquetArchive rooted at the given directory.
func NewParquetArchive(dataDir string) *ParquetArchive {
	return &ParquetArchive{DataDir: dataDir}
}

// DailyRecord is the Parquet schema for the daily series. Optional columns
// mirror the nullable fields of domain.DailyStat.
type DailyRecord struct {
	Date                     string   `parquet:"date"`
	Day                      *int64   `parquet:"day,optional"`
	NewCasesPerDay           *int64   `parquet:"new_cases_per_day,optional"`
	CumulativeCases          *int64   `parquet:"cumulative_cases,optional"`
	UnderInvestigation       *int64   `parquet:"under_investigation,optional"`
	UnderTreatment           *int64   `parquet:"under_treatment,optional"`
	UnderTreatmentPerDay     *int64   `parquet:"under_treatment_per_day,optional"`
	UnderTreatmentPercentage *float64 `parquet:"under_treatment_percentage,optional"`
	Recovered                *int64   `parquet:"recovered,optional"`
	RecoveredPerDay          *int64   `parquet:"recovered_per_day,optional"`
	RecoveredPercentage      *float64 `parquet:"recovered_percentage,optional"`
	Deaths                   *int64   `parquet:"deaths,optional"`
	DeathsPerDay             *int64   `parquet:"deaths_per_day,optional"`
	DeathsPercentage         *float64 `parquet:"deaths_percentage,optional"`
	LatestUpdate             *string  `parquet:"latest_update,optional"`
}

// ArchiveDaily merges stats into the yearly files at
//
//	<DataDir>/daily/<YYYY>.parquet
//
// keyed by date. Dates already archived keep their stored values, matching
// the relational store. Stats without a date are skipped. It returns the
// number of newly archived dates.
func (a *ParquetArchive) ArchiveDaily(_ context.Context, stats []domain.DailyStat) (int, error) {
	groups := make(map[string][]DailyRecord)
	for _, s := range stats {
		if s.Date == nil || len(*s.Date) < 4 {
			continue
		}
		year := (*s.Date)[:4]
		groups[year] = append(groups[year], toDailyRecord(s))
	}

	added := 0
	for year, records := range groups {
		path := a.dailyPath(year)

		existing, err := readExistingDaily(path)
		if err != nil {
			return added, fmt.Errorf("%w: reading daily archive %s: %w", domain.ErrPersistence, year, err)
		}
		merged, n := mergeDailyRecords(existing, records)
		if n == 0 {
			continue
		}
		if err := writeParquetFile(path, merged); err != nil {
			return added, fmt.Errorf("%w: archiving daily %s: %w", domain.ErrPersistence, year, err)
		}
		added += n
	}
	return added, nil
}

// ReadDaily returns the archived records of one year, sorted by date.
func (a *ParquetArchive) ReadDaily(year string) ([]DailyRecord, error) {
	return readParquetFile[DailyRecord](a.dailyPath(year))
}

// readExistingDaily loads a year's archive. A missing file means nothing is
// archived for the year yet; any other failure is returned so an unreadable
// file is never overwritten.
func readExistingDaily(path string) ([]DailyRecord, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return readParquetFile[DailyRecord](path)
}

// dailyPath returns the filesystem path for a year's archive.
func (a *ParquetArchive) dailyPath(year string) string {
	return filepath.Join(a.DataDir, "daily", year+".parquet")
}

func toDailyRecord(s domain.DailyStat) DailyRecord {
	return DailyRecord{
		Date:                     *s.Date,
		Day:                      s.Day,
		NewCasesPerDay:           s.NewCasesPerDay,
		CumulativeCases:          s.CumulativeCases,
		UnderInvestigation:       s.UnderInvestigation,
		UnderTreatment:           s.UnderTreatment,
		UnderTreatmentPerDay:     s.UnderTreatmentPerDay,
		UnderTreatmentPercentage: s.UnderTreatmentPercentage,
		Recovered:                s.Recovered,
		RecoveredPerDay:          s.RecoveredPerDay,
		RecoveredPercentage:      s.RecoveredPercentage,
		Deaths:                   s.Deaths,
		DeathsPerDay:             s.DeathsPerDay,
		DeathsPercentage:         s.DeathsPercentage,
		LatestUpdate:             s.LatestUpdate,
	}
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

// writeParquetFile writes records next to path and renames the result into
// place, so a failed write leaves the previous file intact.
func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := parquet.WriteFile(tmp, records); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeDailyRecords deduplicates by date, keeping existing records over
// incoming ones. It returns the merged set sorted by date and the number of
// incoming dates that were new.
func mergeDailyRecords(existing, incoming []DailyRecord) ([]DailyRecord, int) {
	seen := make(map[string]DailyRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Date] = r
	}
	added := 0
	for _, r := range incoming {
		if _, ok := seen[r.Date]; ok {
			continue
		}
		seen[r.Date] = r
		added++
	}

	merged := make([]DailyRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})
	return merged, added
}
