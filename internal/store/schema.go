package store

import (
	"strconv"
	"strings"
)

// The DDL is the common subset understood by both Postgres and SQLite. Each
// table's natural key carries a UNIQUE constraint, which Postgres names
// <table>_<column>_key.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS covid_daily (
		day                        BIGINT,
		date                       TEXT NOT NULL UNIQUE,
		new_cases_per_day          BIGINT,
		cumulative_cases           BIGINT,
		under_investigation        BIGINT,
		under_treatment            BIGINT,
		under_treatment_per_day    BIGINT,
		under_treatment_percentage DOUBLE PRECISION,
		recovered                  BIGINT,
		recovered_per_day          BIGINT,
		recovered_percentage       DOUBLE PRECISION,
		deaths                     BIGINT,
		deaths_per_day             BIGINT,
		deaths_percentage          DOUBLE PRECISION,
		latest_update              TEXT,
		existed                    BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS covid_province (
		province_id   BIGINT,
		date          TEXT,
		provinsi      TEXT,
		positif       BIGINT,
		sembuh        BIGINT,
		meninggal     BIGINT,
		prov_and_date TEXT NOT NULL UNIQUE,
		existed       BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS covid_stats (
		deaths      BIGINT,
		total_cases BIGINT,
		recovered   BIGINT,
		pdp         BIGINT,
		at_date     TEXT NOT NULL UNIQUE,
		existed     BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

const upsertDailySQL = `
	INSERT INTO covid_daily (day, date, new_cases_per_day, cumulative_cases, under_investigation,
		under_treatment, under_treatment_per_day, under_treatment_percentage,
		recovered, recovered_per_day, recovered_percentage,
		deaths, deaths_per_day, deaths_percentage, latest_update)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (date) DO UPDATE SET existed = TRUE`

const upsertProvinceSQL = `
	INSERT INTO covid_province (province_id, date, provinsi, positif, sembuh, meninggal, prov_and_date)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (prov_and_date) DO UPDATE SET existed = TRUE`

const upsertCumulativeSQL = `
	INSERT INTO covid_stats (deaths, total_cases, recovered, pdp, at_date)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (at_date) DO UPDATE SET existed = TRUE`

const selectDailySQL = `
	SELECT day, date, new_cases_per_day, cumulative_cases, under_investigation,
		under_treatment, under_treatment_per_day, under_treatment_percentage,
		recovered, recovered_per_day, recovered_percentage,
		deaths, deaths_per_day, deaths_percentage, latest_update, existed
	FROM covid_daily WHERE date = ?`

const selectProvinceSQL = `
	SELECT province_id, date, provinsi, positif, sembuh, meninggal, existed
	FROM covid_province WHERE prov_and_date = ?`

const selectCumulativeSQL = `
	SELECT deaths, total_cases, recovered, pdp, at_date, existed
	FROM covid_stats WHERE at_date = ?`

// dialect captures the differences between the supported databases.
type dialect struct {
	driver      string
	numberedArg bool // $1, $2, ... instead of ?
}

var (
	postgresDialect = dialect{driver: "pgx", numberedArg: true}
	sqliteDialect   = dialect{driver: "sqlite"}
)

// rebind rewrites '?' placeholders for dialects that number their arguments.
func (d dialect) rebind(query string) string {
	if !d.numberedArg {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
