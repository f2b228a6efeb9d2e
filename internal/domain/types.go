// Package domain defines the record types shared by the fetch, persistence and
// snapshot layers: the upstream feature-collection envelope, its normalized
// projection, and the three persisted statistic shapes.
package domain

import "time"

// DateTimeLayout is the textual form used for every normalized timestamp.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the date-only form used for natural keys and file names.
const DateLayout = "2006-01-02"

// ---------------------------------------------------------------------------
// Upstream envelope
// ---------------------------------------------------------------------------

// FeatureCollection is the envelope returned by a feature-server query. Only
// Features is used downstream; the metadata is decoded so that a shape
// mismatch in it is still reported as a malformed response.
type FeatureCollection struct {
	ObjectIDFieldName *string           `json:"objectIdFieldName,omitempty"`
	UniqueIDField     *UniqueIDField    `json:"uniqueIdField,omitempty"`
	GlobalIDFieldName *string           `json:"globalIdFieldName,omitempty"`
	GeometryType      *string           `json:"geometryType,omitempty"`
	SpatialReference  *SpatialReference `json:"spatialReference,omitempty"`
	Fields            []Field           `json:"fields,omitempty"`
	Features          []Feature         `json:"features"`
}

// Feature wraps one attributes record.
type Feature struct {
	Attributes *Attributes `json:"attributes"`
}

// Field describes one column of the upstream layer.
type Field struct {
	Name         *string `json:"name,omitempty"`
	Type         *string `json:"type,omitempty"`
	Alias        *string `json:"alias,omitempty"`
	SQLType      *string `json:"sqlType,omitempty"`
	Domain       any     `json:"domain,omitempty"`
	DefaultValue any     `json:"defaultValue,omitempty"`
	Length       *int64  `json:"length,omitempty"`
}

// SpatialReference identifies the coordinate system of the layer.
type SpatialReference struct {
	WKID       *int64 `json:"wkid,omitempty"`
	LatestWKID *int64 `json:"latestWkid,omitempty"`
}

// UniqueIDField names the layer's unique id column.
type UniqueIDField struct {
	Name               *string `json:"name,omitempty"`
	IsSystemMaintained *bool   `json:"isSystemMaintained,omitempty"`
}

// Attributes holds the raw per-record fields. Upstream may omit any of them,
// so every field is a pointer and nil means "not reported".
type Attributes struct {
	FID                      *int64   `json:"FID,omitempty"`
	ProvinceCode             *int64   `json:"Kode_Provi,omitempty"`
	Province                 *string  `json:"Provinsi,omitempty"`
	ProvincePositive         *int64   `json:"Kasus_Posi,omitempty"`
	ProvinceRecovered        *int64   `json:"Kasus_Semb,omitempty"`
	ProvinceDeaths           *int64   `json:"Kasus_Meni,omitempty"`
	Value                    *int64   `json:"Value,omitempty"`
	Day                      *int64   `json:"Hari_ke,omitempty"`
	Date                     *int64   `json:"Tanggal,omitempty"` // epoch ms
	NewCasesPerDay           *int64   `json:"Jumlah_Kasus_Baru_per_Hari,omitempty"`
	CumulativeCases          *int64   `json:"Jumlah_Kasus_Kumulatif,omitempty"`
	UnderTreatment           *int64   `json:"Jumlah_pasien_dalam_perawatan,omitempty"`
	UnderTreatmentPercentage *float64 `json:"Persentase_Pasien_dalam_Perawatan,omitempty"`
	Recovered                *int64   `json:"Jumlah_Pasien_Sembuh,omitempty"`
	RecoveredPercentage      *float64 `json:"Persentase_Pasien_Sembuh,omitempty"`
	Deaths                   *int64   `json:"Jumlah_Pasien_Meninggal,omitempty"`
	DeathsPercentage         *float64 `json:"Persentase_Pasien_Meninggal,omitempty"`
	RecoveredPerDay          *int64   `json:"Jumlah_Kasus_Sembuh_per_Hari,omitempty"`
	DeathsPerDay             *int64   `json:"Jumlah_Kasus_Meninggal_per_Hari,omitempty"`
	UnderTreatmentPerDay     *int64   `json:"Jumlah_Kasus_Dirawat_per_Hari,omitempty"`
	UnderInvestigation       *int64   `json:"Kasus_Sedang_Investigasi_Lapangan,omitempty"`
	LatestUpdate             *int64   `json:"Pembaruan_Terakhir,omitempty"` // epoch ms
}

// ---------------------------------------------------------------------------
// Normalized records
// ---------------------------------------------------------------------------

// Stat is the normalized projection of one Attributes record. It carries the
// union of the daily and province fields; Daily and Province select the
// shape that is persisted.
type Stat struct {
	ProvinceID               *int64   `json:"ProvinceId,omitempty"`
	Day                      *int64   `json:"Day,omitempty"`
	Date                     *string  `json:"Date,omitempty"`
	NewCasesPerDay           *int64   `json:"NewCasesPerDay,omitempty"`
	CumulativeCases          *int64   `json:"CumulativeCases,omitempty"`
	UnderInvestigation       *int64   `json:"UnderInvestigation,omitempty"`
	UnderTreatment           *int64   `json:"UnderTreatment,omitempty"`
	UnderTreatmentPercentage *float64 `json:"UnderTreatmentPercentage,omitempty"`
	Recovered                *int64   `json:"Recovered,omitempty"`
	RecoveredPercentage      *float64 `json:"RecoveredPercentage,omitempty"`
	Deaths                   *int64   `json:"Deaths,omitempty"`
	DeathsPercentage         *float64 `json:"DeathsPercentage,omitempty"`
	RecoveredPerDay          *int64   `json:"RecoveredPerDay,omitempty"`
	DeathsPerDay             *int64   `json:"DeathsPerDay,omitempty"`
	UnderTreatmentPerDay     *int64   `json:"UnderTreatmentPerDay,omitempty"`
	LatestUpdate             *string  `json:"Latestupdate,omitempty"`
	Province                 *string  `json:"Provinsi,omitempty"`
	Positive                 *int64   `json:"Positif,omitempty"`
	ProvinceRecovered        *int64   `json:"Sembuh,omitempty"`
	ProvinceDeaths           *int64   `json:"Meninggal,omitempty"`
}

// NewStat projects a as a Stat. The two timestamps are rendered in UTC and
// fall back to now when upstream omitted them; nothing else is synthesized.
func NewStat(a Attributes, now time.Time) Stat {
	date := FormatEpochMillis(a.Date, now)
	latest := FormatEpochMillis(a.LatestUpdate, now)
	return Stat{
		ProvinceID:               a.ProvinceCode,
		Province:                 a.Province,
		Positive:                 a.ProvincePositive,
		ProvinceRecovered:        a.ProvinceRecovered,
		ProvinceDeaths:           a.ProvinceDeaths,
		Date:                     &date,
		Day:                      a.Day,
		NewCasesPerDay:           a.NewCasesPerDay,
		CumulativeCases:          a.CumulativeCases,
		UnderInvestigation:       a.UnderInvestigation,
		UnderTreatment:           a.UnderTreatment,
		UnderTreatmentPerDay:     a.UnderTreatmentPerDay,
		UnderTreatmentPercentage: a.UnderTreatmentPercentage,
		Recovered:                a.Recovered,
		RecoveredPerDay:          a.RecoveredPerDay,
		RecoveredPercentage:      a.RecoveredPercentage,
		Deaths:                   a.Deaths,
		DeathsPerDay:             a.DeathsPerDay,
		DeathsPercentage:         a.DeathsPercentage,
		LatestUpdate:             &latest,
	}
}

// FormatEpochMillis renders an epoch-millisecond timestamp as DateTimeLayout
// in UTC, using fallback when ms is nil. Sub-second precision is dropped.
func FormatEpochMillis(ms *int64, fallback time.Time) string {
	if ms == nil {
		return fallback.UTC().Format(DateTimeLayout)
	}
	return time.Unix(*ms/1000, 0).UTC().Format(DateTimeLayout)
}

// DailyStat is one row of the national daily time series.
type DailyStat struct {
	Day                      *int64   `json:"Day,omitempty"`
	Date                     *string  `json:"Date,omitempty"`
	NewCasesPerDay           *int64   `json:"NewCasesPerDay,omitempty"`
	CumulativeCases          *int64   `json:"CumulativeCases,omitempty"`
	UnderInvestigation       *int64   `json:"UnderInvestigation,omitempty"`
	UnderTreatment           *int64   `json:"UnderTreatment,omitempty"`
	UnderTreatmentPerDay     *int64   `json:"UnderTreatmentPerDay,omitempty"`
	UnderTreatmentPercentage *float64 `json:"UnderTreatmentPercentage,omitempty"`
	Recovered                *int64   `json:"Recovered,omitempty"`
	RecoveredPerDay          *int64   `json:"RecoveredPerDay,omitempty"`
	RecoveredPercentage      *float64 `json:"RecoveredPercentage,omitempty"`
	Deaths                   *int64   `json:"Deaths,omitempty"`
	DeathsPerDay             *int64   `json:"DeathsPerDay,omitempty"`
	DeathsPercentage         *float64 `json:"DeathsPercentage,omitempty"`
	LatestUpdate             *string  `json:"Latestupdate,omitempty"`
}

// ToDaily selects the daily-series shape of s.
func (s Stat) ToDaily() DailyStat {
	return DailyStat{
		Day:                      s.Day,
		Date:                     s.Date,
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

// ProvinceStat is one province's counters on one date.
type ProvinceStat struct {
	ProvinceID *int64  `json:"ProvinceId,omitempty"`
	Province   *string `json:"Provinsi,omitempty"`
	Date       *string `json:"Date,omitempty"`
	Positive   *int64  `json:"Positif,omitempty"`
	Recovered  *int64  `json:"Sembuh,omitempty"`
	Deaths     *int64  `json:"Meninggal,omitempty"`
}

// ToProvince selects the per-province shape of s, truncating the date to
// DateLayout.
func (s Stat) ToProvince() ProvinceStat {
	p := ProvinceStat{
		ProvinceID: s.ProvinceID,
		Province:   s.Province,
		Positive:   s.Positive,
		Recovered:  s.ProvinceRecovered,
		Deaths:     s.ProvinceDeaths,
	}
	if s.Date != nil {
		d := truncateDate(*s.Date)
		p.Date = &d
	}
	return p
}

// Key returns the natural key "{province}_{date}". ok is false when either
// part is missing, in which case the record cannot be deduplicated.
func (p ProvinceStat) Key() (key string, ok bool) {
	if p.Province == nil || p.Date == nil {
		return "", false
	}
	return *p.Province + "_" + truncateDate(*p.Date), true
}

// CumulativeStat is the national running total for one reporting date, built
// from four independently fetched sums.
type CumulativeStat struct {
	TotalCases     *int64  `json:"TotalCases,omitempty"`
	Deaths         *int64  `json:"Deaths,omitempty"`
	Recovered      *int64  `json:"Recovered,omitempty"`
	UnderTreatment *int64  `json:"Pdp,omitempty"`
	Date           *string `json:"Date,omitempty"`
}

func truncateDate(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}
