package arcgis

import (
	"fmt"

	"inacovid/internal/util"
)

// Where is a filter expression for the `where` query parameter. The set of
// implementations is closed; each renders its clause against the reporting
// calendar so that date-relative filters follow the upstream day boundary.
type Where interface {
	Clause(cal *util.ReportingCalendar) string
	isWhere()
}

// WhereAll matches every record.
type WhereAll struct{}

// WhereConfirmed, WhereDeaths, WhereRecovered and WhereIndonesia are not
// used by the collection operations. They cover the other filters the
// upstream layers accept and are kept for ad-hoc queries through Client.

// WhereConfirmed matches records with at least one confirmed case.
type WhereConfirmed struct{}

// WhereDeaths matches records with confirmed cases and deaths.
type WhereDeaths struct{}

// WhereRecovered matches records with confirmed cases and recoveries.
type WhereRecovered struct{}

// WhereIndonesia matches every province row including the national one.
type WhereIndonesia struct{}

// WhereCurrentDate matches the 24h window of the reporting day Offset days
// from today.
type WhereCurrentDate struct{ Offset int }

// WhereBeforeToday matches every record before the reporting day Offset
// days from today.
type WhereBeforeToday struct{ Offset int }

func (WhereAll) Clause(*util.ReportingCalendar) string { return "1=1" }

func (WhereConfirmed) Clause(*util.ReportingCalendar) string { return "(Confirmed > 0)" }

func (WhereDeaths) Clause(*util.ReportingCalendar) string {
	return "(Confirmed > 0) AND (Deaths > 0)"
}

func (WhereRecovered) Clause(*util.ReportingCalendar) string {
	return "(Confirmed > 0) AND (Recovered <> 0)"
}

func (WhereIndonesia) Clause(*util.ReportingCalendar) string {
	return "(Provinsi = 'Indonesia') OR (Provinsi <> 'Indonesia')"
}

// Clause renders the window straddling 17:00 UTC. The trailing OR term is
// kept verbatim from the filter the upstream dashboard issues.
func (w WhereCurrentDate) Clause(cal *util.ReportingCalendar) string {
	prev, day, next := cal.ReportingDates(w.Offset)
	return fmt.Sprintf(
		"(Tanggal>=timestamp '%s 17:00:00' AND Tanggal<=timestamp '%s 16:59:59' OR Tanggal>=timestamp '%s 16:59:59')",
		day, next, prev,
	)
}

func (w WhereBeforeToday) Clause(cal *util.ReportingCalendar) string {
	_, day, _ := cal.ReportingDates(w.Offset)
	return fmt.Sprintf("Tanggal<timestamp '%s 17:00:00'", day)
}

func (WhereAll) isWhere()         {}
func (WhereConfirmed) isWhere()   {}
func (WhereDeaths) isWhere()      {}
func (WhereRecovered) isWhere()   {}
func (WhereIndonesia) isWhere()   {}
func (WhereCurrentDate) isWhere() {}
func (WhereBeforeToday) isWhere() {}
