package util

import (
	"time"
)

// DefaultCutoff is the UTC time of day at which upstream publishes the
// previous reporting day's figures.
const DefaultCutoff = 10 * time.Hour

// ReportingCalendar maps calendar days onto upstream reporting days. Before
// the cutoff, "today" still refers to yesterday's data.
type ReportingCalendar struct {
	cutoff time.Duration
	now    func() time.Time
}

// NewReportingCalendar creates a calendar with the given cutoff (time since
// UTC midnight) and clock. A nil clock means time.Now.
func NewReportingCalendar(cutoff time.Duration, now func() time.Time) *ReportingCalendar {
	if now == nil {
		now = time.Now
	}
	return &ReportingCalendar{
		cutoff: cutoff,
		now:    now,
	}
}

// Now returns the current time in UTC.
func (rc *ReportingCalendar) Now() time.Time {
	return rc.now().UTC()
}

// Offset converts a day offset relative to the calendar day into one
// relative to the current reporting day.
func (rc *ReportingCalendar) Offset(days int) int {
	return rc.offsetAt(rc.Now(), days)
}

func (rc *ReportingCalendar) offsetAt(now time.Time, days int) int {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if now.Sub(midnight) < rc.cutoff {
		return days - 1
	}
	return days
}

// FormatDate returns today (UTC) plus offset days as YYYY-MM-DD.
func (rc *ReportingCalendar) FormatDate(offset int) string {
	return formatAt(rc.Now(), offset)
}

func formatAt(now time.Time, offset int) string {
	return now.AddDate(0, 0, offset).Format("2006-01-02")
}

// ReportingDates returns the reporting day selected by days together with
// the days before and after it. All three come from a single clock read, so
// a call straddling midnight or the cutoff cannot mix days.
func (rc *ReportingCalendar) ReportingDates(days int) (prev, day, next string) {
	now := rc.Now()
	off := rc.offsetAt(now, days)
	return formatAt(now, off-1), formatAt(now, off), formatAt(now, off+1)
}

// Today returns the current UTC date as YYYY-MM-DD.
func (rc *ReportingCalendar) Today() string {
	return rc.FormatDate(0)
}
