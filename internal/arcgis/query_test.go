package arcgis

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"inacovid/internal/domain"
	"inacovid/internal/util"
)

func calAt(ts time.Time) *util.ReportingCalendar {
	return util.NewReportingCalendar(util.DefaultCutoff, func() time.Time { return ts })
}

// afternoon is past the cutoff, so offsets are used as given.
var afternoon = time.Date(2020, 5, 3, 14, 0, 0, 0, time.UTC)

// morning is before the cutoff, so every offset shifts back one day.
var morning = time.Date(2020, 5, 3, 8, 0, 0, 0, time.UTC)

func TestWhereStaticClauses(t *testing.T) {
	cal := calAt(afternoon)
	cases := []struct {
		w    Where
		want string
	}{
		{WhereAll{}, "1=1"},
		{WhereConfirmed{}, "(Confirmed > 0)"},
		{WhereDeaths{}, "(Confirmed > 0) AND (Deaths > 0)"},
		{WhereRecovered{}, "(Confirmed > 0) AND (Recovered <> 0)"},
		{WhereIndonesia{}, "(Provinsi = 'Indonesia') OR (Provinsi <> 'Indonesia')"},
	}
	for _, tc := range cases {
		if got := tc.w.Clause(cal); got != tc.want {
			t.Errorf("%T.Clause() = %q, want %q", tc.w, got, tc.want)
		}
	}
}

// Characterization: the redundant OR term is what upstream currently gets.
func TestWhereCurrentDateClause(t *testing.T) {
	want := "(Tanggal>=timestamp '2020-05-03 17:00:00' AND Tanggal<=timestamp '2020-05-04 16:59:59' OR Tanggal>=timestamp '2020-05-02 16:59:59')"
	if got := (WhereCurrentDate{Offset: 0}).Clause(calAt(afternoon)); got != want {
		t.Errorf("afternoon clause:\n got %s\nwant %s", got, want)
	}

	want = "(Tanggal>=timestamp '2020-05-02 17:00:00' AND Tanggal<=timestamp '2020-05-03 16:59:59' OR Tanggal>=timestamp '2020-05-01 16:59:59')"
	if got := (WhereCurrentDate{Offset: 0}).Clause(calAt(morning)); got != want {
		t.Errorf("morning clause:\n got %s\nwant %s", got, want)
	}
}

func TestWhereBeforeTodayMatchesFormatDate(t *testing.T) {
	for _, ts := range []time.Time{morning, afternoon} {
		cal := calAt(ts)
		for d := 0; d < 5; d++ {
			want := "Tanggal<timestamp '" + cal.FormatDate(cal.Offset(d)) + " 17:00:00'"
			if got := (WhereBeforeToday{Offset: d}).Clause(cal); got != want {
				t.Errorf("at %s offset %d: got %q, want %q", ts, d, got, want)
			}
		}
	}

	am := (WhereBeforeToday{}).Clause(calAt(morning))
	pm := (WhereBeforeToday{}).Clause(calAt(afternoon))
	if am != "Tanggal<timestamp '2020-05-02 17:00:00'" || pm != "Tanggal<timestamp '2020-05-03 17:00:00'" {
		t.Errorf("cutoff should move the date by one day: am=%q pm=%q", am, pm)
	}
}

func TestQueryEncodeOrder(t *testing.T) {
	qs := NewQuery(WhereAll{}).Encode(calAt(afternoon), ListingParams("Tanggal asc")...)

	want := "f=json&where=1%3D1&returnGeometry=false&spatialRel=esriSpatialRelIntersects" +
		"&outFields=%2A&cacheHint=true&orderByFields=Tanggal+asc&resultRecordCount=2000&resultOffset=0"
	if qs != want {
		t.Errorf("query string:\n got %s\nwant %s", qs, want)
	}
}

func TestQueryEncodeKeepsDuplicateKeys(t *testing.T) {
	qs := NewQuery(nil).Encode(calAt(afternoon), Param{"f", "pjson"}, Param{"cacheHint", "false"})

	values, err := url.ParseQuery(qs)
	if err != nil {
		t.Fatal(err)
	}
	if got := values["f"]; len(got) != 2 || got[0] != "json" || got[1] != "pjson" {
		t.Errorf("f = %v, want [json pjson]", got)
	}
	if got := values["cacheHint"]; len(got) != 2 || got[1] != "false" {
		t.Errorf("cacheHint = %v", got)
	}
	if values.Get("where") != "1=1" {
		t.Errorf("nil filter should select all, got %q", values.Get("where"))
	}
}

func TestStatisticsQuery(t *testing.T) {
	got := StatisticsQuery("Jumlah_Pasien_Sembuh")
	want := `[{"statisticType":"sum","onStatisticField":"Jumlah_Pasien_Sembuh","outStatisticFieldName":"value"}]`
	if got != want {
		t.Errorf("StatisticsQuery = %s, want %s", got, want)
	}

	qs := EncodeParams([]Param{{ParamOutStatistics, got}})
	values, _ := url.ParseQuery(qs)
	if values.Get(ParamOutStatistics) != want {
		t.Errorf("outStatistics did not survive encoding: %q", values.Get(ParamOutStatistics))
	}
}

func TestRequestURL(t *testing.T) {
	got, err := RequestURL("https://example.com/arcgis/query", "f=json&where=1%3D1")
	if err != nil {
		t.Fatalf("RequestURL: %v", err)
	}
	if got != "https://example.com/arcgis/query?f=json&where=1%3D1" {
		t.Errorf("RequestURL = %q", got)
	}

	got, err = RequestURL("https://example.com/q?stale=1#frag", "f=json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "stale") || strings.Contains(got, "frag") {
		t.Errorf("existing query/fragment should be replaced: %q", got)
	}
}

func TestRequestURLInvalid(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative/path", "example.com/query", "http://[::1"} {
		_, err := RequestURL(base, "f=json")
		if !errors.Is(err, domain.ErrInvalidEndpoint) {
			t.Errorf("RequestURL(%q) err = %v, want ErrInvalidEndpoint", base, err)
		}
	}
}

func TestEndpointsDefaultsAndOverrides(t *testing.T) {
	var eps Endpoints
	if !strings.Contains(eps.URL(EndpointProvince), "COVID19_Indonesia_per_Provinsi") {
		t.Errorf("province default = %q", eps.URL(EndpointProvince))
	}
	if !strings.Contains(eps.URL(EndpointProgress), "Statistik_Perkembangan") {
		t.Errorf("progress default = %q", eps.URL(EndpointProgress))
	}

	eps = Endpoints{Progress: "http://localhost/progress"}
	if eps.URL(EndpointProgress) != "http://localhost/progress" {
		t.Errorf("override ignored: %q", eps.URL(EndpointProgress))
	}
	if Endpoint(9).String() != "endpoint(9)" || EndpointProvince.String() != "province" {
		t.Error("unexpected Endpoint.String output")
	}
}

// A clause rendered while the clock crosses the cutoff uses one instant for
// every date in it.
func TestWhereCurrentDateSingleClockRead(t *testing.T) {
	instants := []time.Time{
		time.Date(2020, 5, 3, 9, 59, 59, 0, time.UTC),
		time.Date(2020, 5, 3, 10, 0, 0, 0, time.UTC),
	}
	reads := 0
	cal := util.NewReportingCalendar(util.DefaultCutoff, func() time.Time {
		ts := instants[min(reads, len(instants)-1)]
		reads++
		return ts
	})

	got := (WhereCurrentDate{}).Clause(cal)
	want := "(Tanggal>=timestamp '2020-05-02 17:00:00' AND Tanggal<=timestamp '2020-05-03 16:59:59' OR Tanggal>=timestamp '2020-05-01 16:59:59')"
	if got != want {
		t.Errorf("Clause() = %q, want %q", got, want)
	}
	if reads != 1 {
		t.Errorf("clock read %d times, want 1", reads)
	}
}
