package arcgis

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"inacovid/internal/domain"
	"inacovid/internal/util"
)

// Param is one key/value pair of a query string. A slice of Params keeps
// caller order, unlike url.Values.
type Param struct {
	Key   string
	Value string
}

// Common extra parameters.
const (
	ParamOrderBy       = "orderByFields"
	ParamRecordCount   = "resultRecordCount"
	ParamResultOffset  = "resultOffset"
	ParamOutStatistics = "outStatistics"

	// MaxRecordCount caps every listing query; there is no pagination.
	MaxRecordCount = "2000"
)

// Query holds the fixed parameters shared by every feature-server request
// and the filter that varies between them.
type Query struct {
	Format         string
	Where          Where
	ReturnGeometry string
	SpatialRel     string
	OutFields      string
	CacheHint      string
}

// NewQuery returns the base query with the given filter. A nil filter
// selects every record.
func NewQuery(w Where) Query {
	if w == nil {
		w = WhereAll{}
	}
	return Query{
		Format:         "json",
		Where:          w,
		ReturnGeometry: "false",
		SpatialRel:     "esriSpatialRelIntersects",
		OutFields:      "*",
		CacheHint:      "true",
	}
}

// Params returns the base pairs in wire order.
func (q Query) Params(cal *util.ReportingCalendar) []Param {
	return []Param{
		{"f", q.Format},
		{"where", q.Where.Clause(cal)},
		{"returnGeometry", q.ReturnGeometry},
		{"spatialRel", q.SpatialRel},
		{"outFields", q.OutFields},
		{"cacheHint", q.CacheHint},
	}
}

// Encode renders the base pairs followed by extra in the given order. Keys
// are not deduplicated; a key present in both sets appears twice.
func (q Query) Encode(cal *util.ReportingCalendar, extra ...Param) string {
	return EncodeParams(append(q.Params(cal), extra...))
}

// EncodeParams joins escaped key=value pairs with '&', preserving order.
func EncodeParams(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// ListingParams returns the ordering and record-cap pairs used by the
// daily and province listings.
func ListingParams(orderBy string) []Param {
	return []Param{
		{ParamOrderBy, orderBy},
		{ParamRecordCount, MaxRecordCount},
		{ParamResultOffset, "0"},
	}
}

type outStatistic struct {
	StatisticType         string `json:"statisticType"`
	OnStatisticField      string `json:"onStatisticField"`
	OutStatisticFieldName string `json:"outStatisticFieldName"`
}

// StatisticsQuery returns the compact JSON descriptor asking upstream to sum
// field into an output column named "value".
func StatisticsQuery(field string) string {
	// Marshalling a slice of plain string fields cannot fail.
	b, _ := json.Marshal([]outStatistic{{
		StatisticType:         "sum",
		OnStatisticField:      field,
		OutStatisticFieldName: "value",
	}})
	return string(b)
}

// RequestURL attaches query to base. base must be an absolute URL.
func RequestURL(base, query string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base URI %q is unrecognized: %w", domain.ErrInvalidEndpoint, base, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: base URI %q is not absolute", domain.ErrInvalidEndpoint, base)
	}
	u.RawQuery = query
	u.Fragment = ""
	return u.String(), nil
}
