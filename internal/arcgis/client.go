package arcgis

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"inacovid/internal/domain"
	"inacovid/internal/util"
)

// Client issues feature-server queries. The Fetcher it wraps is shared by
// every call, including the concurrent statistics sub-queries.
type Client struct {
	fetcher   Fetcher
	endpoints Endpoints
	cal       *util.ReportingCalendar
	log       *slog.Logger
}

// NewClient creates a Client. A nil calendar uses the default cutoff and the
// wall clock; a nil logger uses slog.Default().
func NewClient(fetcher Fetcher, endpoints Endpoints, cal *util.ReportingCalendar, log *slog.Logger) *Client {
	if cal == nil {
		cal = util.NewReportingCalendar(util.DefaultCutoff, nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		fetcher:   fetcher,
		endpoints: endpoints,
		cal:       cal,
		log:       log,
	}
}

// Calendar returns the reporting calendar used to render date filters.
func (c *Client) Calendar() *util.ReportingCalendar { return c.cal }

// URL builds the request URL for a query against e.
func (c *Client) URL(e Endpoint, w Where, extra ...Param) (string, error) {
	qs := NewQuery(w).Encode(c.cal, extra...)
	return RequestURL(c.endpoints.URL(e), qs)
}

// Query fetches the raw body of a query against e.
func (c *Client) Query(ctx context.Context, e Endpoint, w Where, extra ...Param) (string, error) {
	u, err := c.URL(e, w, extra...)
	if err != nil {
		return "", err
	}
	c.log.Debug("querying feature server", "endpoint", e.String(), "url", u)
	return c.fetcher.Fetch(ctx, u)
}

// Features fetches a query against e and decodes its feature attributes.
func (c *Client) Features(ctx context.Context, e Endpoint, w Where, extra ...Param) ([]domain.Attributes, error) {
	body, err := c.Query(ctx, e, w, extra...)
	if err != nil {
		return nil, err
	}
	return ParseFeatureCollection(body)
}

// SumStatistics issues one sum-statistics query per field concurrently and
// returns the sums positionally: result[i] belongs to fields[i] whatever the
// completion order. A sum missing from its response is nil. Any failed
// sub-query fails the whole call and no partial result is returned.
func (c *Client) SumStatistics(ctx context.Context, e Endpoint, w Where, fields ...string) ([]*int64, error) {
	results := make([]*int64, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		g.Go(func() error {
			body, err := c.Query(gctx, e, w, Param{ParamOutStatistics, StatisticsQuery(field)})
			if err != nil {
				return fmt.Errorf("summing %s: %w", field, err)
			}
			v, ok, err := statisticValue(body)
			if err != nil {
				return fmt.Errorf("summing %s: %w", field, err)
			}
			if ok {
				results[i] = &v
			} else {
				c.log.Warn("statistic missing from response", "field", field)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAggregation, err)
	}
	return results, nil
}
