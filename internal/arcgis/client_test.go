package arcgis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inacovid/internal/domain"
)

// gatedFetcher answers statistics queries and lets them complete only in
// the given release order, independent of submission order.
type gatedFetcher struct {
	bodies  map[string]string // field -> response body
	failing map[string]error
	release []string

	mu        sync.Mutex
	gates     map[string]chan struct{}
	completed []string
	urls      []string
}

func newGatedFetcher(release []string) *gatedFetcher {
	f := &gatedFetcher{
		bodies:  make(map[string]string),
		failing: make(map[string]error),
		release: release,
		gates:   make(map[string]chan struct{}),
	}
	for _, field := range release {
		f.gates[field] = make(chan struct{})
	}
	close(f.gates[release[0]])
	return f
}

func (f *gatedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	var stats []outStatistic
	if err := json.Unmarshal([]byte(u.Query().Get(ParamOutStatistics)), &stats); err != nil || len(stats) != 1 {
		return "", fmt.Errorf("unexpected outStatistics in %s", rawURL)
	}
	field := stats[0].OnStatisticField

	select {
	case <-f.gates[field]:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	f.mu.Lock()
	f.completed = append(f.completed, field)
	f.urls = append(f.urls, rawURL)
	if n := len(f.completed); n < len(f.release) {
		close(f.gates[f.release[n]])
	}
	f.mu.Unlock()

	if err := f.failing[field]; err != nil {
		return "", err
	}
	return f.bodies[field], nil
}

func statBody(v int64) string {
	return fmt.Sprintf(`{"features":[{"attributes":{"value":%d}}]}`, v)
}

func TestSumStatisticsKeepsSubmissionOrder(t *testing.T) {
	fields := []string{"A", "B", "C", "D"}
	f := newGatedFetcher([]string{"D", "B", "C", "A"})
	f.bodies = map[string]string{"A": statBody(1), "B": statBody(2), "C": statBody(3), "D": statBody(4)}

	c := NewClient(f, Endpoints{Progress: "https://example.com/query"}, calAt(afternoon), nil)
	got, err := c.SumStatistics(context.Background(), EndpointProgress, WhereCurrentDate{}, fields...)
	require.NoError(t, err)

	assert.Equal(t, []string{"D", "B", "C", "A"}, f.completed, "fetches should complete out of order")
	require.Len(t, got, 4)
	for i, want := range []int64{1, 2, 3, 4} {
		require.NotNil(t, got[i], "result %d", i)
		assert.Equal(t, want, *got[i], "result %d belongs to field %s", i, fields[i])
	}

	for _, u := range f.urls {
		assert.Contains(t, u, "where=%28Tanggal%3E%3Dtimestamp+%272020-05-03+17%3A00%3A00%27")
	}
}

func TestSumStatisticsMissingValueIsUnset(t *testing.T) {
	f := newGatedFetcher([]string{"A", "B"})
	f.bodies = map[string]string{"A": `{"features":[]}`, "B": statBody(7)}

	c := NewClient(f, Endpoints{}, calAt(afternoon), nil)
	got, err := c.SumStatistics(context.Background(), EndpointProgress, WhereAll{}, "A", "B")
	require.NoError(t, err)
	assert.Nil(t, got[0])
	require.NotNil(t, got[1])
	assert.Equal(t, int64(7), *got[1])
}

func TestSumStatisticsFailureAbortsAll(t *testing.T) {
	f := newGatedFetcher([]string{"A", "B", "C", "D"})
	f.bodies = map[string]string{"A": statBody(1), "C": statBody(3), "D": statBody(4)}
	f.failing["B"] = fmt.Errorf("%w: boom", domain.ErrNetwork)

	c := NewClient(f, Endpoints{}, calAt(afternoon), nil)
	got, err := c.SumStatistics(context.Background(), EndpointProgress, WhereAll{}, "A", "B", "C", "D")
	assert.Nil(t, got, "no partial result on failure")
	assert.ErrorIs(t, err, domain.ErrAggregation)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestSumStatisticsMalformedBody(t *testing.T) {
	f := newGatedFetcher([]string{"A"})
	f.bodies = map[string]string{"A": "<html>"}

	c := NewClient(f, Endpoints{}, calAt(afternoon), nil)
	_, err := c.SumStatistics(context.Background(), EndpointProgress, WhereAll{}, "A")
	assert.ErrorIs(t, err, domain.ErrAggregation)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

type staticFetcher struct {
	body string
	urls []string
}

func (s *staticFetcher) Fetch(_ context.Context, u string) (string, error) {
	s.urls = append(s.urls, u)
	return s.body, nil
}

func TestClientFeatures(t *testing.T) {
	f := &staticFetcher{body: twoDailyFeatures}
	c := NewClient(f, Endpoints{Province: "https://example.com/prov"}, calAt(afternoon), nil)

	attrs, err := c.Features(context.Background(), EndpointProvince, WhereAll{}, ListingParams("Kasus_Posi desc")...)
	require.NoError(t, err)
	assert.Len(t, attrs, 2)
	require.Len(t, f.urls, 1)
	assert.Contains(t, f.urls[0], "https://example.com/prov?f=json&where=1%3D1")
	assert.Contains(t, f.urls[0], "orderByFields=Kasus_Posi+desc")
}

func TestClientInvalidEndpoint(t *testing.T) {
	f := &staticFetcher{}
	c := NewClient(f, Endpoints{Province: "relative/path"}, calAt(afternoon), nil)

	_, err := c.Features(context.Background(), EndpointProvince, WhereAll{})
	assert.True(t, errors.Is(err, domain.ErrInvalidEndpoint), "err = %v", err)
	assert.Empty(t, f.urls, "no request should be sent")
}
