package arcgis

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"inacovid/internal/domain"
)

// Fetcher retrieves the body of a GET request.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// browserHeaders mimics the dashboard's browser client; upstream rejects
// requests that do not look like one.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; OpenSUSE; Linux x86_64; rv:74.0) Gecko/20100101 Firefox/74.0",
	"Accept":          "application/json",
	"Accept-Language": "en-US,en;q=0.5",
	"Origin":          "https://inacovid19.maps.arcgis.com",
	"TE":              "Trailers",
}

// HTTPFetcher is a Fetcher over a shared resty client. It is safe for
// concurrent use.
type HTTPFetcher struct {
	client *resty.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wraps client, or a fresh resty client when nil. No retry
// or timeout is configured beyond the transport defaults.
func NewHTTPFetcher(client *resty.Client) *HTTPFetcher {
	if client == nil {
		client = resty.New()
	}
	return &HTTPFetcher{client: client}
}

// Fetch sends a GET with the browser header set and returns the body text.
// Transport failures and non-2xx statuses are reported as domain.ErrNetwork.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(browserHeaders).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", domain.ErrNetwork, url, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: GET %s: status %s", domain.ErrNetwork, url, resp.Status())
	}
	return resp.String(), nil
}
