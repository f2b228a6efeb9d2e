package arcgis

import (
	"fmt"

	"github.com/goccy/go-json"

	"inacovid/internal/domain"
)

// ParseFeatureCollection decodes body and returns the attributes of every
// feature in order. A missing or null features array yields an empty
// slice; features without attributes are skipped.
func ParseFeatureCollection(body string) ([]domain.Attributes, error) {
	var fc domain.FeatureCollection
	if err := json.Unmarshal([]byte(body), &fc); err != nil {
		return nil, fmt.Errorf("%w: decoding feature collection: %w", domain.ErrMalformedResponse, err)
	}

	attrs := make([]domain.Attributes, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Attributes == nil {
			continue
		}
		attrs = append(attrs, *f.Attributes)
	}
	return attrs, nil
}

// statisticValue extracts features[0].attributes.value from a statistics
// response. ok is false when the path is absent or not an integer; only an
// undecodable body is an error.
func statisticValue(body string) (value int64, ok bool, err error) {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return 0, false, fmt.Errorf("%w: decoding statistics: %w", domain.ErrMalformedResponse, err)
	}

	root, _ := v.(map[string]any)
	features, _ := root["features"].([]any)
	if len(features) == 0 {
		return 0, false, nil
	}
	first, _ := features[0].(map[string]any)
	attrs, _ := first["attributes"].(map[string]any)
	n, isNum := attrs["value"].(float64)
	if !isNum || n != float64(int64(n)) {
		return 0, false, nil
	}
	return int64(n), true, nil
}
