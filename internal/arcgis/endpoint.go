// Package arcgis queries the ArcGIS feature servers that publish the
// Indonesian COVID-19 figures: query-string construction, the HTTP fetch,
// feature-collection decoding and ordered statistics fan-out.
package arcgis

import "fmt"

// Endpoint selects one of the upstream feature-server layers.
type Endpoint int

const (
	// EndpointProvince is the per-province breakdown layer.
	EndpointProvince Endpoint = iota
	// EndpointProgress is the national daily time-series layer.
	EndpointProgress
)

const (
	defaultProvinceURL = "https://services5.arcgis.com/VS6HdKS0VfIhv8Ct/arcgis/rest/services/COVID19_Indonesia_per_Provinsi/FeatureServer/0/query"
	defaultProgressURL = "https://services5.arcgis.com/VS6HdKS0VfIhv8Ct/arcgis/rest/services/Statistik_Perkembangan_COVID19_Indonesia/FeatureServer/0/query"
)

func (e Endpoint) String() string {
	switch e {
	case EndpointProvince:
		return "province"
	case EndpointProgress:
		return "progress"
	default:
		return fmt.Sprintf("endpoint(%d)", int(e))
	}
}

// Endpoints maps each Endpoint to its base query URL. Empty entries fall
// back to the public ArcGIS services.
type Endpoints struct {
	Province string
	Progress string
}

// URL returns the base query URL for e.
func (eps Endpoints) URL(e Endpoint) string {
	switch e {
	case EndpointProvince:
		if eps.Province != "" {
			return eps.Province
		}
		return defaultProvinceURL
	case EndpointProgress:
		if eps.Progress != "" {
			return eps.Progress
		}
		return defaultProgressURL
	default:
		return ""
	}
}
