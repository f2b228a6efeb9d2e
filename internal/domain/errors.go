package domain

import "errors"

// Error kinds surfaced at operation boundaries. Callers wrap one of these
// together with the underlying cause and match with errors.Is.
var (
	// ErrConfig marks a bad or missing configuration; fatal at startup.
	ErrConfig = errors.New("config error")

	// ErrInvalidEndpoint marks a base endpoint that is not an absolute URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrNetwork marks a transport failure or non-success HTTP status.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse marks a body that is not the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrAggregation marks a failed sub-query of a statistics fan-out.
	ErrAggregation = errors.New("aggregation failure")

	// ErrPersistence marks a failed store write.
	ErrPersistence = errors.New("persistence error")

	// ErrSnapshot marks a failed snapshot write.
	ErrSnapshot = errors.New("snapshot error")
)
