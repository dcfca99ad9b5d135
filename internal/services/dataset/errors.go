package dataset

import "errors"

var (
	// ErrProviderUnavailable marks upstream fetch failures and timeouts.
	ErrProviderUnavailable = errors.New("upstream provider unavailable")

	// ErrMalformedUpstream marks provider responses missing expected fields.
	// Fatal to the current build attempt; the previous snapshot stays live.
	ErrMalformedUpstream = errors.New("malformed upstream data")

	// ErrInvalidSeries marks input series that violate the deriver contract,
	// such as a bar with a zero open price.
	ErrInvalidSeries = errors.New("invalid input series")
)

// ErrorKind maps a build error to a low-cardinality label for metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, ErrMalformedUpstream):
		return "malformed_upstream"
	case errors.Is(err, ErrInvalidSeries):
		return "invalid_series"
	default:
		return "internal"
	}
}
