package location

import (
	"context"

	"github.com/jwalitptl/geonotify/internal/model"
)

// FallbackCity is the sentinel label used when the city cannot be
// detected. City detection is best-effort and never aborts the
// pipeline.
const FallbackCity = "current location"

// resolveCity returns the city label for a report. A caller-supplied
// name is authoritative and returned verbatim, without any network
// call and without re-validation against the coordinates. Otherwise one
// reverse-geocoding lookup runs; any failure degrades to the sentinel.
func (s *service) resolveCity(ctx context.Context, coord model.Coordinate, suppliedName string) (city string, supplied bool) {
	if suppliedName != "" {
		return suppliedName, true
	}

	city, err := s.geocoder.ReverseGeocode(ctx, coord)
	if err != nil {
		s.metrics.GeoLookupErrors.WithLabelValues("geocoder").Inc()
		s.logger.Warn(err, "city detection failed, using fallback label")
		return FallbackCity, false
	}
	return city, false
}
