package place

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/jwalitptl/geonotify/internal/geo"
	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/pkg/logger"
	"github.com/jwalitptl/geonotify/pkg/metrics"
)

// Recommendation bundles everything the notification builder needs for
// one recommended place.
type Recommendation struct {
	Place   model.ResolvedPlace
	Travel  model.TravelEstimate
	Details model.PlaceDetails
}

// Service resolves a coordinate to a recommended place. It is total:
// every call returns a usable recommendation, degraded data is signaled
// via SourceTier and TravelEstimate.Measured instead of errors.
type Service interface {
	Resolve(ctx context.Context, origin model.Coordinate) Recommendation
}

type service struct {
	places  geo.PlacesIndex
	router  geo.Router
	details geo.DetailsLookup
	catalog *Catalog
	radius  int
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(places geo.PlacesIndex, router geo.Router, details geo.DetailsLookup, catalog *Catalog, radiusMeters int, logger *logger.Logger, metrics *metrics.Metrics) Service {
	if radiusMeters <= 0 {
		radiusMeters = 5000
	}
	return &service{
		places:  places,
		router:  router,
		details: details,
		catalog: catalog,
		radius:  radiusMeters,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *service) Resolve(ctx context.Context, origin model.Coordinate) Recommendation {
	if rec, ok := s.resolveLive(ctx, origin); ok {
		s.metrics.PlaceTierUsage.WithLabelValues(string(model.TierLive)).Inc()
		return rec
	}
	if rec, ok := s.resolveCatalog(ctx, origin); ok {
		s.metrics.PlaceTierUsage.WithLabelValues(string(model.TierCatalog)).Inc()
		return rec
	}
	s.metrics.PlaceTierUsage.WithLabelValues(string(model.TierSynthetic)).Inc()
	return s.resolveSynthetic(origin)
}

// candidate pairs a place with its routed leg, if routing succeeded.
type candidate struct {
	id         string
	name       string
	rating     float64
	hours      string
	coordinate model.Coordinate
	leg        *geo.RouteLeg
}

func (s *service) resolveLive(ctx context.Context, origin model.Coordinate) (Recommendation, bool) {
	results, err := s.places.Search(ctx, origin, s.radius)
	if err != nil {
		s.metrics.GeoLookupErrors.WithLabelValues("places").Inc()
		s.logger.Warn(err, "live place search failed, falling back")
		return Recommendation{}, false
	}
	if len(results) == 0 {
		return Recommendation{}, false
	}

	candidates := make([]candidate, 0, len(results))
	for _, p := range results {
		candidates = append(candidates, candidate{
			id:         p.ID,
			name:       p.Name,
			rating:     p.Rating,
			coordinate: p.Coordinate,
		})
	}
	s.routeCandidates(ctx, origin, candidates)

	winner, travel := s.selectWinner(origin, candidates)

	details := s.lookupDetails(ctx, winner)
	place := model.ResolvedPlace{
		Name:         winner.name,
		Vicinity:     details.Address,
		Rating:       maxRating(winner.rating, details.Rating),
		Coordinate:   winner.coordinate,
		OpeningHours: details.OpeningHours,
		SourceTier:   model.TierLive,
	}
	return Recommendation{Place: place, Travel: travel, Details: details}, true
}

func (s *service) resolveCatalog(ctx context.Context, origin model.Coordinate) (Recommendation, bool) {
	entries := s.catalog.Lookup(origin)
	if len(entries) == 0 {
		return Recommendation{}, false
	}

	candidates := make([]candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, candidate{
			name:       e.Name,
			rating:     e.Rating,
			hours:      e.OpeningHours,
			coordinate: e.Coordinate,
		})
	}
	s.routeCandidates(ctx, origin, candidates)

	winner, travel := s.selectWinner(origin, candidates)

	// Curated entries carry their own details, no second lookup needed.
	var details model.PlaceDetails
	for _, e := range entries {
		if e.Name == winner.name {
			details = model.PlaceDetails{
				Name:         e.Name,
				Address:      e.Address,
				Rating:       e.Rating,
				OpeningHours: e.OpeningHours,
			}
			break
		}
	}

	place := model.ResolvedPlace{
		Name:         winner.name,
		Vicinity:     details.Address,
		Rating:       winner.rating,
		Coordinate:   winner.coordinate,
		OpeningHours: winner.hours,
		SourceTier:   model.TierCatalog,
	}
	return Recommendation{Place: place, Travel: travel, Details: details}, true
}

// resolveSynthetic always succeeds: a generic attraction jittered near
// the input, explicitly marked as unmeasured.
func (s *service) resolveSynthetic(origin model.Coordinate) Recommendation {
	jittered := model.Coordinate{
		Latitude:  origin.Latitude + (rand.Float64()-0.5)*0.01,
		Longitude: origin.Longitude + (rand.Float64()-0.5)*0.01,
	}

	place := model.ResolvedPlace{
		Name:       "Local attraction",
		Vicinity:   "near your current position",
		Coordinate: jittered,
		SourceTier: model.TierSynthetic,
	}
	details := model.PlaceDetails{
		Name:          place.Name,
		Address:       place.Vicinity,
		LowConfidence: true,
	}
	return Recommendation{
		Place:   place,
		Travel:  s.estimatedTravel(origin, jittered),
		Details: details,
	}
}

// routeCandidates fills in route legs where the routing service
// answers. A failed leg excludes the candidate from the distance
// comparison but not from the result set.
func (s *service) routeCandidates(ctx context.Context, origin model.Coordinate, candidates []candidate) {
	for i := range candidates {
		leg, err := s.router.Route(ctx, origin, candidates[i].coordinate)
		if err != nil {
			s.metrics.GeoLookupErrors.WithLabelValues("routing").Inc()
			s.logger.Warn(err, "travel time lookup failed", "place", candidates[i].name)
			continue
		}
		candidates[i].leg = &leg
	}
}

// selectWinner picks the candidate with the shortest routed duration.
// When no candidate routed, the best-rated one wins with an unmeasured
// estimate; a tier with results always outranks the tiers below it.
func (s *service) selectWinner(origin model.Coordinate, candidates []candidate) (candidate, model.TravelEstimate) {
	best := -1
	for i, c := range candidates {
		if c.leg == nil {
			continue
		}
		if best == -1 || c.leg.DurationSeconds < candidates[best].leg.DurationSeconds {
			best = i
		}
	}
	if best >= 0 {
		return candidates[best], measuredTravel(*candidates[best].leg)
	}

	best = 0
	for i, c := range candidates {
		if c.rating > candidates[best].rating {
			best = i
		}
	}
	return candidates[best], s.estimatedTravel(origin, candidates[best].coordinate)
}

func (s *service) lookupDetails(ctx context.Context, winner candidate) model.PlaceDetails {
	details, err := s.details.Details(ctx, winner.id, winner.name)
	if err != nil {
		s.metrics.GeoLookupErrors.WithLabelValues("place-details").Inc()
		s.logger.Warn(err, "details lookup failed, substituting synthetic record", "place", winner.name)
		return model.PlaceDetails{
			Name:          winner.name,
			Address:       "address unavailable",
			Rating:        winner.rating,
			LowConfidence: true,
		}
	}
	return details
}

func measuredTravel(leg geo.RouteLeg) model.TravelEstimate {
	minutes := int(math.Round(leg.DurationSeconds / 60))
	if minutes < 1 {
		minutes = 1
	}
	return model.TravelEstimate{
		Duration: fmt.Sprintf("%d min", minutes),
		Distance: fmt.Sprintf("%.1f km", leg.DistanceMeters/1000),
		Measured: true,
	}
}

// estimatedTravel produces a plausible bounded guess when routing is
// unavailable. Distance comes from straight-line geometry, duration is
// randomized within 5-25 minutes.
func (s *service) estimatedTravel(origin, dest model.Coordinate) model.TravelEstimate {
	minutes := 5 + rand.Intn(21)
	return model.TravelEstimate{
		Duration: fmt.Sprintf("%d min", minutes),
		Distance: fmt.Sprintf("%.1f km", origin.DistanceKm(dest)),
		Measured: false,
	}
}

func maxRating(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
