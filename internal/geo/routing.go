package geo

import (
	"context"
	"fmt"

	"github.com/jwalitptl/geonotify/internal/config"
	"github.com/jwalitptl/geonotify/internal/model"
)

// RouteLeg is a measured travel leg between two coordinates.
type RouteLeg struct {
	DurationSeconds float64
	DistanceMeters  float64
}

// Router computes travel time between two coordinates via an external
// routing service.
type Router interface {
	Route(ctx context.Context, from, to model.Coordinate) (RouteLeg, error)
}

type router struct {
	apiClient
}

func NewRouter(cfg config.GeoConfig) Router {
	return &router{
		apiClient: newAPIClient("routing", cfg.RoutingURL, cfg),
	}
}

type routeResponse struct {
	Routes []struct {
		DurationSeconds float64 `json:"duration"`
		DistanceMeters  float64 `json:"distance"`
	} `json:"routes"`
}

func (r *router) Route(ctx context.Context, from, to model.Coordinate) (RouteLeg, error) {
	url := fmt.Sprintf("%s/route?from_lat=%f&from_lon=%f&to_lat=%f&to_lon=%f",
		r.baseURL, from.Latitude, from.Longitude, to.Latitude, to.Longitude)

	var resp routeResponse
	if err := r.getJSON(ctx, url, &resp); err != nil {
		return RouteLeg{}, fmt.Errorf("routing failed: %w", err)
	}
	if len(resp.Routes) == 0 {
		return RouteLeg{}, fmt.Errorf("no route in response")
	}

	return RouteLeg{
		DurationSeconds: resp.Routes[0].DurationSeconds,
		DistanceMeters:  resp.Routes[0].DistanceMeters,
	}, nil
}
