package geo

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/geonotify/internal/config"
	"github.com/jwalitptl/geonotify/internal/model"
)

// Geocoder resolves a coordinate to a locality name.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, coord model.Coordinate) (string, error)
}

type geocoder struct {
	apiClient
	cache *gocache.Cache
}

func NewGeocoder(cfg config.GeoConfig) Geocoder {
	return &geocoder{
		apiClient: newAPIClient("geocoder", cfg.GeocoderURL, cfg),
		cache:     gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

type reverseGeocodeResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
}

// ReverseGeocode returns the locality for a coordinate. Responses are
// cached on the coordinate rounded to ~100 m so bursts of reports from
// the same spot cost one upstream call.
func (g *geocoder) ReverseGeocode(ctx context.Context, coord model.Coordinate) (string, error) {
	key := fmt.Sprintf("%.3f:%.3f", coord.Latitude, coord.Longitude)
	if city, found := g.cache.Get(key); found {
		return city.(string), nil
	}

	url := fmt.Sprintf("%s/reverse?lat=%f&lon=%f&format=json", g.baseURL, coord.Latitude, coord.Longitude)

	var resp reverseGeocodeResponse
	if err := g.getJSON(ctx, url, &resp); err != nil {
		return "", fmt.Errorf("reverse geocode failed: %w", err)
	}

	city := resp.Address.City
	if city == "" {
		city = resp.Address.Town
	}
	if city == "" {
		city = resp.Address.Village
	}
	if city == "" {
		return "", fmt.Errorf("no locality in geocoder response")
	}

	g.cache.Set(key, city, gocache.DefaultExpiration)
	return city, nil
}
