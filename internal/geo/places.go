package geo

import (
	"context"
	"fmt"

	"github.com/jwalitptl/geonotify/internal/config"
	"github.com/jwalitptl/geonotify/internal/model"
)

// Place is one point of interest returned by the geo index.
type Place struct {
	ID         string
	Name       string
	Category   string
	Coordinate model.Coordinate
	Rating     float64
}

// PlacesIndex queries a live geo index for points of interest near a
// coordinate.
type PlacesIndex interface {
	Search(ctx context.Context, coord model.Coordinate, radiusMeters int) ([]Place, error)
}

type placesIndex struct {
	apiClient
}

func NewPlacesIndex(cfg config.GeoConfig) PlacesIndex {
	return &placesIndex{
		apiClient: newAPIClient("places", cfg.PlacesURL, cfg),
	}
}

type placesResponse struct {
	Places []struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Category  string  `json:"category"`
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lon"`
		Rating    float64 `json:"rating"`
	} `json:"places"`
}

// Search returns named tourism/historic/cultural places within the
// radius. Unnamed entries are dropped.
func (p *placesIndex) Search(ctx context.Context, coord model.Coordinate, radiusMeters int) ([]Place, error) {
	url := fmt.Sprintf("%s/search?lat=%f&lon=%f&radius=%d&categories=tourism,historic,cultural&limit=20",
		p.baseURL, coord.Latitude, coord.Longitude, radiusMeters)

	var resp placesResponse
	if err := p.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("places search failed: %w", err)
	}

	places := make([]Place, 0, len(resp.Places))
	for _, raw := range resp.Places {
		if raw.Name == "" {
			continue
		}
		places = append(places, Place{
			ID:       raw.ID,
			Name:     raw.Name,
			Category: raw.Category,
			Coordinate: model.Coordinate{
				Latitude:  raw.Latitude,
				Longitude: raw.Longitude,
			},
			Rating: raw.Rating,
		})
	}
	return places, nil
}
