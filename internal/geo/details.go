package geo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jwalitptl/geonotify/internal/config"
	"github.com/jwalitptl/geonotify/internal/model"
)

// DetailsLookup fetches address, opening hours, rating and contact data
// for one place.
type DetailsLookup interface {
	Details(ctx context.Context, placeID, name string) (model.PlaceDetails, error)
}

type detailsLookup struct {
	apiClient
}

func NewDetailsLookup(cfg config.GeoConfig) DetailsLookup {
	return &detailsLookup{
		apiClient: newAPIClient("place-details", cfg.DetailsURL, cfg),
	}
}

type detailsResponse struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Rating       float64 `json:"rating"`
	OpeningHours string  `json:"opening_hours"`
	Phone        string  `json:"phone"`
	MapURL       string  `json:"map_url"`
}

func (d *detailsLookup) Details(ctx context.Context, placeID, name string) (model.PlaceDetails, error) {
	u := fmt.Sprintf("%s/details?id=%s&name=%s",
		d.baseURL, url.QueryEscape(placeID), url.QueryEscape(name))

	var resp detailsResponse
	if err := d.getJSON(ctx, u, &resp); err != nil {
		return model.PlaceDetails{}, fmt.Errorf("details lookup failed: %w", err)
	}

	details := model.PlaceDetails{
		Name:         resp.Name,
		Address:      resp.Address,
		Rating:       resp.Rating,
		OpeningHours: resp.OpeningHours,
		Phone:        resp.Phone,
		MapURL:       resp.MapURL,
	}
	if details.Name == "" {
		details.Name = name
	}
	return details, nil
}
