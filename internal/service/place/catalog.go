package place

import (
	"github.com/jwalitptl/geonotify/internal/model"
)

// CatalogEntry is a curated attraction used when the live geo index has
// nothing for a coordinate inside a known city.
type CatalogEntry struct {
	Name         string
	Address      string
	Rating       float64
	OpeningHours string
	Coordinate   model.Coordinate
}

type boundingBox struct {
	minLat, maxLat float64
	minLon, maxLon float64
}

func (b boundingBox) contains(c model.Coordinate) bool {
	return c.Latitude >= b.minLat && c.Latitude <= b.maxLat &&
		c.Longitude >= b.minLon && c.Longitude <= b.maxLon
}

type cityCatalog struct {
	city    string
	box     boundingBox
	entries []CatalogEntry
}

// Catalog holds hard-coded bounding boxes for known cities with a
// curated attraction list per box.
type Catalog struct {
	cities []cityCatalog
}

// Lookup returns the curated list for the first box containing the
// coordinate, or nil when the coordinate falls outside every box.
func (c *Catalog) Lookup(coord model.Coordinate) []CatalogEntry {
	for _, city := range c.cities {
		if city.box.contains(coord) {
			return city.entries
		}
	}
	return nil
}

// NewCatalog builds the default curated catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		cities: []cityCatalog{
			{
				city: "Bogotá",
				box:  boundingBox{minLat: 4.45, maxLat: 4.85, minLon: -74.25, maxLon: -73.99},
				entries: []CatalogEntry{
					{
						Name:         "Monserrate",
						Address:      "Cerro de Monserrate, Bogotá",
						Rating:       4.7,
						OpeningHours: "Mon-Sun 05:30-23:00",
						Coordinate:   model.Coordinate{Latitude: 4.6058, Longitude: -74.0556},
					},
					{
						Name:         "Museo del Oro",
						Address:      "Cra. 6 #15-88, Bogotá",
						Rating:       4.8,
						OpeningHours: "Tue-Sun 09:00-18:00",
						Coordinate:   model.Coordinate{Latitude: 4.6019, Longitude: -74.0722},
					},
					{
						Name:         "Plaza de Bolívar",
						Address:      "Cra. 7 #11-10, Bogotá",
						Rating:       4.6,
						Coordinate:   model.Coordinate{Latitude: 4.5981, Longitude: -74.0760},
					},
				},
			},
			{
				city: "Medellín",
				box:  boundingBox{minLat: 6.15, maxLat: 6.35, minLon: -75.65, maxLon: -75.50},
				entries: []CatalogEntry{
					{
						Name:         "Parque Explora",
						Address:      "Cra. 52 #73-75, Medellín",
						Rating:       4.7,
						OpeningHours: "Tue-Fri 08:30-17:30",
						Coordinate:   model.Coordinate{Latitude: 6.2704, Longitude: -75.5658},
					},
					{
						Name:         "Comuna 13 Graffiti Tour",
						Address:      "Comuna 13, Medellín",
						Rating:       4.8,
						Coordinate:   model.Coordinate{Latitude: 6.2470, Longitude: -75.6194},
					},
					{
						Name:         "Jardín Botánico",
						Address:      "Cl. 73 #51D-14, Medellín",
						Rating:       4.6,
						OpeningHours: "Mon-Sun 09:00-16:30",
						Coordinate:   model.Coordinate{Latitude: 6.2705, Longitude: -75.5636},
					},
				},
			},
			{
				city: "Cartagena",
				box:  boundingBox{minLat: 10.35, maxLat: 10.48, minLon: -75.56, maxLon: -75.45},
				entries: []CatalogEntry{
					{
						Name:         "Castillo San Felipe de Barajas",
						Address:      "Cra. 17, Cartagena",
						Rating:       4.7,
						OpeningHours: "Mon-Sun 08:00-18:00",
						Coordinate:   model.Coordinate{Latitude: 10.4225, Longitude: -75.5395},
					},
					{
						Name:         "Ciudad Amurallada",
						Address:      "Centro Histórico, Cartagena",
						Rating:       4.9,
						Coordinate:   model.Coordinate{Latitude: 10.4236, Longitude: -75.5503},
					},
				},
			},
		},
	}
}
