package model

// SourceTier records which fallback tier produced a resolved place.
// Downstream consumers use it to judge confidence in the travel estimate.
type SourceTier string

const (
	TierLive      SourceTier = "live"
	TierCatalog   SourceTier = "catalog"
	TierSynthetic SourceTier = "synthetic"
)

// ResolvedPlace is one recommended point of interest. Created fresh per
// request and embedded into notification metadata, never persisted on
// its own.
type ResolvedPlace struct {
	Name         string     `json:"name"`
	Vicinity     string     `json:"vicinity"`
	Rating       float64    `json:"rating"`
	Coordinate   Coordinate `json:"coordinate"`
	OpeningHours string     `json:"opening_hours,omitempty"`
	SourceTier   SourceTier `json:"source_tier"`
}

// TravelEstimate describes how far the recommended place is from the
// reported position. Measured is false for estimated (not routed)
// values; renderers must not claim precision for unmeasured estimates.
type TravelEstimate struct {
	Duration string `json:"duration"`
	Distance string `json:"distance"`
	Measured bool   `json:"measured"`
}

// PlaceDetails is the detail record attached to a notification. When the
// details lookup fails a low-confidence synthetic record is substituted.
type PlaceDetails struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Rating        float64 `json:"rating,omitempty"`
	OpeningHours  string  `json:"opening_hours,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	MapURL        string  `json:"map_url,omitempty"`
	LowConfidence bool    `json:"low_confidence,omitempty"`
}
