package domain

import (
	"context"
	"log/slog"
)

// PlaceLookup is what a reverse-geocoding provider returns for a position.
type PlaceLookup struct {
	PlaceName string
	Address   string
	Relevance float64
}

// Geocoder names the place at a position.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (PlaceLookup, error)
}

// EnrichWithPlace attaches a place name to a record by reverse geocoding its
// position. A nil geocoder, a failed lookup or an empty result leaves the
// record unchanged.
func EnrichWithPlace(ctx context.Context, rec Record, geocoder Geocoder, logger *slog.Logger) Record {
	if geocoder == nil {
		return rec
	}

	result, err := geocoder.ReverseGeocode(ctx, rec.Position.Lat, rec.Position.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"record_id", rec.ID,
			"lat", rec.Position.Lat,
			"lon", rec.Position.Lon,
			"error", err,
		)
		return rec
	}

	switch {
	case result.PlaceName != "":
		rec.PlaceName = result.PlaceName
	case result.Address != "":
		rec.PlaceName = result.Address
	}
	return rec
}
