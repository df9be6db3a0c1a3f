package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/perimeter/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// ReverseGeocode returns the most specific address Google Maps knows for coordinates.
func (gp *GoogleProvider) ReverseGeocode(ctx context.Context, coordinates models.Coordinates) (*Place, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "coordinates", coordinates.String())

	req := maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: coordinates.Latitude(), Lng: coordinates.Longitude()},
	}
	results, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to reverse geocode coordinates: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}
	result := results[0]

	place := &Place{
		DisplayName: result.FormattedAddress,
		Address:     make(map[string]string, len(result.AddressComponents)),
	}
	if len(result.Types) > 0 {
		place.Type = result.Types[0]
	}
	for _, component := range result.AddressComponents {
		if len(component.Types) > 0 {
			place.Address[component.Types[0]] = component.LongName
		}
	}

	return place, nil
}
