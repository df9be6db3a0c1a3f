package spatial

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/UnknownOlympus/perimeter/internal/geo"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/paulmach/orb"
	"googlemaps.github.io/maps"
)

// googleMaxRadiusMeters is the largest radius accepted by Places Nearby Search.
const googleMaxRadiusMeters = 50000

// GooglePlacesSource implements FeatureSource with the Google Places Nearby Search API.
type GooglePlacesSource struct {
	client  GooglePlacesClient // client is the Google Maps API client
	keyword string             // keyword narrowing results to buildings
	log     *slog.Logger       // log is the logger for logging operations
}

type GooglePlacesClient interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// NewGooglePlacesSource wraps a Places client.
func NewGooglePlacesSource(client GooglePlacesClient, log *slog.Logger) *GooglePlacesSource {
	return &GooglePlacesSource{client: client, keyword: "building", log: log}
}

// FeaturesAround runs a Nearby Search centred on center.
func (gs *GooglePlacesSource) FeaturesAround(
	ctx context.Context,
	center models.Coordinates,
	radiusMeters float64,
	limit int,
) ([]Feature, error) {
	gs.log.DebugContext(ctx, "Nearby search using Google Places",
		"center", center.String(), "radius", radiusMeters)

	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: center.Latitude(), Lng: center.Longitude()},
		Radius:   uint(math.Min(math.Ceil(radiusMeters), googleMaxRadiusMeters)),
		Keyword:  gs.keyword,
	}
	response, err := gs.client.NearbySearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby places: %w", err)
	}

	features := make([]Feature, 0, len(response.Results))
	for _, place := range response.Results {
		if len(features) == limit {
			break
		}
		features = append(features, placeToFeature(place))
	}

	return features, nil
}

// FeaturesInBounds has no native bounding-box search, so it searches the circle
// circumscribing bound. Callers re-verify distances anyway.
func (gs *GooglePlacesSource) FeaturesInBounds(ctx context.Context, bound orb.Bound, limit int) ([]Feature, error) {
	centerPoint := bound.Center()
	center, err := models.NewCoordinates(centerPoint.Lat(), centerPoint.Lon())
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box center: %w", err)
	}
	corner, err := models.NewCoordinates(bound.Max.Lat(), bound.Max.Lon())
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box corner: %w", err)
	}

	return gs.FeaturesAround(ctx, center, geo.HaversineDistance(center, corner), limit)
}

func placeToFeature(place maps.PlacesSearchResult) Feature {
	feature := Feature{
		Kind:       "place",
		ExternalID: place.PlaceID,
		Name:       place.Name,
		Address:    place.Vicinity,
		Tags: map[string]string{
			"types": strings.Join(place.Types, ","),
		},
	}
	if len(place.Types) > 0 {
		feature.Category = place.Types[0]
	}

	location := place.Geometry.Location
	if point, err := models.NewCoordinates(location.Lat, location.Lng); err == nil {
		feature.Point = &point
	}

	return feature
}
