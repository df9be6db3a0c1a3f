package spatial

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/metrics"
	"googlemaps.github.io/maps"
)

// ProviderType represents the upstream spatial-feature service.
type ProviderType string

const (
	// ProviderTypeOverpass represents the OpenStreetMap Overpass API.
	ProviderTypeOverpass ProviderType = "overpass"
	// ProviderTypeGoogle represents Google Places Nearby Search.
	ProviderTypeGoogle ProviderType = "google"
)

// ProviderConfig holds configuration for creating a spatial provider.
type ProviderConfig struct {
	Type      ProviderType     // Type of upstream service
	APIKey    string           // API key (used by Google)
	BaseURL   string           // Endpoint override (used by Overpass)
	UserAgent string           // User-Agent override (used by Overpass)
	Timeout   time.Duration    // Per-request timeout
	RateLimit int              // Requests per second, 0 disables limiting
	Logger    *slog.Logger     // Logger for the provider
	Metrics   *metrics.Metrics // Metrics for upstream requests
}

// NewProvider creates the fallback provider over the configured upstream source.
func NewProvider(config ProviderConfig) (Provider, error) {
	source, err := NewSource(config)
	if err != nil {
		return nil, err
	}
	return NewFallbackProvider(source, config.Timeout, config.Logger, config.Metrics), nil
}

// NewSource creates the FeatureSource for config.Type.
func NewSource(config ProviderConfig) (FeatureSource, error) {
	switch config.Type {
	case ProviderTypeOverpass:
		return NewOverpassSource(config.BaseURL, config.UserAgent, config.Timeout, config.RateLimit, config.Logger), nil
	case ProviderTypeGoogle:
		return newGoogleSource(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newGoogleSource(config ProviderConfig) (FeatureSource, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGooglePlacesSource(client, config.Logger), nil
}
