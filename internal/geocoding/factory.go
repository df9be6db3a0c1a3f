package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType names a reverse geocoding backend.
type ProviderType string

const (
	// ProviderTypeNone disables reverse geocoding.
	ProviderTypeNone ProviderType = "none"
	// ProviderTypeGoogle is the Google Maps Geocoding API.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim is the OpenStreetMap Nominatim API.
	ProviderTypeNominatim ProviderType = "nominatim"
)

var (
	// ErrUnsupportedProvider is returned for an unknown ProviderType.
	ErrUnsupportedProvider = errors.New("unsupported geocoding provider")
	// ErrMissingAPIKey is returned when the Google backend has no key.
	ErrMissingAPIKey = errors.New("google geocoding requires an API key")
)

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType
	APIKey    string        // google only
	BaseURL   string        // nominatim only, empty means the public endpoint
	UserAgent string        // nominatim only
	Timeout   time.Duration // nominatim only
	RateLimit int           // requests per second, 0 disables limiting
	Logger    *slog.Logger
}

type constructor func(ProviderConfig) (Provider, error)

var constructors = map[ProviderType]constructor{
	ProviderTypeGoogle:    newGoogleProvider,
	ProviderTypeNominatim: newNominatimProvider,
}

// NewProvider builds the reverse geocoder selected by config.Type.
// ProviderTypeNone and an empty type yield a nil Provider and no error;
// callers treat that as "geocoding disabled".
func NewProvider(config ProviderConfig) (Provider, error) {
	if config.Type == ProviderTypeNone || config.Type == "" {
		return nil, nil
	}

	build, ok := constructors[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, config.Type)
	}
	return build(config)
}

func newNominatimProvider(config ProviderConfig) (Provider, error) {
	return NewNominatimProvider(config.BaseURL, config.UserAgent, config.Timeout, config.RateLimit, config.Logger), nil
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
	if config.RateLimit > 0 {
		opts = append(opts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}
	return NewGoogleProvider(client, config.Logger), nil
}
