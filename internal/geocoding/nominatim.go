package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is the public Nominatim reverse geocoding endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/reverse"

// NominatimUserAgent must include valid contact info per Nominatim usage policy:
// https://operations.osmfoundation.org/policies/nominatim/
const NominatimUserAgent = "Perimeter-Geofence-Service/1.0 (https://github.com/UnknownOlympus/perimeter)"

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client    HTTPClient    // HTTP client for making requests
	baseURL   string        // Reverse endpoint of the Nominatim API
	userAgent string        // required by Nominatim usage policy
	log       *slog.Logger  // Logger for logging operations
	limiter   *rate.Limiter // Rate limiter
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents the JSON response from the Nominatim reverse API.
type nominatimResponse struct {
	Error       string            `json:"error"`
	DisplayName string            `json:"display_name"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Address     map[string]string `json:"address"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
)

// NewNominatimProvider creates a new Nominatim reverse geocoding provider.
// Empty baseURL and userAgent select the public endpoint and the service User-Agent.
func NewNominatimProvider(
	baseURL, userAgent string,
	timeout time.Duration,
	rateLimit int,
	log *slog.Logger,
) *NominatimProvider {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}
	if userAgent == "" {
		userAgent = NominatimUserAgent
	}
	if rateLimit <= 0 {
		rateLimit = 1
	}

	return &NominatimProvider{
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: userAgent,
		log:       log,
		limiter:   rate.NewLimiter(rate.Limit(rateLimit), 1),
	}
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   NominatimBaseURL,
		userAgent: NominatimUserAgent,
		log:       log,
		limiter:   limiter,
	}
}

// ReverseGeocode looks up the building-level place at coordinates.
func (np *NominatimProvider) ReverseGeocode(ctx context.Context, coordinates models.Coordinates) (*Place, error) {
	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim", "coordinates", coordinates.String())

	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(coordinates.Latitude(), 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coordinates.Longitude(), 'f', -1, 64))
	query.Set("zoom", "18") // building level detail
	query.Set("addressdetails", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute reverse geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result nominatimResponse
	if err = json.Unmarshal(body, &result); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	// Nominatim answers 200 with {"error": "Unable to geocode"} over open water.
	if result.Error != "" || result.DisplayName == "" {
		return nil, ErrNominatimEmptyResponse
	}

	return &Place{
		DisplayName: result.DisplayName,
		Category:    result.Category,
		Type:        result.Type,
		Address:     result.Address,
	}, nil
}
