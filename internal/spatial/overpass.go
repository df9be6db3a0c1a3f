package spatial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/paulmach/orb"
	"golang.org/x/time/rate"
)

// OverpassBaseURL is the public Overpass API interpreter endpoint.
const OverpassBaseURL = "https://overpass-api.de/api/interpreter"

// OverpassUserAgent identifies the service per Overpass usage policy.
const OverpassUserAgent = "Perimeter-Geofence-Service/1.0 (https://github.com/UnknownOlympus/perimeter)"

// Common errors for Overpass source.
var (
	ErrOverpassRuntime = errors.New("overpass API reported a runtime error")
)

// OverpassSource implements FeatureSource on top of the OpenStreetMap Overpass API.
type OverpassSource struct {
	client       HTTPClient    // HTTP client for making requests
	baseURL      string        // Interpreter endpoint
	userAgent    string        // User-Agent sent with every request
	queryTimeout int           // Server-side [timeout:N] in seconds
	log          *slog.Logger  // Logger for logging operations
	limiter      *rate.Limiter // Rate limiter
}

type overpassResponse struct {
	Remark   string            `json:"remark"`
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewOverpassSource creates an Overpass source with its own HTTP client.
func NewOverpassSource(
	baseURL, userAgent string,
	timeout time.Duration,
	rateLimit int,
	log *slog.Logger,
) *OverpassSource {
	if baseURL == "" {
		baseURL = OverpassBaseURL
	}
	if userAgent == "" {
		userAgent = OverpassUserAgent
	}

	limit := rate.Inf
	if rateLimit > 0 {
		limit = rate.Limit(rateLimit)
	}

	return &OverpassSource{
		client:       &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		userAgent:    userAgent,
		queryTimeout: max(1, int(math.Ceil(timeout.Seconds()))),
		log:          log,
		limiter:      rate.NewLimiter(limit, max(1, rateLimit)),
	}
}

// NewOverpassSourceWithClient allows injecting a custom HTTP client and limiter.
func NewOverpassSourceWithClient(client HTTPClient, baseURL string, limiter *rate.Limiter, log *slog.Logger) *OverpassSource {
	if baseURL == "" {
		baseURL = OverpassBaseURL
	}

	return &OverpassSource{
		client:       client,
		baseURL:      baseURL,
		userAgent:    OverpassUserAgent,
		queryTimeout: 5,
		log:          log,
		limiter:      limiter,
	}
}

// FeaturesAround lists building features within radiusMeters of center.
func (op *OverpassSource) FeaturesAround(
	ctx context.Context,
	center models.Coordinates,
	radiusMeters float64,
	limit int,
) ([]Feature, error) {
	filter := fmt.Sprintf("(around:%.2f,%.6f,%.6f)", radiusMeters, center.Latitude(), center.Longitude())
	return op.query(ctx, buildingQuery(op.queryTimeout, filter, limit))
}

// FeaturesInBounds lists building features inside bound.
func (op *OverpassSource) FeaturesInBounds(ctx context.Context, bound orb.Bound, limit int) ([]Feature, error) {
	// Overpass bbox order: south, west, north, east.
	filter := fmt.Sprintf("(%.6f,%.6f,%.6f,%.6f)", bound.Min.Lat(), bound.Min.Lon(), bound.Max.Lat(), bound.Max.Lon())
	return op.query(ctx, buildingQuery(op.queryTimeout, filter, limit))
}

// buildingQuery builds an Overpass QL query for building-tagged features matching filter.
// "out center" makes ways and relations report a representative point.
func buildingQuery(timeoutSeconds int, filter string, limit int) string {
	return fmt.Sprintf(
		`[out:json][timeout:%d];(node["building"]%s;way["building"]%s;relation["building"]%s;);out center %d;`,
		timeoutSeconds, filter, filter, filter, limit,
	)
}

func (op *OverpassSource) query(ctx context.Context, overpassQL string) ([]Feature, error) {
	if err := op.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(op.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	query := reqURL.Query()
	query.Set("data", overpassQL)
	reqURL.RawQuery = query.Encode()

	op.log.DebugContext(ctx, "Overpass request", "query", overpassQL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", op.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := op.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		op.log.ErrorContext(ctx, "Overpass API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("overpass API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result overpassResponse
	if err = json.Unmarshal(body, &result); err != nil {
		op.log.ErrorContext(ctx, "Failed to parse Overpass response", "error", err)
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	// Overpass answers 200 with a remark when the query times out server-side.
	if strings.Contains(result.Remark, "runtime error") {
		return nil, fmt.Errorf("%w: %s", ErrOverpassRuntime, result.Remark)
	}

	features := make([]Feature, 0, len(result.Elements))
	for _, element := range result.Elements {
		features = append(features, element.toFeature())
	}

	op.log.DebugContext(ctx, "Overpass returned features", "count", len(features))

	return features, nil
}

func (e overpassElement) toFeature() Feature {
	feature := Feature{
		Kind:       e.Type,
		ExternalID: strconv.FormatInt(e.ID, 10),
		Name:       e.Tags["name"],
		Address:    overpassAddress(e.Tags),
		Category:   e.Tags["building"],
		Tags:       e.Tags,
	}

	var lat, lon float64
	switch {
	case e.Lat != nil && e.Lon != nil:
		lat, lon = *e.Lat, *e.Lon
	case e.Center != nil:
		lat, lon = e.Center.Lat, e.Center.Lon
	default:
		return feature
	}
	if point, err := models.NewCoordinates(lat, lon); err == nil {
		feature.Point = &point
	}

	return feature
}

func overpassAddress(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])
	parts := make([]string, 0, 2)
	if street != "" {
		parts = append(parts, street)
	}
	if city := tags["addr:city"]; city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}
