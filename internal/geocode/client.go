// Package geocode resolves free-text locations to coordinates via LocationIQ.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"proppanda_backend/internal/properties"
	"proppanda_backend/platform/config"
	"proppanda_backend/platform/logger"
)

const locationIQURL = "https://us1.locationiq.com/v1/search.php"

// Client is a thin LocationIQ client restricted to Singapore lookups.
type Client struct {
	apiKey string
	client *http.Client
	log    *logger.Logger
}

// NewClient creates a geocoding client. A missing API key disables lookups;
// Resolve then reports every location as unresolvable.
func NewClient(cfg config.GeocodingConfig, log *logger.Logger) *Client {
	return &Client{
		apiKey: cfg.GetLocationIQKey(),
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

type lookupResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve converts a location name into coordinates. Returns nil (not an
// error) when the location cannot be resolved, so callers can fall through
// to their default ordering.
func (c *Client) Resolve(ctx context.Context, locationName string) (*properties.GeoPoint, error) {
	if locationName == "" || c.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Add("key", c.apiKey)
	params.Add("q", locationName)
	params.Add("format", "json")
	params.Add("countrycodes", "sg")
	params.Add("limit", "1")

	reqURL := fmt.Sprintf("%s?%s", locationIQURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.CollaboratorError("locationiq", "resolve", err)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("upstream api error: %d", resp.StatusCode)
		c.log.CollaboratorError("locationiq", "resolve", err)
		return nil, err
	}

	var results []lookupResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		c.log.Warn("geocoder found no matches", "location", locationName)
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse geocode latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse geocode longitude: %w", err)
	}

	return &properties.GeoPoint{Lat: lat, Lng: lng}, nil
}
