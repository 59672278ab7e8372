package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// GeocodeResult is a resolved address
type GeocodeResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	BBL       string  `json:"bbl,omitempty"`
}

// Geocoder resolves a street address to coordinates. A nil result with a
// nil error means the address was not found.
type Geocoder interface {
	Geocode(ctx context.Context, address, borough string) (*GeocodeResult, error)
}

// FullAddress builds the query string sent to the geocoder
func FullAddress(address, borough string) string {
	if borough != "" {
		return fmt.Sprintf("%s, %s, NY", address, borough)
	}
	return fmt.Sprintf("%s, New York, NY", address)
}

// GeosearchClient queries the NYC Planning Labs GeoSearch API
type GeosearchClient struct {
	client  *http.Client
	baseURL string
}

// NewGeosearchClient creates a new GeosearchClient
func NewGeosearchClient(baseURL string) *GeosearchClient {
	return &GeosearchClient{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
	}
}

// geosearchResponse represents the API response for /v2/search
type geosearchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Addendum struct {
				Pad struct {
					BBL string `json:"bbl"`
				} `json:"pad"`
			} `json:"addendum"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode resolves an address to its best match
func (c *GeosearchClient) Geocode(ctx context.Context, address, borough string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("text", FullAddress(address, borough))
	params.Set("size", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read geocoder response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder error: unexpected status code %d", resp.StatusCode)
	}

	var data geosearchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse geocoder response: %w", err)
	}
	if len(data.Features) == 0 || len(data.Features[0].Geometry.Coordinates) < 2 {
		return nil, nil
	}

	feature := data.Features[0]
	return &GeocodeResult{
		Latitude:  feature.Geometry.Coordinates[1],
		Longitude: feature.Geometry.Coordinates[0],
		BBL:       feature.Properties.Addendum.Pad.BBL,
	}, nil
}

const geocodeCachePrefix = "clinicmap:geocode:"

// CachingGeocoder remembers successful lookups in Redis so repeated
// enrichment runs do not hit the geocoder for unchanged addresses.
type CachingGeocoder struct {
	next   Geocoder
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachingGeocoder wraps next with a Redis-backed cache
func NewCachingGeocoder(next Geocoder, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachingGeocoder {
	return &CachingGeocoder{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Geocode returns a cached result when present, otherwise delegates and caches hits.
// Cache failures are logged and never fail the lookup.
func (c *CachingGeocoder) Geocode(ctx context.Context, address, borough string) (*GeocodeResult, error) {
	key := geocodeCachePrefix + strings.ToLower(FullAddress(address, borough))

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var res GeocodeResult
		if jsonErr := json.Unmarshal(cached, &res); jsonErr == nil {
			return &res, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Msg("Geocode cache read failed")
	}

	res, err := c.next.Geocode(ctx, address, borough)
	if err != nil || res == nil {
		return res, err
	}

	payload, err := json.Marshal(res)
	if err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("Geocode cache write failed")
		}
	}
	return res, nil
}
