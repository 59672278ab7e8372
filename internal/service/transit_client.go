package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// TransitClient fetches subway stations and bus stops from NY open data
type TransitClient struct {
	client    *http.Client
	subwayURL string
	busURL    string
}

// NewTransitClient creates a new TransitClient
func NewTransitClient(subwayURL, busURL string) *TransitClient {
	return &TransitClient{
		client:    &http.Client{Timeout: defaultTimeout},
		subwayURL: subwayURL,
		busURL:    busURL,
	}
}

// subwayRow represents a row of the subway stations dataset
type subwayRow struct {
	StopName      string `json:"stop_name"`
	DaytimeRoutes string `json:"daytime_routes"`
	Latitude      string `json:"gtfs_latitude"`
	Longitude     string `json:"gtfs_longitude"`
}

// busRow represents a row of the bus stops dataset (one per stop and route)
type busRow struct {
	StopID    string `json:"stop_id"`
	StopName  string `json:"stop_name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Route     string `json:"route_short_name"`
}

// FetchSubwayStations retrieves all stations with valid coordinates
func (c *TransitClient) FetchSubwayStations(ctx context.Context) ([]SubwayStation, error) {
	params := url.Values{}
	params.Set("$limit", "1000")

	var rows []subwayRow
	if err := c.getJSON(ctx, c.subwayURL+"?"+params.Encode(), &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch stations: %w", err)
	}

	stations := make([]SubwayStation, 0, len(rows))
	for _, r := range rows {
		lat, latErr := strconv.ParseFloat(r.Latitude, 64)
		lon, lonErr := strconv.ParseFloat(r.Longitude, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		stations = append(stations, SubwayStation{
			Name:      r.StopName,
			Routes:    r.DaytimeRoutes,
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return stations, nil
}

// FetchBusStops retrieves bus stops, merging the per-route rows of each stop
func (c *TransitClient) FetchBusStops(ctx context.Context) ([]BusStop, error) {
	params := url.Values{}
	params.Set("$limit", "50000")
	params.Set("$select", "stop_id,stop_name,latitude,longitude,route_short_name")
	params.Set("$where", "latitude IS NOT NULL")

	var rows []busRow
	if err := c.getJSON(ctx, c.busURL+"?"+params.Encode(), &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch bus stops: %w", err)
	}

	return aggregateBusStops(rows), nil
}

// aggregateBusStops merges rows sharing a stop id, collecting their routes.
// Stops keep the order in which they first appear.
func aggregateBusStops(rows []busRow) []BusStop {
	type aggregate struct {
		stop   BusStop
		routes map[string]bool
	}
	var order []string
	byID := make(map[string]*aggregate)

	for _, r := range rows {
		lat, latErr := strconv.ParseFloat(r.Latitude, 64)
		lon, lonErr := strconv.ParseFloat(r.Longitude, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		agg, ok := byID[r.StopID]
		if !ok {
			agg = &aggregate{
				stop:   BusStop{StopID: r.StopID, Name: r.StopName, Latitude: lat, Longitude: lon},
				routes: make(map[string]bool),
			}
			byID[r.StopID] = agg
			order = append(order, r.StopID)
		}
		if r.Route != "" {
			agg.routes[r.Route] = true
		}
	}

	stops := make([]BusStop, 0, len(order))
	for _, id := range order {
		agg := byID[id]
		routes := make([]string, 0, len(agg.routes))
		for route := range agg.routes {
			routes = append(routes, route)
		}
		sort.Strings(routes)
		agg.stop.Routes = strings.Join(routes, ", ")
		stops = append(stops, agg.stop)
	}
	return stops
}

func (c *TransitClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
