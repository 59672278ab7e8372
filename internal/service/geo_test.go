package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMiles(t *testing.T) {
	// Times Square to Union Square is roughly a mile and a half
	d := HaversineMiles(40.7580, -73.9855, 40.7359, -73.9911)
	assert.InDelta(t, 1.55, d, 0.1)
	assert.Zero(t, HaversineMiles(40.7, -73.9, 40.7, -73.9))
}

func TestNearestStation(t *testing.T) {
	stations := []SubwayStation{
		{Name: "Far", Routes: "1", Latitude: 40.80, Longitude: -73.95},
		{Name: "Near", Routes: "A C E", Latitude: 40.7501, Longitude: -73.9901},
	}

	n := NearestStation(40.75, -73.99, stations)
	require.NotNil(t, n)
	assert.Equal(t, "Near", n.Name)
	assert.Nil(t, NearestStation(40.75, -73.99, nil))
}

func TestFormatSubwayAndBus(t *testing.T) {
	tests := []struct {
		name   string
		format func(*NearbyStop) string
		stop   *NearbyStop
		want   string
	}{
		{"subway in feet", FormatSubway, &NearbyStop{Name: "145 St", Routes: "A C", Distance: 420.0 / 5280}, "A/C at 145 St (420 ft)"},
		{"subway in miles", FormatSubway, &NearbyStop{Name: "Far Rockaway", Routes: "A", Distance: 0.42}, "A at Far Rockaway (0.42 mi)"},
		{"subway at boundary", FormatSubway, &NearbyStop{Name: "X", Routes: "Q", Distance: 1000.0 / 5280}, "Q at X (0.19 mi)"},
		{"bus", FormatBus, &NearbyStop{Name: "5 Av/E 23 St", Routes: "M1, M2", Distance: 0.12}, "M1, M2 at 5 Av/E 23 St (634 ft)"},
		{"nil stop", FormatBus, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format(tt.stop))
		})
	}
}

func TestAggregateBusStops(t *testing.T) {
	rows := []busRow{
		{StopID: "1", StopName: "Broadway/W 96 St", Latitude: "40.79", Longitude: "-73.97", Route: "M104"},
		{StopID: "2", StopName: "Amsterdam Av", Latitude: "40.80", Longitude: "-73.96", Route: "M7"},
		{StopID: "1", StopName: "Broadway/W 96 St", Latitude: "40.79", Longitude: "-73.97", Route: "M10"},
		{StopID: "1", StopName: "Broadway/W 96 St", Latitude: "40.79", Longitude: "-73.97", Route: "M104"},
		{StopID: "3", StopName: "Bad", Latitude: "", Longitude: "-73.96", Route: "M5"},
	}

	stops := aggregateBusStops(rows)

	require.Len(t, stops, 2)
	assert.Equal(t, "1", stops[0].StopID)
	assert.Equal(t, "M10, M104", stops[0].Routes)
	assert.Equal(t, "M7", stops[1].Routes)
}

func TestTransitClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subway.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("$limit"))
		io.WriteString(w, `[{"stop_name":"96 St","daytime_routes":"1 2 3","gtfs_latitude":"40.7939","gtfs_longitude":"-73.9723"},{"stop_name":"Broken","daytime_routes":"B","gtfs_latitude":"","gtfs_longitude":""}]`)
	})
	mux.HandleFunc("/bus.json", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"stop_id":"9","stop_name":"W 96 St","latitude":"40.79","longitude":"-73.97","route_short_name":"M96"}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewTransitClient(srv.URL+"/subway.json", srv.URL+"/bus.json")
	data, err := LoadTransit(context.Background(), client)
	require.NoError(t, err)

	require.Len(t, data.Stations, 1)
	assert.Equal(t, "1 2 3", data.Stations[0].Routes)
	require.Len(t, data.BusStops, 1)
	assert.Equal(t, "M96", data.BusStops[0].Routes)
}
