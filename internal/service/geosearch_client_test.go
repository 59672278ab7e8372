package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullAddress(t *testing.T) {
	assert.Equal(t, "303 9th Ave, Manhattan, NY", FullAddress("303 9th Ave", "Manhattan"))
	assert.Equal(t, "303 9th Ave, New York, NY", FullAddress("303 9th Ave", ""))
}

func TestGeosearchClient_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("size"))
		if r.URL.Query().Get("text") == "nowhere, New York, NY" {
			io.WriteString(w, `{"features":[]}`)
			return
		}
		assert.Equal(t, "303 9th Ave, Manhattan, NY", r.URL.Query().Get("text"))
		io.WriteString(w, `{"features":[{"geometry":{"coordinates":[-73.9993,40.7489]},"properties":{"addendum":{"pad":{"bbl":"1007260001"}}}}]}`)
	}))
	defer srv.Close()

	client := NewGeosearchClient(srv.URL)

	res, err := client.Geocode(context.Background(), "303 9th Ave", "Manhattan")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 40.7489, res.Latitude)
	assert.Equal(t, -73.9993, res.Longitude)
	assert.Equal(t, "1007260001", res.BBL)

	res, err = client.Geocode(context.Background(), "nowhere", "")
	require.NoError(t, err)
	assert.Nil(t, res)
}

type countingGeocoder struct {
	calls  int
	result *GeocodeResult
}

func (g *countingGeocoder) Geocode(ctx context.Context, address, borough string) (*GeocodeResult, error) {
	g.calls++
	return g.result, nil
}

func TestCachingGeocoder(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	next := &countingGeocoder{result: &GeocodeResult{Latitude: 40.7, Longitude: -73.9, BBL: "1"}}
	cache := NewCachingGeocoder(next, rdb, time.Hour, zerolog.Nop())
	ctx := context.Background()

	first, err := cache.Geocode(ctx, "1 Main St", "Bronx")
	require.NoError(t, err)
	second, err := cache.Geocode(ctx, "1 MAIN ST", "Bronx")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("clinicmap:geocode:1 main st, bronx, ny"))
}

func TestCachingGeocoder_MissesAreNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	next := &countingGeocoder{}
	cache := NewCachingGeocoder(next, rdb, time.Hour, zerolog.Nop())

	for i := 0; i < 2; i++ {
		res, err := cache.Geocode(context.Background(), "nowhere", "")
		require.NoError(t, err)
		assert.Nil(t, res)
	}
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, mr.Keys())
}

func TestCachingGeocoder_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	next := &countingGeocoder{result: &GeocodeResult{Latitude: 1, Longitude: 2}}
	res, err := NewCachingGeocoder(next, rdb, time.Hour, zerolog.Nop()).Geocode(context.Background(), "a", "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Latitude)
}
