package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() ClientConfig {
	return ClientConfig{
		Timeout:        2 * time.Second,
		UserAgent:      "trip-planner-test/1.0",
		Threshold:      3,
		BreakerTimeout: time.Minute,
	}
}

func TestNominatimClient_Geocode(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "/search", r.URL.Path)
		w.Write([]byte(`[{"place_id":1,"display_name":"Ooty, Tamil Nadu","lat":"11.4118","lon":"76.7046"}]`))
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL+"/", testConfig(), zaptest.NewLogger(t))
	coords, err := c.Geocode(context.Background(), "Ooty")
	require.NoError(t, err)

	assert.InDelta(t, 11.4118, coords.Lat, 1e-9)
	assert.InDelta(t, 76.7046, coords.Lon, 1e-9)
	assert.Equal(t, "city=Ooty&format=json&limit=1", gotQuery)
	assert.Equal(t, "trip-planner-test/1.0", gotAgent)
}

func TestNominatimClient_GeocodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "no results", status: http.StatusOK, body: `[]`, wantErr: ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, body: ``, wantErr: ErrUpstream},
		{name: "bad json", status: http.StatusOK, body: `{"oops"`},
		{name: "bad latitude", status: http.StatusOK, body: `[{"lat":"north","lon":"1"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewNominatimClient(srv.URL, testConfig(), zaptest.NewLogger(t))
			_, err := c.Geocode(context.Background(), "Nowhere")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestOpenMeteoClient_GetDailyForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "11.4118", q.Get("latitude"))
		assert.Equal(t, "76.7046", q.Get("longitude"))
		assert.Equal(t, "2", q.Get("forecast_days"))
		assert.Equal(t, "auto", q.Get("timezone"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,precipitation_sum", q.Get("daily"))
		w.Write([]byte(`{"daily":{
			"time":["2026-10-18","2026-10-19"],
			"temperature_2m_max":[21.5,24],
			"temperature_2m_min":[12.1,14],
			"precipitation_sum":[0.4,6.2]}}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, testConfig(), zaptest.NewLogger(t))
	days, err := c.GetDailyForecast(context.Background(), models.Coordinates{Lat: 11.4118, Lon: 76.7046}, 2)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, DailyForecast{Date: "2026-10-18", MaxTemp: 21.5, MinTemp: 12.1, Precipitation: 0.4}, days[0])
	assert.Equal(t, "2026-10-19", days[1].Date)
	assert.Equal(t, 6.2, days[1].Precipitation)
}

func TestOpenMeteoClient_ShortPayloadIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily":{"time":["2026-10-18"],"temperature_2m_max":[20],"temperature_2m_min":[10],"precipitation_sum":[0]}}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, testConfig(), zaptest.NewLogger(t))
	_, err := c.GetDailyForecast(context.Background(), models.Coordinates{}, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed forecast response")
}

func TestOverpassClient_Query(t *testing.T) {
	var gotData string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotData = r.URL.Query().Get("data")
		w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":11.4,"lon":76.7,"tags":{"name":"Botanical Garden"}},
			{"type":"way","id":2,"center":{"lat":11.5,"lon":76.8},"tags":{"name":"Ooty Lake"}},
			{"type":"relation","id":3,"tags":{"name":"No Geometry"}}]}`))
	}))
	defer srv.Close()

	c := NewOverpassClient(srv.URL, testConfig(), zaptest.NewLogger(t))
	elements, err := c.Query(context.Background(), "[out:json];node(1);out;")
	require.NoError(t, err)
	require.Len(t, elements, 3)
	assert.Equal(t, "[out:json];node(1);out;", gotData)

	lat, lon, ok := elements[0].Position()
	assert.True(t, ok)
	assert.Equal(t, 11.4, lat)
	assert.Equal(t, 76.7, lon)

	lat, lon, ok = elements[1].Position()
	assert.True(t, ok)
	assert.Equal(t, 11.5, lat)
	assert.Equal(t, 76.8, lon)

	_, _, ok = elements[2].Position()
	assert.False(t, ok)
}

func TestOverpassClient_RemarkWithoutElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements":[],"remark":"runtime error: Query timed out in \"query\" at line 3 after 41 seconds."}`))
	}))
	defer srv.Close()

	c := NewOverpassClient(srv.URL, testConfig(), zaptest.NewLogger(t))
	elements, err := c.Query(context.Background(), "[out:json];node(1);out;")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "timed out")
	assert.Nil(t, elements)
}

func TestOverpassClient_RemarkWithPartialElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements":[{"type":"node","id":1,"lat":1,"lon":2,"tags":{"name":"A"}}],"remark":"runtime error: out of memory"}`))
	}))
	defer srv.Close()

	c := NewOverpassClient(srv.URL, testConfig(), zaptest.NewLogger(t))
	elements, err := c.Query(context.Background(), "[out:json];node(1);out;")
	require.NoError(t, err)
	assert.Len(t, elements, 1)
}

func TestBaseClient_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewBaseClient("test-noretry", testConfig(), zaptest.NewLogger(t))
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBaseClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	cfg.Multiplier = 2

	c := NewBaseClient("test-retry", cfg, zaptest.NewLogger(t))
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestBaseClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 3
	cfg.RetryDelay = time.Millisecond

	c := NewBaseClient("test-4xx", cfg, zaptest.NewLogger(t))
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBaseClient_BreakerOpensAfterThreshold(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewBaseClient("test-breaker", testConfig(), zaptest.NewLogger(t))
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "expected open breaker, got %v", err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBaseClient_NonPositiveThresholdUsesDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Threshold = -1

	c := NewBaseClient("test-breaker-negative", cfg, zaptest.NewLogger(t))
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}

	_, err := c.Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}
