package ipapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/", r.URL.Path)
		w.Write([]byte(`{"status":"success","lat":48.2082,"lon":16.3738,"city":"Vienna","regionName":"Vienna","country":"Austria"}`))
	}))
	defer server.Close()

	loc, err := NewClient().WithBaseURL(server.URL).Locate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 48.2082, loc.Point.Latitude, 1e-9)
	assert.InDelta(t, 16.3738, loc.Point.Longitude, 1e-9)
	assert.Equal(t, "Vienna, Vienna, Austria", loc.Description)
}

func TestLocate_FallbackDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","lat":48.2082,"lon":16.3738}`))
	}))
	defer server.Close()

	loc, err := NewClient().WithBaseURL(server.URL).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "48.2082, 16.3738", loc.Description)
}

func TestLocate_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail"}`))
	}))
	defer server.Close()

	_, err := NewClient().WithBaseURL(server.URL).Locate(context.Background())
	assert.Error(t, err)
}
