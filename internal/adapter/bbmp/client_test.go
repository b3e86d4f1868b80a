package bbmp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
)

var testHeaders = Headers{
	UserAgent: "test-agent",
	Origin:    "http://example.test",
	Referer:   "http://example.test/page",
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, testHeaders, 5*time.Second, slog.Default())
}

func TestWardsByZone(t *testing.T) {
	t.Run("sends the expected request and decodes the envelope", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/LoadWardByZone", r.URL.Path)
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			assert.Equal(t, "http://example.test", r.Header.Get("Origin"))
			assert.Equal(t, "http://example.test/page", r.Header.Get("Referer"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, "{'zoneid':'3'}", string(body))

			w.Write([]byte(`{"d":"[{\"Zone_Name\":\"East\",\"Ward_Id\":27,\"Ward_Name\":\"HBR Layout\"}]"}`))
		})

		wards, err := client.WardsByZone(context.Background(), "3")

		require.NoError(t, err)
		assert.Equal(t, []domain.Ward{
			{ZoneID: "3", ZoneName: "East", WardID: "27", WardName: "HBR Layout"},
		}, wards)
	})

	t.Run("non-200 status is fatal", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "server fell over", http.StatusInternalServerError)
		})

		_, err := client.WardsByZone(context.Background(), "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("garbage envelope is fatal", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`<html>maintenance</html>`))
		})

		_, err := client.WardsByZone(context.Background(), "1")
		require.Error(t, err)
	})
}

func TestOFCData(t *testing.T) {
	t.Run("returns the verbatim body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/GetOFCData", r.URL.Path)

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, "{'zoneid':'3','wardid':'27','streetid':'0'}", string(body))

			w.Write([]byte(`{"d":"[]"}`))
		})

		body, err := client.OFCData(context.Background(), "3", "27")
		require.NoError(t, err)
		assert.Equal(t, `{"d":"[]"}`, string(body))
	})

	t.Run("error pages are returned, not rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`<html>Runtime Error</html>`))
		})

		body, err := client.OFCData(context.Background(), "3", "27")
		require.NoError(t, err)
		assert.Equal(t, `<html>Runtime Error</html>`, string(body))
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close() // connection refused from here on
		client := NewClient(srv.URL, testHeaders, time.Second, slog.Default())

		_, err := client.OFCData(context.Background(), "3", "27")
		require.Error(t, err)
	})
}
