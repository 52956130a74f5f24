package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestSetupWithoutExporter(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "farmstore-test", Exporter: ExporterNone})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestResourceMergesWithSDKDefaults(t *testing.T) {
	res, err := newResource("farmstore-test")
	require.NoError(t, err)

	value, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "farmstore-test", value.AsString())
	assert.Equal(t, resource.Default().SchemaURL(), res.SchemaURL())
}

func TestSetupWithStdoutExporter(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "farmstore-test", Exporter: ExporterStdout})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), Config{ServiceName: "farmstore-test", Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestSetupOTLPNeedsEndpoint(t *testing.T) {
	_, err := Setup(context.Background(), Config{ServiceName: "farmstore-test", Exporter: ExporterOTLP})
	assert.Error(t, err)
}

func TestTracedClientReachesServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewHTTPClient(2 * time.Second)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 2*time.Second, client.Timeout)
}

func TestHandlerPassesThrough(t *testing.T) {
	h := Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), "farmstore-test")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
