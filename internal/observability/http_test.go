package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesContentCollectors(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	TreeMutations().WithLabelValues("commit").Inc()
	CacheLookups().WithLabelValues("ai_course", "miss").Inc()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `tree_mutations_total{operation="commit"}`)
	require.Contains(t, string(body), `cache_lookups_total{resource="ai_course",result="miss"}`)
	require.Contains(t, string(body), "go_goroutines")
}
