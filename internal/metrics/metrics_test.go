package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.RouterRequest(OutcomeMatched)
	m.RouterRequest(OutcomeMatched)
	m.RouterRequest(OutcomePassThrough)
	m.ListingRequest(ResultUnknownCategory)
	m.FragmentCache(true)
	m.FragmentCache(false)
	m.FragmentCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.routerRequests.WithLabelValues(OutcomeMatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.routerRequests.WithLabelValues(OutcomePassThrough)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listingRequests.WithLabelValues(ResultUnknownCategory)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fragmentCache.WithLabelValues(ResultHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fragmentCache.WithLabelValues(ResultMiss)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RouterRequest(OutcomeError)
	m.ListingRequest(ResultOK)
	m.FragmentCache(true)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.RouterRequest(OutcomeMatched)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `legal_updates_router_requests_total{outcome="matched"} 1`))
}
