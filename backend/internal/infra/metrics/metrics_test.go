package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordersCountAfterRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegisterWith(reg)

	ObserveHTTP("GET", "/api/forums", 200, 20*time.Millisecond)
	ObserveHTTP("GET", "", 404, time.Millisecond)
	RecordEvent(EventPostCreated)
	RecordEvent(EventPostCreated)
	RecordAuth("login", "success")
	LiveListenerDelta(2)
	LiveListenerDelta(-1)

	assert.InDelta(t, 1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/forums", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(domainEvents.WithLabelValues(EventPostCreated)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(authOutcomes.WithLabelValues("login", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(liveListeners), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
