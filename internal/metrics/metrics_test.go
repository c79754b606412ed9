package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(Generations.WithLabelValues(ResultSuccess))
	RecordGeneration(ResultSuccess)
	assert.Equal(t, before+1, testutil.ToFloat64(Generations.WithLabelValues(ResultSuccess)))
}

func TestRecordTrendResolution(t *testing.T) {
	before := testutil.ToFloat64(TrendResolutions.WithLabelValues(TrendSourceCache))
	RecordTrendResolution(TrendSourceCache)
	RecordTrendResolution(TrendSourceCache)
	assert.Equal(t, before+2, testutil.ToFloat64(TrendResolutions.WithLabelValues(TrendSourceCache)))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordNewsFetchError("newsapi")
	ObserveRequest("GET /api/posts", http.StatusOK, time.Now())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "draftspark_news_fetch_errors_total")
	assert.Contains(t, string(body), "draftspark_http_request_duration_seconds")
}
