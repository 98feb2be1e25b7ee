package website

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/radixwiki/wiki/src/perf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfReport(t *testing.T) {
	collector, job := perf.RunPerfCollector()
	defer job.Cancel()

	start := time.Now()
	fast := perf.MakeNewRequestPerf("GET home", "GET", "/")
	fast.Start, fast.End = start, start.Add(2*time.Millisecond)
	slow := perf.MakeNewRequestPerf("GET page", "GET", "/wiki/contents/staking")
	slow.Checkpoint("LIVE", "Fetched 2 live blocks")
	slow.Start, slow.End = start, start.Add(40*time.Millisecond)
	collector.SubmitRun(fast)
	collector.SubmitRun(slow)

	require.Eventually(t, func() bool {
		storage, err := collector.GetPerfCopy(context.Background())
		return err == nil && len(storage.AllRequests) == 2
	}, time.Second, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	perfReportHandler(collector)(rec, httptest.NewRequest(http.MethodGet, "/debug/perf", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var entries []perfReportEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "/wiki/contents/staking", entries[0].Path)
	assert.Equal(t, 40.0, entries[0].DurationMs)
	assert.Equal(t, 1, entries[0].Blocks)
	assert.Equal(t, "GET home", entries[1].Route)
}

func TestPerfReportUnavailable(t *testing.T) {
	collector, job := perf.RunPerfCollector()
	job.Cancel()
	<-job.Finished()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	perfReportHandler(collector)(rec, httptest.NewRequest(http.MethodGet, "/debug/perf", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
