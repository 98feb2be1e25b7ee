package website

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/radixwiki/wiki/src/perf"
)

type perfReportEntry struct {
	Route      string  `json:"route"`
	Method     string  `json:"method"`
	Path       string  `json:"path"`
	DurationMs float64 `json:"durationMs"`
	Blocks     int     `json:"blocks"`
}

// perfReportHandler lists the collected request timings, slowest first. It is
// served only on the private address.
func perfReportHandler(collector *perf.PerfCollector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storage, err := collector.GetPerfCopy(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		entries := make([]perfReportEntry, 0, len(storage.AllRequests))
		for _, req := range storage.AllRequests {
			entries = append(entries, perfReportEntry{
				Route:      req.Route,
				Method:     req.Method,
				Path:       req.Path,
				DurationMs: float64(req.Duration.Microseconds()) / 1000,
				Blocks:     req.Blocks,
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].DurationMs > entries[j].DurationMs
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
