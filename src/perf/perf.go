// Package perf records timing blocks for a single request (SQL queries,
// template execution, block data fetches) and collects finished requests
// in a background job.
package perf

import (
	"context"
	"sync"
	"time"

	"github.com/radixwiki/wiki/src/jobs"
)

type RequestPerf struct {
	Route  string
	Path   string // the path actually matched
	Method string
	Start  time.Time
	End    time.Time

	mu     sync.Mutex
	Blocks []PerfBlock
}

func MakeNewRequestPerf(route string, method string, path string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Path:   path,
		Method: method,
	}
}

func (rp *RequestPerf) EndRequest() {
	if rp == nil {
		return
	}
	rp.mu.Lock()
	defer rp.mu.Unlock()
	now := time.Now()
	for i := range rp.Blocks {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = now
		}
	}
	rp.End = now
}

func (rp *RequestPerf) Checkpoint(category, description string) {
	if rp == nil {
		return
	}
	now := time.Now()
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       now,
		End:         now,
		Category:    category,
		Description: description,
	})
}

// StartBlock is safe to call on a nil RequestPerf, so code running outside
// a request (jobs, commands) can time itself unconditionally.
func (rp *RequestPerf) StartBlock(category, description string) *BlockHandle {
	if rp == nil {
		return &BlockHandle{}
	}
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
	return &BlockHandle{rp: rp, idx: len(rp.Blocks) - 1}
}

func (rp *RequestPerf) MsFromStart(block *PerfBlock) float64 {
	return float64(block.Start.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

// Snapshot returns a copy of the blocks recorded so far.
func (rp *RequestPerf) Snapshot() []PerfBlock {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return append([]PerfBlock(nil), rp.Blocks...)
}

type BlockHandle struct {
	rp  *RequestPerf
	idx int
}

func (b *BlockHandle) End() {
	if b == nil || b.rp == nil {
		return
	}
	b.rp.mu.Lock()
	defer b.rp.mu.Unlock()
	if b.rp.Blocks[b.idx].End.IsZero() {
		b.rp.Blocks[b.idx].End = time.Now()
	}
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

type perfContextKey struct{}

var PerfContextKey = perfContextKey{}

// ExtractPerf may return nil; every RequestPerf method tolerates that.
func ExtractPerf(ctx context.Context) *RequestPerf {
	rp, _ := ctx.Value(PerfContextKey).(*RequestPerf)
	return rp
}

// Summary of one request kept by the collector.
type RequestSummary struct {
	Route    string
	Method   string
	Path     string
	Duration time.Duration
	Blocks   int
}

const maxStoredRequests = 1000

type PerfStorage struct {
	AllRequests []RequestSummary
}

type PerfCollector struct {
	in          chan RequestSummary
	requestCopy chan chan PerfStorage
}

func RunPerfCollector() (*PerfCollector, *jobs.Job) {
	collector := &PerfCollector{
		in:          make(chan RequestSummary, 64),
		requestCopy: make(chan chan PerfStorage),
	}

	job := jobs.Run("perf collector", func(job *jobs.Job) {
		var storage PerfStorage
		for {
			select {
			case summary := <-collector.in:
				storage.AllRequests = append(storage.AllRequests, summary)
				if len(storage.AllRequests) > maxStoredRequests {
					storage.AllRequests = storage.AllRequests[len(storage.AllRequests)-maxStoredRequests:]
				}
			case resultChan := <-collector.requestCopy:
				resultChan <- PerfStorage{AllRequests: append([]RequestSummary(nil), storage.AllRequests...)}
			case <-job.Canceled():
				return
			}
		}
	})

	return collector, job
}

// SubmitRun drops the run if the collector is backed up.
func (c *PerfCollector) SubmitRun(run *RequestPerf) {
	if c == nil || run == nil {
		return
	}
	summary := RequestSummary{
		Route:    run.Route,
		Method:   run.Method,
		Path:     run.Path,
		Duration: run.End.Sub(run.Start),
		Blocks:   len(run.Snapshot()),
	}
	select {
	case c.in <- summary:
	default:
	}
}

func (c *PerfCollector) GetPerfCopy(ctx context.Context) (PerfStorage, error) {
	resultChan := make(chan PerfStorage, 1)
	select {
	case c.requestCopy <- resultChan:
	case <-ctx.Done():
		return PerfStorage{}, ctx.Err()
	}
	select {
	case storage := <-resultChan:
		return storage, nil
	case <-ctx.Done():
		return PerfStorage{}, ctx.Err()
	}
}
