package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Operation names recorded by the request handlers.
const (
	OpTailor    = "tailor"
	OpUpload    = "upload"
	OpCompile   = "compile"
	OpSummarize = "summarize"
)

var defaultBuckets = []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000}

type opMetrics struct {
	requests atomic.Uint64
	failures atomic.Uint64
	duration *histogram
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*opMetrics{}
)

func init() {
	for _, op := range []string{OpTailor, OpUpload, OpCompile, OpSummarize} {
		lookup(op)
	}
}

func lookup(op string) *opMetrics {
	registryMu.RLock()
	m, ok := registry[op]
	registryMu.RUnlock()
	if ok {
		return m
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if m, ok = registry[op]; ok {
		return m
	}
	m = &opMetrics{duration: newHistogram(defaultBuckets)}
	registry[op] = m
	return m
}

// IncRequest counts an invocation of op.
func IncRequest(op string) {
	lookup(op).requests.Add(1)
}

// IncFailure counts a failed invocation of op.
func IncFailure(op string) {
	lookup(op).failures.Add(1)
}

// ObserveDurationMs records how long op took in milliseconds.
func ObserveDurationMs(op string, value float64) {
	if value < 0 {
		value = 0
	}
	lookup(op).duration.Observe(value)
}

// Track counts op and returns a func that records its duration and outcome.
//
//	done := metrics.Track(metrics.OpCompile)
//	defer func() { done(err) }()
func Track(op string) func(err error) {
	IncRequest(op)
	start := time.Now()
	return func(err error) {
		ObserveDurationMs(op, float64(time.Since(start).Microseconds())/1000.0)
		if err != nil {
			IncFailure(op)
		}
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	registryMu.RLock()
	ops := make([]string, 0, len(registry))
	for op := range registry {
		ops = append(ops, op)
	}
	registryMu.RUnlock()
	sort.Strings(ops)

	var buf bytes.Buffer
	for _, op := range ops {
		m := lookup(op)
		writeCounter(&buf, op+"_requests_total", "Total "+op+" requests", m.requests.Load())
		writeCounter(&buf, op+"_failures_total", "Total failed "+op+" requests", m.failures.Load())
		writeHistogram(&buf, op+"_duration_ms", op+" duration in milliseconds", m.duration.Snapshot())
	}
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe stores value in the first bucket that holds it; writeHistogram
// accumulates on render.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
