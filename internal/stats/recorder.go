// Package stats summarises repeated executions of one request: outcome
// counts and latency percentiles from an HDR histogram.
package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/wesleyorama2/syncreq/internal/executor"
)

// Histogram range in microseconds: 1µs to 1 hour, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Recorder accumulates latencies and outcomes. It is safe for concurrent
// use, although the CLI records from a single goroutine.
type Recorder struct {
	mu      sync.Mutex
	hist    *hdrhistogram.Histogram
	counts  map[executor.Kind]int64
	bytes   int64
	started time.Time
	last    time.Time
}

// Summary is a point-in-time view of a Recorder.
type Summary struct {
	Total    int64         `json:"total" yaml:"total"`
	Success  int64         `json:"success" yaml:"success"`
	TimedOut int64         `json:"timedOut" yaml:"timedOut"`
	Failed   int64         `json:"failed" yaml:"failed"`
	Bytes    int64         `json:"bytes" yaml:"bytes"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`

	Min    time.Duration `json:"min" yaml:"min"`
	Max    time.Duration `json:"max" yaml:"max"`
	Mean   time.Duration `json:"mean" yaml:"mean"`
	StdDev time.Duration `json:"stdDev" yaml:"stdDev"`
	P50    time.Duration `json:"p50" yaml:"p50"`
	P90    time.Duration `json:"p90" yaml:"p90"`
	P95    time.Duration `json:"p95" yaml:"p95"`
	P99    time.Duration `json:"p99" yaml:"p99"`
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		hist:   hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		counts: make(map[executor.Kind]int64),
	}
}

// Record adds one execution that took d. Latencies outside the histogram
// range are clamped.
func (r *Recorder) Record(d time.Duration, res executor.Result) {
	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if r.started.IsZero() {
		r.started = now.Add(-d)
	}
	r.last = now

	_ = r.hist.RecordValue(micros)
	r.counts[res.Kind]++
	if res.Kind == executor.Success {
		r.bytes += int64(res.BodyLength)
	}
}

// Summary returns the current totals. Latency fields are zero when nothing
// has been recorded.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Success:  r.counts[executor.Success],
		TimedOut: r.counts[executor.TimedOut],
		Failed:   r.counts[executor.Failed],
		Bytes:    r.bytes,
	}
	s.Total = s.Success + s.TimedOut + s.Failed
	if s.Total == 0 {
		return s
	}

	s.Elapsed = r.last.Sub(r.started)
	s.Min = micros(r.hist.Min())
	s.Max = micros(r.hist.Max())
	s.Mean = time.Duration(r.hist.Mean() * float64(time.Microsecond))
	s.StdDev = time.Duration(r.hist.StdDev() * float64(time.Microsecond))
	s.P50 = micros(r.hist.ValueAtQuantile(50))
	s.P90 = micros(r.hist.ValueAtQuantile(90))
	s.P95 = micros(r.hist.ValueAtQuantile(95))
	s.P99 = micros(r.hist.ValueAtQuantile(99))
	return s
}

// SuccessRate returns the fraction of executions that succeeded.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total)
}

// Throughput returns executions per second over the recorded span.
func (s Summary) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Total) / s.Elapsed.Seconds()
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
