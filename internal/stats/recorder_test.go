package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wesleyorama2/syncreq/internal/executor"
)

func TestRecorder_Empty(t *testing.T) {
	s := NewRecorder().Summary()
	assert.Equal(t, Summary{}, s)
	assert.Zero(t, s.SuccessRate())
	assert.Zero(t, s.Throughput())
}

func TestRecorder_Summary(t *testing.T) {
	r := NewRecorder()
	for i := 1; i <= 100; i++ {
		r.Record(time.Duration(i)*time.Millisecond, executor.Result{Kind: executor.Success, BodyLength: 10})
	}
	r.Record(time.Second, executor.Result{Kind: executor.TimedOut})
	r.Record(time.Millisecond, executor.Result{Kind: executor.Failed, Message: "refused"})

	s := r.Summary()
	assert.Equal(t, int64(102), s.Total)
	assert.Equal(t, int64(100), s.Success)
	assert.Equal(t, int64(1), s.TimedOut)
	assert.Equal(t, int64(1), s.Failed)
	assert.Equal(t, int64(1000), s.Bytes)
	assert.InDelta(t, 100.0/102.0, s.SuccessRate(), 1e-9)

	// 3 significant figures keeps values within 0.1%.
	assert.Equal(t, time.Millisecond, s.Min)
	assert.InDelta(t, float64(time.Second), float64(s.Max), float64(time.Millisecond))
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(90*time.Millisecond), float64(s.P90), float64(2*time.Millisecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(s.P99), float64(2*time.Millisecond))
	assert.Greater(t, s.Mean, s.P50)
}

func TestRecorder_ClampsOutOfRange(t *testing.T) {
	r := NewRecorder()
	r.Record(0, executor.Result{Kind: executor.Success})
	r.Record(2*time.Hour, executor.Result{Kind: executor.Success})

	s := r.Summary()
	assert.Equal(t, time.Microsecond, s.Min)
	assert.InDelta(t, float64(time.Hour), float64(s.Max), float64(5*time.Second))
}
