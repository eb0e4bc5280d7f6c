package ocrflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ocrflow "github.com/ChinaCraig/DocManage-sub000"
)

func TestBasicMetricsCollector(t *testing.T) {
	var b ocrflow.BasicMetricsCollector

	b.RecordTask(ocrflow.KindNone, 100*time.Millisecond)
	b.RecordTask(ocrflow.KindTimeout, 300*time.Millisecond)
	b.RecordBatch(10, 8, 2, time.Second)
	b.RecordTruncation(2)
	b.RecordFallback("secondary", "primary")
	b.RecordMemoryReclaim()

	assert.Equal(t, int64(2), b.TaskCount.Load())
	assert.Equal(t, int64(1), b.TaskErrors.Load())
	assert.Equal(t, int64(1), b.BatchCount.Load())
	assert.Equal(t, int64(8), b.BatchItems.Load())
	assert.Equal(t, int64(2), b.BatchFailed.Load())
	assert.Equal(t, int64(2), b.TruncatedItems.Load())
	assert.Equal(t, int64(1), b.FallbackCount.Load())
	assert.Equal(t, int64(1), b.MemoryReclaims.Load())
	assert.Equal(t, (200 * time.Millisecond).Nanoseconds(), b.AvgTaskNanos())
}

func TestBasicMetricsCollectorAvgEmpty(t *testing.T) {
	var b ocrflow.BasicMetricsCollector
	assert.Zero(t, b.AvgTaskNanos())
}
