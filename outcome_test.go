package ocrflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ocrflow "github.com/ChinaCraig/DocManage-sub000"
)

func TestErrorKindString(t *testing.T) {
	tests := map[ocrflow.ErrorKind]string{
		ocrflow.KindNone:             "none",
		ocrflow.KindMemoryLimit:      "memory_limit",
		ocrflow.KindResourceLimit:    "resource_limit",
		ocrflow.KindTimeout:          "timeout",
		ocrflow.KindExecutionError:   "execution_error",
		ocrflow.KindNoEngine:         "no_engine",
		ocrflow.KindAllEnginesFailed: "all_engines_failed",
		ocrflow.KindBatchError:       "batch_error",
		ocrflow.ErrorKind(99):        "unknown",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.String())
	}
}

func TestSuccessAndFailureCount(t *testing.T) {
	outcomes := []ocrflow.Outcome{
		{Success: true},
		{ErrorKind: ocrflow.KindTimeout},
		{Success: true},
		{ErrorKind: ocrflow.KindExecutionError},
	}
	assert.Equal(t, 2, ocrflow.SuccessCount(outcomes))
	assert.Equal(t, 2, ocrflow.FailureCount(outcomes))

	assert.Zero(t, ocrflow.SuccessCount(nil))
	assert.Zero(t, ocrflow.FailureCount(nil))
}
