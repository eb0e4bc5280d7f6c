package tesseract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChinaCraig/DocManage-sub000/engine"
)

func TestEngineName(t *testing.T) {
	assert.Equal(t, "tesseract", New().Name())
}

func TestRecognizeEmptyImage(t *testing.T) {
	_, err := New().Recognize(context.Background(), engine.Input{ID: "empty"})
	assert.Error(t, err)
}

func TestRecognizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Recognize(ctx, engine.Input{ID: "x", Image: []byte{1}})
	assert.ErrorIs(t, err, context.Canceled)
}
