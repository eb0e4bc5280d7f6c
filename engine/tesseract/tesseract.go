// Package tesseract provides a recognition engine backed by the gosseract
// Tesseract bindings.
package tesseract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ChinaCraig/DocManage-sub000/engine"
)

// Engine implements engine.Engine using a gosseract client per call. Clients
// are not safe for concurrent use, so each recognition gets its own.
type Engine struct {
	clientFactory func() *gosseract.Client
}

var _ engine.Engine = (*Engine)(nil)
var _ engine.HealthChecker = (*Engine)(nil)

// New constructs a Tesseract-backed recognition engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "tesseract" }

// CheckHealth reports whether the Tesseract installation is usable. It only
// enumerates installed trained languages; no recognition work is performed.
func (e *Engine) CheckHealth(_ context.Context) error {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return fmt.Errorf("tesseract languages: %w", err)
	}
	if len(langs) == 0 {
		return errors.New("tesseract: no trained languages installed")
	}
	return nil
}

// Recognize implements engine.Engine.
func (e *Engine) Recognize(ctx context.Context, in engine.Input) (engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return engine.Result{}, err
	}
	if len(in.Image) == 0 {
		return engine.Result{}, errors.New("tesseract: empty image")
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return engine.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return engine.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return engine.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return engine.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return engine.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return engine.Result{
		Text:       strings.TrimSpace(text),
		Confidence: meanConfidence(c),
	}, nil
}

// meanConfidence averages word-level confidences. Zero when Tesseract does
// not report boxes for the image.
func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
