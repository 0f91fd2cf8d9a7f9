package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// OCREngine turns an encoded image (PNG, JPEG, TIFF, WebP) into text.
type OCREngine interface {
	Name() string
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// QualityEngine is an OCREngine that also scores its output with a mean
// recognition confidence from 0 to 100.
type QualityEngine interface {
	OCREngine
	ExtractTextAndQuality(ctx context.Context, image []byte) (string, float64, error)
}

// NoConfidence is reported for text from an engine that does not score it.
const NoConfidence = -1.0

var _ QualityEngine = (*ChainOCR)(nil)

// FailureFunc is told about every engine that errors or returns no text.
type FailureFunc func(engine string, err error)

// ChainOCR tries each engine in order and returns the first non-empty text.
type ChainOCR struct {
	engines   []OCREngine
	onFailure FailureFunc
	logger    *slog.Logger
}

var errEmptyText = errors.New("engine returned no text")

func NewChainOCR(logger *slog.Logger, onFailure FailureFunc, engines ...OCREngine) *ChainOCR {
	if logger == nil {
		logger = slog.Default()
	}
	var kept []OCREngine
	for _, e := range engines {
		if e != nil {
			kept = append(kept, e)
		}
	}
	return &ChainOCR{engines: kept, onFailure: onFailure, logger: logger}
}

func (c *ChainOCR) Name() string {
	names := make([]string, len(c.engines))
	for i, e := range c.engines {
		names[i] = e.Name()
	}
	return strings.Join(names, "+")
}

// ExtractText returns the first engine's non-empty output. When every engine
// fails the joined errors are returned along with empty text.
func (c *ChainOCR) ExtractText(ctx context.Context, image []byte) (string, error) {
	text, _, err := c.ExtractTextAndQuality(ctx, image)
	return text, err
}

// ExtractTextAndQuality is ExtractText plus the confidence of the engine
// that produced the text, or NoConfidence if that engine does not score.
func (c *ChainOCR) ExtractTextAndQuality(ctx context.Context, image []byte) (string, float64, error) {
	if len(c.engines) == 0 {
		return "", NoConfidence, fmt.Errorf("no OCR engine configured")
	}
	var errs []error
	for _, e := range c.engines {
		if err := ctx.Err(); err != nil {
			return "", NoConfidence, err
		}
		text, conf, err := extractWithQuality(ctx, e, image)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyText
		}
		if err != nil {
			c.logger.Warn("OCR engine failed", "engine", e.Name(), "error", err)
			if c.onFailure != nil {
				c.onFailure(e.Name(), err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		return text, conf, nil
	}
	return "", NoConfidence, errors.Join(errs...)
}

func extractWithQuality(ctx context.Context, e OCREngine, image []byte) (string, float64, error) {
	if qe, ok := e.(QualityEngine); ok {
		return qe.ExtractTextAndQuality(ctx, image)
	}
	text, err := e.ExtractText(ctx, image)
	return text, NoConfidence, err
}
