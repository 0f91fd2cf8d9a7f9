// Package tesseract wraps gosseract. It is the only package that needs cgo
// and libtesseract, so the rest of the module builds and tests without them.
package tesseract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/Aashish23092/payment-evidence-ocr/client"
)

const (
	// fallbackPSM (single column of variable-size text) is retried on the
	// unprocessed image when the primary pass reads almost nothing.
	fallbackPSM    = 4
	minUsefulChars = 8
)

var _ client.QualityEngine = (*Client)(nil)

type Client struct {
	dataPath   string
	language   string
	psm        int
	preprocess bool
}

// NewClient builds a Tesseract engine. With preprocess set, images are
// grayscaled, upscaled and sharpened before recognition.
func NewClient(dataPath, language string, psm int, preprocess bool) *Client {
	if language == "" {
		language = "eng"
	}
	return &Client{
		dataPath:   dataPath,
		language:   language,
		psm:        psm,
		preprocess: preprocess,
	}
}

func (tc *Client) Name() string { return "tesseract" }

// ExtractText runs Tesseract over the image.
func (tc *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	text, _, err := tc.ExtractTextAndQuality(ctx, image)
	return text, err
}

// ExtractTextAndQuality also reports the mean word confidence (0-100), or
// client.NoConfidence when Tesseract found no words.
func (tc *Client) ExtractTextAndQuality(ctx context.Context, image []byte) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", client.NoConfidence, err
	}

	input := image
	if tc.preprocess {
		if prepared, err := client.Preprocess(image); err == nil {
			input = prepared
		} else {
			slog.Debug("preprocessing skipped", "error", err)
		}
	}

	text, conf, err := tc.run(input, tc.psm)
	if err != nil {
		return "", client.NoConfidence, err
	}
	if len(strings.TrimSpace(text)) >= minUsefulChars || ctx.Err() != nil {
		return text, conf, nil
	}

	alt, altConf, altErr := tc.run(image, fallbackPSM)
	if altErr == nil && len(strings.TrimSpace(alt)) > len(strings.TrimSpace(text)) {
		return alt, altConf, nil
	}
	return text, conf, nil
}

func (tc *Client) run(image []byte, psm int) (string, float64, error) {
	gc := gosseract.NewClient()
	defer gc.Close()

	if tc.dataPath != "" {
		if err := gc.SetTessdataPrefix(tc.dataPath); err != nil {
			return "", client.NoConfidence, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := gc.SetLanguage(tc.language); err != nil {
		return "", client.NoConfidence, fmt.Errorf("failed to set language: %w", err)
	}
	if psm > 0 {
		if err := gc.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
			return "", client.NoConfidence, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if err := gc.SetImageFromBytes(image); err != nil {
		return "", client.NoConfidence, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := gc.Text()
	if err != nil {
		return "", client.NoConfidence, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := gc.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return text, client.NoConfidence, nil
	}
	var total float64
	for _, box := range boxes {
		total += box.Confidence
	}
	return text, total / float64(len(boxes)), nil
}
