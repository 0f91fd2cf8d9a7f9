package client

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	minOCRHeight    = 800
	targetOCRHeight = 1200
)

// DecodeImage decodes any format registered with image (PNG, JPEG, GIF,
// TIFF, BMP, WebP), honouring EXIF orientation.
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Preprocess prepares a phone screenshot for Tesseract: grayscale, upscale
// small captures, stretch contrast and sharpen. The result is PNG-encoded.
func Preprocess(data []byte) ([]byte, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minOCRHeight {
		gray = imaging.Resize(gray, 0, targetOCRHeight, imaging.Lanczos)
	}
	gray = imaging.AdjustContrast(gray, 30)
	gray = imaging.Sharpen(gray, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}
