package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "DATABASE_PATH", "OCR_PSM", "MAX_UPLOAD_MB", "OCR_WORKERS", "PADDLEOCR_API_URL", "OCR_PREPROCESS", "OCR_REVIEW_CONFIDENCE"} {
		t.Setenv(k, "")
	}
	t.Setenv("TIMEZONE", "UTC")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "instance/ocr_case_tool.sqlite", cfg.DatabasePath)
	assert.Equal(t, 6, cfg.OCRPageSegMode)
	assert.Equal(t, 4, cfg.OCRWorkers)
	assert.Equal(t, int64(32<<20), cfg.MaxFileSize)
	assert.Empty(t, cfg.PaddleOCRURL)
	assert.True(t, cfg.OCRPreprocess)
	assert.Equal(t, 60.0, cfg.ReviewConfidence)
	assert.Equal(t, "UTC", cfg.Location.String())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OCR_PSM", "11")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("OCR_WORKERS", "not-a-number")
	t.Setenv("TIMEZONE", "Nowhere/Invalid")
	t.Setenv("OCR_PREPROCESS", "false")
	t.Setenv("OCR_REVIEW_CONFIDENCE", "250")

	cfg := LoadConfig()

	assert.False(t, cfg.OCRPreprocess)
	assert.Equal(t, 100.0, cfg.ReviewConfidence)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 11, cfg.OCRPageSegMode)
	assert.Equal(t, int64(5<<20), cfg.MaxFileSize)
	assert.Equal(t, 4, cfg.OCRWorkers)
	assert.Equal(t, "IST", cfg.Location.String())
}
