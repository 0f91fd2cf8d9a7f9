package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string

	DatabasePath string
	UploadFolder string

	TesseractDataPath string
	OCRLanguage       string
	OCRPageSegMode    int
	PaddleOCRURL      string
	OCRWorkers        int
	OCRPreprocess     bool
	// ReviewConfidence is the OCR confidence (0-100) below which an upload
	// is flagged for manual review.
	ReviewConfidence float64

	MaxFileSize int64
	Location    *time.Location
}

// LoadConfig reads the process environment, after merging a .env file from
// the working directory when one exists.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using environment", "error", err)
	}

	maxMB := getEnvAsInt("MAX_UPLOAD_MB", 32)

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "release"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DatabasePath: getEnv("DATABASE_PATH", "instance/ocr_case_tool.sqlite"),
		UploadFolder: getEnv("UPLOAD_FOLDER", "instance/uploads"),

		TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		OCRLanguage:       getEnv("OCR_LANGUAGE", "eng"),
		OCRPageSegMode:    getEnvAsInt("OCR_PSM", 6),
		PaddleOCRURL:      strings.TrimSpace(os.Getenv("PADDLEOCR_API_URL")),
		OCRWorkers:        getEnvAsInt("OCR_WORKERS", 4),
		OCRPreprocess:     getEnvAsBool("OCR_PREPROCESS", true),
		ReviewConfidence:  float64(min(getEnvAsInt("OCR_REVIEW_CONFIDENCE", 60), 100)),

		MaxFileSize: int64(maxMB) << 20,
		Location:    loadLocation(getEnv("TIMEZONE", "Asia/Kolkata")),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

// loadLocation falls back to a fixed +05:30 zone when the host has no tzdata.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown TIMEZONE, using IST", "timezone", name, "error", err)
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}
