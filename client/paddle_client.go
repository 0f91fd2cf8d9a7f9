package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var _ QualityEngine = (*PaddleClient)(nil)

// PaddleClient calls a PaddleOCR serving endpoint
// (e.g. http://paddleocr:8866/predict/ocr_system).
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
}

// NewPaddleClient returns nil when apiURL is empty (PaddleOCR disabled).
func NewPaddleClient(apiURL string) *PaddleClient {
	if apiURL == "" {
		return nil
	}
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *PaddleClient) Name() string { return "paddleocr" }

func (p *PaddleClient) ExtractText(ctx context.Context, image []byte) (string, error) {
	text, _, err := p.ExtractTextAndQuality(ctx, image)
	return text, err
}

// ExtractTextAndQuality reports the mean line confidence scaled to 0-100.
func (p *PaddleClient) ExtractTextAndQuality(ctx context.Context, image []byte) (string, float64, error) {
	payload, err := json.Marshal(map[string]any{
		"images": []string{base64.StdEncoding.EncodeToString(image)},
	})
	if err != nil {
		return "", NoConfidence, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", NoConfidence, fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", NoConfidence, fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", NoConfidence, fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results [][]struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", NoConfidence, fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}

	var (
		lines []string
		total float64
	)
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			lines = append(lines, line.Text)
			total += line.Confidence
		}
	}
	if len(lines) == 0 {
		return "", NoConfidence, nil
	}
	return dedupeLines(lines), 100 * total / float64(len(lines)), nil
}

// dedupeLines drops repeated lines (case-insensitive), keeping first-seen
// order. Detection boxes that overlap often return the same line twice.
func dedupeLines(lines []string) string {
	seen := make(map[string]bool)
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
