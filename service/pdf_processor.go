package service

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFProcessor reads receipts that arrive as PDF exports instead of
// screenshots.
type PDFProcessor interface {
	// ExtractText returns the text layer, one line per text row.
	ExtractText(pdfData []byte) (string, error)
	// ExtractImages returns the encoded images embedded in the pages, in page order.
	ExtractImages(pdfData []byte) ([][]byte, error)
}

// pdfcpu names extracted images "<file>_<page>_<object id>.<ext>".
var extractedImageRe = regexp.MustCompile(`^receipt_(\d+)_`)

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

func (p *pdfProcessor) ExtractText(pdfData []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf text: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					textBuilder.WriteByte(' ')
				}
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteByte('\n')
		}
	}
	return textBuilder.String(), nil
}

func (p *pdfProcessor) ExtractImages(pdfData []byte) ([][]byte, error) {
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, "receipt.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}

	outDir := filepath.Join(tempDir, "out")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	if err := api.ExtractImagesFile(pdfPath, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	// ReadDir sorts lexically, which puts page 10 before page 2.
	slices.SortStableFunc(entries, func(a, b os.DirEntry) int {
		return cmp.Compare(extractedImagePage(a.Name()), extractedImagePage(b.Name()))
	})

	var images [][]byte
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		images = append(images, data)
	}
	return images, nil
}

// extractedImagePage returns the page number encoded in an extracted image
// name, or 0 when the name does not carry one.
func extractedImagePage(name string) int {
	m := extractedImageRe.FindStringSubmatch(name)
	if len(m) < 2 {
		return 0
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return page
}
