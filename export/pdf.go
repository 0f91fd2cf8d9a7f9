package export

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/webp"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

// CombineImages writes one PDF with a page per image, in order. Images
// that cannot be decoded are skipped; if none remain dto.ErrNoImages is
// returned.
func CombineImages(w io.Writer, images [][]byte) error {
	readers := make([]io.Reader, 0, len(images))
	for _, img := range images {
		data, err := importable(img)
		if err != nil {
			continue
		}
		readers = append(readers, bytes.NewReader(data))
	}
	if len(readers) == 0 {
		return dto.ErrNoImages
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ImportImages(nil, w, readers, pdfcpu.DefaultImportConfig(), conf); err != nil {
		return fmt.Errorf("pdf import images: %w", err)
	}
	return nil
}

// importable passes PNG and JPEG through and re-encodes anything else
// (TIFF, WebP, GIF) as PNG.
func importable(img []byte) ([]byte, error) {
	switch http.DetectContentType(img) {
	case "image/png", "image/jpeg":
		return img, nil
	}
	decoded, err := imaging.Decode(bytes.NewReader(img), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, decoded, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
