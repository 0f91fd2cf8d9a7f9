package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
	"github.com/Aashish23092/payment-evidence-ocr/export"
	"github.com/Aashish23092/payment-evidence-ocr/storage"
	"github.com/Aashish23092/payment-evidence-ocr/utils"
)

type ExportService struct {
	cases    CaseStore
	payments PaymentStore
	files    storage.Storage
	logger   *slog.Logger
}

func NewExportService(cases CaseStore, payments PaymentStore, files storage.Storage, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{cases: cases, payments: payments, files: files, logger: logger}
}

func (s *ExportService) casePayments(ctx context.Context, caseID int64) ([]dto.Payment, error) {
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return nil, err
	}
	return s.payments.ListByCase(ctx, caseID)
}

func (s *ExportService) WriteCSV(ctx context.Context, caseID int64, w io.Writer) error {
	payments, err := s.casePayments(ctx, caseID)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, payments)
}

func (s *ExportService) WriteXLSX(ctx context.Context, caseID int64, w io.Writer) error {
	payments, err := s.casePayments(ctx, caseID)
	if err != nil {
		return err
	}
	return export.WriteXLSX(w, payments)
}

// WriteEvidencePDF combines the case's stored screenshots into one PDF, a
// page per screenshot in upload order. PDF uploads are not re-embedded.
func (s *ExportService) WriteEvidencePDF(ctx context.Context, caseID int64, w io.Writer) error {
	payments, err := s.casePayments(ctx, caseID)
	if err != nil {
		return err
	}

	var images [][]byte
	for _, p := range payments {
		if p.StoredFilename == "" || utils.FileExt(p.StoredFilename) == "pdf" {
			continue
		}
		data, err := s.files.Get(p.StoredFilename)
		if err != nil {
			s.logger.Warn("screenshot missing from storage", "payment_id", p.ID, "file", p.StoredFilename, "error", err)
			continue
		}
		images = append(images, data)
	}
	return export.CombineImages(w, images)
}

// MakePDF combines arbitrary uploaded images into one PDF without storing
// them. Files with other extensions are ignored.
func (s *ExportService) MakePDF(ctx context.Context, caseID int64, files []*multipart.FileHeader, w io.Writer) error {
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return err
	}

	var images [][]byte
	for _, fh := range files {
		ext := utils.FileExt(fh.Filename)
		if ext == "pdf" || !allowedExtensions[ext] {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", fh.Filename, err)
		}
		images = append(images, data)
	}
	return export.CombineImages(w, images)
}
