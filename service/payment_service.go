package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/Aashish23092/payment-evidence-ocr/client"
	"github.com/Aashish23092/payment-evidence-ocr/dto"
	"github.com/Aashish23092/payment-evidence-ocr/storage"
	"github.com/Aashish23092/payment-evidence-ocr/utils"
	"github.com/Aashish23092/payment-evidence-ocr/utils/upireceipt"
)

// minTextLayerChars is how much text a PDF's text layer must carry before
// its embedded images are skipped.
const minTextLayerChars = 8

var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "webp": true, "tif": true, "tiff": true,
	"pdf": true,
}

// CaseStore is the subset of the case repository the services need.
type CaseStore interface {
	Create(ctx context.Context, title, description string) (*dto.Case, error)
	Get(ctx context.Context, id int64) (*dto.Case, error)
	List(ctx context.Context) ([]dto.Case, error)
	Delete(ctx context.Context, id int64) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *dto.Payment) error
	Get(ctx context.Context, id int64) (*dto.Payment, error)
	ListByCase(ctx context.Context, caseID int64) ([]dto.Payment, error)
	Update(ctx context.Context, p *dto.Payment) error
	Delete(ctx context.Context, id int64) error
}

// Recorder receives extraction and OCR observations (Prometheus in production).
type Recorder interface {
	ObserveRecord(rec dto.PaymentRecord)
	ObserveOCR(d time.Duration)
	ObserveConfidence(confidence float64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRecord(dto.PaymentRecord) {}
func (nopRecorder) ObserveOCR(time.Duration)        {}
func (nopRecorder) ObserveConfidence(float64)       {}

// defaultReviewConfidence is used when no review threshold is configured.
const defaultReviewConfidence = 60

type PaymentService struct {
	cases     CaseStore
	payments  PaymentStore
	files     storage.Storage
	ocr       client.OCREngine
	pdf       PDFProcessor
	extractor *upireceipt.Extractor
	recorder  Recorder
	workers   int
	maxSize   int64
	review    float64
	logger    *slog.Logger
}

type PaymentServiceConfig struct {
	Workers     int
	MaxFileSize int64
	// ReviewConfidence is the OCR confidence below which an upload needs review.
	ReviewConfidence float64
	Location         *time.Location
	Recorder         Recorder
	Logger           *slog.Logger
}

func NewPaymentService(
	cases CaseStore,
	payments PaymentStore,
	files storage.Storage,
	ocr client.OCREngine,
	pdf PDFProcessor,
	cfg PaymentServiceConfig,
) *PaymentService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ReviewConfidence <= 0 {
		cfg.ReviewConfidence = defaultReviewConfidence
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PaymentService{
		cases:     cases,
		payments:  payments,
		files:     files,
		ocr:       ocr,
		pdf:       pdf,
		extractor: upireceipt.NewExtractor(upireceipt.WithLocation(cfg.Location), upireceipt.WithLogger(cfg.Logger)),
		recorder:  cfg.Recorder,
		workers:   cfg.Workers,
		maxSize:   cfg.MaxFileSize,
		review:    cfg.ReviewConfidence,
		logger:    cfg.Logger,
	}
}

// Upload OCRs and extracts every file into a payment on the case. Files are
// processed concurrently; results keep upload order and a bad file only
// fails its own entry.
func (s *PaymentService) Upload(ctx context.Context, caseID int64, files []*multipart.FileHeader) (*dto.UploadPaymentsResponse, error) {
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return nil, err
	}

	results := make([]dto.UploadResult, len(files))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, fh := range files {
		wg.Add(1)
		go func(i int, fh *multipart.FileHeader) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = dto.UploadResult{Filename: fh.Filename, Error: ctx.Err().Error()}
				return
			}
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results[i] = dto.UploadResult{Filename: fh.Filename, Error: err.Error()}
				return
			}

			results[i] = s.uploadOne(ctx, caseID, fh)
		}(i, fh)
	}
	wg.Wait()

	resp := &dto.UploadPaymentsResponse{
		CaseID:      caseID,
		Results:     results,
		ProcessedAt: time.Now().Format(time.RFC3339),
	}
	for _, r := range results {
		if r.Error != "" {
			resp.Failed++
		} else {
			resp.Processed++
		}
	}
	return resp, nil
}

func (s *PaymentService) uploadOne(ctx context.Context, caseID int64, fh *multipart.FileHeader) dto.UploadResult {
	result := dto.UploadResult{Filename: fh.Filename}

	data, err := s.readUpload(fh)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	payment, qr, err := s.Ingest(ctx, caseID, fh.Filename, data)
	if err != nil {
		s.logger.Warn("upload failed", "case_id", caseID, "filename", fh.Filename, "error", err)
		result.Error = err.Error()
		return result
	}
	result.Payment = payment
	result.QR = qr
	result.Confidence = payment.OCRConfidence
	result.NeedsReview = s.NeedsReview(payment)
	return result
}

// NeedsReview reports whether a payment should be checked by a person: the
// OCR engine scored its text below the review threshold, or none of amount,
// UTR and UPI transaction ID was recovered.
func (s *PaymentService) NeedsReview(p *dto.Payment) bool {
	if p.OCRConfidence != nil && *p.OCRConfidence < s.review {
		return true
	}
	return !p.Amount.Valid && p.UTR == "" && p.UPITxnID == ""
}

func (s *PaymentService) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return nil, fmt.Errorf("%s: file larger than %d bytes", fh.Filename, s.maxSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fh.Filename, err)
	}
	return data, nil
}

// Ingest stores one screenshot, reads it and persists the extracted
// payment. The QR hint, when the image carries a UPI code, is returned
// beside the payment and not merged into it.
func (s *PaymentService) Ingest(ctx context.Context, caseID int64, filename string, data []byte) (*dto.Payment, *dto.UPIIntent, error) {
	ext := utils.FileExt(filename)
	if !allowedExtensions[ext] {
		return nil, nil, fmt.Errorf("%w: %s", dto.ErrUnsupportedFile, filename)
	}

	stored, err := s.files.Save(filename, data)
	if err != nil {
		return nil, nil, fmt.Errorf("store %s: %w", filename, err)
	}

	text, conf := s.readText(ctx, ext, data)
	rec := s.extract(text)

	var qr *dto.UPIIntent
	if ext != "pdf" {
		if intent, err := client.DecodeUPIQR(data); err == nil {
			qr = intent
		}
	}

	payment := &dto.Payment{
		CaseID:         caseID,
		SourceFilename: filename,
		StoredFilename: stored,
		OCRConfidence:  confidencePtr(conf),
		PaymentRecord:  rec,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		_ = s.files.Delete(stored)
		return nil, nil, err
	}

	s.logger.Info("payment extracted",
		"case_id", caseID,
		"payment_id", payment.ID,
		"filename", filename,
		"channel", rec.Channel,
		"amount_inr", rec.Amount,
		"utr", rec.UTR,
		"upi_txn_id", rec.UPITxnID,
		"payee_vpa", rec.PayeeVPA,
		"ocr_confidence", conf,
		"needs_review", s.NeedsReview(payment),
	)
	return payment, qr, nil
}

// readText never fails: an engine error is logged and treated as a
// screenshot with no text. The confidence is client.NoConfidence for a PDF
// text layer or an unscored engine, and the lowest image score for a
// scanned PDF.
func (s *PaymentService) readText(ctx context.Context, ext string, data []byte) (string, float64) {
	if ext != "pdf" {
		return s.ocrImage(ctx, data)
	}

	text, err := s.pdf.ExtractText(data)
	if err != nil {
		s.logger.Warn("pdf text layer unreadable", "error", err)
	}
	if len(strings.TrimSpace(text)) >= minTextLayerChars {
		return text, client.NoConfidence
	}

	images, err := s.pdf.ExtractImages(data)
	if err != nil {
		s.logger.Warn("pdf images unreadable", "error", err)
		return text, client.NoConfidence
	}
	var parts []string
	lowest := client.NoConfidence
	for _, img := range images {
		t, conf := s.ocrImage(ctx, img)
		if strings.TrimSpace(t) == "" {
			continue
		}
		parts = append(parts, t)
		if conf >= 0 && (lowest < 0 || conf < lowest) {
			lowest = conf
		}
	}
	return strings.Join(parts, "\n"), lowest
}

func (s *PaymentService) ocrImage(ctx context.Context, data []byte) (string, float64) {
	start := time.Now()
	var (
		text string
		conf = client.NoConfidence
		err  error
	)
	if qe, ok := s.ocr.(client.QualityEngine); ok {
		text, conf, err = qe.ExtractTextAndQuality(ctx, data)
	} else {
		text, err = s.ocr.ExtractText(ctx, data)
	}
	s.recorder.ObserveOCR(time.Since(start))
	if err != nil {
		s.logger.Warn("OCR failed, extracting from empty text", "engine", s.ocr.Name(), "error", err)
		return "", client.NoConfidence
	}
	if conf >= 0 {
		s.recorder.ObserveConfidence(conf)
	}
	return text, conf
}

func confidencePtr(conf float64) *float64 {
	if conf < 0 {
		return nil
	}
	return &conf
}

func (s *PaymentService) extract(text string) dto.PaymentRecord {
	rec := s.extractor.Extract(text)
	s.recorder.ObserveRecord(rec)
	return rec
}

// ExtractText runs the extractor over supplied text without persisting.
func (s *PaymentService) ExtractText(text string) dto.PaymentRecord {
	return s.extract(text)
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*dto.Payment, error) {
	return s.payments.Get(ctx, id)
}

// Update applies a manual correction.
func (s *PaymentService) Update(ctx context.Context, id int64, req *dto.UpdatePaymentRequest) (*dto.Payment, error) {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(p); err != nil {
		return nil, err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payment corrected", "payment_id", id, "case_id", p.CaseID)
	return p, nil
}

// Reextract rebuilds the record from the stored OCR text, or from a fresh
// OCR pass over the stored file when reOCR is set. Manual corrections to
// extracted fields are discarded; remarks and notes are kept.
func (s *PaymentService) Reextract(ctx context.Context, id int64, reOCR bool) (*dto.Payment, error) {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	text := p.RawText
	if reOCR {
		data, err := s.files.Get(p.StoredFilename)
		if err != nil {
			return nil, fmt.Errorf("load stored file for payment %d: %w", id, err)
		}
		var conf float64
		text, conf = s.readText(ctx, utils.FileExt(p.StoredFilename), data)
		p.OCRConfidence = confidencePtr(conf)
	}

	p.PaymentRecord = s.extract(text)
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payment re-extracted", "payment_id", id, "reocr", reOCR, "channel", p.Channel)
	return p, nil
}

// Delete removes the payment and its stored screenshot.
func (s *PaymentService) Delete(ctx context.Context, id int64) error {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.files.Delete(p.StoredFilename); err != nil {
		s.logger.Warn("stored file not removed", "payment_id", id, "file", p.StoredFilename, "error", err)
	}
	return nil
}
