package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/payment-evidence-ocr/client"
	"github.com/Aashish23092/payment-evidence-ocr/dto"
	"github.com/Aashish23092/payment-evidence-ocr/repository"
	"github.com/Aashish23092/payment-evidence-ocr/storage"
)

const phonepeText = `PhonePe
Transaction Successful
01:56 pm on 23 Aug 2025
Paid to
Sharma General Store
sharmastore@ybl
₹ 450
Transaction ID
T2508231356123456789012
Debited from
XXXXXXXX4321
UTR: 523598765432`

const gpayText = `Google Pay
To RAMESH KUMAR
ramesh.kumar@okhdfcbank
₹1,250.00
Completed
24 Aug 2025, 11:28 am
UPI transaction ID
523612345678`

// fakeOCR returns the text and confidence registered for an image's bytes.
type fakeOCR struct {
	mu    sync.Mutex
	texts map[string]string
	conf  map[string]float64
	fail  map[string]bool
}

func newFakeOCR() *fakeOCR {
	return &fakeOCR{texts: map[string]string{}, conf: map[string]float64{}, fail: map[string]bool{}}
}

func (f *fakeOCR) Name() string { return "fake" }

func (f *fakeOCR) ExtractText(ctx context.Context, image []byte) (string, error) {
	text, _, err := f.ExtractTextAndQuality(ctx, image)
	return text, err
}

func (f *fakeOCR) ExtractTextAndQuality(ctx context.Context, image []byte) (string, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[string(image)] {
		return "", client.NoConfidence, errors.New("engine crashed")
	}
	conf, ok := f.conf[string(image)]
	if !ok {
		conf = client.NoConfidence
	}
	return f.texts[string(image)], conf, nil
}

func (f *fakeOCR) set(image, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[image] = text
}

func (f *fakeOCR) setScored(image, text string, conf float64) {
	f.set(image, text)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conf[image] = conf
}

// blockingOCR parks every call until the context is cancelled.
type blockingOCR struct {
	started chan struct{}
}

func (b *blockingOCR) Name() string { return "blocking" }

func (b *blockingOCR) ExtractText(ctx context.Context, _ []byte) (string, error) {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return "", ctx.Err()
}

type fakePDF struct {
	text   string
	images [][]byte
}

func (f *fakePDF) ExtractText([]byte) (string, error)     { return f.text, nil }
func (f *fakePDF) ExtractImages([]byte) ([][]byte, error) { return f.images, nil }

type fixture struct {
	db       *sql.DB
	cases    *repository.CaseRepository
	payments *repository.PaymentRepository
	notes    *repository.NoteRepository
	files    *storage.LocalStorage
	ocr      *fakeOCR
	pdf      *fakePDF
	svc      *PaymentService
	caseID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := repository.Open(context.Background(), filepath.Join(dir, "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		cases:    repository.NewCaseRepository(db),
		payments: repository.NewPaymentRepository(db),
		notes:    repository.NewNoteRepository(db),
		files:    files,
		ocr:      newFakeOCR(),
		pdf:      &fakePDF{},
	}
	f.svc = NewPaymentService(f.cases, f.payments, f.files, f.ocr, f.pdf, PaymentServiceConfig{Workers: 2})

	c, err := f.cases.Create(context.Background(), "Complaint 42", "")
	require.NoError(t, err)
	f.caseID = c.ID
	return f
}

// fileHeaders builds multipart headers the way gin hands them to handlers.
func fileHeaders(t *testing.T, files map[string]string, order []string) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, name := range order {
		part, err := w.CreateFormFile("files[]", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files[]"]
}

func TestUploadExtractsInOrder(t *testing.T) {
	f := newFixture(t)
	f.ocr.set("img-phonepe", phonepeText)
	f.ocr.set("img-gpay", gpayText)

	headers := fileHeaders(t, map[string]string{
		"phonepe.png": "img-phonepe",
		"notes.txt":   "text",
		"gpay.jpg":    "img-gpay",
	}, []string{"phonepe.png", "notes.txt", "gpay.jpg"})

	resp, err := f.svc.Upload(context.Background(), f.caseID, headers)
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, 2, resp.Processed)
	assert.Equal(t, 1, resp.Failed)

	first := resp.Results[0]
	assert.Equal(t, "phonepe.png", first.Filename)
	require.NotNil(t, first.Payment)
	assert.Equal(t, dto.ChannelPhonePe, first.Payment.Channel)
	assert.Equal(t, "523598765432", first.Payment.UTR)
	assert.Equal(t, phonepeText, first.Payment.RawText)

	assert.Nil(t, resp.Results[1].Payment)
	assert.Contains(t, resp.Results[1].Error, "unsupported file type")

	third := resp.Results[2]
	require.NotNil(t, third.Payment)
	assert.Equal(t, dto.ChannelGooglePay, third.Payment.Channel)
	assert.Equal(t, "523612345678", third.Payment.UPITxnID)

	stored, err := f.payments.ListByCase(context.Background(), f.caseID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	data, err := f.files.Get(first.Payment.StoredFilename)
	require.NoError(t, err)
	assert.Equal(t, "img-phonepe", string(data))
}

func TestUploadEngineFailureStillRecords(t *testing.T) {
	f := newFixture(t)
	f.ocr.fail["broken"] = true

	headers := fileHeaders(t, map[string]string{"broken.png": "broken"}, []string{"broken.png"})
	resp, err := f.svc.Upload(context.Background(), f.caseID, headers)
	require.NoError(t, err)

	p := resp.Results[0].Payment
	require.NotNil(t, p)
	assert.Equal(t, dto.ChannelGenericUPI, p.Channel)
	assert.Equal(t, dto.CurrencyINR, p.Currency)
	assert.False(t, p.Amount.Valid)
	assert.Empty(t, p.RawText)
}

func TestUploadFlagsUploadsForReview(t *testing.T) {
	f := newFixture(t)
	f.ocr.setScored("blurry", phonepeText, 41.5)
	f.ocr.setScored("sharp", gpayText, 93)
	f.ocr.set("unscored", gpayText)
	f.ocr.setScored("noise", "@@ ## !!", 88)

	headers := fileHeaders(t, map[string]string{
		"blurry.png":   "blurry",
		"sharp.png":    "sharp",
		"unscored.png": "unscored",
		"noise.png":    "noise",
	}, []string{"blurry.png", "sharp.png", "unscored.png", "noise.png"})

	resp, err := f.svc.Upload(context.Background(), f.caseID, headers)
	require.NoError(t, err)
	require.Len(t, resp.Results, 4)

	blurry := resp.Results[0]
	require.NotNil(t, blurry.Confidence)
	assert.Equal(t, 41.5, *blurry.Confidence)
	assert.True(t, blurry.NeedsReview)

	sharp := resp.Results[1]
	require.NotNil(t, sharp.Confidence)
	assert.Equal(t, 93.0, *sharp.Confidence)
	assert.False(t, sharp.NeedsReview)

	unscored := resp.Results[2]
	assert.Nil(t, unscored.Confidence)
	assert.False(t, unscored.NeedsReview)

	// Nothing payment-like was recovered, whatever the engine thought.
	assert.True(t, resp.Results[3].NeedsReview)

	stored, err := f.payments.Get(context.Background(), blurry.Payment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.OCRConfidence)
	assert.Equal(t, 41.5, *stored.OCRConfidence)
}

func TestUploadStopsWhenCancelled(t *testing.T) {
	f := newFixture(t)
	ocr := &blockingOCR{started: make(chan struct{}, 1)}
	svc := NewPaymentService(f.cases, f.payments, f.files, ocr, f.pdf, PaymentServiceConfig{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-ocr.started
		cancel()
	}()

	headers := fileHeaders(t, map[string]string{"a.png": "a", "b.png": "b", "c.png": "c"}, []string{"a.png", "b.png", "c.png"})
	resp, err := svc.Upload(ctx, f.caseID, headers)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Failed)
	for _, r := range resp.Results {
		assert.Contains(t, r.Error, context.Canceled.Error(), r.Filename)
	}

	stored, err := f.payments.ListByCase(context.Background(), f.caseID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestUploadUnknownCase(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Upload(context.Background(), 9999, nil)
	assert.ErrorIs(t, err, dto.ErrCaseNotFound)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	f := newFixture(t)
	f.svc.maxSize = 4

	headers := fileHeaders(t, map[string]string{"big.png": "0123456789"}, []string{"big.png"})
	resp, err := f.svc.Upload(context.Background(), f.caseID, headers)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Failed)
	assert.Contains(t, resp.Results[0].Error, "larger than")
}

func TestPDFTextLayerPreferred(t *testing.T) {
	f := newFixture(t)
	f.pdf.text = gpayText
	f.pdf.images = [][]byte{[]byte("img-phonepe")}
	f.ocr.set("img-phonepe", phonepeText)

	p, _, err := f.svc.Ingest(context.Background(), f.caseID, "receipt.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, dto.ChannelGooglePay, p.Channel)
}

func TestPDFFallsBackToEmbeddedImages(t *testing.T) {
	f := newFixture(t)
	f.pdf.text = "  "
	f.pdf.images = [][]byte{[]byte("img-phonepe")}
	f.ocr.set("img-phonepe", phonepeText)

	p, _, err := f.svc.Ingest(context.Background(), f.caseID, "receipt.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, dto.ChannelPhonePe, p.Channel)
	assert.Nil(t, p.OCRConfidence)
}

func TestScannedPDFKeepsLowestPageConfidence(t *testing.T) {
	f := newFixture(t)
	f.pdf.images = [][]byte{[]byte("page-1"), []byte("page-2"), []byte("page-3")}
	f.ocr.setScored("page-1", "PhonePe\nPaid to", 88)
	f.ocr.setScored("page-2", "₹ 450\nUTR: 523598765432", 57)
	f.ocr.set("page-3", "Debited from\nXXXXXXXX4321")

	p, _, err := f.svc.Ingest(context.Background(), f.caseID, "scan.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	require.NotNil(t, p.OCRConfidence)
	assert.Equal(t, 57.0, *p.OCRConfidence)
	assert.True(t, f.svc.NeedsReview(p))
	assert.Equal(t, "523598765432", p.UTR)
}

func TestPDFTextLayerHasNoConfidence(t *testing.T) {
	f := newFixture(t)
	f.pdf.text = gpayText

	p, _, err := f.svc.Ingest(context.Background(), f.caseID, "receipt.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Nil(t, p.OCRConfidence)
	assert.False(t, f.svc.NeedsReview(p))
}

func TestUpdateAndReextract(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.ocr.set("img", phonepeText)

	p, _, err := f.svc.Ingest(ctx, f.caseID, "shot.png", []byte("img"))
	require.NoError(t, err)

	name, remarks := "Someone Else", "checked with bank"
	updated, err := f.svc.Update(ctx, p.ID, &dto.UpdatePaymentRequest{PayeeName: &name, Remarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, "Someone Else", updated.PayeeName)

	again, err := f.svc.Reextract(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Sharma General Store", again.PayeeName)
	assert.Equal(t, "checked with bank", again.Remarks)

	f.ocr.setScored("img", gpayText, 72)
	reocr, err := f.svc.Reextract(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, dto.ChannelGooglePay, reocr.Channel)
	assert.Equal(t, gpayText, reocr.RawText)
	require.NotNil(t, reocr.OCRConfidence)
	assert.Equal(t, 72.0, *reocr.OCRConfidence)

	bad := "not-money"
	_, err = f.svc.Update(ctx, p.ID, &dto.UpdatePaymentRequest{Amount: &bad})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}

func TestDeletePaymentRemovesFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, _, err := f.svc.Ingest(ctx, f.caseID, "shot.png", []byte("img"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	_, err = f.files.Get(p.StoredFilename)
	assert.Error(t, err)
	assert.ErrorIs(t, f.svc.Delete(ctx, p.ID), dto.ErrPaymentNotFound)
}

func TestExtractTextIsStateless(t *testing.T) {
	f := newFixture(t)
	rec := f.svc.ExtractText("Paid ₹1,234.50 to merchant")
	assert.Equal(t, "1234.50", rec.Amount.Decimal.StringFixed(2))

	stored, err := f.payments.ListByCase(context.Background(), f.caseID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCaseServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cases := NewCaseService(f.cases, f.payments, f.notes, f.files, nil)

	_, err := cases.Create(ctx, &dto.CreateCaseRequest{Title: "   "})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	f.ocr.set("a", phonepeText)
	f.ocr.set("b", gpayText)
	pa, _, err := f.svc.Ingest(ctx, f.caseID, "a.png", []byte("a"))
	require.NoError(t, err)
	_, _, err = f.svc.Ingest(ctx, f.caseID, "b.png", []byte("b"))
	require.NoError(t, err)

	_, err = cases.AddNote(ctx, f.caseID, &dto.CreateNoteRequest{Content: "  \n "})
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
	_, err = cases.AddNote(ctx, 9999, &dto.CreateNoteRequest{Content: "lost"})
	assert.ErrorIs(t, err, dto.ErrCaseNotFound)
	_, err = cases.ListNotes(ctx, 9999)
	assert.ErrorIs(t, err, dto.ErrCaseNotFound)

	_, err = cases.AddNote(ctx, f.caseID, &dto.CreateNoteRequest{Content: "complainant called"})
	require.NoError(t, err)
	note, err := cases.AddNote(ctx, f.caseID, &dto.CreateNoteRequest{Content: "  bank froze beneficiary account  "})
	require.NoError(t, err)
	assert.Equal(t, "bank froze beneficiary account", note.Content)

	detail, err := cases.Get(ctx, f.caseID)
	require.NoError(t, err)
	assert.Len(t, detail.Payments, 2)
	assert.Contains(t, detail.TotalAmount, "1,700.00")
	require.Len(t, detail.Notes, 2)
	assert.Equal(t, note.ID, detail.Notes[0].ID)

	require.NoError(t, cases.Delete(ctx, f.caseID))
	_, err = cases.Get(ctx, f.caseID)
	assert.ErrorIs(t, err, dto.ErrCaseNotFound)
	_, err = f.files.Get(pa.StoredFilename)
	assert.Error(t, err)
	notes, err := f.notes.ListByCase(ctx, f.caseID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestExportService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	exports := NewExportService(f.cases, f.payments, f.files, nil)

	var buf bytes.Buffer
	assert.ErrorIs(t, exports.WriteEvidencePDF(ctx, f.caseID, &buf), dto.ErrNoImages)
	assert.ErrorIs(t, exports.WriteCSV(ctx, 9999, &buf), dto.ErrCaseNotFound)

	f.ocr.set("a", phonepeText)
	_, _, err := f.svc.Ingest(ctx, f.caseID, "a.png", []byte("a"))
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, exports.WriteCSV(ctx, f.caseID, &buf))
	assert.Contains(t, buf.String(), "523598765432")

	buf.Reset()
	require.NoError(t, exports.WriteXLSX(ctx, f.caseID, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}
