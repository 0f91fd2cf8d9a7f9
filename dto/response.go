package dto

import "errors"

var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrNoImages        = errors.New("no images to combine")
	ErrNoFiles         = errors.New("at least one file is required")
	ErrInvalidInput    = errors.New("invalid input")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// UploadResult is the outcome for one uploaded file. Exactly one of Payment
// and Error is set.
type UploadResult struct {
	Filename string     `json:"filename"`
	Payment  *Payment   `json:"payment,omitempty"`
	QR       *UPIIntent `json:"qr,omitempty"`
	// Confidence mirrors Payment.OCRConfidence.
	Confidence *float64 `json:"ocr_confidence,omitempty"`
	// NeedsReview flags low-confidence or empty extractions for a human.
	NeedsReview bool   `json:"needs_review"`
	Error       string `json:"error,omitempty"`
}

// UploadPaymentsResponse lists results in upload order.
type UploadPaymentsResponse struct {
	CaseID      int64          `json:"case_id"`
	Results     []UploadResult `json:"results"`
	Processed   int            `json:"processed"`
	Failed      int            `json:"failed"`
	ProcessedAt string         `json:"processed_at"`
}

// ExtractTextResponse is returned by the stateless extraction endpoint.
type ExtractTextResponse struct {
	Record      PaymentRecord `json:"record"`
	ProcessedAt string        `json:"processed_at"`
}
