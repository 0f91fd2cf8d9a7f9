package upireceipt

import (
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

// Extractor turns OCR text into a PaymentRecord. The zero configuration
// (NewExtractor with no options) resolves times in IST.
type Extractor struct {
	loc    *time.Location
	logger *slog.Logger
}

type Option func(*Extractor)

// WithLocation sets the zone receipt times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLogger sets where recovered recognizer faults are reported.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{loc: IST, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract runs the default extractor over raw OCR text.
func Extract(raw string) dto.PaymentRecord {
	return defaultExtractor.Extract(raw)
}

// Extract never fails: unrecognised fields are left empty, and text with no
// recognisable structure yields a generic UPI record with nothing else set.
// Recognizers always run in the same order, so identical input gives an
// identical record.
func (e *Extractor) Extract(raw string) dto.PaymentRecord {
	rec := dto.PaymentRecord{
		Channel:  dto.ChannelGenericUPI,
		Currency: dto.CurrencyINR,
		RawText:  raw,
	}

	text := strings.TrimSpace(raw)
	e.guard("normalize", func() { text = Normalize(raw) })

	e.guard("channel", func() { rec.Channel = Classify(text) })
	e.guard("amount", func() {
		if d, ok := FindAmount(text); ok {
			rec.Amount = decimal.NewNullDecimal(d)
		}
	})
	e.guard("upi_txn_id", func() { rec.UPITxnID = FindUPITxnID(text) })
	e.guard("utr", func() { rec.UTR = FindUTR(text) })
	e.guard("payee_vpa", func() { rec.PayeeVPA = FindPayeeVPA(text) })
	e.guard("payee_name", func() { rec.PayeeName = FindPayeeName(text) })
	e.guard("payer_name", func() { rec.PayerName = FindPayerName(text) })
	e.guard("bank_name", func() { rec.BankName = FindBank(text) })
	e.guard("status", func() { rec.Status = FindStatus(text) })
	e.guard("txn_time", func() { rec.TransactionTime = ResolveTime(text, e.loc) })

	return rec
}

// guard confines a recognizer fault to its own field.
func (e *Extractor) guard(field string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("recognizer failed, field left empty", "field", field, "panic", r)
		}
	}()
	fn()
}
