package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aashish23092/payment-evidence-ocr/dto"
)

// Metrics holds the extraction and OCR collectors. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	extractions     *prometheus.CounterVec
	extractedFields *prometheus.CounterVec
	ocrFailures     *prometheus.CounterVec
	ocrDuration     prometheus.Histogram
	ocrConfidence   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upi_extractions_total",
			Help: "Receipts run through the field extractor, by detected channel.",
		}, []string{"channel"}),
		extractedFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upi_extracted_fields_total",
			Help: "Fields recovered by the extractor, by field name.",
		}, []string{"field"}),
		ocrFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocr_failures_total",
			Help: "OCR engine calls that errored or returned no text.",
		}, []string{"engine"}),
		ocrDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ocr_duration_seconds",
			Help:    "Wall time spent turning one image into text.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		ocrConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ocr_confidence",
			Help:    "Mean recognition confidence (0-100) of scored OCR output.",
			Buckets: prometheus.LinearBuckets(10, 10, 9),
		}),
	}
	m.registry.MustRegister(
		m.extractions, m.extractedFields, m.ocrFailures, m.ocrDuration, m.ocrConfidence,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRecord counts one extraction and every field it populated.
func (m *Metrics) ObserveRecord(rec dto.PaymentRecord) {
	m.extractions.WithLabelValues(string(rec.Channel)).Inc()
	for field, set := range map[string]bool{
		"amount_inr": rec.Amount.Valid,
		"utr":        rec.UTR != "",
		"upi_txn_id": rec.UPITxnID != "",
		"payee_vpa":  rec.PayeeVPA != "",
		"payee_name": rec.PayeeName != "",
		"payer_name": rec.PayerName != "",
		"bank_name":  rec.BankName != "",
		"txn_status": rec.Status != "",
		"txn_time":   rec.TransactionTime != nil,
	} {
		if set {
			m.extractedFields.WithLabelValues(field).Inc()
		}
	}
}

func (m *Metrics) OCRFailed(engine string, _ error) {
	m.ocrFailures.WithLabelValues(engine).Inc()
}

func (m *Metrics) ObserveOCR(d time.Duration) {
	m.ocrDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveConfidence(confidence float64) {
	m.ocrConfidence.Observe(confidence)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
