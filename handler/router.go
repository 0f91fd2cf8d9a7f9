package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Routes bundles everything the HTTP layer serves.
type Routes struct {
	Cases    *CaseHandler
	Payments *PaymentHandler
	Exports  *ExportHandler
	Metrics  http.Handler

	MaxMultipartMemory int64
	Logger             *slog.Logger
}

// NewRouter builds the gin engine with the /api/v1 routes mounted.
func NewRouter(r Routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(r.Logger))
	if r.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = r.MaxMultipartMemory
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "payment-evidence-ocr",
		})
	})
	if r.Metrics != nil {
		router.GET("/metrics", gin.WrapH(r.Metrics))
	}

	v1 := router.Group("/api/v1")
	{
		cases := v1.Group("/cases")
		cases.POST("", r.Cases.CreateCase)
		cases.GET("", r.Cases.ListCases)
		cases.GET("/:id", r.Cases.GetCase)
		cases.DELETE("/:id", r.Cases.DeleteCase)
		cases.POST("/:id/notes", r.Cases.AddNote)
		cases.GET("/:id/notes", r.Cases.ListNotes)
		cases.POST("/:id/payments", r.Payments.UploadPayments)
		cases.GET("/:id/export.csv", r.Exports.ExportCSV)
		cases.GET("/:id/export.xlsx", r.Exports.ExportXLSX)
		cases.GET("/:id/export.pdf", r.Exports.ExportPDF)
		cases.POST("/:id/make-pdf", r.Exports.MakePDF)

		payments := v1.Group("/payments")
		payments.GET("/:id", r.Payments.GetPayment)
		payments.GET("/:id/file", r.Payments.GetPaymentFile)
		payments.PATCH("/:id", r.Payments.UpdatePayment)
		payments.POST("/:id/reextract", r.Payments.ReextractPayment)
		payments.DELETE("/:id", r.Payments.DeletePayment)

		v1.POST("/extract", r.Payments.ExtractText)
	}

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
